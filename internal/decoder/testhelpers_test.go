package decoder

type fakeVocab map[int]string

func (v fakeVocab) Piece(id int) string { return v[id] }
