package features

import (
	"testing"

	"github.com/msto63/streamvox/internal/model"
)

func tinyTable(dim, rows int) *EmbeddingTable {
	t := &EmbeddingTable{rows: make([][]float32, rows), dim: dim}
	for i := range t.rows {
		row := make([]float32, dim)
		for j := range row {
			row[j] = float32(i + 1)
		}
		t.rows[i] = row
	}
	return t
}

func TestBuilderBuildPadsToDeclaredLength(t *testing.T) {
	table := tinyTable(4, 16)
	b := NewBuilder(table, DefaultFbankConfig())

	chunk := model.AudioChunk{Samples: make([]float32, 1000)}
	tensor := b.Build(chunk, "en", true, 100)

	if len(tensor.Rows) != 100 {
		t.Fatalf("Build() produced %d rows; want 100 (declared length)", len(tensor.Rows))
	}
	if tensor.Dim != 4 {
		t.Errorf("Dim = %d; want 4", tensor.Dim)
	}
}

func TestBuilderBuildTruncatesWhenOverLength(t *testing.T) {
	table := tinyTable(4, 16)
	b := NewBuilder(table, DefaultFbankConfig())

	chunk := model.AudioChunk{Samples: make([]float32, 16000)}
	tensor := b.Build(chunk, "en", false, 3)

	if len(tensor.Rows) != 3 {
		t.Errorf("Build() produced %d rows; want 3 (truncated)", len(tensor.Rows))
	}
}

func TestBuilderBuildReportsActualTaskRowCount(t *testing.T) {
	table := tinyTable(4, 16)
	b := NewBuilder(table, DefaultFbankConfig())

	chunk := model.AudioChunk{Samples: make([]float32, 1000)}
	tensor := b.Build(chunk, "en", true, 100)

	// One language row, two event/emotion rows, one ITN row.
	if tensor.TaskRows != 4 {
		t.Errorf("TaskRows = %d; want 4", tensor.TaskRows)
	}
}

func TestFitToLengthPadsWithZeroRows(t *testing.T) {
	rows := [][]float32{{1, 2}, {3, 4}}
	out := fitToLength(rows, 4, 2)
	if len(out) != 4 {
		t.Fatalf("fitToLength() len = %d; want 4", len(out))
	}
	for _, v := range out[2] {
		if v != 0 {
			t.Errorf("padded row should be all zero, got %v", out[2])
		}
	}
}

func TestFitToLengthTruncates(t *testing.T) {
	rows := [][]float32{{1}, {2}, {3}}
	out := fitToLength(rows, 2, 1)
	if len(out) != 2 {
		t.Fatalf("fitToLength() len = %d; want 2", len(out))
	}
}

func TestFitToLengthNoopWhenAlreadyMatching(t *testing.T) {
	rows := [][]float32{{1}, {2}}
	out := fitToLength(rows, 2, 1)
	if len(out) != 2 || out[0][0] != 1 {
		t.Errorf("fitToLength() should leave a matching-length slice untouched, got %v", out)
	}
}
