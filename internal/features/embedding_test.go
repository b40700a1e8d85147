package features

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"
)

// writeNpy writes a minimal little-endian float32 2D NPY file, enough for
// readNpyHeader to parse; real embedding files are produced by the training
// pipeline, not by Go code, so tests fabricate their own fixture here.
func writeNpy(t *testing.T, path string, rows [][]float32) {
	t.Helper()
	cols := len(rows[0])
	header := "{'descr': '<f4', 'fortran_order': False, 'shape': (" +
		itoa(len(rows)) + ", " + itoa(cols) + "), }"
	for (10+len(header))%16 != 15 {
		header += " "
	}
	header += "\n"

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	f.Write([]byte("\x93NUMPY"))
	f.Write([]byte{1, 0})
	var lenBuf [2]byte
	binary.LittleEndian.PutUint16(lenBuf[:], uint16(len(header)))
	f.Write(lenBuf[:])
	f.Write([]byte(header))

	for _, row := range rows {
		for _, v := range row {
			var buf [4]byte
			binary.LittleEndian.PutUint32(buf[:], math.Float32bits(v))
			f.Write(buf[:])
		}
	}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := []byte{}
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}

func TestLoadEmbeddingTableRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "embeddings.npy")
	writeNpy(t, path, [][]float32{
		{1, 2, 3},
		{4, 5, 6},
	})

	table, err := LoadEmbeddingTable(path)
	if err != nil {
		t.Fatalf("LoadEmbeddingTable() error = %v", err)
	}
	if table.Dim() != 3 {
		t.Errorf("Dim() = %d; want 3", table.Dim())
	}
	row := table.Row(1)
	if row[0] != 4 || row[1] != 5 || row[2] != 6 {
		t.Errorf("Row(1) = %v; want [4 5 6]", row)
	}
}

func TestEmbeddingTableRowOutOfRangeReturnsZeroVector(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "embeddings.npy")
	writeNpy(t, path, [][]float32{{1, 2}})

	table, err := LoadEmbeddingTable(path)
	if err != nil {
		t.Fatalf("LoadEmbeddingTable() error = %v", err)
	}
	row := table.Row(99)
	if len(row) != 2 || row[0] != 0 || row[1] != 0 {
		t.Errorf("Row(99) = %v; want zero vector of length 2", row)
	}
}

func TestLoadEmbeddingTableRejectsBadMagic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.npy")
	os.WriteFile(path, []byte("not an npy file at all"), 0o644)

	if _, err := LoadEmbeddingTable(path); err == nil {
		t.Error("expected an error for a file without the NPY magic header")
	}
}
