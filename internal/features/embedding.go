package features

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/msto63/streamvox/internal/apperr"
)

// EmbeddingTable is the fixed task-query embedding matrix: one row per
// task id (language/emotion/event/ITN query rows), each of width Dim().
type EmbeddingTable struct {
	rows [][]float32
	dim  int
}

// Row returns the embedding vector for the given task row id.
func (t *EmbeddingTable) Row(id int) []float32 {
	if id < 0 || id >= len(t.rows) {
		return make([]float32, t.dim)
	}
	return t.rows[id]
}

// Dim reports the embedding width, read from the file at load time.
func (t *EmbeddingTable) Dim() int { return t.dim }

// LoadEmbeddingTable reads a 2D float32 matrix stored in NPY format (the
// format the reference embeddings ship in). Only the minimal subset of the
// NPY spec needed for a little-endian float32 2D array is supported; no
// library in the reference pack parses NPY, so this reader is hand-rolled
// and kept intentionally narrow.
func LoadEmbeddingTable(path string) (*EmbeddingTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperr.New(apperr.Load, "features", "open_embeddings", err).WithField("path", path)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	rows, cols, err := readNpyHeader(r)
	if err != nil {
		return nil, apperr.New(apperr.Load, "features", "read_embeddings_header", err).WithField("path", path)
	}

	table := &EmbeddingTable{rows: make([][]float32, rows), dim: cols}
	buf := make([]byte, cols*4)
	for i := 0; i < rows; i++ {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, apperr.New(apperr.Load, "features", "read_embeddings_body", err).WithField("row", i)
		}
		row := make([]float32, cols)
		for c := 0; c < cols; c++ {
			bits := binary.LittleEndian.Uint32(buf[c*4:])
			row[c] = math.Float32frombits(bits)
		}
		table.rows[i] = row
	}
	return table, nil
}

// readNpyHeader parses the NPY magic string and header dict just far enough
// to extract a 2D shape and confirm float32 little-endian dtype.
func readNpyHeader(r *bufio.Reader) (rows, cols int, err error) {
	magic := make([]byte, 8)
	if _, err = io.ReadFull(r, magic); err != nil {
		return 0, 0, err
	}
	if string(magic[:6]) != "\x93NUMPY" {
		return 0, 0, fmt.Errorf("not an NPY file")
	}
	major := magic[6]

	var headerLen int
	if major >= 2 {
		var lenBuf [4]byte
		if _, err = io.ReadFull(r, lenBuf[:]); err != nil {
			return 0, 0, err
		}
		headerLen = int(binary.LittleEndian.Uint32(lenBuf[:]))
	} else {
		var lenBuf [2]byte
		if _, err = io.ReadFull(r, lenBuf[:]); err != nil {
			return 0, 0, err
		}
		headerLen = int(binary.LittleEndian.Uint16(lenBuf[:]))
	}

	headerBytes := make([]byte, headerLen)
	if _, err = io.ReadFull(r, headerBytes); err != nil {
		return 0, 0, err
	}
	header := string(headerBytes)

	if !strings.Contains(header, "<f4") {
		return 0, 0, fmt.Errorf("unsupported dtype in NPY header: %s", header)
	}

	shapeStart := strings.Index(header, "'shape':")
	if shapeStart < 0 {
		return 0, 0, fmt.Errorf("no shape field in NPY header")
	}
	parenStart := strings.Index(header[shapeStart:], "(")
	parenEnd := strings.Index(header[shapeStart:], ")")
	if parenStart < 0 || parenEnd < 0 {
		return 0, 0, fmt.Errorf("malformed shape field in NPY header")
	}
	shapeStr := header[shapeStart+parenStart+1 : shapeStart+parenEnd]
	parts := strings.Split(shapeStr, ",")
	var dims []int
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, convErr := strconv.Atoi(p)
		if convErr != nil {
			return 0, 0, fmt.Errorf("malformed shape dimension %q: %w", p, convErr)
		}
		dims = append(dims, v)
	}
	if len(dims) != 2 {
		return 0, 0, fmt.Errorf("expected a 2D embedding table, got shape %v", dims)
	}
	return dims[0], dims[1], nil
}
