// Package features assembles the encoder input tensor: a fixed block of
// task-query embedding rows followed by scaled acoustic feature rows,
// padded or truncated to the encoder's declared input length.
package features

import (
	"github.com/msto63/streamvox/internal/model"
)

// SpeechScale scales the acoustic feature block to avoid overflow on
// reduced-precision accelerators. Fixed per the accelerator's numeric
// contract, not user-tunable.
const SpeechScale = 0.25

// Task-query row ids within the embedding table. Event/emotion queries
// occupy rows 1 and 2; language rows are resolved via model.LanguageTaskID;
// ITN rows are 14 (with ITN) and 15 (without).
const (
	eventEmoRow1  = 1
	eventEmoRow2  = 2
	itnWithRow    = 14
	itnWithoutRow = 15
)

// Tensor is a [T, D] row-major feature matrix ready for EncoderClient.Infer.
// TaskRows records how many of Rows' leading entries are task-query rows
// rather than acoustic feature rows, so callers can slice the encoder's
// output back apart without assuming a fixed count.
type Tensor struct {
	Rows     [][]float32
	Dim      int
	TaskRows int
}

// Builder assembles Tensors from acoustic samples and the active language.
type Builder struct {
	embeddings *EmbeddingTable
	fbankCfg   FbankConfig
}

// NewBuilder constructs a Builder over a loaded embedding table.
func NewBuilder(embeddings *EmbeddingTable, fbankCfg FbankConfig) *Builder {
	return &Builder{embeddings: embeddings, fbankCfg: fbankCfg}
}

// Build produces the [T_total, D] tensor for one chunk, where T_total is
// derived from declaredInputLen (the encoder's declared shape from Load),
// never hardcoded here.
func (b *Builder) Build(chunk model.AudioChunk, languageCode string, useITN bool, declaredInputLen int) Tensor {
	dim := b.embeddings.Dim()

	taskRows := [][]float32{b.embeddings.Row(model.LanguageTaskID(languageCode))}
	taskRows = append(taskRows, b.embeddings.Row(eventEmoRow1), b.embeddings.Row(eventEmoRow2))
	if useITN {
		taskRows = append(taskRows, b.embeddings.Row(itnWithRow))
	} else {
		taskRows = append(taskRows, b.embeddings.Row(itnWithoutRow))
	}
	taskRowCount := len(taskRows)

	acoustic := Fbank(chunk.Samples, b.fbankCfg)
	scaled := make([][]float32, len(acoustic))
	for i, row := range acoustic {
		scaledRow := make([]float32, len(row))
		for j, v := range row {
			scaledRow[j] = v * SpeechScale
		}
		scaled[i] = scaledRow
	}

	rows := append(taskRows, scaled...)
	rows = fitToLength(rows, declaredInputLen, dim)

	return Tensor{Rows: rows, Dim: dim, TaskRows: taskRowCount}
}

// fitToLength pads with zero rows or truncates so len(rows) == target.
func fitToLength(rows [][]float32, target, dim int) [][]float32 {
	if target <= 0 || len(rows) == target {
		return rows
	}
	if len(rows) > target {
		return rows[:target]
	}
	out := make([][]float32, target)
	copy(out, rows)
	for i := len(rows); i < target; i++ {
		out[i] = make([]float32, dim)
	}
	return out
}
