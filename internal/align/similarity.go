package align

import (
	"context"
	"fmt"
	"log/slog"

	"syncorbit/internal/srt"
	"syncorbit/internal/textutil"
)

// Hybrid blend weights. The semantic score carries meaning across
// translations and paraphrases; the lexical score anchors near-verbatim
// lines even when the embedding model is uncertain.
const (
	semanticWeight = 0.7
	lexicalWeight  = 0.3
)

// Provider supplies the semantic half of the hybrid score: an |a|×|b|
// cosine-similarity matrix in [-1,1] between two text lists.
type Provider interface {
	Similarity(ctx context.Context, a, b []string) ([][]float64, error)
}

// Matrix is a read-only N×M similarity matrix with values in [0,1].
type Matrix struct {
	rows, cols int
	values     []float64
}

// NewMatrix allocates a zeroed rows×cols matrix.
func NewMatrix(rows, cols int) *Matrix {
	return &Matrix{rows: rows, cols: cols, values: make([]float64, rows*cols)}
}

// Dims returns the matrix dimensions.
func (m *Matrix) Dims() (int, int) { return m.rows, m.cols }

// At returns the value at row i, column j.
func (m *Matrix) At(i, j int) float64 { return m.values[i*m.cols+j] }

func (m *Matrix) set(i, j int, v float64) { m.values[i*m.cols+j] = v }

// BuildSimilarityMatrix combines the provider's semantic scores with the
// lexical token-set score into one hybrid matrix, clamped to [0,1].
//
// A provider failure aborts the whole alignment unless Options enables
// the lexical fallback, in which case the degradation is logged and the
// matrix is built from lexical scores alone.
func BuildSimilarityMatrix(ctx context.Context, provider Provider, refCues, tgtCues []srt.Cue, opts Options, logger *slog.Logger) (*Matrix, error) {
	n, m := len(refCues), len(tgtCues)
	if n == 0 || m == 0 {
		return nil, Wrap(ErrEmptyInput, "build similarity matrix", nil)
	}

	refTexts := make([]string, n)
	for i, cue := range refCues {
		refTexts[i] = cue.Text
	}
	tgtTexts := make([]string, m)
	for j, cue := range tgtCues {
		tgtTexts[j] = cue.Text
	}

	var semantic [][]float64
	if provider != nil {
		var err error
		semantic, err = provider.Similarity(ctx, refTexts, tgtTexts)
		if err != nil {
			if !opts.LexicalFallback {
				return nil, Wrap(ErrProvider, "semantic similarity", err)
			}
			if logger != nil {
				logger.Warn("similarity provider failed, continuing lexical-only", "error", err)
			}
			semantic = nil
		}
		if semantic != nil {
			if err := checkDims(semantic, n, m); err != nil {
				return nil, Wrap(ErrProvider, "semantic similarity", err)
			}
		}
	} else if !opts.LexicalFallback {
		return nil, Wrap(ErrProvider, "no provider configured", nil)
	}

	matrix := NewMatrix(n, m)
	for i := range refCues {
		for j := range tgtCues {
			lexical := textutil.TokenSetRatio(refTexts[i], tgtTexts[j])
			var score float64
			if semantic != nil {
				// Provider values are cosine similarities in [-1,1];
				// clip before blending.
				score = semanticWeight*clamp01(semantic[i][j]) + lexicalWeight*lexical
			} else {
				score = lexical
			}
			matrix.set(i, j, clamp01(score))
		}
	}
	return matrix, nil
}

func checkDims(matrix [][]float64, rows, cols int) error {
	if len(matrix) != rows {
		return fmt.Errorf("provider returned %d rows, want %d", len(matrix), rows)
	}
	for i, row := range matrix {
		if len(row) != cols {
			return fmt.Errorf("provider row %d has %d columns, want %d", i, len(row), cols)
		}
	}
	return nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
