package testsupport

import (
	"context"
	"errors"
	"strings"
)

// TextMatchProvider is a deterministic stand-in for the embedding
// service: identical texts (case-insensitive) score 1.0, everything else
// scores 0.0. Tests that need alignment to track matching dialogue use
// this instead of a live model.
type TextMatchProvider struct{}

func (TextMatchProvider) Similarity(_ context.Context, a, b []string) ([][]float64, error) {
	matrix := make([][]float64, len(a))
	for i := range a {
		matrix[i] = make([]float64, len(b))
		for j := range b {
			if strings.EqualFold(strings.TrimSpace(a[i]), strings.TrimSpace(b[j])) {
				matrix[i][j] = 1.0
			}
		}
	}
	return matrix, nil
}

// FailingProvider always errors, for exercising the lexical fallback and
// provider failure paths.
type FailingProvider struct{}

func (FailingProvider) Similarity(context.Context, []string, []string) ([][]float64, error) {
	return nil, errors.New("similarity backend unavailable")
}
