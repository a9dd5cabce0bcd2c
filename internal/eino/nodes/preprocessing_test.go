package nodes

import (
	"context"
	"errors"
	"testing"
	"time"

	"rating-predictor/internal/domain/models"
	"rating-predictor/internal/infrastructure/preprocessing"
	"rating-predictor/pkg/logger"
)

func TestJoinTerms(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected string
	}{
		{
			name:     "keeps selection order",
			input:    []string{"menta", "aloe vera", "glicerina"},
			expected: "menta aloe vera glicerina",
		},
		{
			name:     "trim and normalize whitespace",
			input:    []string{"  aloe   vera ", "menta"},
			expected: "aloe vera menta",
		},
		{
			name:     "remove control chars",
			input:    []string{"men\x00ta"},
			expected: "menta",
		},
		{
			name:     "newlines and tabs become spaces",
			input:    []string{"sal\nrosa\tfina"},
			expected: "sal rosa fina",
		},
		{
			name:     "skip empty terms",
			input:    []string{"", "  ", "cafe"},
			expected: "cafe",
		},
		{
			name:     "no terms",
			input:    nil,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := JoinTerms(tt.input); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func newDescriber(t *testing.T) *Describer {
	t.Helper()
	svc, err := preprocessing.NewFactory(logger.Discard()).CreateTextPreprocessingService(nil)
	if err != nil {
		t.Fatalf("create preprocessing service: %v", err)
	}
	return NewDescriber(svc, time.Second)
}

func TestDescriberDescribe(t *testing.T) {
	d := newDescriber(t)

	state := &PredictState{Request: &PredictRequest{
		Category: models.CategoryShampoo,
		RawTerms: []string{"Champú", "con", "Aloe Vera", "y", "glicerina"},
	}}

	out, err := d.Describe(context.Background(), state)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out.RawDescription != "Champú con Aloe Vera y glicerina" {
		t.Errorf("unexpected raw description %q", out.RawDescription)
	}
	if out.CleanedDescription != "champu aloe-vera glicerina" {
		t.Errorf("unexpected cleaned description %q", out.CleanedDescription)
	}

	want := []string{preprocessing.PreprocessorNormalize, preprocessing.PreprocessorTokenize}
	if len(out.AppliedPreprocessors) != len(want) {
		t.Fatalf("expected preprocessors %v, got %v", want, out.AppliedPreprocessors)
	}
	for i := range want {
		if out.AppliedPreprocessors[i] != want[i] {
			t.Errorf("preprocessor %d: expected %q, got %q", i, want[i], out.AppliedPreprocessors[i])
		}
	}
}

func TestDescriberCancelled(t *testing.T) {
	d := newDescriber(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := d.Describe(ctx, &PredictState{Request: &PredictRequest{RawTerms: []string{"menta"}}})

	var predErr *models.PredictionError
	if !errors.As(err, &predErr) || predErr.Op != "describe" {
		t.Fatalf("expected describe PredictionError, got %v", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled in chain, got %v", err)
	}
}
