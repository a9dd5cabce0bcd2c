package encoder

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rating-predictor/internal/domain/models"
	"rating-predictor/pkg/logger"
)

func testArtifact() *Artifact {
	return &Artifact{
		Version:    "test",
		Categories: []string{"champu", "exfoliante", "jabon"},
		Vocabulary: []string{"aloe-vera", "glicerina", "menta"},
		IDF:        []float64{2.0, 1.5, 3.0},
		Norm:       NormL2,
		Price:      PriceScaler{Mean: 20, Scale: 10},
	}
}

func TestTransformLayout(t *testing.T) {
	enc, err := New(testArtifact())
	require.NoError(t, err)

	require.Equal(t, 7, enc.Width())
	assert.Equal(t, []string{
		"cat__Tipo_champu", "cat__Tipo_exfoliante", "cat__Tipo_jabon",
		"text__aloe-vera", "text__glicerina", "text__menta",
		"num__Price",
	}, enc.FeatureNames())

	f, err := enc.Transform(models.EncoderRecord{Tipo: "jabon", Description: "aloe-vera glicerina", Price: 15})
	require.NoError(t, err)
	require.Equal(t, enc.Width(), f.Width())

	assert.Equal(t, []float64{0, 0, 1}, f.Values()[:3])

	// tf-idf: [2, 1.5, 0] / 2.5
	assert.InDelta(t, 0.8, f.At(3), 1e-12)
	assert.InDelta(t, 0.6, f.At(4), 1e-12)
	assert.Equal(t, 0.0, f.At(5))

	assert.InDelta(t, -0.5, f.At(6), 1e-12)
	assert.Equal(t, "num__Price", f.Name(6))
}

func TestTransformTextEdgeCases(t *testing.T) {
	enc, err := New(testArtifact())
	require.NoError(t, err)

	tests := []struct {
		name        string
		description string
		want        []float64
	}{
		{name: "empty description", description: "", want: []float64{0, 0, 0}},
		{name: "out of vocabulary", description: "karite arcilla", want: []float64{0, 0, 0}},
		{name: "single term normalised", description: "menta", want: []float64{0, 0, 1}},
		{name: "repeated term", description: "menta menta", want: []float64{0, 0, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := enc.Transform(models.EncoderRecord{Tipo: "champu", Description: tt.description})
			require.NoError(t, err)
			got := f.Values()[3:6]
			for i := range tt.want {
				assert.InDelta(t, tt.want[i], got[i], 1e-12)
			}
		})
	}
}

func TestTransformIsDeterministic(t *testing.T) {
	enc, err := New(testArtifact())
	require.NoError(t, err)

	rec := models.EncoderRecord{Tipo: "exfoliante", Description: "glicerina menta aloe-vera", Price: 42.5}
	a, err := enc.Transform(rec)
	require.NoError(t, err)
	b, err := enc.Transform(rec)
	require.NoError(t, err)
	assert.Equal(t, a.Values(), b.Values())
}

func TestTransformRejectsOutOfDomainRecords(t *testing.T) {
	enc, err := New(testArtifact())
	require.NoError(t, err)

	tests := []struct {
		name      string
		record    models.EncoderRecord
		wantField string
		wantErr   error
	}{
		{name: "unknown category", record: models.EncoderRecord{Tipo: "perfume"}, wantField: "Tipo", wantErr: models.ErrUnknownCategory},
		{name: "enum id is not a label", record: models.EncoderRecord{Tipo: "soap"}, wantField: "Tipo", wantErr: models.ErrUnknownCategory},
		{name: "negative price", record: models.EncoderRecord{Tipo: "jabon", Price: -1}, wantField: "Price", wantErr: models.ErrInvalidPrice},
		{name: "NaN price", record: models.EncoderRecord{Tipo: "jabon", Price: math.NaN()}, wantField: "Price", wantErr: models.ErrInvalidPrice},
		{name: "infinite price", record: models.EncoderRecord{Tipo: "jabon", Price: math.Inf(1)}, wantField: "Price", wantErr: models.ErrInvalidPrice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := enc.Transform(tt.record)
			require.Error(t, err)

			var encErr *models.EncodingError
			require.True(t, errors.As(err, &encErr), "want *models.EncodingError, got %T", err)
			assert.Equal(t, tt.wantField, encErr.Field)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestArtifactValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(a *Artifact)
	}{
		{name: "no categories", mutate: func(a *Artifact) { a.Categories = nil }},
		{name: "duplicate category", mutate: func(a *Artifact) { a.Categories = []string{"jabon", "jabon"} }},
		{name: "idf length", mutate: func(a *Artifact) { a.IDF = a.IDF[:2] }},
		{name: "duplicate term", mutate: func(a *Artifact) { a.Vocabulary[1] = "aloe-vera" }},
		{name: "non-positive idf", mutate: func(a *Artifact) { a.IDF[0] = 0 }},
		{name: "unknown norm", mutate: func(a *Artifact) { a.Norm = "l1" }},
		{name: "zero scale", mutate: func(a *Artifact) { a.Price.Scale = 0 }},
		{name: "NaN mean", mutate: func(a *Artifact) { a.Price.Mean = math.NaN() }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := testArtifact()
			tt.mutate(a)
			assert.Error(t, a.Validate())
		})
	}

	assert.NoError(t, testArtifact().Validate())
}

func TestFactoryLoadsArtifactFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "encoder.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"version": "v-file",
		"categories": ["champu", "jabon"],
		"vocabulary": ["menta"],
		"idf": [1.2],
		"norm": "l2",
		"price": {"mean": 10, "scale": 2}
	}`), 0o644))

	enc, err := NewFactory(logger.Discard()).CreateFeatureEncoder(path)
	require.NoError(t, err)
	assert.Equal(t, 4, enc.Width())

	_, err = NewFactory(logger.Discard()).CreateFeatureEncoder(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	_, err = NewFactory(logger.Discard()).CreateFeatureEncoder("")
	assert.Error(t, err)
}
