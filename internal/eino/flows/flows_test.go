package flows

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rating-predictor/internal/domain/models"
	"rating-predictor/internal/eino/callbacks"
	"rating-predictor/internal/eino/components"
	"rating-predictor/internal/eino/config"
	"rating-predictor/internal/infrastructure/preprocessing"
	"rating-predictor/pkg/logger"
)

type fixture struct {
	predictor *components.RatingPredictor
	service   *PredictionService
	explainer *ExplanationService
	metrics   *callbacks.MetricsHandler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	log := logger.Discard()

	cfg := config.DefaultEinoConfig()
	cfg.Artifacts.Dir = "../testdata"
	require.NoError(t, cfg.Validate())

	predictor, err := components.LoadRatingPredictor(ctx, &cfg.Artifacts, log)
	require.NoError(t, err)

	preprocessor, err := preprocessing.NewFactory(log).CreateTextPreprocessingService(nil)
	require.NoError(t, err)

	factory := callbacks.NewFactory(&cfg.Callbacks, log, prometheus.NewRegistry())
	handlers, err := factory.CreateHandlers()
	require.NoError(t, err)
	metrics, err := factory.GetMetricsHandler()
	require.NoError(t, err)

	service, err := NewPredictionService(ctx, NewRatingPredictGraph(predictor, preprocessor, &cfg.Predict), log, handlers...)
	require.NoError(t, err)

	return &fixture{
		predictor: predictor,
		service:   service,
		explainer: NewExplanationService(predictor, &cfg.Explain, log),
		metrics:   metrics,
	}
}

func TestPredictScenarioSoapLowReviews(t *testing.T) {
	f := newFixture(t)

	input := &models.ProductInput{
		Category:     models.CategorySoap,
		RawTerms:     []string{"aloe vera", "glicerina"},
		Price:        5.5,
		ReviewBucket: models.ReviewBucketLow,
	}
	res, err := f.service.Predict(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, "aloe-vera glicerina", res.CleanedDescription)
	assert.Equal(t, "aloe vera glicerina", res.RawDescription)
	assert.Equal(t, models.ModelLowReviews, res.ModelUsed)
	assert.Equal(t, 25, res.ReviewCount)
	assert.InDelta(t, 3.4, res.Rating, 1e-12)
	assert.Equal(t, *input, res.Input)

	rec := models.NewHistoryRecord(res, time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC))
	assert.Equal(t, "Menos de 60", rec.ReviewLabel)
	assert.Equal(t, 5.5, rec.Price)
	assert.Equal(t, 3.4, rec.Rating)
	assert.Equal(t, "2024-06-01 10:00:00", rec.Timestamp)
}

func TestRunSelectsModelAtThreshold(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name        string
		reviewCount int
		wantModel   models.ModelVariant
		wantRating  float64
		wantBucket  models.ReviewBucket
	}{
		{name: "59 uses low", reviewCount: 59, wantModel: models.ModelLowReviews, wantRating: 3.4, wantBucket: models.ReviewBucketLow},
		{name: "60 uses high", reviewCount: 60, wantModel: models.ModelHighReviews, wantRating: 4.5, wantBucket: models.ReviewBucketHigh},
		{name: "0 uses low", reviewCount: 0, wantModel: models.ModelLowReviews, wantRating: 3.4, wantBucket: models.ReviewBucketLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := f.service.Run(ctx, &RatingPredictInput{
				Category:    models.CategorySoap,
				RawTerms:    []string{"Aloe Vera", "glicerina"},
				Price:       15,
				ReviewCount: tt.reviewCount,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.wantModel, res.ModelUsed)
			assert.InDelta(t, tt.wantRating, res.Rating, 1e-12)
			assert.Equal(t, tt.wantBucket, res.Input.ReviewBucket)
		})
	}
}

func TestRunEmptyDescription(t *testing.T) {
	f := newFixture(t)

	// 高价 -> 价格树右叶 -0.1；非 jabon -> -0.05
	res, err := f.service.Run(context.Background(), &RatingPredictInput{
		Category:    models.CategoryShampoo,
		Price:       1000,
		ReviewCount: 90,
	})
	require.NoError(t, err)
	assert.Equal(t, "", res.CleanedDescription)
	assert.InDelta(t, 3.85, res.Rating, 1e-12)
}

func TestPredictIsDeterministic(t *testing.T) {
	f := newFixture(t)
	input := &models.ProductInput{
		Category:     models.CategoryExfoliant,
		RawTerms:     []string{"menta", "sal rosa", "aloe vera"},
		Price:        12.3,
		ReviewBucket: models.ReviewBucketHigh,
	}

	first, err := f.service.Predict(context.Background(), input)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := f.service.Predict(context.Background(), input)
		require.NoError(t, err)
		assert.Equal(t, first.Rating, again.Rating)
		assert.Equal(t, first.Features.Values(), again.Features.Values())
	}
}

func TestPredictErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("unknown category is an encoding error", func(t *testing.T) {
		_, err := f.service.Predict(ctx, &models.ProductInput{
			Category:     "perfume",
			RawTerms:     []string{"menta"},
			Price:        3,
			ReviewBucket: models.ReviewBucketLow,
		})
		var predErr *models.PredictionError
		require.True(t, errors.As(err, &predErr))
		assert.Equal(t, NodeEncode, predErr.Op)

		var encErr *models.EncodingError
		require.True(t, errors.As(err, &encErr))
		assert.ErrorIs(t, err, models.ErrUnknownCategory)
	})

	for _, tc := range []struct {
		name  string
		input *models.ProductInput
		field string
	}{
		{name: "negative price", input: &models.ProductInput{Category: models.CategorySoap, Price: -1, ReviewBucket: models.ReviewBucketLow}, field: "Price"},
		{name: "nan price", input: &models.ProductInput{Category: models.CategorySoap, Price: math.NaN(), ReviewBucket: models.ReviewBucketLow}, field: "Price"},
		{name: "missing category", input: &models.ProductInput{Price: 2, ReviewBucket: models.ReviewBucketHigh}, field: "Tipo"},
	} {
		t.Run(tc.name+" is an encoding error", func(t *testing.T) {
			_, err := f.service.Predict(ctx, tc.input)
			var predErr *models.PredictionError
			require.True(t, errors.As(err, &predErr))
			assert.Equal(t, NodeEncode, predErr.Op)

			var encErr *models.EncodingError
			require.True(t, errors.As(err, &encErr))
			assert.Equal(t, tc.field, encErr.Field)
		})
	}

	t.Run("invalid bucket keeps validation details", func(t *testing.T) {
		_, err := f.service.Predict(ctx, &models.ProductInput{Category: models.CategorySoap, ReviewBucket: "medium"})
		var predErr *models.PredictionError
		require.True(t, errors.As(err, &predErr))
		assert.Equal(t, NodeInputCheck, predErr.Op)

		var verrs validator.ValidationErrors
		assert.True(t, errors.As(err, &verrs))
	})

	t.Run("nil input", func(t *testing.T) {
		_, err := f.service.Predict(ctx, nil)
		var predErr *models.PredictionError
		assert.True(t, errors.As(err, &predErr))
	})

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := f.service.Predict(cctx, &models.ProductInput{Category: models.CategorySoap, ReviewBucket: models.ReviewBucketLow})
		var predErr *models.PredictionError
		assert.True(t, errors.As(err, &predErr))
	})
}

func TestCallbacksObserveNodes(t *testing.T) {
	f := newFixture(t)
	require.NotNil(t, f.metrics)

	_, err := f.service.Run(context.Background(), &RatingPredictInput{
		Category:    models.CategoryShampoo,
		RawTerms:    []string{"menta"},
		Price:       8,
		ReviewCount: 90,
	})
	require.NoError(t, err)

	calls, ok := f.metrics.GetMetrics()["component_calls"].(map[string]int64)
	require.True(t, ok)
	for _, node := range []string{NodeInputCheck, NodeDescribe, NodeEncode, NodePredictHigh} {
		assert.Equal(t, int64(1), calls[node], "node %s", node)
	}
	assert.Zero(t, calls[NodePredictLow])
}

func TestExplainSumLaw(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name         string
		reviewCount  int
		wantBaseline float64
		wantTop      string
		wantTopValue float64
	}{
		{name: "low model", reviewCount: 25, wantBaseline: 3.04, wantTop: "text__aloe-vera", wantTopValue: 0.36},
		{name: "high model", reviewCount: 90, wantBaseline: 4.125, wantTop: "num__Price", wantTopValue: 0.2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := f.service.Run(ctx, &RatingPredictInput{
				Category:    models.CategorySoap,
				RawTerms:    []string{"aloe vera", "glicerina"},
				Price:       15,
				ReviewCount: tt.reviewCount,
			})
			require.NoError(t, err)

			vec, err := f.explainer.Explain(ctx, res)
			require.NoError(t, err)

			assert.Equal(t, res.ModelUsed, vec.ModelUsed)
			assert.InDelta(t, tt.wantBaseline, vec.Baseline, 1e-12)
			assert.InDelta(t, res.Rating, vec.Reconstructed(), 1e-9)
			require.Len(t, vec.Contributions, res.FeatureWidth)
			require.Len(t, vec.FeatureNames, res.FeatureWidth)

			ranked := vec.Ranked(res.Features.Values())
			assert.Equal(t, tt.wantTop, ranked[0].Feature)
			assert.InDelta(t, tt.wantTopValue, ranked[0].Value, 1e-12)
		})
	}
}

func TestExplainErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("no prediction", func(t *testing.T) {
		_, err := f.explainer.Explain(ctx, nil)
		var explErr *models.ExplainabilityError
		require.True(t, errors.As(err, &explErr))
		assert.ErrorIs(t, err, models.ErrNoPrediction)
	})

	t.Run("width mismatch", func(t *testing.T) {
		_, err := f.explainer.Explain(ctx, &models.PredictionResult{
			ModelUsed: models.ModelLowReviews,
			Features:  models.NewEncodedFeatures([]float64{1, 2, 3}, nil),
		})
		var explErr *models.ExplainabilityError
		require.True(t, errors.As(err, &explErr))
		assert.ErrorIs(t, err, models.ErrWidthMismatch)
	})

	t.Run("unknown variant", func(t *testing.T) {
		_, err := f.explainer.Explain(ctx, &models.PredictionResult{ModelUsed: "medium"})
		var explErr *models.ExplainabilityError
		require.True(t, errors.As(err, &explErr))
		assert.Equal(t, "select_model", explErr.Op)
	})

	t.Run("tampered rating fails verification", func(t *testing.T) {
		res, err := f.service.Run(ctx, &RatingPredictInput{Category: models.CategorySoap, Price: 3, ReviewCount: 10})
		require.NoError(t, err)
		res.Rating += 0.5

		_, err = f.explainer.Explain(ctx, res)
		var explErr *models.ExplainabilityError
		require.True(t, errors.As(err, &explErr))
		assert.Equal(t, "verify", explErr.Op)
	})

	t.Run("disabled", func(t *testing.T) {
		svc := NewExplanationService(f.predictor, &config.ExplainConfig{Enabled: false}, logger.Discard())
		_, err := svc.Explain(ctx, &models.PredictionResult{})
		var explErr *models.ExplainabilityError
		assert.True(t, errors.As(err, &explErr))
	})
}
