package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rating-predictor/internal/domain/models"
)

func record(i int) models.HistoryRecord {
	return models.HistoryRecord{
		Rating:      4 + float64(i)/100,
		Description: fmt.Sprintf("descripcion %d", i),
		Price:       float64(10 + i),
		ReviewLabel: models.ReviewLabel(25),
		Timestamp:   "2024-06-01 10:00:00",
	}
}

func TestHistoryStoreKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	s := NewHistoryStore(0)

	for i := 0; i < 5; i++ {
		require.NoError(t, s.Append(ctx, "a", record(i)))
	}

	got, err := s.List(ctx, "a")
	require.NoError(t, err)
	require.Len(t, got, 5)
	for i, r := range got {
		assert.Equal(t, record(i), r)
	}

	n, err := s.Len(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestHistoryStoreIsolatesSessions(t *testing.T) {
	ctx := context.Background()
	s := NewHistoryStore(0)

	require.NoError(t, s.Append(ctx, "a", record(1)))
	require.NoError(t, s.Append(ctx, "b", record(2)))
	require.NoError(t, s.Clear(ctx, "a"))

	a, err := s.List(ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, a)
	assert.NotNil(t, a)

	b, err := s.List(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, []models.HistoryRecord{record(2)}, b)
}

func TestHistoryStoreListReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := NewHistoryStore(0)
	require.NoError(t, s.Append(ctx, "a", record(1)))

	got, _ := s.List(ctx, "a")
	got[0].Description = "changed"

	again, _ := s.List(ctx, "a")
	assert.Equal(t, "descripcion 1", again[0].Description)
}

func TestHistoryStoreMaxRecords(t *testing.T) {
	ctx := context.Background()
	s := NewHistoryStore(2)

	require.NoError(t, s.Append(ctx, "a", record(1)))
	require.NoError(t, s.Append(ctx, "a", record(2)))

	err := s.Append(ctx, "a", record(3))
	assert.True(t, errors.Is(err, models.ErrHistoryFull))
}

func TestHistoryStoreConcurrentAppend(t *testing.T) {
	ctx := context.Background()
	s := NewHistoryStore(0)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = s.Append(ctx, "a", record(i))
		}(i)
	}
	wg.Wait()

	n, err := s.Len(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 50, n)
}

func TestHistoryStoreCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewHistoryStore(0)
	assert.Error(t, s.Append(ctx, "a", record(1)))
	_, err := s.List(ctx, "a")
	assert.Error(t, err)
}
