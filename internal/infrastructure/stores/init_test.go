package stores

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rating-predictor/configs"
	"rating-predictor/internal/domain/models"
	"rating-predictor/pkg/logger"
)

func TestCreateHistoryRepository(t *testing.T) {
	tests := []struct {
		name    string
		config  *configs.HistoryConfig
		wantErr bool
	}{
		{name: "nil config", config: nil, wantErr: true},
		{name: "memory", config: &configs.HistoryConfig{Provider: configs.HistoryProviderMemory}},
		{name: "badger in memory", config: &configs.HistoryConfig{
			Provider: configs.HistoryProviderBadger,
			Badger:   configs.BadgerConfig{InMemory: true},
		}},
		{name: "unknown provider", config: &configs.HistoryConfig{Provider: "mongo"}, wantErr: true},
	}

	f := NewHistoryStoreFactory(logger.Discard())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, err := f.CreateHistoryRepository(context.Background(), tt.config, time.Hour)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			defer repo.Close()

			ctx := context.Background()
			require.NoError(t, repo.Append(ctx, "s", models.HistoryRecord{Rating: 4.5}))
			n, err := repo.Len(ctx, "s")
			require.NoError(t, err)
			assert.Equal(t, 1, n)
		})
	}
}
