package scheduler_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	appsync "github.com/sellerdesk/backend/internal/application/sync"
	"github.com/sellerdesk/backend/internal/domain/marketplace"
	"github.com/sellerdesk/backend/internal/infrastructure/persistence"
	"github.com/sellerdesk/backend/internal/infrastructure/persistence/models"
	"github.com/sellerdesk/backend/internal/infrastructure/scheduler"
)

type noopClient struct{}

func (noopClient) ListPostings(context.Context, marketplace.Credentials, marketplace.ListPostingsRequest) (*marketplace.ListPostingsResponse, error) {
	return &marketplace.ListPostingsResponse{}, nil
}

func (noopClient) GetPostingDetail(context.Context, marketplace.Credentials, string) (*marketplace.RawPostingDetail, error) {
	return nil, marketplace.ErrPostingNotFound
}

func (noopClient) ListProducts(context.Context, marketplace.Credentials, marketplace.ListProductsRequest) (*marketplace.ListProductsResponse, error) {
	return &marketplace.ListProductsResponse{}, nil
}

type noopLocker struct{}

func (noopLocker) Acquire(context.Context, uuid.UUID, appsync.TaskKind) (bool, error) {
	return true, nil
}

func (noopLocker) Release(context.Context, uuid.UUID, appsync.TaskKind) error {
	return nil
}

func newOrchestrator(t *testing.T) (*appsync.Orchestrator, *persistence.GormStore) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.ShopModel{},
		&models.OrderModel{},
		&models.PostingModel{},
		&models.PostingItemModel{},
		&models.PackageModel{},
		&models.ProductModel{},
	))

	store := persistence.NewGormStore(db)
	registry := appsync.NewTaskRegistry(zaptest.NewLogger(t))
	orchestrator := appsync.NewOrchestrator(store, noopClient{}, registry, noopLocker{}, appsync.DefaultFetchConfig(), zaptest.NewLogger(t))
	return orchestrator, store
}

func TestConfigValidate(t *testing.T) {
	t.Run("default config is valid", func(t *testing.T) {
		cfg := scheduler.DefaultConfig()
		assert.NoError(t, cfg.Validate())
	})

	t.Run("rejects sub-minute intervals", func(t *testing.T) {
		cfg := scheduler.Config{Enabled: true, Interval: 10 * time.Second}
		assert.ErrorIs(t, cfg.Validate(), scheduler.ErrInvalidConfig)
	})
}

func TestNewSyncSchedulerRejectsInvalidConfig(t *testing.T) {
	orchestrator, store := newOrchestrator(t)
	_, err := scheduler.NewSyncScheduler(
		scheduler.Config{Interval: time.Second},
		orchestrator,
		store.Shops(),
		zaptest.NewLogger(t),
	)
	assert.ErrorIs(t, err, scheduler.ErrInvalidConfig)
}

func TestSyncSchedulerStartStop(t *testing.T) {
	orchestrator, store := newOrchestrator(t)
	s, err := scheduler.NewSyncScheduler(
		scheduler.DefaultConfig(),
		orchestrator,
		store.Shops(),
		zaptest.NewLogger(t),
	)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, s.Start(ctx))
	require.NoError(t, s.Start(ctx), "a second start is a no-op")

	s.Stop()
	s.Stop() // idempotent
}
