package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	appsync "github.com/sellerdesk/backend/internal/application/sync"
	"github.com/sellerdesk/backend/internal/domain/shared"
	"github.com/sellerdesk/backend/internal/domain/shop"
)

// ErrInvalidConfig indicates an invalid scheduler configuration
var ErrInvalidConfig = errors.New("scheduler: invalid configuration")

// Config holds configuration for the periodic sync scheduler
type Config struct {
	// Enabled indicates if the scheduler runs at all
	Enabled bool
	// Interval is how often the scheduler kicks off incremental syncs
	Interval time.Duration
}

// DefaultConfig returns the default scheduler configuration
func DefaultConfig() Config {
	return Config{
		Enabled:  true,
		Interval: 15 * time.Minute,
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Interval < time.Minute {
		return ErrInvalidConfig
	}
	return nil
}

// SyncScheduler periodically starts incremental posting syncs for every
// sync-enabled shop. A shop whose previous run is still in flight is simply
// skipped this round; the lock inside the orchestrator guarantees that.
type SyncScheduler struct {
	config       Config
	orchestrator *appsync.Orchestrator
	shops        shop.Repository
	logger       *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewSyncScheduler creates a periodic sync scheduler
func NewSyncScheduler(config Config, orchestrator *appsync.Orchestrator, shops shop.Repository, logger *zap.Logger) (*SyncScheduler, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &SyncScheduler{
		config:       config,
		orchestrator: orchestrator,
		shops:        shops,
		logger:       logger.Named("sync-scheduler"),
	}, nil
}

// Start starts the scheduler loop
func (s *SyncScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.loop(ctx)

	s.logger.Info("Sync scheduler started",
		zap.Duration("interval", s.config.Interval),
	)
	return nil
}

// Stop gracefully stops the scheduler
func (s *SyncScheduler) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	s.logger.Info("Sync scheduler stopped")
}

func (s *SyncScheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// tick starts an incremental posting sync for every eligible shop
func (s *SyncScheduler) tick(ctx context.Context) {
	shops, err := s.shops.FindSyncEnabled(ctx)
	if err != nil {
		s.logger.Error("Failed to list sync-enabled shops", zap.Error(err))
		return
	}

	for _, sh := range shops {
		taskID, err := s.orchestrator.StartSync(ctx, sh.ID, appsync.TaskKindOrders, appsync.ModeIncremental)
		if err != nil {
			if errors.Is(err, shared.ErrSyncInProgress) {
				s.logger.Debug("Skipping shop with sync in flight",
					zap.String("shop_id", sh.ID.String()),
				)
				continue
			}
			s.logger.Error("Failed to start scheduled sync",
				zap.String("shop_id", sh.ID.String()),
				zap.Error(err),
			)
			continue
		}
		s.logger.Info("Scheduled sync started",
			zap.String("shop_id", sh.ID.String()),
			zap.String("task_id", taskID),
		)
	}
}
