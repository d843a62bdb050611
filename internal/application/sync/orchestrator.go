package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sellerdesk/backend/internal/domain/marketplace"
	"github.com/sellerdesk/backend/internal/domain/shared"
	"github.com/sellerdesk/backend/internal/domain/shop"
)

// Locker is the per-shop mutual exclusion guard. The engine assumes at most
// one concurrent run per (shop, kind): concurrent runs would race on the
// bulk-insert step, so the orchestrator refuses to start without the lock.
type Locker interface {
	// Acquire returns true if the caller now holds the (shop, kind) lock
	Acquire(ctx context.Context, shopID uuid.UUID, kind TaskKind) (bool, error)
	// Release drops the lock; safe to call for a lock already expired
	Release(ctx context.Context, shopID uuid.UUID, kind TaskKind) error
}

// Orchestrator drives sync runs: fetcher → reconciler page by page, one
// sequential flow per run, with task-registry progress along the way.
// Independent shops may sync concurrently; one shop never does.
type Orchestrator struct {
	store    Store
	client   marketplace.Client
	registry *TaskRegistry
	locker   Locker
	postings *PostingReconciler
	products *ProductReconciler
	fetchCfg FetchConfig
	log      *zap.Logger
}

// NewOrchestrator wires the sync engine together. The registry instance is
// injected explicitly; there are no package-level mutable globals.
func NewOrchestrator(
	store Store,
	client marketplace.Client,
	registry *TaskRegistry,
	locker Locker,
	fetchCfg FetchConfig,
	log *zap.Logger,
) *Orchestrator {
	return &Orchestrator{
		store:    store,
		client:   client,
		registry: registry,
		locker:   locker,
		postings: NewPostingReconciler(store, client, log),
		products: NewProductReconciler(store, log),
		fetchCfg: fetchCfg,
		log:      log.Named("sync-orchestrator"),
	}
}

// StartSync begins an asynchronous sync run for a shop and returns the task
// ID immediately (fire-and-forget). Returns shared.ErrSyncInProgress when a
// run for the same (shop, kind) already holds the lock.
func (o *Orchestrator) StartSync(ctx context.Context, shopID uuid.UUID, kind TaskKind, mode Mode) (string, error) {
	if !mode.IsValid() {
		return "", shared.ErrInvalidInput
	}

	sh, err := o.store.Shops().FindByID(ctx, shopID)
	if err != nil {
		return "", err
	}

	acquired, err := o.locker.Acquire(ctx, shopID, kind)
	if err != nil {
		return "", err
	}
	if !acquired {
		return "", shared.ErrSyncInProgress
	}

	task := o.registry.Create(shopID, kind, mode)

	// The run outlives the triggering request: detach from its context.
	go o.run(context.Background(), task.ID, sh, kind, mode)

	return task.ID, nil
}

// GetTask returns a task snapshot
func (o *Orchestrator) GetTask(taskID string) (SyncTask, bool) {
	return o.registry.Get(taskID)
}

func (o *Orchestrator) run(ctx context.Context, taskID string, sh *shop.Shop, kind TaskKind, mode Mode) {
	defer func() {
		if err := o.locker.Release(ctx, sh.ID, kind); err != nil {
			o.log.Warn("Failed to release sync lock",
				zap.String("shop_id", sh.ID.String()),
				zap.Error(err),
			)
		}
	}()

	log := o.log.With(
		zap.String("task_id", taskID),
		zap.String("shop_id", sh.ID.String()),
		zap.String("kind", string(kind)),
		zap.String("mode", string(mode)),
	)
	log.Info("Sync run started")

	var (
		result TaskResult
		err    error
	)
	switch kind {
	case TaskKindProducts:
		result, err = o.runProducts(ctx, taskID, sh)
	default:
		result, err = o.runPostings(ctx, taskID, sh, mode)
	}

	if err != nil {
		// Progress already committed from earlier pages is retained; the
		// task reports exactly what reached the store.
		o.registry.Fail(taskID, err, fmt.Sprintf("sync failed after %d pages (%d records committed)", result.Pages, result.Processed))
		log.Error("Sync run failed",
			zap.Int("pages", result.Pages),
			zap.Int("processed", result.Processed),
			zap.Error(err),
		)
		return
	}

	if stampErr := o.store.Shops().StampSynced(ctx, sh.ID, time.Now()); stampErr != nil {
		log.Warn("Failed to stamp shop watermark", zap.Error(stampErr))
	}

	o.registry.Complete(taskID, result, fmt.Sprintf("synced %d records in %d pages", result.Processed, result.Pages))
	log.Info("Sync run completed",
		zap.Int("pages", result.Pages),
		zap.Int("processed", result.Processed),
	)
}

// runPostings drives the posting pipeline across all pages. Pages are
// processed strictly in order; there is no parallel page processing because
// each page's diff assumes exclusive knowledge of pre-page state.
func (o *Orchestrator) runPostings(ctx context.Context, taskID string, sh *shop.Shop, mode Mode) (TaskResult, error) {
	pager := NewPostingPager(o.client, sh.Credentials(), mode, o.fetchCfg)
	var result TaskResult
	for {
		page, hasNext, err := pager.Next(ctx)
		if err != nil {
			return result, err
		}
		if len(page) == 0 && !hasNext {
			break
		}

		count, err := o.postings.ReconcilePage(ctx, sh, page)
		if err != nil {
			return result, err
		}
		result.Processed += count
		result.Pages++

		o.registry.UpdateProgress(taskID, pager.ProgressEstimate(),
			fmt.Sprintf("synced %d postings", result.Processed))

		if !hasNext {
			break
		}
	}
	return result, nil
}

func (o *Orchestrator) runProducts(ctx context.Context, taskID string, sh *shop.Shop) (TaskResult, error) {
	pager := NewProductPager(o.client, sh.Credentials(), o.fetchCfg.BatchSize)
	var result TaskResult
	for {
		page, hasNext, err := pager.Next(ctx)
		if err != nil {
			return result, err
		}
		if len(page) == 0 && !hasNext {
			break
		}

		count, err := o.products.ReconcilePage(ctx, sh, page)
		if err != nil {
			return result, err
		}
		result.Processed += count
		result.Pages++

		o.registry.UpdateProgress(taskID, pager.ProgressEstimate(),
			fmt.Sprintf("synced %d products", result.Processed))

		if !hasNext {
			break
		}
	}
	return result, nil
}
