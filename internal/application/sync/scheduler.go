package sync

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/alchemorsel/companion/internal/ports/outbound"
	"github.com/alchemorsel/companion/pkg/errors"
)

// Scheduler pushes locally authored, not-yet-confirmed writes to the
// remote store when connectivity becomes available. One best-effort flush
// pass per online transition; entities that fail stay buffered until the
// next transition. There is no retry timer and no persisted failure state.
type Scheduler struct {
	local      outbound.LocalStore
	remote     outbound.RemoteStore
	reconciler *Reconciler
	metrics    *Metrics
	logger     *zap.Logger

	syncing atomic.Bool
}

// NewScheduler creates a sync scheduler
func NewScheduler(
	local outbound.LocalStore,
	remote outbound.RemoteStore,
	reconciler *Reconciler,
	metrics *Metrics,
	logger *zap.Logger,
) *Scheduler {
	return &Scheduler{
		local:      local,
		remote:     remote,
		reconciler: reconciler,
		metrics:    metrics,
		logger:     logger.Named("scheduler"),
	}
}

// Register subscribes the scheduler to connectivity transitions
func (s *Scheduler) Register(observer outbound.ConnectivityObserver) {
	observer.OnAvailable(func() {
		s.SyncNow(context.Background())
	})
}

// SyncNow runs one flush-and-reconcile pass over every collection. A pass
// already in progress is not stacked; the overlapping transition is
// dropped. Collections are processed in no guaranteed order relative to
// each other, and callers must not assume referential ordering across
// collections while a pass runs.
func (s *Scheduler) SyncNow(ctx context.Context) {
	if !s.syncing.CompareAndSwap(false, true) {
		s.logger.Debug("flush pass already running, skipping")
		return
	}
	defer s.syncing.Store(false)

	s.metrics.FlushPasses.Inc()
	s.logger.Info("starting sync pass")

	// Mutable collections flush but stay local: the local copy remains the
	// working cache indefinitely.
	flushMutable(ctx, s, "recipes", s.local.Recipes, s.remote.BulkUpsertRecipes)
	flushMutable(ctx, s, "favorites", s.local.Favorites, s.remote.BulkUpsertFavorites)
	flushMutable(ctx, s, "shoppingLists", s.local.ShoppingLists, s.remote.BulkUpsertShoppingLists)

	// Append-only collections are archived: confirmed entities are removed
	// from the local buffer.
	flushAppendOnly(ctx, s, "chatMessages", s.local.Messages, s.remote.BulkUpsertMessages, s.local.DeleteMessage)
	flushAppendOnly(ctx, s, "chatSessions", s.local.Sessions, s.remote.BulkUpsertSessions, s.local.DeleteSession)

	// Backfill anything the remote has that this client has not seen yet.
	if _, err := s.reconciler.Recipes(ctx); err != nil {
		s.logger.Warn("recipe reconciliation failed", zap.Error(err))
	}
	if _, err := s.reconciler.Favorites(ctx); err != nil {
		s.logger.Warn("favorites reconciliation failed", zap.Error(err))
	}
	if _, err := s.reconciler.ShoppingLists(ctx); err != nil {
		s.logger.Warn("shopping list reconciliation failed", zap.Error(err))
	}

	s.logger.Info("sync pass complete")
}

// flushMutable pushes a collection's local entities without clearing them.
func flushMutable[E Keyed](
	ctx context.Context,
	s *Scheduler,
	collection string,
	all func(context.Context) ([]E, error),
	bulk func(context.Context, []E) (outbound.BulkReport, error),
) {
	entities, err := all(ctx)
	if err != nil {
		s.logger.Warn("local read failed, skipping flush",
			zap.String("collection", collection),
			zap.Error(err))
		return
	}
	if len(entities) == 0 {
		return
	}

	report, err := bulk(ctx, entities)
	if err != nil {
		s.logFlushError(collection, len(entities), err)
		return
	}
	s.recordReport(collection, report)
}

// flushAppendOnly pushes a collection's buffered entities and deletes each
// confirmed one from the local store. Failed entities stay buffered for
// the next online transition.
func flushAppendOnly[E Keyed](
	ctx context.Context,
	s *Scheduler,
	collection string,
	all func(context.Context) ([]E, error),
	bulk func(context.Context, []E) (outbound.BulkReport, error),
	clear func(context.Context, string) error,
) {
	entities, err := all(ctx)
	if err != nil {
		s.logger.Warn("local read failed, skipping flush",
			zap.String("collection", collection),
			zap.Error(err))
		return
	}
	if len(entities) == 0 {
		return
	}

	report, err := bulk(ctx, entities)
	if err != nil {
		s.logFlushError(collection, len(entities), err)
		return
	}

	for _, key := range report.Succeeded {
		if err := clear(ctx, key); err != nil {
			// The entity is durable remotely; a leftover local copy is
			// re-flushed next pass and deduplicated by the server's
			// natural-key upsert.
			s.logger.Warn("failed to clear synced entity",
				zap.String("collection", collection),
				zap.String("key", key),
				zap.Error(err))
		}
	}
	s.recordReport(collection, report)
}

func (s *Scheduler) logFlushError(collection string, count int, err error) {
	s.metrics.FlushFailures.WithLabelValues(collection).Add(float64(count))
	if errors.IsCode(err, errors.CodeAuth) {
		s.logger.Warn("flush aborted, no valid identity",
			zap.String("collection", collection))
		return
	}
	s.logger.Warn("flush failed, entities remain buffered",
		zap.String("collection", collection),
		zap.Int("pending", count),
		zap.Error(err))
}

func (s *Scheduler) recordReport(collection string, report outbound.BulkReport) {
	s.metrics.EntitiesFlushed.WithLabelValues(collection).Add(float64(len(report.Succeeded)))
	if len(report.Failed) > 0 {
		s.metrics.FlushFailures.WithLabelValues(collection).Add(float64(len(report.Failed)))
		s.logger.Warn("partial flush",
			zap.String("collection", collection),
			zap.Int("succeeded", len(report.Succeeded)),
			zap.Int("failed", len(report.Failed)))
		return
	}
	s.logger.Debug("flushed collection",
		zap.String("collection", collection),
		zap.Int("count", len(report.Succeeded)))
}
