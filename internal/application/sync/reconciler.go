// Package sync provides the reconciliation engine that merges local and
// remote collections, and the scheduler that flushes locally buffered
// writes when connectivity returns.
package sync

import (
	"context"

	"go.uber.org/zap"

	"github.com/alchemorsel/companion/internal/domain/recipe"
	"github.com/alchemorsel/companion/internal/ports/outbound"
)

// Keyed is any entity with a natural merge key.
type Keyed interface {
	Key() string
}

// Merge produces one canonical set from two possibly divergent sources.
// The merge policy is REMOTE-AUTHORITATIVE: for any key present in both
// sets the remote entity wins and the local version is discarded without a
// conflict prompt. Remote is the long-term source of truth. This is a
// documented policy, not a consequence of insertion order.
func Merge[E Keyed](local, remote []E) []E {
	merged := make(map[string]E, len(local)+len(remote))
	order := make([]string, 0, len(local)+len(remote))

	for _, e := range local {
		if _, seen := merged[e.Key()]; !seen {
			order = append(order, e.Key())
		}
		merged[e.Key()] = e
	}
	for _, e := range remote {
		if _, seen := merged[e.Key()]; !seen {
			order = append(order, e.Key())
		}
		merged[e.Key()] = e
	}

	out := make([]E, 0, len(order))
	for _, key := range order {
		out = append(out, merged[key])
	}
	return out
}

// reconcile merges one collection and backfills remote-only entities into
// the local store. A failed remote read degrades to the local set alone;
// remote unavailability is never raised to the caller. A failed local read
// is raised: there is nothing left to degrade to.
func reconcile[E Keyed](
	ctx context.Context,
	collection string,
	localAll func(context.Context) ([]E, error),
	localPut func(context.Context, E) error,
	remoteList func(context.Context) ([]E, error),
	logger *zap.Logger,
) ([]E, error) {
	local, err := localAll(ctx)
	if err != nil {
		return nil, err
	}

	remote, err := remoteList(ctx)
	if err != nil {
		logger.Warn("remote read failed, serving local data only",
			zap.String("collection", collection),
			zap.Error(err))
		return local, nil
	}

	localKeys := make(map[string]struct{}, len(local))
	for _, e := range local {
		localKeys[e.Key()] = struct{}{}
	}

	// Backfill: remote-only entities become local. Local-only entities are
	// not pushed here; that is the scheduler's job.
	for _, e := range remote {
		if _, exists := localKeys[e.Key()]; exists {
			continue
		}
		if err := localPut(ctx, e); err != nil {
			logger.Warn("backfill write failed",
				zap.String("collection", collection),
				zap.String("key", e.Key()),
				zap.Error(err))
		}
	}

	return Merge(local, remote), nil
}

// Reconciler merges the mutable collections with their remote
// counterparts and leaves the local store consistent with the result.
type Reconciler struct {
	local  outbound.RecipeLocalStore
	remote outbound.RemoteStore
	logger *zap.Logger
}

// NewReconciler creates a reconciliation engine
func NewReconciler(local outbound.RecipeLocalStore, remote outbound.RemoteStore, logger *zap.Logger) *Reconciler {
	return &Reconciler{
		local:  local,
		remote: remote,
		logger: logger.Named("reconciler"),
	}
}

// Recipes returns the canonical recipe set
func (r *Reconciler) Recipes(ctx context.Context) ([]recipe.Recipe, error) {
	return reconcile(ctx, "recipes", r.local.Recipes, r.local.PutRecipe, r.remote.ListRecipes, r.logger)
}

// Favorites returns the canonical favorites set
func (r *Reconciler) Favorites(ctx context.Context) ([]recipe.Recipe, error) {
	return reconcile(ctx, "favorites", r.local.Favorites, r.local.PutFavorite, r.remote.ListFavorites, r.logger)
}

// ShoppingLists returns the canonical shopping list set
func (r *Reconciler) ShoppingLists(ctx context.Context) ([]recipe.ShoppingList, error) {
	return reconcile(ctx, "shoppingLists", r.local.ShoppingLists, r.local.PutShoppingList, r.remote.ListShoppingLists, r.logger)
}
