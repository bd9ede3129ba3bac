package sync_test

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appsync "github.com/alchemorsel/companion/internal/application/sync"
	"github.com/alchemorsel/companion/internal/domain/chat"
	"github.com/alchemorsel/companion/internal/infrastructure/connectivity"
)

func newScheduler(f *syncFixture) (*appsync.Scheduler, *appsync.Metrics) {
	metrics := appsync.NewMetrics(nil)
	scheduler := appsync.NewScheduler(f.local, f.remote, f.reconciler(), metrics, zap.NewNop())
	return scheduler, metrics
}

func TestSyncFlushesOfflineBuffer(t *testing.T) {
	f := newSyncFixture(t)
	ctx := context.Background()

	// Work authored while offline: recipes stay cached, chat history is
	// buffered for archival.
	r1 := f.recipes.Recipe()
	r2 := f.recipes.Recipe()
	fav := f.recipes.Recipe()
	list := f.recipes.ShoppingList()
	session := f.chats.Session()
	m1 := f.chats.Message(session.SessionID, chat.SenderUser)
	m2 := f.chats.Message(session.SessionID, chat.SenderAI)

	require.NoError(t, f.local.PutRecipe(ctx, r1))
	require.NoError(t, f.local.PutRecipe(ctx, r2))
	require.NoError(t, f.local.PutFavorite(ctx, fav))
	require.NoError(t, f.local.PutShoppingList(ctx, list))
	require.NoError(t, f.local.PutSession(ctx, session))
	require.NoError(t, f.local.PutMessage(ctx, m1))
	require.NoError(t, f.local.PutMessage(ctx, m2))

	scheduler, _ := newScheduler(f)
	scheduler.SyncNow(ctx)

	// Everything reached the remote store.
	assert.Equal(t, 2, f.fake.Count("recipes"))
	assert.Equal(t, 1, f.fake.Count("favorites"))
	assert.Equal(t, 1, f.fake.Count("shoppingLists"))
	assert.Equal(t, 2, f.fake.Count("chatMessages"))
	assert.Equal(t, 1, f.fake.Count("chatSessions"))

	// Mutable collections remain the local working cache.
	recipes, err := f.local.Recipes(ctx)
	require.NoError(t, err)
	assert.Len(t, recipes, 2)

	// Append-only collections were confirmed and cleared.
	messages, err := f.local.Messages(ctx)
	require.NoError(t, err)
	assert.Empty(t, messages)
	sessions, err := f.local.Sessions(ctx)
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestSyncTriggeredOncePerOnlineTransition(t *testing.T) {
	f := newSyncFixture(t)
	scheduler, metrics := newScheduler(f)

	observer := connectivity.NewManualObserver()
	scheduler.Register(observer)

	observer.SetOnline(true)
	observer.SetOnline(true)
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.FlushPasses))

	observer.SetOnline(false)
	observer.SetOnline(true)
	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.FlushPasses))
}

func TestSyncPartialFailureKeepsFailedEntitiesBuffered(t *testing.T) {
	f := newSyncFixture(t)
	ctx := context.Background()

	session := f.chats.Session()
	ok := f.chats.Message(session.SessionID, chat.SenderUser)
	rejected := f.chats.Message(session.SessionID, chat.SenderAI)
	require.NoError(t, f.local.PutMessage(ctx, ok))
	require.NoError(t, f.local.PutMessage(ctx, rejected))
	f.fake.FailKey("chatMessages", rejected.MessageID)

	scheduler, metrics := newScheduler(f)
	scheduler.SyncNow(ctx)

	// The confirmed message is gone, the rejected one waits for the next
	// transition.
	messages, err := f.local.Messages(ctx)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, rejected.MessageID, messages[0].MessageID)

	assert.Equal(t, float64(1),
		testutil.ToFloat64(metrics.EntitiesFlushed.WithLabelValues("chatMessages")))
	assert.Equal(t, float64(1),
		testutil.ToFloat64(metrics.FlushFailures.WithLabelValues("chatMessages")))
}

func TestSyncRetriesBufferedEntitiesNextPass(t *testing.T) {
	f := newSyncFixture(t)
	ctx := context.Background()

	session := f.chats.Session()
	m := f.chats.Message(session.SessionID, chat.SenderUser)
	require.NoError(t, f.local.PutMessage(ctx, m))
	f.fake.RejectAuth(true)

	scheduler, _ := newScheduler(f)
	scheduler.SyncNow(ctx)

	// Nothing flushed, nothing lost.
	assert.Equal(t, 0, f.fake.Count("chatMessages"))
	messages, err := f.local.Messages(ctx)
	require.NoError(t, err)
	assert.Len(t, messages, 1)

	// Identity restored: the next pass drains the buffer.
	f.fake.RejectAuth(false)
	scheduler.SyncNow(ctx)

	assert.Equal(t, 1, f.fake.Count("chatMessages"))
	messages, err = f.local.Messages(ctx)
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestSyncBackfillsRemoteOnlyEntities(t *testing.T) {
	f := newSyncFixture(t)
	ctx := context.Background()

	remoteOnly := f.recipes.Recipe()
	f.fake.Seed("recipes", remoteOnly)

	scheduler, _ := newScheduler(f)
	scheduler.SyncNow(ctx)

	recipes, err := f.local.Recipes(ctx)
	require.NoError(t, err)
	require.Len(t, recipes, 1)
	assert.Equal(t, remoteOnly.ID, recipes[0].ID)
}

func TestSyncSurvivesRemoteOutage(t *testing.T) {
	f := newSyncFixture(t)
	ctx := context.Background()

	r := f.recipes.Recipe()
	require.NoError(t, f.local.PutRecipe(ctx, r))
	f.fake.Close()

	scheduler, _ := newScheduler(f)
	scheduler.SyncNow(ctx)

	recipes, err := f.local.Recipes(ctx)
	require.NoError(t, err)
	assert.Len(t, recipes, 1)
}

func TestSyncFlushIdempotentAcrossPasses(t *testing.T) {
	f := newSyncFixture(t)
	ctx := context.Background()

	r := f.recipes.Recipe()
	require.NoError(t, f.local.PutRecipe(ctx, r))

	scheduler, _ := newScheduler(f)
	scheduler.SyncNow(ctx)
	scheduler.SyncNow(ctx)

	// The server deduplicates by natural key; repeated flushes of the
	// mutable cache do not multiply entities.
	assert.Equal(t, 1, f.fake.Count("recipes"))
}
