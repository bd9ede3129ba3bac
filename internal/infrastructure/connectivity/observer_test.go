package connectivity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestManualObserverFiresOncePerTransition(t *testing.T) {
	observer := NewManualObserver()

	var fired int32
	observer.OnAvailable(func() { atomic.AddInt32(&fired, 1) })

	assert.False(t, observer.Online())

	observer.SetOnline(true)
	assert.Equal(t, int32(1), atomic.LoadInt32(&fired))
	assert.True(t, observer.Online())

	// Staying online is not a transition.
	observer.SetOnline(true)
	assert.Equal(t, int32(1), atomic.LoadInt32(&fired))

	// Going offline fires nothing; coming back fires again.
	observer.SetOnline(false)
	assert.Equal(t, int32(1), atomic.LoadInt32(&fired))
	observer.SetOnline(true)
	assert.Equal(t, int32(2), atomic.LoadInt32(&fired))
}

func TestManualObserverNotifiesAllCallbacks(t *testing.T) {
	observer := NewManualObserver()

	var first, second int32
	observer.OnAvailable(func() { atomic.AddInt32(&first, 1) })
	observer.OnAvailable(func() { atomic.AddInt32(&second, 1) })

	observer.SetOnline(true)
	assert.Equal(t, int32(1), atomic.LoadInt32(&first))
	assert.Equal(t, int32(1), atomic.LoadInt32(&second))
}

func TestPollingObserverDetectsTransitions(t *testing.T) {
	var healthy atomic.Bool
	healthy.Store(true)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !healthy.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)

	observer := NewPollingObserver(server.URL, 10*time.Millisecond, zap.NewNop())

	online := make(chan struct{}, 4)
	observer.OnAvailable(func() { online <- struct{}{} })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	observer.Start(ctx)
	defer observer.Stop()

	waitSignal(t, online, "first online transition")

	healthy.Store(false)
	waitFor(t, func() bool { return !observer.Online() }, "probe to observe outage")

	healthy.Store(true)
	waitSignal(t, online, "second online transition")
}

func TestPollingObserverStaysOfflineWhenUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	observer := NewPollingObserver(server.URL, 10*time.Millisecond, zap.NewNop())

	fired := make(chan struct{}, 1)
	observer.OnAvailable(func() { fired <- struct{}{} })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	observer.Start(ctx)
	defer observer.Stop()

	select {
	case <-fired:
		t.Fatal("callback fired with no reachable endpoint")
	case <-time.After(100 * time.Millisecond):
	}
	assert.False(t, observer.Online())
}

func waitSignal(t *testing.T, ch <-chan struct{}, what string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
	}
}

func waitFor(t *testing.T, cond func() bool, what string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	require.Fail(t, "timed out waiting for "+what)
}
