// Package connectivity provides connectivity observers that report
// offline-to-online transitions. The trigger contract is edge-based: a
// registered callback fires at most once per transition, never continuously
// while the connection stays up.
package connectivity

import (
	"context"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/alchemorsel/companion/internal/ports/outbound"
)

// edgeNotifier implements the shared callback registry and edge detection.
type edgeNotifier struct {
	mu        sync.Mutex
	online    bool
	callbacks []func()
}

func (n *edgeNotifier) register(fn func()) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.callbacks = append(n.callbacks, fn)
}

// setOnline records the new state and fires callbacks only on the
// offline-to-online edge.
func (n *edgeNotifier) setOnline(online bool) {
	n.mu.Lock()
	wasOnline := n.online
	n.online = online
	var toFire []func()
	if online && !wasOnline {
		toFire = append(toFire, n.callbacks...)
	}
	n.mu.Unlock()

	for _, fn := range toFire {
		fn()
	}
}

func (n *edgeNotifier) isOnline() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.online
}

// PollingObserver probes a reachability endpoint on a fixed interval and
// fires registered callbacks on each offline-to-online transition.
type PollingObserver struct {
	edgeNotifier

	probeURL   string
	interval   time.Duration
	httpClient *http.Client
	logger     *zap.Logger

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewPollingObserver creates a polling observer. The observer starts
// offline; the first successful probe counts as a transition.
func NewPollingObserver(probeURL string, interval time.Duration, logger *zap.Logger) *PollingObserver {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &PollingObserver{
		probeURL:   probeURL,
		interval:   interval,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		logger:     logger.Named("connectivity"),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

var _ outbound.ConnectivityObserver = (*PollingObserver)(nil)

// OnAvailable registers fn to run once per offline-to-online transition
func (o *PollingObserver) OnAvailable(fn func()) {
	o.register(fn)
}

// Online reports the last probed state
func (o *PollingObserver) Online() bool {
	return o.isOnline()
}

// Start begins probing until Stop is called or ctx is done
func (o *PollingObserver) Start(ctx context.Context) {
	go o.run(ctx)
}

func (o *PollingObserver) run(ctx context.Context) {
	defer close(o.done)

	ticker := time.NewTicker(o.interval)
	defer ticker.Stop()

	o.probe(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-o.stop:
			return
		case <-ticker.C:
			o.probe(ctx)
		}
	}
}

func (o *PollingObserver) probe(ctx context.Context) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, o.probeURL, nil)
	if err != nil {
		o.setOnline(false)
		return
	}

	resp, err := o.httpClient.Do(req)
	if err != nil {
		if o.isOnline() {
			o.logger.Info("connectivity lost", zap.Error(err))
		}
		o.setOnline(false)
		return
	}
	resp.Body.Close()

	if !o.isOnline() {
		o.logger.Info("connectivity restored", zap.String("probe_url", o.probeURL))
	}
	o.setOnline(resp.StatusCode < 500)
}

// Stop halts probing and waits for the loop to exit
func (o *PollingObserver) Stop() {
	o.stopOnce.Do(func() { close(o.stop) })
	<-o.done
}

// ManualObserver is a connectivity observer driven by explicit state
// changes, for user-initiated sync actions and tests.
type ManualObserver struct {
	edgeNotifier
}

// NewManualObserver creates a manual observer, initially offline
func NewManualObserver() *ManualObserver {
	return &ManualObserver{}
}

var _ outbound.ConnectivityObserver = (*ManualObserver)(nil)

// OnAvailable registers fn to run once per offline-to-online transition
func (o *ManualObserver) OnAvailable(fn func()) {
	o.register(fn)
}

// SetOnline records the new state, firing callbacks on the online edge
func (o *ManualObserver) SetOnline(online bool) {
	o.setOnline(online)
}

// Online reports the current state
func (o *ManualObserver) Online() bool {
	return o.isOnline()
}
