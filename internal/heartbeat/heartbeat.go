// Package heartbeat implements the Heartbeat Ticker (C5): a periodic
// UpdateClientTimestamp call that keeps the server's liveness clock fresh
// and reports a current resource snapshot (§4.5).
//
// On failure the ticker makes exactly one immediate reconnect attempt; if
// that also fails it escalates to onFatal and stops, since a server that
// cannot be reached twice in a row is assumed gone for the purposes of this
// executor (an open question in the original design, resolved this way so
// a flaky single RPC doesn't tear down an otherwise-healthy executor).
package heartbeat

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/arkeep-io/pipeline-executor/internal/executorstate"
	"github.com/arkeep-io/pipeline-executor/internal/rpcapi"
)

// Proxy is the subset of the Server Proxy the ticker needs.
type Proxy interface {
	UpdateClientTimestamp(ctx context.Context, clientURI string, metrics *rpcapi.SystemMetrics) error
}

// MetricsFunc returns a current host resource snapshot to attach to each
// heartbeat. It may return nil if no snapshot is available.
type MetricsFunc func() *rpcapi.SystemMetrics

// Ticker periodically heartbeats while the executor is registered.
type Ticker struct {
	proxy    Proxy
	state    *executorstate.State
	interval time.Duration
	metrics  MetricsFunc
	onFatal  func(error)
	logger   *zap.Logger
}

// New creates a Ticker. onFatal is invoked (once) when two consecutive
// heartbeat attempts fail; it is expected to trigger abrupt teardown.
func New(proxy Proxy, state *executorstate.State, interval time.Duration, metrics MetricsFunc, onFatal func(error), logger *zap.Logger) *Ticker {
	if metrics == nil {
		metrics = func() *rpcapi.SystemMetrics { return nil }
	}
	return &Ticker{
		proxy:    proxy,
		state:    state,
		interval: interval,
		metrics:  metrics,
		onFatal:  onFatal,
		logger:   logger.Named("heartbeat"),
	}
}

// Run blocks, heartbeating every interval, until ctx is cancelled or a
// fatal failure escalates. It is meant to be run in its own goroutine.
func (t *Ticker) Run(ctx context.Context) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !t.state.Registered() {
				continue
			}
			if fatal := t.beat(ctx); fatal {
				return
			}
		}
	}
}

// beat sends one heartbeat, retrying once immediately on failure. It
// returns true if both attempts failed and onFatal was invoked.
func (t *Ticker) beat(ctx context.Context) bool {
	clientURI := t.state.ClientURI
	snapshot := t.metrics()

	err := t.proxy.UpdateClientTimestamp(ctx, clientURI, snapshot)
	if err == nil {
		return false
	}
	t.logger.Warn("heartbeat failed, retrying once", zap.Error(err))

	if !t.state.Registered() {
		// Unregistered while we were retrying; nothing left to escalate.
		return false
	}
	err = t.proxy.UpdateClientTimestamp(ctx, clientURI, t.metrics())
	if err == nil {
		return false
	}

	t.logger.Error("heartbeat failed twice, escalating", zap.Error(err))
	if t.onFatal != nil {
		t.onFatal(err)
	}
	return true
}
