// Package lifecycle implements the Lifecycle component (C7): bring-up
// (bind a local identity, dial the already-resolved server, register) and both teardown
// disciplines (graceful and abrupt) described in §4.7 and §9.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arkeep-io/pipeline-executor/internal/executorstate"
	"github.com/arkeep-io/pipeline-executor/internal/heartbeat"
	"github.com/arkeep-io/pipeline-executor/internal/ledger"
	"github.com/arkeep-io/pipeline-executor/internal/mainloop"
	"github.com/arkeep-io/pipeline-executor/internal/netaddr"
	"github.com/arkeep-io/pipeline-executor/internal/resources"
	"github.com/arkeep-io/pipeline-executor/internal/rpcapi"
	"github.com/arkeep-io/pipeline-executor/internal/serverproxy"
	"github.com/arkeep-io/pipeline-executor/internal/workerpool"
)

// Executor owns one executor instance's full lifecycle: bring-up, steady
// state, and teardown.
type Executor struct {
	cfg    executorstate.Config
	logger *zap.Logger

	listener *net.TCPListener
	proxy    *serverproxy.Proxy
	state    *executorstate.State
	ledger   *ledger.Ledger
	pool     *workerpool.Pool
}

// New constructs an Executor from configuration. It does not yet bind or
// register — call Run for the full bring-up/steady-state/teardown cycle.
//
// Each instance is tagged with a random id so log lines from sibling
// executors launched by the Supervisor (which otherwise share a process
// image, binary, and host) can be told apart.
func New(cfg executorstate.Config, logger *zap.Logger) *Executor {
	return &Executor{
		cfg:    cfg.WithDefaults(),
		logger: logger.With(zap.String("executor_id", uuid.NewString())),
		state:  executorstate.New(),
	}
}

// Run performs bring-up, runs the steady-state Main Loop to completion, and
// tears down — gracefully for a server-directed or self-initiated retire,
// abruptly if ctx is cancelled out from under it (e.g. SIGTERM).
func (e *Executor) Run(ctx context.Context, serverURI string) error {
	if err := e.bringUp(ctx, serverURI); err != nil {
		return err
	}

	hbCtx, cancelHB := context.WithCancel(ctx)
	defer cancelHB()

	fatalCh := make(chan error, 1)
	go heartbeat.New(e.proxy, e.state, e.cfg.HeartbeatInterval, wireMetrics, func(err error) {
		select {
		case fatalCh <- err:
		default:
		}
	}, e.logger).Run(hbCtx)

	loop := mainloop.New(e.proxy, e.ledger, e.state, e.pool, e.cfg, e.logger)

	runCtx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()

	outcomeCh := make(chan mainloop.Outcome, 1)
	go func() { outcomeCh <- loop.Run(runCtx) }()

	var outcome mainloop.Outcome
	select {
	case outcome = <-outcomeCh:
	case fatalErr := <-fatalCh:
		e.logger.Error("heartbeat failure escalated, tearing down abruptly", zap.Error(fatalErr))
		cancelRun()
		<-outcomeCh
		e.abruptTeardown(context.Background())
		return fmt.Errorf("lifecycle: heartbeat failure: %w", fatalErr)
	}

	switch outcome {
	case mainloop.OutcomeContextCancelled:
		// ctx is only ever cancelled by the caller (operator interrupt via
		// signal.NotifyContext) — an abrupt teardown here is expected
		// shutdown behavior, not a failure, so it reports success (§4.7,
		// §6: exit 0 on a handled interrupt).
		e.logger.Info("context cancelled, tearing down abruptly", zap.Error(ctx.Err()))
		e.abruptTeardown(context.Background())
		return nil
	default:
		e.gracefulTeardown(context.Background())
		return nil
	}
}

// bringUp binds a local listener to derive this executor's clientURI,
// dials the server, and registers (§4.7, invariant: registered ⇒
// clientURI/serverURI bound).
func (e *Executor) bringUp(ctx context.Context, serverURI string) error {
	if e.cfg.MemTotal <= 0 || e.cfg.ProcTotal <= 0 {
		if err := e.detectBudget(ctx); err != nil {
			return fmt.Errorf("lifecycle: failed to detect host resource budget: %w", err)
		}
	}

	listener, err := net.ListenTCP("tcp", &net.TCPAddr{Port: 0})
	if err != nil {
		return fmt.Errorf("lifecycle: failed to bind local listener: %w", err)
	}
	e.listener = listener

	clientURI := netaddr.ClientURI("tcp", listener)

	proxy, err := serverproxy.Dial(ctx, serverURI)
	if err != nil {
		listener.Close()
		return fmt.Errorf("lifecycle: failed to dial server %s: %w", serverURI, err)
	}
	e.proxy = proxy

	e.state.ClientURI = clientURI
	e.state.ServerURI = serverURI
	e.state.ConnectedAt = time.Now()

	if err := e.proxy.RegisterClient(ctx, clientURI, e.cfg.MemTotal, e.cfg.ProcTotal); err != nil {
		proxy.Close()
		listener.Close()
		return fmt.Errorf("lifecycle: registration failed: %w", err)
	}
	e.state.SetRegistered(true)

	e.ledger = ledger.New(e.cfg.MemTotal, e.cfg.ProcTotal, e.state)
	e.pool = workerpool.New(e.cfg.ProcTotal, nil)

	e.logger.Info("registered with pipeline server",
		zap.String("client_uri", clientURI), zap.String("server_uri", serverURI))
	return nil
}

// detectBudget fills in unset MemTotal/ProcTotal from a host snapshot, so
// an operator who leaves --mem/--proc at 0 still gets a usable (non-zero)
// resource budget instead of an executor that can never admit a stage
// (§7: 0 means "detect from host").
func (e *Executor) detectBudget(ctx context.Context) error {
	snap, err := resources.Collect(ctx)
	if err != nil {
		return err
	}
	if e.cfg.MemTotal <= 0 {
		e.cfg.MemTotal = snap.MemTotalGB
	}
	if e.cfg.ProcTotal <= 0 {
		e.cfg.ProcTotal = snap.NumCPU
	}
	e.logger.Info("detected host resource budget",
		zap.Float64("mem_total_gb", e.cfg.MemTotal), zap.Int("proc_total", e.cfg.ProcTotal))
	return nil
}

// gracefulTeardown waits for in-flight children to finish, then unregisters
// (§9: clear registered before the unregister RPC so a concurrently
// scheduled heartbeat observes the flag cleared).
func (e *Executor) gracefulTeardown(ctx context.Context) {
	e.logger.Info("retiring gracefully, waiting for in-flight stages")
	e.pool.GracefulClose()
	e.unregisterAndClose(ctx)
}

// abruptTeardown signals SIGTERM to every live child, then unregisters.
func (e *Executor) abruptTeardown(ctx context.Context) {
	e.logger.Warn("retiring abruptly, terminating in-flight stages")
	e.pool.TerminateAll()
	e.unregisterAndClose(ctx)
}

func (e *Executor) unregisterAndClose(ctx context.Context) {
	e.state.SetRegistered(false)

	unregCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := e.proxy.UnregisterClient(unregCtx, e.state.ClientURI); err != nil {
		e.logger.Warn("unregisterClient failed; server will reclaim via liveness timeout", zap.Error(err))
	}

	if err := e.proxy.Close(); err != nil {
		e.logger.Warn("failed to close server connection", zap.Error(err))
	}
	if err := e.listener.Close(); err != nil && !isClosed(err) {
		e.logger.Warn("failed to close local listener", zap.Error(err))
	}
}

func isClosed(err error) bool {
	return errors.Is(err, net.ErrClosed)
}

// wireMetrics samples the host and converts it to a wire SystemMetrics
// message; a failed sample degrades to no metrics rather than blocking
// the heartbeat.
func wireMetrics() *rpcapi.SystemMetrics {
	snap, err := resources.Collect(context.Background())
	if err != nil {
		return nil
	}
	return snap.ToWire()
}
