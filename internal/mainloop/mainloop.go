// Package mainloop implements the Main Loop (C6): the single goroutine that
// owns all resource-accounting state and drives the executor's steady-state
// behavior per §4.6 — tick, sweep, idle accrual, seppuku/drain checks, and
// command dispatch.
package mainloop

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/arkeep-io/pipeline-executor/internal/executorstate"
	"github.com/arkeep-io/pipeline-executor/internal/ledger"
	"github.com/arkeep-io/pipeline-executor/internal/rpcapi"
	"github.com/arkeep-io/pipeline-executor/internal/serverproxy"
	"github.com/arkeep-io/pipeline-executor/internal/stagerunner"
	"github.com/arkeep-io/pipeline-executor/internal/workerpool"
)

// ServerProxy is the subset of the Server Proxy the Main Loop and the Stage
// Runners it spawns need.
type ServerProxy interface {
	GetCommand(ctx context.Context, clientURI string, memFree float64, procsFree int) (serverproxy.Command, error)
	stagerunner.ServerProxy
}

// Loop is the C6 state machine. Construct with New and run with Run; Run
// blocks until the executor decides to shut down (either told to by the
// server, or self-initiated via idle/drain limits) or ctx is cancelled.
type Loop struct {
	proxy  ServerProxy
	ledger *ledger.Ledger
	state  *executorstate.State
	pool   *workerpool.Pool
	cfg    executorstate.Config
	logger *zap.Logger

	wake chan struct{}
}

// New creates a Loop. cfg should already have WithDefaults applied.
func New(proxy ServerProxy, led *ledger.Ledger, state *executorstate.State, pool *workerpool.Pool, cfg executorstate.Config, logger *zap.Logger) *Loop {
	return &Loop{
		proxy:  proxy,
		ledger: led,
		state:  state,
		pool:   pool,
		cfg:    cfg,
		logger: logger.Named("mainloop"),
		wake:   make(chan struct{}, 1),
	}
}

// Outcome describes why Run returned.
type Outcome int

const (
	// OutcomeShutdownNormally means the server told the executor to retire
	// (graceful: wait for in-flight children first).
	OutcomeShutdownNormally Outcome = iota
	// OutcomeIdleTimeout means the executor retired itself after sitting
	// idle past IdleLimit (graceful).
	OutcomeIdleTimeout
	// OutcomeDrainDeadline means AcceptLimit elapsed; the executor stops
	// accepting new stages and waits out its current children (graceful).
	OutcomeDrainDeadline
	// OutcomeContextCancelled means ctx was cancelled — the caller is
	// expected to proceed with abrupt teardown.
	OutcomeContextCancelled
)

// Run executes the steady-state loop until a shutdown condition is met.
// Each pass advances idle accounting by wall-clock elapsed since the last
// pass, sweeps finished children, re-evaluates the seppuku/drain deadlines,
// and dispatches one getCommand round; besides the RPCs and pool admission,
// the loop blocks in waitFor, entered when the server answers wait and,
// while draining, until the remaining children finish.
func (l *Loop) Run(ctx context.Context) Outcome {
	last := time.Now()
	draining := false

	for {
		select {
		case <-ctx.Done():
			return OutcomeContextCancelled
		default:
		}

		now := time.Now()
		l.state.Tick(now.Sub(last))
		last = now

		l.sweep()

		if l.cfg.IdleLimit != nil && l.state.IdleElapsed >= *l.cfg.IdleLimit {
			l.logger.Info("idle limit reached, retiring", zap.Duration("idle_elapsed", l.state.IdleElapsed))
			return OutcomeIdleTimeout
		}

		if !draining && l.cfg.AcceptLimit != nil && time.Since(l.state.ConnectedAt) >= *l.cfg.AcceptLimit {
			l.logger.Info("accept limit reached, draining")
			draining = true
		}

		if draining {
			if len(l.state.Running) == 0 {
				return OutcomeDrainDeadline
			}
			l.waitFor(ctx, l.cfg.WaitTimeout)
			continue
		}

		cmd, err := l.proxy.GetCommand(ctx, l.state.ClientURI, l.ledger.MemFree(), l.ledger.ProcsFree())
		if err != nil {
			l.logger.Warn("getCommand failed, will retry next tick", zap.Error(err))
			continue
		}

		switch cmd.Verb {
		case rpcapi.VerbShutdownNormally:
			return OutcomeShutdownNormally
		case rpcapi.VerbWait:
			// Nothing to do until the next tick, wake, or WaitTimeout.
			l.waitFor(ctx, l.cfg.WaitTimeout)
		case rpcapi.VerbRunStage:
			l.dispatch(ctx, cmd.StageID)
		default:
			l.logger.Warn("unrecognized verb from getCommand", zap.String("verb", string(cmd.Verb)))
		}
	}
}

// waitFor blocks until ctx is done, the wake channel fires, or timeout
// elapses — whichever comes first, so a just-freed resource or a shutdown
// signal interrupts an otherwise idle wait immediately.
func (l *Loop) waitFor(ctx context.Context, timeout time.Duration) {
	select {
	case <-ctx.Done():
	case <-l.wake:
	case <-time.After(timeout):
	}
}

// signalWake requests the loop re-evaluate immediately instead of waiting
// out its current tick/wait interval. Non-blocking: if a wake is already
// pending, this is a no-op (clear-then-wait — only one pending wake needed).
func (l *Loop) signalWake() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// dispatch admits (or rejects) a run_stage command and, if admitted, runs
// it on the worker pool.
func (l *Loop) dispatch(ctx context.Context, stageID int64) {
	mem, err := l.proxy.GetStageMem(ctx, stageID)
	if err != nil {
		l.logger.Warn("GetStageMem failed, skipping dispatch", zap.Int64("stage_id", stageID), zap.Error(err))
		return
	}
	procs, err := l.proxy.GetStageProcs(ctx, stageID)
	if err != nil {
		l.logger.Warn("GetStageProcs failed, skipping dispatch", zap.Int64("stage_id", stageID), zap.Error(err))
		return
	}

	if !l.ledger.Admits(mem, procs) {
		l.logger.Warn("server offered an over-budget stage; not dispatching it",
			zap.Int64("stage_id", stageID), zap.Float64("mem", mem), zap.Int("procs", procs))
		return
	}

	done := make(chan struct{})
	l.ledger.Reserve(executorstate.Child{StageID: stageID, Mem: mem, Procs: procs, Done: done})

	_, err = l.pool.Submit(ctx, stageID, func(taskCtx context.Context, pids workerpool.PIDRegistrar) (workerpool.Outcome, error) {
		outcome, runErr := stagerunner.Run(taskCtx, l.proxy, l.state.ClientURI, stageID, pids, l.logger)
		close(done)
		l.signalWake()
		return outcome, runErr
	})
	if err != nil {
		l.logger.Error("failed to submit stage to worker pool", zap.Int64("stage_id", stageID), zap.Error(err))
		l.ledger.Release(stageID)
		close(done)
	}
}

// sweep reconciles finished children: any stage whose Done channel is
// closed is released from the ledger so its resources show up as free on
// the next getCommand call (§4.6 step 2).
func (l *Loop) sweep() {
	for stageID, child := range l.state.Running {
		select {
		case <-child.Done:
			l.ledger.Release(stageID)
		default:
		}
	}
}
