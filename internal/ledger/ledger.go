// Package ledger implements the Resource Ledger (C4): pure in-memory
// admission accounting over the executor's memory and process budgets.
//
// Per §4.4/§9, the ledger is only ever touched from the Main Loop goroutine
// — freeResources() sweeps completed children once per iteration rather than
// releasing from Stage Runner callbacks, which would race with admission
// decisions. Ledger is therefore intentionally unsynchronized; callers must
// not share an instance across goroutines.
package ledger

import "github.com/arkeep-io/pipeline-executor/internal/executorstate"

// Ledger tracks admissibility against a fixed total budget.
type Ledger struct {
	memTotal  float64
	procTotal int
	state     *executorstate.State
}

// New creates a Ledger backed by the given totals and runtime state.
func New(memTotal float64, procTotal int, state *executorstate.State) *Ledger {
	return &Ledger{memTotal: memTotal, procTotal: procTotal, state: state}
}

// Admits reports whether a stage requesting (mem, procs) can be dispatched
// right now without exceeding the configured budget (§3 invariant 1,
// §8 boundary: mem == memFree is admissible, mem > memFree is not).
func (l *Ledger) Admits(mem float64, procs int) bool {
	return mem <= l.memTotal-l.state.MemInUse && procs <= l.procTotal-l.state.ProcsInUse
}

// MemFree and ProcsFree report current headroom.
func (l *Ledger) MemFree() float64 { return l.state.MemFree(l.memTotal) }
func (l *Ledger) ProcsFree() int   { return l.state.ProcsFree(l.procTotal) }

// Reserve commits resources for a dispatched stage. Callers must have
// checked Admits first; Reserve does not itself enforce the budget so that
// a caller can distinguish "rejected by ledger" from "server sent an
// over-budget stage" (the Main Loop treats the latter as a server bug and
// does not dispatch the stage).
func (l *Ledger) Reserve(child executorstate.Child) {
	l.state.Reserve(child)
}

// Release returns a completed stage's resources to the free pool.
func (l *Ledger) Release(stageID int64) {
	l.state.Release(stageID)
}

// MemTotal and ProcTotal expose the configured budget, e.g. for logging.
func (l *Ledger) MemTotal() float64 { return l.memTotal }
func (l *Ledger) ProcTotal() int    { return l.procTotal }
