// Package supervisor implements the Supervisor (C8): it launches numExec
// sibling executor processes and waits for all of them, propagating the
// first failure. Siblings are independent OS processes, not goroutines —
// each gets its own memory space, its own resource ledger, and its own
// registration with the server, matching §4.8's "share no state" rule.
package supervisor

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ChildEnvVar is set in each spawned sibling's environment so it knows to
// run as a single executor instead of re-spawning its own fleet.
const ChildEnvVar = "PIPELINE_EXECUTOR_SUPERVISOR_CHILD"

// Launch re-execs the current binary numExec times (each with
// ChildEnvVar=1 in its environment) and blocks until all siblings exit or
// ctx is cancelled, returning the first non-nil error.
func Launch(ctx context.Context, numExec int, logger *zap.Logger) error {
	if numExec < 1 {
		return fmt.Errorf("supervisor: numExec must be >= 1, got %d", numExec)
	}

	self, err := os.Executable()
	if err != nil {
		return fmt.Errorf("supervisor: failed to resolve own executable path: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < numExec; i++ {
		idx := i
		g.Go(func() error {
			return runChild(gctx, self, idx, logger)
		})
	}
	return g.Wait()
}

func runChild(ctx context.Context, self string, idx int, logger *zap.Logger) error {
	cmd := exec.CommandContext(ctx, self, os.Args[1:]...)
	cmd.Env = append(os.Environ(), ChildEnvVar+"=1")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	logger.Info("launching sibling executor", zap.Int("index", idx))
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("supervisor: sibling %d exited with error: %w", idx, err)
	}
	logger.Info("sibling executor exited cleanly", zap.Int("index", idx))
	return nil
}

// IsChild reports whether this process was spawned by Launch, as opposed
// to being the top-level supervisor invocation.
func IsChild() bool {
	return os.Getenv(ChildEnvVar) != ""
}
