// Package stagerunner implements the Stage Runner (C2): a one-shot routine
// that executes a single stage as a child process, streams its output to a
// stage log, and reports start/finish/fail to the server (§4.2).
package stagerunner

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"go.uber.org/zap"

	"github.com/arkeep-io/pipeline-executor/internal/shlex"
	"github.com/arkeep-io/pipeline-executor/internal/workerpool"
)

// Outcome is returned once the stage has finished: whether it succeeded,
// and the (mem, procs) it had reserved so the Main Loop can reconcile the
// Resource Ledger (§4.2 step 7).
type Outcome = workerpool.Outcome

// ServerProxy is the subset of the Server Proxy the Stage Runner needs. It
// is an interface here so tests can substitute a fake without standing up
// real gRPC.
type ServerProxy interface {
	GetStageCommand(ctx context.Context, stageID int64) (string, error)
	GetStageLogfile(ctx context.Context, stageID int64) (string, error)
	GetStageMem(ctx context.Context, stageID int64) (float64, error)
	GetStageProcs(ctx context.Context, stageID int64) (int, error)
	SetStageStarted(ctx context.Context, stageID int64, clientURI string) error
	SetStageFinished(ctx context.Context, stageID int64, clientURI string) error
	SetStageFailed(ctx context.Context, stageID int64, clientURI string) error
}

// Run executes stage id to completion and reports its outcome to proxy.
// It always returns an Outcome carrying whatever (mem, procs) it managed to
// learn about the stage so the caller can reconcile the ledger even when an
// error occurred — per §4.2, "the Stage Runner must still return resources
// to its caller" even when reporting to the server itself fails.
func Run(ctx context.Context, proxy ServerProxy, clientURI string, stageID int64, pids workerpool.PIDRegistrar, logger *zap.Logger) (Outcome, error) {
	outcome := Outcome{StageID: stageID}

	if err := proxy.SetStageStarted(ctx, stageID, clientURI); err != nil {
		logger.Warn("setStageStarted failed, continuing with stage execution",
			zap.Int64("stage_id", stageID), zap.Error(err))
	}

	mem, err := proxy.GetStageMem(ctx, stageID)
	if err != nil {
		reportFailed(ctx, proxy, stageID, clientURI, logger)
		return outcome, fmt.Errorf("stagerunner: GetStageMem(%d): %w", stageID, err)
	}
	procs, err := proxy.GetStageProcs(ctx, stageID)
	if err != nil {
		reportFailed(ctx, proxy, stageID, clientURI, logger)
		return outcome, fmt.Errorf("stagerunner: GetStageProcs(%d): %w", stageID, err)
	}
	outcome.Mem, outcome.Procs = mem, procs

	command, err := proxy.GetStageCommand(ctx, stageID)
	if err != nil {
		reportFailed(ctx, proxy, stageID, clientURI, logger)
		return outcome, fmt.Errorf("stagerunner: GetStageCommand(%d): %w", stageID, err)
	}

	logfile, err := proxy.GetStageLogfile(ctx, stageID)
	if err != nil {
		reportFailed(ctx, proxy, stageID, clientURI, logger)
		return outcome, fmt.Errorf("stagerunner: GetStageLogfile(%d): %w", stageID, err)
	}

	success, runErr := runCommand(ctx, stageID, command, logfile, pids, logger)

	if success {
		if err := proxy.SetStageFinished(ctx, stageID, clientURI); err != nil {
			logger.Warn("setStageFinished failed",
				zap.Int64("stage_id", stageID), zap.Error(err))
		}
		outcome.Success = true
		return outcome, nil
	}

	reportFailed(ctx, proxy, stageID, clientURI, logger)
	return outcome, runErr
}

func reportFailed(ctx context.Context, proxy ServerProxy, stageID int64, clientURI string, logger *zap.Logger) {
	if err := proxy.SetStageFailed(ctx, stageID, clientURI); err != nil {
		logger.Warn("setStageFailed failed",
			zap.Int64("stage_id", stageID), zap.Error(err))
	}
}

// runCommand tokenizes command, opens logfile in append mode, writes the
// header block, and execs the child with stdout/stderr redirected to the
// logfile — no controlling shell (§4.2 steps 3–6, stage logfile format §6).
func runCommand(ctx context.Context, stageID int64, command, logfile string, pids workerpool.PIDRegistrar, logger *zap.Logger) (success bool, err error) {
	f, err := os.OpenFile(logfile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return false, fmt.Errorf("stagerunner: failed to open logfile %s: %w", logfile, err)
	}
	defer f.Close()

	hostname, hErr := os.Hostname()
	if hErr != nil {
		hostname = "unknown"
	}

	header := fmt.Sprintf("Stage %d running on %s at %s:\n%s\n",
		stageID, hostname, time.Now().Format(time.RFC3339), command)
	if _, err := f.WriteString(header); err != nil {
		return false, fmt.Errorf("stagerunner: failed to write logfile header: %w", err)
	}

	args, err := shlex.Split(command)
	if err != nil {
		return false, fmt.Errorf("stagerunner: failed to tokenize command %q: %w", command, err)
	}
	if len(args) == 0 {
		return false, fmt.Errorf("stagerunner: empty command for stage %d", stageID)
	}

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Stdout = f
	cmd.Stderr = f

	if err := cmd.Start(); err != nil {
		return false, fmt.Errorf("stagerunner: failed to start stage %d: %w", stageID, err)
	}

	pids.AddPID(cmd.Process.Pid)
	waitErr := cmd.Wait()
	pids.RemovePID(cmd.Process.Pid)

	if waitErr != nil {
		logger.Info("stage exited with failure",
			zap.Int64("stage_id", stageID), zap.Error(waitErr))
		return false, fmt.Errorf("stagerunner: stage %d failed: %w", stageID, waitErr)
	}

	logger.Info("stage completed successfully", zap.Int64("stage_id", stageID))
	return true, nil
}
