package stagerunner

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"go.uber.org/zap"
)

type fakeProxy struct {
	mu       sync.Mutex
	command  string
	logfile  string
	mem      float64
	procs    int
	started  bool
	finished bool
	failed   bool

	commandErr error
}

func (f *fakeProxy) GetStageCommand(ctx context.Context, stageID int64) (string, error) {
	if f.commandErr != nil {
		return "", f.commandErr
	}
	return f.command, nil
}
func (f *fakeProxy) GetStageLogfile(ctx context.Context, stageID int64) (string, error) {
	return f.logfile, nil
}
func (f *fakeProxy) GetStageMem(ctx context.Context, stageID int64) (float64, error) {
	return f.mem, nil
}
func (f *fakeProxy) GetStageProcs(ctx context.Context, stageID int64) (int, error) {
	return f.procs, nil
}
func (f *fakeProxy) SetStageStarted(ctx context.Context, stageID int64, clientURI string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started = true
	return nil
}
func (f *fakeProxy) SetStageFinished(ctx context.Context, stageID int64, clientURI string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.finished = true
	return nil
}
func (f *fakeProxy) SetStageFailed(ctx context.Context, stageID int64, clientURI string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failed = true
	return nil
}

type noopPIDs struct{}

func (noopPIDs) AddPID(int)    {}
func (noopPIDs) RemovePID(int) {}

func TestRunSuccess(t *testing.T) {
	dir := t.TempDir()
	logfile := filepath.Join(dir, "stage.log")

	proxy := &fakeProxy{
		command: "true",
		logfile: logfile,
		mem:     1.5,
		procs:   1,
	}

	outcome, err := Run(context.Background(), proxy, "tcp://host:1", 42, noopPIDs{}, zap.NewNop())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !outcome.Success {
		t.Errorf("outcome.Success = false, want true")
	}
	if outcome.Mem != 1.5 || outcome.Procs != 1 {
		t.Errorf("outcome = %+v, want Mem=1.5 Procs=1", outcome)
	}
	if !proxy.started || !proxy.finished || proxy.failed {
		t.Errorf("proxy calls: started=%v finished=%v failed=%v, want true/true/false",
			proxy.started, proxy.finished, proxy.failed)
	}

	data, err := os.ReadFile(logfile)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(data) == 0 {
		t.Error("expected non-empty logfile")
	}
}

func TestRunFailure(t *testing.T) {
	dir := t.TempDir()
	logfile := filepath.Join(dir, "stage.log")

	proxy := &fakeProxy{
		command: "false",
		logfile: logfile,
	}

	outcome, err := Run(context.Background(), proxy, "tcp://host:1", 7, noopPIDs{}, zap.NewNop())
	if err == nil {
		t.Fatal("Run: expected error for a failing command")
	}
	if outcome.Success {
		t.Error("outcome.Success = true, want false")
	}
	if !proxy.started || proxy.finished || !proxy.failed {
		t.Errorf("proxy calls: started=%v finished=%v failed=%v, want true/false/true",
			proxy.started, proxy.finished, proxy.failed)
	}
}

func TestRunCommandLookupError(t *testing.T) {
	proxy := &fakeProxy{commandErr: errLookup{}}

	_, err := Run(context.Background(), proxy, "tcp://host:1", 9, noopPIDs{}, zap.NewNop())
	if err == nil {
		t.Fatal("Run: expected error when GetStageCommand fails")
	}
	if !proxy.failed {
		t.Error("expected SetStageFailed to be called when command lookup fails")
	}
}

type errLookup struct{}

func (errLookup) Error() string { return "lookup failed" }
