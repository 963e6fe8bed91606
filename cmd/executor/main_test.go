package main

import (
	"context"
	"testing"
	"time"
)

func TestRunRejectsNegativeNumExec(t *testing.T) {
	cfg := &config{
		numExec:  -1,
		logLevel: "error",
		uriFile:  "/nonexistent/should-never-be-opened",
	}

	err := run(context.Background(), cfg)
	if err == nil {
		t.Fatal("run() with numExec=-1 should return an error before attempting discovery")
	}
}

func TestBuildExecutorConfigConvertsMinutesToDuration(t *testing.T) {
	cfg := &config{
		memTotal:         4,
		procTotal:        2,
		timeToSeppuku:    1.5,
		timeToAcceptJobs: 2,
	}

	ec := buildExecutorConfig(cfg)

	if ec.IdleLimit == nil || *ec.IdleLimit != 90*time.Second {
		t.Errorf("IdleLimit = %v, want 90s", ec.IdleLimit)
	}
	if ec.AcceptLimit == nil || *ec.AcceptLimit != 2*time.Minute {
		t.Errorf("AcceptLimit = %v, want 2m", ec.AcceptLimit)
	}
}

func TestBuildExecutorConfigZeroMinutesDisablesLimits(t *testing.T) {
	cfg := &config{memTotal: 4, procTotal: 2}

	ec := buildExecutorConfig(cfg)

	if ec.IdleLimit != nil {
		t.Errorf("IdleLimit = %v, want nil (disabled)", ec.IdleLimit)
	}
	if ec.AcceptLimit != nil {
		t.Errorf("AcceptLimit = %v, want nil (disabled)", ec.AcceptLimit)
	}
}
