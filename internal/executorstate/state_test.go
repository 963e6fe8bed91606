package executorstate

import (
	"testing"
	"time"
)

func TestIdleAndTick(t *testing.T) {
	s := New()
	if !s.Idle() {
		t.Fatal("new state should be idle")
	}

	// No accrual on the very first tick.
	s.Tick(time.Second)
	if s.IdleElapsed != 0 {
		t.Errorf("IdleElapsed after first tick = %v, want 0", s.IdleElapsed)
	}

	s.Tick(time.Second)
	if s.IdleElapsed != time.Second {
		t.Errorf("IdleElapsed after second tick = %v, want 1s", s.IdleElapsed)
	}
}

func TestReserveStopsIdleAccrual(t *testing.T) {
	s := New()
	s.Tick(time.Second)

	done := make(chan struct{})
	s.Reserve(Child{StageID: 1, Mem: 2, Procs: 1, Done: done})

	if s.Idle() {
		t.Error("state should not be idle with a reservation outstanding")
	}
	if s.MemInUse != 2 || s.ProcsInUse != 1 {
		t.Errorf("MemInUse=%v ProcsInUse=%v, want 2, 1", s.MemInUse, s.ProcsInUse)
	}
	if s.IdleElapsed != 0 {
		t.Errorf("Reserve should reset IdleElapsed, got %v", s.IdleElapsed)
	}

	s.Tick(time.Second)
	if s.IdleElapsed != 0 {
		t.Errorf("IdleElapsed should not accrue while busy, got %v", s.IdleElapsed)
	}
}

func TestReleaseReturnsResources(t *testing.T) {
	s := New()
	s.Reserve(Child{StageID: 1, Mem: 3, Procs: 2})
	s.Release(1)

	if s.MemInUse != 0 || s.ProcsInUse != 0 {
		t.Errorf("after Release: MemInUse=%v ProcsInUse=%v, want 0, 0", s.MemInUse, s.ProcsInUse)
	}
	if !s.Idle() {
		t.Error("state should be idle after releasing its only reservation")
	}
}

func TestReleaseUnknownStageIsNoOp(t *testing.T) {
	s := New()
	s.Reserve(Child{StageID: 1, Mem: 1, Procs: 1})
	s.Release(999)

	if s.MemInUse != 1 || s.ProcsInUse != 1 {
		t.Errorf("releasing an unknown stage mutated state: MemInUse=%v ProcsInUse=%v", s.MemInUse, s.ProcsInUse)
	}
}

func TestRegisteredIsAtomic(t *testing.T) {
	s := New()
	if s.Registered() {
		t.Error("new state should not be registered")
	}
	s.SetRegistered(true)
	if !s.Registered() {
		t.Error("Registered() should report true after SetRegistered(true)")
	}
}

func TestMemFreeAndProcsFree(t *testing.T) {
	s := New()
	s.Reserve(Child{StageID: 1, Mem: 3, Procs: 1})

	if got := s.MemFree(10); got != 7 {
		t.Errorf("MemFree(10) = %v, want 7", got)
	}
	if got := s.ProcsFree(4); got != 3 {
		t.Errorf("ProcsFree(4) = %v, want 3", got)
	}
}

func TestConfigWithDefaults(t *testing.T) {
	cfg := Config{}.WithDefaults()
	if cfg.HeartbeatInterval != DefaultHeartbeatInterval {
		t.Errorf("HeartbeatInterval = %v, want default %v", cfg.HeartbeatInterval, DefaultHeartbeatInterval)
	}
	if cfg.WaitTimeout != DefaultWaitTimeout {
		t.Errorf("WaitTimeout = %v, want default %v", cfg.WaitTimeout, DefaultWaitTimeout)
	}

	explicit := Config{HeartbeatInterval: 3 * time.Second, WaitTimeout: 2 * time.Second}.WithDefaults()
	if explicit.HeartbeatInterval != 3*time.Second || explicit.WaitTimeout != 2*time.Second {
		t.Errorf("WithDefaults overrode explicit values: %+v", explicit)
	}
}
