package resources

import (
	"context"
	"testing"
	"time"
)

func TestCollectReturnsPlausibleValues(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	snap, err := Collect(ctx)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if snap.MemPercent < 0 || snap.MemPercent > 100 {
		t.Errorf("MemPercent = %v, want in [0, 100]", snap.MemPercent)
	}
	if snap.DiskPercent < 0 || snap.DiskPercent > 100 {
		t.Errorf("DiskPercent = %v, want in [0, 100]", snap.DiskPercent)
	}
	if snap.MemTotalGB <= 0 {
		t.Errorf("MemTotalGB = %v, want > 0", snap.MemTotalGB)
	}
	if snap.NumCPU <= 0 {
		t.Errorf("NumCPU = %v, want > 0", snap.NumCPU)
	}
}

func TestToWireCopiesFields(t *testing.T) {
	snap := HostSnapshot{CPUPercent: 12.5, MemPercent: 40, DiskPercent: 70}
	wire := snap.ToWire()
	if wire.CPUPercent != 12.5 || wire.MemPercent != 40 || wire.DiskPercent != 70 {
		t.Errorf("ToWire() = %+v, want matching HostSnapshot fields", wire)
	}
}
