// Package resources reports real host resource usage via gopsutil,
// replacing the teacher's stubbed metrics collector. It feeds the
// Heartbeat Ticker's system-metrics field (§4.5) and is available to
// Lifecycle for sizing memTotal/procTotal when the operator leaves them
// unset (§7).
package resources

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"

	"github.com/arkeep-io/pipeline-executor/internal/rpcapi"
)

// HostSnapshot is a point-in-time view of host resource usage.
type HostSnapshot struct {
	CPUPercent  float64
	MemPercent  float64
	DiskPercent float64
	MemTotalGB  float64
	NumCPU      int
}

// Collect samples current CPU, memory, and disk usage for the root
// filesystem. It is safe to call frequently; gopsutil's per-call cost is a
// few syscalls, not a standing sampler.
func Collect(ctx context.Context) (HostSnapshot, error) {
	var snap HostSnapshot

	cpuPercents, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		return snap, fmt.Errorf("resources: cpu.Percent: %w", err)
	}
	if len(cpuPercents) > 0 {
		snap.CPUPercent = cpuPercents[0]
	}

	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return snap, fmt.Errorf("resources: mem.VirtualMemory: %w", err)
	}
	snap.MemPercent = vm.UsedPercent
	snap.MemTotalGB = float64(vm.Total) / (1 << 30)

	du, err := disk.UsageWithContext(ctx, "/")
	if err != nil {
		return snap, fmt.Errorf("resources: disk.Usage: %w", err)
	}
	snap.DiskPercent = du.UsedPercent

	counts, err := cpu.CountsWithContext(ctx, true)
	if err != nil {
		return snap, fmt.Errorf("resources: cpu.Counts: %w", err)
	}
	snap.NumCPU = counts

	return snap, nil
}

// ToWire converts a HostSnapshot into the wire SystemMetrics message.
func (h HostSnapshot) ToWire() *rpcapi.SystemMetrics {
	return &rpcapi.SystemMetrics{
		CPUPercent:  h.CPUPercent,
		MemPercent:  h.MemPercent,
		DiskPercent: h.DiskPercent,
	}
}
