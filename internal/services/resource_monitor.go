package services

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/datalyr/foresight-go/internal/telemetry"
)

// ResourceSnapshot is a point-in-time view of process and host resource
// usage, exposed through the system stats endpoint.
type ResourceSnapshot struct {
	CPUCores           int       `json:"cpu_cores"`
	TotalMemoryGB      float64   `json:"total_memory_gb"`
	CPUUsagePercent    float64   `json:"cpu_usage_percent"`
	MemoryUsagePercent float64   `json:"memory_usage_percent"`
	Goroutines         int       `json:"goroutines"`
	CollectedAt        time.Time `json:"collected_at"`
}

// ResourceMonitor samples CPU and memory usage on an interval and keeps the
// latest reading available for health and stats endpoints.
type ResourceMonitor struct {
	mu                 sync.RWMutex
	cpuCores           int
	totalMemoryGB      float64
	currentCPUUsage    float64
	currentMemoryUsage float64
	lastCollected      time.Time

	logger   *slog.Logger
	interval time.Duration
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewResourceMonitor creates a monitor sampling at the given interval.
// Intervals of zero or less fall back to 30 seconds.
func NewResourceMonitor(interval time.Duration) *ResourceMonitor {
	if interval <= 0 {
		interval = 30 * time.Second
	}

	logger := telemetry.GetLogger()
	if logger == nil {
		logger = slog.Default()
	}

	totalMemoryGB := 8.0
	if vmStat, err := mem.VirtualMemory(); err == nil {
		totalMemoryGB = float64(vmStat.Total) / (1024 * 1024 * 1024)
	} else {
		logger.Warn("Failed to read total memory, assuming 8GB", "error", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &ResourceMonitor{
		cpuCores:      runtime.NumCPU(),
		totalMemoryGB: totalMemoryGB,
		logger:        logger,
		interval:      interval,
		ctx:           ctx,
		cancel:        cancel,
	}
}

// Start begins periodic sampling in the background.
func (rm *ResourceMonitor) Start() {
	go func() {
		ticker := time.NewTicker(rm.interval)
		defer ticker.Stop()

		rm.sample()
		for {
			select {
			case <-rm.ctx.Done():
				return
			case <-ticker.C:
				rm.sample()
			}
		}
	}()

	rm.logger.Info("Resource monitor started",
		"interval", rm.interval.String(),
		"cpu_cores", rm.cpuCores,
		"total_memory_gb", rm.totalMemoryGB)
}

// Stop halts the sampling loop.
func (rm *ResourceMonitor) Stop() {
	rm.cancel()
}

func (rm *ResourceMonitor) sample() {
	if err := rm.UpdateSystemMetrics(rm.ctx); err != nil {
		rm.logger.Warn("Failed to update system metrics", "error", err)
		return
	}

	snapshot := rm.Snapshot()
	rm.logger.Debug("Resource usage sampled",
		"cpu_percent", snapshot.CPUUsagePercent,
		"memory_percent", snapshot.MemoryUsagePercent,
		"goroutines", snapshot.Goroutines)
}

// UpdateSystemMetrics refreshes the cached CPU and memory readings. The CPU
// sample blocks for one second.
func (rm *ResourceMonitor) UpdateSystemMetrics(ctx context.Context) error {
	cpuPercent, err := cpu.PercentWithContext(ctx, time.Second, false)
	if err != nil {
		return err
	}

	vmStat, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return err
	}

	rm.mu.Lock()
	defer rm.mu.Unlock()
	if len(cpuPercent) > 0 {
		rm.currentCPUUsage = cpuPercent[0]
	}
	rm.currentMemoryUsage = vmStat.UsedPercent
	rm.lastCollected = time.Now()
	return nil
}

// Snapshot returns the most recent readings. Goroutine count is live; the
// usage percentages are as of the last sample.
func (rm *ResourceMonitor) Snapshot() ResourceSnapshot {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	return ResourceSnapshot{
		CPUCores:           rm.cpuCores,
		TotalMemoryGB:      rm.totalMemoryGB,
		CPUUsagePercent:    rm.currentCPUUsage,
		MemoryUsagePercent: rm.currentMemoryUsage,
		Goroutines:         runtime.NumGoroutine(),
		CollectedAt:        rm.lastCollected,
	}
}
