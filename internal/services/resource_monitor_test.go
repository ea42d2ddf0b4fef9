package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewResourceMonitor_Defaults(t *testing.T) {
	rm := NewResourceMonitor(0)
	require.NotNil(t, rm)
	defer rm.Stop()

	assert.Equal(t, 30*time.Second, rm.interval)
	assert.GreaterOrEqual(t, rm.cpuCores, 1)
	assert.Greater(t, rm.totalMemoryGB, 0.0)
}

func TestResourceMonitor_Snapshot_BeforeSampling(t *testing.T) {
	rm := NewResourceMonitor(time.Minute)
	defer rm.Stop()

	snapshot := rm.Snapshot()
	assert.GreaterOrEqual(t, snapshot.CPUCores, 1)
	assert.Greater(t, snapshot.TotalMemoryGB, 0.0)
	assert.Greater(t, snapshot.Goroutines, 0)
	assert.True(t, snapshot.CollectedAt.IsZero())
}

func TestResourceMonitor_UpdateSystemMetrics(t *testing.T) {
	rm := NewResourceMonitor(time.Minute)
	defer rm.Stop()

	err := rm.UpdateSystemMetrics(context.Background())
	require.NoError(t, err)

	snapshot := rm.Snapshot()
	assert.False(t, snapshot.CollectedAt.IsZero())
	assert.GreaterOrEqual(t, snapshot.CPUUsagePercent, 0.0)
	assert.Greater(t, snapshot.MemoryUsagePercent, 0.0)
	assert.LessOrEqual(t, snapshot.MemoryUsagePercent, 100.0)
}

func TestResourceMonitor_StartStop(t *testing.T) {
	rm := NewResourceMonitor(time.Hour)
	rm.Start()
	rm.Stop()
}
