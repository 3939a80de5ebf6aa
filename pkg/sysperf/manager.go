package sysperf

import (
	"context"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"

	"iot-edge-controller/pkg/config"
	"iot-edge-controller/pkg/data"
	"iot-edge-controller/pkg/logger"
	"iot-edge-controller/pkg/scheduler"
)

// SampleListener receives each PerformanceSample produced by a poll tick.
// Implemented by the control hub.
type SampleListener interface {
	OnPerformanceSample(sample *data.PerformanceSample) bool
}

// Sampler reads one utilization figure. Swappable in tests.
type Sampler func() (float64, error)

// Manager periodically samples cpu/mem/disk utilization and forwards the
// result to the listener. Scheduling semantics match the sensor manager.
type Manager struct {
	listener    SampleListener
	runner      *scheduler.Runner
	cpuSampler  Sampler
	memSampler  Sampler
	diskSampler Sampler
}

// NewManager creates a system performance manager
func NewManager(settings config.DeviceSettings, listener SampleListener) *Manager {
	m := &Manager{
		listener:    listener,
		cpuSampler:  sampleCPU,
		memSampler:  sampleMem,
		diskSampler: sampleDisk,
	}
	m.runner = scheduler.NewRunner("sysperf", settings.PerfPollInterval, m.handleTelemetry)
	return m
}

// SetSamplers overrides the utilization samplers (for testing)
func (m *Manager) SetSamplers(cpuS, memS, diskS Sampler) {
	if cpuS != nil {
		m.cpuSampler = cpuS
	}
	if memS != nil {
		m.memSampler = memS
	}
	if diskS != nil {
		m.diskSampler = diskS
	}
}

// Start begins periodic sampling. Returns false if already started.
func (m *Manager) Start() bool {
	return m.runner.Start()
}

// Stop halts sampling. Returns false if already stopped.
func (m *Manager) Stop() bool {
	return m.runner.Stop()
}

// handleTelemetry runs one sampling tick. A sampler failure zeroes that
// figure and the tick continues; nothing here is fatal.
func (m *Manager) handleTelemetry(ctx context.Context) {
	cpuUtil := m.sample("cpu", m.cpuSampler)
	memUtil := m.sample("mem", m.memSampler)
	diskUtil := m.sample("disk", m.diskSampler)

	logger.LogDebug("🔧 CPU utilization: %.1f%%, Memory utilization: %.1f%%, Disk utilization: %.1f%%",
		cpuUtil, memUtil, diskUtil)

	if m.listener != nil {
		m.listener.OnPerformanceSample(data.NewPerformanceSample(cpuUtil, memUtil, diskUtil))
	}
}

// sample invokes one sampler, logging any failure
func (m *Manager) sample(kind string, sampler Sampler) float64 {
	value, err := sampler()
	if err != nil {
		logger.LogWarn("⚠️ %s utilization sampling failed: %v", kind, err)
		return 0
	}
	return value
}

// sampleCPU reads instantaneous CPU utilization percent
func sampleCPU() (float64, error) {
	percents, err := cpu.Percent(0, false)
	if err != nil {
		return 0, err
	}
	if len(percents) == 0 {
		return 0, nil
	}
	return percents[0], nil
}

// sampleMem reads virtual memory utilization percent
func sampleMem() (float64, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0, err
	}
	return vm.UsedPercent, nil
}

// sampleDisk reads root filesystem utilization percent
func sampleDisk() (float64, error) {
	usage, err := disk.Usage("/")
	if err != nil {
		return 0, err
	}
	return usage.UsedPercent, nil
}
