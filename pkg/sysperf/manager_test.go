package sysperf

import (
	"context"
	"fmt"
	"testing"
	"time"

	"iot-edge-controller/pkg/config"
	"iot-edge-controller/pkg/data"
)

type sampleCollector struct {
	samples []*data.PerformanceSample
}

func (c *sampleCollector) OnPerformanceSample(sample *data.PerformanceSample) bool {
	c.samples = append(c.samples, sample)
	return true
}

func testSettings() config.DeviceSettings {
	return config.DeviceSettings{
		LocationID:       "test-device-001",
		PollInterval:     time.Second,
		PerfPollInterval: time.Second,
	}
}

func TestManager_TickForwardsSample(t *testing.T) {
	collector := &sampleCollector{}
	m := NewManager(testSettings(), collector)
	m.SetSamplers(
		func() (float64, error) { return 12.5, nil },
		func() (float64, error) { return 40.0, nil },
		func() (float64, error) { return 75.0, nil },
	)

	m.handleTelemetry(context.Background())

	if len(collector.samples) != 1 {
		t.Fatalf("Expected 1 sample, got %d", len(collector.samples))
	}
	s := collector.samples[0]
	if s.CPUUtil != 12.5 || s.MemUtil != 40.0 || s.DiskUtil != 75.0 {
		t.Errorf("Unexpected sample values: cpu=%.1f mem=%.1f disk=%.1f", s.CPUUtil, s.MemUtil, s.DiskUtil)
	}
	if s.Name != data.SystemPerfName {
		t.Errorf("Expected sample name %q, got %q", data.SystemPerfName, s.Name)
	}
}

func TestManager_SamplerFailureZeroesFigure(t *testing.T) {
	collector := &sampleCollector{}
	m := NewManager(testSettings(), collector)
	m.SetSamplers(
		func() (float64, error) { return 0, fmt.Errorf("simulated cpu failure") },
		func() (float64, error) { return 40.0, nil },
		func() (float64, error) { return 75.0, nil },
	)

	m.handleTelemetry(context.Background())

	if len(collector.samples) != 1 {
		t.Fatal("A sampler failure must not drop the tick")
	}
	s := collector.samples[0]
	if s.CPUUtil != 0 {
		t.Errorf("Failed sampler should zero its figure, got %.1f", s.CPUUtil)
	}
	if s.MemUtil != 40.0 {
		t.Errorf("Other figures should survive, got mem=%.1f", s.MemUtil)
	}
}

func TestManager_StartStopIdempotent(t *testing.T) {
	m := NewManager(testSettings(), &sampleCollector{})

	if !m.Start() {
		t.Error("First Start() should return true")
	}
	if m.Start() {
		t.Error("Second Start() should return false")
	}
	if !m.Stop() {
		t.Error("First Stop() should return true")
	}
	if m.Stop() {
		t.Error("Second Stop() should return false")
	}
}
