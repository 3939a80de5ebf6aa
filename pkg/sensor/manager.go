package sensor

import (
	"context"
	"sync"
	"time"

	"iot-edge-controller/pkg/config"
	"iot-edge-controller/pkg/data"
	"iot-edge-controller/pkg/logger"
	"iot-edge-controller/pkg/scheduler"
)

// ReadingListener receives each Reading produced by a poll tick.
// Implemented by the control hub.
type ReadingListener interface {
	OnSensorReading(reading *data.Reading) bool
}

// TickObserver receives scheduling telemetry from the manager. Optional.
type TickObserver interface {
	ObserveTickDuration(d time.Duration)
	RecordTickSkipped()
}

// Manager polls all registered sensor tasks at a configured interval and
// forwards readings to the listener
type Manager struct {
	tasks      []Task
	listener   ReadingListener
	locationID string
	runner     *scheduler.Runner

	mu       sync.Mutex
	observer TickObserver
}

// NewManager creates a sensor manager for the given tasks
func NewManager(settings config.DeviceSettings, tasks []Task, listener ReadingListener) *Manager {
	m := &Manager{
		tasks:      tasks,
		listener:   listener,
		locationID: settings.LocationID,
	}
	m.runner = scheduler.NewRunner("sensor", settings.PollInterval, m.handleTelemetry)
	return m
}

// SetTickObserver registers an observer for scheduling telemetry.
// Safe to call while polling is active.
func (m *Manager) SetTickObserver(observer TickObserver) {
	m.mu.Lock()
	m.observer = observer
	m.mu.Unlock()
	if observer != nil {
		m.runner.SetCoalescedCallback(observer.RecordTickSkipped)
	}
}

// Start begins periodic polling. Returns false if already started.
func (m *Manager) Start() bool {
	return m.runner.Start()
}

// Stop halts polling. Returns false if already stopped.
func (m *Manager) Stop() bool {
	return m.runner.Stop()
}

// handleTelemetry runs one poll tick: every task generates a reading which is
// stamped with the device location and handed to the listener. The chain runs
// synchronously per sensor; task order carries no guarantee.
func (m *Manager) handleTelemetry(ctx context.Context) {
	start := time.Now()

	for _, task := range m.tasks {
		select {
		case <-ctx.Done():
			logger.LogDebug("🔄 Sensor tick interrupted by shutdown")
			return
		default:
		}

		reading := task.GenerateTelemetry()
		reading.LocationID = m.locationID

		logger.LogDebug("🔧 Generated %s reading: %.3f", task.Name(), reading.Value)

		if m.listener != nil {
			m.listener.OnSensorReading(reading)
		}
	}

	m.mu.Lock()
	observer := m.observer
	m.mu.Unlock()
	if observer != nil {
		observer.ObserveTickDuration(time.Since(start))
	}
}
