package sensor

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"iot-edge-controller/pkg/data"
	"iot-edge-controller/pkg/errors"
	"iot-edge-controller/pkg/logger"
)

// DefaultEmulatorStatePath is where the hardware emulator exposes its state
const DefaultEmulatorStatePath = "/var/run/sense-emu/state.json"

// emulatorState is the on-disk format written by the hardware emulator
type emulatorState struct {
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	Pressure    float64 `json:"pressure"`
	CO2         float64 `json:"co2"`
}

// EmulatedTask reads values from a SenseHAT-style hardware emulator state
// file instead of simulating them
type EmulatedTask struct {
	name      string
	typeID    int
	statePath string

	latest *data.Reading
	mu     sync.Mutex
}

// NewEmulatedTask creates a hardware-emulated sensor task. Returns a LoadError
// when the emulator state is unavailable, so the caller can fall back to the
// simulated variant.
func NewEmulatedTask(name string, typeID int, statePath string) (*EmulatedTask, error) {
	if statePath == "" {
		statePath = DefaultEmulatorStatePath
	}

	if _, err := os.Stat(statePath); err != nil {
		return nil, errors.NewLoadError("init emulated sensor", err, name)
	}

	return &EmulatedTask{
		name:      name,
		typeID:    typeID,
		statePath: statePath,
	}, nil
}

// GenerateTelemetry reads the current emulator state and produces a Reading.
// A read failure repeats the last known value rather than failing the tick.
func (t *EmulatedTask) GenerateTelemetry() *data.Reading {
	t.mu.Lock()
	defer t.mu.Unlock()

	value, err := t.readEmulatorValue()
	if err != nil {
		logger.LogWarn("⚠️ Emulated sensor %s read failed: %v", t.name, err)
		if t.latest != nil {
			value = t.latest.Value
		}
	}

	reading := data.NewReading(t.name, t.typeID, value)
	t.latest = reading
	return reading
}

// readEmulatorValue extracts this sensor's value from the emulator state file
func (t *EmulatedTask) readEmulatorValue() (float64, error) {
	// #nosec G304 - statePath is fixed at construction time
	raw, err := os.ReadFile(t.statePath)
	if err != nil {
		return 0, err
	}

	var state emulatorState
	if err := json.Unmarshal(raw, &state); err != nil {
		return 0, err
	}

	switch t.typeID {
	case data.TemperatureSensor:
		return state.Temperature, nil
	case data.HumiditySensor:
		return state.Humidity, nil
	case data.PressureSensor:
		return state.Pressure, nil
	case data.CO2Sensor:
		return state.CO2, nil
	default:
		return 0, fmt.Errorf("emulator has no channel for type %d", t.typeID)
	}
}

// TelemetryValue returns the latest value with generate-on-first-access semantics
func (t *EmulatedTask) TelemetryValue() float64 {
	return t.LatestTelemetry().Value
}

// LatestTelemetry returns the latest Reading with generate-on-first-access semantics
func (t *EmulatedTask) LatestTelemetry() *data.Reading {
	t.mu.Lock()
	latest := t.latest
	t.mu.Unlock()

	if latest == nil {
		return t.GenerateTelemetry()
	}
	return latest
}

// Name returns the sensor name
func (t *EmulatedTask) Name() string {
	return t.name
}

// TypeID returns the sensor type code
func (t *EmulatedTask) TypeID() int {
	return t.typeID
}
