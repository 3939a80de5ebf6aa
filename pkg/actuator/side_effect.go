package actuator

import (
	"fmt"
	"os"

	"iot-edge-controller/pkg/data"
	"iot-edge-controller/pkg/errors"
	"iot-edge-controller/pkg/logger"
)

// SideEffect performs the physical (or simulated) state change for an
// actuator. Variants: simulated (log only) and hardware-emulated.
type SideEffect interface {
	// Activate applies the ON command and returns a status code
	Activate(value float64, stateData string) int

	// Deactivate applies the OFF command and returns a status code
	Deactivate(value float64, stateData string) int
}

// SimulatedEffect is the log-only variant used when no hardware is attached
type SimulatedEffect struct {
	name string
}

// NewSimulatedEffect creates a simulated side effect for the named actuator
func NewSimulatedEffect(name string) *SimulatedEffect {
	return &SimulatedEffect{name: name}
}

// Activate logs the ON banner
func (s *SimulatedEffect) Activate(value float64, stateData string) int {
	logger.LogInfo("ℹ️ Simulating %s actuator ON: value=%.2f state=%q", s.name, value, stateData)
	return data.StatusOK
}

// Deactivate logs the OFF banner
func (s *SimulatedEffect) Deactivate(value float64, stateData string) int {
	logger.LogInfo("ℹ️ Simulating %s actuator OFF", s.name)
	return data.StatusOK
}

// DefaultDisplayDevicePath is where the LED matrix emulator accepts writes
const DefaultDisplayDevicePath = "/var/run/sense-emu/display"

// EmulatedDisplayEffect drives an LED-matrix emulator by writing state lines
// to its device file
type EmulatedDisplayEffect struct {
	name       string
	devicePath string
}

// NewEmulatedDisplayEffect creates the hardware-emulated display variant.
// Returns a LoadError when the emulator device is unavailable.
func NewEmulatedDisplayEffect(name, devicePath string) (*EmulatedDisplayEffect, error) {
	if devicePath == "" {
		devicePath = DefaultDisplayDevicePath
	}

	if _, err := os.Stat(devicePath); err != nil {
		return nil, errors.NewLoadError("init emulated display", err, name)
	}

	return &EmulatedDisplayEffect{name: name, devicePath: devicePath}, nil
}

// Activate writes the ON state to the display emulator
func (e *EmulatedDisplayEffect) Activate(value float64, stateData string) int {
	return e.write(fmt.Sprintf("ON %.2f %s\n", value, stateData))
}

// Deactivate writes the OFF state to the display emulator
func (e *EmulatedDisplayEffect) Deactivate(value float64, stateData string) int {
	return e.write("OFF\n")
}

// write appends one state line to the emulator device
func (e *EmulatedDisplayEffect) write(line string) int {
	// #nosec G304 - devicePath is fixed at construction time
	f, err := os.OpenFile(e.devicePath, os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		logger.LogWarn("⚠️ Display emulator write failed for %s: %v", e.name, err)
		return data.StatusError
	}
	defer f.Close()

	if _, err := f.WriteString(line); err != nil {
		logger.LogWarn("⚠️ Display emulator write failed for %s: %v", e.name, err)
		return data.StatusError
	}
	return data.StatusOK
}

// NewSideEffect selects the side-effect variant at construction time. When
// the emulated variant cannot load, it falls back to the simulated variant
// with a warning; selection failure is never fatal.
func NewSideEffect(name string, useEmulator bool, devicePath string) SideEffect {
	if useEmulator {
		effect, err := NewEmulatedDisplayEffect(name, devicePath)
		if err == nil {
			logger.LogInfo("✅ Actuator %s using hardware emulator", name)
			return effect
		}
		logger.LogWarn("⚠️ %v - falling back to simulated %s", err, name)
	}
	return NewSimulatedEffect(name)
}
