package actuator

import (
	"iot-edge-controller/pkg/config"
	"iot-edge-controller/pkg/data"
	"iot-edge-controller/pkg/errors"
	"iot-edge-controller/pkg/logger"
)

// Router matches an inbound Command to the correct actuator task by type
// code, gated by location-id equality against this device's location
type Router struct {
	locationID string
	tasks      map[int]*Task // keyed by actuator type code
}

// NewRouter creates an actuator router for this device's location
func NewRouter(settings config.DeviceSettings) *Router {
	return &Router{
		locationID: settings.LocationID,
		tasks:      make(map[int]*Task),
	}
}

// Register adds an actuator task, replacing any task with the same type code
func (r *Router) Register(task *Task) {
	if task == nil {
		return
	}
	r.tasks[task.TypeID()] = task
	logger.LogInfo("✅ Actuator registered: %s (type %d)", task.Name(), task.TypeID())
}

// Dispatch routes a request Command to exactly one actuator and returns its
// response. Rejections return a nil response plus a typed error and cause no
// side effect: nil or response-flagged input, location mismatch, or no
// adapter for the type code. A nil result with a nil error from a matched
// actuator signals debounce.
func (r *Router) Dispatch(cmd *data.Command) (*data.Command, error) {
	if cmd == nil {
		return nil, errors.NewValidationError("dispatch actuator command", "command")
	}

	if cmd.IsResponse {
		return nil, errors.NewRoutingError("response re-presented as request", cmd.TypeID, cmd.LocationID)
	}

	if cmd.LocationID != r.locationID {
		logger.LogWarn("⚠️ Location ID doesn't match. Ignoring actuation: (me) %s != (you) %s",
			r.locationID, cmd.LocationID)
		return nil, errors.NewRoutingError("location mismatch", cmd.TypeID, cmd.LocationID)
	}

	task, ok := r.tasks[cmd.TypeID]
	if !ok {
		return nil, errors.NewRoutingError("no actuator for type code", cmd.TypeID, cmd.LocationID)
	}

	return task.Apply(cmd), nil
}

// Task returns the registered actuator for a type code, if any
func (r *Router) Task(typeID int) (*Task, bool) {
	task, ok := r.tasks[typeID]
	return task, ok
}

// NewActuatorTasks builds the standard actuator set for this device. The LED
// display actuator is the only one with a hardware-emulated variant; the rest
// are simulated.
func NewActuatorTasks(settings config.DeviceSettings, displayDevicePath string) []*Task {
	return []*Task{
		NewTask(data.HvacActuatorName, data.HvacActuator, NewSimulatedEffect("HVAC")),
		NewTask(data.HumidifierActuatorName, data.HumidifierActuator, NewSimulatedEffect("HUMIDIFIER")),
		NewTask(data.VentilationActuatorName, data.VentilationActuator, NewSimulatedEffect("VENTILATION")),
		NewTask(data.AirPurifierActuatorName, data.AirPurifierActuator, NewSimulatedEffect("AIR PURIFIER")),
		NewTask(data.LedDisplayActuatorName, data.LedDisplayActuator,
			NewSideEffect("LED DISPLAY", settings.UseEmulator, displayDevicePath)),
	}
}
