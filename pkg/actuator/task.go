package actuator

import (
	"sync"

	"iot-edge-controller/pkg/data"
	"iot-edge-controller/pkg/logger"
)

// Task is an idempotent per-actuator state machine. State changes only when
// the incoming (command, value) pair differs from the last applied pair.
type Task struct {
	name   string
	typeID int
	effect SideEffect

	lastCommand    int
	lastValue      float64
	hasState       bool
	latestResponse *data.Command
	mu             sync.Mutex
}

// NewTask creates an actuator task with the given side-effect variant
func NewTask(name string, typeID int, effect SideEffect) *Task {
	return &Task{
		name:   name,
		typeID: typeID,
		effect: effect,
	}
}

// Name returns the actuator name
func (t *Task) Name() string {
	return t.name
}

// TypeID returns the actuator type code
func (t *Task) TypeID() int {
	return t.typeID
}

// Apply processes a Command through the state machine:
//  1. wrong type code: rejected, nil
//  2. repeated (command, value) pair: debounced, nil, no side effect
//  3. otherwise executes the side effect and returns the response Command
//
// An unrecognized command code sets an error status but still updates the
// last applied pair, so repeated unknown input does not thrash.
func (t *Task) Apply(cmd *data.Command) *data.Command {
	if cmd == nil || cmd.TypeID != t.typeID {
		logger.LogWarn("⚠️ Actuator %s rejected command: type mismatch", t.name)
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.hasState && cmd.Command == t.lastCommand && cmd.Value == t.lastValue {
		logger.LogDebug("🔧 Actuator %s debounced repeat command: %d %.2f", t.name, cmd.Command, cmd.Value)
		return nil
	}

	var statusCode int
	switch cmd.Command {
	case data.CommandOn:
		logger.LogInfo("ℹ️ Activating actuator %s...", t.name)
		statusCode = t.effect.Activate(cmd.Value, cmd.StateData)
	case data.CommandOff:
		logger.LogInfo("ℹ️ Deactivating actuator %s...", t.name)
		statusCode = t.effect.Deactivate(cmd.Value, cmd.StateData)
	default:
		logger.LogWarn("⚠️ Actuator %s received unknown command code %d", t.name, cmd.Command)
		statusCode = data.StatusError
	}

	// State updates even for unknown commands to prevent thrash on repeats
	t.lastCommand = cmd.Command
	t.lastValue = cmd.Value
	t.hasState = true

	response := cmd.Response(statusCode)
	response.Name = t.name
	t.latestResponse = response

	return response
}

// LatestResponse returns the most recent response this actuator produced,
// or nil if it has not applied any command yet
func (t *Task) LatestResponse() *data.Command {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.latestResponse
}

// LastApplied returns the last applied (command, value) pair and whether any
// command has been applied
func (t *Task) LastApplied() (command int, value float64, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastCommand, t.lastValue, t.hasState
}
