package actuator

import (
	"testing"

	"iot-edge-controller/pkg/data"
)

// countingEffect records side-effect invocations for assertions
type countingEffect struct {
	activations   int
	deactivations int
}

func (c *countingEffect) Activate(value float64, stateData string) int {
	c.activations++
	return data.StatusOK
}

func (c *countingEffect) Deactivate(value float64, stateData string) int {
	c.deactivations++
	return data.StatusOK
}

func newTestCommand(typeID, command int, value float64) *data.Command {
	cmd := data.NewCommand(typeID, command, value)
	cmd.LocationID = "test-device-001"
	return cmd
}

func TestTask_ApplyProducesResponse(t *testing.T) {
	effect := &countingEffect{}
	task := NewTask(data.HvacActuatorName, data.HvacActuator, effect)

	resp := task.Apply(newTestCommand(data.HvacActuator, data.CommandOn, 22.0))
	if resp == nil {
		t.Fatal("Apply() should return a response for a fresh command")
	}
	if !resp.IsResponse {
		t.Error("Response should carry the response flag")
	}
	if resp.StatusCode != data.StatusOK {
		t.Errorf("Expected status %d, got %d", data.StatusOK, resp.StatusCode)
	}
	if resp.Name != data.HvacActuatorName {
		t.Errorf("Expected response name %q, got %q", data.HvacActuatorName, resp.Name)
	}
	if effect.activations != 1 {
		t.Errorf("Expected 1 activation, got %d", effect.activations)
	}
}

func TestTask_DebounceIdempotence(t *testing.T) {
	effect := &countingEffect{}
	task := NewTask(data.VentilationActuatorName, data.VentilationActuator, effect)

	first := task.Apply(newTestCommand(data.VentilationActuator, data.CommandOn, 1200))
	if first == nil {
		t.Fatal("First Apply() should return a response")
	}

	second := task.Apply(newTestCommand(data.VentilationActuator, data.CommandOn, 1200))
	if second != nil {
		t.Error("Repeated (command, value) pair should be debounced to nil")
	}
	if effect.activations != 1 {
		t.Errorf("Debounced apply must not re-run the side effect, got %d activations", effect.activations)
	}

	cmd, value, ok := task.LastApplied()
	if !ok || cmd != data.CommandOn || value != 1200 {
		t.Errorf("State should be unchanged by debounce: got (%d, %.1f, %v)", cmd, value, ok)
	}
}

func TestTask_ValueChangeBypassesDebounce(t *testing.T) {
	effect := &countingEffect{}
	task := NewTask(data.VentilationActuatorName, data.VentilationActuator, effect)

	task.Apply(newTestCommand(data.VentilationActuator, data.CommandOn, 1100))
	resp := task.Apply(newTestCommand(data.VentilationActuator, data.CommandOn, 1300))
	if resp == nil {
		t.Fatal("Same command with a different value should not be debounced")
	}
	if effect.activations != 2 {
		t.Errorf("Expected 2 activations, got %d", effect.activations)
	}
}

func TestTask_TypeMismatchRejected(t *testing.T) {
	effect := &countingEffect{}
	task := NewTask(data.HvacActuatorName, data.HvacActuator, effect)

	resp := task.Apply(newTestCommand(data.HumidifierActuator, data.CommandOn, 50))
	if resp != nil {
		t.Error("Command with a foreign type code should be rejected with nil")
	}
	if effect.activations != 0 {
		t.Error("Rejected command must not trigger a side effect")
	}
	if _, _, ok := task.LastApplied(); ok {
		t.Error("Rejected command must not mutate state")
	}
}

func TestTask_UnknownCommandSetsErrorButUpdatesState(t *testing.T) {
	effect := &countingEffect{}
	task := NewTask(data.HvacActuatorName, data.HvacActuator, effect)

	resp := task.Apply(newTestCommand(data.HvacActuator, 7, 5))
	if resp == nil {
		t.Fatal("Unknown command code should still produce a response")
	}
	if resp.StatusCode != data.StatusError {
		t.Errorf("Expected error status %d, got %d", data.StatusError, resp.StatusCode)
	}
	if effect.activations != 0 || effect.deactivations != 0 {
		t.Error("Unknown command must not trigger a side effect")
	}

	// Repeated unknown input debounces instead of thrashing
	if again := task.Apply(newTestCommand(data.HvacActuator, 7, 5)); again != nil {
		t.Error("Repeated unknown command should be debounced")
	}
}

func TestTask_LatestResponseCached(t *testing.T) {
	task := NewTask(data.HvacActuatorName, data.HvacActuator, &countingEffect{})

	if task.LatestResponse() != nil {
		t.Error("Fresh task should have no cached response")
	}

	resp := task.Apply(newTestCommand(data.HvacActuator, data.CommandOff, 0))
	if cached := task.LatestResponse(); cached != resp {
		t.Error("LatestResponse() should return the most recent response")
	}
}

func TestNewSideEffect_FallbackToSimulated(t *testing.T) {
	// The emulator device does not exist, so selection falls back
	effect := NewSideEffect("LED DISPLAY", true, "/nonexistent/emulator/display")
	if _, ok := effect.(*SimulatedEffect); !ok {
		t.Fatalf("Expected fallback to SimulatedEffect, got %T", effect)
	}

	// The actuator built on the fallback still applies commands normally
	task := NewTask(data.LedDisplayActuatorName, data.LedDisplayActuator, effect)
	resp := task.Apply(newTestCommand(data.LedDisplayActuator, data.CommandOn, 21.5))
	if resp == nil {
		t.Fatal("Apply() on the fallback variant should return a response")
	}
	if resp.StatusCode != data.StatusOK {
		t.Errorf("Expected status %d, got %d", data.StatusOK, resp.StatusCode)
	}
}
