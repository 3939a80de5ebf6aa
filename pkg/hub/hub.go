package hub

import (
	"context"
	"sync"
	"time"

	"iot-edge-controller/pkg/config"
	"iot-edge-controller/pkg/data"
	"iot-edge-controller/pkg/errors"
	"iot-edge-controller/pkg/logger"
	"iot-edge-controller/pkg/metrics"
	"iot-edge-controller/pkg/upstream"
)

// CommandRouter dispatches an actuation request to the matching actuator.
// A rejection is a nil response with a typed error; a nil response with a
// nil error signals debounce.
type CommandRouter interface {
	Dispatch(cmd *data.Command) (*data.Command, error)
}

// ErrorHandler processes the typed errors the control loop produces.
// Satisfied by errors.Handler.
type ErrorHandler interface {
	Handle(ctx context.Context, err error)
}

// ControlHub is the central coordinator of the control loop. It owns the
// latest-value caches, evaluates threshold rules against incoming readings,
// dispatches the resulting commands, and forwards telemetry upstream.
//
// Upstream forwarding is fire-and-forget: a send failure is logged and
// counted but never changes the outcome of the local operation.
type ControlHub struct {
	rules      config.RuleSettings
	locationID string
	router     CommandRouter
	sinks      []upstream.Sink
	metrics    *metrics.ControlMetrics
	errHandler ErrorHandler

	mu        sync.RWMutex
	readings  map[string]*data.Reading
	responses map[string]*data.Command
	samples   map[string]*data.PerformanceSample
}

// NewControlHub creates the hub. router, sinks, and m may each be nil or
// empty when the corresponding concern is disabled.
func NewControlHub(rules config.RuleSettings, locationID string, router CommandRouter, sinks []upstream.Sink, m *metrics.ControlMetrics) *ControlHub {
	return &ControlHub{
		rules:      rules,
		locationID: locationID,
		router:     router,
		sinks:      sinks,
		metrics:    m,
		readings:   make(map[string]*data.Reading),
		responses:  make(map[string]*data.Command),
		samples:    make(map[string]*data.PerformanceSample),
	}
}

// SetErrorHandler routes the loop's typed errors through a central handler
// that can publish diagnostics upstream. Must be called before the managers
// start feeding the hub.
func (h *ControlHub) SetErrorHandler(handler ErrorHandler) {
	h.errHandler = handler
}

// handleError hands a typed error to the central handler, falling back to a
// plain warning when none is configured
func (h *ControlHub) handleError(err error) {
	if h.errHandler != nil {
		h.errHandler.Handle(context.Background(), err)
		return
	}
	logger.LogWarn("⚠️ %v", err)
}

// rejectInput records one invalid-input rejection
func (h *ControlHub) rejectInput(op, field string) {
	h.handleError(errors.NewValidationError(op, field))
	if h.metrics != nil {
		h.metrics.RecordHandlerError()
	}
}

// OnSensorReading caches the reading, evaluates the threshold rules for its
// type, dispatches any resulting commands, and forwards the reading upstream
func (h *ControlHub) OnSensorReading(reading *data.Reading) bool {
	if reading == nil {
		h.rejectInput("handle sensor reading", "reading")
		return false
	}

	h.mu.Lock()
	h.readings[reading.Name] = reading
	h.mu.Unlock()

	logger.LogDebug("📊 Reading '%s' = %.2f", reading.Name, reading.Value)
	if h.metrics != nil {
		h.metrics.RecordReading(reading.Name)
	}

	for _, cmd := range h.evaluateRules(reading) {
		if resp := h.DispatchCommand(cmd); resp != nil {
			h.OnActuatorResponse(resp)
		}
	}

	h.forward(upstream.ResourceSensorMsg, reading)
	return true
}

// OnActuatorResponse caches the response by actuator name and forwards it upstream
func (h *ControlHub) OnActuatorResponse(response *data.Command) bool {
	if response == nil {
		h.rejectInput("handle actuator response", "response")
		return false
	}

	h.mu.Lock()
	h.responses[response.Name] = response
	h.mu.Unlock()

	logger.LogDebug("🔧 Actuator response '%s': command=%d status=%d", response.Name, response.Command, response.StatusCode)
	h.forward(upstream.ResourceActuatorResponse, response)
	return true
}

// OnPerformanceSample caches the sample by name and forwards it upstream
func (h *ControlHub) OnPerformanceSample(sample *data.PerformanceSample) bool {
	if sample == nil {
		h.rejectInput("handle performance sample", "sample")
		return false
	}

	h.mu.Lock()
	h.samples[sample.Name] = sample
	h.mu.Unlock()

	logger.LogDebug("📊 Performance sample: cpu=%.1f%% mem=%.1f%% disk=%.1f%%", sample.CPUUtil, sample.MemUtil, sample.DiskUtil)
	h.forward(upstream.ResourceSysPerfMsg, sample)
	return true
}

// OnInboundMessage decodes a raw upstream payload into a Command and routes
// it to the actuators. Decode failures are logged and dropped, never retried.
func (h *ControlHub) OnInboundMessage(resource string, payload []byte) bool {
	cmd, err := data.CommandFromJSON(payload)
	if err != nil {
		logger.LogWarn("⚠️ Undecodable payload on '%s', dropped: %v", resource, err)
		h.rejectInput("decode inbound command", resource)
		return false
	}

	logger.LogInfo("📥 Inbound actuation command on '%s': type=%d command=%d value=%.2f", resource, cmd.TypeID, cmd.Command, cmd.Value)

	if resp := h.DispatchCommand(cmd); resp != nil {
		h.OnActuatorResponse(resp)
	}
	return true
}

// DispatchCommand delegates to the actuator router and returns its result,
// including nil for rejected or debounced commands
func (h *ControlHub) DispatchCommand(cmd *data.Command) *data.Command {
	if h.router == nil {
		logger.LogWarn("⚠️ No actuator router configured, command dropped")
		return nil
	}

	resp, err := h.router.Dispatch(cmd)
	if err != nil {
		h.handleError(err)
		if h.metrics != nil {
			h.metrics.RecordHandlerError()
		}
		return nil
	}

	// A nil response without an error is the actuator's debounce
	if h.metrics != nil {
		if resp != nil {
			h.metrics.RecordCommand()
		} else {
			h.metrics.RecordDebounce()
		}
	}
	return resp
}

// LatestReading returns the most recent reading cached for a sensor name
func (h *ControlHub) LatestReading(name string) (*data.Reading, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	r, ok := h.readings[name]
	return r, ok
}

// LatestResponse returns the most recent actuator response cached for a name
func (h *ControlHub) LatestResponse(name string) (*data.Command, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	c, ok := h.responses[name]
	return c, ok
}

// LatestSample returns the most recent performance sample cached for a name
func (h *ControlHub) LatestSample(name string) (*data.PerformanceSample, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	s, ok := h.samples[name]
	return s, ok
}

// evaluateRules applies the active rule family to one reading and returns
// the commands it produces. Exactly one family is active per deployment.
func (h *ControlHub) evaluateRules(reading *data.Reading) []*data.Command {
	switch h.rules.Profile {
	case config.ProfileEnvironment:
		return h.evaluateEnvironmentRules(reading)
	case config.ProfileHVAC:
		return h.evaluateHvacRules(reading)
	default:
		return nil
	}
}

// evaluateEnvironmentRules triggers ventilation on high CO2 or temperature
// and the air purifier on high humidity
func (h *ControlHub) evaluateEnvironmentRules(reading *data.Reading) []*data.Command {
	var cmds []*data.Command

	switch reading.TypeID {
	case data.CO2Sensor:
		if reading.Value > h.rules.CO2Ceiling {
			logger.LogInfo("🔍 CO2 %.1f above ceiling %.1f, requesting ventilation", reading.Value, h.rules.CO2Ceiling)
			cmd := data.NewCommand(data.VentilationActuator, data.CommandOn, reading.Value)
			cmd.StateData = "high"
			cmds = append(cmds, h.stamp(cmd))
		}
	case data.TemperatureSensor:
		if reading.Value > h.rules.TempCeiling {
			logger.LogInfo("🔍 Temperature %.1f above ceiling %.1f, requesting ventilation", reading.Value, h.rules.TempCeiling)
			cmds = append(cmds, h.stamp(data.NewCommand(data.VentilationActuator, data.CommandOn, reading.Value)))
		}
	case data.HumiditySensor:
		if reading.Value > h.rules.HumidityCeiling {
			logger.LogInfo("🔍 Humidity %.1f above ceiling %.1f, requesting air purifier", reading.Value, h.rules.HumidityCeiling)
			cmds = append(cmds, h.stamp(data.NewCommand(data.AirPurifierActuator, data.CommandOn, reading.Value)))
		}
	}

	return cmds
}

// evaluateHvacRules applies the legacy floor/ceiling temperature policy:
// heat below the floor, cool above the ceiling, off in between
func (h *ControlHub) evaluateHvacRules(reading *data.Reading) []*data.Command {
	if reading.TypeID != data.TemperatureSensor {
		return nil
	}

	var cmd *data.Command
	switch {
	case reading.Value < h.rules.HvacTempFloor:
		logger.LogInfo("🔍 Temperature %.1f below floor %.1f, requesting heat", reading.Value, h.rules.HvacTempFloor)
		cmd = data.NewCommand(data.HvacActuator, data.CommandOn, h.rules.HvacTempFloor)
		cmd.StateData = "heat"
	case reading.Value > h.rules.HvacTempCeiling:
		logger.LogInfo("🔍 Temperature %.1f above ceiling %.1f, requesting cool", reading.Value, h.rules.HvacTempCeiling)
		cmd = data.NewCommand(data.HvacActuator, data.CommandOn, h.rules.HvacTempCeiling)
		cmd.StateData = "cool"
	default:
		cmd = data.NewCommand(data.HvacActuator, data.CommandOff, 0)
	}

	return []*data.Command{h.stamp(cmd)}
}

// stamp scopes a rule-produced command to this device
func (h *ControlHub) stamp(cmd *data.Command) *data.Command {
	cmd.LocationID = h.locationID
	return cmd
}

// forward serializes an entity and publishes it on every configured channel
func (h *ControlHub) forward(resource string, entity interface{}) {
	if len(h.sinks) == 0 {
		return
	}

	payload, err := data.ToJSON(entity)
	if err != nil {
		logger.LogError("❌ Error serializing entity for '%s': %v", resource, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, sink := range h.sinks {
		err := sink.Publish(ctx, resource, payload)
		if h.metrics != nil {
			h.metrics.RecordPublish(sink.Name(), err)
		}
		if err != nil {
			h.handleError(errors.NewTransportError("forward entity", err, sink.Name(), resource))
		}
	}
}
