package hub

import (
	"context"
	goerrors "errors"
	"fmt"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"iot-edge-controller/pkg/config"
	"iot-edge-controller/pkg/data"
	"iot-edge-controller/pkg/errors"
	"iot-edge-controller/pkg/metrics"
	"iot-edge-controller/pkg/upstream"
)

const testLocation = "test-device-001"

// recordingRouter captures dispatched commands and replies with a canned result
type recordingRouter struct {
	dispatched []*data.Command
	respond    bool
	reject     error
}

func (r *recordingRouter) Dispatch(cmd *data.Command) (*data.Command, error) {
	if r.reject != nil {
		return nil, r.reject
	}
	r.dispatched = append(r.dispatched, cmd)
	if r.respond {
		resp := cmd.Response(data.StatusOK)
		resp.Name = data.VentilationActuatorName
		return resp, nil
	}
	return nil, nil
}

// capturingHandler records every error handed to the central handler
type capturingHandler struct {
	handled []error
}

func (c *capturingHandler) Handle(ctx context.Context, err error) {
	c.handled = append(c.handled, err)
}

func expectCounter(t *testing.T, reg *prometheus.Registry, name, help string, want float64) {
	t.Helper()
	expected := fmt.Sprintf("# HELP %s %s\n# TYPE %s counter\n%s %v\n", name, help, name, name, want)
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), name); err != nil {
		t.Errorf("Unexpected %s value: %v", name, err)
	}
}

// recordingSink captures published payloads and optionally fails every send
type recordingSink struct {
	published map[string]int
	fail      bool
}

func newRecordingSink() *recordingSink {
	return &recordingSink{published: make(map[string]int)}
}

func (s *recordingSink) Name() string                      { return "record" }
func (s *recordingSink) Connect(ctx context.Context) error { return nil }
func (s *recordingSink) Disconnect()                       {}

func (s *recordingSink) Publish(ctx context.Context, resource string, payload []byte) error {
	s.published[resource]++
	if s.fail {
		return fmt.Errorf("simulated transport failure")
	}
	return nil
}

func environmentRules() config.RuleSettings {
	return config.RuleSettings{
		Profile:         config.ProfileEnvironment,
		CO2Ceiling:      1000,
		TempCeiling:     26,
		HumidityCeiling: 60,
	}
}

func hvacRules() config.RuleSettings {
	return config.RuleSettings{
		Profile:         config.ProfileHVAC,
		HvacTempFloor:   18,
		HvacTempCeiling: 20,
	}
}

func locatedReading(name string, typeID int, value float64) *data.Reading {
	r := data.NewReading(name, typeID, value)
	r.LocationID = testLocation
	return r
}

func TestControlHub_RejectsNilInput(t *testing.T) {
	h := NewControlHub(environmentRules(), testLocation, &recordingRouter{}, nil, nil)

	assert.False(t, h.OnSensorReading(nil))
	assert.False(t, h.OnActuatorResponse(nil))
	assert.False(t, h.OnPerformanceSample(nil))
}

func TestControlHub_CacheOverwrite(t *testing.T) {
	h := NewControlHub(config.RuleSettings{}, testLocation, &recordingRouter{}, nil, nil)

	require.True(t, h.OnSensorReading(locatedReading("temp-1", data.TemperatureSensor, 22.5)))
	cached, ok := h.LatestReading("temp-1")
	require.True(t, ok)
	assert.Equal(t, 22.5, cached.Value)

	// A later reading fully replaces the cached one, no merge
	require.True(t, h.OnSensorReading(locatedReading("temp-1", data.TemperatureSensor, 19.0)))
	cached, ok = h.LatestReading("temp-1")
	require.True(t, ok)
	assert.Equal(t, 19.0, cached.Value)
}

func TestControlHub_CO2RuleDeterminism(t *testing.T) {
	router := &recordingRouter{}
	h := NewControlHub(environmentRules(), testLocation, router, nil, nil)

	h.OnSensorReading(locatedReading(data.CO2SensorName, data.CO2Sensor, 1200))
	require.Len(t, router.dispatched, 1, "CO2 above ceiling must produce exactly one command")

	cmd := router.dispatched[0]
	assert.Equal(t, data.VentilationActuator, cmd.TypeID)
	assert.Equal(t, data.CommandOn, cmd.Command)
	assert.Equal(t, 1200.0, cmd.Value)
	assert.Equal(t, "high", cmd.StateData)
	assert.Equal(t, testLocation, cmd.LocationID)

	router.dispatched = nil
	h.OnSensorReading(locatedReading(data.CO2SensorName, data.CO2Sensor, 800))
	assert.Empty(t, router.dispatched, "CO2 below ceiling must produce no command")
}

func TestControlHub_EnvironmentTemperatureAndHumidityRules(t *testing.T) {
	router := &recordingRouter{}
	h := NewControlHub(environmentRules(), testLocation, router, nil, nil)

	h.OnSensorReading(locatedReading(data.TemperatureSensorName, data.TemperatureSensor, 27.5))
	require.Len(t, router.dispatched, 1)
	assert.Equal(t, data.VentilationActuator, router.dispatched[0].TypeID)
	assert.Equal(t, 27.5, router.dispatched[0].Value)

	router.dispatched = nil
	h.OnSensorReading(locatedReading(data.HumiditySensorName, data.HumiditySensor, 65))
	require.Len(t, router.dispatched, 1)
	assert.Equal(t, data.AirPurifierActuator, router.dispatched[0].TypeID)
	assert.Equal(t, data.CommandOn, router.dispatched[0].Command)

	router.dispatched = nil
	h.OnSensorReading(locatedReading(data.HumiditySensorName, data.HumiditySensor, 55))
	assert.Empty(t, router.dispatched)
}

func TestControlHub_HvacRules(t *testing.T) {
	router := &recordingRouter{}
	h := NewControlHub(hvacRules(), testLocation, router, nil, nil)

	// Below the floor: heat at the floor setpoint
	h.OnSensorReading(locatedReading(data.TemperatureSensorName, data.TemperatureSensor, 16))
	require.Len(t, router.dispatched, 1)
	assert.Equal(t, data.HvacActuator, router.dispatched[0].TypeID)
	assert.Equal(t, data.CommandOn, router.dispatched[0].Command)
	assert.Equal(t, 18.0, router.dispatched[0].Value)
	assert.Equal(t, "heat", router.dispatched[0].StateData)

	// Above the ceiling: cool at the ceiling setpoint
	router.dispatched = nil
	h.OnSensorReading(locatedReading(data.TemperatureSensorName, data.TemperatureSensor, 23))
	require.Len(t, router.dispatched, 1)
	assert.Equal(t, data.CommandOn, router.dispatched[0].Command)
	assert.Equal(t, 20.0, router.dispatched[0].Value)
	assert.Equal(t, "cool", router.dispatched[0].StateData)

	// In the band: off
	router.dispatched = nil
	h.OnSensorReading(locatedReading(data.TemperatureSensorName, data.TemperatureSensor, 19))
	require.Len(t, router.dispatched, 1)
	assert.Equal(t, data.CommandOff, router.dispatched[0].Command)
	assert.Equal(t, 0.0, router.dispatched[0].Value)

	// HVAC rules ignore non-temperature readings
	router.dispatched = nil
	h.OnSensorReading(locatedReading(data.CO2SensorName, data.CO2Sensor, 2000))
	assert.Empty(t, router.dispatched)
}

func TestControlHub_NoProfileNoCommands(t *testing.T) {
	router := &recordingRouter{}
	h := NewControlHub(config.RuleSettings{Profile: config.ProfileNone}, testLocation, router, nil, nil)

	h.OnSensorReading(locatedReading(data.CO2SensorName, data.CO2Sensor, 5000))
	assert.Empty(t, router.dispatched)
}

func TestControlHub_DispatchResponseCached(t *testing.T) {
	router := &recordingRouter{respond: true}
	h := NewControlHub(environmentRules(), testLocation, router, nil, nil)

	h.OnSensorReading(locatedReading(data.CO2SensorName, data.CO2Sensor, 1200))

	resp, ok := h.LatestResponse(data.VentilationActuatorName)
	require.True(t, ok, "actuator response should be cached by name")
	assert.True(t, resp.IsResponse)
	assert.Equal(t, data.StatusOK, resp.StatusCode)
}

func TestControlHub_UpstreamFailureDoesNotAffectReturn(t *testing.T) {
	sink := newRecordingSink()
	sink.fail = true
	h := NewControlHub(config.RuleSettings{}, testLocation, &recordingRouter{}, []upstream.Sink{sink}, nil)

	assert.True(t, h.OnSensorReading(locatedReading("temp-1", data.TemperatureSensor, 21)))
	assert.True(t, h.OnPerformanceSample(data.NewPerformanceSample(10, 20, 30)))
	assert.Equal(t, 1, sink.published[upstream.ResourceSensorMsg])
	assert.Equal(t, 1, sink.published[upstream.ResourceSysPerfMsg])
}

func TestControlHub_ForwardsToAllSinks(t *testing.T) {
	first := newRecordingSink()
	second := newRecordingSink()
	h := NewControlHub(config.RuleSettings{}, testLocation, &recordingRouter{}, []upstream.Sink{first, second}, nil)

	h.OnSensorReading(locatedReading("temp-1", data.TemperatureSensor, 21))
	resp := data.NewCommand(data.HvacActuator, data.CommandOff, 0).Response(data.StatusOK)
	resp.Name = data.HvacActuatorName
	h.OnActuatorResponse(resp)

	for _, sink := range []*recordingSink{first, second} {
		assert.Equal(t, 1, sink.published[upstream.ResourceSensorMsg])
		assert.Equal(t, 1, sink.published[upstream.ResourceActuatorResponse])
	}
}

func TestControlHub_PerformanceSampleCached(t *testing.T) {
	h := NewControlHub(config.RuleSettings{}, testLocation, nil, nil, nil)

	sample := data.NewPerformanceSample(12.5, 40.0, 75.0)
	require.True(t, h.OnPerformanceSample(sample))

	cached, ok := h.LatestSample(data.SystemPerfName)
	require.True(t, ok)
	assert.Equal(t, 12.5, cached.CPUUtil)
	assert.Equal(t, 40.0, cached.MemUtil)
	assert.Equal(t, 75.0, cached.DiskUtil)
}

func TestControlHub_InboundMessageDecodesAndDispatches(t *testing.T) {
	router := &recordingRouter{respond: true}
	h := NewControlHub(config.RuleSettings{}, testLocation, router, nil, nil)

	cmd := data.NewCommand(data.VentilationActuator, data.CommandOn, 1200)
	cmd.LocationID = testLocation
	payload, err := data.ToJSON(cmd)
	require.NoError(t, err)

	assert.True(t, h.OnInboundMessage(upstream.ResourceActuatorCmd, payload))
	require.Len(t, router.dispatched, 1)
	assert.Equal(t, data.VentilationActuator, router.dispatched[0].TypeID)
}

func TestControlHub_InboundMessageDecodeFailureDropped(t *testing.T) {
	router := &recordingRouter{}
	h := NewControlHub(config.RuleSettings{}, testLocation, router, nil, nil)

	assert.False(t, h.OnInboundMessage(upstream.ResourceActuatorCmd, []byte("{not json")))
	assert.Empty(t, router.dispatched)
}

func TestControlHub_RejectionRoutedNotDebounced(t *testing.T) {
	reg := prometheus.NewRegistry()
	router := &recordingRouter{reject: errors.NewRoutingError("no actuator for type code", data.HvacActuator, testLocation)}
	handler := &capturingHandler{}
	h := NewControlHub(config.RuleSettings{}, testLocation, router, nil, metrics.NewControlMetrics(reg))
	h.SetErrorHandler(handler)

	assert.Nil(t, h.DispatchCommand(data.NewCommand(data.HvacActuator, data.CommandOn, 20)))

	require.Len(t, handler.handled, 1)
	var routingErr *errors.RoutingError
	assert.True(t, goerrors.As(handler.handled[0], &routingErr), "rejection must surface as a routing error")

	expectCounter(t, reg, "edge_handler_errors_total",
		"Control-loop errors routed to the central error handler.", 1)
	expectCounter(t, reg, "edge_commands_debounced_total",
		"Commands suppressed because they repeated the last applied (command, value) pair.", 0)
	expectCounter(t, reg, "edge_commands_dispatched_total",
		"Total actuator commands dispatched.", 0)
}

func TestControlHub_DebounceCountedWithoutError(t *testing.T) {
	reg := prometheus.NewRegistry()
	router := &recordingRouter{}
	handler := &capturingHandler{}
	h := NewControlHub(config.RuleSettings{}, testLocation, router, nil, metrics.NewControlMetrics(reg))
	h.SetErrorHandler(handler)

	assert.Nil(t, h.DispatchCommand(data.NewCommand(data.VentilationActuator, data.CommandOn, 1200)))

	assert.Empty(t, handler.handled, "debounce is not an error")
	expectCounter(t, reg, "edge_commands_debounced_total",
		"Commands suppressed because they repeated the last applied (command, value) pair.", 1)
	expectCounter(t, reg, "edge_handler_errors_total",
		"Control-loop errors routed to the central error handler.", 0)
}

func TestControlHub_NilInputRoutesValidationError(t *testing.T) {
	handler := &capturingHandler{}
	h := NewControlHub(config.RuleSettings{}, testLocation, &recordingRouter{}, nil, nil)
	h.SetErrorHandler(handler)

	assert.False(t, h.OnSensorReading(nil))

	require.Len(t, handler.handled, 1)
	var validationErr *errors.ValidationError
	assert.True(t, goerrors.As(handler.handled[0], &validationErr))
}

func TestControlHub_SinkFailureRoutesTransportError(t *testing.T) {
	sink := newRecordingSink()
	sink.fail = true
	handler := &capturingHandler{}
	h := NewControlHub(config.RuleSettings{}, testLocation, &recordingRouter{}, []upstream.Sink{sink}, nil)
	h.SetErrorHandler(handler)

	assert.True(t, h.OnSensorReading(locatedReading("temp-1", data.TemperatureSensor, 21)))

	require.Len(t, handler.handled, 1)
	var transportErr *errors.TransportError
	require.True(t, goerrors.As(handler.handled[0], &transportErr))
	assert.Equal(t, "record", transportErr.Channel)
	assert.Equal(t, upstream.ResourceSensorMsg, transportErr.Resource)
}
