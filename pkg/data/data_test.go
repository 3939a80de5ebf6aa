package data

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReading(t *testing.T) {
	r := NewReading(TemperatureSensorName, TemperatureSensor, 21.5)

	assert.NotEmpty(t, r.ID)
	assert.Equal(t, TemperatureSensorName, r.Name)
	assert.Equal(t, TemperatureSensor, r.TypeID)
	assert.Equal(t, 21.5, r.Value)
	assert.False(t, r.Timestamp.IsZero())
}

func TestCommand_Response(t *testing.T) {
	cmd := NewCommand(VentilationActuator, CommandOn, 1200)
	cmd.LocationID = "device-001"
	cmd.StateData = "high"

	resp := cmd.Response(StatusOK)

	assert.True(t, resp.IsResponse)
	assert.Equal(t, StatusOK, resp.StatusCode)
	assert.NotEqual(t, cmd.ID, resp.ID, "response carries a fresh ID")

	// Payload is carried over unchanged
	assert.Equal(t, cmd.TypeID, resp.TypeID)
	assert.Equal(t, cmd.Command, resp.Command)
	assert.Equal(t, cmd.Value, resp.Value)
	assert.Equal(t, cmd.StateData, resp.StateData)
	assert.Equal(t, cmd.LocationID, resp.LocationID)

	// The original request is untouched
	assert.False(t, cmd.IsResponse)
}

func TestCommand_JSONRoundTrip(t *testing.T) {
	cmd := NewCommand(HvacActuator, CommandOff, 0)
	cmd.LocationID = "device-001"

	payload, err := ToJSON(cmd)
	require.NoError(t, err)

	decoded, err := CommandFromJSON(payload)
	require.NoError(t, err)
	assert.Equal(t, cmd.ID, decoded.ID)
	assert.Equal(t, cmd.TypeID, decoded.TypeID)
	assert.Equal(t, cmd.LocationID, decoded.LocationID)
}

func TestCommandFromJSON_Invalid(t *testing.T) {
	decoded, err := CommandFromJSON([]byte("{broken"))
	assert.Error(t, err)
	assert.Nil(t, decoded)
}

func TestReadingFromJSON_Invalid(t *testing.T) {
	decoded, err := ReadingFromJSON([]byte(""))
	assert.Error(t, err)
	assert.Nil(t, decoded)
}

func TestNewPerformanceSample(t *testing.T) {
	s := NewPerformanceSample(10.5, 45.2, 70.1)

	assert.Equal(t, SystemPerfName, s.Name)
	assert.Equal(t, 10.5, s.CPUUtil)
	assert.Equal(t, 45.2, s.MemUtil)
	assert.Equal(t, 70.1, s.DiskUtil)
	assert.NotEmpty(t, s.ID)
}
