package upstream

import (
	"context"
)

// Resource kinds used to address telemetry on each transport channel
const (
	ResourceSensorMsg        = "sensor-msg"
	ResourceActuatorResponse = "actuator-response"
	ResourceActuatorCmd      = "actuator-cmd"
	ResourceSysPerfMsg       = "sysperf-msg"
	ResourceDiagnostic       = "diagnostic"
)

// Sink is one fire-and-forget upstream transport channel. Zero, one, or two
// sinks may be active concurrently; a send failure never fails the local
// operation that triggered it.
type Sink interface {
	// Name identifies the channel in logs and metrics
	Name() string

	// Connect establishes the transport session
	Connect(ctx context.Context) error

	// Disconnect tears the session down
	Disconnect()

	// Publish sends a serialized entity to the address mapped for the
	// resource kind. An unmapped kind is dropped with a warning, not an error.
	Publish(ctx context.Context, resource string, payload []byte) error
}

// ResourceMap translates internal resource kinds into one transport's
// addressing scheme (MQTT topics, CoAP paths)
type ResourceMap map[string]string

// Resolve returns the transport address for a resource kind
func (m ResourceMap) Resolve(resource string) (string, bool) {
	addr, ok := m[resource]
	return addr, ok
}

// DefaultMQTTResources builds the standard topic layout under a prefix
func DefaultMQTTResources(prefix string) ResourceMap {
	if prefix == "" {
		prefix = "edge/device"
	}
	return ResourceMap{
		ResourceSensorMsg:        prefix + "/sensor",
		ResourceActuatorResponse: prefix + "/actuator/response",
		ResourceSysPerfMsg:       prefix + "/sysperf",
		ResourceDiagnostic:       prefix + "/diagnostic",
	}
}

// DefaultCoAPResources builds the standard CoAP path layout
func DefaultCoAPResources() ResourceMap {
	return ResourceMap{
		ResourceSensorMsg:        "/edge/sensor",
		ResourceActuatorResponse: "/edge/actuator/response",
		ResourceSysPerfMsg:       "/edge/sysperf",
	}
}
