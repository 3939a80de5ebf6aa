package errors

import (
	"fmt"
)

// ErrorSeverity defines the severity level of an error
type ErrorSeverity int

const (
	SeverityInfo ErrorSeverity = iota
	SeverityWarning
	SeverityError
	SeverityCritical
)

// String returns the string representation of the severity
func (s ErrorSeverity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityWarning:
		return "WARNING"
	case SeverityError:
		return "ERROR"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// Diagnostic codes carried by each error type
const (
	CodeConfig     = 1
	CodeValidation = 2
	CodeRouting    = 3
	CodeTransport  = 4
	CodeLoad       = 5
	CodeGeneric    = 99
)

// ControllerError is the base error type for all control-loop errors
type ControllerError struct {
	Op       string        // Operation that failed
	Err      error         // Underlying error
	Severity ErrorSeverity // Error severity
	Code     int           // Diagnostic code for upstream reporting
}

// Error implements the error interface
func (e *ControllerError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Severity, e.Op, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Severity, e.Op)
}

// Unwrap returns the underlying error
func (e *ControllerError) Unwrap() error {
	return e.Err
}

// ValidationError represents null or malformed input to a handler.
// Always handled locally: the operation is aborted, never propagated as a failure.
type ValidationError struct {
	ControllerError
	Field string
}

// NewValidationError creates a new validation error
func NewValidationError(op string, field string) *ValidationError {
	return &ValidationError{
		ControllerError: ControllerError{
			Op:       op,
			Err:      fmt.Errorf("invalid input"),
			Severity: SeverityWarning,
			Code:     CodeValidation,
		},
		Field: field,
	}
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("[%s] %s: invalid field '%s'", e.Severity, e.Op, e.Field)
	}
	return e.ControllerError.Error()
}

// RoutingError represents a command that could not be matched to an actuator:
// unknown type code, location mismatch, or a response presented as a request
type RoutingError struct {
	ControllerError
	TypeID     int
	LocationID string
}

// NewRoutingError creates a new routing error
func NewRoutingError(op string, typeID int, locationID string) *RoutingError {
	return &RoutingError{
		ControllerError: ControllerError{
			Op:       op,
			Err:      fmt.Errorf("no matching actuator"),
			Severity: SeverityWarning,
			Code:     CodeRouting,
		},
		TypeID:     typeID,
		LocationID: locationID,
	}
}

// Error implements the error interface
func (e *RoutingError) Error() string {
	return fmt.Sprintf("[%s] %s: type %d, location '%s'", e.Severity, e.Op, e.TypeID, e.LocationID)
}

// TransportError represents an upstream send failure. Logged and counted,
// never allowed to affect the local control loop.
type TransportError struct {
	ControllerError
	Channel  string
	Resource string
}

// NewTransportError creates a new transport error
func NewTransportError(op string, err error, channel, resource string) *TransportError {
	return &TransportError{
		ControllerError: ControllerError{
			Op:       op,
			Err:      err,
			Severity: SeverityError,
			Code:     CodeTransport,
		},
		Channel:  channel,
		Resource: resource,
	}
}

// Error implements the error interface
func (e *TransportError) Error() string {
	return fmt.Sprintf("[%s] %s: channel '%s' (resource: %s): %v",
		e.Severity, e.Op, e.Channel, e.Resource, e.Err)
}

// LoadError represents an optional hardware-emulated variant that failed to
// load. Triggers fallback to the simulated variant, never fatal.
type LoadError struct {
	ControllerError
	Component string
}

// NewLoadError creates a new load error
func NewLoadError(op string, err error, component string) *LoadError {
	return &LoadError{
		ControllerError: ControllerError{
			Op:       op,
			Err:      err,
			Severity: SeverityWarning,
			Code:     CodeLoad,
		},
		Component: component,
	}
}

// Error implements the error interface
func (e *LoadError) Error() string {
	return fmt.Sprintf("[%s] %s: component '%s' unavailable: %v", e.Severity, e.Op, e.Component, e.Err)
}

// ConfigError represents configuration errors. The only error type that may
// abort process start.
type ConfigError struct {
	ControllerError
	Field string
}

// NewConfigError creates a new configuration error
func NewConfigError(op string, err error, field string) *ConfigError {
	return &ConfigError{
		ControllerError: ControllerError{
			Op:       op,
			Err:      err,
			Severity: SeverityCritical, // Config errors are critical
			Code:     CodeConfig,
		},
		Field: field,
	}
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("[%s] Configuration field '%s': %s: %v", e.Severity, e.Field, e.Op, e.Err)
	}
	return fmt.Sprintf("[%s] Configuration: %s: %v", e.Severity, e.Op, e.Err)
}
