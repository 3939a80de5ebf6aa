package errors

import (
	"context"
	"fmt"

	"iot-edge-controller/pkg/logger"
)

// DiagnosticPublisher interface for publishing diagnostics upstream
type DiagnosticPublisher interface {
	PublishDiagnostic(ctx context.Context, code int, message string) error
}

// Handler provides centralized error handling for the control loop
type Handler struct {
	diagnosticPublisher DiagnosticPublisher
}

// NewHandler creates a new error handler
func NewHandler(publisher DiagnosticPublisher) *Handler {
	return &Handler{
		diagnosticPublisher: publisher,
	}
}

// Handle processes an error with appropriate logging and diagnostics
func (h *Handler) Handle(ctx context.Context, err error) {
	if err == nil {
		return
	}

	// Type switch on error types
	switch e := err.(type) {
	case *ValidationError:
		logger.LogWarn("⚠️ Validation Error: %s", e.Error())
		h.publish(ctx, e.Code, fmt.Sprintf("Validation failed: %s", e.Op))
	case *RoutingError:
		logger.LogWarn("⚠️ Routing Error: %s", e.Error())
		h.publish(ctx, e.Code, fmt.Sprintf("Routing failed: %s (type %d)", e.Op, e.TypeID))
	case *TransportError:
		h.logBySeverity(e.Severity, "Transport", e.Error())
		// An unreachable channel cannot carry its own diagnostic; log only
	case *LoadError:
		logger.LogWarn("⚠️ Load Error: %s", e.Error())
		h.publish(ctx, e.Code, fmt.Sprintf("Component '%s' unavailable, using fallback", e.Component))
	case *ConfigError:
		// Config errors are always critical
		logger.LogError("🔴 CRITICAL Configuration Error: %s", e.Error())
		h.publish(ctx, e.Code, fmt.Sprintf("Config field '%s': %s", e.Field, e.Op))
	case *ControllerError:
		h.logBySeverity(e.Severity, "Controller", e.Error())
		h.publish(ctx, e.Code, e.Op)
	default:
		logger.LogError("❌ Untyped Error: %v", err)
		h.publish(ctx, CodeGeneric, err.Error())
	}
}

// logBySeverity logs a message with the prefix matching its severity
func (h *Handler) logBySeverity(severity ErrorSeverity, kind, msg string) {
	switch severity {
	case SeverityCritical:
		logger.LogError("🔴 CRITICAL %s Error: %s", kind, msg)
	case SeverityError:
		logger.LogError("❌ %s Error: %s", kind, msg)
	case SeverityWarning:
		logger.LogWarn("⚠️ %s Warning: %s", kind, msg)
	default:
		logger.LogInfo("ℹ️ %s Info: %s", kind, msg)
	}
}

// publish forwards a diagnostic code upstream if a publisher is available
func (h *Handler) publish(ctx context.Context, code int, message string) {
	if h.diagnosticPublisher == nil {
		return
	}
	if err := h.diagnosticPublisher.PublishDiagnostic(ctx, code, message); err != nil {
		logger.LogDebug("Failed to publish diagnostic: %v", err)
	}
}

// IsRecoverable returns true if the error is recoverable
func IsRecoverable(err error) bool {
	if err == nil {
		return true
	}

	switch e := err.(type) {
	case *ConfigError:
		return false // Config errors are not recoverable
	case *ControllerError:
		return e.Severity != SeverityCritical
	default:
		return true // Unknown errors are assumed recoverable
	}
}

// GetDiagnosticCode extracts the diagnostic code from an error
func GetDiagnosticCode(err error) int {
	if err == nil {
		return 0
	}

	switch e := err.(type) {
	case *ValidationError:
		return e.Code
	case *RoutingError:
		return e.Code
	case *TransportError:
		return e.Code
	case *LoadError:
		return e.Code
	case *ConfigError:
		return e.Code
	case *ControllerError:
		return e.Code
	default:
		return CodeGeneric
	}
}
