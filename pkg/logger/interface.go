package logger

import (
	"fmt"
	"strings"
)

// ILogger is an interface for dependency injection
// Allows testing with mock loggers and flexibility in log implementation
type ILogger interface {
	LogInfo(format string, args ...interface{})
	LogWarn(format string, args ...interface{})
	LogError(format string, args ...interface{})
	LogDebug(format string, args ...interface{})
}

// StandardLogger implements ILogger interface using the global logger functions
type StandardLogger struct{}

// NewStandardLogger creates a logger that uses global logger functions
func NewStandardLogger() ILogger {
	return &StandardLogger{}
}

// LogInfo logs an info message
func (l *StandardLogger) LogInfo(format string, args ...interface{}) {
	LogInfo(format, args...)
}

// LogWarn logs a warning message
func (l *StandardLogger) LogWarn(format string, args ...interface{}) {
	LogWarn(format, args...)
}

// LogError logs an error message
func (l *StandardLogger) LogError(format string, args ...interface{}) {
	LogError(format, args...)
}

// LogDebug logs a debug message
func (l *StandardLogger) LogDebug(format string, args ...interface{}) {
	LogDebug(format, args...)
}

// MockLogger records fully formatted messages per level for assertions in tests
type MockLogger struct {
	InfoMessages  []string
	WarnMessages  []string
	ErrorMessages []string
	DebugMessages []string
}

// NewMockLogger creates a new mock logger for testing
func NewMockLogger() *MockLogger {
	return &MockLogger{}
}

// LogInfo records a formatted info message
func (l *MockLogger) LogInfo(format string, args ...interface{}) {
	l.InfoMessages = append(l.InfoMessages, fmt.Sprintf(format, args...))
}

// LogWarn records a formatted warning message
func (l *MockLogger) LogWarn(format string, args ...interface{}) {
	l.WarnMessages = append(l.WarnMessages, fmt.Sprintf(format, args...))
}

// LogError records a formatted error message
func (l *MockLogger) LogError(format string, args ...interface{}) {
	l.ErrorMessages = append(l.ErrorMessages, fmt.Sprintf(format, args...))
}

// LogDebug records a formatted debug message
func (l *MockLogger) LogDebug(format string, args ...interface{}) {
	l.DebugMessages = append(l.DebugMessages, fmt.Sprintf(format, args...))
}

// Reset clears all recorded messages
func (l *MockLogger) Reset() {
	l.InfoMessages = nil
	l.WarnMessages = nil
	l.ErrorMessages = nil
	l.DebugMessages = nil
}

// ContainsWarn reports whether any recorded warning contains the substring
func (l *MockLogger) ContainsWarn(substr string) bool {
	return containsMessage(l.WarnMessages, substr)
}

// ContainsError reports whether any recorded error contains the substring
func (l *MockLogger) ContainsError(substr string) bool {
	return containsMessage(l.ErrorMessages, substr)
}

func containsMessage(messages []string, substr string) bool {
	for _, m := range messages {
		if strings.Contains(m, substr) {
			return true
		}
	}
	return false
}
