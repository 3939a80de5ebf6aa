package logger

import "testing"

func TestShouldLog(t *testing.T) {
	tests := []struct {
		current string
		message string
		want    bool
	}{
		{LogLevelInfo, LogLevelError, true},
		{LogLevelInfo, LogLevelWarn, true},
		{LogLevelInfo, LogLevelInfo, true},
		{LogLevelInfo, LogLevelDebug, false},
		{LogLevelInfo, LogLevelTrace, false},
		{LogLevelError, LogLevelWarn, false},
		{LogLevelTrace, LogLevelTrace, true},
		{"bogus", LogLevelDebug, true}, // Unknown level defaults to allowing
	}

	for _, tt := range tests {
		if got := shouldLog(tt.current, tt.message); got != tt.want {
			t.Errorf("shouldLog(%q, %q) = %v, want %v", tt.current, tt.message, got, tt.want)
		}
	}
}

func TestIsDebugEnabled(t *testing.T) {
	saved := GlobalLogging
	defer func() { GlobalLogging = saved }()

	GlobalLogging = nil
	if IsDebugEnabled() {
		t.Error("Debug should be disabled without global config")
	}

	GlobalLogging = &LoggingConfig{Level: "debug"}
	if !IsDebugEnabled() {
		t.Error("Debug should be enabled at level debug")
	}

	GlobalLogging = &LoggingConfig{Level: "info"}
	if IsDebugEnabled() {
		t.Error("Debug should be disabled at level info")
	}
}

func TestMockLogger_RecordsFormattedMessages(t *testing.T) {
	mock := NewMockLogger()

	mock.LogInfo("started in %s mode", "environment")
	mock.LogWarn("reading %.1f near ceiling %.1f", 25.5, 26.0)
	mock.LogError("dispatch failed for type %d", 3)

	if len(mock.InfoMessages) != 1 || mock.InfoMessages[0] != "started in environment mode" {
		t.Errorf("Expected formatted info message, got %v", mock.InfoMessages)
	}
	if !mock.ContainsWarn("near ceiling 26.0") {
		t.Errorf("Expected formatted warning, got %v", mock.WarnMessages)
	}
	if !mock.ContainsError("type 3") {
		t.Errorf("Expected formatted error, got %v", mock.ErrorMessages)
	}
	if mock.ContainsWarn("no such text") {
		t.Error("ContainsWarn must not match absent text")
	}

	mock.Reset()
	if mock.ContainsWarn("near ceiling") || len(mock.InfoMessages) != 0 {
		t.Error("Reset() should clear all recorded messages")
	}
}
