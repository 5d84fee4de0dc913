package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fieldreports/internal/config"
)

func TestInitializeLogger(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	logFile := filepath.Join(t.TempDir(), "test.log")

	cfg := config.LoggingConfig{
		Level:    "info",
		Format:   "json",
		Output:   "file",
		FilePath: logFile,
	}

	logger, err := InitializeLogger(cfg)
	if err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}

	if logger == nil {
		t.Fatal("Logger is nil")
	}

	if _, err := os.Stat(logFile); os.IsNotExist(err) {
		t.Error("Log file was not created")
	}

	logger.Info("test message", "key", "value")

	// Close log file to allow reading on Windows
	CloseLogFile()

	content, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}

	var logEntry map[string]interface{}
	if err := json.Unmarshal(content, &logEntry); err != nil {
		t.Errorf("Log output is not valid JSON: %v", err)
	}

	if logEntry["msg"] != "test message" {
		t.Errorf("Expected msg='test message', got %v", logEntry["msg"])
	}
	if logEntry["key"] != "value" {
		t.Errorf("Expected key='value', got %v", logEntry["key"])
	}
	if logEntry["level"] != "INFO" {
		t.Errorf("Expected level='INFO', got %v", logEntry["level"])
	}
}

func TestInitializeLogger_OnlyOnce(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	first, err := InitializeLogger(config.LoggingConfig{Level: "info", Output: "console"})
	if err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}
	second, _ := InitializeLogger(config.LoggingConfig{Level: "debug", Output: "console"})

	if first != second {
		t.Error("Expected the second initialization to return the existing logger")
	}
	if GetLogger() != first {
		t.Error("GetLogger did not return the initialized logger")
	}
}

func TestTraceIDInjection(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, config.LoggingConfig{Level: "debug", Format: "json"})

	ctx := WithTraceID(context.Background(), "test-trace-123")
	logger.InfoContext(ctx, "test with trace")

	var logEntry map[string]interface{}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if err := json.Unmarshal([]byte(lines[len(lines)-1]), &logEntry); err != nil {
		t.Fatalf("Failed to parse log JSON: %v", err)
	}

	if logEntry["trace_id"] != "test-trace-123" {
		t.Errorf("Expected trace_id='test-trace-123', got %v", logEntry["trace_id"])
	}

	// trace_id must survive With and WithGroup
	buf.Reset()
	logger.With("component", "parser").WithGroup("g").InfoContext(ctx, "grouped")
	if !strings.Contains(buf.String(), "test-trace-123") {
		t.Errorf("trace_id lost on derived logger: %s", buf.String())
	}
}

func TestLogLevels(t *testing.T) {
	tests := []struct {
		level       string
		expected    string
		debugHidden bool
	}{
		{"debug", "DEBUG", false},
		{"info", "INFO", true},
		{"warn", "WARN", true},
		{"warning", "WARN", true},
		{"error", "ERROR", true},
		{"bogus", "INFO", true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLoggerTo(&buf, config.LoggingConfig{Level: tt.level, Format: "json"})

			if parseLogLevel(tt.level).String() != tt.expected {
				t.Errorf("Expected level=%s, got %v", tt.expected, parseLogLevel(tt.level))
			}

			logger.Debug("test debug")
			if tt.debugHidden && buf.Len() > 0 {
				t.Errorf("Debug record emitted at level %s", tt.level)
			}
			if !tt.debugHidden && buf.Len() == 0 {
				t.Errorf("Debug record suppressed at level %s", tt.level)
			}
		})
	}
}

func TestTextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, config.LoggingConfig{Level: "info", Format: "text"})
	logger.Info("plain", "sheet", "Data Sheet")

	out := buf.String()
	if !strings.Contains(out, "msg=plain") || !strings.Contains(out, `sheet="Data Sheet"`) {
		t.Errorf("Unexpected text output: %s", out)
	}
}

func TestContextHelpers(t *testing.T) {
	ctx := ContextWithTraceID(context.Background())
	traceID := GetTraceID(ctx)

	if traceID == "" {
		t.Error("Expected trace ID to be generated")
	}

	ctx2 := EnsureTraceID(ctx)
	if GetTraceID(ctx2) != traceID {
		t.Error("EnsureTraceID changed existing trace ID")
	}

	ctx3 := EnsureTraceID(context.Background())
	if GetTraceID(ctx3) == "" {
		t.Error("EnsureTraceID did not add trace ID")
	}

	if GetTraceID(context.Background()) != "" {
		t.Error("Expected empty trace ID on a bare context")
	}
}

func TestLoggerHelpers(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	WithComponent(logger, "test-component").Info("test message")

	var logEntry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("Failed to parse log JSON: %v", err)
	}

	if logEntry["component"] != "test-component" {
		t.Errorf("Expected component='test-component', got %v", logEntry["component"])
	}

	buf.Reset()
	WithError(logger, os.ErrNotExist).Info("error test")

	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("Failed to parse log JSON: %v", err)
	}

	if !strings.Contains(logEntry["error"].(string), "file does not exist") {
		t.Errorf("Expected error to contain 'file does not exist', got %v", logEntry["error"])
	}

	if WithError(logger, nil) != logger {
		t.Error("WithError(nil) should return the same logger")
	}

	buf.Reset()
	WithReport(logger, "rpt-7", "week32.xlsx").Info("report test")

	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("Failed to parse log JSON: %v", err)
	}

	if logEntry["report_id"] != "rpt-7" || logEntry["source"] != "week32.xlsx" {
		t.Error("Expected report fields not found in log entry")
	}
}
