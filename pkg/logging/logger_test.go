package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestNewLogger_DefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Level != LevelInfo {
		t.Errorf("expected default level to be info, got %s", cfg.Level)
	}
	if cfg.ServiceName != "mscribe" {
		t.Errorf("expected default service name to be 'mscribe', got %s", cfg.ServiceName)
	}
	if cfg.JSONFormat {
		t.Error("expected default JSONFormat to be false")
	}
}

func TestNewLogger_NilConfig(t *testing.T) {
	log := NewLogger(nil)
	if log == nil {
		t.Error("expected non-nil logger with nil config")
	}
}

func TestLogger_JSONFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	cfg := &Config{
		Level:       LevelDebug,
		ServiceName: "test-service",
		JSONFormat:  true,
		Output:      buf,
	}

	log := NewLogger(cfg)
	log.Info("test message", F("key", "value"))

	var output map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &output); err != nil {
		t.Fatalf("failed to parse JSON output: %v", err)
	}

	if output["message"] != "test message" {
		t.Errorf("expected message 'test message', got %v", output["message"])
	}
	if output["service_name"] != "test-service" {
		t.Errorf("expected service_name 'test-service', got %v", output["service_name"])
	}
	if output["key"] != "value" {
		t.Errorf("expected key 'value', got %v", output["key"])
	}
	if _, ok := output["time"]; !ok {
		t.Error("expected timestamp field 'time' in output")
	}
	if output["level"] != "info" {
		t.Errorf("expected level 'info', got %v", output["level"])
	}
}

func TestLogger_ErrField(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewLogger(&Config{
		Level:       LevelDebug,
		ServiceName: "test-service",
		JSONFormat:  true,
		Output:      buf,
	})

	log.Error("fetch failed", Err(errors.New("connection refused")))

	if !strings.Contains(buf.String(), "connection refused") {
		t.Errorf("expected error text in output, got %s", buf.String())
	}
}

func TestLogger_With(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewLogger(&Config{
		Level:       LevelDebug,
		ServiceName: "test-service",
		JSONFormat:  true,
		Output:      buf,
	})

	child := log.With(F("meeting_id", "abc123"))
	child.Info("fetched")

	var output map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &output); err != nil {
		t.Fatalf("failed to parse JSON output: %v", err)
	}
	if output["meeting_id"] != "abc123" {
		t.Errorf("expected meeting_id 'abc123', got %v", output["meeting_id"])
	}
}

func TestLogger_WithContext(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewLogger(&Config{
		Level:       LevelDebug,
		ServiceName: "test-service",
		JSONFormat:  true,
		Output:      buf,
	})

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-42")
	log.WithContext(ctx).Info("request scoped")

	var output map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &output); err != nil {
		t.Fatalf("failed to parse JSON output: %v", err)
	}
	if output["request_id"] != "req-42" {
		t.Errorf("expected request_id 'req-42', got %v", output["request_id"])
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewLogger(&Config{
		Level:       LevelWarn,
		ServiceName: "test-service",
		JSONFormat:  true,
		Output:      buf,
	})

	log.Debug("should not appear")
	log.Info("should not appear either")
	log.Warn("should appear")

	if strings.Contains(buf.String(), "should not appear") {
		t.Errorf("expected debug/info suppressed at warn level, got %s", buf.String())
	}
	if !strings.Contains(buf.String(), "should appear") {
		t.Errorf("expected warn entry in output, got %s", buf.String())
	}
}

func TestNopLogger(t *testing.T) {
	log := NewNopLogger()
	// Must not panic and must accept the full interface.
	log.Debug("x")
	log.Info("x", F("k", "v"))
	log.Warn("x")
	log.Error("x", Err(errors.New("boom")))
	log.With(F("k", "v")).Info("x")
	log.WithContext(context.Background()).Info("x")
}
