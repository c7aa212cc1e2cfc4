package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/alxandria/ledger/pkg/config"
)

func newTestLogger(buf *bytes.Buffer) *zap.Logger {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:      "timestamp",
		LevelKey:     "level",
		MessageKey:   "message",
		CallerKey:    "caller",
		EncodeTime:   zapcore.ISO8601TimeEncoder,
		EncodeLevel:  zapcore.LowercaseLevelEncoder,
		EncodeCaller: zapcore.ShortCallerEncoder,
	}
	core := zapcore.NewCore(NewScalyrEncoder(encoderConfig), zapcore.AddSync(buf), zapcore.InfoLevel)
	return zap.New(core)
}

func TestScalyrEncoder(t *testing.T) {
	cfg := &config.LoggingConfig{
		Level:        "INFO",
		Format:       "json",
		ScalyrFormat: true,
	}
	if err := InitLogger(cfg); err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}

	var buf bytes.Buffer
	logger := newTestLogger(&buf)
	logger.Info("test message",
		zap.String("key", "value"),
		zap.Uint64("post_id", 7),
		zap.Bool("sealed", true),
		zap.Error(errors.New("boom")))

	var logObj map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &logObj); err != nil {
		t.Fatalf("Failed to parse JSON: %v", err)
	}

	if logObj["message"] != "test message" {
		t.Errorf("Expected message 'test message', got: %v", logObj["message"])
	}
	if logObj["key"] != "value" {
		t.Errorf("Expected field 'key'='value', got: %v", logObj["key"])
	}
	if logObj["post_id"] != float64(7) {
		t.Errorf("Expected field 'post_id'=7, got: %v", logObj["post_id"])
	}
	if logObj["sealed"] != true {
		t.Errorf("Expected field 'sealed'=true, got: %v", logObj["sealed"])
	}
	if logObj["error"] != "boom" {
		t.Errorf("Expected field 'error'='boom', got: %v", logObj["error"])
	}
	if _, ok := logObj["timestamp"]; !ok {
		t.Error("Expected 'timestamp' field in log output")
	}
}

func TestScalyrEncoder_ContextFields(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf).With(zap.String("component", "host"))

	logger.Info("first")
	logger.With(zap.String("action", "create_post")).Info("second")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	if len(lines) != 2 {
		t.Fatalf("Expected 2 log lines, got %d", len(lines))
	}

	var first, second map[string]interface{}
	if err := json.Unmarshal(lines[0], &first); err != nil {
		t.Fatalf("Failed to parse JSON: %v", err)
	}
	if err := json.Unmarshal(lines[1], &second); err != nil {
		t.Fatalf("Failed to parse JSON: %v", err)
	}

	if first["component"] != "host" || second["component"] != "host" {
		t.Errorf("Expected component on both lines, got %v and %v", first["component"], second["component"])
	}
	if _, ok := first["action"]; ok {
		t.Error("Child logger fields must not leak into the parent")
	}
	if second["action"] != "create_post" {
		t.Errorf("Expected action on child line, got %v", second["action"])
	}
}
