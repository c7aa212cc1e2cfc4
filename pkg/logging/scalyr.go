package logging

import (
	"encoding/json"
	"time"

	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

var scalyrPool = buffer.NewPool()

// ScalyrEncoder is a Zap encoder that writes one flat, Scalyr-compatible JSON
// object per entry. Context fields added through logger.With are kept in the
// embedded map encoder and merged into every entry.
type ScalyrEncoder struct {
	*zapcore.MapObjectEncoder
	config zapcore.EncoderConfig
}

// NewScalyrEncoder creates a new Scalyr-compatible encoder
func NewScalyrEncoder(config zapcore.EncoderConfig) zapcore.Encoder {
	return &ScalyrEncoder{
		MapObjectEncoder: zapcore.NewMapObjectEncoder(),
		config:           config,
	}
}

// Clone creates a copy of the encoder
func (e *ScalyrEncoder) Clone() zapcore.Encoder {
	clone := zapcore.NewMapObjectEncoder()
	for k, v := range e.Fields {
		clone.Fields[k] = v
	}
	return &ScalyrEncoder{MapObjectEncoder: clone, config: e.config}
}

// EncodeEntry encodes a log entry in Scalyr-compatible format
func (e *ScalyrEncoder) EncodeEntry(entry zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	entryFields := zapcore.NewMapObjectEncoder()
	for _, field := range fields {
		field.AddTo(entryFields)
	}

	logObj := make(map[string]interface{}, len(e.Fields)+len(entryFields.Fields)+8)
	for k, v := range e.Fields {
		logObj[k] = v
	}
	for k, v := range entryFields.Fields {
		logObj[k] = v
	}

	logObj["timestamp"] = entry.Time.Format(time.RFC3339Nano)
	logObj["level"] = entry.Level.String()
	logObj["message"] = entry.Message
	if entry.LoggerName != "" {
		logObj["logger"] = entry.LoggerName
	}
	if entry.Caller.Defined {
		logObj["file"] = entry.Caller.File
		logObj["line"] = entry.Caller.Line
		logObj["function"] = entry.Caller.Function
	}
	if entry.Stack != "" {
		logObj["stack"] = entry.Stack
	}

	data, err := json.Marshal(logObj)
	if err != nil {
		return nil, err
	}

	buf := scalyrPool.Get()
	buf.AppendBytes(data)
	buf.AppendString(zapcore.DefaultLineEnding)
	return buf, nil
}
