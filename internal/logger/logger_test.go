package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func newBufferedJSONLogger(buf *bytes.Buffer) *zap.Logger {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(buf),
		zapcore.DebugLevel,
	)

	return zap.New(core)
}

func TestProperty_LogsAreStructured(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("all log entries are in structured JSON format", prop.ForAll(
		func(message string, level string) bool {
			var buf bytes.Buffer
			logger := newBufferedJSONLogger(&buf)
			defer logger.Sync()

			switch level {
			case "debug":
				logger.Debug(message)
			case "info":
				logger.Info(message)
			case "warn":
				logger.Warn(message)
			case "error":
				logger.Error(message)
			default:
				logger.Info(message)
			}

			var logEntry map[string]interface{}
			if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
				return false
			}

			if _, ok := logEntry["level"]; !ok {
				return false
			}
			if _, ok := logEntry["timestamp"]; !ok {
				return false
			}
			if _, ok := logEntry["message"]; !ok {
				return false
			}

			return logEntry["message"] == message
		},
		gen.AnyString(),
		gen.OneConstOf("debug", "info", "warn", "error"),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_LogsIncludeSeverityLevels(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("all log entries include severity level", prop.ForAll(
		func(message string) bool {
			var buf bytes.Buffer
			logger := newBufferedJSONLogger(&buf)
			defer logger.Sync()

			logger.Info(message)

			var logEntry map[string]interface{}
			json.Unmarshal(buf.Bytes(), &logEntry)

			level, ok := logEntry["level"]
			if !ok {
				return false
			}

			_, isString := level.(string)
			return isString
		},
		gen.AnyString(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_ErrorLogsIncludeContext(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("error logs include context information", prop.ForAll(
		func(message string, errorMsg string) bool {
			var buf bytes.Buffer
			logger := newBufferedJSONLogger(&buf)
			defer logger.Sync()

			logger.Error(message, zap.String("error", errorMsg))

			var logEntry map[string]interface{}
			json.Unmarshal(buf.Bytes(), &logEntry)

			_, ok := logEntry["error"]
			return ok
		},
		gen.AnyString(),
		gen.AnyString(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestNew(t *testing.T) {
	tests := []struct {
		name string
		env  string
	}{
		{name: "production logger", env: "production"},
		{name: "development logger", env: "development"},
		{name: "unknown env falls back", env: "staging"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.env)
			if err != nil {
				t.Fatalf("Failed to create logger: %v", err)
			}
			if logger == nil {
				t.Fatal("Logger should not be nil")
			}
			logger.Sync()
		})
	}
}
