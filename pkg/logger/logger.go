package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger struct {
	*zap.SugaredLogger
}

type Config struct {
	Level      string
	Format     string
	OutputPath string
}

// NewLogger builds the process-wide logger from a level string, an
// encoding format (json or console), and an output path. A single
// hand-built core is enough here: the mock has exactly one logging
// consumer chain (request pipeline, config parser, schema watcher) and no
// need for sampling or tees, so zap.Config's option surface would be
// dead weight.
func NewLogger(config Config) (*Logger, error) {
	level, err := zapcore.ParseLevel(config.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	sink, err := openSink(config.OutputPath)
	if err != nil {
		return nil, err
	}

	core := zapcore.NewCore(newEncoder(config.Format), sink, level)
	zapLogger := zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))

	return &Logger{SugaredLogger: zapLogger.Sugar()}, nil
}

func newEncoder(format string) zapcore.Encoder {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.RFC3339TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	if format == "console" {
		return zapcore.NewConsoleEncoder(encoderConfig)
	}
	return zapcore.NewJSONEncoder(encoderConfig)
}

func openSink(path string) (zapcore.WriteSyncer, error) {
	if path == "" || path == "stdout" {
		return zapcore.Lock(os.Stdout), nil
	}
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	return zapcore.Lock(file), nil
}

func (l *Logger) WithSubgraph(name string) *Logger {
	return &Logger{
		SugaredLogger: l.SugaredLogger.With("subgraph", name),
	}
}

func (l *Logger) WithFingerprint(fingerprint uint64) *Logger {
	return &Logger{
		SugaredLogger: l.SugaredLogger.With("fingerprint", fingerprint),
	}
}

func (l *Logger) WithRequestID(requestID string) *Logger {
	return &Logger{
		SugaredLogger: l.SugaredLogger.With("request_id", requestID),
	}
}
