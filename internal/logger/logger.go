package logger

import (
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"sql-bridge/internal/config"
	"sql-bridge/internal/platform/paths"
)

type LoggerService interface {
	Debug(msg string, fields ...zap.Field)
	Info(msg string, fields ...zap.Field)
	Error(msg string, err error, fields ...zap.Field)
	Warn(msg string, fields ...zap.Field)
	Success(msg string, fields ...zap.Field)
	Close() error
}

type service struct {
	logger *zap.Logger
	file   *lumberjack.Logger
}

// New logs JSON lines to the rotated server log. In debug mode the same
// entries are also written to stderr in console form.
func New(cfg config.Config) (LoggerService, error) {
	logPath := strings.TrimSpace(cfg.Log.File)
	if logPath == "" {
		p, err := paths.LoggerFilePath()
		if err != nil {
			return nil, err
		}
		logPath = p
	}

	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return nil, err
	}

	file := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAgeDays,
	}

	level := zapcore.InfoLevel
	if cfg.Debug {
		level = zapcore.DebugLevel
	}

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig()), zapcore.AddSync(file), level),
	}
	if cfg.Debug {
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig()), zapcore.Lock(os.Stderr), level))
	}

	return &service{
		logger: zap.New(zapcore.NewTee(cores...)),
		file:   file,
	}, nil
}

func NewStderr() LoggerService {
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig()), zapcore.Lock(os.Stderr), zapcore.InfoLevel)
	return &service{logger: zap.New(core)}
}

func NewNop() LoggerService {
	return &service{logger: zap.NewNop()}
}

// NewWithCore is used by tests to observe log output.
func NewWithCore(core zapcore.Core) LoggerService {
	return &service{logger: zap.New(core)}
}

func encoderConfig() zapcore.EncoderConfig {
	ec := zap.NewProductionEncoderConfig()
	ec.TimeKey = "time"
	ec.EncodeTime = zapcore.ISO8601TimeEncoder
	return ec
}

func (s *service) Debug(msg string, fields ...zap.Field) {
	s.write(zapcore.DebugLevel, msg, fields)
}

func (s *service) Info(msg string, fields ...zap.Field) {
	s.write(zapcore.InfoLevel, msg, fields)
}

func (s *service) Error(msg string, err error, fields ...zap.Field) {
	msg = strings.TrimSpace(msg)
	if err != nil {
		if msg == "" {
			msg = err.Error()
		} else {
			fields = append(fields, zap.Error(err))
		}
	}
	s.write(zapcore.ErrorLevel, msg, fields)
}

func (s *service) Warn(msg string, fields ...zap.Field) {
	s.write(zapcore.WarnLevel, msg, fields)
}

func (s *service) Success(msg string, fields ...zap.Field) {
	s.write(zapcore.InfoLevel, msg, append(fields, zap.Bool("ok", true)))
}

func (s *service) Close() error {
	_ = s.logger.Sync()
	if s.file == nil {
		return nil
	}
	return s.file.Close()
}

func (s *service) write(level zapcore.Level, msg string, fields []zap.Field) {
	msg = strings.TrimSpace(msg)
	if msg == "" {
		return
	}
	if ce := s.logger.Check(level, msg); ce != nil {
		ce.Write(fields...)
	}
}
