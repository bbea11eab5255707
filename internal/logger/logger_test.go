package logger

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"sql-bridge/internal/config"
)

func TestServiceLevelsAndFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewWithCore(core)

	log.Info("connected", zap.String("descriptor", "mysql://db"))
	log.Warn("slow")
	log.Error("execute failed", errors.New("syntax error"))
	log.Error("", errors.New("bare error"))
	log.Success("closed")
	log.Info("   ")

	entries := logs.All()
	require.Len(t, entries, 5)

	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "mysql://db", entries[0].ContextMap()["descriptor"])

	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)

	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
	assert.Equal(t, "execute failed", entries[2].Message)
	assert.Equal(t, "syntax error", entries[2].ContextMap()["error"])

	assert.Equal(t, "bare error", entries[3].Message)

	assert.Equal(t, true, entries[4].ContextMap()["ok"])
}

func TestNewWritesToConfiguredFile(t *testing.T) {
	cfg := config.Default()
	cfg.Log.File = filepath.Join(t.TempDir(), "logs", "bridge.log")

	log, err := New(cfg)
	require.NoError(t, err)
	log.Info("hello")
	require.NoError(t, log.Close())

	b, err := os.ReadFile(cfg.Log.File)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"msg":"hello"`)
}
