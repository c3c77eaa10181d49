package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLoggerLevels(t *testing.T) {
	if _, err := NewLogger(false, "debug"); err != nil {
		t.Errorf("NewLogger(debug) error = %v", err)
	}
	if _, err := NewLogger(true, ""); err != nil {
		t.Errorf("NewLogger(dev, default) error = %v", err)
	}
	if _, err := NewLogger(false, "loud"); err == nil {
		t.Error("NewLogger(loud) expected error")
	}
}

func TestWithFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := New(zap.New(core)).WithFields(zap.String("asset_id", "bitcoin"))

	l.Warn("price sync failed")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("logged %d entries, want 1", len(entries))
	}
	if entries[0].ContextMap()["asset_id"] != "bitcoin" {
		t.Errorf("entry fields = %v, want asset_id=bitcoin", entries[0].ContextMap())
	}
}
