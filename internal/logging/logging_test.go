package logging

import (
	"testing"

	"go.uber.org/zap"
)

func TestNew(t *testing.T) {
	t.Run("Production", func(t *testing.T) {
		logger, err := New(true, "")
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if logger.Core().Enabled(zap.DebugLevel) {
			t.Error("Expected debug to be disabled in production")
		}
		if !logger.Core().Enabled(zap.InfoLevel) {
			t.Error("Expected info to be enabled in production")
		}
	})

	t.Run("Development", func(t *testing.T) {
		logger, err := New(false, "")
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if !logger.Core().Enabled(zap.DebugLevel) {
			t.Error("Expected debug to be enabled in development")
		}
	})

	t.Run("LevelOverride", func(t *testing.T) {
		logger, err := New(false, "warn")
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if logger.Core().Enabled(zap.InfoLevel) {
			t.Error("Expected info to be disabled at warn level")
		}
	})

	t.Run("BadLevel", func(t *testing.T) {
		if _, err := New(true, "loud"); err == nil {
			t.Fatal("Expected an error for an unknown level, got nil")
		}
	})
}
