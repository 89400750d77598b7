package logger

import (
	"testing"
)

func TestNew_IsNop(t *testing.T) {
	l := New()
	if l.Log == nil {
		t.Fatal("expected non-nil logger")
	}
	if ce := l.Log.Check(-1, "debug"); ce != nil {
		t.Error("nop logger should not enable any level")
	}
}

func TestInit(t *testing.T) {
	l := New()
	if err := l.Init("Info"); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if !l.Log.Core().Enabled(0) {
		t.Error("info should be enabled")
	}
	if l.Log.Core().Enabled(-1) {
		t.Error("debug should be disabled at info level")
	}
}

func TestInit_BadLevel(t *testing.T) {
	l := New()
	if err := l.Init("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestOrNop(t *testing.T) {
	if OrNop(nil) == nil {
		t.Error("OrNop(nil) returned nil")
	}
}
