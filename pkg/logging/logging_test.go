package logging

import (
	"context"
	"testing"
)

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]LogLevel{
		"debug":   DEBUG,
		" WARN ":  WARN,
		"warning": WARN,
		"error":   ERROR,
		"":        INFO,
		"verbose": INFO,
	} {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestRequestID(t *testing.T) {
	ctx := context.Background()
	if HasRequestID(ctx) || RequestID(ctx) != "no-request-id" {
		t.Fatal("empty context must not carry a request id")
	}
	ctx = WithRequestID(ctx, "r-1")
	if !HasRequestID(ctx) || RequestID(ctx) != "r-1" {
		t.Errorf("unexpected request id %q", RequestID(ctx))
	}
	if NewRequestID() == NewRequestID() {
		t.Error("request ids must be unique")
	}
}

func TestGetLoggerStoresLogger(t *testing.T) {
	l, ctx := GetLogger(WithRequestID(context.Background(), "r-2"))
	again, _ := GetLogger(ctx)
	if l != again {
		t.Error("second GetLogger must return the stored logger")
	}
}

func TestLoggerWithFile(t *testing.T) {
	l := NewLoggerWithConfig(Config{Level: "debug", File: t.TempDir() + "/superorder.log"})
	l.Info(WithRequestID(context.Background(), "r-3"), "hello")
	_ = l.Sync()
}
