package logging

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedLogger(t *testing.T) (*ZapLogger, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	return NewZapLogger(zap.New(core)), logs
}

func TestZapLogger_Levels(t *testing.T) {
	log, logs := newObservedLogger(t)
	ctx := context.Background()

	log.Debug(ctx, "dbg", "a", 1)
	log.Info(ctx, "inf", "b", 2)
	log.Warn(ctx, "wrn", "c", 3)
	log.Error(ctx, "err", "d", 4)

	entries := logs.All()
	if len(entries) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(entries))
	}
	wantLevels := []zapcore.Level{zapcore.DebugLevel, zapcore.InfoLevel, zapcore.WarnLevel, zapcore.ErrorLevel}
	wantMsgs := []string{"dbg", "inf", "wrn", "err"}
	for i, e := range entries {
		if e.Level != wantLevels[i] {
			t.Fatalf("entry %d: expected level %v, got %v", i, wantLevels[i], e.Level)
		}
		if e.Message != wantMsgs[i] {
			t.Fatalf("entry %d: expected msg %q, got %q", i, wantMsgs[i], e.Message)
		}
	}
}

func TestZapLogger_With_AddsFields(t *testing.T) {
	log, logs := newObservedLogger(t)

	child := log.With("collection", "users")
	child.Error(context.Background(), "refresh failed", "err", errors.New("boom"))

	entries := logs.FilterMessage("refresh failed").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["collection"] != "users" {
		t.Fatalf("expected collection=users, got %v", fields["collection"])
	}
	if _, ok := fields["err"]; !ok {
		t.Fatalf("expected err field, got %v", fields)
	}
}

func TestNew_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "partners.log")
	log, err := New(Options{Path: path})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	log.Info(context.Background(), "hello", "k", "v")
	_ = log.Sync()

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(b), `"msg":"hello"`) {
		t.Fatalf("expected json line with msg, got:\n%s", b)
	}
}

func TestNop_DoesNotPanic(t *testing.T) {
	log := Nop()
	ctx := context.TODO()
	log.Info(ctx, "ok")
	log.With("a", 1).Warn(ctx, "ok")
}

func TestNew_WriterHonorsQuiet(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Options{Writer: &buf, Quiet: true})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx := context.Background()
	log.Info(ctx, "chatty")
	log.Warn(ctx, "important")

	out := buf.String()
	if strings.Contains(out, "chatty") {
		t.Fatalf("info should be filtered in quiet mode:\n%s", out)
	}
	if !strings.Contains(out, `"msg":"important"`) {
		t.Fatalf("expected warn line, got:\n%s", out)
	}
}
