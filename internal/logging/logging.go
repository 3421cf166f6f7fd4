// Package logging installs the ACDICE log sinks: a colorized console, a
// daily rotating file that records everything, and an error-only file.
//
// Initialize builds all three sinks and returns the Handle owning them. The
// most recent Handle is also the process-wide logger: it backs zap.L() and
// logger.Global(), and is closed when the next Initialize succeeds or on
// Shutdown.
package logging

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/platformbuilds/acdice-core/internal/config"
	"github.com/platformbuilds/acdice-core/pkg/logger"
)

// Handle owns one installed sink set. It implements logger.Logger.
type Handle struct {
	zap   *zap.Logger
	sugar *zap.SugaredLogger
	sinks []Sink
	set   *sinkSet
	gate  *gate
	roots []*handoffCore

	closeOnce sync.Once
	closeErr  error
}

var current atomic.Pointer[Handle]

// Initialize installs the console, file and error sinks described by s.
// Either all three sinks are installed or, on error, none from this call
// are left open and the previously installed handle keeps running.
func Initialize(s config.Settings, opts ...Option) (*Handle, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	h, err := build(s, o)
	RecordInitialization(err == nil)
	if err != nil {
		return nil, err
	}

	// Publish the new handle before closing the old one; entries that still
	// reach the old handle are forwarded here.
	prev := current.Swap(h)
	zap.ReplaceGlobals(h.zap)
	if prev != nil {
		if err := prev.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "logging: failed to close previous sinks: %v\n", err)
		}
	}

	removed, err := sweepExpired(o.dir, h.sinks[1].Path, s.LogRetention(), o.now())
	if err != nil {
		h.Warn("Failed to remove expired log files", "error", err)
	}
	if len(removed) > 0 {
		h.Debug("Removed expired log files", "files", removed)
	}

	return h, nil
}

func build(s config.Settings, o options) (*Handle, error) {
	level, err := zapLevel(s.LogLevel)
	if err != nil {
		return nil, &InitError{Sink: SinkConsole, Err: err}
	}

	if err := os.MkdirAll(o.dir, 0o755); err != nil {
		return nil, &InitError{Sink: "directory", Path: o.dir, Err: err}
	}

	set := &sinkSet{}
	consoleSink(set, o, level)

	if err := fileSink(set, o, s.LogRetentionDays); err != nil {
		_ = set.close()
		return nil, err
	}
	if err := errorSink(set, o); err != nil {
		_ = set.close()
		return nil, err
	}

	g := &gate{}
	roots := make([]*handoffCore, len(set.cores))
	cores := make([]zapcore.Core, len(set.cores))
	for i, core := range set.cores {
		roots[i] = newHandoffCore(core, g, i)
		cores[i] = roots[i]
	}

	zl := zap.New(
		zapcore.NewTee(cores...),
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.DPanicLevel),
		zap.Hooks(countEntry),
		zap.ErrorOutput(zapcore.Lock(os.Stderr)),
	)
	if len(o.fields) > 0 {
		zl = zl.Sugar().With(o.fields...).Desugar()
	}

	return &Handle{
		zap:   zl,
		sugar: zl.WithOptions(zap.AddCallerSkip(1)).Sugar(),
		sinks: set.sinks,
		set:   set,
		gate:  g,
		roots: roots,
	}, nil
}

// Current returns the process-wide handle, or nil before Initialize.
func Current() *Handle {
	return current.Load()
}

// Shutdown flushes and closes the process-wide handle and points zap.L()
// back at a no-op logger.
func Shutdown() error {
	h := current.Swap(nil)
	if h == nil {
		return nil
	}
	zap.ReplaceGlobals(zap.NewNop())
	return h.Close()
}

var _ logger.Logger = (*Handle)(nil)

func (h *Handle) Debug(msg string, fields ...interface{}) { h.sugar.Debugw(msg, fields...) }
func (h *Handle) Info(msg string, fields ...interface{})  { h.sugar.Infow(msg, fields...) }
func (h *Handle) Warn(msg string, fields ...interface{})  { h.sugar.Warnw(msg, fields...) }
func (h *Handle) Error(msg string, fields ...interface{}) { h.sugar.Errorw(msg, fields...) }

// Critical logs at DPanic level with a stack trace. It does not panic.
func (h *Handle) Critical(msg string, fields ...interface{}) { h.sugar.DPanicw(msg, fields...) }

// Fatal logs, flushes every sink and exits the process.
func (h *Handle) Fatal(msg string, fields ...interface{}) { h.sugar.Fatalw(msg, fields...) }

// Sinks lists the installed sinks in console, file, errors order.
func (h *Handle) Sinks() []Sink {
	out := make([]Sink, len(h.sinks))
	copy(out, h.sinks)
	return out
}

// ZapLogger returns the underlying zap logger.
func (h *Handle) ZapLogger() *zap.Logger {
	return h.zap
}

// Sync flushes buffered entries to every sink.
func (h *Handle) Sync() error {
	return h.zap.Sync()
}

// Close flushes and releases the sinks. It is safe to call more than once.
// Entries logged through h afterwards go to the current handle, if any.
func (h *Handle) Close() error {
	h.closeOnce.Do(func() {
		h.gate.mu.Lock()
		defer h.gate.mu.Unlock()
		h.gate.closed = true
		for _, root := range h.roots {
			_ = root.Core.Sync()
		}
		h.closeErr = h.set.close()
	})
	return h.closeErr
}
