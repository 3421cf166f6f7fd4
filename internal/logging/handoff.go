package logging

import (
	"sync"

	"go.uber.org/zap/zapcore"
)

// handoffCore wraps one sink core of a Handle. While the handle is open it
// writes to its own sink. Once the handle is closed, entries still arriving
// through a stale *zap.Logger are forwarded to the same sink of the current
// handle, so a re-initialization never loses records or reopens closed
// files. After Shutdown they are dropped.
type handoffCore struct {
	zapcore.Core
	gate  *gate
	index int
	ctx   []zapcore.Field
}

// gate is shared by every core of one Handle.
type gate struct {
	mu     sync.RWMutex
	closed bool
}

func newHandoffCore(core zapcore.Core, g *gate, index int) *handoffCore {
	return &handoffCore{Core: core, gate: g, index: index}
}

func (c *handoffCore) With(fields []zapcore.Field) zapcore.Core {
	ctx := make([]zapcore.Field, 0, len(c.ctx)+len(fields))
	ctx = append(ctx, c.ctx...)
	ctx = append(ctx, fields...)
	return &handoffCore{
		Core:  c.Core.With(fields),
		gate:  c.gate,
		index: c.index,
		ctx:   ctx,
	}
}

func (c *handoffCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *handoffCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	c.gate.mu.RLock()
	if !c.gate.closed {
		defer c.gate.mu.RUnlock()
		return c.Core.Write(ent, fields)
	}
	c.gate.mu.RUnlock()

	next := current.Load()
	if next == nil || next.gate == c.gate {
		return nil
	}
	target := next.roots[c.index]
	if !target.Enabled(ent.Level) {
		return nil
	}
	if len(c.ctx) == 0 {
		return target.Write(ent, fields)
	}
	all := make([]zapcore.Field, 0, len(c.ctx)+len(fields))
	all = append(all, c.ctx...)
	all = append(all, fields...)
	return target.Write(ent, all)
}

func (c *handoffCore) Sync() error {
	c.gate.mu.RLock()
	defer c.gate.mu.RUnlock()
	if c.gate.closed {
		return nil
	}
	return c.Core.Sync()
}
