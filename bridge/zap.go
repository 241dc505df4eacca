package bridge

import (
	"strings"

	"go.uber.org/zap/zapcore"

	"github.com/philipp01105/logq/core"
	"github.com/philipp01105/logq/engine"
)

// ZapCore is a zapcore.Core feeding an Engine. Context fields are encoded
// as a JSON object appended to the message.
type ZapCore struct {
	zapcore.LevelEnabler
	engine Engine
	enc    zapcore.Encoder
}

// NewZapCore creates a core for e. enab filters in addition to the
// engine's minimum severity.
func NewZapCore(e Engine, enab zapcore.LevelEnabler) *ZapCore {
	return &ZapCore{
		LevelEnabler: enab,
		engine:       e,
		enc:          zapcore.NewJSONEncoder(zapcore.EncoderConfig{}),
	}
}

// Enabled reports whether entries at lvl reach the engine.
func (c *ZapCore) Enabled(lvl zapcore.Level) bool {
	return c.LevelEnabler.Enabled(lvl) && FromZapLevel(lvl) >= c.engine.MinSeverity()
}

// With adds structured context to the core.
func (c *ZapCore) With(fields []zapcore.Field) zapcore.Core {
	clone := &ZapCore{
		LevelEnabler: c.LevelEnabler,
		engine:       c.engine,
		enc:          c.enc.Clone(),
	}
	for i := range fields {
		fields[i].AddTo(clone.enc)
	}
	return clone
}

// Check adds the core to ce if the entry is enabled.
func (c *ZapCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

// Write submits the entry. Entries refused by the engine are dropped
// silently. Entries above Error flush the engine, since zap exits or panics
// right after writing them.
func (c *ZapCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	buf, err := c.enc.EncodeEntry(ent, fields)
	if err != nil {
		return err
	}
	ctx := strings.TrimSuffix(buf.String(), "\n")
	buf.Free()

	msg := ent.Message
	if ctx != "{}" && ctx != "" {
		msg += " " + ctx
	}
	c.engine.LogEntry(core.Entry{
		Time:    ent.Time,
		Level:   FromZapLevel(ent.Level),
		Message: msg,
	})
	if ent.Level > zapcore.ErrorLevel {
		return c.Sync()
	}
	return nil
}

// Sync flushes the engine.
func (c *ZapCore) Sync() error {
	if !c.engine.Flush() {
		return engine.ErrFlushTimeout
	}
	return nil
}
