// Package bridge connects other logging front ends to a logq engine.
//
// SlogHandler implements log/slog.Handler and ZapCore implements
// zapcore.Core. Both convert levels to core.Level with a single exhaustive
// mapping (FromSlogLevel, FromZapLevel) and hand the result to the engine as
// a core.Entry, so overflow policy, filtering and ordering are those of the
// engine.
//
//	e := engine.New()
//	e.Run()
//	defer e.Stop()
//
//	slog.SetDefault(slog.New(bridge.NewSlogHandler(e, core.DebugLevel)))
//	zl := zap.New(bridge.NewZapCore(e, zapcore.DebugLevel))
package bridge
