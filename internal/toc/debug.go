package toc

import (
	"github.com/brogergvhs/mangatoc/internal/providers"
	"go.uber.org/zap"
)

// Debug log states.
const (
	StateTrace = 1
	StateBody  = 30
)

// ZapDebugLog forwards trace lines to a zap logger at debug level.
type ZapDebugLog struct {
	Logger *zap.Logger
}

func (d ZapDebugLog) Log(source, msg string, state int) {
	if d.Logger == nil {
		return
	}
	d.Logger.Debug(msg, zap.String("source", source), zap.Int("state", state))
}

// tracer wraps an optional sink so that a misbehaving sink cannot disturb
// resolution.
type tracer struct {
	sink   providers.DebugLog
	source string
}

func (t tracer) log(msg string, state int) {
	if t.sink == nil {
		return
	}
	defer func() { _ = recover() }()

	t.sink.Log(t.source, msg, state)
}

// logIf is log gated on the page being the seed page.
func (t tracer) logIf(verbose bool, msg string) {
	if verbose {
		t.log(msg, StateTrace)
	}
}
