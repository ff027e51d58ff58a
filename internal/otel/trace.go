package otel

import (
	"os"
	"sync/atomic"
)

// TraceEnv turns on per-message tracing in the UI when set to any value.
const TraceEnv = "OUTFITTER_TRACE"

var traceEnabled atomic.Bool

func init() {
	traceEnabled.Store(os.Getenv(TraceEnv) != "")
}

// TraceEnabled reports whether message tracing is on.
func TraceEnabled() bool {
	return traceEnabled.Load()
}

// SetTraceEnabled overrides the environment setting, e.g. from a CLI flag.
func SetTraceEnabled(v bool) {
	traceEnabled.Store(v)
}
