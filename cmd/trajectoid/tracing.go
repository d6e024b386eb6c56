package main

import (
	"io"
	"sync"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
)

// logSelector hands out one Go logger backed tracer per key, all sharing
// the same level and output.
type logSelector struct {
	mu      sync.Mutex
	level   tracing.TraceLevel
	out     io.Writer
	tracers map[string]tracing.Trace
}

func (s *logSelector) Select(key string) tracing.Trace {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.tracers[key]; ok {
		return t
	}
	t := gologadapter.New()
	t.SetTraceLevel(s.level)
	t.SetOutput(s.out)
	s.tracers[key] = t
	return t
}

// installTracing routes the tracing of every package to w at the given level.
func installTracing(level tracing.TraceLevel, w io.Writer) {
	tracing.SetTraceSelector(&logSelector{
		level:   level,
		out:     w,
		tracers: make(map[string]tracing.Trace),
	})
}
