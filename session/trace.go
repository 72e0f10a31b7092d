package session

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type traceFrame struct {
	ctx  context.Context
	span trace.Span
}

// traceStack nests spans opened by TraceBegin.
type traceStack struct {
	tracer trace.Tracer
	attrs  []attribute.KeyValue
	mu     sync.Mutex
	frames []traceFrame
}

func newTraceStack(tracer trace.Tracer, sessionID string) *traceStack {
	return &traceStack{
		tracer: tracer,
		attrs:  []attribute.KeyValue{attribute.String("sensecore.session", sessionID)},
	}
}

func (t *traceStack) parentLocked() context.Context {
	if n := len(t.frames); n > 0 {
		return t.frames[n-1].ctx
	}
	return context.Background()
}

func (t *traceStack) begin(task string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	ctx, span := t.tracer.Start(t.parentLocked(), task, trace.WithAttributes(t.attrs...))
	t.frames = append(t.frames, traceFrame{ctx: ctx, span: span})
}

func (t *traceStack) end() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := len(t.frames)
	if n == 0 {
		return false
	}
	t.frames[n-1].span.End()
	t.frames = t.frames[:n-1]
	return true
}

func (t *traceStack) event(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if n := len(t.frames); n > 0 {
		t.frames[n-1].span.AddEvent(name)
		return
	}
	_, span := t.tracer.Start(context.Background(), name, trace.WithAttributes(t.attrs...))
	span.End()
}

func (t *traceStack) param(name, value string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := len(t.frames)
	if n == 0 {
		return false
	}
	t.frames[n-1].span.SetAttributes(attribute.String(name, value))
	return true
}

func (t *traceStack) depth() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.frames)
}

// closeAll ends open spans, innermost first.
func (t *traceStack) closeAll() {
	for t.end() {
	}
}

// TraceBegin opens a span nested in the current one.
func (s *Service) TraceBegin(task string) {
	s.traces.begin(task)
}

// TraceEnd closes the innermost span opened by TraceBegin.
func (s *Service) TraceEnd() {
	if !s.traces.end() {
		s.logger.Debug("trace end without begin")
	}
}

// TraceEvent records an event on the current span, or a zero length span
// when none is open.
func (s *Service) TraceEvent(name string) {
	s.traces.event(name)
}

// TraceParam sets an attribute on the current span. Without an open span
// the parameter is dropped.
func (s *Service) TraceParam(name, value string) {
	if !s.traces.param(name, value) {
		s.logger.Debug("trace param without span", "name", name)
	}
}
