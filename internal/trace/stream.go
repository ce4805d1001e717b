package trace

import (
	"encoding/json"
	"io"
	"sync"
	"time"
)

// StreamTracer writes events immediately to an io.Writer as
// newline-delimited JSON.
type StreamTracer struct {
	mu    sync.Mutex
	w     io.Writer
	level Level
}

// NewStreamTracer creates a new StreamTracer.
func NewStreamTracer(w io.Writer, level Level) *StreamTracer {
	return &StreamTracer{w: w, level: level}
}

type jsonEvent struct {
	Time   string `json:"time"`
	Seq    uint64 `json:"seq"`
	Kind   string `json:"kind"`
	Scope  string `json:"scope"`
	SpanID uint64 `json:"span_id,omitempty"`
	Name   string `json:"name"`
	Detail string `json:"detail,omitempty"`
}

// Emit writes an event to the output.
func (t *StreamTracer) Emit(ev *Event) {
	if ev == nil || !t.level.ShouldEmit(ev.Scope) {
		return
	}
	ev.Seq = NextSeq()
	if ev.Time.IsZero() {
		ev.Time = time.Now()
	}
	data, err := json.Marshal(jsonEvent{
		Time:   ev.Time.Format(time.RFC3339Nano),
		Seq:    ev.Seq,
		Kind:   ev.Kind.String(),
		Scope:  ev.Scope.String(),
		SpanID: ev.SpanID,
		Name:   ev.Name,
		Detail: ev.Detail,
	})
	if err != nil {
		return
	}
	data = append(data, '\n')

	t.mu.Lock()
	defer t.mu.Unlock()
	// Best-effort write; trace failures never fail the compilation.
	_, _ = t.w.Write(data)
}

// Flush ensures all buffered data is written.
func (t *StreamTracer) Flush() error {
	if flusher, ok := t.w.(interface{ Flush() error }); ok {
		return flusher.Flush()
	}
	return nil
}

// Close flushes and closes the writer if it implements io.Closer.
func (t *StreamTracer) Close() error {
	if err := t.Flush(); err != nil {
		return err
	}
	if closer, ok := t.w.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// Level returns the configured level.
func (t *StreamTracer) Level() Level { return t.level }

// Enabled reports whether any events will be emitted.
func (t *StreamTracer) Enabled() bool { return t.level > LevelOff }
