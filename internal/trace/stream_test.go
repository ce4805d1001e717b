package trace

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestStreamTracerWritesJSONL(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDetail)

	span := BeginSpan(tr, ScopeUnit, "unit:alpha")
	Point(tr, ScopeUnit, "decoded", "42 bytes")
	span.End("done")
	if err := tr.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 events, got %d:\n%s", len(lines), buf.String())
	}

	var first struct {
		Kind   string `json:"kind"`
		Scope  string `json:"scope"`
		Name   string `json:"name"`
		SpanID uint64 `json:"span_id"`
	}
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("line 0 is not JSON: %v", err)
	}
	if first.Kind != "begin" || first.Scope != "unit" || first.Name != "unit:alpha" || first.SpanID == 0 {
		t.Fatalf("unexpected begin event: %+v", first)
	}

	var last struct {
		Kind   string `json:"kind"`
		Detail string `json:"detail"`
		SpanID uint64 `json:"span_id"`
	}
	if err := json.Unmarshal([]byte(lines[2]), &last); err != nil {
		t.Fatalf("line 2 is not JSON: %v", err)
	}
	if last.Kind != "end" || last.Detail != "done" || last.SpanID != first.SpanID {
		t.Fatalf("end event does not close the span: %+v", last)
	}
}

func TestStreamTracerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelPhase)

	// Unit-scope events are below the phase threshold.
	Point(tr, ScopeUnit, "skipped", "")
	Point(tr, ScopeDriver, "kept", "")

	lines := strings.TrimSpace(buf.String())
	if strings.Contains(lines, "skipped") {
		t.Fatal("unit event leaked through phase level")
	}
	if !strings.Contains(lines, "kept") {
		t.Fatal("driver event missing")
	}
}

func TestNopTracerEmitsNothing(t *testing.T) {
	if Nop.Enabled() {
		t.Fatal("nop tracer must be disabled")
	}
	// Spans on a disabled tracer collapse to nil and stay safe to use.
	span := BeginSpan(Nop, ScopeDriver, "x")
	if span != nil {
		t.Fatal("expected nil span from disabled tracer")
	}
	span.End("ignored")
}
