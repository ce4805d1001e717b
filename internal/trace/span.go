package trace

import "time"

// Span provides RAII-style span tracking.
type Span struct {
	tracer Tracer
	id     uint64
	scope  Scope
	name   string
}

// BeginSpan emits a begin event and returns the span handle.
func BeginSpan(t Tracer, scope Scope, name string) *Span {
	if t == nil || !t.Enabled() {
		return nil
	}
	s := &Span{tracer: t, id: NextSpanID(), scope: scope, name: name}
	t.Emit(&Event{
		Time:   time.Now(),
		Kind:   KindSpanBegin,
		Scope:  scope,
		SpanID: s.id,
		Name:   name,
	})
	return s
}

// End emits the matching end event. Safe on a nil span.
func (s *Span) End(detail string) {
	if s == nil {
		return
	}
	s.tracer.Emit(&Event{
		Time:   time.Now(),
		Kind:   KindSpanEnd,
		Scope:  s.scope,
		SpanID: s.id,
		Name:   s.name,
		Detail: detail,
	})
}

// Point emits an instant event.
func Point(t Tracer, scope Scope, name, detail string) {
	if t == nil || !t.Enabled() {
		return
	}
	t.Emit(&Event{
		Time:   time.Now(),
		Kind:   KindPoint,
		Scope:  scope,
		Name:   name,
		Detail: detail,
	})
}
