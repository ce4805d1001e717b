package trace

import "time"

// Kind represents the type of trace event.
type Kind uint8

const (
	// KindSpanBegin marks the start of a logical operation.
	KindSpanBegin Kind = iota + 1
	// KindSpanEnd marks the end of a logical operation.
	KindSpanEnd
	// KindPoint represents an instant event.
	KindPoint
)

// String returns the string representation of Kind.
func (k Kind) String() string {
	switch k {
	case KindSpanBegin:
		return "begin"
	case KindSpanEnd:
		return "end"
	case KindPoint:
		return "point"
	default:
		return "unknown"
	}
}

// Scope indicates the granularity level of the event.
// Lower numeric values represent higher-level/coarser events.
type Scope uint8

const (
	// ScopeDriver represents top-level driver operations.
	ScopeDriver Scope = iota + 1
	// ScopeUnit represents per-compilation-unit processing.
	ScopeUnit
	// ScopeFunc represents per-function lowering (most detailed).
	ScopeFunc
)

// String returns the string representation of Scope.
func (s Scope) String() string {
	switch s {
	case ScopeDriver:
		return "driver"
	case ScopeUnit:
		return "unit"
	case ScopeFunc:
		return "func"
	default:
		return "unknown"
	}
}

// Event represents a single trace event.
type Event struct {
	Time   time.Time // wall-clock timestamp
	Seq    uint64    // global sequence number (monotonic)
	Kind   Kind      // event kind
	Scope  Scope     // granularity level
	SpanID uint64    // unique span identifier
	Name   string    // e.g., "lower", "unit:basic_cast"
	Detail string    // optional detail message
}
