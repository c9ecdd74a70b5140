package evlog

import "time"

// Kind represents the type of log event.
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

// Scope indicates the granularity of the event.
// Lower numeric values represent coarser events.
type Scope uint8

const (
	// ScopeSession covers a whole debug session.
	ScopeSession Scope = iota + 1
	// ScopeCommand covers one front-end command.
	ScopeCommand
	// ScopeWatch covers watch reports and stop requests.
	ScopeWatch
	// ScopeLine covers single line notifications.
	ScopeLine
)

// String returns the string representation of Scope.
func (s Scope) String() string {
	switch s {
	case ScopeSession:
		return "session"
	case ScopeCommand:
		return "command"
	case ScopeWatch:
		return "watch"
	case ScopeLine:
		return "line"
	default:
		return "unknown"
	}
}

// Event represents a single log event.
type Event struct {
	Time     time.Time         // wall-clock timestamp
	Seq      uint64            // global sequence number (monotonic)
	Kind     Kind              // event kind
	Scope    Scope             // granularity level
	SpanID   uint64            // unique span identifier
	ParentID uint64            // parent span (0 if root)
	Name     string            // e.g. "session", "dispatch", "watch.report"
	Detail   string            // optional detail message
	Extra    map[string]string // extensible key-value pairs
}
