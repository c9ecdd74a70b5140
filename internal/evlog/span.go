package evlog

import (
	"sync/atomic"
	"time"
)

var (
	seqCounter  atomic.Uint64
	spanCounter atomic.Uint64
)

// NextSeq returns the next event sequence number.
func NextSeq() uint64 { return seqCounter.Add(1) }

// NextSpanID returns a fresh span ID. Zero is never returned.
func NextSpanID() uint64 { return spanCounter.Add(1) }

// Span is a begun session or command that has not ended yet.
// A nil Span, and the Span returned while its scope is filtered out, is
// inert: End does nothing and ID is 0.
type Span struct {
	t      Tracer
	id     uint64
	parent uint64
	scope  Scope
	name   string
	start  time.Time
}

func emits(t Tracer, scope Scope) bool {
	return t != nil && t.Enabled() && t.Level().ShouldEmit(scope)
}

// Begin opens a span under parent (0 for a root such as a session).
func Begin(t Tracer, scope Scope, name string, parent uint64) *Span {
	if !emits(t, scope) {
		return &Span{}
	}
	s := &Span{t: t, id: NextSpanID(), parent: parent, scope: scope, name: name, start: time.Now()}
	t.Emit(s.event(KindSpanBegin, s.start, ""))
	return s
}

// End closes the span with a detail such as "exit=0" and returns how long
// it was open.
func (s *Span) End(detail string) time.Duration {
	if s == nil || s.t == nil {
		return 0
	}
	now := time.Now()
	s.t.Emit(s.event(KindSpanEnd, now, detail))
	return now.Sub(s.start)
}

// ID returns the span ID to parent further events on.
func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.id
}

func (s *Span) event(kind Kind, at time.Time, detail string) *Event {
	return &Event{
		Time:     at,
		Kind:     kind,
		Scope:    s.scope,
		SpanID:   s.id,
		ParentID: s.parent,
		Name:     s.name,
		Detail:   detail,
	}
}

// Point emits an instant event under parent, such as a watch report or a
// dispatched command. kv holds key/value pairs; an odd trailing key is
// dropped.
func Point(t Tracer, scope Scope, name, detail string, parent uint64, kv ...string) {
	if !emits(t, scope) {
		return
	}
	ev := &Event{
		Time:     time.Now(),
		Kind:     KindPoint,
		Scope:    scope,
		ParentID: parent,
		Name:     name,
		Detail:   detail,
	}
	if len(kv) >= 2 {
		ev.Extra = make(map[string]string, len(kv)/2)
		for i := 1; i < len(kv); i += 2 {
			ev.Extra[kv[i-1]] = kv[i]
		}
	}
	t.Emit(ev)
}
