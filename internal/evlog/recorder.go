package evlog

import (
	"io"
	"strconv"
	"sync"
)

// maxSessions bounds how many session histories a Recorder retains.
// Finished sessions are forgotten first, oldest first.
const maxSessions = 16

// Recorder keeps the most recent events of every debug session in memory
// and writes them out after a failure. Events are grouped by the session
// span they were emitted under, so sessions replayed in parallel by
// `vmdb check` keep separate histories.
type Recorder struct {
	mu       sync.Mutex
	level    Level
	limit    int
	sessions map[uint64]*history
	order    []uint64 // session span IDs in begin order; 0 holds unparented events
}

// history is the bounded tail of one session.
type history struct {
	begin   *Event // nil for unparented events
	end     *Event
	tail    []Event
	next    int // oldest entry once tail is full
	dropped int
}

func (h *history) add(ev Event, limit int) {
	if len(h.tail) < limit {
		h.tail = append(h.tail, ev)
		return
	}
	h.tail[h.next] = ev
	h.next = (h.next + 1) % limit
	h.dropped++
}

// events returns the retained events in emission order.
func (h *history) events() []Event {
	out := make([]Event, 0, len(h.tail)+3)
	if h.begin != nil {
		out = append(out, *h.begin)
	}
	if h.dropped > 0 {
		out = append(out, Event{
			Time:     h.tail[h.next].Time,
			Seq:      h.tail[h.next].Seq,
			Kind:     KindPoint,
			Scope:    ScopeSession,
			ParentID: h.id(),
			Name:     "dropped",
			Detail:   strconv.Itoa(h.dropped) + " earlier events",
		})
	}
	out = append(out, h.tail[h.next:]...)
	out = append(out, h.tail[:h.next]...)
	if h.end != nil {
		out = append(out, *h.end)
	}
	return out
}

func (h *history) id() uint64 {
	if h.begin == nil {
		return 0
	}
	return h.begin.SpanID
}

// NewRecorder creates a Recorder keeping up to perSession events for each
// session, not counting the session's own begin and end.
func NewRecorder(perSession int, level Level) *Recorder {
	if perSession <= 0 {
		perSession = defaultRecorderSize
	}
	return &Recorder{
		level:    level,
		limit:    perSession,
		sessions: make(map[uint64]*history),
	}
}

// Emit files the event under its session.
func (r *Recorder) Emit(ev *Event) {
	if ev == nil || !r.level.ShouldEmit(ev.Scope) {
		return
	}
	stored := *ev
	if stored.Seq == 0 {
		stored.Seq = NextSeq()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	switch {
	case stored.Scope == ScopeSession && stored.Kind == KindSpanBegin:
		r.open(&stored)
	case stored.Scope == ScopeSession && stored.Kind == KindSpanEnd:
		if h, ok := r.sessions[stored.SpanID]; ok {
			h.end = &stored
			return
		}
		r.session(0).add(stored, r.limit)
	default:
		r.session(stored.ParentID).add(stored, r.limit)
	}
}

func (r *Recorder) open(begin *Event) {
	if len(r.order) >= maxSessions {
		r.evict()
	}
	r.sessions[begin.SpanID] = &history{begin: begin}
	r.order = append(r.order, begin.SpanID)
}

// session returns the history events parented to id belong to, falling back
// to the unparented history.
func (r *Recorder) session(id uint64) *history {
	if h, ok := r.sessions[id]; ok {
		return h
	}
	h, ok := r.sessions[0]
	if !ok {
		h = &history{}
		r.sessions[0] = h
		r.order = append(r.order, 0)
	}
	return h
}

func (r *Recorder) evict() {
	victim := 0
	for i, id := range r.order {
		if r.sessions[id].end != nil {
			victim = i
			break
		}
	}
	delete(r.sessions, r.order[victim])
	r.order = append(r.order[:victim], r.order[victim+1:]...)
}

// Dump writes every retained session, oldest first, in the given format.
// Each session starts with its begin event and, once it finished, ends
// with its end event.
func (r *Recorder) Dump(w io.Writer, format Format) error {
	r.mu.Lock()
	var events []Event
	for _, id := range r.order {
		events = append(events, r.sessions[id].events()...)
	}
	r.mu.Unlock()

	for i := range events {
		if _, err := w.Write(FormatEvent(&events[i], format)); err != nil {
			return err
		}
	}
	return nil
}

func (r *Recorder) Flush() error { return nil }
func (r *Recorder) Close() error { return nil }

func (r *Recorder) Level() Level { return r.level }

func (r *Recorder) Enabled() bool { return r.level > LevelOff }
