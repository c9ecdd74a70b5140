package dbgtrace

import (
	"strconv"
	"strings"
	"sync"

	"vmdb/internal/evlog"
)

// Options configures a Session.
type Options struct {
	Scope       GlobalScope // resolves watch targets
	Settings    Settings    // display options, read only
	Out         Printer     // normal and error lines
	DefaultMode WatchMode   // mode for `variable <name>` without stop/nostop
	Log         evlog.Tracer
	LogParent   uint64 // parent span for emitted events
}

// Session owns the trace state of one debugging session. Every method takes
// the session lock, so notifications and commands are fully serialized.
type Session struct {
	mu         sync.Mutex
	lines      *LineTracer
	watches    *WatchTable
	stop       StopSignal
	dispatcher *Dispatcher
	log        evlog.Tracer
	logParent  uint64
}

// NewSession creates a session with tracing off and no watches.
func NewSession(opts Options) *Session {
	out := opts.Out
	if out == nil {
		out = discardPrinter{}
	}
	log := opts.Log
	if log == nil {
		log = evlog.Nop
	}
	s := &Session{log: log, logParent: opts.LogParent}
	s.lines = NewLineTracer(opts.Settings, out)
	s.watches = NewWatchTable(opts.Scope, out, &s.stop)
	s.dispatcher = NewDispatcher(s.lines, s.watches, out, opts.DefaultMode)
	return s
}

// OnLine is called by the engine before a line executes.
func (s *Session) OnLine(file string, line int, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lines.OnLine(file, line, text) && s.log.Enabled() {
		evlog.Point(s.log, evlog.ScopeLine, "line", text, s.logParent,
			"file", file, "line", strconv.Itoa(line))
	}
}

// OnGlobalWrite is called by the engine after every write to a global.
func (s *Session) OnGlobalWrite(name string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	wasRaised := s.stop.Raised()
	if !s.watches.OnWrite(name, value) || !s.log.Enabled() {
		return
	}
	evlog.Point(s.log, evlog.ScopeWatch, "watch.report", name, s.logParent, "value", RenderValue(value))
	if !wasRaised && s.stop.Raised() {
		evlog.Point(s.log, evlog.ScopeWatch, "stop.raise", s.stop.Reason(), s.logParent)
	}
}

// Dispatch runs the tokens following `trace`/`tr`.
func (s *Session) Dispatch(tokens []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.dispatcher.Dispatch(tokens)
	if s.log.Enabled() {
		status := "ok"
		if err != nil {
			status = err.Error()
		}
		evlog.Point(s.log, evlog.ScopeCommand, "trace", strings.Join(tokens, " "), s.logParent,
			"result", status, "state", s.dispatcher.String())
	}
	return err
}

// Unwatch removes a watch. Later writes to name are ignored.
func (s *Session) Unwatch(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	ok := s.watches.Unwatch(name)
	if ok {
		evlog.Point(s.log, evlog.ScopeCommand, "untrace", name, s.logParent)
	}
	return ok
}

// ShouldStop reports whether a watch requested a halt.
func (s *Session) ShouldStop() bool {
	return s.stop.Raised()
}

// StopReason returns the reason of the pending halt, if any.
func (s *Session) StopReason() string {
	return s.stop.Reason()
}

// ClearStop is called by the engine when execution resumes.
func (s *Session) ClearStop() {
	s.stop.Clear()
}

// LineTracing reports whether line tracing is on.
func (s *Session) LineTracing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lines.Enabled()
}

// Watches returns the current watch entries sorted by name.
func (s *Session) Watches() []WatchEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.watches.Entries()
}

// Watch returns the entry for name.
func (s *Session) Watch(name string) (WatchEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.watches.Lookup(name)
}
