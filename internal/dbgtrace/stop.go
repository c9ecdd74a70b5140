package dbgtrace

import "sync/atomic"

// StopSignal is the flag the run loop polls after each notification.
// Raising it is idempotent: the first reason wins until Clear.
type StopSignal struct {
	raised atomic.Bool
	reason atomic.Pointer[string]
}

// Raise requests a halt at the next line boundary.
func (s *StopSignal) Raise(reason string) {
	if s.raised.CompareAndSwap(false, true) {
		s.reason.Store(&reason)
	}
}

// Raised reports whether a halt is pending.
func (s *StopSignal) Raised() bool {
	return s.raised.Load()
}

// Reason returns the reason given to the first Raise since the last Clear.
func (s *StopSignal) Reason() string {
	if !s.raised.Load() {
		return ""
	}
	if r := s.reason.Load(); r != nil {
		return *r
	}
	return ""
}

// Clear drops a pending halt. Only the resuming side calls it.
func (s *StopSignal) Clear() {
	s.reason.Store(nil)
	s.raised.Store(false)
}
