package dbgtrace

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"

	"vmdb/internal/evlog"
)

// A nostop watch reports each distinct write and never raises a stop.
func TestSessionWatchNoStop(t *testing.T) {
	rec := &recorder{}
	s := NewSession(Options{Scope: globals{"bla": true}, Out: rec})

	if err := s.Dispatch([]string{"variable", "bla", "nostop"}); err != nil {
		t.Fatal(err)
	}
	s.OnGlobalWrite("bla", intValue(5))
	if s.ShouldStop() {
		t.Fatal("nostop raised the stop flag")
	}
	s.OnGlobalWrite("bla", intValue(7))
	if s.ShouldStop() {
		t.Fatal("nostop raised the stop flag")
	}

	want := []string{
		"traced global variable 'bla' has value '5'",
		"traced global variable 'bla' has value '7'",
	}
	if strings.Join(rec.out, "\n") != strings.Join(want, "\n") {
		t.Errorf("out = %q, want %q", rec.out, want)
	}
}

func TestSessionStopUntilCleared(t *testing.T) {
	s := NewSession(Options{Scope: globals{"bla": true, "x": true}})
	if err := s.Dispatch([]string{"var", "bla", "stop"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Dispatch([]string{"var", "x", "stop"}); err != nil {
		t.Fatal(err)
	}

	s.OnGlobalWrite("bla", intValue(5))
	s.OnGlobalWrite("x", intValue(1))
	if !s.ShouldStop() {
		t.Fatal("stop flag not raised")
	}
	if got := s.StopReason(); got != "traced global variable 'bla' changed" {
		t.Errorf("first reason must win, got %q", got)
	}

	// unrelated notifications never clear it
	s.OnLine("p.tn", 3, "$y = 1")
	s.OnGlobalWrite("bla", intValue(5))
	if !s.ShouldStop() {
		t.Fatal("stop flag cleared by the core")
	}

	s.ClearStop()
	if s.ShouldStop() || s.StopReason() != "" {
		t.Error("ClearStop did not clear")
	}
}

func TestSessionOffIsNotRetroactive(t *testing.T) {
	rec := &recorder{}
	s := NewSession(Options{Out: rec})

	s.OnLine("p.tn", 1, "$a = 1")
	_ = s.Dispatch([]string{"on"})
	s.OnLine("p.tn", 2, "$a = 2")
	_ = s.Dispatch([]string{"off"})
	s.OnLine("p.tn", 3, "$a = 3")

	want := []string{"line tracing is on.", "Tracing: p.tn:2 $a = 2", "line tracing is off."}
	if strings.Join(rec.out, "\n") != strings.Join(want, "\n") {
		t.Errorf("out = %q, want %q", rec.out, want)
	}
	if s.LineTracing() {
		t.Error("LineTracing() = true after off")
	}
}

func TestSessionUnwatch(t *testing.T) {
	rec := &recorder{}
	s := NewSession(Options{Scope: globals{"bla": true}, Out: rec})
	_ = s.Dispatch([]string{"var", "bla", "stop"})

	if !s.Unwatch("bla") {
		t.Fatal("Unwatch returned false")
	}
	s.OnGlobalWrite("bla", intValue(9))
	if len(rec.out) != 0 || s.ShouldStop() {
		t.Errorf("write after unwatch had effect: %q stop=%v", rec.out, s.ShouldStop())
	}
	if len(s.Watches()) != 0 {
		t.Error("watches not empty")
	}
}

func TestSessionErrorIsPrintedOnce(t *testing.T) {
	rec := &recorder{}
	s := NewSession(Options{Scope: globals{}, Out: rec})

	err := s.Dispatch([]string{"variable", "foo"})
	if !errors.Is(err, ErrUnknownVariable) {
		t.Fatalf("err = %v", err)
	}
	if len(rec.errs) != 1 || rec.errs[0] != "'foo' is not a global variable." {
		t.Errorf("errs = %q", rec.errs)
	}
}

func TestSessionLogsEvents(t *testing.T) {
	var buf bytes.Buffer
	log := evlog.NewStreamTracer(&buf, evlog.LevelDebug, evlog.FormatText)
	s := NewSession(Options{Scope: globals{"bla": true}, Log: log})

	_ = s.Dispatch([]string{"on"})
	_ = s.Dispatch([]string{"var", "bla", "stop"})
	s.OnLine("p.tn", 4, "$bla = 5")
	s.OnGlobalWrite("bla", intValue(5))

	out := buf.String()
	for _, want := range []string{"command trace (on)", "line line ($bla = 5)", "watch watch.report (bla) {value=5}", "watch stop.raise"} {
		if !strings.Contains(out, want) {
			t.Errorf("log missing %q:\n%s", want, out)
		}
	}
}

func TestIndependentSessionsConcurrently(t *testing.T) {
	var wg sync.WaitGroup
	sessions := make([]*Session, 8)
	for i := range sessions {
		sessions[i] = NewSession(Options{Scope: globals{"bla": true}})
	}
	for i, s := range sessions {
		wg.Add(1)
		go func(i int, s *Session) {
			defer wg.Done()
			mode := "nostop"
			if i%2 == 0 {
				mode = "stop"
			}
			_ = s.Dispatch([]string{"var", "bla", mode})
			for v := 0; v < 10; v++ {
				s.OnGlobalWrite("bla", intValue(v))
				s.OnLine("p.tn", v+1, "$bla = 1")
			}
		}(i, s)
	}
	wg.Wait()

	for i, s := range sessions {
		if got, want := s.ShouldStop(), i%2 == 0; got != want {
			t.Errorf("session %d: ShouldStop = %v, want %v", i, got, want)
		}
		if e, _ := s.Watch("bla"); e.LastValue != "9" {
			t.Errorf("session %d: last value %q", i, e.LastValue)
		}
	}
}
