package evlog

// tee streams every event and keeps a copy in a Recorder, so a failed run
// can print the tail of its session even when the stream went to a file.
type tee struct {
	stream *StreamTracer
	rec    *Recorder
	level  Level
}

func (t *tee) Emit(ev *Event) {
	if ev == nil {
		return
	}
	if ev.Seq == 0 {
		ev.Seq = NextSeq()
	}
	kept := *ev
	t.stream.Emit(ev)
	t.rec.Emit(&kept)
}

func (t *tee) Flush() error { return t.stream.Flush() }

func (t *tee) Close() error { return t.stream.Close() }

func (t *tee) Level() Level { return t.level }

func (t *tee) Enabled() bool { return t.level > LevelOff }

// RecorderOf returns the Recorder behind t, or nil when t keeps no history.
func RecorderOf(t Tracer) *Recorder {
	switch x := t.(type) {
	case *Recorder:
		return x
	case *tee:
		return x.rec
	}
	return nil
}
