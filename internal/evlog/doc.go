// Package evlog provides the structured event log of a vmdb debug session.
//
// The log records what the debugger did rather than what the target program
// printed: session lifetime, dispatched commands, reported watch changes,
// raised stops and (at the most verbose level) every line notification.
//
// # Usage
//
//	vmdb run --log=- --log-level=watch prog.tn
//
// # Architecture
//
//   - Nop: zero-overhead tracer when logging is disabled
//   - StreamTracer: immediate write to output (file/stderr)
//   - Recorder: the recent events of each session, dumped when a run fails
//   - mode "both" streams and records at once; RecorderOf finds the Recorder
//
// # Levels
//
//   - LevelOff: nothing
//   - LevelError: only explicit dumps
//   - LevelCommand: session boundaries and dispatched commands
//   - LevelWatch: plus watch reports and stop requests
//   - LevelDebug: plus every line notification
//
// # Context Propagation
//
//	ctx = evlog.WithTracer(ctx, tracer)
//	t := evlog.FromContext(ctx)
//
//	span := evlog.Begin(t, evlog.ScopeSession, "session", 0)
//	defer span.End("")
package evlog
