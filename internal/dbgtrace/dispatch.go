package dbgtrace

import "fmt"

// WatchMode is the stop policy applied when a `variable` command omits it.
type WatchMode uint8

const (
	// NoStop reports changes and keeps running.
	NoStop WatchMode = iota
	// Stop reports changes and halts at the next line boundary.
	Stop
)

// DefaultWatchMode applies when neither "stop" nor "nostop" is given.
const DefaultWatchMode = NoStop

// String returns the command keyword of the mode.
func (m WatchMode) String() string {
	if m == Stop {
		return "stop"
	}
	return "nostop"
}

// ParseWatchMode accepts exactly "stop" or "nostop".
func ParseWatchMode(s string) (WatchMode, error) {
	switch s {
	case "stop":
		return Stop, nil
	case "nostop":
		return NoStop, nil
	default:
		return NoStop, &DispatchError{Err: ErrInvalidTrailingToken, Token: s}
	}
}

// Dispatcher interprets the tokens that follow `trace`/`tr`.
type Dispatcher struct {
	lines       *LineTracer
	watches     *WatchTable
	out         Printer
	defaultMode WatchMode
}

// NewDispatcher wires a dispatcher to the components it mutates.
func NewDispatcher(lines *LineTracer, watches *WatchTable, out Printer, defaultMode WatchMode) *Dispatcher {
	if out == nil {
		out = discardPrinter{}
	}
	return &Dispatcher{lines: lines, watches: watches, out: out, defaultMode: defaultMode}
}

// Dispatch runs one trace subcommand. On failure it prints exactly one error
// line and returns the *DispatchError; state is left untouched.
func (d *Dispatcher) Dispatch(tokens []string) error {
	err := d.dispatch(tokens)
	if err != nil {
		d.out.Errorln(err.Error())
	}
	return err
}

func (d *Dispatcher) dispatch(tokens []string) error {
	sub := ""
	if len(tokens) > 0 {
		sub = tokens[0]
	}

	switch sub {
	case "on", "off":
		if len(tokens) > 1 {
			return &DispatchError{Err: ErrUnexpectedToken, Token: tokens[1]}
		}
		d.lines.setEnabled(sub == "on")
		d.out.Println("line tracing is " + sub + ".")
		return nil
	case "variable", "var":
		return d.watch(tokens[1:])
	default:
		return &DispatchError{Err: ErrInvalidSubcommand, Token: sub}
	}
}

func (d *Dispatcher) watch(args []string) error {
	if len(args) == 0 {
		return &DispatchError{Err: ErrMissingVariable}
	}
	name, err := d.watches.resolve(args[0])
	if err != nil {
		return err
	}
	mode := d.defaultMode
	if len(args) > 1 {
		if mode, err = ParseWatchMode(args[1]); err != nil {
			return err
		}
	}
	if len(args) > 2 {
		return &DispatchError{Err: ErrInvalidTrailingToken, Token: args[2]}
	}
	return d.watches.Watch(name, mode == Stop)
}

// String describes the dispatcher state, used in log events.
func (d *Dispatcher) String() string {
	return fmt.Sprintf("lines=%t watches=%d default=%s", d.lines.Enabled(), d.watches.Len(), d.defaultMode)
}
