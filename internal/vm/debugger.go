package vm

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"vmdb/internal/dbgtrace"
	"vmdb/internal/evlog"
)

// DefaultPrompt is shown before each command in interactive mode.
const DefaultPrompt = "(vmdb) "

// ExitQuit is the process exit code after `quit`.
const ExitQuit = 125

// LineReader supplies command lines with line editing. It returns io.EOF
// when input ends.
type LineReader interface {
	ReadLine(prompt string) (string, error)
}

// DebuggerOptions configures a Debugger.
type DebuggerOptions struct {
	In          io.Reader
	Lines       LineReader // replaces In when set
	Out         io.Writer
	Err         io.Writer
	Interactive bool
	Prompt      string
	Basename    bool
	Color       bool // red error lines

	DefaultWatchMode dbgtrace.WatchMode
	InitCommands     []string // run before reading In

	Log       evlog.Tracer
	LogParent uint64
}

// Debugger provides interactive debugging capabilities for the VM.
type Debugger struct {
	vm          *VM
	session     *dbgtrace.Session
	breakpoints *Breakpoints
	inspector   *Inspector
	settings    *Settings
	fmt         *Formatter
	out         *linePrinter

	in          *bufio.Scanner
	lines       LineReader
	prompt      string
	interactive bool
	initCmds    []string

	log  evlog.Tracer
	span *evlog.Span
}

// DebuggerResult contains the result of a debugger session.
type DebuggerResult struct {
	ExitCode int
	Quit     bool
}

// NewDebugger creates a new Debugger instance and attaches its trace session
// to vm.
func NewDebugger(vm *VM, opts DebuggerOptions) *Debugger {
	in := opts.In
	if in == nil {
		in = strings.NewReader("")
	}
	out := opts.Out
	if out == nil {
		out = io.Discard
	}
	errOut := opts.Err
	if errOut == nil {
		errOut = out
	}
	prompt := opts.Prompt
	if prompt == "" {
		prompt = DefaultPrompt
	}
	log := opts.Log
	if log == nil {
		log = evlog.Nop
	}

	d := &Debugger{
		vm:          vm,
		breakpoints: NewBreakpoints(),
		settings:    &Settings{basename: opts.Basename},
		out:         newLinePrinter(out, errOut, opts.Color),
		lines:       opts.Lines,
		prompt:      prompt,
		interactive: opts.Interactive,
		initCmds:    opts.InitCommands,
		log:         log,
	}
	d.in = bufio.NewScanner(in)
	d.fmt = NewFormatter(d.settings)
	d.inspector = NewInspector(vm, d.out, d.fmt)
	d.span = evlog.Begin(log, evlog.ScopeSession, "session", opts.LogParent)
	d.session = dbgtrace.NewSession(dbgtrace.Options{
		Scope:       vm,
		Settings:    d.settings,
		Out:         d.out,
		DefaultMode: opts.DefaultWatchMode,
		Log:         log,
		LogParent:   d.span.ID(),
	})
	vm.SetNotifier(d.session)
	return d
}

// Session returns the trace session driven by this debugger.
func (d *Debugger) Session() *dbgtrace.Session {
	if d == nil {
		return nil
	}
	return d.session
}

// Breakpoints returns the breakpoints collection.
func (d *Debugger) Breakpoints() *Breakpoints {
	if d == nil {
		return nil
	}
	return d.breakpoints
}

// Run executes the debugger session.
func (d *Debugger) Run() (res DebuggerResult, vmErr *VMError) {
	if d == nil || d.vm == nil {
		return DebuggerResult{}, nil
	}
	defer func() {
		detail := "exit=" + strconv.Itoa(res.ExitCode)
		if vmErr != nil {
			detail = vmErr.Error()
		}
		d.span.End(detail)
	}()

	if vmErr := d.vm.Start(); vmErr != nil {
		return DebuggerResult{}, vmErr
	}

	for _, line := range d.initCmds {
		if done, res, vmErr := d.runLine(line); done {
			return res, vmErr
		}
	}

	for {
		if d.vm.Halted {
			return DebuggerResult{ExitCode: d.vm.ExitCode}, nil
		}
		line, ok := d.readLine()
		if !ok {
			break
		}
		if done, res, vmErr := d.runLine(line); done {
			return res, vmErr
		}
	}

	// Script mode: when input ends, continue to completion (ignoring
	// breakpoints and stop requests).
	if !d.interactive {
		for !d.vm.Halted {
			if vmErr := d.vm.Step(); vmErr != nil {
				return DebuggerResult{}, vmErr
			}
		}
	}
	return DebuggerResult{ExitCode: d.vm.ExitCode}, nil
}

func (d *Debugger) readLine() (string, bool) {
	if d.lines != nil {
		line, err := d.lines.ReadLine(d.prompt)
		if err != nil {
			return "", false
		}
		return line, true
	}
	if d.interactive {
		_, _ = io.WriteString(d.out.out, d.prompt) //nolint:errcheck
	}
	if !d.in.Scan() {
		return "", false
	}
	return d.in.Text(), true
}

// runLine executes one command line and reports whether the session is over.
func (d *Debugger) runLine(raw string) (bool, DebuggerResult, *VMError) {
	line := strings.TrimSpace(raw)
	if line == "" || strings.HasPrefix(line, "#") {
		return false, DebuggerResult{}, nil
	}
	evlog.Point(d.log, evlog.ScopeCommand, "command", line, d.span.ID())
	res, vmErr := d.execCommand(line)
	switch {
	case vmErr != nil:
		return true, DebuggerResult{ExitCode: 1}, vmErr
	case res.Quit:
		return true, res, nil
	case d.vm.Halted:
		return true, DebuggerResult{ExitCode: d.vm.ExitCode}, nil
	}
	return false, DebuggerResult{}, nil
}

func (d *Debugger) execCommand(line string) (DebuggerResult, *VMError) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return DebuggerResult{}, nil
	}
	cmd := fields[0]
	args := fields[1:]

	switch cmd {
	case "help", "h":
		d.help()
	case "trace", "tr":
		// Session prints its own error line.
		_ = d.session.Dispatch(args) //nolint:errcheck
	case "untrace":
		if len(args) != 1 {
			d.out.Errorln("error: untrace expects <name>")
			return DebuggerResult{}, nil
		}
		if !d.session.Unwatch(args[0]) {
			d.out.Errorln("'" + strings.TrimPrefix(args[0], "$") + "' is not traced.")
		}
	case "watches":
		d.inspector.Watches(d.session.Watches())
	case "step", "s", "next", "n":
		// Statements contain no calls, so next and step coincide.
		return d.cmdStep()
	case "continue", "c", "cont":
		if len(args) > 1 {
			d.out.Errorln("error: continue expects at most one line number")
			return DebuggerResult{}, nil
		}
		target := 0
		if len(args) == 1 {
			n, err := strconv.Atoi(args[0])
			if err != nil || n <= 0 {
				d.out.Errorln("error: invalid line " + strconv.Quote(args[0]))
				return DebuggerResult{}, nil
			}
			target = n
		}
		return d.cmdContinue(target)
	case "break", "b":
		if len(args) != 1 {
			d.out.Errorln("error: break expects <line> or <file:line>")
			return DebuggerResult{}, nil
		}
		if bp, err := d.cmdBreak(args[0]); err != nil {
			d.out.Errorln("error: " + err.Error())
		} else {
			d.out.Println("breakpoint " + bp.Summary())
		}
	case "delete":
		if len(args) != 1 {
			d.out.Errorln("error: delete expects <id>")
			return DebuggerResult{}, nil
		}
		id, err := strconv.Atoi(args[0])
		if err != nil || id <= 0 {
			d.out.Errorln("error: invalid breakpoint id")
			return DebuggerResult{}, nil
		}
		if !d.breakpoints.Delete(id) {
			d.out.Errorln("error: unknown breakpoint id")
		}
	case "list":
		d.cmdList()
	case "globals":
		d.inspector.Globals()
	case "print", "p":
		if len(args) != 1 {
			d.out.Errorln("error: print expects <$name>")
			return DebuggerResult{}, nil
		}
		d.inspector.PrintGlobal(args[0])
	case "set":
		d.cmdSet(args)
	case "quit", "q":
		return DebuggerResult{ExitCode: ExitQuit, Quit: true}, nil
	default:
		d.out.Errorln("error: unknown command " + strconv.Quote(cmd))
	}

	return DebuggerResult{}, nil
}

func (d *Debugger) cmdStep() (DebuggerResult, *VMError) {
	d.session.ClearStop()
	if vmErr := d.vm.Step(); vmErr != nil {
		return DebuggerResult{}, vmErr
	}
	if d.vm.Halted {
		return DebuggerResult{ExitCode: d.vm.ExitCode}, nil
	}
	if sp, ok := d.vm.StopPoint(); ok {
		d.out.Println("step: " + d.fmt.Location(sp))
	}
	return DebuggerResult{}, nil
}

// cmdContinue runs until the program halts, a stop is requested, a
// breakpoint is reached, or the VM arrives at targetLine (0 = none).
func (d *Debugger) cmdContinue(targetLine int) (DebuggerResult, *VMError) {
	d.session.ClearStop()
	for !d.vm.Halted {
		if vmErr := d.vm.Step(); vmErr != nil {
			return DebuggerResult{}, vmErr
		}
		sp, ok := d.vm.StopPoint()
		if !ok {
			break
		}
		if d.session.ShouldStop() {
			d.printStop(d.session.StopReason(), sp)
			return DebuggerResult{}, nil
		}
		if bp, hit := d.breakpoints.Match(sp); hit {
			d.printStop("breakpoint #"+strconv.Itoa(bp.ID), sp)
			return DebuggerResult{}, nil
		}
		if targetLine > 0 && sp.Line == targetLine {
			d.printStop("line "+strconv.Itoa(targetLine), sp)
			return DebuggerResult{}, nil
		}
	}
	return DebuggerResult{ExitCode: d.vm.ExitCode}, nil
}

func (d *Debugger) cmdBreak(spec string) (*Breakpoint, error) {
	file, line, err := ParseLocationSpec(spec, d.vm.Program.Path)
	if err != nil {
		return nil, err
	}
	if sameFile(file, d.vm.Program.Path) && d.vm.Program.StmtAtLine(line) < 0 {
		return nil, &lineError{line: line}
	}
	return d.breakpoints.AddFileLine(file, line)
}

func (d *Debugger) cmdList() {
	d.out.Println("breakpoints:")
	for _, bp := range d.breakpoints.List() {
		d.out.Println("  " + bp.Summary())
	}
}

func (d *Debugger) cmdSet(args []string) {
	if len(args) != 2 || args[0] != "basename" {
		d.out.Errorln("error: set expects basename on|off")
		return
	}
	switch args[1] {
	case "on":
		d.settings.SetBasename(true)
	case "off":
		d.settings.SetBasename(false)
	default:
		d.out.Errorln(`expecting "on" or "off"; got "` + args[1] + `"`)
		return
	}
	d.out.Println("basename is " + args[1] + ".")
}

func (d *Debugger) printStop(reason string, sp StopPoint) {
	d.out.Println("stopped: " + reason)
	d.out.Println("at " + d.fmt.Location(sp))
}

func (d *Debugger) help() {
	for _, line := range []string{
		"commands:",
		"  help|h",
		"  trace|tr on|off",
		"  trace|tr variable|var <name> [stop|nostop]",
		"  untrace <name>",
		"  watches",
		"  step|s",
		"  next|n",
		"  continue|c|cont [line]",
		"  break|b <line|file:line>",
		"  delete <id>",
		"  list",
		"  globals",
		"  print|p <$name>",
		"  set basename on|off",
		"  quit|q",
	} {
		d.out.Println(line)
	}
}

type lineError struct {
	line int
}

func (e *lineError) Error() string {
	return "line " + strconv.Itoa(e.line) + " is not executable"
}
