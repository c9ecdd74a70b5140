package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"vmdb/internal/dbgtrace"
	"vmdb/internal/evlog"
	"vmdb/internal/lang"
	"vmdb/internal/source"
	"vmdb/internal/vm"
)

var runCmd = &cobra.Command{
	Use:   "run [flags] <file.tn>",
	Short: "Execute a program, optionally under the debugger",
	Long: `Execute a .tn program. With --debug or --script the program starts stopped
at its first statement and debugger commands are read from the terminal or
the script.`,
	Args: cobra.ExactArgs(1),
	RunE: runExecution,
}

func init() {
	addRunFlags(runCmd.Flags())
}

func addRunFlags(fs *pflag.FlagSet) {
	fs.Bool("debug", false, "run under the debugger, reading commands from stdin")
	fs.String("script", "", "run under the debugger, reading commands from a file")
	fs.StringArray("ex", nil, "debugger command to run before reading input (repeatable)")
	fs.Bool("trace", false, "print a trace record for every executed line")
	fs.Bool("basename", false, "show file basenames in trace records")
	fs.String("watch-default", "", "mode for `trace var` without stop|nostop")
}

type runOptions struct {
	debug        bool
	script       string
	ex           []string
	trace        bool
	basename     bool
	watchDefault dbgtrace.WatchMode
	prompt       string
	color        bool
}

func runExecution(cmd *cobra.Command, args []string) error {
	filePath := args[0]

	cfg, err := loadConfig(cmd, filepath.Dir(filePath))
	if err != nil {
		return err
	}
	log, cleanup, err := setupLogging(cmd, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	opts := runOptions{basename: cfg.Debug.Basename, prompt: cfg.Debug.Prompt}
	if opts.watchDefault, err = cfg.WatchMode(); err != nil {
		return err
	}
	if err := readRunFlags(cmd, &opts); err != nil {
		return err
	}

	fs := source.NewFileSet()
	fileID, err := fs.Load(filePath)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", filePath, err)
	}
	prog, err := lang.Parse(fs.Get(fileID))
	if err != nil {
		return err
	}

	stdout := cmd.OutOrStdout()
	machine := vm.New(prog, fs, stdout, nil)

	var (
		code  int
		vmErr *vm.VMError
	)
	if opts.debug || opts.script != "" || len(opts.ex) > 0 {
		code, vmErr, err = runDebugger(cmd, machine, opts, log)
		if err != nil {
			return err
		}
	} else {
		vmErr = runPlain(cmd, machine, opts, log)
		code = machine.ExitCode
	}

	if vmErr != nil {
		fmt.Fprint(cmd.ErrOrStderr(), vmErr.Format(opts.basename))
		dumpRing(log, cmd.ErrOrStderr())
		return &exitError{code: 1}
	}
	if code != 0 {
		return &exitError{code: code}
	}
	return nil
}

func readRunFlags(cmd *cobra.Command, opts *runOptions) error {
	flags := cmd.Flags()
	var err error
	if opts.debug, err = flags.GetBool("debug"); err != nil {
		return fmt.Errorf("failed to get debug flag: %w", err)
	}
	if opts.script, err = flags.GetString("script"); err != nil {
		return fmt.Errorf("failed to get script flag: %w", err)
	}
	if opts.ex, err = flags.GetStringArray("ex"); err != nil {
		return fmt.Errorf("failed to get ex flag: %w", err)
	}
	if opts.trace, err = flags.GetBool("trace"); err != nil {
		return fmt.Errorf("failed to get trace flag: %w", err)
	}
	if flags.Changed("basename") {
		if opts.basename, err = flags.GetBool("basename"); err != nil {
			return fmt.Errorf("failed to get basename flag: %w", err)
		}
	}
	if flags.Changed("watch-default") {
		s, err := flags.GetString("watch-default")
		if err != nil {
			return fmt.Errorf("failed to get watch-default flag: %w", err)
		}
		if opts.watchDefault, err = dbgtrace.ParseWatchMode(s); err != nil {
			return fmt.Errorf("--watch-default: %w", err)
		}
	}
	if opts.color, err = useColor(cmd, os.Stderr); err != nil {
		return err
	}
	return nil
}

// runPlain executes without the command loop. --trace still attaches a
// trace session so line records are printed.
func runPlain(cmd *cobra.Command, machine *vm.VM, opts runOptions, log evlog.Tracer) *vm.VMError {
	if !opts.trace {
		return machine.Run()
	}
	span := evlog.Begin(log, evlog.ScopeSession, "run", 0)
	session := dbgtrace.NewSession(dbgtrace.Options{
		Scope:     machine,
		Settings:  basenameSetting(opts.basename),
		Out:       &plainPrinter{out: cmd.OutOrStdout(), err: cmd.ErrOrStderr()},
		Log:       log,
		LogParent: span.ID(),
	})
	_ = session.Dispatch([]string{"on"}) //nolint:errcheck
	machine.SetNotifier(session)

	vmErr := machine.Run()
	if vmErr != nil {
		span.End(vmErr.Error())
	} else {
		span.End("exit=" + strconv.Itoa(machine.ExitCode))
	}
	return vmErr
}

func runDebugger(cmd *cobra.Command, machine *vm.VM, opts runOptions, log evlog.Tracer) (int, *vm.VMError, error) {
	var (
		in          io.Reader = cmd.InOrStdin()
		lines       vm.LineReader
		interactive bool
	)
	switch {
	case opts.script != "":
		f, err := os.Open(opts.script)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to open script: %w", err)
		}
		defer f.Close()
		in = f
	case opts.debug:
		interactive = isTerminal(os.Stdin)
		if interactive {
			tty := newTerminal()
			defer tty.Close()
			lines = tty
		}
	}

	initCmds := opts.ex
	if opts.trace {
		initCmds = append([]string{"trace on"}, initCmds...)
	}

	dbg := vm.NewDebugger(machine, vm.DebuggerOptions{
		In:               in,
		Lines:            lines,
		Out:              cmd.OutOrStdout(),
		Err:              cmd.ErrOrStderr(),
		Interactive:      interactive,
		Prompt:           opts.prompt,
		Basename:         opts.basename,
		Color:            opts.color,
		DefaultWatchMode: opts.watchDefault,
		InitCommands:     initCmds,
		Log:              log,
	})
	res, vmErr := dbg.Run()
	return res.ExitCode, vmErr, nil
}

type basenameSetting bool

func (b basenameSetting) Basename() bool { return bool(b) }

type plainPrinter struct {
	out io.Writer
	err io.Writer
}

func (p *plainPrinter) Println(line string) { fmt.Fprintln(p.out, line) }
func (p *plainPrinter) Errorln(line string) { fmt.Fprintln(p.err, line) }
