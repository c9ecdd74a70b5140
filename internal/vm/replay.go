package vm

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"vmdb/internal/dbgtrace"
	"vmdb/internal/evlog"
	"vmdb/internal/lang"
	"vmdb/internal/source"
)

// Case is one recorded debugging session: a program, the debugger script
// driving it, and the expected outputs.
type Case struct {
	Name    string
	Program string // path of <name>.tn
	Script  string // path of <name>.script
	Out     string // path of <name>.out
	Err     string // path of <name>.err, "" when absent
}

// ReplayResult holds the captured outputs of a replayed case.
type ReplayResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// FindCases lists every <name>.tn in dir that has a sibling <name>.script.
func FindCases(dir string) ([]Case, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.tn"))
	if err != nil {
		return nil, err
	}
	cases := make([]Case, 0, len(matches))
	for _, prog := range matches {
		base := prog[:len(prog)-len(".tn")]
		script := base + ".script"
		if _, err := os.Stat(script); err != nil {
			continue
		}
		c := Case{
			Name:    filepath.Base(base),
			Program: prog,
			Script:  script,
			Out:     base + ".out",
		}
		if _, err := os.Stat(base + ".err"); err == nil {
			c.Err = base + ".err"
		}
		cases = append(cases, c)
	}
	return cases, nil
}

// Replay runs the case in a fresh VM and session, non-interactive with color
// off. The program is registered under its base name so recorded trace
// records do not depend on the working directory.
func Replay(c Case, mode dbgtrace.WatchMode, log evlog.Tracer) (ReplayResult, error) {
	content, err := os.ReadFile(c.Program)
	if err != nil {
		return ReplayResult{}, fmt.Errorf("read program: %w", err)
	}
	script, err := os.ReadFile(c.Script)
	if err != nil {
		return ReplayResult{}, fmt.Errorf("read script: %w", err)
	}

	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual(filepath.Base(c.Program), content))
	prog, err := lang.Parse(file)
	if err != nil {
		return ReplayResult{}, err
	}

	var stdout, stderr bytes.Buffer
	machine := New(prog, fs, &stdout, nil)
	dbg := NewDebugger(machine, DebuggerOptions{
		In:               bytes.NewReader(script),
		Out:              &stdout,
		Err:              &stderr,
		DefaultWatchMode: mode,
		Log:              log,
	})
	res, vmErr := dbg.Run()
	if vmErr != nil {
		stderr.WriteString(vmErr.Format(false))
		res.ExitCode = 1
	}
	return ReplayResult{Stdout: stdout.String(), Stderr: stderr.String(), ExitCode: res.ExitCode}, nil
}
