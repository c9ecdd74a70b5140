package vm_test

import (
	"bytes"
	"strings"
	"testing"

	"vmdb/internal/lang"
	"vmdb/internal/source"
	"vmdb/internal/vm"
)

func compile(t *testing.T, path, src string) (*lang.Program, *source.FileSet) {
	t.Helper()
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual(path, []byte(src)))
	prog, err := lang.Parse(file)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return prog, fs
}

type session struct {
	stdout bytes.Buffer
	stderr bytes.Buffer
	res    vm.DebuggerResult
	vmErr  *vm.VMError
	dbg    *vm.Debugger
	vm     *vm.VM
}

// debug runs script against src and returns captured output.
func debug(t *testing.T, path, src string, script []string, tweak func(*vm.DebuggerOptions)) *session {
	t.Helper()
	prog, fs := compile(t, path, src)
	s := &session{}
	s.vm = vm.New(prog, fs, &s.stdout, nil)
	opts := vm.DebuggerOptions{
		In:  strings.NewReader(strings.Join(script, "\n") + "\n"),
		Out: &s.stdout,
		Err: &s.stderr,
	}
	if tweak != nil {
		tweak(&opts)
	}
	s.dbg = vm.NewDebugger(s.vm, opts)
	s.res, s.vmErr = s.dbg.Run()
	return s
}

func lines(s string) []string {
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

const blaProgram = `# globals traced by the debugger
$bla = 5
$bla = 7
$bla = 8
$bla = 9
$bla = 10
$bla = (0 == (10 % $bla))
print $bla
`
