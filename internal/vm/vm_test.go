package vm_test

import (
	"bytes"
	"errors"
	"testing"

	"vmdb/internal/vm"
)

type recordingNotifier struct {
	events []string
}

func (r *recordingNotifier) OnLine(file string, line int, text string) {
	r.events = append(r.events, "line "+text)
}

func (r *recordingNotifier) OnGlobalWrite(name string, value any) {
	r.events = append(r.events, "write "+name+"="+value.(vm.Value).Inspect())
}

func run(t *testing.T, src string) (string, *vm.VM, *vm.VMError) {
	t.Helper()
	prog, fs := compile(t, "main.tn", src)
	var out bytes.Buffer
	machine := vm.New(prog, fs, &out, nil)
	vmErr := machine.Run()
	return out.String(), machine, vmErr
}

func TestEvalPrint(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"arith", "print 1 + 2 * 3", "7\n"},
		{"parens", "print (1 + 2) * 3", "9\n"},
		{"modulo", "print 10 % 4", "2\n"},
		{"neg", "print -5 + 2", "-3\n"},
		{"concat", `print "a" + 1`, "a1\n"},
		{"compare", "print 2 < 3", "true\n"},
		{"string compare", `print "b" >= "a"`, "true\n"},
		{"equality", `print 1 == "1"`, "false\n"},
		{"not", "print !nil", "true\n"},
		{"short circuit", "print false && 1 / 0", "false\n"},
		{"or", "print nil || 0", "true\n"},
		{"nil renders empty", "print nil", "\n"},
		{"globals", "$a = 4\n$b = $a * $a\nprint $b", "16\n"},
		{"unset global is nil", "print $nope == nil", "true\n"},
		{"escapes", `print "x\ty"`, "x\ty\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _, vmErr := run(t, tt.src)
			if vmErr != nil {
				t.Fatalf("unexpected error: %v", vmErr)
			}
			if got != tt.want {
				t.Fatalf("output: want %q, got %q", tt.want, got)
			}
		})
	}
}

func TestRuntimeErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code vm.PanicCode
		line int
	}{
		{"divide", "$z = 0\nprint 1 / $z", vm.PanicDivideByZero, 2},
		{"modulo", "print 1 % 0", vm.PanicDivideByZero, 1},
		{"type mismatch", `print 1 - "a"`, vm.PanicTypeMismatch, 1},
		{"unary mismatch", `print -"a"`, vm.PanicTypeMismatch, 1},
		{"compare mismatch", `print 1 < "a"`, vm.PanicTypeMismatch, 1},
		{"exit range", "exit 300", vm.PanicInvalidExit, 1},
		{"exit type", `exit "1"`, vm.PanicInvalidExit, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, machine, vmErr := run(t, tt.src)
			if vmErr == nil {
				t.Fatal("expected runtime error")
			}
			if vmErr.Code != tt.code {
				t.Fatalf("code: want %s, got %s", tt.code, vmErr.Code)
			}
			if vmErr.Line != tt.line {
				t.Fatalf("line: want %d, got %d", tt.line, vmErr.Line)
			}
			if !machine.Halted {
				t.Fatal("VM must halt after a runtime error")
			}
			var target *vm.VMError
			if !errors.As(error(vmErr), &target) {
				t.Fatal("VMError must satisfy errors.As")
			}
		})
	}
}

func TestVMErrorFormat(t *testing.T) {
	_, _, vmErr := run(t, "print 1 / 0")
	if vmErr == nil {
		t.Fatal("expected runtime error")
	}
	want := "panic VM1007: division by zero\nat main.tn:1 print 1 / 0\n"
	if got := vmErr.Format(false); got != want {
		t.Fatalf("format: want %q, got %q", want, got)
	}
}

func TestExitCode(t *testing.T) {
	out, machine, vmErr := run(t, "print 1\nexit 3\nprint 2")
	if vmErr != nil {
		t.Fatalf("unexpected error: %v", vmErr)
	}
	if out != "1\n" {
		t.Fatalf("output after exit: %q", out)
	}
	if machine.ExitCode != 3 || !machine.Halted {
		t.Fatalf("exit: code=%d halted=%t", machine.ExitCode, machine.Halted)
	}
}

func TestNotificationOrder(t *testing.T) {
	prog, fs := compile(t, "main.tn", "$a = 1\n\n# skipped\n$a = 1\nprint $a")
	rec := &recordingNotifier{}
	machine := vm.New(prog, fs, nil, rec)
	if vmErr := machine.Run(); vmErr != nil {
		t.Fatalf("unexpected error: %v", vmErr)
	}
	want := []string{
		"line $a = 1",
		"write a=1",
		"line $a = 1",
		"write a=1",
		"line print $a",
	}
	if len(rec.events) != len(want) {
		t.Fatalf("events: want %v, got %v", want, rec.events)
	}
	for i := range want {
		if rec.events[i] != want[i] {
			t.Fatalf("event %d: want %q, got %q", i, want[i], rec.events[i])
		}
	}
}

func TestStopPointAndGlobals(t *testing.T) {
	prog, fs := compile(t, "main.tn", "$b = 2\n$a = 1")
	machine := vm.New(prog, fs, nil, nil)
	if vmErr := machine.Start(); vmErr != nil {
		t.Fatalf("start: %v", vmErr)
	}
	sp, ok := machine.StopPoint()
	if !ok || sp.Line != 1 || sp.Text != "$b = 2" {
		t.Fatalf("stop point: %+v ok=%t", sp, ok)
	}
	if !machine.HasGlobal("b") || machine.HasGlobal("c") {
		t.Fatal("globals written by the program exist before they run, others do not")
	}
	if v, ok := machine.Global("b"); !ok || v.Kind != vm.VKNil {
		t.Fatalf("unassigned b = %v, %t; want nil", v, ok)
	}
	if names := machine.GlobalNames(); len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Fatalf("globals before run: %v", names)
	}
	if vmErr := machine.Run(); vmErr != nil {
		t.Fatalf("run: %v", vmErr)
	}
	if _, ok := machine.StopPoint(); ok {
		t.Fatal("halted VM has no stop point")
	}
	names := machine.GlobalNames()
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Fatalf("globals: %v", names)
	}
}
