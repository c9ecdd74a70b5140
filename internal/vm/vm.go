// Package vm executes vmdb programs line by line and hosts the debugger
// front end that drives them.
package vm

import (
	"io"
	"slices"

	"fortio.org/safecast"

	"vmdb/internal/lang"
	"vmdb/internal/source"
)

// Notifier receives execution notifications. OnLine is delivered when the VM
// arrives at a statement, before it runs; OnGlobalWrite after every
// assignment, including ones that store an equal value.
type Notifier interface {
	OnLine(file string, line int, text string)
	OnGlobalWrite(name string, value any)
}

// StopPoint describes the statement the VM is about to execute.
type StopPoint struct {
	Path string
	Line int
	Text string
	Stmt *lang.Stmt
}

// VM is a direct statement interpreter.
type VM struct {
	Program  *lang.Program
	Files    *source.FileSet
	Globals  map[string]Value
	PC       int // index into Program.Stmts
	Halted   bool
	ExitCode int
	Stdout   io.Writer

	notify  Notifier
	started bool
	eb      errorBuilder
}

// New creates a VM for prog. notify may be nil and set later with SetNotifier.
func New(prog *lang.Program, files *source.FileSet, stdout io.Writer, notify Notifier) *VM {
	if stdout == nil {
		stdout = io.Discard
	}
	vm := &VM{
		Program: prog,
		Files:   files,
		Globals: make(map[string]Value),
		Stdout:  stdout,
		notify:  notify,
	}
	vm.eb.vm = vm
	return vm
}

// SetNotifier replaces the notification target.
func (vm *VM) SetNotifier(n Notifier) {
	vm.notify = n
}

// Start positions the VM on the first statement and notifies it.
// Calling Start twice is a no-op.
func (vm *VM) Start() *VMError {
	if vm.started {
		return nil
	}
	vm.started = true
	vm.PC = 0
	if vm.Program == nil || len(vm.Program.Stmts) == 0 {
		vm.Halted = true
		return nil
	}
	vm.notifyLine()
	return nil
}

// Step executes the current statement and moves to the next one.
func (vm *VM) Step() *VMError {
	if !vm.started {
		if vmErr := vm.Start(); vmErr != nil {
			return vmErr
		}
	}
	if vm.Halted {
		return nil
	}
	stmt := &vm.Program.Stmts[vm.PC]
	if vmErr := vm.exec(stmt); vmErr != nil {
		vm.Halted = true
		return vmErr
	}
	if vm.Halted {
		return nil
	}
	vm.PC++
	if vm.PC >= len(vm.Program.Stmts) {
		vm.Halted = true
		return nil
	}
	vm.notifyLine()
	return nil
}

// Run executes the program to completion.
func (vm *VM) Run() *VMError {
	if vmErr := vm.Start(); vmErr != nil {
		return vmErr
	}
	for !vm.Halted {
		if vmErr := vm.Step(); vmErr != nil {
			return vmErr
		}
	}
	return nil
}

// StopPoint returns the statement the VM is positioned on.
func (vm *VM) StopPoint() (StopPoint, bool) {
	if vm.Halted || vm.Program == nil || vm.PC < 0 || vm.PC >= len(vm.Program.Stmts) {
		return StopPoint{}, false
	}
	stmt := &vm.Program.Stmts[vm.PC]
	return StopPoint{Path: vm.Program.Path, Line: stmt.Line, Text: stmt.Text, Stmt: stmt}, true
}

// HasGlobal reports whether name has been assigned or is mentioned by the
// program text. Mentioned globals are nil until their first assignment.
func (vm *VM) HasGlobal(name string) bool {
	if _, ok := vm.Globals[name]; ok {
		return true
	}
	return vm.Program.MentionsGlobal(name)
}

// Global returns the value of name; nil for a mentioned global that has not
// been assigned yet.
func (vm *VM) Global(name string) (Value, bool) {
	if v, ok := vm.Globals[name]; ok {
		return v, true
	}
	return Value{}, vm.Program.MentionsGlobal(name)
}

// GlobalNames returns every known global name in sorted order.
func (vm *VM) GlobalNames() []string {
	var names []string
	for name := range vm.Globals {
		names = append(names, name)
	}
	if vm.Program != nil {
		for _, name := range vm.Program.Globals {
			if _, ok := vm.Globals[name]; !ok {
				names = append(names, name)
			}
		}
	}
	slices.Sort(names)
	return names
}

func (vm *VM) notifyLine() {
	if vm.notify == nil {
		return
	}
	stmt := &vm.Program.Stmts[vm.PC]
	vm.notify.OnLine(vm.Program.Path, stmt.Line, stmt.Text)
}

func (vm *VM) exec(stmt *lang.Stmt) *VMError {
	v, vmErr := vm.eval(stmt.Expr)
	if vmErr != nil {
		return vmErr
	}
	switch stmt.Kind {
	case lang.StmtAssign:
		vm.Globals[stmt.Target] = v
		if vm.notify != nil {
			vm.notify.OnGlobalWrite(stmt.Target, v)
		}
	case lang.StmtPrint:
		_, _ = io.WriteString(vm.Stdout, v.String()+"\n") //nolint:errcheck
	case lang.StmtExit:
		if v.Kind != VKInt {
			return vm.eb.invalidExit(v)
		}
		code, err := safecast.Conv[uint8](v.Int)
		if err != nil {
			return vm.eb.invalidExit(v)
		}
		vm.ExitCode = int(code)
		vm.Halted = true
	default:
		return vm.eb.unimplemented("statement " + stmt.Kind.String())
	}
	return nil
}
