package vm

import (
	"fmt"
	"strings"

	"vmdb/internal/source"
)

// PanicCode identifies the type of VM panic.
type PanicCode int

// Stable panic codes - do not change values.
const (
	PanicTypeMismatch  PanicCode = 1003 // VM1003: type mismatch
	PanicDivideByZero  PanicCode = 1007 // VM1007: division or modulo by zero
	PanicInvalidExit   PanicCode = 1008 // VM1008: exit code out of range
	PanicUnimplemented PanicCode = 1999 // VM1999: unimplemented statement/operator
)

// String returns the code as "VM1003" format.
func (c PanicCode) String() string {
	return fmt.Sprintf("VM%d", c)
}

// VMError represents a runtime panic in the VM.
type VMError struct {
	Code    PanicCode
	Message string
	Path    string // file of the failing statement
	Line    int    // 0 when unknown
	Text    string // source line of the failing statement
}

// Error implements the error interface.
func (p *VMError) Error() string {
	return fmt.Sprintf("panic %s: %s", p.Code, p.Message)
}

// Format renders the panic with its location.
func (p *VMError) Format(basename bool) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "panic %s: %s\n", p.Code, p.Message)
	sb.WriteString("at ")
	if p.Line == 0 {
		sb.WriteString("<no-location>")
	} else {
		path := p.Path
		if basename {
			path = source.BaseName(path)
		}
		fmt.Fprintf(&sb, "%s:%d %s", path, p.Line, p.Text)
	}
	sb.WriteString("\n")
	return sb.String()
}

// errorBuilder helps construct VMError values at the current statement.
type errorBuilder struct {
	vm *VM
}

func (eb *errorBuilder) makeError(code PanicCode, msg string) *VMError {
	e := &VMError{Code: code, Message: msg}
	if sp, ok := eb.vm.StopPoint(); ok {
		e.Path, e.Line, e.Text = sp.Path, sp.Line, sp.Text
	}
	return e
}

func (eb *errorBuilder) typeMismatch(op string, x, y Value) *VMError {
	return eb.makeError(PanicTypeMismatch, fmt.Sprintf("operator %s not defined for %s and %s", op, x.Kind, y.Kind))
}

func (eb *errorBuilder) unaryMismatch(op string, x Value) *VMError {
	return eb.makeError(PanicTypeMismatch, fmt.Sprintf("operator %s not defined for %s", op, x.Kind))
}

func (eb *errorBuilder) divideByZero(op string) *VMError {
	what := "division"
	if op == "%" {
		what = "modulo"
	}
	return eb.makeError(PanicDivideByZero, what+" by zero")
}

func (eb *errorBuilder) invalidExit(v Value) *VMError {
	return eb.makeError(PanicInvalidExit, fmt.Sprintf("exit code must be an int in 0..255, got %s", v.Inspect()))
}

func (eb *errorBuilder) unimplemented(what string) *VMError {
	return eb.makeError(PanicUnimplemented, "unimplemented: "+what)
}
