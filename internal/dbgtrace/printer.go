package dbgtrace

import "fmt"

// Printer is the output channel of the front end. Each call carries exactly
// one line without a trailing newline; routing and coloring are up to the
// implementation.
type Printer interface {
	Println(line string)
	Errorln(line string)
}

// Settings exposes display options owned by the front end.
type Settings interface {
	// Basename reports whether file paths are shown as basenames.
	Basename() bool
}

// GlobalScope resolves global variables of the target program.
type GlobalScope interface {
	HasGlobal(name string) bool
}

// RenderValue converts an opaque engine value into its display string.
func RenderValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

type discardPrinter struct{}

func (discardPrinter) Println(string) {}
func (discardPrinter) Errorln(string) {}

type fixedSettings bool

func (s fixedSettings) Basename() bool { return bool(s) }
