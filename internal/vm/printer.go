package vm

import (
	"io"

	"github.com/fatih/color"
)

// linePrinter routes debugger lines to stdout and error lines to stderr.
type linePrinter struct {
	out io.Writer
	err io.Writer
	red *color.Color
}

func newLinePrinter(out, errOut io.Writer, useColor bool) *linePrinter {
	red := color.New(color.FgRed)
	if useColor {
		red.EnableColor()
	} else {
		red.DisableColor()
	}
	return &linePrinter{out: out, err: errOut, red: red}
}

func (p *linePrinter) Println(line string) {
	_, _ = io.WriteString(p.out, line+"\n") //nolint:errcheck
}

func (p *linePrinter) Errorln(line string) {
	_, _ = p.red.Fprintln(p.err, line) //nolint:errcheck
}
