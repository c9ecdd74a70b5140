package dbgtrace

import (
	"strconv"
	"strings"

	"vmdb/internal/source"
)

// LineTracer prints one record per executed line while enabled.
type LineTracer struct {
	enabled  bool
	settings Settings
	out      Printer
}

// NewLineTracer creates a disabled LineTracer.
func NewLineTracer(settings Settings, out Printer) *LineTracer {
	if settings == nil {
		settings = fixedSettings(false)
	}
	if out == nil {
		out = discardPrinter{}
	}
	return &LineTracer{settings: settings, out: out}
}

// Enabled reports whether line tracing is on.
func (lt *LineTracer) Enabled() bool { return lt.enabled }

func (lt *LineTracer) setEnabled(on bool) { lt.enabled = on }

// OnLine emits `Tracing: <path>:<line> <text>` when tracing is on.
// text is reproduced byte for byte.
func (lt *LineTracer) OnLine(file string, line int, text string) bool {
	if !lt.enabled {
		return false
	}
	lt.out.Println(FormatRecord(file, line, text, lt.settings.Basename()))
	return true
}

// FormatRecord renders a single trace record.
func FormatRecord(file string, line int, text string, basename bool) string {
	path := file
	if basename {
		path = source.BaseName(file)
	}
	var sb strings.Builder
	sb.Grow(len("Tracing: ") + len(path) + len(text) + 12)
	sb.WriteString("Tracing: ")
	sb.WriteString(path)
	sb.WriteByte(':')
	sb.WriteString(strconv.Itoa(line))
	sb.WriteByte(' ')
	sb.WriteString(text)
	return sb.String()
}
