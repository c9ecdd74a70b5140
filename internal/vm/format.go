package vm

import (
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"vmdb/internal/source"
)

// valueWidth caps how many terminal cells a rendered value may take in listings.
const valueWidth = 48

// Settings holds display options of a debug session.
type Settings struct {
	basename bool
}

// Basename reports whether paths are shown as basenames.
func (s *Settings) Basename() bool {
	return s != nil && s.basename
}

// SetBasename toggles basename display.
func (s *Settings) SetBasename(on bool) {
	s.basename = on
}

// Formatter renders locations and values for debugger output.
type Formatter struct {
	settings *Settings
}

// NewFormatter creates a Formatter reading settings on every call.
func NewFormatter(settings *Settings) *Formatter {
	return &Formatter{settings: settings}
}

// Path applies the display mode to a path.
func (f *Formatter) Path(path string) string {
	if f.settings.Basename() {
		return source.BaseName(path)
	}
	return path
}

// Location formats "<path>:<line> <text>".
func (f *Formatter) Location(sp StopPoint) string {
	return f.Path(sp.Path) + ":" + strconv.Itoa(sp.Line) + " " + sp.Text
}

// Value formats a value for listings, truncated to valueWidth cells.
func (f *Formatter) Value(v Value) string {
	return runewidth.Truncate(v.Inspect(), valueWidth, "...")
}

// Columns lays out rows with each column padded to its widest cell.
func Columns(rows [][]string, indent string) []string {
	var widths []int
	for _, row := range rows {
		for i, cell := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}
	out := make([]string, 0, len(rows))
	for _, row := range rows {
		var sb strings.Builder
		sb.WriteString(indent)
		for i, cell := range row {
			if i == len(row)-1 {
				sb.WriteString(cell)
				break
			}
			sb.WriteString(runewidth.FillRight(cell, widths[i]))
			sb.WriteString("  ")
		}
		out = append(out, sb.String())
	}
	return out
}
