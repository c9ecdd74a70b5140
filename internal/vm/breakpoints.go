package vm

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// Breakpoint represents a file:line debugger breakpoint.
type Breakpoint struct {
	ID      int
	File    string
	FileAbs string
	Line    int
}

// Summary returns a string representation of the breakpoint.
func (bp *Breakpoint) Summary() string {
	if bp == nil {
		return "<nil>"
	}
	return fmt.Sprintf("#%d %s:%d", bp.ID, bp.File, bp.Line)
}

// Breakpoints manages a collection of breakpoints.
type Breakpoints struct {
	nextID int
	list   []*Breakpoint
}

// NewBreakpoints creates a new Breakpoints collection.
func NewBreakpoints() *Breakpoints {
	return &Breakpoints{nextID: 1}
}

// AddFileLine adds a file:line breakpoint.
func (bps *Breakpoints) AddFileLine(file string, line int) (*Breakpoint, error) {
	if line <= 0 {
		return nil, fmt.Errorf("invalid line %d", line)
	}
	file = filepath.ToSlash(filepath.Clean(file))
	if file == "." || file == "" {
		return nil, fmt.Errorf("invalid file %q", file)
	}

	abs, err := filepath.Abs(file)
	if err != nil {
		abs = ""
	} else {
		abs = filepath.Clean(abs)
	}

	bp := &Breakpoint{
		ID:      bps.allocID(),
		File:    file,
		FileAbs: abs,
		Line:    line,
	}
	bps.list = append(bps.list, bp)
	return bp, nil
}

// Delete removes a breakpoint by ID.
func (bps *Breakpoints) Delete(id int) bool {
	if bps == nil || id <= 0 {
		return false
	}
	for i, bp := range bps.list {
		if bp != nil && bp.ID == id {
			copy(bps.list[i:], bps.list[i+1:])
			bps.list[len(bps.list)-1] = nil
			bps.list = bps.list[:len(bps.list)-1]
			return true
		}
	}
	return false
}

// List returns all breakpoints.
func (bps *Breakpoints) List() []*Breakpoint {
	if bps == nil || len(bps.list) == 0 {
		return nil
	}
	out := make([]*Breakpoint, 0, len(bps.list))
	out = append(out, bps.list...)
	return out
}

// Match checks if any breakpoint matches the given stop point.
func (bps *Breakpoints) Match(sp StopPoint) (*Breakpoint, bool) {
	if bps == nil || len(bps.list) == 0 || sp.Line <= 0 {
		return nil, false
	}
	filePath := filepath.ToSlash(filepath.Clean(sp.Path))

	for _, bp := range bps.list {
		if bp == nil || bp.Line != sp.Line {
			continue
		}
		if bp.File == filePath {
			return bp, true
		}
		if bp.FileAbs != "" {
			abs, err := filepath.Abs(filePath)
			if err == nil && filepath.Clean(abs) == bp.FileAbs {
				return bp, true
			}
		}
	}

	return nil, false
}

// ParseLocationSpec parses `<line>` or `<file:line>`. A bare line refers to
// defaultFile.
func ParseLocationSpec(spec, defaultFile string) (file string, line int, err error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return "", 0, fmt.Errorf("empty spec")
	}

	colon := strings.LastIndex(spec, ":")
	if colon < 0 {
		n, err := strconv.Atoi(spec)
		if err != nil || n <= 0 {
			return "", 0, fmt.Errorf("invalid line %q", spec)
		}
		return defaultFile, n, nil
	}
	if colon == 0 || colon >= len(spec)-1 {
		return "", 0, fmt.Errorf("expected <line> or <file:line>, got %q", spec)
	}
	file = spec[:colon]
	lineStr := spec[colon+1:]
	n, err := strconv.Atoi(lineStr)
	if err != nil || n <= 0 {
		return "", 0, fmt.Errorf("invalid line %q", lineStr)
	}
	return file, n, nil
}

func (bps *Breakpoints) allocID() int {
	if bps.nextID <= 0 {
		bps.nextID = 1
	}
	id := bps.nextID
	bps.nextID++
	return id
}

func sameFile(a, b string) bool {
	a = filepath.Clean(a)
	b = filepath.Clean(b)
	if a == b {
		return true
	}
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}
