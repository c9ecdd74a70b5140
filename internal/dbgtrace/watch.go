package dbgtrace

import (
	"fmt"
	"slices"
	"strings"
)

// WatchEntry describes one traced global variable.
type WatchEntry struct {
	Name         string // without the sigil
	LastValue    string // valid only when HasValue
	HasValue     bool
	StopOnChange bool
}

// Mode renders the entry's stop policy as the command keyword.
func (e WatchEntry) Mode() string {
	if e.StopOnChange {
		return "stop"
	}
	return "nostop"
}

// WatchTable maps variable names to their watch entries.
type WatchTable struct {
	entries map[string]*WatchEntry
	scope   GlobalScope
	out     Printer
	stop    *StopSignal
}

// NewWatchTable creates an empty table. scope validates names on Watch,
// stop receives halt requests from entries watched with stop.
func NewWatchTable(scope GlobalScope, out Printer, stop *StopSignal) *WatchTable {
	if out == nil {
		out = discardPrinter{}
	}
	if stop == nil {
		stop = &StopSignal{}
	}
	return &WatchTable{
		entries: make(map[string]*WatchEntry),
		scope:   scope,
		out:     out,
		stop:    stop,
	}
}

// Watch starts tracing name, replacing any previous entry.
func (wt *WatchTable) Watch(name string, stopOnChange bool) error {
	name, err := wt.resolve(name)
	if err != nil {
		return err
	}
	wt.entries[name] = &WatchEntry{Name: name, StopOnChange: stopOnChange}
	return nil
}

// resolve strips the sigil and checks that the scope knows the global.
func (wt *WatchTable) resolve(name string) (string, error) {
	name = strings.TrimPrefix(name, "$")
	if name == "" {
		return "", &DispatchError{Err: ErrMissingVariable}
	}
	if wt.scope == nil || !wt.scope.HasGlobal(name) {
		return "", &DispatchError{Err: ErrUnknownVariable, Token: name}
	}
	return name, nil
}

// Unwatch stops tracing name. It reports whether an entry was removed.
func (wt *WatchTable) Unwatch(name string) bool {
	name = strings.TrimPrefix(name, "$")
	if _, ok := wt.entries[name]; !ok {
		return false
	}
	delete(wt.entries, name)
	return true
}

// OnWrite handles a write notification. It returns true when the change was
// reported. Unwatched names are ignored.
func (wt *WatchTable) OnWrite(name string, value any) bool {
	e, ok := wt.entries[name]
	if !ok {
		return false
	}
	rendered := RenderValue(value)
	if e.HasValue && e.LastValue == rendered {
		return false
	}
	e.LastValue = rendered
	e.HasValue = true
	wt.out.Println(fmt.Sprintf("traced global variable '%s' has value '%s'", name, rendered))
	if e.StopOnChange {
		wt.stop.Raise(fmt.Sprintf("traced global variable '%s' changed", name))
	}
	return true
}

// Lookup returns a copy of the entry for name.
func (wt *WatchTable) Lookup(name string) (WatchEntry, bool) {
	e, ok := wt.entries[strings.TrimPrefix(name, "$")]
	if !ok {
		return WatchEntry{}, false
	}
	return *e, true
}

// Len returns the number of watched variables.
func (wt *WatchTable) Len() int { return len(wt.entries) }

// Entries returns copies of all entries sorted by name.
func (wt *WatchTable) Entries() []WatchEntry {
	out := make([]WatchEntry, 0, len(wt.entries))
	for _, e := range wt.entries {
		out = append(out, *e)
	}
	slices.SortFunc(out, func(a, b WatchEntry) int { return strings.Compare(a.Name, b.Name) })
	return out
}
