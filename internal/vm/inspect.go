package vm

import (
	"strings"

	"vmdb/internal/dbgtrace"
)

// Inspector prints globals and watch tables.
type Inspector struct {
	vm  *VM
	out dbgtrace.Printer
	fmt *Formatter
}

func NewInspector(vm *VM, out dbgtrace.Printer, f *Formatter) *Inspector {
	if vm == nil {
		return nil
	}
	return &Inspector{vm: vm, out: out, fmt: f}
}

func (i *Inspector) Globals() {
	if i == nil || i.out == nil {
		return
	}
	i.out.Println("globals:")
	names := i.vm.GlobalNames()
	rows := make([][]string, 0, len(names))
	for _, name := range names {
		v, _ := i.vm.Global(name)
		rows = append(rows, []string{"$" + name, i.fmt.Value(v)})
	}
	for _, line := range Columns(rows, "  ") {
		i.out.Println(line)
	}
}

// PrintGlobal prints one global; the `$` sigil is optional.
func (i *Inspector) PrintGlobal(name string) bool {
	if i == nil || i.out == nil {
		return false
	}
	name = strings.TrimPrefix(name, "$")
	v, ok := i.vm.Global(name)
	if !ok {
		i.out.Errorln("'" + name + "' is not a global variable.")
		return false
	}
	i.out.Println("$" + name + " = " + v.Inspect())
	return true
}

func (i *Inspector) Watches(entries []dbgtrace.WatchEntry) {
	if i == nil || i.out == nil {
		return
	}
	i.out.Println("watches:")
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		last := "-"
		if e.HasValue {
			last = e.LastValue
		}
		rows = append(rows, []string{"$" + e.Name, e.Mode(), last})
	}
	for _, line := range Columns(rows, "  ") {
		i.out.Println(line)
	}
}
