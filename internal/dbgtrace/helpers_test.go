package dbgtrace

type recorder struct {
	out  []string
	errs []string
}

func (r *recorder) Println(line string) { r.out = append(r.out, line) }
func (r *recorder) Errorln(line string) { r.errs = append(r.errs, line) }

func (r *recorder) reset() {
	r.out = nil
	r.errs = nil
}

type globals map[string]bool

func (g globals) HasGlobal(name string) bool { return g[name] }

type intValue int

func (v intValue) String() string {
	return [...]string{"0", "1", "2", "3", "4", "5", "6", "7", "8", "9", "10"}[v]
}
