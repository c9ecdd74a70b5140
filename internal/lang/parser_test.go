package lang

import (
	"errors"
	"slices"
	"testing"

	"vmdb/internal/source"
)

func parseString(t *testing.T, src string) (*Program, error) {
	t.Helper()
	fs := source.NewFileSet()
	return Parse(fs.Get(fs.AddVirtual("test.tn", []byte(src))))
}

func TestParseStatements(t *testing.T) {
	src := "# header\n$bla = 5\n\n  print \"x=\" + $bla\n$bla = (0 == (10 % $bla))  # trailing\nexit 0\n"
	prog, err := parseString(t, src)
	if err != nil {
		t.Fatal(err)
	}

	want := []struct {
		kind   StmtKind
		line   int
		target string
		text   string
	}{
		{StmtAssign, 2, "bla", "$bla = 5"},
		{StmtPrint, 4, "", `  print "x=" + $bla`},
		{StmtAssign, 5, "bla", "$bla = (0 == (10 % $bla))  # trailing"},
		{StmtExit, 6, "", "exit 0"},
	}
	if len(prog.Stmts) != len(want) {
		t.Fatalf("got %d statements, want %d", len(prog.Stmts), len(want))
	}
	for i, w := range want {
		s := prog.Stmts[i]
		if s.Kind != w.kind || s.Line != w.line || s.Target != w.target || s.Text != w.text {
			t.Errorf("stmt %d = {%v %d %q %q}, want %+v", i, s.Kind, s.Line, s.Target, s.Text, w)
		}
	}
	if idx := prog.StmtAtLine(5); idx != 2 {
		t.Errorf("StmtAtLine(5) = %d, want 2", idx)
	}
	if idx := prog.StmtAtLine(3); idx != -1 {
		t.Errorf("StmtAtLine(3) = %d, want -1", idx)
	}
}

func TestParseCollectsGlobals(t *testing.T) {
	prog, err := parseString(t, "# $comment is not code\n$b = $a + 1\nprint -$c * ($b + $a)\n$a = 2\nexit 0\n")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"b", "a", "c"}
	if !slices.Equal(prog.Globals, want) {
		t.Fatalf("Globals = %q, want %q", prog.Globals, want)
	}
	if !prog.MentionsGlobal("c") || prog.MentionsGlobal("comment") {
		t.Errorf("MentionsGlobal: c=%t comment=%t", prog.MentionsGlobal("c"), prog.MentionsGlobal("comment"))
	}
}

func TestParsePrecedence(t *testing.T) {
	prog, err := parseString(t, "$x = 1 + 2 * 3 == 7 && !false\n")
	if err != nil {
		t.Fatal(err)
	}
	e := prog.Stmts[0].Expr
	if e.Kind != ExprBinary || e.Op != "&&" {
		t.Fatalf("root = %q, want &&", e.Op)
	}
	eq := e.X
	if eq.Op != "==" || eq.X.Op != "+" || eq.X.Y.Op != "*" {
		t.Errorf("unexpected tree: == %q, + %q, * %q", eq.Op, eq.X.Op, eq.X.Y.Op)
	}
	if e.Y.Kind != ExprUnary || e.Y.Op != "!" {
		t.Errorf("right = %+v, want unary !", e.Y)
	}
}

func TestParseStringEscapes(t *testing.T) {
	prog, err := parseString(t, `print "a\"b\\c\n"`)
	if err != nil {
		t.Fatal(err)
	}
	if got := prog.Stmts[0].Expr.Lit.Str; got != "a\"b\\c\n" {
		t.Errorf("string = %q", got)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		src  string
		line int
		col  int
	}{
		{"$x 5", 1, 4},
		{"\nfoo = 1", 2, 1},
		{"$x = (1 + 2", 1, 12},
		{"$x = \"open", 1, 6},
		{"$x = 1 2", 1, 8},
		{"$x = @", 1, 6},
		{"$ = 1", 1, 1},
		{"$x = bogus", 1, 6},
	}
	for _, tt := range tests {
		_, err := parseString(t, tt.src)
		var pe *ParseError
		if !errors.As(err, &pe) {
			t.Errorf("%q: err = %v, want *ParseError", tt.src, err)
			continue
		}
		if pe.Line != tt.line || pe.Col != tt.col || pe.Path != "test.tn" {
			t.Errorf("%q: at %d:%d (%s), want %d:%d", tt.src, pe.Line, pe.Col, pe.Msg, tt.line, tt.col)
		}
	}
}
