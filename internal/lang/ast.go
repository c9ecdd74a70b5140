// Package lang parses the line-oriented language executed by the vmdb VM.
//
// A program is a sequence of statements, one per line:
//
//	$name = expr
//	print expr
//	exit expr
//
// Blank lines and lines starting with '#' are not statements.
package lang

import (
	"slices"

	"vmdb/internal/source"
)

// StmtKind distinguishes statement forms.
type StmtKind uint8

const (
	StmtAssign StmtKind = iota + 1 // $name = expr
	StmtPrint                      // print expr
	StmtExit                       // exit expr
)

func (k StmtKind) String() string {
	switch k {
	case StmtAssign:
		return "assign"
	case StmtPrint:
		return "print"
	case StmtExit:
		return "exit"
	default:
		return "unknown"
	}
}

// Stmt is one executable line.
type Stmt struct {
	Kind   StmtKind
	Line   int    // 1-based
	Text   string // the source line exactly as written
	Target string // StmtAssign: global name without '$'
	Expr   *Expr
}

// ExprKind distinguishes expression nodes.
type ExprKind uint8

const (
	ExprLit ExprKind = iota + 1
	ExprGlobal
	ExprUnary
	ExprBinary
)

// LitKind distinguishes literal values.
type LitKind uint8

const (
	LitNil LitKind = iota
	LitInt
	LitBool
	LitString
)

// Literal holds a constant.
type Literal struct {
	Kind LitKind
	Int  int64
	Bool bool
	Str  string
}

// Expr is an expression tree node.
type Expr struct {
	Kind ExprKind
	Col  int // 1-based column of the node's first token

	Lit  Literal // ExprLit
	Name string  // ExprGlobal
	Op   string  // ExprUnary, ExprBinary
	X, Y *Expr   // operands; Y is nil for unary
}

// Program is a parsed source file.
type Program struct {
	File  source.FileID
	Path  string
	Stmts []Stmt
	// Globals holds every global the program assigns or reads, in order of
	// first appearance. They exist (as nil) before any statement runs.
	Globals []string
}

// MentionsGlobal reports whether name appears anywhere in the program.
func (p *Program) MentionsGlobal(name string) bool {
	return p != nil && slices.Contains(p.Globals, name)
}

// StmtAtLine returns the index of the statement on line, or -1.
func (p *Program) StmtAtLine(line int) int {
	for i := range p.Stmts {
		if p.Stmts[i].Line == line {
			return i
		}
	}
	return -1
}
