package lang

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"vmdb/internal/source"
)

// ParseError reports a syntax error at a source position.
type ParseError struct {
	Path string
	Line int
	Col  int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.Path, e.Line, e.Col, e.Msg)
}

// Parse builds a Program from a loaded file. It stops at the first error.
func Parse(file *source.File) (*Program, error) {
	if file == nil {
		return nil, fmt.Errorf("parse: nil file")
	}
	prog := &Program{File: file.ID, Path: file.Path}
	for i, text := range file.Lines() {
		line := i + 1
		trimmed := strings.TrimSpace(text)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		toks, lexErr := lexLine(text)
		if lexErr != nil {
			return nil, &ParseError{Path: file.Path, Line: line, Col: lexErr.col, Msg: lexErr.msg}
		}
		p := &parser{toks: toks}
		stmt, err := p.statement()
		if err != nil {
			err.Path, err.Line = file.Path, line
			return nil, err
		}
		stmt.Line = line
		stmt.Text = text
		prog.Stmts = append(prog.Stmts, stmt)
		prog.Globals = noteGlobals(prog.Globals, &stmt)
	}
	return prog, nil
}

// noteGlobals appends the globals stmt mentions that are not in seen yet.
func noteGlobals(seen []string, stmt *Stmt) []string {
	add := func(name string) {
		if !slices.Contains(seen, name) {
			seen = append(seen, name)
		}
	}
	if stmt.Kind == StmtAssign {
		add(stmt.Target)
	}
	var walk func(e *Expr)
	walk = func(e *Expr) {
		if e == nil {
			return
		}
		if e.Kind == ExprGlobal {
			add(e.Name)
		}
		walk(e.X)
		walk(e.Y)
	}
	walk(stmt.Expr)
	return seen
}

type parser struct {
	toks []Token
	pos  int
}

func (p *parser) peek() Token { return p.toks[p.pos] }

func (p *parser) next() Token {
	tok := p.toks[p.pos]
	if tok.Kind != TokEOF {
		p.pos++
	}
	return tok
}

func (p *parser) errorf(tok Token, format string, args ...any) *ParseError {
	return &ParseError{Col: tok.Col, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) statement() (Stmt, *ParseError) {
	tok := p.next()
	var stmt Stmt
	switch {
	case tok.Kind == TokGlobal:
		eq := p.next()
		if eq.Kind != TokOp || eq.Text != "=" {
			return Stmt{}, p.errorf(eq, "expected '=' after $%s", tok.Text)
		}
		stmt = Stmt{Kind: StmtAssign, Target: tok.Text}
	case tok.Kind == TokIdent && tok.Text == "print":
		stmt = Stmt{Kind: StmtPrint}
	case tok.Kind == TokIdent && tok.Text == "exit":
		stmt = Stmt{Kind: StmtExit}
	default:
		return Stmt{}, p.errorf(tok, "expected statement, got %q", tok.Text)
	}

	expr, err := p.expr(0)
	if err != nil {
		return Stmt{}, err
	}
	if end := p.peek(); end.Kind != TokEOF {
		return Stmt{}, p.errorf(end, "unexpected %q after expression", end.Text)
	}
	stmt.Expr = expr
	return stmt, nil
}

// binary operator precedence, higher binds tighter
var precedence = map[string]int{
	"||": 1,
	"&&": 2,
	"==": 3, "!=": 3,
	"<": 4, "<=": 4, ">": 4, ">=": 4,
	"+": 5, "-": 5,
	"*": 6, "/": 6, "%": 6,
}

func (p *parser) expr(minPrec int) (*Expr, *ParseError) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.peek()
		prec, ok := precedence[tok.Text]
		if tok.Kind != TokOp || !ok || prec <= minPrec {
			return left, nil
		}
		p.next()
		right, err := p.expr(prec)
		if err != nil {
			return nil, err
		}
		left = &Expr{Kind: ExprBinary, Col: left.Col, Op: tok.Text, X: left, Y: right}
	}
}

func (p *parser) unary() (*Expr, *ParseError) {
	tok := p.peek()
	if tok.Kind == TokOp && (tok.Text == "-" || tok.Text == "!") {
		p.next()
		x, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &Expr{Kind: ExprUnary, Col: tok.Col, Op: tok.Text, X: x}, nil
	}
	return p.primary()
}

func (p *parser) primary() (*Expr, *ParseError) {
	tok := p.next()
	switch tok.Kind {
	case TokInt:
		n, err := strconv.ParseInt(tok.Text, 10, 64)
		if err != nil {
			return nil, p.errorf(tok, "integer literal %s out of range", tok.Text)
		}
		return &Expr{Kind: ExprLit, Col: tok.Col, Lit: Literal{Kind: LitInt, Int: n}}, nil
	case TokString:
		return &Expr{Kind: ExprLit, Col: tok.Col, Lit: Literal{Kind: LitString, Str: tok.Text}}, nil
	case TokGlobal:
		return &Expr{Kind: ExprGlobal, Col: tok.Col, Name: tok.Text}, nil
	case TokIdent:
		switch tok.Text {
		case "true", "false":
			return &Expr{Kind: ExprLit, Col: tok.Col, Lit: Literal{Kind: LitBool, Bool: tok.Text == "true"}}, nil
		case "nil":
			return &Expr{Kind: ExprLit, Col: tok.Col, Lit: Literal{Kind: LitNil}}, nil
		}
		return nil, p.errorf(tok, "unknown identifier %q", tok.Text)
	case TokOp:
		if tok.Text == "(" {
			inner, err := p.expr(0)
			if err != nil {
				return nil, err
			}
			if closing := p.next(); closing.Kind != TokOp || closing.Text != ")" {
				return nil, p.errorf(closing, "expected ')'")
			}
			return inner, nil
		}
	case TokEOF:
		return nil, p.errorf(tok, "unexpected end of line")
	}
	return nil, p.errorf(tok, "unexpected %q", tok.Text)
}
