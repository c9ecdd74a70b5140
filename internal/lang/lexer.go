package lang

import (
	"strconv"
	"strings"
)

// TokenKind classifies lexer output.
type TokenKind uint8

const (
	TokEOF TokenKind = iota
	TokInt
	TokString
	TokIdent
	TokGlobal
	TokOp
)

// Token is a lexeme of one source line.
type Token struct {
	Kind TokenKind
	Text string // for TokString the unquoted value, for TokGlobal the name without '$'
	Col  int    // 1-based
}

var twoCharOps = []string{"==", "!=", "<=", ">=", "&&", "||"}

const oneCharOps = "=+-*/%<>!()"

// lexLine splits one line into tokens. A '#' outside a string ends the line.
func lexLine(text string) ([]Token, *lexError) {
	var toks []Token
	i := 0
	for i < len(text) {
		ch := text[i]
		switch {
		case ch == ' ' || ch == '\t':
			i++
		case ch == '#':
			i = len(text)
		case isDigit(ch):
			start := i
			for i < len(text) && isDigit(text[i]) {
				i++
			}
			toks = append(toks, Token{Kind: TokInt, Text: text[start:i], Col: start + 1})
		case ch == '"':
			s, n, err := scanString(text[i:])
			if err != nil {
				return nil, &lexError{col: i + 1, msg: err.Error()}
			}
			toks = append(toks, Token{Kind: TokString, Text: s, Col: i + 1})
			i += n
		case ch == '$':
			start := i
			i++
			for i < len(text) && isIdentByte(text[i]) {
				i++
			}
			if i == start+1 {
				return nil, &lexError{col: start + 1, msg: "expected global name after '$'"}
			}
			toks = append(toks, Token{Kind: TokGlobal, Text: text[start+1 : i], Col: start + 1})
		case isIdentStart(ch):
			start := i
			for i < len(text) && isIdentByte(text[i]) {
				i++
			}
			toks = append(toks, Token{Kind: TokIdent, Text: text[start:i], Col: start + 1})
		default:
			op := ""
			for _, two := range twoCharOps {
				if strings.HasPrefix(text[i:], two) {
					op = two
					break
				}
			}
			if op == "" && strings.IndexByte(oneCharOps, ch) >= 0 {
				op = string(ch)
			}
			if op == "" {
				return nil, &lexError{col: i + 1, msg: "unexpected character " + strconv.QuoteRune(rune(ch))}
			}
			toks = append(toks, Token{Kind: TokOp, Text: op, Col: i + 1})
			i += len(op)
		}
	}
	toks = append(toks, Token{Kind: TokEOF, Col: len(text) + 1})
	return toks, nil
}

// scanString reads a double-quoted literal at the start of s and returns the
// unescaped value and the number of bytes consumed.
func scanString(s string) (string, int, error) {
	var sb strings.Builder
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '"':
			return sb.String(), i + 1, nil
		case '\\':
			if i+1 >= len(s) {
				return "", 0, errUnterminated
			}
			i++
			switch s[i] {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case '"', '\\':
				sb.WriteByte(s[i])
			default:
				return "", 0, &escapeError{ch: s[i]}
			}
		default:
			sb.WriteByte(s[i])
		}
	}
	return "", 0, errUnterminated
}

type lexError struct {
	col int
	msg string
}

type escapeError struct{ ch byte }

func (e *escapeError) Error() string { return "unknown escape \\" + string(e.ch) }

type constError string

func (e constError) Error() string { return string(e) }

const errUnterminated = constError("unterminated string literal")

func isDigit(b byte) bool      { return b >= '0' && b <= '9' }
func isIdentStart(b byte) bool { return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') }
func isIdentByte(b byte) bool  { return isIdentStart(b) || isDigit(b) }
