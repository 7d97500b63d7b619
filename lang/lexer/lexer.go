// Package lexer converts source text into a token stream.
package lexer

import (
	"strconv"
	"unicode/utf8"

	"github.com/ardnew/verse/lang/diag"
	"github.com/ardnew/verse/lang/token"
)

// Scan tokenizes source. It never stops early: unrecognized characters and
// unterminated strings are reported to diags and skipped, and the result
// always ends with a single EOF token.
//
// Every token other than EOF satisfies
//
//	source[tok.Pos.Offset:tok.Pos.Offset+len(tok.Lexeme)] == tok.Lexeme
func Scan(source string, diags *diag.Collector) []token.Token {
	if diags == nil {
		diags = &diag.Collector{}
	}

	s := scanner{src: source, diags: diags, line: 1, col: 1}

	for !s.atEnd() {
		s.start, s.startLine, s.startCol = s.cur, s.line, s.col
		s.scanToken()
	}

	s.toks = append(s.toks, token.Token{
		Kind: token.EOF,
		Pos:  token.Pos{Offset: s.cur, Line: s.line, Col: s.col},
	})

	return s.toks
}

type scanner struct {
	src   string
	diags *diag.Collector
	toks  []token.Token

	start, cur          int
	line, col           int
	startLine, startCol int
}

func (s *scanner) atEnd() bool { return s.cur >= len(s.src) }

// advance consumes one rune and returns it.
func (s *scanner) advance() rune {
	r, n := utf8.DecodeRuneInString(s.src[s.cur:])
	s.cur += n

	if r == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}

	return r
}

func (s *scanner) peek() byte {
	if s.atEnd() {
		return 0
	}

	return s.src[s.cur]
}

func (s *scanner) peekNext() byte {
	if s.cur+1 >= len(s.src) {
		return 0
	}

	return s.src[s.cur+1]
}

func (s *scanner) match(b byte) bool {
	if s.peek() != b || s.atEnd() {
		return false
	}

	s.advance()

	return true
}

func (s *scanner) pos() token.Pos {
	return token.Pos{Offset: s.start, Line: s.startLine, Col: s.startCol}
}

func (s *scanner) emit(kind token.Kind, literal any) {
	s.toks = append(s.toks, token.Token{
		Kind:    kind,
		Lexeme:  s.src[s.start:s.cur],
		Literal: literal,
		Pos:     s.pos(),
	})
}

func (s *scanner) errorf(format string, args ...any) {
	s.diags.Reportf(diag.PhaseScan, s.pos(), format, args...)
}

func (s *scanner) scanToken() {
	r := s.advance()

	switch r {
	case '(':
		s.emit(token.LeftParen, nil)
	case ')':
		s.emit(token.RightParen, nil)
	case '{':
		s.emit(token.LeftBrace, nil)
	case '}':
		s.emit(token.RightBrace, nil)
	case '[':
		s.emit(token.LeftBracket, nil)
	case ']':
		s.emit(token.RightBracket, nil)
	case ',':
		s.emit(token.Comma, nil)
	case '.':
		s.emit(token.Dot, nil)
	case ';':
		s.emit(token.Semicolon, nil)
	case '?':
		s.emit(token.Question, nil)
	case '=':
		s.emit(token.Equal, nil)
	case '+':
		s.emit(token.Plus, nil)
	case '-':
		s.emit(token.Minus, nil)
	case '*':
		s.emit(token.Star, nil)
	case '/':
		s.emit(token.Slash, nil)
	case ':':
		s.emit(pick(s.match('='), token.Define, token.Colon), nil)
	case '>':
		s.emit(pick(s.match('='), token.GreaterEqual, token.Greater), nil)
	case '<':
		s.emit(pick(s.match('='), token.LessEqual, token.Less), nil)
	case '\n':
		s.emit(token.NewLine, nil)
	case ' ', '\t', '\r':
	case '#':
		for !s.atEnd() && s.peek() != '\n' {
			s.advance()
		}
	case '"':
		s.string()
	default:
		switch {
		case isDigit(r):
			s.number()
		case isAlpha(r):
			s.identifier()
		case r == utf8.RuneError && s.cur-s.start == 1:
			s.errorf("Unexpected byte: %#02x", s.src[s.start])
		default:
			s.errorf("Unexpected character: %s", strconv.QuoteRune(r))
		}
	}
}

func (s *scanner) string() {
	for !s.atEnd() && s.peek() != '"' {
		s.advance()
	}

	if s.atEnd() {
		s.errorf("Unterminated string")

		return
	}

	s.advance()
	s.emit(token.String, s.src[s.start+1:s.cur-1])
}

func (s *scanner) number() {
	for isDigit(rune(s.peek())) {
		s.advance()
	}

	if s.peek() == '.' && isDigit(rune(s.peekNext())) {
		s.advance()

		for isDigit(rune(s.peek())) {
			s.advance()
		}

		f, err := strconv.ParseFloat(s.src[s.start:s.cur], 64)
		if err != nil {
			s.errorf("Float literal out of range")
		}

		s.emit(token.Float, f)

		return
	}

	i, err := strconv.ParseInt(s.src[s.start:s.cur], 10, 64)
	if err != nil {
		s.errorf("Integer literal out of range")

		i = 0
	}

	s.emit(token.Integer, i)
}

func (s *scanner) identifier() {
	for r := rune(s.peek()); isAlpha(r) || isDigit(r); r = rune(s.peek()) {
		s.advance()
	}

	s.emit(token.Lookup(s.src[s.start:s.cur]), nil)
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isAlpha(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_'
}

func pick[T any](cond bool, a, b T) T {
	if cond {
		return a
	}

	return b
}
