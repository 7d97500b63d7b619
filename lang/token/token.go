// Package token defines the lexical tokens of the language and how they
// describe themselves in diagnostics.
package token

import (
	"fmt"
	"strconv"
)

// Kind identifies the lexical class of a token.
type Kind uint8

const (
	Invalid Kind = iota

	// Punctuation and operators.
	LeftParen    // (
	RightParen   // )
	LeftBrace    // {
	RightBrace   // }
	LeftBracket  // [
	RightBracket // ]
	Comma        // ,
	Dot          // .
	Semicolon    // ;
	Colon        // :
	Question     // ?
	NewLine      // \n
	Equal        // =
	Plus         // +
	Minus        // -
	Star         // *
	Slash        // /
	Define       // :=
	Greater      // >
	GreaterEqual // >=
	Less         // <
	LessEqual    // <=

	// Literals.
	Identifier
	String
	Integer
	Float

	// Keywords.
	And
	Or
	Not
	True
	False
	Var
	Return
	Self
	If
	Else
	For
	Block
	Spawn
	Break
	Class
	Module

	EOF

	kindCount
)

var symbol = [kindCount]string{
	LeftParen:    "(",
	RightParen:   ")",
	LeftBrace:    "{",
	RightBrace:   "}",
	LeftBracket:  "[",
	RightBracket: "]",
	Comma:        ",",
	Dot:          ".",
	Semicolon:    ";",
	Colon:        ":",
	Question:     "?",
	NewLine:      `\n`,
	Equal:        "=",
	Plus:         "+",
	Minus:        "-",
	Star:         "*",
	Slash:        "/",
	Define:       ":=",
	Greater:      ">",
	GreaterEqual: ">=",
	Less:         "<",
	LessEqual:    "<=",

	Identifier: "identifier",
	String:     "string",
	Integer:    "integer",
	Float:      "float",

	And:    "and",
	Or:     "or",
	Not:    "not",
	True:   "true",
	False:  "false",
	Var:    "var",
	Return: "return",
	Self:   "self",
	If:     "if",
	Else:   "else",
	For:    "for",
	Block:  "block",
	Spawn:  "spawn",
	Break:  "break",
	Class:  "class",
	Module: "module",

	EOF: "end of file",
}

var keywords = func() map[string]Kind {
	m := make(map[string]Kind, Module-And+1)
	for k := And; k <= Module; k++ {
		m[symbol[k]] = k
	}

	return m
}()

// Lookup returns the keyword kind of ident, or Identifier.
func Lookup(ident string) Kind {
	if k, ok := keywords[ident]; ok {
		return k
	}

	return Identifier
}

// Keywords returns the keyword spellings in declaration order.
func Keywords() []string {
	out := make([]string, 0, Module-And+1)
	for k := And; k <= Module; k++ {
		out = append(out, symbol[k])
	}

	return out
}

// IsKeyword reports whether k is a reserved word.
func (k Kind) IsKeyword() bool { return k >= And && k <= Module }

// IsPunct reports whether k is punctuation or an operator.
func (k Kind) IsPunct() bool { return k >= LeftParen && k <= LessEqual }

// IsLiteral reports whether k carries a literal value or a name.
func (k Kind) IsLiteral() bool { return k >= Identifier && k <= Float }

// String returns the symbol, keyword spelling or class name of k.
func (k Kind) String() string {
	if k < kindCount && symbol[k] != "" {
		return symbol[k]
	}

	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Describe renders k the way diagnostics refer to an expected token:
// "end of file", "keyword `if`", "`)`" or "identifier".
func (k Kind) Describe() string {
	switch {
	case k == EOF:
		return symbol[EOF]
	case k.IsKeyword():
		return "keyword `" + symbol[k] + "`"
	case k.IsPunct():
		return "`" + symbol[k] + "`"
	default:
		return k.String()
	}
}

// Pos is a location in source text. Line and Col are 1-based; Col counts
// runes. Offset is the 0-based byte offset.
type Pos struct {
	Offset int
	Line   int
	Col    int
}

// IsValid reports whether p refers to a location.
func (p Pos) IsValid() bool { return p.Line > 0 }

func (p Pos) String() string {
	if !p.IsValid() {
		return "-"
	}

	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// Token is one lexeme of source text.
type Token struct {
	Kind   Kind
	Lexeme string
	// Literal is the decoded value of String (string), Integer (int64) and
	// Float (float64) tokens, and nil otherwise.
	Literal any
	Pos     Pos
}

// Describe renders t for diagnostics: "end of file", "keyword `var`",
// "`:=`", or the kind and quoted lexeme as in "identifier `x`".
func (t Token) Describe() string {
	switch {
	case t.Kind == EOF, t.Kind.IsKeyword(), t.Kind.IsPunct():
		return t.Kind.Describe()
	default:
		return t.Kind.String() + " `" + t.Lexeme + "`"
	}
}

func (t Token) String() string {
	return fmt.Sprintf("%s %s", t.Pos, t.Describe())
}
