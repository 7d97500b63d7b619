package lexer

import (
	"slices"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/ardnew/verse/lang/diag"
	"github.com/ardnew/verse/lang/token"
)

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}

	return out
}

func TestScan_Kinds(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []token.Kind
	}{
		{"empty", "", []token.Kind{token.EOF}},
		{"whitespace", " \t\r ", []token.Kind{token.EOF}},
		{
			"punctuation", "(){}[],.;:?",
			[]token.Kind{
				token.LeftParen, token.RightParen, token.LeftBrace, token.RightBrace,
				token.LeftBracket, token.RightBracket, token.Comma, token.Dot,
				token.Semicolon, token.Colon, token.Question, token.EOF,
			},
		},
		{
			"two-char operators", ":= >= <= : > < =",
			[]token.Kind{
				token.Define, token.GreaterEqual, token.LessEqual,
				token.Colon, token.Greater, token.Less, token.Equal, token.EOF,
			},
		},
		{
			"adjacent greedy", "a:=b<=c",
			[]token.Kind{
				token.Identifier, token.Define, token.Identifier,
				token.LessEqual, token.Identifier, token.EOF,
			},
		},
		{
			"arithmetic", "1+2.5*x/-y",
			[]token.Kind{
				token.Integer, token.Plus, token.Float, token.Star, token.Identifier,
				token.Slash, token.Minus, token.Identifier, token.EOF,
			},
		},
		{
			"integer then dot", "1.x",
			[]token.Kind{token.Integer, token.Dot, token.Identifier, token.EOF},
		},
		{
			"keywords", "and or not true false var return self if else for block spawn break class module",
			[]token.Kind{
				token.And, token.Or, token.Not, token.True, token.False, token.Var,
				token.Return, token.Self, token.If, token.Else, token.For,
				token.Block, token.Spawn, token.Break, token.Class, token.Module,
				token.EOF,
			},
		},
		{
			"keyword prefix is identifier", "iffy var_ _if",
			[]token.Kind{token.Identifier, token.Identifier, token.Identifier, token.EOF},
		},
		{
			"comment keeps newline", "x # comment := 3\ny",
			[]token.Kind{token.Identifier, token.NewLine, token.Identifier, token.EOF},
		},
		{
			"string spans lines", "\"a\nb\" c",
			[]token.Kind{token.String, token.Identifier, token.EOF},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var diags diag.Collector

			got := kinds(Scan(tt.src, &diags))
			if !slices.Equal(got, tt.want) {
				t.Errorf("Scan(%q) kinds = %v, want %v", tt.src, got, tt.want)
			}

			if diags.HasErrors() {
				t.Errorf("unexpected diagnostics: %v", diags.Diagnostics())
			}
		})
	}
}

func TestScan_Literals(t *testing.T) {
	toks := Scan(`42 3.25 "hello world" name`, nil)

	want := []any{int64(42), 3.25, "hello world", nil}
	for i, w := range want {
		if toks[i].Literal != w {
			t.Errorf("token %d literal = %#v, want %#v", i, toks[i].Literal, w)
		}
	}
}

func TestScan_Positions(t *testing.T) {
	src := "Main(): void = {\n  Print(\"hé\")\n\tx:=1.5\n}"
	toks := Scan(src, nil)

	want := map[string]token.Pos{
		"Main":    {Offset: 0, Line: 1, Col: 1},
		"{":       {Offset: 15, Line: 1, Col: 16},
		"Print":   {Offset: 19, Line: 2, Col: 3},
		`"hé"`:    {Offset: 25, Line: 2, Col: 9},
		"x":       {Offset: 33, Line: 3, Col: 2},
		":=":      {Offset: 34, Line: 3, Col: 3},
		"1.5":     {Offset: 36, Line: 3, Col: 5},
		"}":       {Offset: 40, Line: 4, Col: 1},
		"<<EOF>>": {Offset: 41, Line: 4, Col: 2},
	}

	for _, tok := range toks {
		key := tok.Lexeme
		if tok.Kind == token.EOF {
			key = "<<EOF>>"
		}

		if w, ok := want[key]; ok && tok.Pos != w {
			t.Errorf("%q at %+v, want %+v", key, tok.Pos, w)
		}
	}
}

func TestScan_Errors(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		messages []string
		want     []token.Kind
	}{
		{
			"unexpected character", "x @ y",
			[]string{"Unexpected character: '@'"},
			[]token.Kind{token.Identifier, token.Identifier, token.EOF},
		},
		{
			"unterminated string", `Print("oops`,
			[]string{"Unterminated string"},
			[]token.Kind{token.Identifier, token.LeftParen, token.EOF},
		},
		{
			"several errors", "$ % !",
			[]string{
				"Unexpected character: '$'",
				"Unexpected character: '%'",
				"Unexpected character: '!'",
			},
			[]token.Kind{token.EOF},
		},
		{
			"integer overflow", "99999999999999999999",
			[]string{"Integer literal out of range"},
			[]token.Kind{token.Integer, token.EOF},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var diags diag.Collector

			got := kinds(Scan(tt.src, &diags))
			if !slices.Equal(got, tt.want) {
				t.Errorf("kinds = %v, want %v", got, tt.want)
			}

			var msgs []string
			for d := range diags.All() {
				msgs = append(msgs, d.Message)
			}

			if !slices.Equal(msgs, tt.messages) {
				t.Errorf("messages = %q, want %q", msgs, tt.messages)
			}
		})
	}
}

func TestScan_ErrorPosition(t *testing.T) {
	var diags diag.Collector

	Scan("x := 1\n  y @", &diags)

	d := diags.Diagnostics()
	if len(d) != 1 {
		t.Fatalf("got %d diagnostics, want 1", len(d))
	}

	if d[0].Pos.Line != 2 || d[0].Pos.Col != 5 {
		t.Errorf("diagnostic at %v, want 2:5", d[0].Pos)
	}

	if got, want := d[0].Error(), "Syntax Error: Unexpected character: '@' [ Ln 2, Col 5 ]"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

// checkInvariants verifies that the stream ends with exactly one EOF and
// that every other lexeme is the source text at its recorded position.
func checkInvariants(t *testing.T, src string, toks []token.Token) {
	t.Helper()

	if len(toks) == 0 || toks[len(toks)-1].Kind != token.EOF {
		t.Fatalf("token stream does not end with EOF: %v", toks)
	}

	lines := strings.Split(src, "\n")

	for _, tok := range toks[:len(toks)-1] {
		if tok.Kind == token.EOF {
			t.Fatalf("EOF before end of stream")
		}

		p := tok.Pos
		if p.Offset < 0 || p.Offset+len(tok.Lexeme) > len(src) ||
			src[p.Offset:p.Offset+len(tok.Lexeme)] != tok.Lexeme {
			t.Fatalf("lexeme %q does not match source at offset %d", tok.Lexeme, p.Offset)
		}

		if p.Line < 1 || p.Line > len(lines) {
			t.Fatalf("lexeme %q has line %d outside source", tok.Lexeme, p.Line)
		}

		prefix := lines[p.Line-1]
		if cols := utf8.RuneCountInString(prefix); p.Col < 1 || p.Col > cols+1 {
			t.Fatalf("lexeme %q has col %d outside line %q", tok.Lexeme, p.Col, prefix)
		}

		lineStart := 0
		for _, l := range lines[:p.Line-1] {
			lineStart += len(l) + 1
		}

		if p.Offset < lineStart ||
			utf8.RuneCountInString(src[lineStart:p.Offset])+1 != p.Col {
			t.Fatalf("lexeme %q: line/col %v disagrees with offset %d", tok.Lexeme, p, p.Offset)
		}
	}
}

func TestScan_Invariants(t *testing.T) {
	for _, src := range []string{
		"",
		"Main(): void = {\n  Print(\"hi\")\n}\n",
		"x := 1 +\n# c\n2.0 @ \"multi\nline\" y",
		"héllo := \"wörld\"",
		"\"unterminated\n",
	} {
		checkInvariants(t, src, Scan(src, nil))
	}
}

func FuzzScan(f *testing.F) {
	for _, seed := range []string{
		"Main(): void = { Print(\"hi\") }",
		"x := 1 + 2.0",
		"var y : []?int = 3\n",
		"if (a >= b) { c } else { d }",
		"\"open",
		"# just a comment",
		"ü := \"ß\"",
	} {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, src string) {
		if !utf8.ValidString(src) {
			t.Skip()
		}

		checkInvariants(t, src, Scan(src, nil))
	})
}

func BenchmarkScan(b *testing.B) {
	src := strings.Repeat("Fib(n: int): int = {\n  if (n < 2) { n } else { Fib(n - 1) + Fib(n - 2) }\n}\n", 64)

	b.ReportAllocs()

	for b.Loop() {
		Scan(src, nil)
	}
}
