package cmd

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ardnew/verse/lang"
)

func TestFmt(t *testing.T) {
	path := writeSource(t, t.TempDir(), "prog.verse", "x := 1 + 2\nF(a: int): int = { a }")

	tests := []struct {
		name string
		run  func(ctx context.Context) error
		want []string
	}{
		{
			"native",
			(&Native{Source: path}).Run,
			[]string{"x := (1 + 2)\nF(a : int) : int = { a }\n"},
		},
		{
			"json",
			(&JSON{Source: path, Indent: 2}).Run,
			[]string{`"kind": "VariableDecl"`, `"name": "F"`},
		},
		{
			"compact json",
			(&JSON{Source: path}).Run,
			[]string{`"kind":"BinaryExpr"`},
		},
		{
			"yaml",
			(&YAML{Source: path, Indent: 2}).Run,
			[]string{"kind: FunctionDecl", "name: x"},
		},
		{
			"ast",
			(&AST{Source: path}).Run,
			[]string{"VariableDecl @1:1 x\n", "  BinaryExpr @1:6 +\n"},
		},
		{
			"tokens",
			(&Tokens{Source: path}).Run,
			[]string{"identifier", "end of file"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer

			if err := tt.run(WithOutput(t.Context(), &out)); err != nil {
				t.Fatalf("Run: %v", err)
			}

			for _, want := range tt.want {
				if !strings.Contains(out.String(), want) {
					t.Errorf("output missing %q:\n%s", want, out.String())
				}
			}
		})
	}
}

func TestFmt_SyntaxError(t *testing.T) {
	path := writeSource(t, t.TempDir(), "broken.verse", "x := (1 +")

	var out bytes.Buffer

	ctx := WithOutput(t.Context(), &out)

	var se *lang.SyntaxError

	if err := (&Native{Source: path}).Run(ctx); !errors.As(err, &se) {
		t.Fatalf("native err = %v, want *lang.SyntaxError", err)
	}

	if out.Len() != 0 {
		t.Errorf("native wrote %q for a broken program", out.String())
	}

	if err := (&Tokens{Source: path}).Run(ctx); !errors.As(err, &se) {
		t.Fatalf("tokens err = %v, want *lang.SyntaxError", err)
	}

	if !strings.Contains(out.String(), ":=") {
		t.Errorf("tokens output missing scanned tokens:\n%s", out.String())
	}
}

func TestFmt_SourceNotFound(t *testing.T) {
	err := (&AST{Source: "no-such-program"}).Run(t.Context())
	if !errors.Is(err, ErrSourceNotFound) {
		t.Errorf("err = %v, want ErrSourceNotFound", err)
	}
}
