package lang

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/ardnew/verse/lang/diag"
	"github.com/ardnew/verse/lang/interp"
	"github.com/ardnew/verse/lang/value"
)

const hello = `Print<native>(message: string): void

Main(): void = {
  Print("hi")
}
`

func TestRun_Hello(t *testing.T) {
	var out bytes.Buffer

	if err := Run(t.Context(), strings.NewReader(hello), WithOutput(&out)); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if out.String() != "hi\n" {
		t.Errorf("output = %q, want %q", out.String(), "hi\n")
	}
}

func TestRun_NoEntryIsNotSyntaxError(t *testing.T) {
	err := Run(t.Context(), strings.NewReader("x := 1\n"))
	if !errors.Is(err, interp.ErrNoEntry) {
		t.Fatalf("err = %v, want ErrNoEntry", err)
	}

	var se *SyntaxError
	if errors.As(err, &se) {
		t.Errorf("missing Main reported as syntax error: %v", err)
	}
}

func TestRun_WithGlobals(t *testing.T) {
	var out bytes.Buffer

	src := "Print<native>(message: string): void\nMain(): void = { Print(who) }"

	err := Run(t.Context(), strings.NewReader(src),
		WithOutput(&out),
		WithGlobals(map[string]value.Value{"who": value.String("world")}),
	)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if out.String() != "world\n" {
		t.Errorf("output = %q", out.String())
	}
}

func TestParse_SyntaxError(t *testing.T) {
	var out bytes.Buffer

	src := "Print<native>(message: string): void\nMain(): void = {\n  x := )\n  Print(\"ran\")\n}\n"

	prog, err := ParseString(t.Context(), src, WithCache(false))

	var se *SyntaxError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want *SyntaxError", err)
	}

	if len(se.Diagnostics) != 1 || se.Internal() {
		t.Fatalf("diagnostics = %v", se.Diagnostics)
	}

	d := se.Diagnostics[0]
	if d.Phase != diag.PhaseParse || d.Pos.Line != 3 || d.Pos.Col != 8 {
		t.Errorf("diagnostic = %+v", d)
	}

	msg := se.Error()
	for _, want := range []string{
		"Syntax Error: Expected expression, instead got `)` [ Ln 3, Col 8 ]",
		"  3 |   x := )",
		"^",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q:\n%s", want, msg)
		}
	}

	if prog == nil || len(prog.Stmts) != 2 {
		t.Fatalf("partial program = %+v", prog)
	}

	if err := Run(t.Context(), strings.NewReader(src), WithOutput(&out)); !errors.As(err, &se) {
		t.Fatalf("Run err = %v, want *SyntaxError", err)
	}

	if out.Len() != 0 {
		t.Errorf("program with syntax errors produced output %q", out.String())
	}
}

func TestParse_ScanError(t *testing.T) {
	_, err := ParseString(t.Context(), "x := 1 $", WithCache(false))

	var se *SyntaxError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want *SyntaxError", err)
	}

	if se.Diagnostics[0].Phase != diag.PhaseScan {
		t.Errorf("phase = %v, want scan", se.Diagnostics[0].Phase)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk on fire") }

func TestParse_ReadError(t *testing.T) {
	_, err := Parse(t.Context(), failingReader{})
	if !errors.Is(err, ErrReadInput) {
		t.Fatalf("err = %v, want ErrReadInput", err)
	}
}

func TestCache(t *testing.T) {
	ClearCache()
	t.Cleanup(ClearCache)

	ctx := t.Context()

	a, err := ParseString(ctx, hello)
	if err != nil {
		t.Fatal(err)
	}

	b, _ := Parse(ctx, strings.NewReader(hello))
	if a != b {
		t.Error("identical sources should share a cached program")
	}

	c, _ := ParseString(ctx, hello, WithCache(false))
	if c == a {
		t.Error("uncached parse returned the cached program")
	}

	ClearCache()

	d, _ := ParseString(ctx, hello)
	if d == a {
		t.Error("ClearCache did not discard the entry")
	}

	// Syntax errors are cached too.
	_, err1 := ParseString(ctx, "x := ")
	_, err2 := ParseString(ctx, "x := ")

	if err1 == nil || err2 == nil || err1.Error() != err2.Error() {
		t.Errorf("cached errors differ: %v / %v", err1, err2)
	}
}

func TestCache_Concurrent(t *testing.T) {
	ClearCache()
	t.Cleanup(ClearCache)

	const n = 16

	var (
		wg    sync.WaitGroup
		progs [n]*Program
	)

	for i := range n {
		wg.Add(1)

		go func() {
			defer wg.Done()

			progs[i], _ = ParseString(t.Context(), hello)
		}()
	}

	wg.Wait()

	for i := 1; i < n; i++ {
		if progs[i] != progs[0] {
			t.Fatalf("goroutine %d got a different program", i)
		}
	}
}

func TestFormats(t *testing.T) {
	prog, err := ParseString(t.Context(), "x := 1 + 2\nF(a: int): int = { a }", WithCache(false))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		write func(*bytes.Buffer) error
		want  []string
	}{
		{
			"native",
			func(b *bytes.Buffer) error { return prog.Format(b) },
			[]string{"x := (1 + 2)\nF(a : int) : int = { a }\n"},
		},
		{
			"json",
			func(b *bytes.Buffer) error { return prog.FormatJSON(t.Context(), b, 2) },
			[]string{`"kind": "VariableDecl"`, `"kind": "FunctionDecl"`, `"op": "+"`},
		},
		{
			"compact json",
			func(b *bytes.Buffer) error { return prog.FormatJSON(t.Context(), b, 0) },
			[]string{`"kind":"BinaryExpr"`},
		},
		{
			"yaml",
			func(b *bytes.Buffer) error { return prog.FormatYAML(t.Context(), b, 2) },
			[]string{"kind: VariableDecl", "kind: FunctionDecl", "name: x"},
		},
		{
			"ast",
			func(b *bytes.Buffer) error { return prog.FormatAST(b) },
			[]string{"VariableDecl @1:1 x\n", "  BinaryExpr @1:6 +\n", "FunctionDecl @2:1 F\n"},
		},
		{
			"tokens",
			func(b *bytes.Buffer) error { return prog.FormatTokens(b) },
			[]string{"identifier", ":=", `\n`, "end of file"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b bytes.Buffer

			if err := tt.write(&b); err != nil {
				t.Fatalf("write: %v", err)
			}

			for _, want := range tt.want {
				if !strings.Contains(b.String(), want) {
					t.Errorf("output missing %q:\n%s", want, b.String())
				}
			}
		})
	}
}
