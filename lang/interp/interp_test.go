package interp

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/ardnew/verse/lang/ast"
	"github.com/ardnew/verse/lang/diag"
	"github.com/ardnew/verse/lang/lexer"
	"github.com/ardnew/verse/lang/native"
	"github.com/ardnew/verse/lang/parser"
	"github.com/ardnew/verse/lang/token"
	"github.com/ardnew/verse/lang/value"
	"github.com/ardnew/verse/pkg"
)

const prelude = `Print<native>(message: string): void
Sqrt<native>(value: number): number
Join<native>(list: []string, separator: string): string
ToString<native>(character: string): string
`

func parse(t *testing.T, src string) []ast.Stmt {
	t.Helper()

	var diags diag.Collector

	stmts := parser.Parse(lexer.Scan(src, &diags), &diags)
	for d := range diags.All() {
		t.Fatalf("unexpected diagnostic: %v", d)
	}

	return stmts
}

func load(t *testing.T, src string, opts ...Option) (*Interpreter, *bytes.Buffer) {
	t.Helper()

	var out bytes.Buffer

	in, err := New(parse(t, src), append([]Option{WithOutput(&out)}, opts...)...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	return in, &out
}

func TestExec_Expressions(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		want    value.Value
		wantErr error
	}{
		{"integer add", "1 + 2", value.Integer(3), nil},
		{"mixed add", "1 + 2.0", nil, ErrTypeMismatch},
		{"integer division truncates", "7 / 2", value.Integer(3), nil},
		{"float division", "7.0 / 2.0", value.Float(3.5), nil},
		{"division by zero", "1 / 0", nil, ErrDivisionByZero},
		{"precedence", "2 + 3 * 4 - 1", value.Integer(13), nil},
		{"grouping", "(2 + 3) * 4", value.Integer(20), nil},
		{"negation", "-(2 + 3)", value.Integer(-5), nil},
		{"negate string", `-"s"`, nil, ErrTypeMismatch},
		{"comparison", "1.5 <= 2.5", value.Bool(true), nil},
		{"mixed comparison", "1 < 2.5", nil, ErrTypeMismatch},
		{"equality", "1 + 1 = 2", value.Bool(true), nil},
		{"string equality", `"a" = "b"`, value.Bool(false), nil},
		{"mixed equality", "1 = 1.0", nil, ErrTypeMismatch},
		{"not true", "not true", value.Bool(false), nil},
		{"not integer", "not 0", value.Bool(true), nil},
		{"declare then read", "x := 4\nx * x", value.Integer(16), nil},
		{"assignment", "x := 1\nx = 2\nx", value.Integer(2), nil},
		{"assignment value", "x := 1\nx = 7", value.Integer(7), nil},
		{"chained assignment", "x := 1; y := 2\nx = y = 9\nx + y", value.Integer(18), nil},
		{"undefined assignment", "y = 1", nil, ErrUndefinedVariable},
		{"undefined variable", "z + 1", nil, ErrUndefinedVariable},
		{"redefinition", "x := 1\nx := 2", nil, ErrRedefinedVariable},
		{"declaration has no value", "x := 1", nil, nil},
		{"if then", "if (1 < 2) { 10 } else { 20 }", value.Integer(10), nil},
		{"if else", "if (1 > 2) { 10 } else { 20 }", value.Integer(20), nil},
		{"else if", "x := 0\nif (x > 0) { 1 } else if (x = 0) { 2 } else { 3 }", value.Integer(2), nil},
		{"if without else", "if (1 > 2) { 10 }", nil, nil},
		{"if non-logic condition", "if (1) { 2 }", nil, ErrTypeMismatch},
		{"if scope", "x := 1\nif (true) { x := 2 }\nx", value.Integer(1), nil},
		{"block shadow", "x := 1\nblock { x := 2\n x = 3 }\nx", value.Integer(1), nil},
		{"block assigns outer", "x := 1\nblock { x = 5 }\nx", value.Integer(5), nil},
		{"property access", "a.b", nil, ErrUnsupported},
		{"not callable", "(1)(2)", nil, ErrNotCallable},
		{"undefined function", "Nope()", nil, ErrUndefinedFunction},
		{"declared function", "F(): int = { 40 + 2 }\nF()", value.Integer(42), nil},
		{"undeclared native", `Print("x")`, nil, ErrUndefinedFunction},
		{"sqrt", prelude + "Sqrt(16)", value.Float(4), nil},
		{"native arg type", prelude + "Sqrt(true)", nil, native.ErrArgType},
		{"native failure", prelude + `ToString("ab")`, nil, native.ErrNativeFailed},
		{"nested function", "block { F(): int = { 1 } }", nil, ErrUnsupported},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, _ := load(t, "")

			got, err := in.Exec(t.Context(), parse(t, tt.src))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}

				if pkg.IsInternal(err) {
					t.Errorf("runtime error reported as internal: %v", err)
				}

				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got != tt.want {
				t.Errorf("got %s, want %s", value.Format(got), value.Format(tt.want))
			}
		})
	}
}

func TestRun_Print(t *testing.T) {
	in, out := load(t, prelude+"Main(): void = {\n  Print(\"hi\")\n}\n")

	if err := in.Run(t.Context()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if out.String() != "hi\n" {
		t.Errorf("output = %q, want %q", out.String(), "hi\n")
	}
}

func TestRun_Globals(t *testing.T) {
	src := prelude + `greeting := "hello"
suffix := ToString("!")
Main(): void = {
  Print(greeting)
  Print(Join(parts, suffix))
}
`
	in, out := load(t, src, WithGlobals(map[string]value.Value{
		"parts": value.List{value.String("a"), value.String("b")},
	}))

	if err := in.Run(t.Context()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if want := "hello\na!b\n"; out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}

	if v, ok := in.Global("greeting"); !ok || v != value.String("hello") {
		t.Errorf("Global(greeting) = %v, %v", v, ok)
	}

	if _, ok := in.Globals()["parts"]; ok {
		t.Error("host values should not be listed as program globals")
	}

	if !strings.Contains(strings.Join(in.Names(), ","), "parts") {
		t.Errorf("Names = %v, want host value included", in.Names())
	}
}

func TestRun_HostValueShadowed(t *testing.T) {
	in, out := load(t, prelude+"name := \"program\"\nMain(): void = { Print(name) }",
		WithGlobals(map[string]value.Value{"name": value.String("host")}))

	if err := in.Run(t.Context()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if out.String() != "program\n" {
		t.Errorf("output = %q", out.String())
	}
}

func TestRun_NoEntry(t *testing.T) {
	in, _ := load(t, "x := 1\nHelper(): int = { x }")

	err := in.Run(t.Context())
	if !errors.Is(err, ErrNoEntry) {
		t.Fatalf("err = %v, want ErrNoEntry", err)
	}

	if err.Error() != "no entry function `Main`" {
		t.Errorf("message = %q", err.Error())
	}
}

func TestRun_NoEntrySkipsGlobals(t *testing.T) {
	in, out := load(t, prelude+"x := Print(\"side effect\")\ny := 1 + 2.0\n")

	if err := in.Run(t.Context()); !errors.Is(err, ErrNoEntry) {
		t.Fatalf("err = %v, want ErrNoEntry", err)
	}

	if out.Len() != 0 {
		t.Errorf("output = %q, want nothing", out.String())
	}
}

func TestRun_EffectsBeforeError(t *testing.T) {
	in, out := load(t, prelude+`Main(): void = {
  Print("a")
  x := 1 + 2.0
  Print("b")
}`)

	if err := in.Run(t.Context()); !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("err = %v, want type mismatch", err)
	}

	if out.String() != "a\n" {
		t.Errorf("output = %q, want %q", out.String(), "a\n")
	}
}

func TestInit(t *testing.T) {
	in, out := load(t, prelude+`count := 2 * 3
Print("top level")
Main(): void = { Print("main") }
`)

	for range 2 {
		if err := in.Init(t.Context()); err != nil {
			t.Fatalf("Init: %v", err)
		}
	}

	if v, ok := in.Global("count"); !ok || v != value.Integer(6) {
		t.Errorf("Global(count) = %v, %v", v, ok)
	}

	if out.Len() != 0 {
		t.Errorf("output = %q, want nothing", out.String())
	}

	if err := in.Run(t.Context()); err != nil {
		t.Fatalf("Run after Init: %v", err)
	}

	if out.String() != "main\n" {
		t.Errorf("output = %q, want %q", out.String(), "main\n")
	}
}

func TestNew_DuplicateFunction(t *testing.T) {
	_, err := New(parse(t, "F(): int = { 1 }\nF(): int = { 2 }"))
	if !errors.Is(err, ErrDuplicateFunction) {
		t.Fatalf("err = %v, want ErrDuplicateFunction", err)
	}

	if !strings.Contains(err.Error(), "first declared at 1:1") {
		t.Errorf("message = %q", err.Error())
	}

	in, _ := load(t, "F(): int = { 1 }")
	if _, err := in.Exec(t.Context(), parse(t, "F(): int = { 3 }")); !errors.Is(err, ErrDuplicateFunction) {
		t.Errorf("Exec duplicate err = %v", err)
	}
}

func TestCall_UserFunctions(t *testing.T) {
	src := `Add(a: int, b: int): int = { a + b }
Fib(n: int): int = {
  if (n < 2) { n } else { Fib(n - 1) + Fib(n - 2) }
}
Loop(n: int): int = { Loop(n + 1) }
Later(): int
Twice(a: int, a: int): int = { a }
`

	in, _ := load(t, src, WithMaxDepth(50))
	ctx := t.Context()

	if got, err := in.Call(ctx, "Add", value.Integer(1), value.Integer(2)); err != nil || got != value.Integer(3) {
		t.Errorf("Add(1, 2) = %v, %v", got, err)
	}

	if got, err := in.Call(ctx, "Fib", value.Integer(10)); err != nil || got != value.Integer(55) {
		t.Errorf("Fib(10) = %v, %v", got, err)
	}

	if _, err := in.Call(ctx, "Add", value.Integer(1)); !errors.Is(err, ErrArity) {
		t.Errorf("arity err = %v", err)
	}

	if _, err := in.Call(ctx, "Loop", value.Integer(0)); !errors.Is(err, ErrMaxDepth) {
		t.Errorf("depth err = %v", err)
	}

	if _, err := in.Call(ctx, "Later"); !errors.Is(err, ErrNoBody) {
		t.Errorf("no body err = %v", err)
	}

	if _, err := in.Call(ctx, "Twice", value.Integer(1), value.Integer(2)); !errors.Is(err, ErrRedefinedVariable) {
		t.Errorf("duplicate parameter err = %v", err)
	}

	if _, err := in.Call(ctx, "Missing"); !errors.Is(err, ErrUndefinedFunction) {
		t.Errorf("missing err = %v", err)
	}

	// The depth counter unwinds after a failed call.
	if got, err := in.Call(ctx, "Fib", value.Integer(5)); err != nil || got != value.Integer(5) {
		t.Errorf("Fib(5) after failure = %v, %v", got, err)
	}

	if got := strings.Join(in.Functions(), ","); got != "Add,Fib,Later,Loop,Twice" {
		t.Errorf("Functions = %s", got)
	}
}

func TestCall_ParametersDoNotLeak(t *testing.T) {
	in, _ := load(t, "F(a: int): int = { a }\nG(): int = { a }")

	if _, err := in.Call(t.Context(), "F", value.Integer(1)); err != nil {
		t.Fatal(err)
	}

	if _, err := in.Call(t.Context(), "G"); !errors.Is(err, ErrUndefinedVariable) {
		t.Errorf("err = %v, want undefined variable", err)
	}
}

func TestExec_InternalErrors(t *testing.T) {
	one := &ast.LiteralExpr{Value: int64(1)}

	tests := []struct {
		name string
		stmt ast.Stmt
		want error
	}{
		{
			"unknown operator",
			&ast.ExpressionStmt{X: &ast.BinaryExpr{
				Left: one, Op: token.Token{Kind: token.Comma, Lexeme: ","}, Right: one,
			}},
			ErrUnknownOperator,
		},
		{
			"unknown unary operator",
			&ast.ExpressionStmt{X: &ast.UnaryExpr{
				Op: token.Token{Kind: token.Plus, Lexeme: "+"}, X: one,
			}},
			ErrUnknownOperator,
		},
		{
			"unknown literal",
			&ast.ExpressionStmt{X: &ast.LiteralExpr{Value: struct{}{}}},
			ErrUnknownNode,
		},
		{"nil statement", nil, ErrUnknownNode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, _ := load(t, "")

			_, err := in.Exec(t.Context(), []ast.Stmt{tt.stmt})
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}

			if !pkg.IsInternal(err) {
				t.Errorf("err = %v, want internal", err)
			}
		})
	}
}

func TestWithBridge(t *testing.T) {
	var out bytes.Buffer

	b := native.New(native.WithOutput(&out))

	in, err := New(parse(t, prelude+`Main(): void = { Print("bridged") }`), WithBridge(b))
	if err != nil {
		t.Fatal(err)
	}

	if in.Bridge() != b {
		t.Fatal("Bridge() did not return the configured bridge")
	}

	if err := in.Run(t.Context()); err != nil {
		t.Fatal(err)
	}

	if out.String() != "bridged\n" {
		t.Errorf("output = %q", out.String())
	}
}
