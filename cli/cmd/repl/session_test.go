package repl

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/ardnew/verse/lang"
	"github.com/ardnew/verse/lang/interp"
	"github.com/ardnew/verse/lang/value"
	"github.com/ardnew/verse/log"
)

func newSession(t *testing.T, src string) *Session {
	t.Helper()

	var prog *lang.Program

	if src != "" {
		var err error

		prog, err = lang.ParseString(t.Context(), src, lang.WithCache(false))
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
	}

	s, err := NewSession(t.Context(), prog, log.Discard())
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}

	return s
}

func TestSession_Eval(t *testing.T) {
	s := newSession(t, "")

	steps := []struct {
		input   string
		output  string
		want    value.Value
		wantErr error
	}{
		{input: `Print("hi")`, output: "hi\n"},
		{input: "x := 2"},
		{input: "x * 21", want: value.Integer(42)},
		{input: "F(a: int): int = { a + 1 }"},
		{input: "F(x)", want: value.Integer(3)},
		{input: "Sqrt(4.0)", want: value.Float(2)},
		{input: `Print("a"); Print("b")`, output: "a\nb\n"},
		{input: "1 + 2.0", wantErr: interp.ErrTypeMismatch},
	}

	for _, st := range steps {
		res, err := s.Eval(t.Context(), st.input)
		if !errors.Is(err, st.wantErr) {
			t.Fatalf("Eval(%q) err = %v, want %v", st.input, err, st.wantErr)
		}

		if res.Output != st.output {
			t.Errorf("Eval(%q) output = %q, want %q", st.input, res.Output, st.output)
		}

		if res.Value != st.want {
			t.Errorf("Eval(%q) = %v, want %v", st.input, res.Value, st.want)
		}
	}
}

func TestSession_EvalSyntaxError(t *testing.T) {
	s := newSession(t, "")

	_, err := s.Eval(t.Context(), "x := (1 +")

	var se *lang.SyntaxError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want *lang.SyntaxError", err)
	}

	if src, _ := s.Source(); strings.Contains(src, "x :=") {
		t.Errorf("failed input kept in source:\n%s", src)
	}
}

func TestSession_ProgramDeclaresNative(t *testing.T) {
	s := newSession(t, "Print<native>(message: string): void\ngreeting := \"hello\"")

	res, err := s.Eval(t.Context(), "Print(greeting)")
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}

	if res.Output != "hello\n" {
		t.Errorf("output = %q", res.Output)
	}
}

func TestSession_Reload(t *testing.T) {
	s := newSession(t, "x := 1")

	if _, err := s.Eval(t.Context(), "y := 2"); err != nil {
		t.Fatal(err)
	}

	prog, err := lang.ParseString(t.Context(), "z := 3", lang.WithCache(false))
	if err != nil {
		t.Fatal(err)
	}

	if err := s.Reload(t.Context(), prog); err != nil {
		t.Fatalf("Reload: %v", err)
	}

	if _, err := s.Eval(t.Context(), "x"); err == nil {
		t.Error("x should be gone after reload")
	}

	res, err := s.Eval(t.Context(), "z")
	if err != nil || res.Value != value.Integer(3) {
		t.Errorf("z = %v, %v", res.Value, err)
	}
}

func TestSession_Source(t *testing.T) {
	s := newSession(t, "x := 1")

	for _, in := range []string{"y := x + 1", "F(): int = { y }", "F()"} {
		if _, err := s.Eval(t.Context(), in); err != nil {
			t.Fatalf("Eval(%q): %v", in, err)
		}
	}

	src, err := s.Source()
	if err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{"Print<native>", "x := 1\n", "y := (x + 1)\n", "F() : int"} {
		if !strings.Contains(src, want) {
			t.Errorf("source missing %q:\n%s", want, src)
		}
	}

	if strings.Contains(src, "F()\n") {
		t.Errorf("expression statements should not be kept:\n%s", src)
	}

	if _, err := lang.ParseString(t.Context(), src, lang.WithCache(false)); err != nil {
		t.Errorf("source does not parse: %v", err)
	}
}

func TestSession_Candidates(t *testing.T) {
	s := newSession(t, "count := 1\nDouble(n: int): int = { n * 2 }")

	got := s.Candidates()

	for _, want := range []string{"if", "else", "Print", "Join", "count", "Double"} {
		if !slices.Contains(got, want) {
			t.Errorf("candidates missing %q: %v", want, got)
		}
	}

	if !slices.IsSorted(got) {
		t.Errorf("candidates not sorted: %v", got)
	}

	if !s.IsFunction("Double") || s.IsFunction("count") {
		t.Error("IsFunction mismatch")
	}
}

func TestSession_Signature(t *testing.T) {
	s := newSession(t, "Add(a: int, b: int): int = { a + b }\nNop(): void = {}")

	tests := []struct {
		name       string
		wantSig    string
		wantParams []string
		wantOK     bool
	}{
		{"Add", "Add(a : int, b : int) : int", []string{"a : int", "b : int"}, true},
		{"Nop", "Nop() : void", []string{}, true},
		{"Print", "Print(message : string) : void", []string{"message : string"}, true},
		{"missing", "", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig, params, ok := s.Signature(tt.name)
			if ok != tt.wantOK || sig != tt.wantSig {
				t.Fatalf("Signature(%q) = %q, %v, want %q, %v", tt.name, sig, ok, tt.wantSig, tt.wantOK)
			}

			if !slices.Equal(params, tt.wantParams) && len(params)+len(tt.wantParams) > 0 {
				t.Errorf("params = %q, want %q", params, tt.wantParams)
			}
		})
	}
}

func TestSession_List(t *testing.T) {
	s := newSession(t, "count := 2\nDouble(n: int): int = { n * 2 }")

	details := make(map[string]string)
	for _, e := range s.List() {
		details[e.Name] = e.Detail
	}

	tests := map[string]string{
		"count":  "integer = 2",
		"Double": "func Double(n : int) : int",
		"Sqrt":   "native Sqrt(value : number) : number",
	}

	for name, want := range tests {
		if details[name] != want {
			t.Errorf("%s: detail = %q, want %q", name, details[name], want)
		}
	}
}
