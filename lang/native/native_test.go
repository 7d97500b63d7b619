package native

import (
	"bytes"
	"context"
	"errors"
	"math"
	"slices"
	"strings"
	"testing"

	"github.com/ardnew/verse/lang/value"
)

func TestStd(t *testing.T) {
	var out bytes.Buffer

	b := New(WithOutput(&out))

	tests := []struct {
		name    string
		fn      string
		args    []value.Value
		want    value.Value
		wantErr error
	}{
		{"print", "Print", []value.Value{value.String("hi")}, nil, nil},
		{"sqrt int", "Sqrt", []value.Value{value.Integer(9)}, value.Float(3), nil},
		{"sqrt float", "Sqrt", []value.Value{value.Float(2.25)}, value.Float(1.5), nil},
		{
			"join", "Join",
			[]value.Value{value.List{value.String("a"), value.String("b")}, value.String("-")},
			value.String("a-b"), nil,
		},
		{"to string", "ToString", []value.Value{value.String("é")}, value.String("é"), nil},
		{"to string long", "ToString", []value.Value{value.String("ab")}, nil, ErrNativeFailed},
		{"to string empty", "ToString", []value.Value{value.String("")}, nil, ErrNativeFailed},
		{"unknown", "Nope", nil, nil, ErrNotFound},
		{"arity", "Print", nil, nil, ErrArity},
		{"arg type", "Print", []value.Value{value.Integer(1)}, nil, ErrArgType},
		{"number arg type", "Sqrt", []value.Value{value.String("4")}, nil, ErrArgType},
		{
			"list arg type", "Join",
			[]value.Value{value.List{value.Integer(1)}, value.String(",")},
			nil, ErrArgType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := b.Call(t.Context(), tt.fn, tt.args)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}

				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got != tt.want {
				t.Errorf("got %v, want %v", value.Format(got), value.Format(tt.want))
			}
		})
	}

	if out.String() != "hi\n" {
		t.Errorf("Print output = %q, want %q", out.String(), "hi\n")
	}
}

func TestCall_Messages(t *testing.T) {
	b := New(WithOutput(&bytes.Buffer{}))

	_, err := b.Call(t.Context(), "ToString", []value.Value{value.String("ab")})
	if err == nil || !strings.Contains(err.Error(), "ToString expects a single character") {
		t.Errorf("ToString error = %v", err)
	}

	_, err = b.Call(t.Context(), "Join", []value.Value{value.String("a"), value.String("b")})

	want := "invalid argument type for argument 1 of `Join`: expected []string, got string"
	if err == nil || err.Error() != want {
		t.Errorf("Join error = %v, want %q", err, want)
	}
}

func TestCall_Panic(t *testing.T) {
	b := New(WithStd(false))

	err := b.Register(Func{
		Name:   "Boom",
		Result: TypeVoid,
		Impl: func(context.Context, []any) (any, error) {
			panic("boom")
		},
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	_, err = b.Call(t.Context(), "Boom", nil)
	if !errors.Is(err, ErrNativeFailed) {
		t.Fatalf("err = %v, want ErrNativeFailed", err)
	}

	if !strings.Contains(err.Error(), "panic: boom") {
		t.Errorf("message = %q", err.Error())
	}
}

func TestCall_UnsupportedResult(t *testing.T) {
	b := New(WithStd(false))
	_ = b.Register(Func{
		Name: "Weird",
		Impl: func(context.Context, []any) (any, error) { return struct{}{}, nil },
	})

	if _, err := b.Call(t.Context(), "Weird", nil); !errors.Is(err, ErrNativeFailed) {
		t.Errorf("err = %v", err)
	}
}

func TestRegister(t *testing.T) {
	b := New(WithStd(false))
	if len(b.Names()) != 0 {
		t.Fatalf("Names = %v, want none", b.Names())
	}

	f := Func{Name: "Id", Params: []Param{{"x", TypeAny}}, Result: TypeAny,
		Impl: func(_ context.Context, args []any) (any, error) { return args[0], nil }}

	if err := b.Register(f); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if err := b.Register(f); !errors.Is(err, ErrDuplicate) {
		t.Errorf("duplicate err = %v", err)
	}

	got, err := b.Call(t.Context(), "Id", []value.Value{nil})
	if err != nil || got != nil {
		t.Errorf("Id(nil) = %v, %v", got, err)
	}

	if _, ok := b.Lookup("Id"); !ok {
		t.Error("Lookup(Id) failed")
	}
}

func TestSignatures(t *testing.T) {
	b := New()

	if got := b.Names(); !slices.Equal(got, []string{"Join", "Print", "Sqrt", "ToString"}) {
		t.Fatalf("Names = %v", got)
	}

	f, _ := b.Lookup("Join")

	want := "Join<native>(list: []string, separator: string): string"
	if got := f.Signature(); got != want {
		t.Errorf("Signature = %q, want %q", got, want)
	}
}

func TestSqrtNegative(t *testing.T) {
	got, err := New().Call(t.Context(), "Sqrt", []value.Value{value.Float(-1)})
	if err != nil {
		t.Fatal(err)
	}

	if f, ok := got.(value.Float); !ok || !math.IsNaN(float64(f)) {
		t.Errorf("Sqrt(-1) = %v, want NaN", got)
	}
}
