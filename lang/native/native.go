// Package native bridges Verse calls to functions implemented in Go.
//
// A [Bridge] maps names to [Func] values. Each call converts Verse values
// to host values, checks them against the declared parameter types, runs
// the implementation and converts the result back.
package native

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"slices"

	"github.com/ardnew/verse/lang/value"
	"github.com/ardnew/verse/log"
	"github.com/ardnew/verse/pkg"
)

// Errors returned by [Bridge.Call] and [Bridge.Register].
var (
	ErrNotFound     = pkg.NewError("native function not found")
	ErrArity        = pkg.NewError("wrong number of arguments")
	ErrArgType      = pkg.NewError("invalid argument type")
	ErrNativeFailed = pkg.NewError("native call failed")
	ErrDuplicate    = pkg.NewError("native function already registered")
)

// Type is a parameter or result type understood by the bridge.
type Type string

// Types accepted by the bridge.
const (
	TypeString     Type = "string"
	TypeNumber     Type = "number"
	TypeLogic      Type = "logic"
	TypeStringList Type = "[]string"
	TypeAny        Type = "any"
	TypeVoid       Type = "void"
)

// Accepts reports whether the host value x satisfies t.
func (t Type) Accepts(x any) bool {
	switch t {
	case TypeString:
		_, ok := x.(string)

		return ok
	case TypeNumber:
		switch x.(type) {
		case int64, float64:
			return true
		}

		return false
	case TypeLogic:
		_, ok := x.(bool)

		return ok
	case TypeStringList:
		_, ok := x.([]string)

		return ok
	case TypeAny:
		return true
	}

	return false
}

// Param is a named, typed parameter of a [Func].
type Param struct {
	Name string
	Type Type
}

// Impl is the Go implementation of a native function. Arguments arrive
// already converted and type-checked.
type Impl func(ctx context.Context, args []any) (any, error)

// Func describes a native function.
type Func struct {
	Name   string
	Params []Param
	Result Type
	Impl   Impl
}

// Signature renders f as it would be declared in Verse source.
func (f Func) Signature() string {
	s := f.Name + "<native>("

	for i, p := range f.Params {
		if i > 0 {
			s += ", "
		}

		s += p.Name + ": " + string(p.Type)
	}

	result := f.Result
	if result == "" {
		result = TypeVoid
	}

	return s + "): " + string(result)
}

// Bridge is a registry of native functions.
type Bridge struct {
	funcs map[string]Func
	out   io.Writer
	log   log.Logger
	std   bool
}

// Option configures a [Bridge].
type Option func(*Bridge)

// WithOutput sets the writer used by Print. The default is os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(b *Bridge) {
		if w != nil {
			b.out = w
		}
	}
}

// WithLogger sets the logger used to trace native calls.
func WithLogger(l log.Logger) Option {
	return func(b *Bridge) { b.log = l }
}

// WithStd controls whether the standard natives are registered.
// They are registered by default.
func WithStd(enable bool) Option {
	return func(b *Bridge) { b.std = enable }
}

// New returns a Bridge holding the standard natives.
func New(opts ...Option) *Bridge {
	b := &Bridge{
		funcs: make(map[string]Func),
		out:   os.Stdout,
		std:   true,
	}

	for _, opt := range opts {
		opt(b)
	}

	if b.std {
		for _, f := range Std(b.out) {
			b.funcs[f.Name] = f
		}
	}

	return b
}

// Register adds f. Names must be unique.
func (b *Bridge) Register(f Func) error {
	if _, ok := b.funcs[f.Name]; ok {
		return ErrDuplicate.
			Detail("`" + f.Name + "`").
			With(slog.String("name", f.Name))
	}

	b.funcs[f.Name] = f

	return nil
}

// Lookup returns the function registered as name.
func (b *Bridge) Lookup(name string) (Func, bool) {
	f, ok := b.funcs[name]

	return f, ok
}

// Names returns the sorted names of all registered functions.
func (b *Bridge) Names() []string {
	return slices.Sorted(maps.Keys(b.funcs))
}

// Call invokes the function registered as name with args.
func (b *Bridge) Call(
	ctx context.Context,
	name string,
	args []value.Value,
) (result value.Value, err error) {
	f, ok := b.funcs[name]
	if !ok {
		return nil, ErrNotFound.
			Detail("`" + name + "`").
			With(slog.String("name", name))
	}

	if len(args) != len(f.Params) {
		return nil, ErrArity.
			Detail(fmt.Sprintf("for `%s`: expected %d, got %d",
				name, len(f.Params), len(args))).
			With(
				slog.String("name", name),
				slog.Int("expected", len(f.Params)),
				slog.Int("got", len(args)),
			)
	}

	host := make([]any, len(args))

	for i, a := range args {
		host[i] = value.Host(a)

		if !f.Params[i].Type.Accepts(host[i]) {
			return nil, ErrArgType.
				Detail(fmt.Sprintf("for argument %d of `%s`: expected %s, got %s",
					i+1, name, f.Params[i].Type, value.KindOf(a))).
				With(
					slog.String("name", name),
					slog.Int("index", i+1),
					slog.String("expected", string(f.Params[i].Type)),
					slog.String("got", value.KindOf(a)),
				)
		}
	}

	b.log.TraceContext(ctx, "call native",
		slog.String("name", name),
		slog.Int("args", len(args)),
	)

	failed := ErrNativeFailed.
		Detail("`" + name + "`").
		With(slog.String("name", name))

	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = failed.With(slog.Any("panic", r)).Wrap(fmt.Errorf("panic: %v", r))
		}
	}()

	out, err := f.Impl(ctx, host)
	if err != nil {
		return nil, failed.Wrap(err)
	}

	v, ok := value.Of(out)
	if !ok {
		return nil, failed.Wrap(fmt.Errorf("unsupported result type %T", out))
	}

	return v, nil
}
