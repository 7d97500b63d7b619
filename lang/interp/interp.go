// Package interp evaluates Verse syntax trees.
//
// An [Interpreter] owns the top-level function table and the global scope
// of one program. [Interpreter.Run] initializes globals and calls Main;
// [Interpreter.Exec] runs further statements against the same state, as
// the REPL does.
package interp

import (
	"context"
	"io"
	"log/slog"
	"maps"
	"slices"

	"github.com/ardnew/verse/lang/ast"
	"github.com/ardnew/verse/lang/env"
	"github.com/ardnew/verse/lang/native"
	"github.com/ardnew/verse/lang/value"
	"github.com/ardnew/verse/log"
)

// Entry is the name of the function [Interpreter.Run] calls.
const Entry = "Main"

// DefaultMaxDepth bounds nested user function calls.
const DefaultMaxDepth = 1000

// Interpreter executes one program.
type Interpreter struct {
	program  []ast.Stmt
	funcs    map[string]*ast.FunctionDecl
	host     *env.Scope
	globals  *env.Scope
	bridge   *native.Bridge
	out      io.Writer
	log      log.Logger
	maxDepth int
	depth    int
	ready    bool
	preset   map[string]value.Value
}

// Option configures an [Interpreter].
type Option func(*Interpreter)

// WithBridge sets the native bridge. The default bridge holds the
// standard natives and writes to the interpreter's output.
func WithBridge(b *native.Bridge) Option {
	return func(i *Interpreter) { i.bridge = b }
}

// WithOutput sets the output of the default bridge.
func WithOutput(w io.Writer) Option {
	return func(i *Interpreter) { i.out = w }
}

// WithLogger sets the logger used to trace execution.
func WithLogger(l log.Logger) Option {
	return func(i *Interpreter) { i.log = l }
}

// WithGlobals predefines host values. Program declarations may shadow
// them.
func WithGlobals(vars map[string]value.Value) Option {
	return func(i *Interpreter) {
		if i.preset == nil {
			i.preset = make(map[string]value.Value, len(vars))
		}

		maps.Copy(i.preset, vars)
	}
}

// WithMaxDepth bounds nested user function calls. Values below one select
// [DefaultMaxDepth].
func WithMaxDepth(n int) Option {
	return func(i *Interpreter) { i.maxDepth = n }
}

// New indexes the top-level functions of program. Two top-level functions
// with the same name fail with [ErrDuplicateFunction].
func New(program []ast.Stmt, opts ...Option) (*Interpreter, error) {
	i := &Interpreter{
		program: program,
		funcs:   make(map[string]*ast.FunctionDecl),
		host:    env.New(),
	}

	for _, opt := range opts {
		opt(i)
	}

	if i.maxDepth < 1 {
		i.maxDepth = DefaultMaxDepth
	}

	if i.bridge == nil {
		i.bridge = native.New(native.WithOutput(i.out), native.WithLogger(i.log))
	}

	for _, name := range slices.Sorted(maps.Keys(i.preset)) {
		if err := i.host.Define(name, i.preset[name]); err != nil {
			return nil, err
		}
	}

	i.globals = i.host.Child()

	for _, fn := range ast.Functions(program) {
		if err := i.declare(fn); err != nil {
			return nil, err
		}
	}

	return i, nil
}

func (i *Interpreter) declare(fn *ast.FunctionDecl) error {
	name := fn.Name.Lexeme

	if prev, ok := i.funcs[name]; ok {
		return ErrDuplicateFunction.
			Detail("`"+name+"` at "+fn.Pos().String()+
				" (first declared at "+prev.Pos().String()+")").
			With(
				slog.String("name", name),
				slog.String("pos", fn.Pos().String()),
				slog.String("first", prev.Pos().String()),
			)
	}

	i.funcs[name] = fn

	return nil
}

// Run looks up Main, evaluates the top-level variable declarations in
// source order and then calls Main with no arguments. Other top-level
// statements are not executed. Without Main nothing is evaluated.
func (i *Interpreter) Run(ctx context.Context) error {
	if _, ok := i.funcs[Entry]; !ok {
		return ErrNoEntry
	}

	if err := i.Init(ctx); err != nil {
		return err
	}

	i.log.DebugContext(ctx, "run", slog.String("entry", Entry))

	_, err := i.Call(ctx, Entry)

	return err
}

// Init evaluates the top-level variable declarations into the global scope.
// Only the first call has any effect.
func (i *Interpreter) Init(ctx context.Context) error {
	if i.ready {
		return nil
	}

	i.ready = true

	for _, s := range i.program {
		if d, ok := s.(*ast.VariableDecl); ok {
			if _, err := i.exec(ctx, d, i.globals); err != nil {
				return err
			}
		}
	}

	return nil
}

// Call invokes the top-level function name with args.
func (i *Interpreter) Call(
	ctx context.Context,
	name string,
	args ...value.Value,
) (value.Value, error) {
	fn, ok := i.funcs[name]
	if !ok {
		return nil, ErrUndefinedFunction.
			Detail("`" + name + "`").
			With(slog.String("name", name))
	}

	return i.invoke(ctx, fn, args)
}

// Exec runs stmts in the global scope and returns the value of the last
// statement. Function declarations are added to the function table.
func (i *Interpreter) Exec(ctx context.Context, stmts []ast.Stmt) (value.Value, error) {
	var last value.Value

	for _, s := range stmts {
		if fn, ok := s.(*ast.FunctionDecl); ok {
			if err := i.declare(fn); err != nil {
				return nil, err
			}

			last = nil

			continue
		}

		v, err := i.exec(ctx, s, i.globals)
		if err != nil {
			return nil, err
		}

		last = v
	}

	return last, nil
}

// Global returns the value bound to name in the global scope or among the
// host values.
func (i *Interpreter) Global(name string) (value.Value, bool) {
	v, err := i.globals.Get(name)

	return v, err == nil
}

// Globals returns a copy of the bindings declared by the program.
func (i *Interpreter) Globals() map[string]value.Value {
	return i.globals.Locals()
}

// Names returns every visible global name, host values included.
func (i *Interpreter) Names() []string { return i.globals.Names() }

// Function returns the top-level function declared as name.
func (i *Interpreter) Function(name string) (*ast.FunctionDecl, bool) {
	fn, ok := i.funcs[name]

	return fn, ok
}

// Functions returns the sorted names of all top-level functions.
func (i *Interpreter) Functions() []string {
	return slices.Sorted(maps.Keys(i.funcs))
}

// Bridge returns the native bridge.
func (i *Interpreter) Bridge() *native.Bridge { return i.bridge }
