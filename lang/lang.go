package lang

import (
	"context"
	"io"
	"log/slog"

	"github.com/klauspost/readahead"

	"github.com/ardnew/verse/lang/ast"
	"github.com/ardnew/verse/lang/diag"
	"github.com/ardnew/verse/lang/interp"
	"github.com/ardnew/verse/lang/lexer"
	"github.com/ardnew/verse/lang/native"
	"github.com/ardnew/verse/lang/parser"
	"github.com/ardnew/verse/lang/token"
	"github.com/ardnew/verse/lang/value"
	"github.com/ardnew/verse/log"
)

// Program is one parsed source text. Programs returned from the cache are
// shared between callers and must not be modified.
type Program struct {
	Source string
	Tokens []token.Token
	Stmts  []ast.Stmt
}

type options struct {
	cache    bool
	log      log.Logger
	out      io.Writer
	globals  map[string]value.Value
	bridge   *native.Bridge
	maxDepth int
}

// Option configures parsing and execution.
type Option func(*options)

func makeOptions(opts ...Option) options {
	o := options{cache: true}

	for _, opt := range opts {
		opt(&o)
	}

	return o
}

// WithCache enables or disables the parse cache. It is enabled by default.
func WithCache(enable bool) Option {
	return func(o *options) { o.cache = enable }
}

// WithLogger sets the logger passed to every stage.
func WithLogger(l log.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithOutput sets where Print writes. The default is os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(o *options) { o.out = w }
}

// WithGlobals predefines host values visible to the program.
func WithGlobals(vars map[string]value.Value) Option {
	return func(o *options) { o.globals = vars }
}

// WithBridge replaces the default native bridge.
func WithBridge(b *native.Bridge) Option {
	return func(o *options) { o.bridge = b }
}

// WithMaxDepth bounds nested user function calls.
func WithMaxDepth(n int) Option {
	return func(o *options) { o.maxDepth = n }
}

// Parse reads all of r and parses it. On syntax errors it returns the
// partial program together with a *[SyntaxError].
func Parse(ctx context.Context, r io.Reader, opts ...Option) (*Program, error) {
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return nil, ErrReadInput.Wrap(err)
	}

	return ParseString(ctx, string(data), opts...)
}

// ParseString parses source. On syntax errors it returns the partial
// program together with a *[SyntaxError].
func ParseString(ctx context.Context, source string, opts ...Option) (*Program, error) {
	o := makeOptions(opts...)

	o.log.TraceContext(ctx, "read input", slog.Int("source_bytes", len(source)))

	var (
		prog  *Program
		diags []diag.Diagnostic
	)

	if o.cache {
		prog, diags = cached(ctx, source, o)
	} else {
		prog, diags = compile(ctx, source, o)
	}

	if len(diags) > 0 {
		return prog, &SyntaxError{Diagnostics: diags, Source: source}
	}

	return prog, nil
}

// compile scans and parses source.
func compile(ctx context.Context, source string, o options) (*Program, []diag.Diagnostic) {
	var diags diag.Collector

	toks := lexer.Scan(source, &diags)

	o.log.TraceContext(ctx, "scan complete",
		slog.Int("tokens", len(toks)),
		slog.Int("diagnostics", diags.Len()),
	)

	stmts := parser.Parse(toks, &diags,
		parser.WithLogger(o.log),
		parser.WithContext(ctx),
	)

	return &Program{Source: source, Tokens: toks, Stmts: stmts}, diags.Diagnostics()
}

// Interpreter returns an interpreter loaded with p.
func (p *Program) Interpreter(opts ...Option) (*interp.Interpreter, error) {
	o := makeOptions(opts...)

	iopts := []interp.Option{
		interp.WithOutput(o.out),
		interp.WithLogger(o.log),
		interp.WithMaxDepth(o.maxDepth),
	}

	if o.bridge != nil {
		iopts = append(iopts, interp.WithBridge(o.bridge))
	}

	if o.globals != nil {
		iopts = append(iopts, interp.WithGlobals(o.globals))
	}

	return interp.New(p.Stmts, iopts...)
}

// Run executes p by calling its Main function.
func (p *Program) Run(ctx context.Context, opts ...Option) error {
	in, err := p.Interpreter(opts...)
	if err != nil {
		return err
	}

	return in.Run(ctx)
}

// Run parses r and executes it. A program with syntax errors is not run.
func Run(ctx context.Context, r io.Reader, opts ...Option) error {
	prog, err := Parse(ctx, r, opts...)
	if err != nil {
		return err
	}

	return prog.Run(ctx, opts...)
}
