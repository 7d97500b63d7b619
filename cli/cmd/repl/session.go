package repl

import (
	"bytes"
	"context"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/ardnew/verse/lang"
	"github.com/ardnew/verse/lang/ast"
	"github.com/ardnew/verse/lang/interp"
	"github.com/ardnew/verse/lang/native"
	"github.com/ardnew/verse/lang/token"
	"github.com/ardnew/verse/lang/value"
	"github.com/ardnew/verse/log"
)

// Result is the outcome of one evaluated input.
type Result struct {
	// Output is the text written by Print while evaluating.
	Output string
	// Value is the value of the last expression statement, or nil.
	Value value.Value
}

// Session holds interpreter state across inputs. Every standard native
// the program does not declare itself is declared on load, so Print and
// friends work in an empty session.
type Session struct {
	in    *interp.Interpreter
	stmts []ast.Stmt
	out   bytes.Buffer
	log   log.Logger
}

// NewSession loads prog, which may be nil, and evaluates its top-level
// variable declarations. Main is not called.
func NewSession(ctx context.Context, prog *lang.Program, logger log.Logger) (*Session, error) {
	s := &Session{log: logger}

	if err := s.Reload(ctx, prog); err != nil {
		return nil, err
	}

	return s, nil
}

// Reload discards all state and loads prog instead.
func (s *Session) Reload(ctx context.Context, prog *lang.Program) error {
	var stmts []ast.Stmt
	if prog != nil {
		stmts = prog.Stmts
	}

	bridge := native.New(native.WithOutput(&s.out), native.WithLogger(s.log))

	stmts, err := declareNatives(ctx, bridge, stmts)
	if err != nil {
		return err
	}

	in, err := interp.New(stmts,
		interp.WithBridge(bridge),
		interp.WithOutput(&s.out),
		interp.WithLogger(s.log),
	)
	if err != nil {
		return err
	}

	if err := in.Init(ctx); err != nil {
		return err
	}

	s.in, s.stmts = in, stmts

	s.log.TraceContext(ctx, "repl session loaded",
		slog.Int("statements", len(stmts)),
		slog.Int("functions", len(in.Functions())),
	)

	return nil
}

// declareNatives prepends a declaration for each function of bridge that
// stmts does not declare.
func declareNatives(
	ctx context.Context,
	bridge *native.Bridge,
	stmts []ast.Stmt,
) ([]ast.Stmt, error) {
	declared := make(map[string]bool)
	for _, fn := range ast.Functions(stmts) {
		declared[fn.Name.Lexeme] = true
	}

	var sb strings.Builder

	for _, name := range bridge.Names() {
		if f, ok := bridge.Lookup(name); ok && !declared[name] {
			sb.WriteString(f.Signature())
			sb.WriteByte('\n')
		}
	}

	if sb.Len() == 0 {
		return stmts, nil
	}

	prelude, err := lang.ParseString(ctx, sb.String())
	if err != nil {
		return nil, err
	}

	return append(slices.Clip(prelude.Stmts), stmts...), nil
}

// Eval parses input and executes it against the session state.
// Declarations that succeed are kept for [Session.Source].
func (s *Session) Eval(ctx context.Context, input string) (Result, error) {
	prog, err := lang.ParseString(ctx, input,
		lang.WithCache(false),
		lang.WithLogger(s.log),
	)
	if err != nil {
		return Result{}, err
	}

	var res Result

	for _, stmt := range prog.Stmts {
		v, err := s.in.Exec(ctx, []ast.Stmt{stmt})

		res.Output += s.Output()

		if err != nil {
			return res, err
		}

		res.Value = v

		switch stmt.(type) {
		case *ast.FunctionDecl, *ast.VariableDecl:
			s.stmts = append(s.stmts, stmt)
		}
	}

	return res, nil
}

// Output returns and clears program output not yet reported by
// [Session.Eval], such as Print calls made while loading.
func (s *Session) Output() string {
	out := s.out.String()
	s.out.Reset()

	return out
}

// Source returns the session's declarations in canonical syntax.
func (s *Session) Source() (string, error) {
	var sb strings.Builder

	if err := ast.Format(&sb, s.stmts); err != nil {
		return "", err
	}

	return sb.String(), nil
}

// Candidates returns the sorted completion words: keywords, function
// names and visible globals.
func (s *Session) Candidates() []string {
	set := make(map[string]struct{})

	for _, list := range [][]string{
		token.Keywords(),
		s.in.Functions(),
		s.in.Names(),
	} {
		for _, w := range list {
			set[w] = struct{}{}
		}
	}

	return slices.Sorted(maps.Keys(set))
}

// IsFunction reports whether name is a declared function.
func (s *Session) IsFunction(name string) bool {
	_, ok := s.in.Function(name)

	return ok
}

// Signature returns the declaration header of function name and its
// rendered parameters.
func (s *Session) Signature(name string) (sig string, params []string, ok bool) {
	fn, ok := s.in.Function(name)
	if !ok {
		return "", nil, false
	}

	params = make([]string, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = ast.String(p)
	}

	sig = name + "(" + strings.Join(params, ", ") + ")"
	if fn.Result != nil {
		sig += " : " + ast.String(fn.Result)
	}

	return sig, params, true
}

// Entry describes one name for the list command.
type Entry struct {
	Name   string
	Detail string
}

// List describes every function and program global, functions first.
func (s *Session) List() []Entry {
	var out []Entry

	for _, name := range s.in.Functions() {
		sig, _, _ := s.Signature(name)

		kind := "func"
		if fn, _ := s.in.Function(name); fn.HasSpecifier("native") {
			kind = "native"
		}

		out = append(out, Entry{Name: name, Detail: kind + " " + sig})
	}

	globals := s.in.Globals()

	for _, name := range slices.Sorted(maps.Keys(globals)) {
		v := globals[name]
		out = append(out, Entry{
			Name:   name,
			Detail: value.KindOf(v) + " = " + value.Format(v),
		})
	}

	return out
}
