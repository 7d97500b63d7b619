// Package parser builds syntax trees from token streams by recursive
// descent.
//
// Declarations and expression statements can share a prefix (x < 3 versus
// x<public> := 3, F(a) versus F(a: int): int = {...}). The parser resolves
// this with a single checkpoint: it records the cursor, tries the
// declaration form, and either commits or rewinds to parse an expression.
// At most one checkpoint exists at a time, so every declaration costs at
// most one rewind.
//
// Syntax errors are reported to a [diag.Collector]. After an error the
// parser skips to the next statement boundary and continues, so a single
// pass reports every malformed statement.
package parser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ardnew/verse/lang/ast"
	"github.com/ardnew/verse/lang/diag"
	"github.com/ardnew/verse/lang/token"
	"github.com/ardnew/verse/log"
	"github.com/ardnew/verse/pkg"
)

// MaxArgs is the maximum number of arguments in a call and of parameters in
// a function declaration.
const MaxArgs = 255

// ErrCheckpoint is raised when the single-checkpoint discipline is broken.
var ErrCheckpoint = pkg.NewInternalError("parser checkpoint misuse")

// Option configures a parse.
type Option func(*parser)

// WithLogger logs parse progress at trace level.
func WithLogger(l log.Logger) Option {
	return func(p *parser) { p.log = l }
}

// WithContext sets the context used for log records.
func WithContext(ctx context.Context) Option {
	return func(p *parser) { p.ctx = ctx }
}

// Parse parses toks into top-level statements. Malformed statements are
// reported to diags and left out of the result.
func Parse(toks []token.Token, diags *diag.Collector, opts ...Option) []ast.Stmt {
	if diags == nil {
		diags = &diag.Collector{}
	}

	if n := len(toks); n == 0 || toks[n-1].Kind != token.EOF {
		var at token.Pos
		if n > 0 {
			at = toks[n-1].Pos
		}

		toks = append(toks[:n:n], token.Token{Kind: token.EOF, Pos: at})
	}

	p := &parser{toks: toks, diags: diags, ctx: context.Background()}

	for _, opt := range opts {
		opt(p)
	}

	stmts, err := p.program()
	if err != nil {
		diags.Report(diag.PhaseInternal, p.peek().Pos, err.Error())

		return nil
	}

	p.log.TraceContext(p.ctx, "parse complete",
		slog.Int("tokens", len(toks)),
		slog.Int("statements", len(stmts)),
		slog.Int("backtracks", p.backtracks),
		slog.Int("diagnostics", diags.Len()),
	)

	return stmts
}

type checkpoint struct {
	active bool
	cur    int
}

type parser struct {
	toks  []token.Token
	cur   int
	cp    checkpoint
	diags *diag.Collector

	log        log.Logger
	ctx        context.Context
	backtracks int
}

// program parses the whole token stream, converting a checkpoint panic into
// an error.
func (p *parser) program() (stmts []ast.Stmt, err error) {
	defer func() {
		if r := recover(); r != nil {
			e, ok := r.(error)
			if !ok || !errors.Is(e, ErrCheckpoint) {
				panic(r)
			}

			err = e
		}
	}()

	return p.statements(token.EOF), nil
}

// syntaxError is a parse failure at a token.
type syntaxError struct {
	pos token.Pos
	msg string
}

func (e *syntaxError) Error() string { return e.msg }

// Cursor movement.

func (p *parser) peek() token.Token { return p.toks[p.cur] }

func (p *parser) peekNext() token.Token {
	return p.toks[min(p.cur+1, len(p.toks)-1)]
}

func (p *parser) previous() token.Token {
	if p.cur == 0 {
		return token.Token{}
	}

	return p.toks[p.cur-1]
}

func (p *parser) atEnd() bool { return p.peek().Kind == token.EOF }

func (p *parser) advance() token.Token {
	if !p.atEnd() {
		p.cur++
	}

	return p.previous()
}

func (p *parser) check(kinds ...token.Kind) bool {
	k := p.peek().Kind
	for _, want := range kinds {
		if k == want {
			return true
		}
	}

	return false
}

func (p *parser) match(kinds ...token.Kind) bool {
	if p.check(kinds...) {
		p.advance()

		return true
	}

	return false
}

func (p *parser) skipNewLines() {
	for p.match(token.NewLine) {
	}
}

// Checkpoint discipline: try records the cursor; commit discards the record;
// restore rewinds to it. Nesting or unbalanced calls panic with
// ErrCheckpoint.

func (p *parser) try() {
	if p.cp.active {
		panic(ErrCheckpoint.Detail("(try while a checkpoint is active)").
			With(slog.Int("saved", p.cp.cur), slog.Int("cursor", p.cur)))
	}

	p.cp = checkpoint{active: true, cur: p.cur}
}

func (p *parser) commit() {
	if !p.cp.active {
		panic(ErrCheckpoint.Detail("(commit without checkpoint)"))
	}

	p.cp.active = false
}

func (p *parser) restore() {
	if !p.cp.active {
		panic(ErrCheckpoint.Detail("(restore without checkpoint)"))
	}

	p.cur, p.cp.active = p.cp.cur, false
	p.backtracks++
}

// Diagnostics.

// errorf builds a syntax error at the current token. The message may refer
// to {peek}, {peekNext} and {peekPrev}, which are replaced by the
// descriptions of those tokens.
func (p *parser) errorf(format string, args ...any) error {
	return p.errorAt(p.peek(), format, args...)
}

func (p *parser) errorAt(at token.Token, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	msg = strings.NewReplacer(
		"{peek}", p.peek().Describe(),
		"{peekNext}", p.peekNext().Describe(),
		"{peekPrev}", p.previous().Describe(),
	).Replace(msg)

	return &syntaxError{pos: at.Pos, msg: msg}
}

func (p *parser) expect(kind token.Kind, context string) (token.Token, error) {
	if p.check(kind) {
		return p.advance(), nil
	}

	msg := "Expected " + kind.Describe()
	if context != "" {
		msg += " " + context
	}

	if p.cur > 0 {
		msg += " after {peekPrev}"
	}

	return token.Token{}, p.errorf("%s, instead got {peek}", msg)
}

func (p *parser) report(err error) {
	var se *syntaxError
	if errors.As(err, &se) {
		p.diags.Report(diag.PhaseParse, se.pos, se.msg)

		return
	}

	p.diags.Report(diag.PhaseParse, p.peek().Pos, err.Error())
}

// synchronize discards tokens until a likely statement boundary. It always
// consumes at least one token, except that the closing brace of the
// enclosing block (end) is left for the block to consume. Closing braces
// only count as a boundary inside a block.
func (p *parser) synchronize(end token.Kind) {
	if !p.check(end) {
		p.advance()
	}

	for !p.atEnd() {
		switch p.previous().Kind {
		case token.Semicolon, token.NewLine:
			return
		}

		switch p.peek().Kind {
		case token.Semicolon, token.NewLine,
			token.Var, token.For, token.If, token.Return:
			return
		case token.RightBrace:
			if end == token.RightBrace {
				return
			}
		}

		p.advance()
	}
}

// Statements.

// statements parses declarations until end (EOF or a closing brace, which is
// left for the caller).
func (p *parser) statements(end token.Kind) []ast.Stmt {
	var out []ast.Stmt

	for {
		for p.match(token.NewLine, token.Semicolon) {
		}

		if p.check(end) || p.atEnd() {
			return out
		}

		stmt, err := p.declaration()
		if err == nil {
			err = p.terminator()
		}

		if err != nil {
			p.report(err)
			p.synchronize(end)
			p.match(token.Semicolon, token.NewLine)

			continue
		}

		out = append(out, stmt)
	}
}

// terminator consumes the end of a statement. A closing brace or end of
// input also ends a statement but is not consumed.
func (p *parser) terminator() error {
	if p.check(token.RightBrace) || p.atEnd() {
		return nil
	}

	if p.match(token.Semicolon, token.NewLine) {
		return nil
	}

	return p.errorf("Unexpected {peek} following expression")
}

// declStart lists the tokens that may follow a declared name.
func declStart(k token.Kind) bool {
	switch k {
	case token.Colon, token.Less, token.LeftParen, token.Define:
		return true
	default:
		return false
	}
}

func (p *parser) declaration() (ast.Stmt, error) {
	if p.match(token.Var) {
		name, err := p.expect(token.Identifier, "for variable name")
		if err != nil {
			return nil, err
		}

		specs, err := p.specifiers()
		if err != nil {
			return nil, err
		}

		return p.variableDecl(name, specs, true)
	}

	if !p.check(token.Identifier) || !declStart(p.peekNext().Kind) {
		return p.statement()
	}

	p.try()

	name := p.advance()

	specs, err := p.specifiers()
	if err != nil {
		// Not a specifier list after all, as in "x < 3".
		p.restore()

		return p.statement()
	}

	switch {
	case p.check(token.Colon, token.Define):
		p.commit()

		return p.variableDecl(name, specs, false)

	case p.check(token.LeftParen) && p.functionAhead():
		p.commit()

		return p.functionDecl(name, specs)
	}

	p.restore()

	return p.statement()
}

// functionAhead reports, without consuming input, whether the parenthesized
// list at the cursor is followed by ":" (after any <effect> annotations),
// which marks a function declaration rather than a call.
func (p *parser) functionAhead() bool {
	depth := 0

	for i := p.cur; i < len(p.toks); i++ {
		switch p.toks[i].Kind {
		case token.LeftParen:
			depth++

		case token.RightParen:
			depth--
			if depth > 0 {
				continue
			}

			j := i + 1
			for j+2 < len(p.toks) &&
				p.toks[j].Kind == token.Less &&
				p.toks[j+1].Kind == token.Identifier &&
				p.toks[j+2].Kind == token.Greater {
				j += 3
			}

			return j < len(p.toks) && p.toks[j].Kind == token.Colon

		case token.Semicolon, token.NewLine, token.RightBrace, token.EOF:
			return false
		}
	}

	return false
}

func (p *parser) variableDecl(
	name token.Token,
	specs []*ast.TypeRef,
	mutable bool,
) (ast.Stmt, error) {
	decl := &ast.VariableDecl{Name: name, Specifiers: specs, Mutable: mutable}

	if p.match(token.Define) {
		if mutable {
			return nil, p.errorAt(p.previous(), "Missing type for `var` definition")
		}
	} else {
		if _, err := p.expect(token.Colon, "in variable declaration"); err != nil {
			return nil, err
		}

		t, err := p.typeRef()
		if err != nil {
			return nil, err
		}

		decl.Type = t

		if _, err := p.expect(token.Equal, "before variable initializer"); err != nil {
			return nil, err
		}
	}

	init, err := p.expression()
	if err != nil {
		return nil, err
	}

	decl.Init = init

	return decl, nil
}

func (p *parser) functionDecl(name token.Token, specs []*ast.TypeRef) (ast.Stmt, error) {
	fn := &ast.FunctionDecl{Name: name, Specifiers: specs}

	if _, err := p.expect(token.LeftParen, "to open parameter list"); err != nil {
		return nil, err
	}

	if !p.check(token.RightParen) {
		for {
			if len(fn.Params) >= MaxArgs {
				return nil, p.errorf("Cannot have more than %d parameters", MaxArgs)
			}

			pname, err := p.expect(token.Identifier, "for parameter name")
			if err != nil {
				return nil, err
			}

			if _, err := p.expect(token.Colon, "after parameter name"); err != nil {
				return nil, err
			}

			t, err := p.typeRef()
			if err != nil {
				return nil, err
			}

			fn.Params = append(fn.Params, &ast.Parameter{Name: pname, Type: t})

			if !p.match(token.Comma) {
				break
			}
		}
	}

	if _, err := p.expect(token.RightParen, "to close parameter list"); err != nil {
		return nil, err
	}

	effects, err := p.specifiers()
	if err != nil {
		return nil, err
	}

	fn.Effects = effects

	if _, err := p.expect(token.Colon, "before return type"); err != nil {
		return nil, err
	}

	if fn.Result, err = p.typeRef(); err != nil {
		return nil, err
	}

	if p.match(token.Equal) {
		p.skipNewLines()

		if fn.Body, err = p.block("to start function body"); err != nil {
			return nil, err
		}
	}

	return fn, nil
}

// specifiers parses zero or more <Type> annotations.
func (p *parser) specifiers() ([]*ast.TypeRef, error) {
	var out []*ast.TypeRef

	for p.match(token.Less) {
		t, err := p.typeRef()
		if err != nil {
			return nil, err
		}

		if _, err := p.expect(token.Greater, "to close specifier"); err != nil {
			return nil, err
		}

		out = append(out, t)
	}

	return out, nil
}

// typeRef parses [ "[" [Key] "]" ] [ "?" ] Name.
func (p *parser) typeRef() (*ast.TypeRef, error) {
	t := &ast.TypeRef{At: p.peek().Pos}

	if p.match(token.LeftBracket) {
		if p.match(token.RightBracket) {
			t.IsArray = true
		} else {
			key, err := p.typeRef()
			if err != nil {
				return nil, err
			}

			if _, err := p.expect(token.RightBracket, "to close map key type"); err != nil {
				return nil, err
			}

			t.Key = key
		}
	}

	t.Optional = p.match(token.Question)

	name, err := p.expect(token.Identifier, "for type name")
	if err != nil {
		return nil, err
	}

	t.Name = name.Lexeme

	return t, nil
}

func (p *parser) statement() (ast.Stmt, error) {
	if p.check(token.Block) && p.peekNext().Kind == token.LeftBrace {
		p.advance()

		b, err := p.block("after keyword `block`")
		if err != nil {
			return nil, err
		}

		b.Keyword = true

		return b, nil
	}

	x, err := p.expression()
	if err != nil {
		return nil, err
	}

	return &ast.ExpressionStmt{X: x}, nil
}

// block parses "{" statements "}".
func (p *parser) block(context string) (*ast.Block, error) {
	lb, err := p.expect(token.LeftBrace, context)
	if err != nil {
		return nil, err
	}

	stmts := p.statements(token.RightBrace)

	if _, err := p.expect(token.RightBrace, "to close block"); err != nil {
		return nil, err
	}

	return &ast.Block{LBrace: lb.Pos, Stmts: stmts}, nil
}
