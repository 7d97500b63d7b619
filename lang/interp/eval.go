package interp

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ardnew/verse/lang/ast"
	"github.com/ardnew/verse/lang/env"
	"github.com/ardnew/verse/lang/token"
	"github.com/ardnew/verse/lang/value"
	"github.com/ardnew/verse/pkg"
)

// nativeSpecifier marks a function implemented by the bridge.
const nativeSpecifier = "native"

func (i *Interpreter) invoke(
	ctx context.Context,
	fn *ast.FunctionDecl,
	args []value.Value,
) (value.Value, error) {
	name := fn.Name.Lexeme

	if fn.HasSpecifier(nativeSpecifier) {
		return i.bridge.Call(ctx, name, args)
	}

	if fn.Body == nil {
		return nil, ErrNoBody.
			Detail("`" + name + "`").
			With(slog.String("name", name), slog.String("pos", fn.Pos().String()))
	}

	if len(args) != len(fn.Params) {
		return nil, ErrArity.
			Detail(fmt.Sprintf("for `%s`: expected %d, got %d",
				name, len(fn.Params), len(args))).
			With(
				slog.String("name", name),
				slog.Int("expected", len(fn.Params)),
				slog.Int("got", len(args)),
			)
	}

	if i.depth >= i.maxDepth {
		return nil, ErrMaxDepth.
			Detail(fmt.Sprintf("(%d) calling `%s`", i.maxDepth, name)).
			With(slog.String("name", name), slog.Int("depth", i.depth))
	}

	i.depth++
	defer func() { i.depth-- }()

	i.log.TraceContext(ctx, "call",
		slog.String("name", name),
		slog.Int("depth", i.depth),
	)

	scope := i.globals.Child()

	for j, p := range fn.Params {
		if err := scope.Define(p.Name.Lexeme, args[j]); err != nil {
			return nil, located(err, p.Pos())
		}
	}

	return i.execAll(ctx, fn.Body.Stmts, scope)
}

// execAll runs stmts in scope and returns the value of the last one.
func (i *Interpreter) execAll(
	ctx context.Context,
	stmts []ast.Stmt,
	scope *env.Scope,
) (value.Value, error) {
	var last value.Value

	for _, s := range stmts {
		v, err := i.exec(ctx, s, scope)
		if err != nil {
			return nil, err
		}

		last = v
	}

	return last, nil
}

// exec runs one statement. Only expression statements produce a value.
func (i *Interpreter) exec(
	ctx context.Context,
	s ast.Stmt,
	scope *env.Scope,
) (value.Value, error) {
	switch s := s.(type) {
	case *ast.ExpressionStmt:
		return i.eval(ctx, s.X, scope)

	case *ast.VariableDecl:
		v, err := i.eval(ctx, s.Init, scope)
		if err != nil {
			return nil, err
		}

		if err := scope.Define(s.Name.Lexeme, v); err != nil {
			return nil, located(err, s.Pos())
		}

		return nil, nil

	case *ast.Block:
		_, err := i.execAll(ctx, s.Stmts, scope.Child())

		return nil, err

	case *ast.FunctionDecl:
		return nil, ErrUnsupported.
			Detail("nested function declaration `"+s.Name.Lexeme+"`").
			With(slog.String("pos", s.Pos().String()))

	default:
		return nil, unknownNode(s)
	}
}

func (i *Interpreter) eval(
	ctx context.Context,
	e ast.Expr,
	scope *env.Scope,
) (value.Value, error) {
	switch e := e.(type) {
	case *ast.LiteralExpr:
		v, ok := value.Of(e.Value)
		if !ok {
			return nil, unknownNode(e)
		}

		return v, nil

	case *ast.VariableExpr:
		v, err := scope.Get(e.Name.Lexeme)
		if err != nil {
			return nil, located(err, e.Pos())
		}

		return v, nil

	case *ast.GroupingExpr:
		return i.eval(ctx, e.X, scope)

	case *ast.UnaryExpr:
		return i.unary(ctx, e, scope)

	case *ast.BinaryExpr:
		return i.binary(ctx, e, scope)

	case *ast.AssignExpr:
		v, err := i.eval(ctx, e.Value, scope)
		if err != nil {
			return nil, err
		}

		if err := scope.Assign(e.Name.Lexeme, v); err != nil {
			return nil, located(err, e.Pos())
		}

		return v, nil

	case *ast.IfExpr:
		return i.ifExpr(ctx, e, scope)

	case *ast.CallExpr:
		return i.call(ctx, e, scope)

	case *ast.GetExpr:
		return nil, ErrUnsupported.
			Detail("property access `."+e.Name.Lexeme+"`").
			With(slog.String("pos", e.Name.Pos.String()))

	default:
		return nil, unknownNode(e)
	}
}

func (i *Interpreter) unary(
	ctx context.Context,
	e *ast.UnaryExpr,
	scope *env.Scope,
) (value.Value, error) {
	x, err := i.eval(ctx, e.X, scope)
	if err != nil {
		return nil, err
	}

	switch e.Op.Kind {
	case token.Minus:
		v, err := value.Neg(x)
		if err != nil {
			return nil, located(err, e.Op.Pos)
		}

		return v, nil

	case token.Not:
		return value.Not(x), nil
	}

	return nil, unknownOperator(e.Op)
}

var binaryOps = map[token.Kind]func(a, b value.Value) (value.Value, error){
	token.Plus:         value.Add,
	token.Minus:        value.Sub,
	token.Star:         value.Mul,
	token.Slash:        value.Div,
	token.Greater:      value.Greater,
	token.GreaterEqual: value.GreaterEqual,
	token.Less:         value.Less,
	token.LessEqual:    value.LessEqual,
	token.Equal:        value.Equal,
}

func (i *Interpreter) binary(
	ctx context.Context,
	e *ast.BinaryExpr,
	scope *env.Scope,
) (value.Value, error) {
	op, ok := binaryOps[e.Op.Kind]
	if !ok {
		return nil, unknownOperator(e.Op)
	}

	a, err := i.eval(ctx, e.Left, scope)
	if err != nil {
		return nil, err
	}

	b, err := i.eval(ctx, e.Right, scope)
	if err != nil {
		return nil, err
	}

	v, err := op(a, b)
	if err != nil {
		return nil, located(err, e.Op.Pos)
	}

	return v, nil
}

func (i *Interpreter) ifExpr(
	ctx context.Context,
	e *ast.IfExpr,
	scope *env.Scope,
) (value.Value, error) {
	c, err := i.eval(ctx, e.Cond, scope)
	if err != nil {
		return nil, err
	}

	cond, ok := c.(value.Bool)
	if !ok {
		return nil, ErrTypeMismatch.
			Detail("for if condition: expected logic, got "+value.KindOf(c)).
			With(slog.String("pos", e.Cond.Pos().String()))
	}

	branch := e.Else
	if cond {
		branch = e.Then
	}

	if branch == nil {
		return nil, nil
	}

	return i.execAll(ctx, branch.Stmts, scope.Child())
}

func (i *Interpreter) call(
	ctx context.Context,
	e *ast.CallExpr,
	scope *env.Scope,
) (value.Value, error) {
	callee, ok := e.Callee.(*ast.VariableExpr)
	if !ok {
		return nil, ErrNotCallable.
			Detail("`"+ast.String(e.Callee)+"`").
			With(slog.String("pos", e.Callee.Pos().String()))
	}

	name := callee.Name.Lexeme

	fn, ok := i.funcs[name]
	if !ok {
		return nil, ErrUndefinedFunction.
			Detail("`"+name+"`").
			With(slog.String("name", name), slog.String("pos", e.Pos().String()))
	}

	args := make([]value.Value, len(e.Args))

	for j, a := range e.Args {
		v, err := i.eval(ctx, a, scope)
		if err != nil {
			return nil, err
		}

		args[j] = v
	}

	v, err := i.invoke(ctx, fn, args)
	if err != nil {
		return nil, pkg.WrapError(err).
			With(slog.String("call", name+"@"+e.Paren.Pos.String()))
	}

	return v, nil
}

func unknownNode(n ast.Node) error {
	if n == nil {
		return ErrUnknownNode.Detail("<nil>")
	}

	return ErrUnknownNode.
		Detail(ast.Kind(n)).
		With(slog.String("kind", ast.Kind(n)), slog.String("pos", n.Pos().String()))
}

func unknownOperator(op token.Token) error {
	return ErrUnknownOperator.
		Detail("`"+op.Lexeme+"`").
		With(slog.String("op", op.Lexeme), slog.String("pos", op.Pos.String()))
}
