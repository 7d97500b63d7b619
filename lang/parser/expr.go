package parser

import (
	"github.com/ardnew/verse/lang/ast"
	"github.com/ardnew/verse/lang/token"
)

// Expression precedence, lowest first:
//
//	assignment  → IDENT "=" assignment | ifExpr
//	ifExpr      → "if" "(" ifExpr ")" block [ "else" ( block | ifExpr ) ] | equality
//	equality    → comparison ( "=" comparison )*
//	comparison  → term ( ( ">" | ">=" | "<" | "<=" ) term )*
//	term        → factor ( ( "-" | "+" ) factor )*
//	factor      → unary ( ( "/" | "*" ) unary )*
//	unary       → ( "-" | "not" ) unary | call
//	call        → primary ( "(" arguments? ")" | "." IDENT )*
//	primary     → "true" | "false" | INTEGER | FLOAT | STRING | IDENT
//	            | "(" ifExpr ")"
//
// "=" is both assignment and equality. A name directly followed by "=" at
// assignment precedence assigns; everywhere else "=" compares. Conditions
// and parenthesized groups start below assignment, so (x = 1) compares.

func (p *parser) expression() (ast.Expr, error) {
	return p.assignment()
}

func (p *parser) assignment() (ast.Expr, error) {
	if p.check(token.Identifier) && p.peekNext().Kind == token.Equal {
		name := p.advance()
		p.advance()

		value, err := p.assignment()
		if err != nil {
			return nil, err
		}

		return &ast.AssignExpr{Name: name, Value: value}, nil
	}

	x, err := p.ifExpr()
	if err != nil {
		return nil, err
	}

	if p.check(token.Equal) {
		return nil, p.errorf("Invalid assignment target")
	}

	// A call, property or group on the left of "=" reads as an attempted
	// assignment, not a comparison.
	if b, ok := x.(*ast.BinaryExpr); ok && b.Op.Kind == token.Equal {
		switch b.Left.(type) {
		case *ast.CallExpr, *ast.GetExpr, *ast.GroupingExpr:
			return nil, p.errorAt(b.Op, "Invalid assignment target")
		}
	}

	return x, nil
}

func (p *parser) ifExpr() (ast.Expr, error) {
	if !p.match(token.If) {
		return p.equality()
	}

	ifTok := p.previous()

	if _, err := p.expect(token.LeftParen, "to open if condition"); err != nil {
		return nil, err
	}

	cond, err := p.ifExpr()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(token.RightParen, "to close if condition"); err != nil {
		return nil, err
	}

	then, err := p.block("to start if body")
	if err != nil {
		return nil, err
	}

	x := &ast.IfExpr{If: ifTok.Pos, Cond: cond, Then: then}

	if !p.match(token.Else) {
		return x, nil
	}

	if p.check(token.If) {
		at := p.peek().Pos

		nested, err := p.ifExpr()
		if err != nil {
			return nil, err
		}

		x.Else = &ast.Block{
			LBrace: at,
			Stmts:  []ast.Stmt{&ast.ExpressionStmt{X: nested}},
		}

		return x, nil
	}

	if x.Else, err = p.block("after keyword `else`"); err != nil {
		return nil, err
	}

	return x, nil
}

// binary parses a left-associative chain of operand separated by ops.
func (p *parser) binary(
	operand func() (ast.Expr, error),
	ops ...token.Kind,
) (ast.Expr, error) {
	left, err := operand()
	if err != nil {
		return nil, err
	}

	for p.match(ops...) {
		op := p.previous()

		right, err := operand()
		if err != nil {
			return nil, err
		}

		left = &ast.BinaryExpr{Left: left, Op: op, Right: right}
	}

	return left, nil
}

func (p *parser) equality() (ast.Expr, error) {
	return p.binary(p.comparison, token.Equal)
}

func (p *parser) comparison() (ast.Expr, error) {
	return p.binary(p.term,
		token.Greater, token.GreaterEqual, token.Less, token.LessEqual)
}

func (p *parser) term() (ast.Expr, error) {
	return p.binary(p.factor, token.Minus, token.Plus)
}

func (p *parser) factor() (ast.Expr, error) {
	return p.binary(p.unary, token.Slash, token.Star)
}

func (p *parser) unary() (ast.Expr, error) {
	if p.match(token.Minus, token.Not) {
		op := p.previous()

		x, err := p.unary()
		if err != nil {
			return nil, err
		}

		return &ast.UnaryExpr{Op: op, X: x}, nil
	}

	return p.call()
}

func (p *parser) call() (ast.Expr, error) {
	x, err := p.primary()
	if err != nil {
		return nil, err
	}

	for {
		switch {
		case p.match(token.LeftParen):
			if x, err = p.finishCall(x); err != nil {
				return nil, err
			}

		case p.match(token.Dot):
			name, err := p.expect(token.Identifier, "for property name")
			if err != nil {
				return nil, err
			}

			x = &ast.GetExpr{X: x, Name: name}

		default:
			return x, nil
		}
	}
}

func (p *parser) finishCall(callee ast.Expr) (ast.Expr, error) {
	var args []ast.Expr

	if !p.check(token.RightParen) {
		for {
			if len(args) >= MaxArgs {
				return nil, p.errorf("Cannot have more than %d arguments", MaxArgs)
			}

			arg, err := p.expression()
			if err != nil {
				return nil, err
			}

			args = append(args, arg)

			if !p.match(token.Comma) {
				break
			}
		}
	}

	paren, err := p.expect(token.RightParen, "to close argument list")
	if err != nil {
		return nil, err
	}

	return &ast.CallExpr{Callee: callee, Paren: paren, Args: args}, nil
}

func (p *parser) primary() (ast.Expr, error) {
	tok := p.peek()

	switch tok.Kind {
	case token.True, token.False:
		p.advance()

		return &ast.LiteralExpr{Token: tok, Value: tok.Kind == token.True}, nil

	case token.Integer, token.Float, token.String:
		p.advance()

		return &ast.LiteralExpr{Token: tok, Value: tok.Literal}, nil

	case token.Identifier, token.Block, token.Spawn:
		p.advance()

		return &ast.VariableExpr{Name: tok}, nil

	case token.LeftParen:
		p.advance()

		x, err := p.ifExpr()
		if err != nil {
			return nil, err
		}

		if _, err := p.expect(token.RightParen, "to close group"); err != nil {
			return nil, err
		}

		return &ast.GroupingExpr{LParen: tok.Pos, X: x}, nil
	}

	return nil, p.errorf("Expected expression, instead got {peek}")
}
