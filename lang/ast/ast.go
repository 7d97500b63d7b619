// Package ast declares the syntax tree produced by the parser.
//
// The node set is closed: [Stmt] and [Expr] have unexported marker methods,
// so every variant is declared in this file and a type switch over them can
// be checked for completeness by reading one list. Nodes are immutable once
// the parser returns them and each node owns its children.
package ast

import (
	"slices"

	"github.com/ardnew/verse/lang/token"
)

// Node is implemented by every syntax tree node.
type Node interface {
	Pos() token.Pos
	node()
}

// Stmt is a statement or declaration.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is an expression.
type Expr interface {
	Node
	exprNode()
}

// TypeRef is a type annotation: Name optionally wrapped as an array ([]T),
// a map ([K]T) and/or an optional (?T).
type TypeRef struct {
	At       token.Pos
	Name     string
	IsArray  bool
	Key      *TypeRef // map key type, nil unless this is a map
	Optional bool
}

// IsMap reports whether t is a map type.
func (t *TypeRef) IsMap() bool { return t.Key != nil }

// Parameter is one formal parameter of a function declaration.
type Parameter struct {
	Name token.Token
	Type *TypeRef
}

// FunctionDecl declares a top-level or nested function. A nil Body marks a
// declaration without implementation, such as a native function.
type FunctionDecl struct {
	Name       token.Token
	Specifiers []*TypeRef
	Params     []*Parameter
	Effects    []*TypeRef
	Result     *TypeRef
	Body       *Block
}

// HasSpecifier reports whether the declaration carries <name>.
func (d *FunctionDecl) HasSpecifier(name string) bool {
	return slices.ContainsFunc(d.Specifiers, func(t *TypeRef) bool {
		return t.Name == name
	})
}

// VariableDecl binds Name to the value of Init. Type is nil for := forms.
type VariableDecl struct {
	Name       token.Token
	Specifiers []*TypeRef
	Type       *TypeRef
	Init       Expr
	Mutable    bool
}

// Block is a braced statement list with its own scope.
type Block struct {
	LBrace token.Pos
	Stmts  []Stmt
	// Keyword is true for an explicit "block { ... }" statement.
	Keyword bool
}

// ExpressionStmt evaluates X for its effects.
type ExpressionStmt struct {
	X Expr
}

// IfExpr evaluates exactly one of Then or Else. Else is nil when absent.
type IfExpr struct {
	If   token.Pos
	Cond Expr
	Then *Block
	Else *Block
}

// BinaryExpr applies an infix operator.
type BinaryExpr struct {
	Left  Expr
	Op    token.Token
	Right Expr
}

// UnaryExpr applies a prefix operator (- or not).
type UnaryExpr struct {
	Op token.Token
	X  Expr
}

// AssignExpr stores Value into an existing variable.
type AssignExpr struct {
	Name  token.Token
	Value Expr
}

// CallExpr calls Callee with Args.
type CallExpr struct {
	Callee Expr
	Paren  token.Token // closing parenthesis
	Args   []Expr
}

// GetExpr selects Name from X.
type GetExpr struct {
	X    Expr
	Name token.Token
}

// GroupingExpr is a parenthesized expression.
type GroupingExpr struct {
	LParen token.Pos
	X      Expr
}

// LiteralExpr is a boolean, number or string constant. Value holds a bool,
// int64, float64 or string.
type LiteralExpr struct {
	Token token.Token
	Value any
}

// VariableExpr names a variable or function.
type VariableExpr struct {
	Name token.Token
}

func (t *TypeRef) Pos() token.Pos        { return t.At }
func (p *Parameter) Pos() token.Pos      { return p.Name.Pos }
func (d *FunctionDecl) Pos() token.Pos   { return d.Name.Pos }
func (d *VariableDecl) Pos() token.Pos   { return d.Name.Pos }
func (b *Block) Pos() token.Pos          { return b.LBrace }
func (s *ExpressionStmt) Pos() token.Pos { return s.X.Pos() }
func (e *IfExpr) Pos() token.Pos         { return e.If }
func (e *BinaryExpr) Pos() token.Pos     { return e.Left.Pos() }
func (e *UnaryExpr) Pos() token.Pos      { return e.Op.Pos }
func (e *AssignExpr) Pos() token.Pos     { return e.Name.Pos }
func (e *CallExpr) Pos() token.Pos       { return e.Callee.Pos() }
func (e *GetExpr) Pos() token.Pos        { return e.X.Pos() }
func (e *GroupingExpr) Pos() token.Pos   { return e.LParen }
func (e *LiteralExpr) Pos() token.Pos    { return e.Token.Pos }
func (e *VariableExpr) Pos() token.Pos   { return e.Name.Pos }

func (*TypeRef) node()        {}
func (*Parameter) node()      {}
func (*FunctionDecl) node()   {}
func (*VariableDecl) node()   {}
func (*Block) node()          {}
func (*ExpressionStmt) node() {}
func (*IfExpr) node()         {}
func (*BinaryExpr) node()     {}
func (*UnaryExpr) node()      {}
func (*AssignExpr) node()     {}
func (*CallExpr) node()       {}
func (*GetExpr) node()        {}
func (*GroupingExpr) node()   {}
func (*LiteralExpr) node()    {}
func (*VariableExpr) node()   {}

func (*FunctionDecl) stmtNode()   {}
func (*VariableDecl) stmtNode()   {}
func (*Block) stmtNode()          {}
func (*ExpressionStmt) stmtNode() {}

func (*IfExpr) exprNode()       {}
func (*BinaryExpr) exprNode()   {}
func (*UnaryExpr) exprNode()    {}
func (*AssignExpr) exprNode()   {}
func (*CallExpr) exprNode()     {}
func (*GetExpr) exprNode()      {}
func (*GroupingExpr) exprNode() {}
func (*LiteralExpr) exprNode()  {}
func (*VariableExpr) exprNode() {}

// Unparen strips any grouping parentheses around e.
func Unparen(e Expr) Expr {
	for {
		g, ok := e.(*GroupingExpr)
		if !ok {
			return e
		}

		e = g.X
	}
}

// Functions returns the function declarations in stmts, in order.
func Functions(stmts []Stmt) []*FunctionDecl {
	var out []*FunctionDecl

	for _, s := range stmts {
		if fn, ok := s.(*FunctionDecl); ok {
			out = append(out, fn)
		}
	}

	return out
}
