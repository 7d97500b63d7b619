package ast

import "fmt"

// Inspect traverses the tree rooted at n in depth-first order. It calls f
// for each node; if f returns false, the children of that node are skipped.
func Inspect(n Node, f func(Node) bool) {
	if n == nil || !f(n) {
		return
	}

	for _, c := range Children(n) {
		Inspect(c, f)
	}
}

// Children returns the direct children of n in source order.
func Children(n Node) []Node {
	var out []Node

	add := func(c Node) {
		switch c := c.(type) {
		case *TypeRef:
			if c != nil {
				out = append(out, c)
			}
		case *Block:
			if c != nil {
				out = append(out, c)
			}
		case nil:
		default:
			out = append(out, c)
		}
	}

	switch n := n.(type) {
	case *TypeRef:
		if n.Key != nil {
			add(n.Key)
		}

	case *Parameter:
		add(n.Type)

	case *FunctionDecl:
		for _, s := range n.Specifiers {
			add(s)
		}

		for _, p := range n.Params {
			add(p)
		}

		for _, e := range n.Effects {
			add(e)
		}

		add(n.Result)
		add(n.Body)

	case *VariableDecl:
		for _, s := range n.Specifiers {
			add(s)
		}

		add(n.Type)
		add(n.Init)

	case *Block:
		for _, s := range n.Stmts {
			add(s)
		}

	case *ExpressionStmt:
		add(n.X)

	case *IfExpr:
		add(n.Cond)
		add(n.Then)
		add(n.Else)

	case *BinaryExpr:
		add(n.Left)
		add(n.Right)

	case *UnaryExpr:
		add(n.X)

	case *AssignExpr:
		add(n.Value)

	case *CallExpr:
		add(n.Callee)

		for _, a := range n.Args {
			add(a)
		}

	case *GetExpr:
		add(n.X)

	case *GroupingExpr:
		add(n.X)

	case *LiteralExpr, *VariableExpr:

	default:
		panic(fmt.Sprintf("ast: unhandled node %T", n))
	}

	return out
}
