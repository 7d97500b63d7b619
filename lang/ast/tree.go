package ast

import (
	"fmt"
	"io"
	"strings"
)

// Tree converts n to nested maps and slices suitable for JSON or YAML
// encoding. Every node map has a "kind" key naming the variant and a "pos"
// key holding "line:col".
func Tree(n Node) map[string]any {
	if n == nil {
		return nil
	}

	m := map[string]any{
		"kind": Kind(n),
		"pos":  n.Pos().String(),
	}

	switch n := n.(type) {
	case *TypeRef:
		m["name"] = n.Name
		if n.IsArray {
			m["array"] = true
		}

		if n.Key != nil {
			m["key"] = Tree(n.Key)
		}

		if n.Optional {
			m["optional"] = true
		}

	case *Parameter:
		m["name"] = n.Name.Lexeme
		m["type"] = treeType(n.Type)

	case *FunctionDecl:
		m["name"] = n.Name.Lexeme
		m["specifiers"] = typeNames(n.Specifiers)
		m["effects"] = typeNames(n.Effects)

		params := make([]any, len(n.Params))
		for i, p := range n.Params {
			params[i] = Tree(p)
		}

		m["params"] = params
		m["result"] = treeType(n.Result)

		if n.Body != nil {
			m["body"] = Trees(n.Body.Stmts)
		}

	case *VariableDecl:
		m["name"] = n.Name.Lexeme
		m["mutable"] = n.Mutable
		m["specifiers"] = typeNames(n.Specifiers)
		m["type"] = treeType(n.Type)
		m["init"] = Tree(n.Init)

	case *Block:
		m["stmts"] = Trees(n.Stmts)

	case *ExpressionStmt:
		m["expr"] = Tree(n.X)

	case *IfExpr:
		m["cond"] = Tree(n.Cond)
		m["then"] = Trees(n.Then.Stmts)

		if n.Else != nil {
			m["else"] = Trees(n.Else.Stmts)
		}

	case *BinaryExpr:
		m["op"] = n.Op.Lexeme
		m["left"] = Tree(n.Left)
		m["right"] = Tree(n.Right)

	case *UnaryExpr:
		m["op"] = n.Op.Lexeme
		m["operand"] = Tree(n.X)

	case *AssignExpr:
		m["name"] = n.Name.Lexeme
		m["value"] = Tree(n.Value)

	case *CallExpr:
		m["callee"] = Tree(n.Callee)

		args := make([]any, len(n.Args))
		for i, a := range n.Args {
			args[i] = Tree(a)
		}

		m["args"] = args

	case *GetExpr:
		m["object"] = Tree(n.X)
		m["name"] = n.Name.Lexeme

	case *GroupingExpr:
		m["expr"] = Tree(n.X)

	case *LiteralExpr:
		m["value"] = n.Value

	case *VariableExpr:
		m["name"] = n.Name.Lexeme

	default:
		panic(fmt.Sprintf("ast: unhandled node %T", n))
	}

	return m
}

// Trees converts each statement with [Tree].
func Trees(stmts []Stmt) []any {
	out := make([]any, len(stmts))
	for i, s := range stmts {
		out[i] = Tree(s)
	}

	return out
}

func treeType(t *TypeRef) any {
	if t == nil {
		return nil
	}

	return String(t)
}

func typeNames(ts []*TypeRef) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = String(t)
	}

	return out
}

// Kind returns the variant name of n, such as "FunctionDecl".
func Kind(n Node) string {
	return strings.TrimPrefix(fmt.Sprintf("%T", n), "*ast.")
}

// Dump writes an indented outline of stmts, one node per line.
func Dump(w io.Writer, stmts []Stmt) error {
	var sb strings.Builder

	for _, s := range stmts {
		dump(&sb, s, 0)
	}

	_, err := io.WriteString(w, sb.String())

	return err
}

func dump(sb *strings.Builder, n Node, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))
	sb.WriteString(Kind(n))
	sb.WriteString(" @")
	sb.WriteString(n.Pos().String())

	if d := detail(n); d != "" {
		sb.WriteByte(' ')
		sb.WriteString(d)
	}

	sb.WriteByte('\n')

	for _, c := range Children(n) {
		dump(sb, c, depth+1)
	}
}

func detail(n Node) string {
	switch n := n.(type) {
	case *TypeRef:
		return String(n)
	case *Parameter:
		return n.Name.Lexeme
	case *FunctionDecl:
		return n.Name.Lexeme
	case *VariableDecl:
		if n.Mutable {
			return "var " + n.Name.Lexeme
		}

		return n.Name.Lexeme
	case *BinaryExpr:
		return n.Op.Lexeme
	case *UnaryExpr:
		return n.Op.Lexeme
	case *AssignExpr:
		return n.Name.Lexeme
	case *GetExpr:
		return "." + n.Name.Lexeme
	case *LiteralExpr:
		return Literal(n.Value)
	case *VariableExpr:
		return n.Name.Lexeme
	default:
		return ""
	}
}
