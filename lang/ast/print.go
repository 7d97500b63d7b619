package ast

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ardnew/verse/lang/token"
)

// String renders n as source text on a single line. Binary expressions are
// fully parenthesized and statements inside blocks are separated by "; ",
// so parsing the result yields an equivalent tree (grouping nodes aside).
func String(n Node) string {
	var sb strings.Builder

	printNode(&sb, n)

	return sb.String()
}

// Format writes each statement of stmts on its own line.
func Format(w io.Writer, stmts []Stmt) error {
	bw := bufio.NewWriter(w)

	for _, s := range stmts {
		bw.WriteString(String(s))
		bw.WriteByte('\n')
	}

	return bw.Flush()
}

func printNode(sb *strings.Builder, n Node) {
	switch n := n.(type) {
	case nil:
		sb.WriteString("<nil>")

	case *TypeRef:
		switch {
		case n.IsArray:
			sb.WriteString("[]")
		case n.Key != nil:
			sb.WriteByte('[')
			printNode(sb, n.Key)
			sb.WriteByte(']')
		}

		if n.Optional {
			sb.WriteByte('?')
		}

		sb.WriteString(n.Name)

	case *Parameter:
		sb.WriteString(n.Name.Lexeme)
		sb.WriteString(" : ")
		printNode(sb, n.Type)

	case *FunctionDecl:
		sb.WriteString(n.Name.Lexeme)
		printSpecifiers(sb, n.Specifiers)
		sb.WriteByte('(')

		for i, p := range n.Params {
			if i > 0 {
				sb.WriteString(", ")
			}

			printNode(sb, p)
		}

		sb.WriteByte(')')
		printSpecifiers(sb, n.Effects)

		if n.Result != nil {
			sb.WriteString(" : ")
			printNode(sb, n.Result)
		}

		if n.Body != nil {
			sb.WriteString(" = ")
			printNode(sb, n.Body)
		}

	case *VariableDecl:
		if n.Mutable {
			sb.WriteString("var ")
		}

		sb.WriteString(n.Name.Lexeme)
		printSpecifiers(sb, n.Specifiers)

		if n.Type != nil {
			sb.WriteString(" : ")
			printNode(sb, n.Type)
			sb.WriteString(" = ")
		} else {
			sb.WriteString(" := ")
		}

		printNode(sb, n.Init)

	case *Block:
		if n.Keyword {
			sb.WriteString("block ")
		}

		if len(n.Stmts) == 0 {
			sb.WriteString("{}")

			return
		}

		sb.WriteString("{ ")

		for i, s := range n.Stmts {
			if i > 0 {
				sb.WriteString("; ")
			}

			printNode(sb, s)
		}

		sb.WriteString(" }")

	case *ExpressionStmt:
		printNode(sb, n.X)

	case *IfExpr:
		sb.WriteString("if (")
		printNode(sb, n.Cond)
		sb.WriteString(") ")
		printNode(sb, n.Then)

		if n.Else != nil {
			sb.WriteString(" else ")
			printNode(sb, n.Else)
		}

	case *BinaryExpr:
		sb.WriteByte('(')
		printNode(sb, n.Left)
		sb.WriteByte(' ')
		sb.WriteString(n.Op.Lexeme)
		sb.WriteByte(' ')
		printNode(sb, n.Right)
		sb.WriteByte(')')

	case *UnaryExpr:
		sb.WriteString(n.Op.Lexeme)

		if n.Op.Kind == token.Not {
			sb.WriteByte(' ')
		}

		printNode(sb, n.X)

	case *AssignExpr:
		sb.WriteString(n.Name.Lexeme)
		sb.WriteString(" = ")
		printNode(sb, n.Value)

	case *CallExpr:
		printNode(sb, n.Callee)
		sb.WriteByte('(')

		for i, a := range n.Args {
			if i > 0 {
				sb.WriteString(", ")
			}

			printNode(sb, a)
		}

		sb.WriteByte(')')

	case *GetExpr:
		printNode(sb, n.X)
		sb.WriteByte('.')
		sb.WriteString(n.Name.Lexeme)

	case *GroupingExpr:
		if _, ok := n.X.(*BinaryExpr); ok {
			printNode(sb, n.X)

			return
		}

		sb.WriteByte('(')
		printNode(sb, n.X)
		sb.WriteByte(')')

	case *LiteralExpr:
		sb.WriteString(Literal(n.Value))

	case *VariableExpr:
		sb.WriteString(n.Name.Lexeme)

	default:
		panic(fmt.Sprintf("ast: unhandled node %T", n))
	}
}

func printSpecifiers(sb *strings.Builder, specs []*TypeRef) {
	for _, s := range specs {
		sb.WriteByte('<')
		printNode(sb, s)
		sb.WriteByte('>')
	}
}

// Literal renders a literal value as it would be written in source.
// Floats always carry a decimal point so they scan as floats again.
func Literal(v any) string {
	switch v := v.(type) {
	case bool:
		return strconv.FormatBool(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		s := strconv.FormatFloat(v, 'f', -1, 64)
		if !strings.ContainsAny(s, ".NI") {
			s += ".0"
		}

		return s
	case string:
		return `"` + v + `"`
	default:
		return fmt.Sprint(v)
	}
}
