package lang

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/verse/lang/ast"
)

// Format writes p in canonical Verse syntax, one statement per line.
func (p *Program) Format(w io.Writer) error {
	return ast.Format(w, p.Stmts)
}

// FormatJSON writes the syntax tree of p as JSON. An indent of zero
// produces compact output.
func (p *Program) FormatJSON(_ context.Context, w io.Writer, indent int) error {
	var (
		data []byte
		err  error
	)

	tree := ast.Trees(p.Stmts)

	if indent > 0 {
		data, err = json.MarshalIndent(tree, "", strings.Repeat(" ", indent))
	} else {
		data, err = json.Marshal(tree)
	}

	if err != nil {
		return ErrEncode.Wrap(err)
	}

	_, err = fmt.Fprintln(w, string(data))

	return err
}

// FormatYAML writes the syntax tree of p as YAML. An indent of zero
// produces flow-style output.
func (p *Program) FormatYAML(ctx context.Context, w io.Writer, indent int) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	data, err := yaml.MarshalContext(ctx, ast.Trees(p.Stmts), opts...)
	if err != nil {
		return ErrEncode.Wrap(err)
	}

	_, err = fmt.Fprint(w, string(data))

	return err
}

// FormatAST writes an indented outline of the syntax tree of p.
func (p *Program) FormatAST(w io.Writer) error {
	return ast.Dump(w, p.Stmts)
}

// FormatTokens writes one line per token: position, kind, lexeme and
// literal value.
func (p *Program) FormatTokens(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	for _, t := range p.Tokens {
		lit := ""
		if t.Literal != nil {
			lit = ast.Literal(t.Literal)
		}

		lexeme := strings.ReplaceAll(t.Lexeme, "\n", `\n`)

		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", t.Pos, t.Kind, lexeme, lit)
	}

	return tw.Flush()
}
