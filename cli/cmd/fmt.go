package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/verse/lang"
	"github.com/ardnew/verse/log"
	"github.com/ardnew/verse/pkg"
)

// Fmt parses a program and writes it in the chosen format.
type Fmt struct {
	Native Native `cmd:"" default:"withargs" help:"Format as Verse source (default)."`
	JSON   JSON   `cmd:""                    help:"Format the syntax tree as JSON."`
	YAML   YAML   `cmd:""                    help:"Format the syntax tree as YAML."`
	AST    AST    `cmd:""                    help:"Print an outline of the syntax tree."`
	Tokens Tokens `cmd:""                    help:"List the scanned tokens."`
}

// Native formats input as canonical Verse source.
type Native struct {
	Source string `arg:"" default:"-" help:"Source file, '-' for stdin, or a name on the search path." name:"source"`
}

// Run executes the native command.
func (f *Native) Run(ctx context.Context) error {
	prog, err := parseSource(ctx, f.Source, "native")
	if err != nil {
		return err
	}

	return prog.Format(outputFrom(ctx))
}

// JSON formats the syntax tree as JSON.
type JSON struct {
	Indent int `default:"2" help:"Indent width; 0 for compact output." short:"i"`

	Source string `arg:"" default:"-" help:"Source file, '-' for stdin, or a name on the search path." name:"source"`
}

// Run executes the json command.
func (j *JSON) Run(ctx context.Context) error {
	prog, err := parseSource(ctx, j.Source, "json")
	if err != nil {
		return err
	}

	return prog.FormatJSON(ctx, outputFrom(ctx), j.Indent)
}

// YAML formats the syntax tree as YAML.
type YAML struct {
	Indent int `default:"2" help:"Indent width; 0 for flow style." short:"i"`

	Source string `arg:"" default:"-" help:"Source file, '-' for stdin, or a name on the search path." name:"source"`
}

// Run executes the yaml command.
func (y *YAML) Run(ctx context.Context) error {
	prog, err := parseSource(ctx, y.Source, "yaml")
	if err != nil {
		return err
	}

	return prog.FormatYAML(ctx, outputFrom(ctx), y.Indent)
}

// AST prints an indented outline of the syntax tree.
type AST struct {
	Source string `arg:"" default:"-" help:"Source file, '-' for stdin, or a name on the search path." name:"source"`
}

// Run executes the ast command.
func (a *AST) Run(ctx context.Context) error {
	prog, err := parseSource(ctx, a.Source, "ast")
	if err != nil {
		return err
	}

	return prog.FormatAST(outputFrom(ctx))
}

// Tokens lists the tokens of the source. Unlike the other formats it also
// works on input with syntax errors.
type Tokens struct {
	Source string `arg:"" default:"-" help:"Source file, '-' for stdin, or a name on the search path." name:"source"`
}

// Run executes the tokens command.
func (t *Tokens) Run(ctx context.Context) error {
	prog, err := parseSource(ctx, t.Source, "tokens")
	if prog == nil {
		return err
	}

	if ferr := prog.FormatTokens(outputFrom(ctx)); ferr != nil {
		return ferr
	}

	return err
}

// parseSource opens and parses source. On a syntax error the partial
// program is returned alongside the error.
func parseSource(ctx context.Context, source, format string) (*lang.Program, error) {
	r, name, err := Open(ctx, source)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	prog, err := lang.Parse(ctx, r, lang.WithLogger(log.Default()))
	if err != nil {
		return prog, pkg.WrapError(err).With(
			slog.String("format", format),
			slog.String("source", name),
		)
	}

	return prog, nil
}
