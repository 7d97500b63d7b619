package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/verse/lang/ast"
	"github.com/ardnew/verse/lang/token"
	"github.com/ardnew/verse/log"
	"github.com/ardnew/verse/pkg"
	"github.com/ardnew/verse/profile"
)

// configHeader is written above the generated declarations.
const configHeader = "# " + pkg.Name + " configuration: one declaration per flag.\n"

// Init generates a configuration file from the current flag values.
type Init struct {
	Force bool `help:"Overwrite existing configuration file." short:"f"`
}

// Run executes the init command.
func (i *Init) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	ktx := kongContextFrom(ctx)
	if ktx == nil {
		return ErrNoConfigPath
	}

	confPath, ok := ktx.Model.Vars()[ConfigIdentifier]
	if !ok || confPath == "" {
		return ErrNoConfigPath
	}

	if _, err := os.Stat(confPath); err == nil && !i.Force {
		return ErrWriteConfig.
			With(slog.String("file", confPath), slog.Bool("exists", true)).
			Wrap(ErrFileExists)
	}

	var sb strings.Builder

	sb.WriteString(configHeader)

	if err := ast.Format(&sb, buildConfig(ktx)); err != nil {
		return ErrWriteConfig.With(slog.String("file", confPath)).Wrap(err)
	}

	if err := os.WriteFile(confPath, []byte(sb.String()), 0o600); err != nil {
		return ErrWriteConfig.With(slog.String("file", confPath)).Wrap(err)
	}

	log.DebugContext(ctx, "initialized configuration file",
		slog.String("path", confPath),
	)

	return nil
}

// buildConfig declares one variable per flag that has a representable,
// non-empty value. Hyphens in flag names become underscores.
func buildConfig(ktx *kong.Context) []ast.Stmt {
	var stmts []ast.Stmt

	skip := []string{"help", profile.Tag}

	for _, flag := range ktx.Model.Flags {
		if flag.Hidden || slices.ContainsFunc(skip, func(s string) bool {
			return strings.HasPrefix(flag.Name, s)
		}) {
			continue
		}

		lit, ok := literal(ktx.FlagValue(flag))
		if !ok {
			continue
		}

		name := strings.ReplaceAll(flag.Name, "-", "_")

		stmts = append(stmts, &ast.VariableDecl{
			Name: token.Token{Kind: token.Identifier, Lexeme: name},
			Init: lit,
		})
	}

	return stmts
}

// literal converts a flag value into a literal expression. Lists are
// joined with commas, which kong splits again when resolving the flag.
func literal(v any) (*ast.LiteralExpr, bool) {
	switch v := v.(type) {
	case nil:
		return nil, false
	case bool:
		kind := token.False
		if v {
			kind = token.True
		}

		return &ast.LiteralExpr{
			Token: token.Token{Kind: kind, Lexeme: strconv.FormatBool(v)},
			Value: v,
		}, true
	case int:
		return integer(int64(v)), true
	case int64:
		return integer(v), true
	case float64:
		lexeme := ast.Literal(v)

		return &ast.LiteralExpr{
			Token: token.Token{Kind: token.Float, Lexeme: lexeme, Literal: v},
			Value: v,
		}, true
	case []string:
		return stringLiteral(strings.Join(v, ","))
	default:
		return stringLiteral(fmt.Sprint(v))
	}
}

func integer(n int64) *ast.LiteralExpr {
	return &ast.LiteralExpr{
		Token: token.Token{Kind: token.Integer, Lexeme: strconv.FormatInt(n, 10), Literal: n},
		Value: n,
	}
}

// stringLiteral rejects empty strings and strings containing a double
// quote, which the language cannot express.
func stringLiteral(s string) (*ast.LiteralExpr, bool) {
	if s == "" || strings.ContainsRune(s, '"') {
		return nil, false
	}

	return &ast.LiteralExpr{
		Token: token.Token{Kind: token.String, Lexeme: strconv.Quote(s), Literal: s},
		Value: s,
	}, true
}
