package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/verse/cli/cmd/repl"
	"github.com/ardnew/verse/lang"
	"github.com/ardnew/verse/log"
	"github.com/ardnew/verse/pkg"
)

// Repl starts an interactive session, optionally preloaded with a program.
type Repl struct {
	Source string `arg:"" default:"" help:"Program to load first: a file or a name on the search path." name:"source" optional:""`
	Plain  bool   `                  help:"Use the line-mode prompt even on a terminal."`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	logger := log.Default()

	var prog *lang.Program

	if r.Source != "" {
		src, name, err := Open(ctx, r.Source)
		if err != nil {
			return err
		}
		defer src.Close()

		prog, err = lang.Parse(ctx, src, lang.WithLogger(logger))
		if err != nil {
			return err
		}

		logger.DebugContext(ctx, "repl source loaded",
			slog.String("source", name),
			slog.Int("statements", len(prog.Stmts)),
		)
	}

	cacheDir := cacheDirFrom(ctx)

	if r.Plain || !repl.Interactive() {
		return repl.RunPlain(ctx, prog, cacheDir, logger)
	}

	return repl.Run(ctx, prog, cacheDir, logger)
}

// cacheDirFrom returns the cache directory kong was configured with.
func cacheDirFrom(ctx context.Context) string {
	if ktx := kongContextFrom(ctx); ktx != nil {
		if dir, ok := ktx.Model.Vars()[CacheIdentifier]; ok && dir != "" {
			return dir
		}
	}

	return pkg.CacheDir()
}
