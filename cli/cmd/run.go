package cmd

import (
	"context"
	"log/slog"
	"os"

	"github.com/ardnew/verse/lang"
	"github.com/ardnew/verse/lang/host"
	"github.com/ardnew/verse/lang/interp"
	"github.com/ardnew/verse/log"
)

// Run executes a program by calling its Main function.
type Run struct {
	Source   string   `arg:"" default:"-"  help:"Source file, '-' for stdin, or a name on the search path." name:"source"`
	Define   []string `                    help:"Bind a global to the value of an expr-lang expression."   placeholder:"NAME=EXPR" sep:"none" short:"D"`
	Dump     string   `                    help:"Write the formatted program to FILE before running it."   placeholder:"FILE"      type:"path"`
	MaxDepth int      `default:"1000"      help:"Maximum call depth."`
}

// Run executes the run command.
func (r *Run) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	logger := log.Default()

	globals, err := host.New(host.WithLogger(logger)).Defines(ctx, r.Define)
	if err != nil {
		return err
	}

	src, name, err := Open(ctx, r.Source)
	if err != nil {
		return err
	}
	defer src.Close()

	logger.DebugContext(ctx, "run",
		slog.String("source", name),
		slog.Int("defines", len(globals)),
	)

	prog, err := lang.Parse(ctx, src, lang.WithLogger(logger))
	if err != nil {
		return err
	}

	if r.Dump != "" {
		if err := dump(prog, r.Dump); err != nil {
			return err
		}
	}

	maxDepth := r.MaxDepth
	if maxDepth < 1 {
		maxDepth = interp.DefaultMaxDepth
	}

	return prog.Run(ctx,
		lang.WithLogger(logger),
		lang.WithOutput(outputFrom(ctx)),
		lang.WithGlobals(globals),
		lang.WithMaxDepth(maxDepth),
	)
}

func dump(prog *lang.Program, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return ErrWriteDump.With(slog.String("file", path)).Wrap(err)
	}

	if err := prog.Format(f); err != nil {
		f.Close()

		return ErrWriteDump.With(slog.String("file", path)).Wrap(err)
	}

	if err := f.Close(); err != nil {
		return ErrWriteDump.With(slog.String("file", path)).Wrap(err)
	}

	return nil
}
