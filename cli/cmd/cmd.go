package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/verse/pkg"
)

type (
	contextKey    struct{}
	searchPathKey struct{}
	outputKey     struct{}
)

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, _ := ctx.Value(contextKey{}).(*kong.Context)

	return ktx
}

// WithSearchPath returns a new context.Context carrying the directories
// searched for sources given by name.
func WithSearchPath(ctx context.Context, dirs []string) context.Context {
	return context.WithValue(ctx, searchPathKey{}, dirs)
}

func searchPathFrom(ctx context.Context) []string {
	dirs, _ := ctx.Value(searchPathKey{}).([]string)

	return dirs
}

// WithOutput returns a new context.Context whose commands write program
// output to w instead of os.Stdout.
func WithOutput(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, outputKey{}, w)
}

func outputFrom(ctx context.Context) io.Writer {
	if w, ok := ctx.Value(outputKey{}).(io.Writer); ok && w != nil {
		return w
	}

	return os.Stdout
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// Open opens a program source and returns it with the name it resolved
// to. The source is "-" for stdin, an existing file path, or a bare name
// looked up as name and name.verse in each search path directory.
func Open(ctx context.Context, source string) (io.ReadCloser, string, error) {
	if source == stdinSource {
		return io.NopCloser(os.Stdin), stdinSource, nil
	}

	path, err := Resolve(ctx, source)
	if err != nil {
		return nil, source, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, path, ErrOpenSource.With(slog.String("source", path)).Wrap(err)
	}

	return f, path, nil
}

// Resolve finds the file named by source.
func Resolve(ctx context.Context, source string) (string, error) {
	if isFile(source) {
		return source, nil
	}

	if !strings.ContainsRune(source, filepath.Separator) {
		for _, dir := range searchPathFrom(ctx) {
			for _, name := range candidates(source) {
				if path := filepath.Join(dir, name); isFile(path) {
					return path, nil
				}
			}
		}
	}

	return "", ErrSourceNotFound.
		Detail("'"+source+"'").
		With(
			slog.String("source", source),
			slog.Any("path", searchPathFrom(ctx)),
		)
}

func candidates(name string) []string {
	if filepath.Ext(name) == pkg.SourceExt {
		return []string{name}
	}

	return []string{name, name + pkg.SourceExt}
}

func isFile(path string) bool {
	info, err := os.Stat(path)

	return err == nil && !info.IsDir()
}
