// Package host evaluates expr-lang expressions against a read-only view of
// the host system and converts the results into Verse values.
//
// It backs `verse run --define name=expr`: each definition is compiled with
// [github.com/expr-lang/expr] against [Env] and the result is bound as a
// global before the program starts.
//
//	verse run --define 'home=env("HOME")' --define 'n=len(platform.OS)' app
package host

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"

	"github.com/ardnew/mung"
	"github.com/expr-lang/expr"

	"github.com/ardnew/verse/lang/token"
	"github.com/ardnew/verse/lang/value"
	"github.com/ardnew/verse/log"
	"github.com/ardnew/verse/pkg"
)

// Errors returned while evaluating host definitions.
var (
	ErrDefineSyntax = pkg.NewError("malformed definition (want name=expr)")
	ErrDefineName   = pkg.NewError("invalid definition name")
	ErrCompile      = pkg.NewError("compile expression")
	ErrEvaluate     = pkg.NewError("evaluate expression")
	ErrResult       = pkg.NewError("unsupported expression result")
)

// Target identifies an operating system and instruction set architecture.
type Target struct {
	OS   string
	Arch string
}

//nolint:gochecknoglobals
var (
	envOnce  sync.Once
	envCache map[string]any
)

// Env returns a copy of the expression environment. The system fields are
// computed once per process; env(key) reads the current process
// environment on every call.
func Env() map[string]any {
	envOnce.Do(func() {
		envCache = map[string]any{
			"target":   target(),
			"platform": platform(),
			"hostname": hostname(),
			"user":     currentUser(),
			"shell":    shell(),
			"cwd":      cwd,
			"env":      os.Getenv,
			"file": map[string]any{
				"exists":    fileExists,
				"isDir":     fileIsDir,
				"isRegular": fileIsRegular,
				"isSymlink": fileIsSymlink,
			},
			"path": map[string]any{
				"abs": pathAbs,
				"cat": pathCat,
				"rel": pathRel,
			},
			"mung": map[string]any{
				"prefix":   MungPrefix,
				"prefixif": MungPrefixIf,
			},
		}
	})

	return maps.Clone(envCache)
}

// Keys returns the sorted top-level names of [Env].
func Keys() []string { return slices.Sorted(maps.Keys(Env())) }

// Evaluator compiles and runs definitions.
type Evaluator struct {
	log log.Logger
	env map[string]any
}

// Option configures an [Evaluator].
type Option func(*Evaluator)

// WithLogger sets the logger used for trace records.
func WithLogger(l log.Logger) Option { return func(e *Evaluator) { e.log = l } }

// WithVars adds or replaces top-level environment entries.
func WithVars(vars map[string]any) Option {
	return func(e *Evaluator) { maps.Copy(e.env, vars) }
}

// New returns an Evaluator over a fresh copy of [Env].
func New(opts ...Option) *Evaluator {
	e := &Evaluator{env: Env()}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Eval compiles and runs a single expression.
func (e *Evaluator) Eval(ctx context.Context, source string) (value.Value, error) {
	prog, err := expr.Compile(source, expr.Env(e.env))
	if err != nil {
		return nil, ErrCompile.With(slog.String("expr", source)).Wrap(err)
	}

	out, err := expr.Run(prog, e.env)
	if err != nil {
		return nil, ErrEvaluate.With(slog.String("expr", source)).Wrap(err)
	}

	v, ok := value.Of(out)
	if !ok {
		return nil, ErrResult.
			Detail(fmt.Sprintf("%T", out)).
			With(slog.String("expr", source))
	}

	e.log.TraceContext(ctx, "host eval",
		slog.String("expr", source),
		slog.String("kind", value.KindOf(v)),
	)

	return v, nil
}

// Define evaluates one "name=expr" definition.
func (e *Evaluator) Define(ctx context.Context, def string) (string, value.Value, error) {
	name, source, ok := strings.Cut(def, "=")
	if !ok {
		return "", nil, ErrDefineSyntax.With(slog.String("define", def))
	}

	name = strings.TrimSpace(name)
	if !isIdentifier(name) {
		return "", nil, ErrDefineName.Detail("'" + name + "'")
	}

	v, err := e.Eval(ctx, source)
	if err != nil {
		return "", nil, pkg.WrapError(err).With(slog.String("name", name))
	}

	return name, v, nil
}

// Defines evaluates every definition in order. Later definitions of the
// same name replace earlier ones.
func (e *Evaluator) Defines(ctx context.Context, defs []string) (map[string]value.Value, error) {
	vars := make(map[string]value.Value, len(defs))

	for _, def := range defs {
		name, v, err := e.Define(ctx, def)
		if err != nil {
			return nil, err
		}

		vars[name] = v
	}

	return vars, nil
}

func isIdentifier(s string) bool {
	if s == "" || token.Lookup(s) != token.Identifier {
		return false
	}

	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}

	return true
}

// target returns the host target using GNU toolchain naming.
func target() Target {
	t := platform()

	switch t.Arch {
	case "386":
		t.Arch = "i386"
	case "amd64":
		t.Arch = "x86_64"
	case "arm":
		if arm, ok := os.LookupEnv("GOARM"); ok {
			arm, _, _ = strings.Cut(arm, ",")
			switch arm = strings.TrimSpace(arm); arm {
			case "5", "6", "7":
				t.Arch = "armv" + arm
			}
		}
	case "arm64":
		if t.OS != "darwin" {
			t.Arch = "aarch64"
		}
	case "mipsle":
		t.Arch = "mipsel"
	}

	return t
}

// platform returns the host target using Go naming.
func platform() Target {
	lookup := func(fallback string, keys ...string) string {
		for _, k := range keys {
			if v, ok := os.LookupEnv(k); ok {
				return v
			}
		}

		return fallback
	}

	return Target{
		OS:   lookup(runtime.GOOS, "GOHOSTOS", "GOOS"),
		Arch: lookup(runtime.GOARCH, "GOHOSTARCH", "GOARCH"),
	}
}

func hostname() string {
	h, _ := os.Hostname()

	return h
}

func currentUser() *user.User {
	u, err := user.Current()
	if err != nil {
		return nil
	}

	return u
}

func shell() string {
	if sh, ok := os.LookupEnv("SHELL"); ok {
		return sh
	}

	u := currentUser()
	if u == nil || u.Username == "" {
		return ""
	}

	f, err := os.Open("/etc/passwd")
	if err != nil {
		return ""
	}
	defer f.Close()

	s := bufio.NewScanner(f)
	for s.Scan() {
		if e := strings.Split(s.Text(), ":"); len(e) > 6 && e[0] == u.Username {
			return e[6]
		}
	}

	return ""
}

func cwd() string {
	dir, err := os.Getwd()
	if err != nil {
		return pathAbs(".")
	}

	return dir
}

func fileExists(path string) bool {
	_, err := os.Stat(path)

	return !os.IsNotExist(err)
}

func fileIsDir(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.IsDir()
}

func fileIsRegular(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.Mode().IsRegular()
}

func fileIsSymlink(path string) bool {
	info, err := os.Lstat(path)

	return err == nil && info.Mode()&os.ModeSymlink != 0
}

func pathAbs(path string) string {
	if p, err := filepath.Abs(path); err == nil {
		return p
	}

	return path
}

func pathCat(elem ...string) string { return filepath.Join(elem...) }

func pathRel(from, to string) string {
	p, err := filepath.Rel(pathAbs(from), pathAbs(to))
	if err != nil {
		return pathCat(from, to)
	}

	return p
}

// MungPrefix prepends prefix to the list-separated subject, dropping
// duplicate items.
func MungPrefix(key string, prefix ...string) string {
	return mung.Make(
		mung.WithSubjectItems(key),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(prefix...),
	).String()
}

// MungPrefixIf is [MungPrefix] keeping only the items accepted by keep.
func MungPrefixIf(key string, keep func(string) bool, prefix ...string) string {
	return mung.Make(
		mung.WithSubjectItems(key),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(prefix...),
		mung.WithFilter(keep),
	).String()
}
