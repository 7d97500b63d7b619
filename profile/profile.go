// Package profile starts optional runtime profiling with
// [github.com/pkg/profile].
//
// Profiling is compiled in only with the "pprof" build tag:
//
//	go build -tags pprof .
//	verse run --pprof-mode cpu examples/fib.verse
//
// Without the tag, [Enabled] is false, [Modes] is empty and
// [Profiler.Start] returns a no-op.
package profile

// Tag is the build tag that enables profiling. It also names the
// subdirectory of the cache directory that profiles are written to.
const Tag = "pprof"

// Stopper stops a running profile and flushes its output.
type Stopper interface{ Stop() }

// Profiler describes one profiling session.
type Profiler struct {
	// Mode is one of [Modes]. An empty Mode disables profiling.
	Mode string
	// Path is the output directory. Empty means the working directory.
	Path string
	// Quiet suppresses the profiler's own log output.
	Quiet bool
}

// Start starts profiling. Stop is always safe to call on the result,
// including when profiling is disabled or Mode is unknown.
func (p Profiler) Start() Stopper {
	if !Enabled || p.Mode == "" {
		return ignore{}
	}

	return start(p)
}

type ignore struct{}

func (ignore) Stop() {}
