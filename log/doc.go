// Package log wraps [log/slog] with a trace level, named time layouts,
// colorized pretty handlers and a package-level default logger.
//
// Loggers are configured with functional options when created:
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithFormat(log.FormatText),
//		log.WithTimeLayout("kitchen"))
//
//	logger.Info("program loaded", slog.Int("statements", 3))
//
// Attributes are passed as [slog.Attr] values only; the loosely typed
// key/value form of [slog.Logger] is not exposed through the level methods.
//
// A zero [Logger] discards everything, so packages can hold a Logger field
// without checking whether the caller supplied one.
//
// The package-level functions ([Info], [DebugContext], ...) log through a
// default logger that [Config] reconfigures in place. The CLI calls Config
// while flags are still being parsed so that parse errors are already
// formatted as requested.
package log
