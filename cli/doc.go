// Package cli contains the command line interface for verse.
//
// # Usage
//
//	verse [flags] [run] [source]
//	verse fmt [native|json|yaml|ast|tokens] [source]
//	verse repl [--plain] [source]
//	verse init [--force]
//
// Run is the default command. A source is "-" for stdin, a file path, or
// a bare name found in the --path directories followed by $VERSE_PATH.
//
// # Configuration
//
// Flag defaults are read from the configuration directory, in order:
// config.json, config.yaml (or config.yml) and config.verse. The Verse
// form is an ordinary program whose top-level variables name flags, with
// underscores standing in for hyphens:
//
//	log_level := "debug"
//	log_pretty := false
//
// `verse init` writes config.verse from the current flag values.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (json, text)
//   - --log-time-layout: Set timestamp format (RFC3339, Kitchen, etc.)
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Colorize text output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o verse .
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory
package cli
