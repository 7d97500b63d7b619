// Package cmd implements the verse subcommands: run, fmt, repl and init.
//
// Commands receive a [context.Context] carrying the parsed [kong.Context]
// ([WithContext]), the source search path ([WithSearchPath]) and the
// writer that program output goes to ([WithOutput]).
package cmd

var (
	// CacheIdentifier is the kong variable holding the runtime cache
	// directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable holding the path of the Verse
	// configuration file written by init.
	ConfigIdentifier = "config"
)
