package cli

import (
	"context"

	"github.com/alecthomas/kong"

	"github.com/ardnew/verse/cli/cmd"
	"github.com/ardnew/verse/pkg"
)

// CLI is the top-level command-line interface for verse.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Path []string `help:"Directory searched for sources given by name, ahead of VERSE_PATH." placeholder:"DIR" short:"I"`

	Run  cmd.Run  `cmd:"" default:"withargs" help:"Run a program"`
	Fmt  cmd.Fmt  `cmd:""                    help:"Format a program"`
	Repl cmd.Repl `cmd:""                    help:"Start an interactive session"`
	Init cmd.Init `cmd:""                    help:"Initialize configuration file"`
}

// Run executes the verse CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	err := mkdirAllRequired()
	if err != nil {
		return err
	}

	configFilePath := configPath(baseConfig)

	vars := kong.Vars{
		cmd.ConfigIdentifier: configFilePath + pkg.SourceExt,
		cmd.CacheIdentifier:  pkg.CacheDir(),
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Logger flags are applied before parsing so that configuration
	// loading and kong's own errors already use them.
	cli.Log.scan(args)

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group()},
		),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(kong.JSON, configFilePath+".json"),
		kong.Configuration(loadYAML, configFilePath+".yaml", configFilePath+".yml"),
		kong.Configuration(loadVerse(ctx), configFilePath+pkg.SourceExt),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	ctx = cmd.WithContext(ctx, ktx)
	ctx = cmd.WithSearchPath(ctx, searchPath(cli.Path))

	// Finalize logger configuration with values that were only known
	// after parsing, such as those read from a configuration file.
	cli.Log.start(ctx)

	// [pprofConfig.start] is no-op unless built with tag pprof and enabled.
	defer cli.Pprof.start(ctx)()

	return ktx.Run(ctx, &cli)
}
