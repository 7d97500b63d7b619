package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/verse/lang"
	"github.com/ardnew/verse/lang/value"
	"github.com/ardnew/verse/log"
)

// loadVerse returns a [kong.ConfigurationLoader] for configuration files
// written in Verse. The file is executed like a program without calling
// Main: its top-level variable declarations become flag values.
//
//	log_level := "debug"
//	log_pretty := false
//	path := "/opt/verse,/srv/verse"
//
// Flag names with hyphens may be spelled with underscores. A file that
// fails to parse or execute is logged and ignored so that a broken
// configuration never prevents `verse init --force` from replacing it.
func loadVerse(ctx context.Context) kong.ConfigurationLoader {
	return func(r io.Reader) (kong.Resolver, error) {
		prog, err := lang.Parse(ctx, r)
		if err != nil {
			log.WarnContext(ctx, "ignoring configuration", slog.Any("error", err))

			return config{}, nil
		}

		in, err := prog.Interpreter(lang.WithOutput(io.Discard))
		if err == nil {
			err = in.Init(ctx)
		}

		if err != nil {
			log.WarnContext(ctx, "ignoring configuration", slog.Any("error", err))

			return config{}, nil
		}

		cfg := make(config)

		for name, v := range in.Globals() {
			cfg[name] = flagValue(value.Host(v))
		}

		return cfg, nil
	}
}

// loadYAML is a [kong.ConfigurationLoader] for YAML mappings of flag name
// to value.
func loadYAML(r io.Reader) (kong.Resolver, error) {
	var raw map[string]any

	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return config{}, nil
		}

		return nil, err
	}

	cfg := make(config, len(raw))

	for name, v := range raw {
		cfg[name] = flagValue(v)
	}

	return cfg, nil
}

// config implements [kong.Resolver] over a flat map of flag values.
type config map[string]any

// Validate implements [kong.Resolver].
func (config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver].
func (c config) Resolve(_ *kong.Context, _ *kong.Path, flag *kong.Flag) (any, error) {
	if v, ok := c[flag.Name]; ok {
		return v, nil
	}

	if v, ok := c[strings.ReplaceAll(flag.Name, "-", "_")]; ok {
		return v, nil
	}

	return nil, nil
}

// flagValue converts v into a form kong's mappers accept: scalars
// other than bool become strings and every list becomes []any.
func flagValue(v any) any {
	switch v := v.(type) {
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}

		return out
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = flagValue(e)
		}

		return out
	default:
		return v
	}
}
