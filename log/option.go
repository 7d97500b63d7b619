package log

import "io"

// Option applies a configuration option to config.
type Option func(config) config

func apply(cfg config, opts ...Option) config {
	for _, opt := range opts {
		if opt != nil {
			cfg = opt(cfg)
		}
	}

	return cfg
}

// WithDefaults resets every setting to its default and sets the output.
// A nil writer discards all output.
func WithDefaults(w io.Writer) Option {
	return func(config) config {
		return config{
			output:     discardNil(w),
			formatTime: makeFormatTimeFunc(DefaultTimeLayout),
			level:      DefaultLevel,
			format:     DefaultFormat,
			caller:     DefaultCaller,
			pretty:     DefaultPretty,
		}
	}
}

// WithOutput sets the writer log records are written to.
// A nil writer discards all output.
func WithOutput(w io.Writer) Option {
	return func(c config) config {
		c.output = discardNil(w)

		return c
	}
}

// WithLevel sets the minimum level of records that are written.
func WithLevel(level Level) Option {
	return func(c config) config {
		c.level = level

		return c
	}
}

// WithFormat sets the output format.
func WithFormat(format Format) Option {
	return func(c config) config {
		c.format = format

		return c
	}
}

// WithTimeLayout sets the timestamp layout.
//
// The layout is either a named layout from [time] ("RFC3339", "Kitchen",
// "DateTime", ...), matched ignoring case and punctuation, or a custom layout
// passed verbatim to [time.Time.Format]. An empty layout or "none" omits
// timestamps.
func WithTimeLayout(layout string) Option {
	return func(c config) config {
		c.formatTime = makeFormatTimeFunc(layout)

		return c
	}
}

// WithCaller controls whether the source location of the caller is logged.
func WithCaller(enable bool) Option {
	return func(c config) config {
		c.caller = enable

		return c
	}
}

// WithPretty controls colorized output. Pretty text drops quotes and colors
// keys and values; pretty JSON is indented one attribute per line.
func WithPretty(enable bool) Option {
	return func(c config) config {
		c.pretty = enable

		return c
	}
}

func discardNil(w io.Writer) io.Writer {
	if w == nil {
		return io.Discard
	}

	return w
}
