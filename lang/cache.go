package lang

import (
	"context"
	"log/slog"
	"strconv"
	"sync"

	"github.com/zeebo/xxh3"

	"github.com/ardnew/verse/lang/diag"
)

// globalCache maps a source hash to its *entry.
//
//nolint:gochecknoglobals
var globalCache sync.Map

// entry holds the parse result of one source text.
type entry struct {
	once   sync.Once
	source string
	prog   *Program
	diags  []diag.Diagnostic
}

// cached returns the parse result for source, parsing it at most once per
// distinct text.
func cached(ctx context.Context, source string, o options) (*Program, []diag.Diagnostic) {
	hash := xxh3.HashString(source)

	v, hit := globalCache.LoadOrStore(hash, &entry{source: source})
	e := v.(*entry)

	o.log.TraceContext(ctx, "cache lookup",
		slog.String("source_hash", strconv.FormatUint(hash, 16)),
		slog.Bool("cache_hit", hit),
	)

	if e.source != source {
		o.log.DebugContext(ctx, "cache collision",
			slog.String("source_hash", strconv.FormatUint(hash, 16)))

		return compile(ctx, source, o)
	}

	e.once.Do(func() { e.prog, e.diags = compile(ctx, source, o) })

	return e.prog, e.diags
}

// ClearCache discards every cached parse result.
func ClearCache() {
	globalCache.Clear()
}
