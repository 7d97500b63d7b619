package lang

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/ardnew/verse/lang/diag"
	"github.com/ardnew/verse/pkg"
)

// Errors returned by the pipeline.
var (
	ErrReadInput = pkg.NewError("failed to read input")
	ErrEncode    = pkg.NewError("failed to encode program")
)

// SyntaxError reports every diagnostic found in one source text.
// A program with syntax errors is never executed.
type SyntaxError struct {
	Diagnostics []diag.Diagnostic
	Source      string
}

// Error lists each diagnostic followed by the offending source line.
func (e *SyntaxError) Error() string {
	var sb strings.Builder

	for i, d := range e.Diagnostics {
		if i > 0 {
			sb.WriteByte('\n')
		}

		sb.WriteString(d.Error())

		if s := diag.Snippet(e.Source, d.Pos); s != "" {
			sb.WriteByte('\n')
			sb.WriteString(strings.TrimSuffix(s, "\n"))
		}
	}

	return sb.String()
}

// Internal reports whether any diagnostic marks a parser fault.
func (e *SyntaxError) Internal() bool {
	for _, d := range e.Diagnostics {
		if d.Phase == diag.PhaseInternal {
			return true
		}
	}

	return false
}

// LogValue implements slog.LogValuer.
func (e *SyntaxError) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.Diagnostics)+1)
	attrs = append(attrs, slog.Int("count", len(e.Diagnostics)))

	for i, d := range e.Diagnostics {
		attrs = append(attrs, slog.Any(strconv.Itoa(i), d))
	}

	return slog.GroupValue(attrs...)
}
