// Package diag collects syntax diagnostics reported while scanning and
// parsing. A Collector is passed explicitly through each phase, so a caller
// can tell whether a particular source text had errors without any shared
// state.
package diag

import (
	"fmt"
	"iter"
	"log/slog"
	"strings"

	"github.com/ardnew/verse/lang/token"
)

// Phase names the stage that reported a diagnostic.
type Phase uint8

const (
	PhaseScan Phase = iota
	PhaseParse
	// PhaseInternal marks a broken parser invariant rather than bad input.
	PhaseInternal
)

func (p Phase) String() string {
	switch p {
	case PhaseScan:
		return "scan"
	case PhaseParse:
		return "parse"
	case PhaseInternal:
		return "internal"
	default:
		return fmt.Sprintf("Phase(%d)", uint8(p))
	}
}

// Diagnostic is one syntax error at a source position.
type Diagnostic struct {
	Pos     token.Pos
	Phase   Phase
	Message string
}

// Error formats d as "Syntax Error: <msg> [ Ln L, Col C ]".
func (d Diagnostic) Error() string {
	label := "Syntax Error"
	if d.Phase == PhaseInternal {
		label = "Internal Error"
	}

	return fmt.Sprintf("%s: %s [ Ln %d, Col %d ]", label, d.Message, d.Pos.Line, d.Pos.Col)
}

// LogValue implements slog.LogValuer.
func (d Diagnostic) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("phase", d.Phase.String()),
		slog.Int("line", d.Pos.Line),
		slog.Int("col", d.Pos.Col),
		slog.String("msg", d.Message),
	)
}

// Collector accumulates diagnostics in report order.
// The zero value is ready to use.
type Collector struct {
	list []Diagnostic
}

// Report records a diagnostic.
func (c *Collector) Report(phase Phase, pos token.Pos, msg string) {
	c.list = append(c.list, Diagnostic{Pos: pos, Phase: phase, Message: msg})
}

// Reportf records a diagnostic with a formatted message.
func (c *Collector) Reportf(phase Phase, pos token.Pos, format string, args ...any) {
	c.Report(phase, pos, fmt.Sprintf(format, args...))
}

// HasErrors reports whether any diagnostic was recorded.
func (c *Collector) HasErrors() bool { return c != nil && len(c.list) > 0 }

// Len returns the number of diagnostics.
func (c *Collector) Len() int {
	if c == nil {
		return 0
	}

	return len(c.list)
}

// All iterates the diagnostics in report order.
func (c *Collector) All() iter.Seq[Diagnostic] {
	return func(yield func(Diagnostic) bool) {
		if c == nil {
			return
		}

		for _, d := range c.list {
			if !yield(d) {
				return
			}
		}
	}
}

// Diagnostics returns a copy of the recorded diagnostics.
func (c *Collector) Diagnostics() []Diagnostic {
	if c == nil {
		return nil
	}

	return append([]Diagnostic(nil), c.list...)
}

// Snippet renders the source line of pos with a caret under its column:
//
//	  3 | x := 1 +
//	             ^
//
// It returns "" when pos is outside source.
func Snippet(source string, pos token.Pos) string {
	if !pos.IsValid() {
		return ""
	}

	lines := strings.Split(source, "\n")
	if pos.Line > len(lines) {
		return ""
	}

	text := strings.TrimRight(lines[pos.Line-1], "\r")
	num := fmt.Sprint(pos.Line)

	var sb strings.Builder

	sb.WriteString("  ")
	sb.WriteString(num)
	sb.WriteString(" | ")
	sb.WriteString(text)
	sb.WriteByte('\n')

	// Tabs before the caret are kept so it lines up in a terminal.
	sb.WriteString(strings.Repeat(" ", len(num)+5))

	col := 1
	for _, r := range text {
		if col >= pos.Col {
			break
		}

		if r == '\t' {
			sb.WriteByte('\t')
		} else {
			sb.WriteByte(' ')
		}

		col++
	}

	sb.WriteString(strings.Repeat(" ", max(pos.Col-col, 0)))
	sb.WriteString("^\n")

	return sb.String()
}
