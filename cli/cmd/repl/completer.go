package repl

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"
)

// ctrlCommands are the commands understood in control mode.
var ctrlCommands = []string{"help", "list", "edit", "clear", "quit"}

// isWordBoundary reports whether r ends an identifier for completion.
func isWordBoundary(r rune) bool {
	switch r {
	case ' ', '\t', '.', '"',
		'(', ')', '{', '}', '[', ']', '<', '>',
		'+', '-', '*', '/', '=', '!',
		',', ':', ';', '?':
		return true
	}

	return false
}

// wordBounds returns the word around cursor and its byte offsets in input.
// The word is empty when the cursor sits on a boundary.
func wordBounds(input string, cursor int) (word string, start, end int) {
	cursor = min(max(cursor, 0), len(input))

	start = cursor
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if isWordBoundary(r) {
			break
		}

		start -= size
	}

	end = cursor
	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if isWordBoundary(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// insideString reports whether offset falls inside a string literal.
func insideString(input string, offset int) bool {
	return strings.Count(input[:min(offset, len(input))], `"`)%2 == 1
}

// complete returns the ranked completions of the word at cursor.
func complete(input string, cursor int, candidates []string) (
	matches fuzzy.Matches,
	start, end int,
) {
	word, start, end := wordBounds(input, cursor)
	if word == "" || len(candidates) == 0 || insideString(input, start) {
		return nil, start, end
	}

	return fuzzy.Find(word, candidates), start, end
}

// wordCompleter adapts candidates to the line-mode word completer: it
// returns the text around the completed word and each replacement. The
// cursor arrives as a rune index.
func wordCompleter(candidates func() []string) func(string, int) (string, []string, string) {
	return func(line string, pos int) (head string, completions []string, tail string) {
		if runes := []rune(line); pos >= 0 && pos <= len(runes) {
			pos = len(string(runes[:pos]))
		}

		matches, start, end := complete(line, pos, candidates())

		for _, m := range matches {
			completions = append(completions, m.Str)
		}

		return line[:start], completions, line[end:]
	}
}

// computeMatches ranks completions for the word under the cursor.
func (m model) computeMatches() (
	matches fuzzy.Matches,
	wordStart, wordEnd int,
) {
	input := m.input.Value()

	candidates := ctrlCommands
	if m.mode == modeEval {
		candidates = m.session.Candidates()
	}

	return complete(input, m.cursor(), candidates)
}

// renderCandidateBar renders matches on one line, ellipsized to width.
// The candidate at suggIdx is highlighted while tab-cycling.
func renderCandidateBar(
	matches fuzzy.Matches,
	suggIdx int,
	tabActive bool,
	width int,
	isFunc func(string) bool,
) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	ellipsis := hintStyle.Render("...")
	reserve := lipgloss.Width(sep) + lipgloss.Width(ellipsis)

	var (
		b    strings.Builder
		used int
	)

	for i, match := range matches {
		rendered := renderCandidate(match, tabActive && i == suggIdx, isFunc)
		w := lipgloss.Width(rendered)

		if i > 0 {
			w += lipgloss.Width(sep)
		}

		last := i == len(matches)-1
		if i > 0 && (used+w > width || (!last && used+w+reserve > width)) {
			b.WriteString(sep)
			b.WriteString(ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += w
	}

	return b.String()
}

// renderCandidate highlights the matched runes of match. Functions get a
// "()" suffix that is not part of the completion.
func renderCandidate(match fuzzy.Match, selected bool, isFunc func(string) bool) string {
	base, hl := suggestionStyle, matchStyle
	if selected {
		base, hl = selectedStyle, selectedMatchStyle
	}

	matched := make(map[int]bool, len(match.MatchedIndexes))
	for _, idx := range match.MatchedIndexes {
		matched[idx] = true
	}

	var b strings.Builder

	for i, r := range match.Str {
		if matched[i] {
			b.WriteString(hl.Render(string(r)))
		} else {
			b.WriteString(base.Render(string(r)))
		}
	}

	if isFunc != nil && isFunc(match.Str) {
		b.WriteString(base.Render("()"))
	}

	return b.String()
}
