package repl

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// functionCall describes the call whose argument list holds the cursor.
type functionCall struct {
	name     string
	argIndex int
	inCall   bool
}

func isIdentRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// detectFunctionCall finds the innermost unclosed call before cursor and
// the index of the argument being typed. Parentheses and commas inside
// string literals are ignored.
func detectFunctionCall(input string, cursor int) functionCall {
	cursor = min(max(cursor, 0), len(input))

	// Offsets of unclosed '(' and the commas seen inside each.
	type frame struct{ open, commas int }

	var (
		stack    []frame
		inString bool
	)

	for i, r := range input[:cursor] {
		if r == '"' {
			inString = !inString

			continue
		}

		if inString {
			continue
		}

		switch r {
		case '(':
			stack = append(stack, frame{open: i})
		case ')':
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case ',':
			if len(stack) > 0 {
				stack[len(stack)-1].commas++
			}
		}
	}

	if len(stack) == 0 {
		return functionCall{}
	}

	top := stack[len(stack)-1]

	start := top.open
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if !isIdentRune(r) {
			break
		}

		start -= size
	}

	name := input[start:top.open]
	if name == "" {
		return functionCall{}
	}

	return functionCall{name: name, argIndex: top.commas, inCall: true}
}

// renderSignatureHint renders sig with the parameter at argIdx
// highlighted. sig has the form name(p1, p2) with an optional result.
func renderSignatureHint(sig string, params []string, argIdx int) string {
	open := strings.IndexByte(sig, '(')
	if open < 0 {
		return signatureStyle.Render(sig)
	}

	closing := strings.LastIndexByte(sig, ')')
	if closing < open {
		return signatureStyle.Render(sig)
	}

	var b strings.Builder

	b.WriteString(signatureNameStyle.Render(sig[:open]))
	b.WriteString(signatureStyle.Render("("))

	for i, p := range params {
		if i > 0 {
			b.WriteString(signatureStyle.Render(", "))
		}

		if i == argIdx {
			b.WriteString(currentParamStyle.Render(p))
		} else {
			b.WriteString(signatureStyle.Render(p))
		}
	}

	b.WriteString(signatureStyle.Render(sig[closing:]))

	return b.String()
}
