// Package traceback renders a raised exception for display, grounded on
// runtime/agent/toolerrors.ToolError's message/cause chain — extended with
// the capability-tracking addition spec §4.7 requires: a raised exception's
// message is only shown verbatim if the exception is trusted; otherwise the
// renderer emits a redaction placeholder plus the offending source span.
package traceback

import (
	"fmt"
	"strings"

	"github.com/jbhoffman613/camel-prompt-injection/internal/value"
)

const redactionPlaceholder = "<redacted: message derives from untrusted input>"

// Render formats exc (and, recursively, its Cause chain) against the
// original source text. A line/col of zero (unset, see value.Exception.SetPos)
// renders without a source-span line.
func Render(source string, exc *value.Exception) string {
	var b strings.Builder
	renderOne(&b, source, exc, 0)
	return b.String()
}

func renderOne(b *strings.Builder, source string, exc *value.Exception, depth int) {
	indent := strings.Repeat("  ", depth)
	msg := exc.Message
	if !value.IsTrusted(exc) {
		msg = redactionPlaceholder
	}
	fmt.Fprintf(b, "%s%s: %s\n", indent, exc.ExcKind, msg)
	if exc.Line > 0 {
		fmt.Fprintf(b, "%s%s\n", indent, sourceSpan(source, exc.Line, exc.Col))
	}
	if exc.Cause != nil {
		fmt.Fprintf(b, "%scaused by:\n", indent)
		renderOne(b, source, exc.Cause, depth+1)
	}
}

// sourceSpan extracts the offending line and underlines the column, the
// "source-highlighted offending code span" spec §4.7 calls for when a
// message is redacted.
func sourceSpan(source string, line, col int) string {
	lines := strings.Split(source, "\n")
	if line < 1 || line > len(lines) {
		return ""
	}
	text := lines[line-1]
	marker := strings.Repeat(" ", max(col-1, 0)) + "^"
	return text + "\n" + marker
}

// IsRedacted reports whether rendering exc would hide its message, for
// callers that want to branch on redaction without re-rendering (e.g. the
// CLI driver deciding whether to echo the raw exception to a log sink with
// different trust boundaries than the terminal).
func IsRedacted(exc *value.Exception) bool {
	return !value.IsTrusted(exc)
}
