package diag

import (
	"fmt"
	"strings"
)

// FormatDiagnostics renders diagnostics into a stable single-line-per-entry
// representation used for CLI output and golden comparisons. Multi-line
// messages are flattened so one diagnostic is always one line.
func FormatDiagnostics(diags []Diagnostic, includeNotes bool) string {
	var b strings.Builder
	for i, d := range diags {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s %s %s %s",
			severityLabel(d.Severity), d.Code.ID(), d.Primary, sanitizeMessage(d.Message))
		if includeNotes {
			for _, note := range d.Notes {
				fmt.Fprintf(&b, "\nnote %s %s %s", d.Code.ID(), d.Primary, sanitizeMessage(note.Msg))
			}
		}
	}
	return b.String()
}

func severityLabel(s Severity) string {
	switch s {
	case SevError:
		return "error"
	case SevWarning:
		return "warning"
	default:
		return "info"
	}
}

func sanitizeMessage(msg string) string {
	msg = strings.ReplaceAll(msg, "\n", " ")
	return strings.Join(strings.Fields(msg), " ")
}
