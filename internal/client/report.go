package client

import (
	"fmt"
	"strings"
)

// FormatReport renders the JSON fields of an ingestion response as a
// Markdown report. Sections whose key is missing are omitted.
func FormatReport(data map[string]any) string {
	var lines []string

	if v, ok := data["summary"]; ok {
		lines = append(lines,
			"# Repository Analysis Summary",
			text(v),
			"",
		)
	}

	if v, ok := data["tree"]; ok {
		lines = append(lines,
			"# Repository Structure",
			"```",
			text(v),
			"```",
			"",
		)
	}

	if v, ok := data["content"]; ok {
		lines = append(lines,
			"# File Contents",
			"Key files analyzed from the repository:",
			"```",
			text(v),
			"```",
		)
	}

	return strings.Join(lines, "\n")
}

func text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}
