package provider

import "strings"

// ParseMultiTarget parses a provider's tab-delimited response into
// per-language translations. The data line's first field is the echoed
// source text and is discarded; the remaining fields are zipped
// positionally against the requested target list. A missing trailing
// field becomes an empty translation rather than an error, so a partially
// malformed response does not void the whole batch. When the response
// carries an optional header line naming the languages, the last
// non-empty line is taken as the data line.
func ParseMultiTarget(text string, targets []string) map[string]string {
	line := lastNonEmptyLine(text)
	fields := strings.Split(line, "\t")

	// Field 0 is the echoed source column.
	values := fields
	if len(fields) > 1 {
		values = fields[1:]
	}

	translations := make(map[string]string, len(targets))
	for i, lang := range targets {
		if i < len(values) {
			translations[lang] = strings.TrimSpace(values[i])
		} else {
			translations[lang] = ""
		}
	}
	return translations
}

func lastNonEmptyLine(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if strings.TrimSpace(lines[i]) != "" {
			return lines[i]
		}
	}
	return ""
}
