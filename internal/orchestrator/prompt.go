package orchestrator

import (
	"fmt"
	"strings"
)

// langNames maps supported language codes to the names used in prompts
// and bilingual output headers.
var langNames = map[string]string{
	"ja": "Japanese", "en": "English", "de": "German", "fr": "French",
	"es": "Spanish", "em": "Spanish (MX)", "pt": "Portuguese",
	"it": "Italian", "cz": "Czech", "pl": "Polish", "tk": "Turkish",
	"vi": "Vietnamese", "th": "Thai", "id": "Indonesian",
	"ko": "Korean", "cn": "Chinese (CN)", "tw": "Chinese (TW)",
}

// LangName returns the display name for a language code, falling back to
// the upper-cased code itself.
func LangName(code string) string {
	if name, ok := langNames[code]; ok {
		return name
	}
	return strings.ToUpper(code)
}

// buildPrompt names every remaining target language explicitly and
// instructs tab-delimited multi-column output. One call for N languages
// amortizes the system context cost across all of them, which is the
// dominant saving of the whole pipeline.
func buildPrompt(text, sourceLang string, targets []string) string {
	sourceName := LangName(sourceLang)
	targetNames := make([]string, len(targets))
	for i, t := range targets {
		targetNames[i] = LangName(t)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "TASK: Translate from %s to MULTIPLE languages SIMULTANEOUSLY\n\n", sourceName)
	fmt.Fprintf(&b, "SOURCE LANGUAGE: %s\n", sourceName)
	fmt.Fprintf(&b, "TARGET LANGUAGES: %s\n", strings.Join(targetNames, ", "))
	fmt.Fprintf(&b, "NUMBER OF TARGETS: %d\n\n", len(targets))
	fmt.Fprintf(&b, "SOURCE TEXT:\n%s\n\n", text)
	b.WriteString("INSTRUCTIONS:\n")
	b.WriteString("1. Preserve all technical terminology exactly\n")
	b.WriteString("2. Preserve every ⟦TAG_nnn⟧ placeholder exactly where it belongs\n")
	b.WriteString("3. Output ONLY one TAB-delimited line, no explanations\n\n")
	fmt.Fprintf(&b, "OUTPUT FORMAT (single line, TAB-separated columns):\n%s[TAB]%s\n\n",
		sourceName, strings.Join(targetNames, "[TAB]"))
	b.WriteString("Begin translation:\n")
	return b.String()
}

// buildSystemContext assembles the fixed per-request system prompt from
// the translator role and the locked glossary block.
func buildSystemContext(glossaryBlock string) string {
	var b strings.Builder
	b.WriteString("You are a professional technical translator for industrial catalogs.\n\n")
	b.WriteString("REQUIREMENTS:\n")
	b.WriteString("1. Preserve all technical terminology exactly\n")
	b.WriteString("2. Maintain original formatting\n")
	b.WriteString("3. Output ONLY the translation, no explanations\n")
	if glossaryBlock != "" {
		b.WriteString("\n")
		b.WriteString(glossaryBlock)
	}
	return b.String()
}
