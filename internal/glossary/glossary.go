// Package glossary loads locked terminology from a CSV file and renders
// it into the system context given to translation providers, so that
// critical terms are translated the same way every time.
package glossary

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
)

// Term is one locked glossary entry.
type Term struct {
	Source string
	Target string
	Note   string
}

// Glossary is an ordered list of locked terms.
type Glossary struct {
	Terms []Term
}

// DefaultTerms returns the terms that are locked even without a glossary
// file. The first entry exists because models reliably mistranslate it.
func DefaultTerms() []Term {
	return []Term{
		{Source: "ショックキラー", Target: "shock absorber", Note: `NEVER "shock killer"`},
		{Source: "チューブ外径", Target: "Tube O.D."},
		{Source: "チューブ内径", Target: "Tube I.D."},
		{Source: "シリンダ径", Target: "Cylinder Bore Size"},
		{Source: "体系表", Target: "System Chart"},
	}
}

// Load reads a glossary CSV with rows of source,target[,note]. A missing
// file yields the default terms only; that is not an error.
func Load(path string) (*Glossary, error) {
	g := &Glossary{Terms: DefaultTerms()}
	if path == "" {
		return g, nil
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return g, nil
		}
		return nil, fmt.Errorf("failed to open glossary: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse glossary: %w", err)
	}

	for i, rec := range records {
		if len(rec) < 2 {
			continue
		}
		src, tgt := strings.TrimSpace(rec[0]), strings.TrimSpace(rec[1])
		if src == "" || tgt == "" {
			continue
		}
		// Skip a header row if present.
		if i == 0 && strings.EqualFold(src, "source") && strings.EqualFold(tgt, "target") {
			continue
		}
		term := Term{Source: src, Target: tgt}
		if len(rec) > 2 {
			term.Note = strings.TrimSpace(rec[2])
		}
		g.Terms = append(g.Terms, term)
	}
	return g, nil
}

// SystemContext renders the locked terms as a block for the provider's
// system prompt.
func (g *Glossary) SystemContext() string {
	if len(g.Terms) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("CRITICAL GLOSSARY TERMS (MUST USE):\n")
	for _, t := range g.Terms {
		b.WriteString("- ")
		b.WriteString(t.Source)
		b.WriteString(" = ")
		b.WriteString(t.Target)
		if t.Note != "" {
			b.WriteString(" (")
			b.WriteString(t.Note)
			b.WriteString(")")
		}
		b.WriteString("\n")
	}
	return b.String()
}

// Len returns the number of locked terms.
func (g *Glossary) Len() int { return len(g.Terms) }
