package tagcodec

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Kind identifies the markup family a detected tag belongs to.
type Kind string

const (
	// KindOpen is a generic opening tag like <b>.
	KindOpen Kind = "open"
	// KindClose is a generic closing tag like </b>.
	KindClose Kind = "close"
	// KindHybridOpen is a bracket-style opening marker carrying attributes,
	// like [uf ufcatid="123"}.
	KindHybridOpen Kind = "hybrid_open"
	// KindHybridClose is the matching bracket-style closing marker {uf].
	KindHybridClose Kind = "hybrid_close"
	// KindNumbered is a numbered brace placeholder like {1}.
	KindNumbered Kind = "numbered"
	// KindSelfClosing is a short alphanumeric tag like <g1> or <x1/>.
	KindSelfClosing Kind = "self_closing"
	// KindPlaceholder is one of the codec's own placeholders, matched to
	// guard against masking an already-masked text twice.
	KindPlaceholder Kind = "placeholder"
)

// Token is a single detected markup occurrence in a text.
type Token struct {
	Kind  Kind
	Text  string
	Start int
	End   int
}

// MaskedTag pairs a synthetic placeholder with the token it replaced.
type MaskedTag struct {
	ID          string
	Placeholder string
	Token       Token
}

// MaskedSegment is the result of one Mask call. The same segment is reused
// for every target language of a request, since tag positions do not depend
// on the output language.
type MaskedSegment struct {
	Original string
	Masked   string
	Tags     []MaskedTag
}

// TagCount returns the number of tags that were masked.
func (s *MaskedSegment) TagCount() int { return len(s.Tags) }

// Placeholder delimiters. The bracket pair is chosen to be absent from
// natural language and from every supported markup family.
const (
	placeholderOpen  = "⟦" // ⟦
	placeholderClose = "⟧" // ⟧
)

var placeholderRE = regexp.MustCompile(placeholderOpen + `TAG_\d+` + placeholderClose)

// family patterns, most specific first. A span claimed by an earlier family
// is never reclassified by a later one.
var families = []struct {
	kind Kind
	re   *regexp.Regexp
}{
	{KindPlaceholder, placeholderRE},
	{KindHybridOpen, regexp.MustCompile(`\[uf[^\]]*\}`)},
	{KindHybridClose, regexp.MustCompile(`\{uf\]`)},
	{KindNumbered, regexp.MustCompile(`\{[0-9]+\}`)},
	{KindClose, regexp.MustCompile(`</[^>]+>`)},
	{KindSelfClosing, regexp.MustCompile(`<[a-z][0-9]+\s*/?>`)},
	{KindOpen, regexp.MustCompile(`<[^>]+>`)},
}

// Detect finds every markup occurrence in text across all families and
// returns the tokens sorted by start offset. Spans are non-overlapping;
// when two families match the same span the more specific family wins.
func Detect(text string) []Token {
	var tokens []Token
	for _, f := range families {
		for _, m := range f.re.FindAllStringIndex(text, -1) {
			if overlapsAny(tokens, m[0], m[1]) {
				continue
			}
			tokens = append(tokens, Token{
				Kind:  f.kind,
				Text:  text[m[0]:m[1]],
				Start: m[0],
				End:   m[1],
			})
		}
	}
	sort.Slice(tokens, func(i, j int) bool { return tokens[i].Start < tokens[j].Start })
	return tokens
}

func overlapsAny(tokens []Token, start, end int) bool {
	for _, t := range tokens {
		if start < t.End && end > t.Start {
			return true
		}
	}
	return false
}

// Mask replaces every detected tag with a numbered placeholder and records
// the mapping needed to restore them. Placeholder ids are assigned in text
// order starting at zero. Replacement runs back to front so that earlier
// replacements never shift offsets still to be applied.
func Mask(text string) *MaskedSegment {
	tokens := Detect(text)
	seg := &MaskedSegment{Original: text, Masked: text}
	if len(tokens) == 0 {
		return seg
	}

	seg.Tags = make([]MaskedTag, len(tokens))
	for i, tok := range tokens {
		id := fmt.Sprintf("TAG_%03d", i)
		seg.Tags[i] = MaskedTag{
			ID:          id,
			Placeholder: placeholderOpen + id + placeholderClose,
			Token:       tok,
		}
	}

	masked := text
	for i := len(tokens) - 1; i >= 0; i-- {
		t := seg.Tags[i]
		masked = masked[:t.Token.Start] + t.Placeholder + masked[t.Token.End:]
	}
	seg.Masked = masked
	return seg
}

// Unmask restores the original tags in a translated text by literal
// placeholder substitution. Placeholders that remain afterwards are
// returned as leaked: the translation most likely dropped or mangled
// them. A leak is a warning for the caller to report, not an error.
func Unmask(text string, seg *MaskedSegment) (restored string, leaked []string) {
	restored = text
	for _, t := range seg.Tags {
		restored = strings.ReplaceAll(restored, t.Placeholder, t.Token.Text)
	}
	leaked = placeholderRE.FindAllString(restored, -1)
	if leaked == nil && (strings.Contains(restored, placeholderOpen) || strings.Contains(restored, placeholderClose)) {
		// A mangled placeholder: the delimiter survived but the id did not.
		leaked = []string{placeholderOpen + "?" + placeholderClose}
	}
	return restored, leaked
}

// StructureError describes how a translation failed structural validation.
type StructureError struct {
	Reason string
}

func (e *StructureError) Error() string {
	return "structural integrity: " + e.Reason
}

// ValidateStructure re-detects tags in both texts and checks that the
// translation preserved tag count, kind order, and, for kinds that carry no
// translatable content, the literal tag text. Hybrid opening markers and
// short self-closing tags may legitimately differ in their attribute
// payload, so they are only held to kind and position.
func ValidateStructure(source, target string) error {
	srcTags := Detect(source)
	tgtTags := Detect(target)

	if len(srcTags) != len(tgtTags) {
		return &StructureError{Reason: fmt.Sprintf(
			"tag count mismatch: source has %d, translation has %d", len(srcTags), len(tgtTags))}
	}

	for i := range srcTags {
		src, tgt := srcTags[i], tgtTags[i]
		if src.Kind != tgt.Kind {
			return &StructureError{Reason: fmt.Sprintf(
				"tag kind mismatch at position %d: %s became %s", i, src.Kind, tgt.Kind)}
		}
		if src.Kind == KindHybridOpen || src.Kind == KindSelfClosing {
			continue
		}
		if src.Text != tgt.Text {
			return &StructureError{Reason: fmt.Sprintf(
				"tag text mismatch at position %d: %q became %q", i, src.Text, tgt.Text)}
		}
	}
	return nil
}
