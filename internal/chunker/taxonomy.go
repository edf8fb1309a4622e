// Package chunker segments extracted CV text into ordered chunks with
// enriched metadata (C2).
package chunker

import (
	"regexp"
	"strings"

	"github.com/cvqa/retrieval-engine/internal/config"
)

// Taxonomy holds the compiled keyword/regex/deny-list configuration used by
// section segmentation, position parsing, and skill validation.
type Taxonomy struct {
	SectionHeaders     map[string]*regexp.Regexp
	JobTitleDenyList    map[string]bool
	FillerPrepositions  map[string]bool
	EducationKeywords   map[string]bool
	WorkKeywords        map[string]bool
}

var educationKeywords = []string{
	"university", "college", "degree", "bachelor", "master", "phd", "diploma",
	"institute", "school of", "graduated", "gpa", "academy",
}

var workKeywords = []string{
	"developed", "managed", "led", "built", "designed", "implemented",
	"responsible for", "achieved", "delivered", "engineered",
}

// NewTaxonomy compiles the taxonomy from the RAG config's seed word lists.
func NewTaxonomy(rag *config.RAGConfig) *Taxonomy {
	t := &Taxonomy{
		SectionHeaders:     map[string]*regexp.Regexp{},
		JobTitleDenyList:   toSet(rag.JobTitleDenyList),
		FillerPrepositions: toSet(rag.FillerPrepositions),
		EducationKeywords:  toSet(educationKeywords),
		WorkKeywords:       toSet(workKeywords),
	}
	for section, keywords := range rag.SectionKeywords {
		t.SectionHeaders[section] = headerRegex(keywords)
	}
	return t
}

func toSet(words []string) map[string]bool {
	out := make(map[string]bool, len(words))
	for _, w := range words {
		out[strings.ToLower(strings.TrimSpace(w))] = true
	}
	return out
}

// headerRegex builds a case-insensitive, line-anchored regex matching any of
// the given keywords as a standalone section header.
func headerRegex(keywords []string) *regexp.Regexp {
	escaped := make([]string, len(keywords))
	for i, k := range keywords {
		escaped[i] = regexp.QuoteMeta(k)
	}
	pattern := `(?im)^\s*(` + strings.Join(escaped, "|") + `)\s*:?\s*$`
	return regexp.MustCompile(pattern)
}

// IsJobTitleDenied reports whether a candidate position-title token is on
// the deny-list (e.g. "references", "hobbies").
func (t *Taxonomy) IsJobTitleDenied(s string) bool {
	return t.JobTitleDenyList[strings.ToLower(strings.TrimSpace(s))]
}

// IsFillerPreposition reports whether a word is a filler preposition to be
// stripped from normalized titles/company names.
func (t *Taxonomy) IsFillerPreposition(s string) bool {
	return t.FillerPrepositions[strings.ToLower(strings.TrimSpace(s))]
}

// educationScore counts education-keyword hits in a text block.
func (t *Taxonomy) educationScore(text string) int {
	return countKeywordHits(strings.ToLower(text), t.EducationKeywords)
}

// workScore counts work-keyword hits in a text block.
func (t *Taxonomy) workScore(text string) int {
	return countKeywordHits(strings.ToLower(text), t.WorkKeywords)
}

func countKeywordHits(lower string, set map[string]bool) int {
	hits := 0
	for kw := range set {
		if strings.Contains(lower, kw) {
			hits++
		}
	}
	return hits
}

// spacedLetterHeaderRe matches headers like "E X P E R I E N C E" (single
// letters separated by whitespace), a common PDF-extraction artifact.
var spacedLetterHeaderRe = regexp.MustCompile(`^(?:[A-Za-z]\s+){2,}[A-Za-z]$`)

// IsSpacedLetterHeader reports whether s looks like a letter-spaced header.
func IsSpacedLetterHeader(s string) bool {
	return spacedLetterHeaderRe.MatchString(strings.TrimSpace(s))
}

var pureNumberRe = regexp.MustCompile(`^[\d\s.,/-]+$`)

// IsPureNumber reports whether s contains only digits/punctuation.
func IsPureNumber(s string) bool {
	s = strings.TrimSpace(s)
	return s != "" && pureNumberRe.MatchString(s)
}

var yearOnlyRe = regexp.MustCompile(`^(19|20)\d{2}$`)

// IsYearOnly reports whether s is a bare 4-digit year.
func IsYearOnly(s string) bool {
	return yearOnlyRe.MatchString(strings.TrimSpace(s))
}
