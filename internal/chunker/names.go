package chunker

import (
	"regexp"
	"strings"
)

var filenameTokenRe = regexp.MustCompile(`[_\-.]+`)

// CandidateNameFromFilename extracts a candidate name from a
// "fileid_First_Last_role.pdf"-style filename, stripping the file
// extension, leading id token, and any trailing job-title/non-name words
// found in the taxonomy's deny-list (§4.1 step 1).
func (t *Taxonomy) CandidateNameFromFilename(filename string) string {
	base := filename
	if idx := strings.LastIndex(base, "."); idx > 0 {
		base = base[:idx]
	}
	tokens := filenameTokenRe.Split(base, -1)
	if len(tokens) == 0 {
		return ""
	}
	// Drop a leading purely-numeric/id-looking token.
	if len(tokens) > 1 && (IsPureNumber(tokens[0]) || len(tokens[0]) <= 3) {
		tokens = tokens[1:]
	}
	var nameTokens []string
	for _, tok := range tokens {
		if tok == "" {
			continue
		}
		if t.IsJobTitleDenied(tok) || IsPureNumber(tok) {
			continue
		}
		nameTokens = append(nameTokens, strings.Title(strings.ToLower(tok))) //nolint:staticcheck // simple title-case for human names
	}
	return strings.Join(nameTokens, " ")
}

// ParsedPosition is the title/company pair extracted from a job block
// header, with the precedence rule from §4.1 step 3.
type ParsedPosition struct {
	Title   string
	Company string
	Valid   bool
}

var titleAtCompanyRe = regexp.MustCompile(`(?i)^(.+?)\s+at\s+(.+)$`)

// ExtractTitleCompany applies the deterministic precedence:
// "Title at Company" > "Title | Company" > first line, running the
// rejection validators (years, spaced-letter headers, pure numbers,
// filler-preposition-led words) on the title; the company is not validated.
func (t *Taxonomy) ExtractTitleCompany(header string) ParsedPosition {
	header = strings.TrimSpace(header)
	if header == "" {
		return ParsedPosition{}
	}

	if m := titleAtCompanyRe.FindStringSubmatch(header); m != nil {
		return t.validatePosition(strings.TrimSpace(m[1]), strings.TrimSpace(m[2]))
	}
	if parts := strings.SplitN(header, "|", 2); len(parts) == 2 {
		return t.validatePosition(strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]))
	}
	// First line only: treat the whole header as the title, no company.
	return t.validatePosition(header, "")
}

func (t *Taxonomy) validatePosition(title, company string) ParsedPosition {
	if !t.isValidPositionToken(title) {
		return ParsedPosition{}
	}
	return ParsedPosition{Title: title, Company: company, Valid: true}
}

func (t *Taxonomy) isValidPositionToken(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	if IsYearOnly(s) || IsPureNumber(s) {
		return false
	}
	if IsSpacedLetterHeader(s) {
		return false
	}
	firstWord := strings.Fields(s)
	if len(firstWord) > 0 && t.IsFillerPreposition(firstWord[0]) {
		return false
	}
	return true
}

// ValidateSkill reports whether s qualifies as a skill token per §4.1 step 6:
// length 2-50, not a spaced-letter header, not on the job-title deny-list,
// and not starting with a filler preposition.
func (t *Taxonomy) ValidateSkill(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) < 2 || len(s) > 50 {
		return false
	}
	if IsSpacedLetterHeader(s) {
		return false
	}
	if t.IsJobTitleDenied(s) {
		return false
	}
	firstWord := strings.Fields(s)
	if len(firstWord) > 0 && t.IsFillerPreposition(firstWord[0]) {
		return false
	}
	return true
}
