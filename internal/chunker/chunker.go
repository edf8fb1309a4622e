package chunker

import (
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cvqa/retrieval-engine/internal/config"
	"github.com/cvqa/retrieval-engine/internal/domain"
)

const fullCVMaxChars = 4000

var chunkIDEntropy = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0) //nolint:gosec // Weak random is sufficient for ULID entropy.

func newChunkID() string {
	id, err := ulid.New(ulid.Timestamp(time.Now()), chunkIDEntropy)
	if err != nil {
		return fmt.Sprintf("chunk_%d", time.Now().UnixNano())
	}
	return "chunk_" + strings.ToLower(id.String())
}

// Chunker segments one CV's extracted text into the ordered chunk set
// described in §4.1: a summary chunk at index 0, one chunk per parsed
// position, a single skills chunk, and a full_cv chunk capped at
// fullCVMaxChars.
type Chunker struct {
	taxonomy *Taxonomy
}

// New builds a Chunker from the seeded RAG taxonomy configuration.
func New(rag *config.RAGConfig) *Chunker {
	return &Chunker{taxonomy: NewTaxonomy(rag)}
}

// Chunk segments rawText extracted from filename into the ordered chunk set
// for cvID. Returns domain.ErrInvalidArgument if rawText is empty after
// trimming.
func (c *Chunker) Chunk(cvID, filename, rawText string) ([]domain.Chunk, string, error) {
	trimmed := strings.TrimSpace(rawText)
	if trimmed == "" {
		return nil, "", fmt.Errorf("%w: empty extracted text for %q", domain.ErrInvalidArgument, filename)
	}

	candidateName := c.taxonomy.CandidateNameFromFilename(filename)
	sections := c.segmentSections(trimmed)
	positions := c.parsePositions(sections[domain.SectionExperience])
	skills := c.extractSkills(sections[domain.SectionSkills], trimmed)
	metadata := c.aggregate(positions, trimmed, skills)

	if candidateName == "" {
		candidateName = guessNameFromSummary(sections[domain.SectionSummary])
	}

	var chunks []domain.Chunk
	chunks = append(chunks, domain.Chunk{
		ChunkID:     newChunkID(),
		CVID:        cvID,
		ChunkIndex:  0,
		SectionType: domain.SectionSummary,
		Content:     buildSummaryContent(candidateName, metadata, sections[domain.SectionSummary]),
		Metadata:    metadata,
		Filename:    filename,
	})

	idx := 1
	for _, p := range positions {
		chunks = append(chunks, domain.Chunk{
			ChunkID:     newChunkID(),
			CVID:        cvID,
			ChunkIndex:  idx,
			SectionType: domain.SectionExperience,
			Content:     buildPositionContent(p),
			Metadata:    metadata,
			Filename:    filename,
		})
		idx++
	}

	if len(skills) > 0 {
		chunks = append(chunks, domain.Chunk{
			ChunkID:     newChunkID(),
			CVID:        cvID,
			ChunkIndex:  idx,
			SectionType: domain.SectionSkills,
			Content:     "Skills: " + strings.Join(skills, ", "),
			Metadata:    metadata,
			Filename:    filename,
		})
		idx++
	}

	chunks = append(chunks, domain.Chunk{
		ChunkID:     newChunkID(),
		CVID:        cvID,
		ChunkIndex:  idx,
		SectionType: domain.SectionFullCV,
		Content:     truncate(trimmed, fullCVMaxChars),
		Metadata:    metadata,
		Filename:    filename,
	})

	return chunks, candidateName, nil
}

// segmentSections splits rawText into named sections using the taxonomy's
// header regexes, falling back to a single "general" bucket when no headers
// are recognized at all (§4.1 step 2).
func (c *Chunker) segmentSections(rawText string) map[domain.SectionType]string {
	type boundary struct {
		section      domain.SectionType
		headerStart  int
		contentStart int
	}
	var bounds []boundary
	for section, re := range c.taxonomy.SectionHeaders {
		loc := re.FindStringIndex(rawText)
		if loc != nil {
			bounds = append(bounds, boundary{section: domain.SectionType(section), headerStart: loc[0], contentStart: loc[1]})
		}
	}
	if len(bounds) == 0 {
		return map[domain.SectionType]string{domain.SectionGeneral: rawText}
	}

	for i := 0; i < len(bounds); i++ {
		for j := i + 1; j < len(bounds); j++ {
			if bounds[j].headerStart < bounds[i].headerStart {
				bounds[i], bounds[j] = bounds[j], bounds[i]
			}
		}
	}

	out := make(map[domain.SectionType]string, len(bounds)+1)
	if bounds[0].headerStart > 0 {
		out[domain.SectionGeneral] = rawText[:bounds[0].headerStart]
	}
	for i, b := range bounds {
		end := len(rawText)
		if i+1 < len(bounds) {
			end = bounds[i+1].headerStart
		}
		out[b.section] = strings.TrimSpace(rawText[b.contentStart:end])
	}
	return out
}

// experienceBlockSplitRe splits the experience section into per-position
// blocks on blank-line boundaries, the common PDF-extraction paragraph break.
var experienceBlockSplitRe = regexp.MustCompile(`\n\s*\n+`)

func (c *Chunker) parsePositions(experienceSection string) []domain.Position {
	if strings.TrimSpace(experienceSection) == "" {
		return nil
	}
	now := time.Now()
	var positions []domain.Position
	for _, block := range experienceBlockSplitRe.Split(experienceSection, -1) {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		lines := strings.SplitN(block, "\n", 2)
		header := strings.TrimSpace(lines[0])
		body := block
		if len(lines) > 1 {
			body = lines[1]
		}

		if c.taxonomy.educationScore(block) > c.taxonomy.workScore(block) {
			continue // misclassified education block under an experience header
		}

		parsed := c.taxonomy.ExtractTitleCompany(header)
		if !parsed.Valid {
			continue
		}

		dr := ParseDateRange(block)
		p := domain.Position{
			Title:     parsed.Title,
			Company:   parsed.Company,
			StartYear: dr.StartYear,
			EndYear:   dr.EndYear,
			IsCurrent: dr.IsCurrent,
		}
		p.DurationYrs = dr.DurationYears(now)
		if dr.Found && p.DurationYrs == 0 && !dr.IsCurrent {
			p.DurationYrs = 0
		}
		_ = body
		positions = append(positions, p)
	}
	return positions
}

var skillLineSplitRe = regexp.MustCompile(`[,;•\n]+`)

func (c *Chunker) extractSkills(skillsSection, fullText string) []string {
	source := skillsSection
	if strings.TrimSpace(source) == "" {
		return nil
	}
	seen := map[string]bool{}
	var out []string
	for _, tok := range skillLineSplitRe.Split(source, -1) {
		tok = strings.TrimSpace(tok)
		if tok == "" || !c.taxonomy.ValidateSkill(tok) {
			continue
		}
		key := strings.ToLower(tok)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, tok)
	}
	return out
}

var nameLikeLineRe = regexp.MustCompile(`^[A-Z][a-zA-Z'-]+(?:\s+[A-Z][a-zA-Z'-]+){1,3}$`)

func guessNameFromSummary(summary string) string {
	for _, line := range strings.Split(summary, "\n") {
		line = strings.TrimSpace(line)
		if nameLikeLineRe.MatchString(line) {
			return line
		}
	}
	return ""
}

func buildSummaryContent(candidateName string, m domain.EnrichedMetadata, summaryText string) string {
	var sb strings.Builder
	if candidateName != "" {
		sb.WriteString(candidateName)
		sb.WriteString(" — ")
	}
	sb.WriteString(fmt.Sprintf("%s, %.1f years experience", careerPathString(m), m.TotalExperienceYears))
	if m.CurrentRole != "" {
		sb.WriteString(fmt.Sprintf(", currently %s", m.CurrentRole))
		if m.CurrentCompany != "" {
			sb.WriteString(fmt.Sprintf(" at %s", m.CurrentCompany))
		}
	}
	sb.WriteString(".\n")
	if t := strings.TrimSpace(summaryText); t != "" {
		sb.WriteString(t)
	}
	return sb.String()
}

// careerPathString renders the position titles oldest-to-newest, e.g.
// "Software Engineer -> Senior Software Engineer -> Staff Engineer".
func careerPathString(m domain.EnrichedMetadata) string {
	if len(m.Positions) == 0 {
		return string(m.Seniority)
	}
	sorted := make([]domain.Position, len(m.Positions))
	copy(sorted, m.Positions)
	for i := 0; i < len(sorted); i++ {
		for j := i + 1; j < len(sorted); j++ {
			if sorted[j].StartYear != 0 && (sorted[i].StartYear == 0 || sorted[j].StartYear < sorted[i].StartYear) {
				sorted[i], sorted[j] = sorted[j], sorted[i]
			}
		}
	}
	titles := make([]string, 0, len(sorted))
	for _, p := range sorted {
		if p.Title != "" {
			titles = append(titles, p.Title)
		}
	}
	return strings.Join(titles, " -> ")
}

func buildPositionContent(p domain.Position) string {
	years := "unknown dates"
	switch {
	case p.IsCurrent:
		years = fmt.Sprintf("%d-Present", p.StartYear)
	case p.StartYear != 0 && p.EndYear != 0:
		years = fmt.Sprintf("%d-%d", p.StartYear, p.EndYear)
	case p.StartYear != 0:
		years = fmt.Sprintf("starting %d", p.StartYear)
	}
	if p.Company != "" {
		return fmt.Sprintf("%s at %s (%s)", p.Title, p.Company, years)
	}
	return fmt.Sprintf("%s (%s)", p.Title, years)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
