package chunker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cvqa/retrieval-engine/internal/config"
	"github.com/cvqa/retrieval-engine/internal/domain"
)

func newTestChunker(t *testing.T) *Chunker {
	t.Helper()
	return New(config.LoadRAGConfigOrDefault())
}

const sampleCV = `SUMMARY
Experienced backend engineer focused on distributed systems.

EXPERIENCE
Senior Software Engineer at Acme Corp
2020-Present
Led the migration of the payments platform to Go.

Software Engineer | Globex Inc
2017-2020
Built internal tooling for release automation.

EDUCATION
BSc Computer Science, State University, 2016

SKILLS
Go, Kubernetes, PostgreSQL, Distributed Systems
`

func TestChunk_EmptyText_ReturnsInvalidArgument(t *testing.T) {
	c := newTestChunker(t)
	_, _, err := c.Chunk("cv_1", "resume.pdf", "   ")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestChunk_SummaryChunkIsFirstAndIndexZero(t *testing.T) {
	c := newTestChunker(t)
	chunks, _, err := c.Chunk("cv_1", "123_Jane_Doe_engineer.pdf", sampleCV)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)
	assert.Equal(t, domain.SectionSummary, chunks[0].SectionType)
	assert.Equal(t, 0, chunks[0].ChunkIndex)
}

func TestChunk_MetadataIdenticalAcrossChunks(t *testing.T) {
	c := newTestChunker(t)
	chunks, _, err := c.Chunk("cv_1", "123_Jane_Doe_engineer.pdf", sampleCV)
	require.NoError(t, err)
	require.True(t, len(chunks) > 1)
	for _, ch := range chunks[1:] {
		assert.Equal(t, chunks[0].Metadata, ch.Metadata)
	}
}

func TestChunk_ExtractsTwoPositions(t *testing.T) {
	c := newTestChunker(t)
	chunks, _, err := c.Chunk("cv_1", "123_Jane_Doe_engineer.pdf", sampleCV)
	require.NoError(t, err)
	assert.Equal(t, 2, chunks[0].Metadata.PositionCount)
	assert.True(t, chunks[0].Metadata.Positions[0].IsCurrent || chunks[0].Metadata.Positions[1].IsCurrent)
}

func TestChunk_EndsWithFullCVChunkTruncated(t *testing.T) {
	c := newTestChunker(t)
	big := sampleCV
	for i := 0; i < 500; i++ {
		big += "padding line to exceed four thousand characters of raw content.\n"
	}
	chunks, _, err := c.Chunk("cv_1", "resume.pdf", big)
	require.NoError(t, err)
	last := chunks[len(chunks)-1]
	assert.Equal(t, domain.SectionFullCV, last.SectionType)
	assert.LessOrEqual(t, len(last.Content), fullCVMaxChars)
}

func TestCandidateNameFromFilename_StripsLeadingNumericID(t *testing.T) {
	tax := NewTaxonomy(config.LoadRAGConfigOrDefault())
	name := tax.CandidateNameFromFilename("98231_Jane_Doe.pdf")
	assert.Equal(t, "Jane Doe", name)
}

func TestCandidateNameFromFilename_StripsDeniedWord(t *testing.T) {
	tax := NewTaxonomy(config.LoadRAGConfigOrDefault())
	name := tax.CandidateNameFromFilename("98231_Jane_Doe_Summary.pdf")
	assert.Equal(t, "Jane Doe", name)
}

func TestExtractTitleCompany_PrecedenceTitleAtCompany(t *testing.T) {
	tax := NewTaxonomy(config.LoadRAGConfigOrDefault())
	p := tax.ExtractTitleCompany("Senior Engineer at Acme Corp")
	require.True(t, p.Valid)
	assert.Equal(t, "Senior Engineer", p.Title)
	assert.Equal(t, "Acme Corp", p.Company)
}

func TestExtractTitleCompany_PrecedencePipe(t *testing.T) {
	tax := NewTaxonomy(config.LoadRAGConfigOrDefault())
	p := tax.ExtractTitleCompany("Software Engineer | Globex Inc")
	require.True(t, p.Valid)
	assert.Equal(t, "Software Engineer", p.Title)
	assert.Equal(t, "Globex Inc", p.Company)
}

func TestExtractTitleCompany_RejectsYearOnlyHeader(t *testing.T) {
	tax := NewTaxonomy(config.LoadRAGConfigOrDefault())
	p := tax.ExtractTitleCompany("2020")
	assert.False(t, p.Valid)
}

func TestExtractTitleCompany_RejectsSpacedLetterHeader(t *testing.T) {
	tax := NewTaxonomy(config.LoadRAGConfigOrDefault())
	p := tax.ExtractTitleCompany("E X P E R I E N C E")
	assert.False(t, p.Valid)
}

func TestParseDateRange_YearRange(t *testing.T) {
	dr := ParseDateRange("2017-2020")
	require.True(t, dr.Found)
	assert.Equal(t, 2017, dr.StartYear)
	assert.Equal(t, 2020, dr.EndYear)
	assert.False(t, dr.IsCurrent)
}

func TestParseDateRange_Present(t *testing.T) {
	dr := ParseDateRange("2020-Present")
	require.True(t, dr.Found)
	assert.Equal(t, 2020, dr.StartYear)
	assert.True(t, dr.IsCurrent)
}

func TestParseDateRange_MonthYearRange(t *testing.T) {
	dr := ParseDateRange("Jan 2018 - Mar 2021")
	require.True(t, dr.Found)
	assert.Equal(t, 2018, dr.StartYear)
	assert.Equal(t, 2021, dr.EndYear)
}

func TestValidateSkill_RejectsTooShortAndTooLong(t *testing.T) {
	tax := NewTaxonomy(config.LoadRAGConfigOrDefault())
	assert.False(t, tax.ValidateSkill("a"))
	long := ""
	for i := 0; i < 60; i++ {
		long += "x"
	}
	assert.False(t, tax.ValidateSkill(long))
	assert.True(t, tax.ValidateSkill("Kubernetes"))
}

func TestTotalExperience_FallsBackToEstimateWhenUndated(t *testing.T) {
	positions := []domain.Position{{Title: "Engineer"}, {Title: "Senior Engineer"}}
	years, estimated := totalExperience(positions, time.Now())
	assert.True(t, estimated)
	assert.Equal(t, 5.0, years)
}

func TestJobHoppingScore_HighTenureIsZero(t *testing.T) {
	assert.Equal(t, 0.0, jobHoppingScore(3, 12, 4))
}

func TestJobHoppingScore_LowTenureIsOne(t *testing.T) {
	assert.Equal(t, 1.0, jobHoppingScore(3, 0.75, 0.25))
}

func TestEmploymentGapCount_DetectsYearGap(t *testing.T) {
	positions := []domain.Position{
		{StartYear: 2015, EndYear: 2017},
		{StartYear: 2019, EndYear: 2021},
	}
	assert.Equal(t, 1, employmentGapCount(positions))
}
