package outputproc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/cvqa/retrieval-engine/internal/domain"
)

func TestExtractThinking_FindsBlock(t *testing.T) {
	raw := ":::thinking\nweighing candidates\n:::\nRest of the answer."
	thinking, warnings := ExtractThinking(raw)
	assert.Equal(t, "weighing candidates", thinking)
	assert.Empty(t, warnings)
}

func TestExtractThinking_AbsentReturnsEmpty(t *testing.T) {
	thinking, _ := ExtractThinking("No markers here.")
	assert.Empty(t, thinking)
}

func TestExtractConclusion_FindsBlock(t *testing.T) {
	raw := "Answer text.\n:::conclusion\nAlice is the best fit.\n:::"
	conclusion, _ := ExtractConclusion(raw)
	assert.Equal(t, "Alice is the best fit.", conclusion)
}

func TestReconcileConclusion_RewritesAffirmativeOnNotFound(t *testing.T) {
	got := ReconcileConclusion("Yes, Alice has an AWS certification.", "NOT_FOUND")
	assert.Contains(t, got, "Unable to verify")
	assert.NotContains(t, got, "Yes,")
}

func TestReconcileConclusion_LeavesConfirmedVerdictUntouched(t *testing.T) {
	got := ReconcileConclusion("Yes, confirmed by the evidence.", "CONFIRMED")
	assert.Equal(t, "Yes, confirmed by the evidence.", got)
}

func TestExtractDirectAnswer_SkipsContaminatedParagraph(t *testing.T) {
	raw := "Assistant: here is scaffolding.\n\nAlice has 5 years of Go experience. She led two teams. She shipped three products. She also mentors juniors."
	answer, warnings := ExtractDirectAnswer(raw)
	assert.Contains(t, answer, "Alice has 5 years of Go experience.")
	assert.NotEmpty(t, warnings)
}

func TestExtractDirectAnswer_TruncatesToThreeSentences(t *testing.T) {
	raw := "One. Two. Three. Four."
	answer, _ := ExtractDirectAnswer(raw)
	assert.Equal(t, "One. Two. Three.", answer)
}

func TestExtractAnalysis_DiscardsShortRemainder(t *testing.T) {
	analysis, warnings := ExtractAnalysis("Short answer.", "Short answer.")
	assert.Empty(t, analysis)
	assert.NotEmpty(t, warnings)
}

func TestExtractAnalysis_KeepsLongRemainder(t *testing.T) {
	direct := "Alice is a strong fit."
	raw := direct + "\n\nHer experience spans backend systems, distributed databases, and platform reliability work across several large-scale production environments."
	analysis, warnings := ExtractAnalysis(raw, direct)
	assert.NotEmpty(t, analysis)
	assert.Empty(t, warnings)
}

func TestParseTables_DerivesPercentMatchScore(t *testing.T) {
	raw := "| Name | Match |\n|---|---|\n| **[Alice](cv:cv_1)** | 82% |\n"
	rows, warnings := ParseTables(raw)
	assert.Empty(t, warnings)
	assert.Len(t, rows, 1)
	assert.Equal(t, "Alice", rows[0].CandidateName)
	assert.Equal(t, "cv_1", rows[0].CVID)
	assert.Equal(t, 82.0, rows[0].MatchScore)
}

func TestParseTables_DerivesStarMatchScore(t *testing.T) {
	raw := "| Name | Rating |\n|---|---|\n| **Bob** | ★★★★★ |\n"
	rows, _ := ParseTables(raw)
	assert.Len(t, rows, 1)
	assert.Equal(t, 100.0, rows[0].MatchScore)
}

func TestParseTables_DerivesTextualQualifierScore(t *testing.T) {
	raw := "| Name | Fit |\n|---|---|\n| **Carol** | strong |\n"
	rows, _ := ParseTables(raw)
	assert.Len(t, rows, 1)
	assert.Equal(t, 80.0, rows[0].MatchScore)
}

func TestDedupeTableRows_PrefersNewerIndexedAt(t *testing.T) {
	older := domain.TableRow{CandidateName: "Dana", MatchScore: 60, IndexedAt: time.Unix(1, 0)}
	newer := domain.TableRow{CandidateName: "dana", MatchScore: 40, IndexedAt: time.Unix(2, 0)}
	out := DedupeTableRows([]domain.TableRow{older, newer})
	assert.Len(t, out, 1)
	assert.Equal(t, 40.0, out[0].MatchScore)
}

func TestDedupeTableRows_PrefersHigherMatchScoreOnTie(t *testing.T) {
	a := domain.TableRow{CandidateName: "Eve", MatchScore: 60}
	b := domain.TableRow{CandidateName: "Eve", MatchScore: 90}
	out := DedupeTableRows([]domain.TableRow{a, b})
	assert.Len(t, out, 1)
	assert.Equal(t, 90.0, out[0].MatchScore)
}

func TestFallbackTableFromResults_BuildsRowsFromSimilarity(t *testing.T) {
	results := []domain.SearchResult{{CVID: "cv_1", Similarity: 0.9}}
	rows := FallbackTableFromResults(results)
	assert.Len(t, rows, 1)
	assert.Equal(t, "cv_1", rows[0].CandidateName)
	assert.Equal(t, 90.0, rows[0].MatchScore)
}

func TestProcess_UsesFallbackTableWhenNoTableInRaw(t *testing.T) {
	out := Process("Just a plain answer with no tables.", []domain.SearchResult{{CVID: "cv_1", Similarity: 0.5}})
	assert.True(t, out.FallbackUsed)
	assert.Len(t, out.TableData, 1)
}

func TestProcess_PrefersLLMTableOverFallback(t *testing.T) {
	raw := "| Name | Match |\n|---|---|\n| **[Alice](cv:cv_1)** | 82% |\n"
	out := Process(raw, []domain.SearchResult{{CVID: "cv_2", Similarity: 0.5}})
	assert.False(t, out.FallbackUsed)
	assert.Equal(t, []string{"cv_1"}, out.CVReferences)
}
