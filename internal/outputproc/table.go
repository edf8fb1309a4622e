package outputproc

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/cvqa/retrieval-engine/internal/domain"
)

// markdownTableRowRe matches a single `| cell | cell | ... |` table row,
// including the separator row (`|---|---|`) which callers must skip.
var markdownTableRowRe = regexp.MustCompile(`(?m)^\s*\|(.+)\|\s*$`)

var separatorCellRe = regexp.MustCompile(`^:?-{2,}:?$`)

var boldCellRe = regexp.MustCompile(`\*\*\s*(.+?)\s*\*\*`)

var percentRe = regexp.MustCompile(`(\d{1,3}(?:\.\d+)?)\s*%`)
var starRe = regexp.MustCompile(`([★]{1,5}|(\d)\s*/\s*5\s*★)`)

var textualQualifierScore = map[string]float64{
	"excellent": 95, "outstanding": 95, "exceptional": 95,
	"strong": 80, "good": 70, "solid": 70,
	"moderate": 55, "average": 50, "fair": 45,
	"weak": 30, "poor": 20, "low": 20,
}

var cvIDCellRe = regexp.MustCompile(`cv:([a-zA-Z0-9_-]+)`)

// ParseTables finds every markdown table in raw (including ones inside code
// fences) and flattens their data rows into TableRow values (§4.9). The
// header row supplies the Columns keys of each row and is also used to
// detect which column holds the candidate name.
func ParseTables(raw string) ([]domain.TableRow, []domain.ParsingWarning) {
	text := stripCodeFenceMarkers(raw)
	lines := strings.Split(text, "\n")

	var rows []domain.TableRow
	var warnings []domain.ParsingWarning
	var header []string
	sawHeader := false

	for _, line := range lines {
		m := markdownTableRowRe.FindStringSubmatch(line)
		if m == nil {
			sawHeader = false
			header = nil
			continue
		}
		cells := splitCells(m[1])
		if isSeparatorRow(cells) {
			continue
		}
		if !sawHeader {
			header = cells
			sawHeader = true
			continue
		}
		row, ok := rowFromCells(cells, header)
		if !ok {
			warnings = append(warnings, domain.ParsingWarning{
				Stage:   "table",
				Message: "skipped table row with no recognizable candidate cell",
			})
			continue
		}
		rows = append(rows, row)
	}

	return DedupeTableRows(rows), warnings
}

func stripCodeFenceMarkers(raw string) string {
	lines := strings.Split(raw, "\n")
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		trimmed := strings.TrimSpace(l)
		if strings.HasPrefix(trimmed, "```") {
			continue
		}
		out = append(out, l)
	}
	return strings.Join(out, "\n")
}

func splitCells(row string) []string {
	raw := strings.Split(row, "|")
	cells := make([]string, 0, len(raw))
	for _, c := range raw {
		cells = append(cells, normalizeBold(strings.TrimSpace(c)))
	}
	return cells
}

// normalizeBold strips stray whitespace inside `** … **` markers (§4.9:
// "cell-level bold formatting is normalized").
func normalizeBold(cell string) string {
	return boldCellRe.ReplaceAllString(cell, "**$1**")
}

func isSeparatorRow(cells []string) bool {
	if len(cells) == 0 {
		return false
	}
	for _, c := range cells {
		if c == "" {
			continue
		}
		if !separatorCellRe.MatchString(c) {
			return false
		}
	}
	return true
}

func rowFromCells(cells, header []string) (domain.TableRow, bool) {
	var nameCell, cvID string
	columns := make(map[string]string, len(cells))

	for i, cell := range cells {
		if cell == "" {
			continue
		}
		colName := columnName(header, i)
		columns[colName] = cell

		if id := firstCVID(cell); id != "" && cvID == "" {
			cvID = id
		}
		if nameCell == "" && looksLikeNameCell(colName, cell) {
			nameCell = stripMarkup(cell)
		}
	}

	if nameCell == "" {
		return domain.TableRow{}, false
	}

	return domain.TableRow{
		CandidateName: nameCell,
		CVID:          cvID,
		Columns:       columns,
		MatchScore:    deriveMatchScore(cells),
		IndexedAt:     time.Time{},
	}, true
}

func columnName(header []string, i int) string {
	if i < len(header) && header[i] != "" {
		return strings.ToLower(header[i])
	}
	return strconv.Itoa(i)
}

func looksLikeNameCell(colName, cell string) bool {
	if strings.Contains(colName, "name") || strings.Contains(colName, "candidate") {
		return true
	}
	return boldCellRe.MatchString(cell)
}

func stripMarkup(cell string) string {
	cell = boldCellRe.ReplaceAllString(cell, "$1")
	cell = cvIDCellRe.ReplaceAllString(cell, "")
	return strings.TrimSpace(strings.Trim(cell, "[]()"))
}

func firstCVID(cell string) string {
	m := cvIDCellRe.FindStringSubmatch(cell)
	if m == nil {
		return ""
	}
	return m[1]
}

// deriveMatchScore scans a row's cells for a match-score signal in priority
// order: explicit `NN%`, then stars (5★=100), then a textual qualifier
// ("strong", "moderate", …) (§4.9).
func deriveMatchScore(cells []string) float64 {
	joined := strings.Join(cells, " ")

	if m := percentRe.FindStringSubmatch(joined); m != nil {
		v, err := strconv.ParseFloat(m[1], 64)
		if err == nil {
			return clamp(v, 0, 100)
		}
	}

	if m := starRe.FindString(joined); m != "" {
		stars := float64(strings.Count(m, "★"))
		if stars > 0 {
			return clamp(stars/5*100, 0, 100)
		}
	}

	lower := strings.ToLower(joined)
	for qualifier, score := range textualQualifierScore {
		if strings.Contains(lower, qualifier) {
			return score
		}
	}

	return 0
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func normalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// DedupeTableRows collapses rows that share a normalized candidate name,
// keeping the row with the newer IndexedAt, or on a tie the higher
// MatchScore (§4.9, also used by the chunk-derived fallback table).
func DedupeTableRows(rows []domain.TableRow) []domain.TableRow {
	if len(rows) == 0 {
		return rows
	}
	byName := make(map[string]domain.TableRow, len(rows))
	order := make([]string, 0, len(rows))

	for _, row := range rows {
		key := normalizeName(row.CandidateName)
		existing, ok := byName[key]
		if !ok {
			byName[key] = row
			order = append(order, key)
			continue
		}
		if preferRow(row, existing) {
			byName[key] = row
		}
	}

	out := make([]domain.TableRow, 0, len(order))
	for _, key := range order {
		out = append(out, byName[key])
	}
	return out
}

func preferRow(candidate, existing domain.TableRow) bool {
	if candidate.IndexedAt.After(existing.IndexedAt) {
		return true
	}
	if candidate.IndexedAt.Before(existing.IndexedAt) {
		return false
	}
	return candidate.MatchScore > existing.MatchScore
}

// FallbackTableFromResults builds a table from retrieved chunks when the LLM
// produced no table but results are available (§4.9).
func FallbackTableFromResults(results []domain.SearchResult) []domain.TableRow {
	rows := make([]domain.TableRow, 0, len(results))
	for _, r := range results {
		name := r.Metadata.ExtraString("candidate_name")
		if name == "" {
			name = r.CVID
		}
		rows = append(rows, domain.TableRow{
			CandidateName: name,
			CVID:          r.CVID,
			Columns:       map[string]string{"similarity": strconv.FormatFloat(r.Similarity, 'f', 2, 64)},
			MatchScore:    clamp(r.Similarity*100, 0, 100),
		})
	}
	return DedupeTableRows(rows)
}
