package chunker

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateRange is a parsed (start, end) year pair extracted from a position
// block header, per §4.1 step 3.
type DateRange struct {
	StartYear int
	EndYear   int // 0 when IsCurrent
	IsCurrent bool
	Found     bool
}

var presentWords = map[string]bool{
	"present": true, "now": true, "actual": true, "current": true, "ongoing": true,
}

var monthNames = map[string]bool{
	"jan": true, "feb": true, "mar": true, "apr": true, "may": true, "jun": true,
	"jul": true, "aug": true, "sep": true, "oct": true, "nov": true, "dec": true,
}

// dateRangePatterns recognizes the date-range shapes named in §4.1:
// YYYY-YYYY, YYYY-Present, Mon YYYY - Mon YYYY, parenthesized, ISO,
// and European (DD/MM/YYYY) variants.
var dateRangePatterns = []*regexp.Regexp{
	// (YYYY - YYYY) or (YYYY - Present)
	regexp.MustCompile(`(?i)\(?\b(19|20)(\d{2})\s*[-–—to]+\s*((?:19|20)\d{2}|present|now|actual|current|ongoing)\b\)?`),
	// Mon YYYY - Mon YYYY / Mon YYYY - Present
	regexp.MustCompile(`(?i)\b([A-Za-z]{3,9})\.?\s+((?:19|20)\d{2})\s*[-–—to]+\s*(?:([A-Za-z]{3,9})\.?\s+)?((?:19|20)\d{2}|present|now|actual|current|ongoing)\b`),
	// ISO/European DD/MM/YYYY - DD/MM/YYYY
	regexp.MustCompile(`(?i)\b(\d{1,2}[/.]\d{1,2}[/.](?:19|20)\d{2})\s*[-–—to]+\s*(\d{1,2}[/.]\d{1,2}[/.](?:19|20)\d{2}|present|now|actual|current|ongoing)\b`),
}

// ParseDateRange scans a line/block for the first recognizable date range.
func ParseDateRange(text string) DateRange {
	// Simple YYYY - YYYY/Present first (covers the common case cleanly).
	if m := dateRangePatterns[0].FindStringSubmatch(text); m != nil {
		start, _ := strconv.Atoi(m[1] + m[2])
		end := m[3]
		if presentWords[strings.ToLower(end)] {
			return DateRange{StartYear: start, IsCurrent: true, Found: true}
		}
		endYear, _ := strconv.Atoi(end)
		return DateRange{StartYear: start, EndYear: endYear, Found: true}
	}
	// Mon YYYY - Mon YYYY / Present
	if m := dateRangePatterns[1].FindStringSubmatch(text); m != nil {
		startYear, _ := strconv.Atoi(m[2])
		end := m[4]
		if presentWords[strings.ToLower(end)] {
			return DateRange{StartYear: startYear, IsCurrent: true, Found: true}
		}
		endYear, _ := strconv.Atoi(end)
		return DateRange{StartYear: startYear, EndYear: endYear, Found: true}
	}
	// ISO/European full dates
	if m := dateRangePatterns[2].FindStringSubmatch(text); m != nil {
		startYear := extractYearFromDateString(m[1])
		end := m[2]
		if presentWords[strings.ToLower(end)] {
			return DateRange{StartYear: startYear, IsCurrent: true, Found: true}
		}
		return DateRange{StartYear: startYear, EndYear: extractYearFromDateString(end), Found: true}
	}
	return DateRange{}
}

func extractYearFromDateString(s string) int {
	re := regexp.MustCompile(`(19|20)\d{2}`)
	m := re.FindString(s)
	y, _ := strconv.Atoi(m)
	return y
}

// DurationYears returns the position's duration in years, using "now" as the
// end year when the range is current.
func (d DateRange) DurationYears(now time.Time) float64 {
	if !d.Found || d.StartYear == 0 {
		return 0
	}
	end := d.EndYear
	if d.IsCurrent || end == 0 {
		end = now.Year()
	}
	years := float64(end - d.StartYear)
	if years < 0 {
		return 0
	}
	return years
}
