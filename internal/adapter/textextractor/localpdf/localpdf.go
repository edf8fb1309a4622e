// Package localpdf implements domain.TextExtractor for PDF files without a
// network dependency, for DEFAULT_MODE=local deployments that do not run an
// Apache Tika server (§6).
package localpdf

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/cvqa/retrieval-engine/internal/domain"
	"github.com/cvqa/retrieval-engine/pkg/textx"
)

// Client extracts plain text from local .pdf files page by page. It has no
// support for .docx (the teacher's tika client remains the only extractor
// for that format); callers should fall back to tika when one is
// configured, and fail closed otherwise.
type Client struct{}

// New builds a Client. There is no configuration: extraction is entirely
// in-process.
func New() *Client { return &Client{} }

// ExtractPath implements domain.TextExtractor for local .pdf files. fileName
// is only inspected for its extension; path is opened directly.
func (c *Client) ExtractPath(_ domain.Context, fileName, path string) (string, error) {
	if !strings.HasSuffix(strings.ToLower(fileName), ".pdf") {
		return "", fmt.Errorf("op=localpdf.ExtractPath: %w: only .pdf is supported locally", domain.ErrInvalidArgument)
	}

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("op=localpdf.ExtractPath: %w", err)
	}
	defer func() { _ = f.Close() }()

	var b strings.Builder
	totalPages := r.NumPage()
	for i := 1; i <= totalPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(content)
		b.WriteString("\n")
	}

	text := textx.SanitizeText(b.String())
	if text == "" {
		return "", fmt.Errorf("op=localpdf.ExtractPath: %w: no extractable text in %s", domain.ErrInvalidArgument, fileName)
	}
	return text, nil
}

var _ domain.TextExtractor = (*Client)(nil)
