package evallog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cvqa/retrieval-engine/internal/config"
	"github.com/cvqa/retrieval-engine/internal/domain"
)

func sampleRecord() domain.EvalLogRecord {
	return domain.EvalLogRecord{
		TS:              "2026-07-31T00:00:00Z",
		Query:           "who knows kubernetes",
		ResponseExcerpt: "cv_1 has 5 years of kubernetes experience",
		Sources:         []string{"cv_1"},
		Metrics:         domain.Metrics{TotalMS: 120},
		GuardrailPassed: true,
		SessionID:       "s1",
		Mode:            "local",
	}
}

func TestLocalWriter_AppendsOneJSONLinePerRecord(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "eval_log.jsonl")

	w, err := NewLocalWriter(path)
	require.NoError(t, err)

	require.NoError(t, w.Append(context.Background(), sampleRecord()))
	require.NoError(t, w.Append(context.Background(), sampleRecord()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 2)

	var got record
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &got))
	assert.Equal(t, "who knows kubernetes", got.Query)
	assert.Equal(t, []string{"cv_1"}, got.Sources)
}

func TestNewLocalWriter_RejectsEmptyPath(t *testing.T) {
	_, err := NewLocalWriter("")
	assert.Error(t, err)
}

func TestCloudWriter_PostsRecordWithServiceKeyHeaders(t *testing.T) {
	var gotAPIKey, gotAuth, gotPath string
	var gotBody record
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAPIKey = r.Header.Get("apikey")
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	w, err := NewCloudWriter(CloudConfig{BaseURL: server.URL, ServiceKey: "svc-key"})
	require.NoError(t, err)

	require.NoError(t, w.Append(context.Background(), sampleRecord()))
	assert.Equal(t, "svc-key", gotAPIKey)
	assert.Equal(t, "Bearer svc-key", gotAuth)
	assert.Equal(t, "/rest/v1/eval_log", gotPath)
	assert.Equal(t, "who knows kubernetes", gotBody.Query)
}

func TestCloudWriter_NonRetryableOnClientError(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	w, err := NewCloudWriter(CloudConfig{BaseURL: server.URL, ServiceKey: "bad-key", MaxRetries: 3})
	require.NoError(t, err)

	err = w.Append(context.Background(), sampleRecord())
	require.Error(t, err)
	assert.Equal(t, 1, calls, "a 401 should not be retried")
}

func TestNewCloudWriter_RequiresBaseURLAndServiceKey(t *testing.T) {
	_, err := NewCloudWriter(CloudConfig{})
	assert.Error(t, err)
}

func TestNew_SelectsLocalWriterByDefault(t *testing.T) {
	impl, err := New(testConfig(t, false))
	require.NoError(t, err)
	_, ok := impl.(*LocalWriter)
	assert.True(t, ok)
}

func TestNew_SelectsCloudWriterInCloudMode(t *testing.T) {
	impl, err := New(testConfig(t, true))
	require.NoError(t, err)
	_, ok := impl.(*CloudWriter)
	assert.True(t, ok)
}

func testConfig(t *testing.T, cloud bool) config.Config {
	t.Helper()
	cfg := config.Config{EvalLogPath: filepath.Join(t.TempDir(), "eval_log.jsonl")}
	if cloud {
		cfg.DefaultMode = "cloud"
		cfg.SupabaseURL = "https://example.supabase.co"
		cfg.SupabaseServiceKey = "svc-key"
	} else {
		cfg.DefaultMode = "local"
	}
	return cfg
}
