package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadTextsFromYAML_FileNotFound(t *testing.T) {
	_, err := loadTextsFromYAML("non-existent-file.yaml")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "config file not found")
}

func TestLoadTextsFromYAML_InvalidYAML(t *testing.T) {
	tmpFile, err := os.CreateTemp("", "test-invalid-*.yaml")
	require.NoError(t, err)
	defer func() { _ = os.Remove(tmpFile.Name()) }()

	_, err = tmpFile.WriteString("invalid: yaml: content: [")
	require.NoError(t, err)
	_ = tmpFile.Close()

	_, err = loadTextsFromYAML(tmpFile.Name())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoadTextsFromYAML_EmptyTexts(t *testing.T) {
	tmpFile, err := os.CreateTemp("", "test-empty-*.yaml")
	require.NoError(t, err)
	defer func() { _ = os.Remove(tmpFile.Name()) }()

	_, err = tmpFile.WriteString("texts: []")
	require.NoError(t, err)
	_ = tmpFile.Close()

	_, err = loadTextsFromYAML(tmpFile.Name())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no texts found")
}

func TestLoadTextsFromYAML_ValidContent(t *testing.T) {
	tmpFile, err := os.CreateTemp("", "test-valid-*.yaml")
	require.NoError(t, err)
	defer func() { _ = os.Remove(tmpFile.Name()) }()

	_, err = tmpFile.WriteString(`
texts:
  - "summary"
  - "profile"
  - "  objective  "
`)
	require.NoError(t, err)
	_ = tmpFile.Close()

	texts, err := loadTextsFromYAML(tmpFile.Name())
	require.NoError(t, err)
	assert.Equal(t, []string{"summary", "profile", "objective"}, texts)
}

func TestLoadRAGConfig_AllFilesExist(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "test-rag-config-*")
	require.NoError(t, err)
	defer func() { _ = os.RemoveAll(tempDir) }()

	ragDir := filepath.Join(tempDir, "configs", "rag")
	require.NoError(t, os.MkdirAll(ragDir, 0750))

	files := map[string]string{
		"section_summary.yaml":        `texts: ["summary", "profile"]`,
		"section_experience.yaml":     `texts: ["experience"]`,
		"section_skills.yaml":         `texts: ["skills"]`,
		"section_education.yaml":      `texts: ["education"]`,
		"section_certifications.yaml": `texts: ["certifications"]`,
		"job_title_deny_list.yaml":    `texts: ["references"]`,
		"filler_prepositions.yaml":    `texts: ["at", "for"]`,
		"guardrail_topics.yaml":       `texts: ["resume", "cv"]`,
		"guardrail_deny_list.yaml":    `texts: ["jailbreak"]`,
		"suggestion_seeds.yaml":       `texts: ["Who has AWS certifications?"]`,
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(ragDir, name), []byte(content), 0600))
	}

	originalDir, err := os.Getwd()
	require.NoError(t, err)
	defer func() { _ = os.Chdir(originalDir) }()
	require.NoError(t, os.Chdir(tempDir))

	cfg, err := LoadRAGConfig()
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, []string{"summary", "profile"}, cfg.SectionKeywords["summary"])
	assert.Equal(t, []string{"references"}, cfg.JobTitleDenyList)
	assert.Equal(t, []string{"at", "for"}, cfg.FillerPrepositions)
	assert.Equal(t, []string{"resume", "cv"}, cfg.GuardrailTopics)
	assert.Equal(t, []string{"jailbreak"}, cfg.GuardrailDenyList)
	assert.Equal(t, []string{"Who has AWS certifications?"}, cfg.SuggestionSeeds)
}

func TestLoadRAGConfigOrDefault_FallsBackWhenFilesMissing(t *testing.T) {
	cfg := LoadRAGConfigOrDefault()
	require.NotNil(t, cfg)
	assert.NotEmpty(t, cfg.SectionKeywords["summary"])
	assert.NotEmpty(t, cfg.JobTitleDenyList)
	assert.NotEmpty(t, cfg.GuardrailTopics)
	assert.NotEmpty(t, cfg.SuggestionSeeds)
}
