// Package config provides configuration loading utilities for RAG configs.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// RAGConfig holds the default taxonomy and seed data loaded from YAML: the
// chunker's section-classification keyword lists, the guardrail's allow/deny
// patterns, and the suggestion engine's seed question bank.
type RAGConfig struct {
	SectionKeywords    map[string][]string `yaml:"-"`
	JobTitleDenyList   []string            `yaml:"-"`
	FillerPrepositions []string            `yaml:"-"`
	GuardrailTopics    []string            `yaml:"-"`
	GuardrailDenyList  []string            `yaml:"-"`
	SuggestionSeeds    []string            `yaml:"-"`
}

// ragYAML represents the on-disk shape of a single `texts:` YAML document,
// the same minimal schema used for every taxonomy file.
type ragYAML struct {
	Texts []string `yaml:"texts"`
}

// LoadRAGConfig loads the taxonomy/guardrail/suggestion seed configuration
// from configs/rag/*.yaml.
func LoadRAGConfig() (*RAGConfig, error) {
	cfg := &RAGConfig{SectionKeywords: map[string][]string{}}

	sections := []struct {
		file string
		key  string
	}{
		{"configs/rag/section_summary.yaml", "summary"},
		{"configs/rag/section_experience.yaml", "experience"},
		{"configs/rag/section_skills.yaml", "skills"},
		{"configs/rag/section_education.yaml", "education"},
		{"configs/rag/section_certifications.yaml", "certifications"},
	}
	for _, s := range sections {
		texts, err := loadTextsFromYAML(s.file)
		if err != nil {
			return nil, fmt.Errorf("op=config.LoadRAGConfig section=%s: %w", s.key, err)
		}
		cfg.SectionKeywords[s.key] = texts
	}

	denyList, err := loadTextsFromYAML("configs/rag/job_title_deny_list.yaml")
	if err != nil {
		return nil, fmt.Errorf("op=config.LoadRAGConfig file=job_title_deny_list: %w", err)
	}
	cfg.JobTitleDenyList = denyList

	fillers, err := loadTextsFromYAML("configs/rag/filler_prepositions.yaml")
	if err != nil {
		return nil, fmt.Errorf("op=config.LoadRAGConfig file=filler_prepositions: %w", err)
	}
	cfg.FillerPrepositions = fillers

	topics, err := loadTextsFromYAML("configs/rag/guardrail_topics.yaml")
	if err != nil {
		return nil, fmt.Errorf("op=config.LoadRAGConfig file=guardrail_topics: %w", err)
	}
	cfg.GuardrailTopics = topics

	guardrailDeny, err := loadTextsFromYAML("configs/rag/guardrail_deny_list.yaml")
	if err != nil {
		return nil, fmt.Errorf("op=config.LoadRAGConfig file=guardrail_deny_list: %w", err)
	}
	cfg.GuardrailDenyList = guardrailDeny

	seeds, err := loadTextsFromYAML("configs/rag/suggestion_seeds.yaml")
	if err != nil {
		return nil, fmt.Errorf("op=config.LoadRAGConfig file=suggestion_seeds: %w", err)
	}
	cfg.SuggestionSeeds = seeds

	return cfg, nil
}

// loadTextsFromYAML loads the `texts:` list from a taxonomy YAML file.
func loadTextsFromYAML(filePath string) ([]string, error) {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", absPath)
	}

	// #nosec G304 -- Configuration files are expected to be safe
	content, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var parsed ragYAML
	if err := yaml.Unmarshal(content, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if len(parsed.Texts) == 0 {
		return nil, fmt.Errorf("no texts found in config file: %s", filePath)
	}

	out := make([]string, 0, len(parsed.Texts))
	for _, t := range parsed.Texts {
		t = strings.TrimSpace(t)
		if t != "" {
			out = append(out, t)
		}
	}
	return out, nil
}

// defaultSectionKeywords is the fallback keyword taxonomy used when the YAML
// configuration files are not present on disk (e.g. in unit tests), grounded
// on the teacher's hardcoded job-evaluation defaults in ragconfig.go.
func defaultSectionKeywords() map[string][]string {
	return map[string][]string{
		"summary": {"summary", "profile", "objective", "about me"},
		"experience": {
			"experience", "employment", "work history", "professional experience",
		},
		"skills":         {"skills", "technical skills", "technologies", "tools"},
		"education":      {"education", "academic", "degree", "university"},
		"certifications": {"certifications", "certificates", "licenses"},
	}
}

// defaultJobTitleDenyList is the fallback job-title deny-list (words that
// look like a job title but should not be treated as a position heading).
func defaultJobTitleDenyList() []string {
	return []string{"references", "summary", "objective", "contact", "hobbies"}
}

// defaultFillerPrepositions is the fallback filler-word list stripped when
// normalizing position titles/company names.
func defaultFillerPrepositions() []string {
	return []string{"at", "for", "with", "of", "in", "the"}
}

// defaultGuardrailTopics is the fallback allow-list of on-topic subjects for
// the guardrail stage.
func defaultGuardrailTopics() []string {
	return []string{
		"resume", "cv", "candidate", "skill", "experience", "education",
		"certification", "role", "position", "hire", "team",
	}
}

// defaultGuardrailDenyList is the fallback deny-list of clearly off-topic or
// disallowed query patterns for the guardrail stage.
func defaultGuardrailDenyList() []string {
	return []string{
		"ignore previous instructions", "system prompt", "jailbreak",
		"write malware", "bypass safety",
	}
}

// defaultSuggestionSeeds is the fallback seed bank for the suggestion engine
// when no CVs are indexed yet.
func defaultSuggestionSeeds() []string {
	return []string{
		"Which candidates have the most backend experience?",
		"Who has AWS certifications?",
		"Compare the top two candidates for a senior role.",
		"Which candidates have employment gaps?",
	}
}

// LoadRAGConfigOrDefault loads the taxonomy configuration, falling back to
// hardcoded defaults when the YAML files are absent.
func LoadRAGConfigOrDefault() *RAGConfig {
	cfg, err := LoadRAGConfig()
	if err == nil {
		return cfg
	}
	return &RAGConfig{
		SectionKeywords:    defaultSectionKeywords(),
		JobTitleDenyList:   defaultJobTitleDenyList(),
		FillerPrepositions: defaultFillerPrepositions(),
		GuardrailTopics:    defaultGuardrailTopics(),
		GuardrailDenyList:  defaultGuardrailDenyList(),
		SuggestionSeeds:    defaultSuggestionSeeds(),
	}
}
