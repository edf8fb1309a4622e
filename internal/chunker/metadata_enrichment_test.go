package chunker

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cvqa/retrieval-engine/internal/domain"
)

func TestInferSeniority_TitleTokenOverridesLowYears(t *testing.T) {
	assert.Equal(t, domain.SeniorityPrincipal, inferSeniority(3, 1, "Principal Engineer"))
	assert.Equal(t, domain.SeniorityPrincipal, inferSeniority(2, 1, "Director of Engineering"))
	assert.Equal(t, domain.SeniorityPrincipal, inferSeniority(1, 1, "Engineering Lead"))
	assert.Equal(t, domain.SenioritySenior, inferSeniority(2, 1, "Senior Software Engineer"))
	assert.Equal(t, domain.SeniorityJunior, inferSeniority(6, 1, "Junior Analyst"))
}

func TestInferSeniority_FallsBackToYearsWhenNoTitleKeyword(t *testing.T) {
	assert.Equal(t, domain.SeniorityEntry, inferSeniority(2, 1, "Software Engineer"))
	assert.Equal(t, domain.SeniorityMid, inferSeniority(6, 1, "Software Engineer"))
	assert.Equal(t, domain.SeniorityPrincipal, inferSeniority(14, 1, "Software Engineer"))
}

func TestInferSeniority_NoPositionsIsUnknown(t *testing.T) {
	assert.Equal(t, domain.SeniorityUnknown, inferSeniority(0, 0, ""))
}
