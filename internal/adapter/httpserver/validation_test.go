package httpserver

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateCVID(t *testing.T) {
	assert.True(t, ValidateCVID("cv_01abc").Valid)
	assert.False(t, ValidateCVID("").Valid)
	assert.False(t, ValidateCVID("cv with spaces").Valid)
	assert.False(t, ValidateCVID(strings.Repeat("a", 101)).Valid)
}

func TestValidateQuestion(t *testing.T) {
	assert.True(t, ValidateQuestion("what is the candidate's seniority?").Valid)
	assert.False(t, ValidateQuestion("").Valid)
	assert.False(t, ValidateQuestion(strings.Repeat("a", 2001)).Valid)
}
