package tokencount

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCountTokens_NonEmptyTextCountsMoreThanZero(t *testing.T) {
	c := NewCounter()
	n := c.CountTokens("hello world, this is a test prompt", "openrouter/meta-llama/llama-3.1-8b-instruct:free")
	assert.Greater(t, n, 0)
}

func TestCountChatTokens_IncludesOverheadBeyondRawText(t *testing.T) {
	c := NewCounter()
	raw := c.CountTokens("system"+"user"+"hi", "gpt-4")
	chat := c.CountChatTokens("system", "hi", "gpt-4")
	assert.Greater(t, chat, raw)
}

func TestCountTokens_CachesEncodingAcrossCalls(t *testing.T) {
	c := NewCounter()
	first := c.CountTokens("repeat", "gpt-4")
	second := c.CountTokens("repeat", "gpt-4")
	assert.Equal(t, first, second)
}
