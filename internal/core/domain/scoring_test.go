package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreOverlap(t *testing.T) {
	assert.Equal(t, 1.0, ScoreOverlap("go channels", "Go channels synchronize goroutines"))
	assert.Equal(t, 0.5, ScoreOverlap("go rust", "a note about go"))
	assert.Equal(t, 0.0, ScoreOverlap("kubernetes", "a note about go"))
}

func TestScoreOverlap_CaseInsensitive(t *testing.T) {
	assert.Equal(t, 1.0, ScoreOverlap("REDIS", "caching with redis"))
}

func TestScoreOverlap_EmptyQuery(t *testing.T) {
	assert.Equal(t, 0.0, ScoreOverlap("", "anything"))
	assert.Equal(t, 0.0, ScoreOverlap("   ", "anything"))
}
