package interview

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"intervuai/backend/internal/models"
)

func scored(scores ...int) []models.QuestionRecord {
	out := make([]models.QuestionRecord, 0, len(scores))
	for i, s := range scores {
		out = append(out, models.QuestionRecord{QuestionNumber: i + 1, AIEvaluation: &models.Evaluation{Score: s}})
	}
	return out
}

func TestOverallScore(t *testing.T) {
	assert.Equal(t, 57, OverallScore(scored(80, 70, 20)))
	assert.Equal(t, 0, OverallScore(nil))
	assert.Equal(t, 2, OverallScore(scored(1, 2)), "1.5 rounds half up")
	assert.Equal(t, 33, OverallScore(scored(0, 0, 100)), "zero scores count")

	withPending := append(scored(90), models.QuestionRecord{QuestionNumber: 2})
	assert.Equal(t, 90, OverallScore(withPending), "unevaluated records are ignored")
}

func TestShouldContinue(t *testing.T) {
	assert.True(t, ShouldContinue(1, 30))
	assert.False(t, ShouldContinue(1, 29))
	assert.True(t, ShouldContinue(9, 100))
	assert.False(t, ShouldContinue(10, 100))
}
