package interview

import (
	"math"

	"intervuai/backend/internal/evaluator"
	"intervuai/backend/internal/models"
)

const (
	MaxAnsweredQuestions = 10
	PassingScore         = 30
	MinResponseWords     = 20
)

// ShouldContinue decides whether another question follows the answer just scored.
func ShouldContinue(questionsAnswered, score int) bool {
	return questionsAnswered < MaxAnsweredQuestions && score >= PassingScore
}

// OverallScore is the mean of evaluated scores rounded half up, or 0 when nothing was evaluated.
func OverallScore(questions []models.QuestionRecord) int {
	sum, n := 0, 0
	for _, q := range questions {
		if q.AIEvaluation == nil {
			continue
		}
		sum += q.AIEvaluation.Score
		n++
	}
	if n == 0 {
		return 0
	}
	return int(math.Floor(float64(sum)/float64(n) + 0.5))
}

func scoredAnswers(questions []models.QuestionRecord) []evaluator.ScoredAnswer {
	out := make([]evaluator.ScoredAnswer, 0, len(questions))
	for _, q := range questions {
		if q.AIEvaluation == nil {
			continue
		}
		out = append(out, evaluator.ScoredAnswer{
			Question: q.QuestionText,
			Response: q.CandidateResponse,
			Score:    q.AIEvaluation.Score,
		})
	}
	return out
}
