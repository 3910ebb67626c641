package evaluator

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"intervuai/backend/internal/models"
)

var ErrMalformedEvaluation = errors.New("malformed evaluation")

type rawEvaluation struct {
	Score            *json.Number `json:"score"`
	Feedback         string       `json:"feedback"`
	FollowUpQuestion string       `json:"followUpQuestion"`
}

// parseEvaluation extracts the JSON object from a model reply, tolerating code fences
// and surrounding prose.
func parseEvaluation(text string) (models.Evaluation, error) {
	body := stripFences(text)
	start := strings.Index(body, "{")
	end := strings.LastIndex(body, "}")
	if start < 0 || end <= start {
		return models.Evaluation{}, fmt.Errorf("%w: no JSON object in reply", ErrMalformedEvaluation)
	}

	var raw rawEvaluation
	if err := json.Unmarshal([]byte(body[start:end+1]), &raw); err != nil {
		return models.Evaluation{}, fmt.Errorf("%w: %v", ErrMalformedEvaluation, err)
	}
	if raw.Score == nil {
		return models.Evaluation{}, fmt.Errorf("%w: missing score", ErrMalformedEvaluation)
	}
	score, err := raw.Score.Float64()
	if err != nil || math.IsNaN(score) {
		return models.Evaluation{}, fmt.Errorf("%w: bad score %q", ErrMalformedEvaluation, raw.Score.String())
	}

	eval := models.Evaluation{
		Score:            clampScore(score),
		Feedback:         strings.TrimSpace(raw.Feedback),
		FollowUpQuestion: strings.TrimSpace(raw.FollowUpQuestion),
	}
	if eval.FollowUpQuestion == "" {
		eval.FollowUpQuestion = defaultFollowUp
	}
	return eval, nil
}

func clampScore(score float64) int {
	rounded := int(math.Floor(score + 0.5))
	if rounded < 0 {
		return 0
	}
	if rounded > 100 {
		return 100
	}
	return rounded
}

func stripFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	if nl := strings.Index(trimmed, "\n"); nl >= 0 {
		trimmed = trimmed[nl+1:]
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
