package evaluator

import (
	"errors"
	"strings"
	"testing"
)

func TestParseEvaluation(t *testing.T) {
	cases := []struct {
		name  string
		input string
		score int
	}{
		{"plain", `{"score": 70, "feedback": "ok", "followUpQuestion": "next"}`, 70},
		{"fenced", "```json\n{\"score\": 55, \"feedback\": \"ok\", \"followUpQuestion\": \"n\"}\n```", 55},
		{"prose around", `Here you go: {"score": 91.5, "feedback": "f", "followUpQuestion": "n"} hope that helps`, 92},
		{"string score", `{"score": "64", "feedback": "f", "followUpQuestion": "n"}`, 64},
		{"clamped high", `{"score": 140, "feedback": "f", "followUpQuestion": "n"}`, 100},
		{"clamped low", `{"score": -3, "feedback": "f", "followUpQuestion": "n"}`, 0},
	}
	for _, tc := range cases {
		eval, err := parseEvaluation(tc.input)
		if err != nil {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
		if eval.Score != tc.score {
			t.Fatalf("%s: expected score %d, got %d", tc.name, tc.score, eval.Score)
		}
	}
}

func TestParseEvaluationDefaultsFollowUp(t *testing.T) {
	eval, err := parseEvaluation(`{"score": 50, "feedback": "f"}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if eval.FollowUpQuestion != defaultFollowUp {
		t.Fatalf("expected default follow-up, got %q", eval.FollowUpQuestion)
	}
}

func TestParseEvaluationRejects(t *testing.T) {
	for _, input := range []string{
		"",
		"no json here",
		`{"feedback": "missing score"}`,
		`{"score": "abc"}`,
		`{"score": 10,`,
	} {
		if _, err := parseEvaluation(input); !errors.Is(err, ErrMalformedEvaluation) {
			t.Fatalf("parseEvaluation(%q): expected ErrMalformedEvaluation, got %v", input, err)
		}
	}
}

func TestHeuristicEvaluation(t *testing.T) {
	if got := heuristicEvaluation("too short").Score; got != 40 {
		t.Fatalf("expected 40 for brief answers, got %d", got)
	}
	if got := heuristicEvaluation(strings.Repeat("w ", 50)).Score; got != 65 {
		t.Fatalf("expected 65 for medium answers, got %d", got)
	}
	if got := heuristicEvaluation(strings.Repeat("w ", 120)).Score; got != 75 {
		t.Fatalf("expected 75 for long answers, got %d", got)
	}
}
