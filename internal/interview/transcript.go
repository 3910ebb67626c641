package interview

import (
	"time"

	"intervuai/backend/internal/models"
)

type roleSet struct {
	interviewer map[string]bool
	candidate   map[string]bool
}

// The agent reports interviewer/candidate. The browser SDK labels turns agent/user.
var (
	agentRoles = roleSet{
		interviewer: map[string]bool{"interviewer": true},
		candidate:   map[string]bool{"candidate": true},
	}
	clientRoles = roleSet{
		interviewer: map[string]bool{"interviewer": true, "agent": true},
		candidate:   map[string]bool{"candidate": true, "user": true},
	}
)

// reconstructQuestions folds a flat transcript into question records. Every
// interviewer turn opens a record numbered by its position among interviewer
// turns; candidate turns until the next interviewer turn are joined with a
// space. Records that never got a response are dropped.
func reconstructQuestions(entries []models.TranscriptEntry, roles roleSet, now time.Time) []models.QuestionRecord {
	var (
		out     []models.QuestionRecord
		current *models.QuestionRecord
		ordinal int
	)
	flush := func() {
		if current != nil && current.CandidateResponse != "" {
			out = append(out, *current)
		}
	}

	for _, e := range entries {
		switch {
		case roles.interviewer[e.Role]:
			flush()
			ordinal++
			current = &models.QuestionRecord{
				QuestionNumber: ordinal,
				QuestionText:   e.Text,
				GeneratedAt:    now,
			}
		case roles.candidate[e.Role] && current != nil:
			if current.CandidateResponse != "" {
				current.CandidateResponse += " " + e.Text
			} else {
				current.CandidateResponse = e.Text
			}
			at := now
			current.ResponseReceivedAt = &at
		}
	}
	flush()

	if out == nil {
		out = []models.QuestionRecord{}
	}
	return out
}
