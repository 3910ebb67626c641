package interview

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"intervuai/backend/internal/metrics"
	"intervuai/backend/internal/models"
)

// answers this short are stored but not scored
const minEvaluatedResponseChars = 10

const (
	// LiveEvaluationBudget bounds scoring plus summary for one live transcript.
	LiveEvaluationBudget = 45 * time.Second
	livePersistTimeout   = 10 * time.Second
)

type LiveResultsSaved struct {
	InterviewID  string `json:"interviewId"`
	OverallScore int    `json:"overallScore"`
}

// SaveLiveResults ingests the agent's transcript and finalises the session.
// The agent is authoritative: its transcript replaces whatever was stored.
func (s *Service) SaveLiveResults(ctx context.Context, id string, req models.SaveLiveResultsRequest) (*LiveResultsSaved, error) {
	release, err := s.locker.Acquire(ctx, id)
	if err != nil {
		return nil, err
	}
	defer release()

	iv, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	// the transcript is persisted even if the caller goes away mid-batch
	work := context.WithoutCancel(ctx)
	evalCtx, cancel := context.WithTimeout(work, s.liveBudget)
	defer cancel()

	now := s.now().UTC()
	questions := reconstructQuestions(req.Transcript, agentRoles, now)
	s.evaluateAll(evalCtx, iv, questions, models.Evaluation{Score: 50, Feedback: "Evaluation could not be completed."})

	iv.Questions = questions
	iv.TotalQuestions = len(questions)
	iv.QuestionsAnswered = countAnswered(questions)
	iv.OverallScore = OverallScore(questions)
	iv.Status = models.StatusCompleted
	iv.CompletedAt = &now
	iv.Summary = s.summarize(evalCtx, iv, fmt.Sprintf("Live interview completed. Overall score: %d%%.", iv.OverallScore))
	iv.LiveTranscript = req.Transcript

	if err := s.persist(work, iv); err != nil {
		return nil, err
	}
	metrics.InterviewsCompleted.WithLabelValues("agent").Inc()
	s.logger.Info("live results saved", zap.String("interview_id", id), zap.Int("questions", len(questions)), zap.Int("overall_score", iv.OverallScore))

	return &LiveResultsSaved{InterviewID: id, OverallScore: iv.OverallScore}, nil
}

// CompleteLive is the browser's end-of-session call. On an already completed
// session it returns the stored state untouched; alreadyCompleted reports that.
func (s *Service) CompleteLive(ctx context.Context, userID primitive.ObjectID, id string, req models.CompleteLiveRequest) (iv *models.Interview, alreadyCompleted bool, err error) {
	release, err := s.locker.Acquire(ctx, id)
	if err != nil {
		return nil, false, err
	}
	defer release()

	iv, err = s.load(ctx, id)
	if err != nil {
		return nil, false, err
	}
	if !iv.OwnedBy(userID) {
		return nil, false, errNotOwner
	}
	if iv.Status == models.StatusCompleted {
		return iv, true, nil
	}

	work := context.WithoutCancel(ctx)
	evalCtx, cancel := context.WithTimeout(work, s.liveBudget)
	defer cancel()

	now := s.now().UTC()
	if len(req.Transcript) > 0 {
		questions := reconstructQuestions(req.Transcript, clientRoles, now)
		s.evaluateAll(evalCtx, iv, questions, models.Evaluation{Score: 50, Feedback: "Evaluation pending."})
		if len(questions) > 0 {
			iv.Questions = questions
			iv.TotalQuestions = len(questions)
			iv.QuestionsAnswered = countAnswered(questions)
		}
		iv.LiveTranscript = req.Transcript
	}
	iv.OverallScore = OverallScore(iv.Questions)
	iv.Status = models.StatusCompleted
	iv.CompletedAt = &now

	if iv.Summary == "" && len(scoredAnswers(iv.Questions)) > 0 {
		iv.Summary = s.summarize(evalCtx, iv, fmt.Sprintf("Interview completed. Score: %d%%.", iv.OverallScore))
	}

	if err := s.persist(work, iv); err != nil {
		return nil, false, err
	}
	metrics.InterviewsCompleted.WithLabelValues("client").Inc()
	s.logger.Info("live interview completed by client", zap.String("interview_id", id), zap.Int("overall_score", iv.OverallScore))
	return iv, false, nil
}

// evaluateAll scores each substantive answer. A failed item gets placeholder
// instead of aborting the batch. Once ctx is done the remaining answers are left
// unscored rather than given placeholder scores.
func (s *Service) evaluateAll(ctx context.Context, iv *models.Interview, questions []models.QuestionRecord, placeholder models.Evaluation) {
	for i := range questions {
		q := &questions[i]
		if utf8.RuneCountInString(strings.TrimSpace(q.CandidateResponse)) <= minEvaluatedResponseChars {
			continue
		}
		if ctx.Err() != nil {
			s.logger.Warn("live evaluation budget exhausted",
				zap.String("interview_id", iv.ID.Hex()), zap.Int("from_question", q.QuestionNumber))
			return
		}
		eval, err := s.ai.Evaluate(ctx, q.QuestionText, q.CandidateResponse, s.evalContext(iv, q.QuestionNumber))
		if err != nil {
			s.logger.Warn("live answer evaluation failed",
				zap.String("interview_id", iv.ID.Hex()), zap.Int("question", q.QuestionNumber), zap.Error(err))
			if ctx.Err() != nil {
				continue
			}
			p := placeholder
			q.AIEvaluation = &p
			continue
		}
		q.AIEvaluation = &eval
	}
}

func (s *Service) persist(ctx context.Context, iv *models.Interview) error {
	ctx, cancel := context.WithTimeout(ctx, livePersistTimeout)
	defer cancel()
	return s.interviews.Save(ctx, iv)
}

func countAnswered(questions []models.QuestionRecord) int {
	n := 0
	for _, q := range questions {
		if q.CandidateResponse != "" {
			n++
		}
	}
	return n
}
