package interview

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"intervuai/backend/internal/apperr"
	"intervuai/backend/internal/evaluator"
	"intervuai/backend/internal/livekit"
	"intervuai/backend/internal/lock"
	"intervuai/backend/internal/metrics"
	"intervuai/backend/internal/models"
	"intervuai/backend/internal/transcription"
)

type Store interface {
	Create(ctx context.Context, iv *models.Interview) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Interview, error)
	Save(ctx context.Context, iv *models.Interview) error
	ListByUser(ctx context.Context, userID primitive.ObjectID, limit, skip int64) ([]models.Interview, int64, error)
}

type Accounts interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	DebitCredits(ctx context.Context, id primitive.ObjectID, cost int) (bool, error)
}

// AI is the question/evaluation/summary collaborator.
type AI interface {
	InitialQuestion(ctx context.Context, interviewType, difficulty string) (string, error)
	Evaluate(ctx context.Context, question, response string, c evaluator.Context) (models.Evaluation, error)
	Summarize(ctx context.Context, answers []evaluator.ScoredAnswer, c evaluator.Context) (string, error)
}

type RoomTokens interface {
	Configured() bool
	URL() string
	Issue(g livekit.Grant) (string, error)
}

type AudioStore interface {
	Put(ctx context.Context, interviewID string, questionNumber int, mimeType string, audio []byte) (string, error)
}

// Deps wires the orchestrator. Rooms and Audio may be nil.
type Deps struct {
	Interviews  Store
	Accounts    Accounts
	AI          AI
	Transcriber transcription.Transcriber
	Rooms       RoomTokens
	Audio       AudioStore
	Locker      lock.Locker
	Logger      *zap.Logger
}

// Service drives an interview from first question to final score.
type Service struct {
	interviews Store
	accounts   Accounts
	ai         AI
	stt        transcription.Transcriber
	rooms      RoomTokens
	audio      AudioStore
	locker     lock.Locker
	logger     *zap.Logger
	now        func() time.Time
	liveBudget time.Duration
}

func NewService(d Deps) *Service {
	if d.Locker == nil {
		d.Locker = lock.NewLocalLocker()
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	return &Service{
		interviews: d.Interviews,
		accounts:   d.Accounts,
		ai:         d.AI,
		stt:        d.Transcriber,
		rooms:      d.Rooms,
		audio:      d.Audio,
		locker:     d.Locker,
		logger:     d.Logger,
		now:        time.Now,
		liveBudget: LiveEvaluationBudget,
	}
}

type StartResult struct {
	InterviewID    primitive.ObjectID     `json:"interviewId"`
	QuestionNumber int                    `json:"questionNumber"`
	Question       string                 `json:"question"`
	Status         models.InterviewStatus `json:"status"`
	CreditsUsed    int                    `json:"creditsUsed"`
}

type LiveStartResult struct {
	InterviewID primitive.ObjectID     `json:"interviewId"`
	LivekitURL  string                 `json:"livekitUrl"`
	Token       string                 `json:"token"`
	RoomName    string                 `json:"roomName"`
	Status      models.InterviewStatus `json:"status"`
}

type AudioResult struct {
	Transcript        string                 `json:"transcript"`
	Confidence        float64                `json:"confidence"`
	Evaluation        models.Evaluation      `json:"evaluation"`
	NextQuestion      *string                `json:"nextQuestion"`
	InterviewStatus   models.InterviewStatus `json:"interviewStatus"`
	OverallScore      int                    `json:"overallScore"`
	QuestionsAnswered int                    `json:"questionsAnswered"`
	Summary           string                 `json:"summary,omitempty"`
}

type HistoryResult struct {
	Interviews []models.Interview `json:"interviews"`
	Total      int64              `json:"total"`
	Limit      int64              `json:"limit"`
	Skip       int64              `json:"skip"`
}

// Start opens an audio interview. Credits are only taken once the first question exists.
func (s *Service) Start(ctx context.Context, userID primitive.ObjectID, req models.StartInterviewRequest) (*StartResult, error) {
	iv, user, err := s.open(ctx, userID, req, false)
	if err != nil {
		metrics.InterviewsStarted.WithLabelValues("audio", "rejected").Inc()
		return nil, err
	}
	log := s.logger.With(zap.String("interview_id", iv.ID.Hex()), zap.String("user_id", userID.Hex()))

	question, err := s.ai.InitialQuestion(ctx, iv.InterviewType, iv.DifficultyLevel)
	if err != nil {
		log.Error("first question generation failed", zap.Error(err))
		s.cancel(ctx, iv)
		metrics.InterviewsStarted.WithLabelValues("audio", "cancelled").Inc()
		return nil, apperr.ErrQuestionGeneration.Wrap(err)
	}

	iv.Questions = append(iv.Questions, models.QuestionRecord{
		QuestionNumber: 1,
		QuestionText:   question,
		GeneratedAt:    s.now().UTC(),
	})
	iv.TotalQuestions = 1
	if err := s.interviews.Save(ctx, iv); err != nil {
		log.Error("failed to save first question", zap.Error(err))
		s.cancel(ctx, iv)
		return nil, err
	}

	if err := s.debit(ctx, iv, user); err != nil {
		metrics.InterviewsStarted.WithLabelValues("audio", "cancelled").Inc()
		return nil, err
	}
	metrics.InterviewsStarted.WithLabelValues("audio", "started").Inc()
	log.Info("interview started", zap.Int("credits", iv.CreditsUsed))

	return &StartResult{
		InterviewID:    iv.ID,
		QuestionNumber: 1,
		Question:       question,
		Status:         iv.Status,
		CreditsUsed:    iv.CreditsUsed,
	}, nil
}

// StartLive opens a session conducted by the voice agent and hands back a room token.
func (s *Service) StartLive(ctx context.Context, userID primitive.ObjectID, req models.StartInterviewRequest) (*LiveStartResult, error) {
	if s.rooms == nil || !s.rooms.Configured() {
		return nil, apperr.Unavailable("LiveKit is not configured.")
	}
	iv, user, err := s.open(ctx, userID, req, true)
	if err != nil {
		metrics.InterviewsStarted.WithLabelValues("live", "rejected").Inc()
		return nil, err
	}
	log := s.logger.With(zap.String("interview_id", iv.ID.Hex()), zap.String("user_id", userID.Hex()))

	room := livekit.RoomName(iv.ID.Hex())
	token, err := s.rooms.Issue(livekit.Grant{
		Identity: livekit.Identity(userID.Hex()),
		Name:     user.Name,
		Room:     room,
		Metadata: livekit.RoomMetadata{
			InterviewID:     iv.ID.Hex(),
			InterviewType:   iv.InterviewType,
			DifficultyLevel: iv.DifficultyLevel,
			MaxQuestions:    models.MaxQuestions(iv.Duration),
			UserName:        user.Name,
			UserID:          userID.Hex(),
		},
	})
	if err != nil {
		log.Error("room token issuance failed", zap.Error(err))
		s.cancel(ctx, iv)
		metrics.InterviewsStarted.WithLabelValues("live", "cancelled").Inc()
		return nil, apperr.Upstream("Failed to create live interview room", err)
	}

	if err := s.debit(ctx, iv, user); err != nil {
		metrics.InterviewsStarted.WithLabelValues("live", "cancelled").Inc()
		return nil, err
	}
	metrics.InterviewsStarted.WithLabelValues("live", "started").Inc()
	log.Info("live interview started", zap.String("room", room))

	return &LiveStartResult{
		InterviewID: iv.ID,
		LivekitURL:  s.rooms.URL(),
		Token:       token,
		RoomName:    room,
		Status:      iv.Status,
	}, nil
}

// open checks the balance and persists an in_progress session.
func (s *Service) open(ctx context.Context, userID primitive.ObjectID, req models.StartInterviewRequest, live bool) (*models.Interview, *models.User, error) {
	duration := models.NormalizeDuration(req.Duration)
	analysis := models.NormalizeAnalysis(req.AnalysisType)
	cost := models.InterviewCost(duration, analysis)

	user, err := s.accounts.FindByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if user.Credits < cost {
		return nil, nil, insufficientCredits(cost, user.Credits)
	}

	now := s.now().UTC()
	iv := &models.Interview{
		UserID:          userID,
		InterviewType:   req.InterviewType,
		DifficultyLevel: req.DifficultyLevel,
		Duration:        duration,
		AnalysisType:    analysis,
		CreditsUsed:     cost,
		Status:          models.StatusInProgress,
		StartedAt:       &now,
		Questions:       []models.QuestionRecord{},
		IsLiveInterview: live,
	}
	if err := s.interviews.Create(ctx, iv); err != nil {
		return nil, nil, err
	}
	return iv, user, nil
}

// debit takes the session cost. A lost race on the balance cancels the session.
func (s *Service) debit(ctx context.Context, iv *models.Interview, user *models.User) error {
	ok, err := s.accounts.DebitCredits(ctx, user.ID, iv.CreditsUsed)
	if err != nil {
		s.logger.Error("credit debit failed", zap.String("interview_id", iv.ID.Hex()), zap.Error(err))
		s.cancel(ctx, iv)
		return err
	}
	if !ok {
		s.cancel(ctx, iv)
		return insufficientCredits(iv.CreditsUsed, user.Credits)
	}
	metrics.CreditsDebited.Add(float64(iv.CreditsUsed))
	return nil
}

func (s *Service) cancel(ctx context.Context, iv *models.Interview) {
	iv.Status = models.StatusCancelled
	if err := s.interviews.Save(context.WithoutCancel(ctx), iv); err != nil {
		s.logger.Error("failed to cancel interview", zap.String("interview_id", iv.ID.Hex()), zap.Error(err))
	}
}

func insufficientCredits(cost, balance int) error {
	return apperr.ErrInsufficientCredits.WithMessage(
		fmt.Sprintf("Not enough credits. This interview costs %d credits. You have %d.", cost, balance))
}

func (s *Service) Get(ctx context.Context, userID primitive.ObjectID, id string) (*models.Interview, error) {
	iv, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !iv.OwnedBy(userID) {
		return nil, errNotOwner
	}
	return iv, nil
}

func (s *Service) History(ctx context.Context, userID primitive.ObjectID, limit, skip int64) (*HistoryResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	if skip < 0 {
		skip = 0
	}
	list, total, err := s.interviews.ListByUser(ctx, userID, limit, skip)
	if err != nil {
		return nil, err
	}
	return &HistoryResult{Interviews: list, Total: total, Limit: limit, Skip: skip}, nil
}

// ProcessAudio transcribes and scores the answer to the current question, then
// either asks the follow-up or closes the interview.
func (s *Service) ProcessAudio(ctx context.Context, userID primitive.ObjectID, id string, audio []byte, mimeType string) (*AudioResult, error) {
	release, err := s.locker.Acquire(ctx, id)
	if err != nil {
		return nil, err
	}
	defer release()

	iv, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !iv.OwnedBy(userID) {
		return nil, errNotOwner
	}
	if iv.Status != models.StatusInProgress {
		return nil, apperr.Validation(fmt.Sprintf("Interview is %s", iv.Status))
	}
	if err := transcription.ValidateAudio(audio); err != nil {
		return nil, err
	}
	current := iv.LastQuestion()
	if current == nil {
		return nil, apperr.Validation("No current question found")
	}
	log := s.logger.With(zap.String("interview_id", id), zap.Int("question", current.QuestionNumber))

	tr, err := s.stt.Transcribe(ctx, audio, mimeType)
	if err != nil {
		log.Error("transcription failed", zap.Error(err))
		return nil, apperr.ErrTranscriptionFailure.Wrap(err)
	}
	if transcription.WordCount(tr.Transcript) < MinResponseWords {
		return nil, apperr.ErrInsufficientResponse
	}

	eval, err := s.ai.Evaluate(ctx, current.QuestionText, tr.Transcript, s.evalContext(iv, current.QuestionNumber))
	if err != nil {
		log.Error("evaluation failed", zap.Error(err))
		return nil, apperr.ErrEvaluationFailure.Wrap(err)
	}

	now := s.now().UTC()
	current.CandidateResponse = tr.Transcript
	current.ResponseReceivedAt = &now
	current.AIEvaluation = &eval
	if s.audio != nil {
		if key, err := s.audio.Put(ctx, id, current.QuestionNumber, mimeType, audio); err != nil {
			log.Warn("audio archive upload failed", zap.Error(err))
		} else {
			current.AudioKey = key
		}
	}
	iv.QuestionsAnswered++

	result := &AudioResult{
		Transcript: tr.Transcript,
		Confidence: tr.Confidence,
		Evaluation: eval,
	}
	if ShouldContinue(iv.QuestionsAnswered, eval.Score) {
		next := eval.FollowUpQuestion
		iv.Questions = append(iv.Questions, models.QuestionRecord{
			QuestionNumber: iv.QuestionsAnswered + 1,
			QuestionText:   next,
			GeneratedAt:    now,
		})
		iv.TotalQuestions++
		result.NextQuestion = &next
	} else {
		iv.Status = models.StatusCompleted
		iv.CompletedAt = &now
		iv.OverallScore = OverallScore(iv.Questions)
		iv.Summary = s.summarize(ctx, iv, fmt.Sprintf("Interview completed with an overall score of %d%%.", iv.OverallScore))
		result.Summary = iv.Summary
	}

	if err := s.interviews.Save(ctx, iv); err != nil {
		return nil, err
	}
	if iv.Status == models.StatusCompleted {
		metrics.InterviewsCompleted.WithLabelValues("audio").Inc()
		log.Info("interview completed", zap.Int("overall_score", iv.OverallScore))
	}

	result.InterviewStatus = iv.Status
	result.OverallScore = iv.OverallScore
	result.QuestionsAnswered = iv.QuestionsAnswered
	return result, nil
}

// summarize never fails; provider errors yield fallback.
func (s *Service) summarize(ctx context.Context, iv *models.Interview, fallback string) string {
	summary, err := s.ai.Summarize(ctx, scoredAnswers(iv.Questions), s.evalContext(iv, 0))
	if err != nil || summary == "" {
		if err != nil {
			s.logger.Warn("summary generation failed", zap.String("interview_id", iv.ID.Hex()), zap.Error(err))
		}
		return fallback
	}
	return summary
}

func (s *Service) evalContext(iv *models.Interview, questionNumber int) evaluator.Context {
	return evaluator.Context{
		InterviewType:   iv.InterviewType,
		DifficultyLevel: iv.DifficultyLevel,
		AnalysisType:    iv.AnalysisType,
		QuestionNumber:  questionNumber,
	}
}

var errNotOwner = apperr.Forbidden("You do not have access to this interview")

func (s *Service) load(ctx context.Context, id string) (*models.Interview, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.Validation("Invalid interview ID")
	}
	return s.interviews.FindByID(ctx, oid)
}
