package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type InterviewStatus string

const (
	StatusNotStarted InterviewStatus = "not_started"
	StatusInProgress InterviewStatus = "in_progress"
	StatusCompleted  InterviewStatus = "completed"
	StatusCancelled  InterviewStatus = "cancelled"
)

// interview tracks offered to candidates
var InterviewTypes = []string{
	"frontend", "backend", "fullstack", "devops", "data-science",
	"ai_ml_engineer", "gen_ai_engineer", "mlops_engineer", "data_engineer", "data_scientist",
}

var DifficultyLevels = []string{"beginner", "intermediate", "advanced"}

const (
	DefaultInterviewType = "fullstack"
	DefaultDifficulty    = "intermediate"
)

// Evaluation is the AI verdict on one answer.
type Evaluation struct {
	Score            int    `bson:"score" json:"score"`
	Feedback         string `bson:"feedback" json:"feedback"`
	FollowUpQuestion string `bson:"followUpQuestion" json:"followUpQuestion"`
}

// QuestionRecord is one question/answer/evaluation triple.
type QuestionRecord struct {
	QuestionNumber     int         `bson:"questionNumber" json:"questionNumber"`
	QuestionText       string      `bson:"questionText" json:"questionText"`
	GeneratedAt        time.Time   `bson:"generatedAt" json:"generatedAt"`
	CandidateResponse  string      `bson:"candidateResponse,omitempty" json:"candidateResponse,omitempty"`
	ResponseReceivedAt *time.Time  `bson:"responseReceivedAt,omitempty" json:"responseReceivedAt,omitempty"`
	AIEvaluation       *Evaluation `bson:"aiEvaluation,omitempty" json:"aiEvaluation,omitempty"`
	AudioKey           string      `bson:"audioKey,omitempty" json:"audioKey,omitempty"`
}

// TranscriptEntry is one turn of a live conversation as reported by the agent or the browser.
type TranscriptEntry struct {
	Role      string `bson:"role" json:"role"`
	Text      string `bson:"text" json:"text"`
	Timestamp int64  `bson:"timestamp,omitempty" json:"timestamp,omitempty"`
}

type Interview struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID          primitive.ObjectID `bson:"userId" json:"userId"`
	InterviewType   string             `bson:"interviewType" json:"interviewType"`
	DifficultyLevel string             `bson:"difficultyLevel" json:"difficultyLevel"`
	Duration        string             `bson:"duration" json:"duration"`
	AnalysisType    string             `bson:"analysisType" json:"analysisType"`
	CreditsUsed     int                `bson:"creditsUsed" json:"creditsUsed"`

	Status      InterviewStatus `bson:"status" json:"status"`
	StartedAt   *time.Time      `bson:"startedAt,omitempty" json:"startedAt,omitempty"`
	CompletedAt *time.Time      `bson:"completedAt,omitempty" json:"completedAt,omitempty"`

	Questions         []QuestionRecord `bson:"questions" json:"questions"`
	TotalQuestions    int              `bson:"totalQuestions" json:"totalQuestions"`
	QuestionsAnswered int              `bson:"questionsAnswered" json:"questionsAnswered"`
	OverallScore      int              `bson:"overallScore" json:"overallScore"`
	Summary           string           `bson:"summary,omitempty" json:"summary,omitempty"`

	IsLiveInterview bool              `bson:"isLiveInterview" json:"isLiveInterview"`
	LiveTranscript  []TranscriptEntry `bson:"liveTranscript,omitempty" json:"liveTranscript,omitempty"`

	// Version is bumped on every save and guards read-modify-write cycles.
	Version   int64     `bson:"version" json:"-"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// LastQuestion returns the most recently asked question, or nil.
func (i *Interview) LastQuestion() *QuestionRecord {
	if len(i.Questions) == 0 {
		return nil
	}
	return &i.Questions[len(i.Questions)-1]
}

func (i *Interview) OwnedBy(userID primitive.ObjectID) bool {
	return i.UserID == userID
}

func IsValidInterviewType(t string) bool {
	return contains(InterviewTypes, t)
}

func IsValidDifficulty(d string) bool {
	return contains(DifficultyLevels, d)
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
