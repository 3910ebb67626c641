package interview

import (
	"context"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"intervuai/backend/internal/apperr"
	"intervuai/backend/internal/evaluator"
	"intervuai/backend/internal/livekit"
	"intervuai/backend/internal/models"
	"intervuai/backend/internal/transcription"
)

// memStore copies documents in and out so tests observe only persisted state.
type memStore struct {
	mu    sync.Mutex
	items map[primitive.ObjectID]models.Interview
	saves int
}

func newMemStore() *memStore { return &memStore{items: map[primitive.ObjectID]models.Interview{}} }

func clone(iv models.Interview) models.Interview {
	iv.Questions = append([]models.QuestionRecord(nil), iv.Questions...)
	iv.LiveTranscript = append([]models.TranscriptEntry(nil), iv.LiveTranscript...)
	return iv
}

func (m *memStore) Create(_ context.Context, iv *models.Interview) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	iv.ID = primitive.NewObjectID()
	iv.Version = 1
	m.items[iv.ID] = clone(*iv)
	return nil
}

func (m *memStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Interview, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	iv, ok := m.items[id]
	if !ok {
		return nil, apperr.ErrNotFound.WithMessage("Interview not found")
	}
	cp := clone(iv)
	return &cp, nil
}

func (m *memStore) Save(_ context.Context, iv *models.Interview) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.items[iv.ID]
	if !ok || stored.Version != iv.Version {
		return apperr.ErrVersionConflict
	}
	iv.Version++
	m.items[iv.ID] = clone(*iv)
	m.saves++
	return nil
}

func (m *memStore) ListByUser(_ context.Context, userID primitive.ObjectID, limit, skip int64) ([]models.Interview, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []models.Interview
	for _, iv := range m.items {
		if iv.UserID == userID {
			all = append(all, clone(iv))
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID.Hex() > all[j].ID.Hex() })
	total := int64(len(all))
	if skip > total {
		skip = total
	}
	end := skip + limit
	if end > total {
		end = total
	}
	return all[skip:end], total, nil
}

func (m *memStore) get(id primitive.ObjectID) models.Interview {
	m.mu.Lock()
	defer m.mu.Unlock()
	return clone(m.items[id])
}

type memAccounts struct {
	mu       sync.Mutex
	users    map[primitive.ObjectID]*models.User
	debitErr error
	// forceShort makes the conditional debit miss, as if another request spent the credits
	forceShort bool
}

func (m *memAccounts) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, apperr.ErrNotFound.WithMessage("User not found")
	}
	cp := *u
	return &cp, nil
}

func (m *memAccounts) DebitCredits(_ context.Context, id primitive.ObjectID, cost int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.debitErr != nil {
		return false, m.debitErr
	}
	u := m.users[id]
	if m.forceShort || u.Credits < cost {
		return false, nil
	}
	u.Credits -= cost
	u.TotalInterviews++
	return true, nil
}

func (m *memAccounts) credits(id primitive.ObjectID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users[id].Credits
}

type mockAI struct {
	questionFn  func(ctx context.Context, interviewType, difficulty string) (string, error)
	evaluateFn  func(ctx context.Context, question, response string, c evaluator.Context) (models.Evaluation, error)
	summarizeFn func(ctx context.Context, answers []evaluator.ScoredAnswer, c evaluator.Context) (string, error)
	evaluations int
}

func (m *mockAI) InitialQuestion(ctx context.Context, interviewType, difficulty string) (string, error) {
	if m.questionFn == nil {
		panic("unexpected InitialQuestion call")
	}
	return m.questionFn(ctx, interviewType, difficulty)
}

func (m *mockAI) Evaluate(ctx context.Context, question, response string, c evaluator.Context) (models.Evaluation, error) {
	if m.evaluateFn == nil {
		panic("unexpected Evaluate call")
	}
	m.evaluations++
	return m.evaluateFn(ctx, question, response, c)
}

func (m *mockAI) Summarize(ctx context.Context, answers []evaluator.ScoredAnswer, c evaluator.Context) (string, error) {
	if m.summarizeFn == nil {
		panic("unexpected Summarize call")
	}
	return m.summarizeFn(ctx, answers, c)
}

type mockTranscriber struct {
	transcribeFn func(ctx context.Context, audio []byte, mimeType string) (*transcription.Result, error)
}

func (m *mockTranscriber) Transcribe(ctx context.Context, audio []byte, mimeType string) (*transcription.Result, error) {
	if m.transcribeFn == nil {
		panic("unexpected Transcribe call")
	}
	return m.transcribeFn(ctx, audio, mimeType)
}

type mockRooms struct {
	configured bool
	issueFn    func(g livekit.Grant) (string, error)
}

func (m *mockRooms) Configured() bool { return m.configured }
func (m *mockRooms) URL() string      { return "wss://rooms.example.com" }
func (m *mockRooms) Issue(g livekit.Grant) (string, error) {
	if m.issueFn == nil {
		panic("unexpected Issue call")
	}
	return m.issueFn(g)
}

type mockAudio struct {
	putFn func(ctx context.Context, interviewID string, questionNumber int, mimeType string, audio []byte) (string, error)
}

func (m *mockAudio) Put(ctx context.Context, interviewID string, questionNumber int, mimeType string, audio []byte) (string, error) {
	return m.putFn(ctx, interviewID, questionNumber, mimeType, audio)
}

type harness struct {
	svc      *Service
	store    *memStore
	accounts *memAccounts
	ai       *mockAI
	stt      *mockTranscriber
	rooms    *mockRooms
	userID   primitive.ObjectID
}

func newHarness(credits int) *harness {
	userID := primitive.NewObjectID()
	h := &harness{
		store: newMemStore(),
		accounts: &memAccounts{users: map[primitive.ObjectID]*models.User{
			userID: {ID: userID, Name: "Ada", Credits: credits},
		}},
		ai: &mockAI{
			questionFn: func(context.Context, string, string) (string, error) {
				return "Tell me about a system you designed.", nil
			},
			summarizeFn: func(context.Context, []evaluator.ScoredAnswer, evaluator.Context) (string, error) {
				return "Solid performance.", nil
			},
		},
		stt:    &mockTranscriber{},
		rooms:  &mockRooms{},
		userID: userID,
	}
	h.svc = NewService(Deps{
		Interviews:  h.store,
		Accounts:    h.accounts,
		AI:          h.ai,
		Transcriber: h.stt,
		Rooms:       h.rooms,
	})
	return h
}

func words(n int) string {
	out := make([]byte, 0, n*5)
	for i := 0; i < n; i++ {
		if i > 0 {
			out = append(out, ' ')
		}
		out = append(out, "word"...)
	}
	return string(out)
}
