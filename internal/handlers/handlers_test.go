package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"intervuai/backend/internal/account"
	"intervuai/backend/internal/interview"
	"intervuai/backend/internal/middleware"
	"intervuai/backend/internal/models"
	"intervuai/backend/internal/payment"
	"intervuai/backend/internal/utils"
)

var testTokens = account.NewTokenManager("handler-secret", time.Hour)

// route mounts h at pattern behind the given middleware and serves one request.
func route(t *testing.T, method, pattern, path string, body io.Reader, header http.Header, h http.HandlerFunc, mws ...func(http.Handler) http.Handler) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	r.With(mws...).MethodFunc(method, pattern, h)

	req := httptest.NewRequest(method, path, body)
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func bearer(t *testing.T, userID primitive.ObjectID) http.Header {
	t.Helper()
	token, err := testTokens.Issue(&models.User{ID: userID, Email: "u@example.com", Name: "U"})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return http.Header{"Authorization": []string{"Bearer " + token}}
}

func authn() func(http.Handler) http.Handler { return middleware.Authenticate(testTokens) }

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder, data interface{}) utils.Envelope {
	t.Helper()
	var raw struct {
		utils.Envelope
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&raw); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if data != nil && len(raw.Data) > 0 {
		if err := json.Unmarshal(raw.Data, data); err != nil {
			t.Fatalf("failed to decode data: %v", err)
		}
	}
	return raw.Envelope
}

var nopLogger = zap.NewNop()

type mockAuthService struct {
	registerFn func(ctx context.Context, req models.RegisterRequest) (*account.AuthResult, error)
	loginFn    func(ctx context.Context, req models.LoginRequest) (*account.AuthResult, error)
	googleFn   func(ctx context.Context, req models.GoogleLoginRequest) (*account.AuthResult, error)
	meFn       func(ctx context.Context, userID primitive.ObjectID) (*account.Profile, error)
	refreshFn  func(ctx context.Context, userID primitive.ObjectID) (string, error)
}

func (m *mockAuthService) Register(ctx context.Context, req models.RegisterRequest) (*account.AuthResult, error) {
	if m.registerFn == nil {
		panic("unexpected Register call")
	}
	return m.registerFn(ctx, req)
}

func (m *mockAuthService) Login(ctx context.Context, req models.LoginRequest) (*account.AuthResult, error) {
	if m.loginFn == nil {
		panic("unexpected Login call")
	}
	return m.loginFn(ctx, req)
}

func (m *mockAuthService) GoogleLogin(ctx context.Context, req models.GoogleLoginRequest) (*account.AuthResult, error) {
	if m.googleFn == nil {
		panic("unexpected GoogleLogin call")
	}
	return m.googleFn(ctx, req)
}

func (m *mockAuthService) Me(ctx context.Context, userID primitive.ObjectID) (*account.Profile, error) {
	if m.meFn == nil {
		panic("unexpected Me call")
	}
	return m.meFn(ctx, userID)
}

func (m *mockAuthService) Refresh(ctx context.Context, userID primitive.ObjectID) (string, error) {
	if m.refreshFn == nil {
		panic("unexpected Refresh call")
	}
	return m.refreshFn(ctx, userID)
}

type mockOTPIssuer struct {
	issueFn func(ctx context.Context, email, name string) error
}

func (m *mockOTPIssuer) Issue(ctx context.Context, email, name string) error {
	if m.issueFn == nil {
		panic("unexpected Issue call")
	}
	return m.issueFn(ctx, email, name)
}

type mockInterviewService struct {
	startFn        func(ctx context.Context, userID primitive.ObjectID, req models.StartInterviewRequest) (*interview.StartResult, error)
	startLiveFn    func(ctx context.Context, userID primitive.ObjectID, req models.StartInterviewRequest) (*interview.LiveStartResult, error)
	processAudioFn func(ctx context.Context, userID primitive.ObjectID, id string, audio []byte, mimeType string) (*interview.AudioResult, error)
	saveLiveFn     func(ctx context.Context, id string, req models.SaveLiveResultsRequest) (*interview.LiveResultsSaved, error)
	completeLiveFn func(ctx context.Context, userID primitive.ObjectID, id string, req models.CompleteLiveRequest) (*models.Interview, bool, error)
	getFn          func(ctx context.Context, userID primitive.ObjectID, id string) (*models.Interview, error)
	historyFn      func(ctx context.Context, userID primitive.ObjectID, limit, skip int64) (*interview.HistoryResult, error)
}

func (m *mockInterviewService) Start(ctx context.Context, userID primitive.ObjectID, req models.StartInterviewRequest) (*interview.StartResult, error) {
	if m.startFn == nil {
		panic("unexpected Start call")
	}
	return m.startFn(ctx, userID, req)
}

func (m *mockInterviewService) StartLive(ctx context.Context, userID primitive.ObjectID, req models.StartInterviewRequest) (*interview.LiveStartResult, error) {
	if m.startLiveFn == nil {
		panic("unexpected StartLive call")
	}
	return m.startLiveFn(ctx, userID, req)
}

func (m *mockInterviewService) ProcessAudio(ctx context.Context, userID primitive.ObjectID, id string, audio []byte, mimeType string) (*interview.AudioResult, error) {
	if m.processAudioFn == nil {
		panic("unexpected ProcessAudio call")
	}
	return m.processAudioFn(ctx, userID, id, audio, mimeType)
}

func (m *mockInterviewService) SaveLiveResults(ctx context.Context, id string, req models.SaveLiveResultsRequest) (*interview.LiveResultsSaved, error) {
	if m.saveLiveFn == nil {
		panic("unexpected SaveLiveResults call")
	}
	return m.saveLiveFn(ctx, id, req)
}

func (m *mockInterviewService) CompleteLive(ctx context.Context, userID primitive.ObjectID, id string, req models.CompleteLiveRequest) (*models.Interview, bool, error) {
	if m.completeLiveFn == nil {
		panic("unexpected CompleteLive call")
	}
	return m.completeLiveFn(ctx, userID, id, req)
}

func (m *mockInterviewService) Get(ctx context.Context, userID primitive.ObjectID, id string) (*models.Interview, error) {
	if m.getFn == nil {
		panic("unexpected Get call")
	}
	return m.getFn(ctx, userID, id)
}

func (m *mockInterviewService) History(ctx context.Context, userID primitive.ObjectID, limit, skip int64) (*interview.HistoryResult, error) {
	if m.historyFn == nil {
		panic("unexpected History call")
	}
	return m.historyFn(ctx, userID, limit, skip)
}

type mockPaymentService struct {
	createOrderFn func(ctx context.Context, userID primitive.ObjectID, req models.CreateOrderRequest) (*payment.OrderResult, error)
	verifyFn      func(ctx context.Context, userID primitive.ObjectID, req models.VerifyPaymentRequest) (*payment.VerifyResult, error)
	historyFn     func(ctx context.Context, userID primitive.ObjectID) ([]models.Payment, error)
}

func (m *mockPaymentService) Plans() map[string]models.Plan { return models.Plans }

func (m *mockPaymentService) CreateOrder(ctx context.Context, userID primitive.ObjectID, req models.CreateOrderRequest) (*payment.OrderResult, error) {
	if m.createOrderFn == nil {
		panic("unexpected CreateOrder call")
	}
	return m.createOrderFn(ctx, userID, req)
}

func (m *mockPaymentService) Verify(ctx context.Context, userID primitive.ObjectID, req models.VerifyPaymentRequest) (*payment.VerifyResult, error) {
	if m.verifyFn == nil {
		panic("unexpected Verify call")
	}
	return m.verifyFn(ctx, userID, req)
}

func (m *mockPaymentService) History(ctx context.Context, userID primitive.ObjectID) ([]models.Payment, error) {
	if m.historyFn == nil {
		panic("unexpected History call")
	}
	return m.historyFn(ctx, userID)
}
