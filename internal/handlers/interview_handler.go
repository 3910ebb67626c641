package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"intervuai/backend/internal/apperr"
	"intervuai/backend/internal/interview"
	"intervuai/backend/internal/middleware"
	"intervuai/backend/internal/models"
	"intervuai/backend/internal/transcription"
	"intervuai/backend/internal/utils"
)

type InterviewService interface {
	Start(ctx context.Context, userID primitive.ObjectID, req models.StartInterviewRequest) (*interview.StartResult, error)
	StartLive(ctx context.Context, userID primitive.ObjectID, req models.StartInterviewRequest) (*interview.LiveStartResult, error)
	ProcessAudio(ctx context.Context, userID primitive.ObjectID, id string, audio []byte, mimeType string) (*interview.AudioResult, error)
	SaveLiveResults(ctx context.Context, id string, req models.SaveLiveResultsRequest) (*interview.LiveResultsSaved, error)
	CompleteLive(ctx context.Context, userID primitive.ObjectID, id string, req models.CompleteLiveRequest) (*models.Interview, bool, error)
	Get(ctx context.Context, userID primitive.ObjectID, id string) (*models.Interview, error)
	History(ctx context.Context, userID primitive.ObjectID, limit, skip int64) (*interview.HistoryResult, error)
}

type InterviewHandler struct {
	interviews InterviewService
	logger     *zap.Logger
	debug      bool
}

func NewInterviewHandler(interviews InterviewService, logger *zap.Logger, debug bool) *InterviewHandler {
	return &InterviewHandler{interviews: interviews, logger: logger, debug: debug}
}

func (h *InterviewHandler) StartHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.StartInterviewRequest](r)

	res, err := h.interviews.Start(r.Context(), middleware.UserID(r), *req)
	if err != nil {
		utils.Error(w, err, h.debug)
		return
	}
	utils.Success(w, http.StatusCreated, "Interview started successfully", res)
}

func (h *InterviewHandler) StartLiveHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.StartInterviewRequest](r)

	res, err := h.interviews.StartLive(r.Context(), middleware.UserID(r), *req)
	if err != nil {
		utils.Error(w, err, h.debug)
		return
	}
	utils.Success(w, http.StatusCreated, "Live interview started successfully", res)
}

// ProcessAudioHandler takes the answer as the raw request body.
func (h *InterviewHandler) ProcessAudioHandler(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, transcription.MaxAudioBytes+1)
	audio, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.Error(w, apperr.ErrInvalidAudio.WithMessage("Audio file too large (max 10MB)"), h.debug)
			return
		}
		utils.Error(w, apperr.ErrInvalidAudio.Wrap(err), h.debug)
		return
	}

	res, err := h.interviews.ProcessAudio(r.Context(), middleware.UserID(r), chi.URLParam(r, "id"), audio, r.Header.Get("Content-Type"))
	if err != nil {
		utils.Error(w, err, h.debug)
		return
	}
	utils.Success(w, http.StatusOK, "Audio processed successfully", res)
}

func (h *InterviewHandler) SaveLiveResultsHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.SaveLiveResultsRequest](r)
	id := chi.URLParam(r, "id")

	res, err := h.interviews.SaveLiveResults(r.Context(), id, *req)
	if err != nil {
		h.logger.Error("failed to save live results", zap.String("interview_id", id), zap.Error(err))
		utils.Error(w, err, h.debug)
		return
	}
	utils.Success(w, http.StatusOK, "Live interview results saved", res)
}

func (h *InterviewHandler) CompleteLiveHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.CompleteLiveRequest](r)

	iv, already, err := h.interviews.CompleteLive(r.Context(), middleware.UserID(r), chi.URLParam(r, "id"), *req)
	if err != nil {
		utils.Error(w, err, h.debug)
		return
	}
	if already {
		utils.Success(w, http.StatusOK, "Interview already completed", iv)
		return
	}
	utils.Success(w, http.StatusOK, "Live interview completed", iv)
}

func (h *InterviewHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	iv, err := h.interviews.Get(r.Context(), middleware.UserID(r), chi.URLParam(r, "id"))
	if err != nil {
		utils.Error(w, err, h.debug)
		return
	}
	utils.Success(w, http.StatusOK, "Interview retrieved successfully", iv)
}

func (h *InterviewHandler) HistoryHandler(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		utils.Error(w, err, h.debug)
		return
	}
	skip, err := queryInt(r, "skip")
	if err != nil {
		utils.Error(w, err, h.debug)
		return
	}

	res, err := h.interviews.History(r.Context(), middleware.UserID(r), limit, skip)
	if err != nil {
		utils.Error(w, err, h.debug)
		return
	}
	utils.Success(w, http.StatusOK, "Interview history retrieved successfully", res)
}

// queryInt reads a non-negative integer query parameter; absent means 0.
func queryInt(r *http.Request, key string) (int64, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 0 {
		return 0, apperr.Validation("Invalid " + key + " parameter")
	}
	return n, nil
}
