package handlers

import (
	"context"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"intervuai/backend/internal/account"
	"intervuai/backend/internal/apperr"
	"intervuai/backend/internal/middleware"
	"intervuai/backend/internal/models"
	"intervuai/backend/internal/utils"
)

type AuthService interface {
	Register(ctx context.Context, req models.RegisterRequest) (*account.AuthResult, error)
	Login(ctx context.Context, req models.LoginRequest) (*account.AuthResult, error)
	GoogleLogin(ctx context.Context, req models.GoogleLoginRequest) (*account.AuthResult, error)
	Me(ctx context.Context, userID primitive.ObjectID) (*account.Profile, error)
	Refresh(ctx context.Context, userID primitive.ObjectID) (string, error)
}

type OTPIssuer interface {
	Issue(ctx context.Context, email, name string) error
}

type AuthHandler struct {
	auth   AuthService
	otp    OTPIssuer // nil when SMTP is not configured
	logger *zap.Logger
	debug  bool
}

func NewAuthHandler(auth AuthService, otp OTPIssuer, logger *zap.Logger, debug bool) *AuthHandler {
	return &AuthHandler{auth: auth, otp: otp, logger: logger, debug: debug}
}

func (h *AuthHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.RegisterRequest](r)

	res, err := h.auth.Register(r.Context(), *req)
	if err != nil {
		h.logger.Info("registration rejected", zap.String("email", req.Email), zap.Error(err))
		utils.Error(w, err, h.debug)
		return
	}
	utils.Success(w, http.StatusCreated, "User registered successfully", res)
}

func (h *AuthHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.LoginRequest](r)

	res, err := h.auth.Login(r.Context(), *req)
	if err != nil {
		utils.Error(w, err, h.debug)
		return
	}
	utils.Success(w, http.StatusOK, "Login successful", res)
}

func (h *AuthHandler) GoogleHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.GoogleLoginRequest](r)

	res, err := h.auth.GoogleLogin(r.Context(), *req)
	if err != nil {
		utils.Error(w, err, h.debug)
		return
	}
	utils.Success(w, http.StatusOK, "Google login successful", res)
}

func (h *AuthHandler) SendOTPHandler(w http.ResponseWriter, r *http.Request) {
	if h.otp == nil {
		utils.Error(w, apperr.Unavailable("Email verification is not configured."), h.debug)
		return
	}
	req := middleware.GetValidatedRequest[*models.SendOTPRequest](r)

	if err := h.otp.Issue(r.Context(), req.Email, req.Name); err != nil {
		utils.Error(w, err, h.debug)
		return
	}
	utils.Success(w, http.StatusOK, "Verification code sent", map[string]string{"email": req.Email})
}

func (h *AuthHandler) MeHandler(w http.ResponseWriter, r *http.Request) {
	profile, err := h.auth.Me(r.Context(), middleware.UserID(r))
	if err != nil {
		utils.Error(w, err, h.debug)
		return
	}
	utils.Success(w, http.StatusOK, "User retrieved successfully", profile)
}

func (h *AuthHandler) RefreshHandler(w http.ResponseWriter, r *http.Request) {
	token, err := h.auth.Refresh(r.Context(), middleware.UserID(r))
	if err != nil {
		utils.Error(w, err, h.debug)
		return
	}
	utils.Success(w, http.StatusOK, "Token refreshed successfully", map[string]string{"token": token})
}
