package models

import (
	"net/mail"
	"strings"

	"intervuai/backend/internal/apperr"
)

const MinPasswordLength = 8

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	OTP      string `json:"otp,omitempty"`
}

func (r *RegisterRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = NormalizeEmail(r.Email)
	r.OTP = strings.TrimSpace(r.OTP)
	if r.Name == "" || r.Email == "" || r.Password == "" {
		return apperr.Validation("Name, email, and password are required")
	}
	if !validEmail(r.Email) {
		return apperr.Validation("Please provide a valid email address")
	}
	if len(r.Password) < MinPasswordLength {
		return apperr.Validation("Password must be at least 8 characters")
	}
	return nil
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	r.Email = NormalizeEmail(r.Email)
	if r.Email == "" || r.Password == "" {
		return apperr.Validation("Email and password are required")
	}
	return nil
}

type GoogleLoginRequest struct {
	Credential string `json:"credential"`
}

func (r *GoogleLoginRequest) Validate() error {
	r.Credential = strings.TrimSpace(r.Credential)
	if r.Credential == "" {
		return apperr.Validation("Google credential is required")
	}
	return nil
}

type SendOTPRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

func (r *SendOTPRequest) Validate() error {
	r.Email = NormalizeEmail(r.Email)
	r.Name = strings.TrimSpace(r.Name)
	if r.Email == "" || !validEmail(r.Email) {
		return apperr.Validation("Please provide a valid email address")
	}
	return nil
}

type StartInterviewRequest struct {
	InterviewType   string `json:"interviewType"`
	DifficultyLevel string `json:"difficultyLevel"`
	Duration        string `json:"duration"`
	AnalysisType    string `json:"analysisType"`
}

// Validate fills defaults and rejects unknown tracks; unknown tiers are normalized, not rejected.
func (r *StartInterviewRequest) Validate() error {
	r.InterviewType = strings.TrimSpace(r.InterviewType)
	r.DifficultyLevel = strings.ToLower(strings.TrimSpace(r.DifficultyLevel))
	if r.InterviewType == "" {
		r.InterviewType = DefaultInterviewType
	}
	if r.DifficultyLevel == "" {
		r.DifficultyLevel = DefaultDifficulty
	}
	if !IsValidInterviewType(r.InterviewType) {
		return apperr.Validation("Invalid interview type: " + r.InterviewType)
	}
	if !IsValidDifficulty(r.DifficultyLevel) {
		return apperr.Validation("Invalid difficulty level: " + r.DifficultyLevel)
	}
	r.Duration = NormalizeDuration(strings.ToLower(strings.TrimSpace(r.Duration)))
	r.AnalysisType = NormalizeAnalysis(strings.ToLower(strings.TrimSpace(r.AnalysisType)))
	return nil
}

type SaveLiveResultsRequest struct {
	Transcript []TranscriptEntry `json:"transcript"`
}

func (r *SaveLiveResultsRequest) Validate() error {
	if r.Transcript == nil {
		return apperr.Validation("Invalid transcript data")
	}
	return nil
}

// CompleteLiveRequest has an optional transcript; an empty body is allowed.
type CompleteLiveRequest struct {
	Transcript []TranscriptEntry `json:"transcript,omitempty"`
}

func (r *CompleteLiveRequest) Validate() error { return nil }

type CreateOrderRequest struct {
	Plan     string `json:"plan"`
	Currency string `json:"currency"`
}

func (r *CreateOrderRequest) Validate() error {
	r.Plan = strings.ToLower(strings.TrimSpace(r.Plan))
	if _, ok := Plans[r.Plan]; !ok {
		return apperr.ErrInvalidPlan.WithMessage("Invalid plan. Choose 'starter', 'growth', or 'pro'.")
	}
	r.Currency = NormalizeCurrency(strings.ToUpper(strings.TrimSpace(r.Currency)))
	return nil
}

type VerifyPaymentRequest struct {
	RazorpayOrderID   string `json:"razorpayOrderId"`
	RazorpayPaymentID string `json:"razorpayPaymentId"`
	RazorpaySignature string `json:"razorpaySignature"`
}

func (r *VerifyPaymentRequest) Validate() error {
	if r.RazorpayOrderID == "" || r.RazorpayPaymentID == "" || r.RazorpaySignature == "" {
		return apperr.Validation("Missing payment verification details")
	}
	return nil
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}
