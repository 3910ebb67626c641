package account

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"intervuai/backend/internal/apperr"
	"intervuai/backend/internal/models"
)

type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByGoogleID(ctx context.Context, googleID string) (*models.User, error)
	LinkGoogleAccount(ctx context.Context, id primitive.ObjectID, googleID, picture string) (*models.User, error)
	TouchLogin(ctx context.Context, id primitive.ObjectID) error
}

type OTPVerifier interface {
	Verify(ctx context.Context, email, code string) error
}

type PublicUser struct {
	ID               primitive.ObjectID `json:"id"`
	Name             string             `json:"name"`
	Email            string             `json:"email"`
	SubscriptionPlan string             `json:"subscriptionPlan"`
	ProfilePicture   string             `json:"profilePicture,omitempty"`
}

type AuthResult struct {
	Token string     `json:"token"`
	User  PublicUser `json:"user"`
}

type Profile struct {
	ID                  primitive.ObjectID `json:"id"`
	Name                string             `json:"name"`
	Email               string             `json:"email"`
	ProfilePicture      string             `json:"profilePicture,omitempty"`
	IsVerified          bool               `json:"isVerified"`
	Credits             int                `json:"credits"`
	SubscriptionPlan    string             `json:"subscriptionPlan"`
	SubscriptionActive  bool               `json:"subscriptionActive"`
	SubscriptionEndDate *time.Time         `json:"subscriptionEndDate,omitempty"`
	TotalInterviews     int                `json:"totalInterviews"`
}

type Service struct {
	users         UserStore
	tokens        *TokenManager
	google        GoogleVerifier // nil when GOOGLE_CLIENT_ID is unset
	otp           OTPVerifier    // nil when email delivery is not configured
	signupCredits int
	logger        *zap.Logger
}

func NewService(users UserStore, tokens *TokenManager, google GoogleVerifier, otp OTPVerifier, signupCredits int, logger *zap.Logger) *Service {
	return &Service{
		users:         users,
		tokens:        tokens,
		google:        google,
		otp:           otp,
		signupCredits: signupCredits,
		logger:        logger,
	}
}

// OTPRequired reports whether registration needs an emailed code.
func (s *Service) OTPRequired() bool { return s.otp != nil }

func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (*AuthResult, error) {
	if _, err := s.users.FindByEmail(ctx, req.Email); err == nil {
		return nil, apperr.ErrDuplicateEmail
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	if s.otp != nil {
		if req.OTP == "" {
			return nil, apperr.Validation("Verification code is required")
		}
		if err := s.otp.Verify(ctx, req.Email, req.OTP); err != nil {
			return nil, err
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Name:             req.Name,
		Email:            req.Email,
		Password:         string(hash),
		IsVerified:       s.otp != nil,
		Credits:          s.signupCredits,
		SubscriptionPlan: models.PlanFree,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("user registered", zap.String("user_id", user.ID.Hex()))
	return s.authResult(user)
}

func (s *Service) Login(ctx context.Context, req models.LoginRequest) (*AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.ErrInvalidCredentials
		}
		return nil, err
	}
	// Google-only accounts have no password
	if user.Password == "" || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		return nil, apperr.ErrInvalidCredentials
	}
	s.touch(ctx, user.ID)
	return s.authResult(user)
}

// GoogleLogin finds the account by Google subject, then by email (linking it), else creates one.
func (s *Service) GoogleLogin(ctx context.Context, req models.GoogleLoginRequest) (*AuthResult, error) {
	if s.google == nil {
		return nil, apperr.Unavailable("Google login is not configured")
	}
	profile, err := s.google.Verify(ctx, req.Credential)
	if err != nil {
		s.logger.Warn("google credential rejected", zap.Error(err))
		return nil, apperr.ErrInvalidToken.WithMessage("Invalid Google credential")
	}
	email := models.NormalizeEmail(profile.Email)
	if profile.Subject == "" || email == "" {
		return nil, apperr.ErrInvalidToken.WithMessage("Google account has no email")
	}

	user, err := s.users.FindByGoogleID(ctx, profile.Subject)
	switch {
	case err == nil:
	case errors.Is(err, apperr.ErrNotFound):
		user, err = s.linkOrCreate(ctx, profile, email)
		if err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	s.touch(ctx, user.ID)
	return s.authResult(user)
}

func (s *Service) linkOrCreate(ctx context.Context, profile *GoogleProfile, email string) (*models.User, error) {
	existing, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		picture := ""
		if existing.ProfilePicture == "" {
			picture = profile.Picture
		}
		s.logger.Info("linking google account", zap.String("user_id", existing.ID.Hex()))
		return s.users.LinkGoogleAccount(ctx, existing.ID, profile.Subject, picture)
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	name := strings.TrimSpace(profile.Name)
	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}
	user := &models.User{
		Name:             name,
		Email:            email,
		GoogleID:         profile.Subject,
		ProfilePicture:   profile.Picture,
		IsVerified:       true,
		Credits:          s.signupCredits,
		SubscriptionPlan: models.PlanFree,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("user registered via google", zap.String("user_id", user.ID.Hex()))
	return user, nil
}

func (s *Service) Me(ctx context.Context, userID primitive.ObjectID) (*Profile, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Profile{
		ID:                  u.ID,
		Name:                u.Name,
		Email:               u.Email,
		ProfilePicture:      u.ProfilePicture,
		IsVerified:          u.IsVerified,
		Credits:             u.Credits,
		SubscriptionPlan:    u.SubscriptionPlan,
		SubscriptionActive:  u.SubscriptionActive,
		SubscriptionEndDate: u.SubscriptionEndDate,
		TotalInterviews:     u.TotalInterviews,
	}, nil
}

// Refresh reissues a token from the stored account, picking up plan changes.
func (s *Service) Refresh(ctx context.Context, userID primitive.ObjectID) (string, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return "", err
	}
	return s.tokens.Issue(u)
}

func (s *Service) authResult(u *models.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(u)
	if err != nil {
		return nil, err
	}
	return &AuthResult{
		Token: token,
		User: PublicUser{
			ID:               u.ID,
			Name:             u.Name,
			Email:            u.Email,
			SubscriptionPlan: u.SubscriptionPlan,
			ProfilePicture:   u.ProfilePicture,
		},
	}, nil
}

func (s *Service) touch(ctx context.Context, id primitive.ObjectID) {
	if err := s.users.TouchLogin(ctx, id); err != nil {
		s.logger.Warn("failed to record login", zap.String("user_id", id.Hex()), zap.Error(err))
	}
}
