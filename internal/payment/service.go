package payment

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"intervuai/backend/internal/apperr"
	"intervuai/backend/internal/metrics"
	"intervuai/backend/internal/models"
)

const HistoryLimit = 20

type PaymentStore interface {
	Create(ctx context.Context, p *models.Payment) error
	FindByOrderID(ctx context.Context, orderID string) (*models.Payment, error)
	MarkCompleted(ctx context.Context, orderID, paymentID, signature string) (*models.Payment, error)
	MarkFailed(ctx context.Context, orderID string, userID primitive.ObjectID) error
	MarkCredited(ctx context.Context, orderID string) error
	ListByUser(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.Payment, error)
}

type AccountStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	ApplySubscription(ctx context.Context, id primitive.ObjectID, sub models.Subscription) (*models.User, error)
}

type OrderResult struct {
	OrderID  string `json:"orderId"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	KeyID    string `json:"keyId"`
	Plan     string `json:"plan"`
}

type VerifiedPayment struct {
	ID     primitive.ObjectID   `json:"id"`
	Amount float64              `json:"amount"`
	Plan   string               `json:"plan"`
	Status models.PaymentStatus `json:"status"`
}

type AccountSubscription struct {
	SubscriptionPlan    string     `json:"subscriptionPlan"`
	Credits             int        `json:"credits"`
	SubscriptionEndDate *time.Time `json:"subscriptionEndDate,omitempty"`
}

type VerifyResult struct {
	Payment VerifiedPayment     `json:"payment"`
	User    AccountSubscription `json:"user"`
}

// Service turns a verified checkout into a credit grant, once per order.
type Service struct {
	payments  PaymentStore
	accounts  AccountStore
	gateway   Gateway
	keyID     string
	keySecret string
	logger    *zap.Logger
	now       func() time.Time
}

func NewService(payments PaymentStore, accounts AccountStore, gateway Gateway, keyID, keySecret string, logger *zap.Logger) *Service {
	return &Service{
		payments:  payments,
		accounts:  accounts,
		gateway:   gateway,
		keyID:     keyID,
		keySecret: keySecret,
		logger:    logger,
		now:       time.Now,
	}
}

var errNotConfigured = apperr.Unavailable("Payment service not configured. Set RAZORPAY_KEY_ID and RAZORPAY_KEY_SECRET.")

func (s *Service) configured() bool {
	return s.gateway != nil && s.keyID != "" && s.keySecret != ""
}

func (s *Service) Plans() map[string]models.Plan {
	return models.Plans
}

func (s *Service) CreateOrder(ctx context.Context, userID primitive.ObjectID, req models.CreateOrderRequest) (*OrderResult, error) {
	plan, ok := models.Plans[req.Plan]
	if !ok {
		return nil, apperr.ErrInvalidPlan.WithMessage("Invalid plan. Choose 'starter', 'growth', or 'pro'.")
	}
	currency := models.NormalizeCurrency(req.Currency)
	amount := int64(math.Round(plan.Price(currency) * 100))
	if amount <= 0 {
		return nil, apperr.ErrInvalidPlan
	}
	if !s.configured() {
		return nil, errNotConfigured
	}
	if _, err := s.accounts.FindByID(ctx, userID); err != nil {
		return nil, err
	}

	order, err := s.gateway.CreateOrder(ctx, OrderRequest{
		Amount:   amount,
		Currency: currency,
		Receipt:  receipt(userID.Hex(), s.now()),
		Notes: map[string]string{
			"userId":  userID.Hex(),
			"plan":    plan.Key,
			"credits": strconv.Itoa(plan.Credits),
		},
	})
	if err != nil {
		s.logger.Error("failed to create payment order", zap.String("user_id", userID.Hex()), zap.String("plan", plan.Key), zap.Error(err))
		return nil, apperr.Upstream("Failed to create payment order", err)
	}

	record := &models.Payment{
		UserID:          userID,
		RazorpayOrderID: order.ID,
		Amount:          float64(order.Amount) / 100,
		Currency:        order.Currency,
		Plan:            plan.Key,
		Credits:         plan.Credits,
		Status:          models.PaymentPending,
	}
	if err := s.payments.Create(ctx, record); err != nil {
		return nil, err
	}

	s.logger.Info("payment order created", zap.String("order_id", order.ID), zap.String("user_id", userID.Hex()), zap.String("plan", plan.Key))
	return &OrderResult{
		OrderID:  order.ID,
		Amount:   order.Amount,
		Currency: order.Currency,
		KeyID:    s.keyID,
		Plan:     plan.Key,
	}, nil
}

// Verify checks the checkout signature and credits the account. The order moves
// pending -> completed once; the grant is keyed by order id, so a retry after a
// failed grant finishes it instead of crediting twice.
func (s *Service) Verify(ctx context.Context, userID primitive.ObjectID, req models.VerifyPaymentRequest) (*VerifyResult, error) {
	if s.keySecret == "" {
		return nil, errNotConfigured
	}
	log := s.logger.With(zap.String("order_id", req.RazorpayOrderID), zap.String("user_id", userID.Hex()))

	if !VerifySignature(s.keySecret, req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature) {
		log.Warn("payment signature mismatch")
		metrics.PaymentVerifications.WithLabelValues("invalid_signature").Inc()
		if err := s.payments.MarkFailed(ctx, req.RazorpayOrderID, userID); err != nil {
			log.Error("failed to mark payment failed", zap.Error(err))
		}
		return nil, apperr.ErrPaymentVerificationFailed
	}

	existing, err := s.payments.FindByOrderID(ctx, req.RazorpayOrderID)
	if err != nil {
		return nil, err
	}
	if existing.UserID != userID {
		return nil, apperr.Forbidden("Payment belongs to another account")
	}

	payment := existing
	switch existing.Status {
	case models.PaymentCompleted:
		if existing.Credited {
			metrics.PaymentVerifications.WithLabelValues("duplicate").Inc()
			return nil, apperr.ErrPaymentAlreadyProcessed
		}
		log.Info("resuming credit grant for completed payment")
	case models.PaymentPending:
		payment, err = s.payments.MarkCompleted(ctx, req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature)
		if err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				// lost the pending -> completed race
				metrics.PaymentVerifications.WithLabelValues("duplicate").Inc()
				return nil, apperr.ErrPaymentAlreadyProcessed
			}
			return nil, err
		}
	default:
		return nil, apperr.ErrPaymentVerificationFailed.WithMessage("Payment order is no longer pending")
	}

	plan, ok := models.Plans[payment.Plan]
	if !ok {
		return nil, fmt.Errorf("payment %s references unknown plan %q", payment.RazorpayOrderID, payment.Plan)
	}
	user, err := s.accounts.ApplySubscription(ctx, userID, models.Subscription{
		OrderID: payment.RazorpayOrderID,
		Plan:    plan.Key,
		Credits: plan.Credits,
		EndDate: s.now().UTC().Add(time.Duration(plan.Duration) * 24 * time.Hour),
	})
	if err != nil {
		log.Error("payment completed but crediting failed", zap.Error(err))
		return nil, err
	}
	if err := s.payments.MarkCredited(ctx, payment.RazorpayOrderID); err != nil {
		log.Error("failed to mark payment credited", zap.Error(err))
	}

	metrics.PaymentVerifications.WithLabelValues("success").Inc()
	metrics.CreditsGranted.WithLabelValues(plan.Key).Add(float64(plan.Credits))
	log.Info("payment verified", zap.String("plan", plan.Key), zap.Int("credits", plan.Credits))

	return &VerifyResult{
		Payment: VerifiedPayment{ID: payment.ID, Amount: payment.Amount, Plan: payment.Plan, Status: models.PaymentCompleted},
		User: AccountSubscription{
			SubscriptionPlan:    user.SubscriptionPlan,
			Credits:             user.Credits,
			SubscriptionEndDate: user.SubscriptionEndDate,
		},
	}, nil
}

func (s *Service) History(ctx context.Context, userID primitive.ObjectID) ([]models.Payment, error) {
	return s.payments.ListByUser(ctx, userID, HistoryLimit)
}

// receipt is r_<last 8 of user id>_<last 10 digits of unix millis>, within the 40 char limit.
func receipt(userID string, now time.Time) string {
	ms := strconv.FormatInt(now.UnixMilli(), 10)
	return "r_" + tail(userID, 8) + "_" + tail(ms, 10)
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
