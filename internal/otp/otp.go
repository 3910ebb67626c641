package otp

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"intervuai/backend/internal/apperr"
	"intervuai/backend/internal/email"
	"intervuai/backend/internal/models"
)

const (
	CodeTTL        = 10 * time.Minute
	ResendInterval = 60 * time.Second
)

type Store interface {
	Put(ctx context.Context, o *models.OTPChallenge) error
	Consume(ctx context.Context, email, code string, now time.Time) (bool, error)
}

// throttle allows one send per address per ResendInterval.
type throttle interface {
	claim(ctx context.Context, key string) (bool, error)
	release(key string)
}

type redisThrottle struct{ rdb *redis.Client }

func (t redisThrottle) claim(ctx context.Context, key string) (bool, error) {
	return t.rdb.SetNX(ctx, "intervuai:otp:throttle:"+key, 1, ResendInterval).Result()
}

func (t redisThrottle) release(key string) {
	t.rdb.Del(context.Background(), "intervuai:otp:throttle:"+key)
}

// localThrottle is the single-replica fallback when Redis is not configured.
type localThrottle struct {
	mu    sync.Mutex
	until map[string]time.Time
	now   func() time.Time
}

func (t *localThrottle) claim(_ context.Context, key string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now()
	for k, exp := range t.until {
		if !now.Before(exp) {
			delete(t.until, k)
		}
	}
	if _, held := t.until[key]; held {
		return false, nil
	}
	t.until[key] = now.Add(ResendInterval)
	return true, nil
}

func (t *localThrottle) release(key string) {
	t.mu.Lock()
	delete(t.until, key)
	t.mu.Unlock()
}

// Service issues and checks emailed verification codes.
type Service struct {
	store    Store
	sender   email.Sender
	throttle throttle
	logger   *zap.Logger
	now      func() time.Time
	code     func() (string, error)
}

// NewService throttles resends through rdb when given, in process otherwise.
func NewService(store Store, sender email.Sender, rdb *redis.Client, logger *zap.Logger) *Service {
	s := &Service{
		store:  store,
		sender: sender,
		logger: logger,
		now:    time.Now,
		code:   generateCode,
	}
	if rdb != nil {
		s.throttle = redisThrottle{rdb: rdb}
	} else {
		s.throttle = &localThrottle{until: map[string]time.Time{}, now: func() time.Time { return s.now() }}
	}
	return s
}

// Issue stores a fresh code for addr (replacing any older one) and emails it.
// A failed attempt does not count against the resend interval.
func (s *Service) Issue(ctx context.Context, addr, name string) error {
	ok, err := s.throttle.claim(ctx, addr)
	if err != nil {
		s.logger.Warn("otp throttle unavailable", zap.Error(err))
	} else if !ok {
		return apperr.ErrOTPThrottled
	}

	if err := s.issue(ctx, addr, name); err != nil {
		if ok {
			s.throttle.release(addr)
		}
		return err
	}
	s.logger.Info("otp sent", zap.String("email", addr))
	return nil
}

func (s *Service) issue(ctx context.Context, addr, name string) error {
	code, err := s.code()
	if err != nil {
		return fmt.Errorf("generate otp: %w", err)
	}
	challenge := &models.OTPChallenge{
		Email:     addr,
		Code:      code,
		ExpiresAt: s.now().UTC().Add(CodeTTL),
	}
	if err := s.store.Put(ctx, challenge); err != nil {
		return err
	}

	body, err := email.RenderOTP(name, code, CodeTTL)
	if err != nil {
		return err
	}
	if err := s.sender.Send(ctx, addr, email.OTPSubject, body); err != nil {
		s.logger.Error("failed to send otp email", zap.String("email", addr), zap.Error(err))
		return apperr.Upstream("Failed to send verification email. Please try again.", err)
	}
	return nil
}

// Verify consumes the code; a code can be used once.
func (s *Service) Verify(ctx context.Context, addr, code string) error {
	ok, err := s.store.Consume(ctx, addr, code, s.now().UTC())
	if err != nil {
		return err
	}
	if !ok {
		return apperr.ErrInvalidOTP
	}
	return nil
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
