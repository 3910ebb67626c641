package otp

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"intervuai/backend/internal/apperr"
	"intervuai/backend/internal/models"
)

type memStore struct {
	items map[string]models.OTPChallenge
}

func newMemStore() *memStore { return &memStore{items: map[string]models.OTPChallenge{}} }

func (m *memStore) Put(_ context.Context, o *models.OTPChallenge) error {
	m.items[o.Email] = *o
	return nil
}

func (m *memStore) Consume(_ context.Context, addr, code string, now time.Time) (bool, error) {
	c, ok := m.items[addr]
	if !ok || c.Code != code || c.Expired(now) {
		return false, nil
	}
	delete(m.items, addr)
	return true, nil
}

type fakeSender struct {
	sent    []string
	sendErr error
}

func (f *fakeSender) Send(_ context.Context, to, subject, html string) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, to+"|"+subject+"|"+html)
	return nil
}

func newTestService(t *testing.T, withRedis bool) (*Service, *memStore, *fakeSender, *miniredis.Miniredis) {
	store := newMemStore()
	sender := &fakeSender{}
	var rdb *redis.Client
	var mr *miniredis.Miniredis
	if withRedis {
		var err error
		mr, err = miniredis.Run()
		if err != nil {
			t.Fatalf("Failed to start miniredis: %v", err)
		}
		rdb = redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() {
			rdb.Close()
			mr.Close()
		})
	}
	svc := NewService(store, sender, rdb, zap.NewNop())
	svc.code = func() (string, error) { return "424242", nil }
	return svc, store, sender, mr
}

func TestIssueAndVerify(t *testing.T) {
	svc, store, sender, _ := newTestService(t, false)
	ctx := context.Background()

	if err := svc.Issue(ctx, "a@b.com", "Ada"); err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	if len(sender.sent) != 1 || !strings.Contains(sender.sent[0], "424242") {
		t.Fatalf("expected one email containing the code, got %v", sender.sent)
	}
	if got := store.items["a@b.com"].ExpiresAt.Sub(time.Now().UTC()); got > CodeTTL || got < CodeTTL-time.Minute {
		t.Fatalf("unexpected expiry window %v", got)
	}

	if err := svc.Verify(ctx, "a@b.com", "000000"); !errors.Is(err, apperr.ErrInvalidOTP) {
		t.Fatalf("expected ErrInvalidOTP for wrong code, got %v", err)
	}
	if err := svc.Verify(ctx, "a@b.com", "424242"); err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if err := svc.Verify(ctx, "a@b.com", "424242"); !errors.Is(err, apperr.ErrInvalidOTP) {
		t.Fatalf("code must only work once, got %v", err)
	}
}

func TestVerifyExpired(t *testing.T) {
	svc, _, _, _ := newTestService(t, false)
	ctx := context.Background()
	if err := svc.Issue(ctx, "a@b.com", ""); err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	svc.now = func() time.Time { return time.Now().Add(CodeTTL + time.Second) }
	if err := svc.Verify(ctx, "a@b.com", "424242"); !errors.Is(err, apperr.ErrInvalidOTP) {
		t.Fatalf("expected expired code to be rejected, got %v", err)
	}
}

func TestIssueThrottled(t *testing.T) {
	svc, _, sender, mr := newTestService(t, true)
	ctx := context.Background()

	if err := svc.Issue(ctx, "a@b.com", "Ada"); err != nil {
		t.Fatalf("first Issue returned error: %v", err)
	}
	if err := svc.Issue(ctx, "a@b.com", "Ada"); !errors.Is(err, apperr.ErrOTPThrottled) {
		t.Fatalf("expected ErrOTPThrottled, got %v", err)
	}
	if err := svc.Issue(ctx, "c@d.com", "Cy"); err != nil {
		t.Fatalf("other address should not be throttled: %v", err)
	}

	mr.FastForward(ResendInterval + time.Second)
	if err := svc.Issue(ctx, "a@b.com", "Ada"); err != nil {
		t.Fatalf("Issue after interval returned error: %v", err)
	}
	if len(sender.sent) != 3 {
		t.Fatalf("expected 3 emails, got %d", len(sender.sent))
	}
}

func TestIssueThrottledWithoutRedis(t *testing.T) {
	svc, _, sender, _ := newTestService(t, false)
	ctx := context.Background()

	if err := svc.Issue(ctx, "a@b.com", "Ada"); err != nil {
		t.Fatalf("first Issue returned error: %v", err)
	}
	if err := svc.Issue(ctx, "a@b.com", "Ada"); !errors.Is(err, apperr.ErrOTPThrottled) {
		t.Fatalf("expected ErrOTPThrottled, got %v", err)
	}

	later := time.Now().Add(ResendInterval + time.Second)
	svc.now = func() time.Time { return later }
	if err := svc.Issue(ctx, "a@b.com", "Ada"); err != nil {
		t.Fatalf("Issue after interval returned error: %v", err)
	}
	if len(sender.sent) != 2 {
		t.Fatalf("expected 2 emails, got %d", len(sender.sent))
	}
}

func TestIssueSendFailure(t *testing.T) {
	for _, withRedis := range []bool{false, true} {
		svc, _, sender, _ := newTestService(t, withRedis)
		sender.sendErr = errors.New("smtp down")
		err := svc.Issue(context.Background(), "a@b.com", "Ada")
		if apperr.StatusOf(err) != 500 {
			t.Fatalf("redis=%v: expected 500 upstream error, got %v", withRedis, err)
		}

		sender.sendErr = nil
		if err := svc.Issue(context.Background(), "a@b.com", "Ada"); err != nil {
			t.Fatalf("redis=%v: a failed send must not start the resend interval: %v", withRedis, err)
		}
	}
}

func TestGenerateCode(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := generateCode()
		if err != nil {
			t.Fatalf("generateCode returned error: %v", err)
		}
		if len(code) != 6 || code[0] == '0' {
			t.Fatalf("unexpected code %q", code)
		}
	}
}
