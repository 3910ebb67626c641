package account

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"intervuai/backend/internal/apperr"
	"intervuai/backend/internal/models"
)

func TestTokenRoundTrip(t *testing.T) {
	m := NewTokenManager("secret", 7*24*time.Hour)
	u := &models.User{ID: primitive.NewObjectID(), Email: "a@b.com", Name: "Ada", SubscriptionPlan: "growth"}

	tok, err := m.Issue(u)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	claims, err := m.Parse(tok)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if claims.UserID != u.ID.Hex() || claims.Email != "a@b.com" || claims.Name != "Ada" || claims.SubscriptionPlan != "growth" {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if got := claims.ExpiresAt.Sub(claims.IssuedAt.Time); got != 7*24*time.Hour {
		t.Fatalf("unexpected lifetime %v", got)
	}
}

func TestTokenExpired(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	tok, err := m.Issue(&models.User{ID: primitive.NewObjectID()})
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	m.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := m.Parse(tok); !errors.Is(err, apperr.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestTokenRejectsWrongSecretAndAlgorithm(t *testing.T) {
	issuer := NewTokenManager("one", time.Hour)
	tok, _ := issuer.Issue(&models.User{ID: primitive.NewObjectID()})
	if _, err := NewTokenManager("two", time.Hour).Parse(tok); !errors.Is(err, apperr.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for foreign secret, got %v", err)
	}

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: "x"})
	unsigned, _ := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if _, err := issuer.Parse(unsigned); !errors.Is(err, apperr.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for alg none, got %v", err)
	}

	if _, err := issuer.Parse("garbage"); !errors.Is(err, apperr.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for garbage, got %v", err)
	}
}
