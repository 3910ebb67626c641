package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"intervuai/backend/internal/apperr"

	"go.uber.org/zap"
)

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	return body
}

func TestSuccessEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	Success(rec, http.StatusCreated, "created", map[string]string{"id": "1"})

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected application/json, got %s", ct)
	}
	body := decodeEnvelope(t, rec)
	if body["success"] != true || body["statusCode"].(float64) != 201 || body["message"] != "created" {
		t.Fatalf("unexpected envelope: %+v", body)
	}
	if body["data"].(map[string]any)["id"] != "1" {
		t.Fatalf("expected data payload, got %+v", body["data"])
	}
	if _, ok := body["timestamp"]; !ok {
		t.Fatal("expected timestamp")
	}
}

func TestErrorEnvelopeForDomainError(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, apperr.ErrInsufficientCredits.Wrap(errors.New("have 1 need 2")), false)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	body := decodeEnvelope(t, rec)
	if body["success"] != false || body["code"] != "INSUFFICIENT_CREDITS" {
		t.Fatalf("unexpected envelope: %+v", body)
	}
	if _, ok := body["error"]; ok {
		t.Fatal("cause must not leak outside debug mode")
	}
}

func TestErrorEnvelopeHidesUnknownErrors(t *testing.T) {
	SetLogger(zap.NewNop())

	rec := httptest.NewRecorder()
	Error(rec, errors.New("mongo: connection refused"), false)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	body := decodeEnvelope(t, rec)
	if body["message"] != "Internal server error" {
		t.Fatalf("expected generic message, got %v", body["message"])
	}

	rec = httptest.NewRecorder()
	Error(rec, errors.New("mongo: connection refused"), true)
	body = decodeEnvelope(t, rec)
	if body["error"] != "mongo: connection refused" {
		t.Fatalf("expected cause in debug mode, got %v", body["error"])
	}
}
