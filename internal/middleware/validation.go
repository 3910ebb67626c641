package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"

	"intervuai/backend/internal/apperr"
	"intervuai/backend/internal/utils"
)

type contextKey string

const (
	validatedRequestKey contextKey = "validated_request"
	claimsKey           contextKey = "claims"
)

// request models implement this interface
type Validator interface {
	Validate() error
}

// ValidateRequest decodes the JSON body into T, runs its Validate method and
// stores the result in the request context for the handler.
func ValidateRequest[T Validator]() func(http.Handler) http.Handler {
	return validate[T](false)
}

// ValidateOptionalRequest is ValidateRequest that also accepts an empty body.
func ValidateOptionalRequest[T Validator]() func(http.Handler) http.Handler {
	return validate[T](true)
}

func validate[T Validator](allowEmpty bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req T
			reqType := reflect.TypeOf(req)
			if reqType.Kind() == reflect.Ptr {
				req = reflect.New(reqType.Elem()).Interface().(T)
			} else {
				req = reflect.New(reqType).Interface().(T)
			}

			if err := json.NewDecoder(r.Body).Decode(req); err != nil {
				if !(allowEmpty && errors.Is(err, io.EOF)) {
					utils.Error(w, apperr.New(http.StatusBadRequest, "INVALID_JSON", "Invalid JSON in request body"), false)
					return
				}
			}

			if err := req.Validate(); err != nil {
				var appErr *apperr.Error
				if !errors.As(err, &appErr) {
					err = apperr.Validation(err.Error())
				}
				utils.Error(w, err, false)
				return
			}

			ctx := context.WithValue(r.Context(), validatedRequestKey, req)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetValidatedRequest retrieves the validated request from context
func GetValidatedRequest[T any](r *http.Request) T {
	return r.Context().Value(validatedRequestKey).(T)
}
