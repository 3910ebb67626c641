package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"intervuai/backend/internal/apperr"

	"go.uber.org/zap"
)

// Envelope is the body shape of every API response.
type Envelope struct {
	Success    bool        `json:"success"`
	StatusCode int         `json:"statusCode"`
	Message    string      `json:"message"`
	Data       interface{} `json:"data,omitempty"`
	Code       string      `json:"code,omitempty"`
	Error      string      `json:"error,omitempty"`
	Timestamp  time.Time   `json:"timestamp"`
}

func JSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// Success writes a success envelope.
func Success(w http.ResponseWriter, statusCode int, message string, data interface{}) {
	JSON(w, statusCode, Envelope{
		Success:    true,
		StatusCode: statusCode,
		Message:    message,
		Data:       data,
		Timestamp:  time.Now().UTC(),
	})
}

// Error writes an error envelope. Unknown errors become a generic 500; the
// underlying cause is only exposed when debug is set.
func Error(w http.ResponseWriter, err error, debug bool) {
	env := Envelope{
		StatusCode: http.StatusInternalServerError,
		Message:    "Internal server error",
		Code:       "INTERNAL_ERROR",
		Timestamp:  time.Now().UTC(),
	}

	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		env.StatusCode = appErr.Status
		env.Message = appErr.Message
		env.Code = appErr.Code
		if debug && appErr.Err != nil {
			env.Error = appErr.Err.Error()
		}
	} else {
		GetLogger().Error("unhandled error", zap.Error(err))
		if debug {
			env.Error = err.Error()
		}
	}

	JSON(w, env.StatusCode, env)
}
