package transcription

import (
	"strings"

	"intervuai/backend/internal/apperr"
)

const (
	MinAudioBytes = 200              // roughly 100ms at 16kHz
	MaxAudioBytes = 10 * 1024 * 1024 // 10MB
)

// ValidateAudio enforces the accepted size window for an answer recording.
func ValidateAudio(data []byte) error {
	switch {
	case len(data) == 0:
		return apperr.ErrInvalidAudio.WithMessage("Audio buffer is empty")
	case len(data) < MinAudioBytes:
		return apperr.ErrInvalidAudio.WithMessage("Audio is too short (minimum 100ms)")
	case len(data) > MaxAudioBytes:
		return apperr.ErrInvalidAudio.WithMessage("Audio is too large (maximum 10MB)")
	}
	return nil
}

// WordCount counts whitespace separated words.
func WordCount(transcript string) int {
	return len(strings.Fields(transcript))
}
