package transcription

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	api "github.com/deepgram/deepgram-go-sdk/pkg/api/listen/v1/rest"
	interfaces "github.com/deepgram/deepgram-go-sdk/pkg/client/interfaces"
	client "github.com/deepgram/deepgram-go-sdk/pkg/client/listen"

	"intervuai/backend/internal/metrics"
)

// Result is a finished transcription of one recording.
type Result struct {
	Transcript string  `json:"transcript"`
	Confidence float64 `json:"confidence"`
	Words      int     `json:"words"`
}

// Transcriber turns recorded audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, mimeType string) (*Result, error)
}

type DeepgramConfig struct {
	APIKey   string
	Model    string
	Language string
	// Host overrides api.deepgram.com, e.g. for a self-hosted deployment.
	Host     string
}

var errNoTranscript = errors.New("deepgram: no transcription received")

var initSDK sync.Once

// DeepgramClient sends recordings to the prerecorded listen API through the Deepgram SDK.
type DeepgramClient struct {
	config DeepgramConfig
	listen func(ctx context.Context, audio io.Reader, opts *interfaces.PreRecordedTranscriptionOptions) (*Result, error)
}

func NewDeepgramClient(config DeepgramConfig) *DeepgramClient {
	if config.Model == "" {
		config.Model = "nova-2"
	}
	if config.Language == "" {
		config.Language = "en-US"
	}
	c := &DeepgramClient{config: config}
	if config.APIKey == "" {
		return c
	}

	initSDK.Do(client.InitWithDefault)
	dg := api.New(client.NewREST(config.APIKey, &interfaces.ClientOptions{Host: config.Host}))
	c.listen = func(ctx context.Context, audio io.Reader, opts *interfaces.PreRecordedTranscriptionOptions) (*Result, error) {
		res, err := dg.FromStream(ctx, audio, opts)
		if err != nil {
			return nil, err
		}
		if res == nil || len(res.Results.Channels) == 0 || len(res.Results.Channels[0].Alternatives) == 0 {
			return nil, errNoTranscript
		}
		alt := res.Results.Channels[0].Alternatives[0]
		return &Result{Transcript: alt.Transcript, Confidence: alt.Confidence, Words: len(alt.Words)}, nil
	}
	return c
}

// Transcribe ignores mimeType; the listen API detects the container itself.
func (c *DeepgramClient) Transcribe(ctx context.Context, audio []byte, _ string) (*Result, error) {
	if c.listen == nil {
		return nil, errors.New("deepgram: API key not configured")
	}

	start := time.Now()
	res, err := c.listen(ctx, bytes.NewReader(audio), &interfaces.PreRecordedTranscriptionOptions{
		Model:       c.config.Model,
		Language:    c.config.Language,
		SmartFormat: true,
		Punctuate:   true,
	})
	metrics.AudioSeconds.Observe(time.Since(start).Seconds())
	if err != nil {
		if errors.Is(err, errNoTranscript) {
			return nil, err
		}
		return nil, fmt.Errorf("deepgram: transcription failed: %w", err)
	}
	res.Transcript = strings.TrimSpace(res.Transcript)
	return res, nil
}
