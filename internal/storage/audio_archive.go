package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// s3Client is the slice of the S3 API the archive needs.
type s3Client interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3Config struct {
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
	Endpoint  string
}

// AudioArchive keeps candidate answer recordings in an S3 compatible bucket.
type AudioArchive struct {
	client s3Client
	bucket string
	newID  func() string
}

func NewAudioArchive(cfg S3Config) *AudioArchive {
	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return &AudioArchive{client: s3.New(opts), bucket: cfg.Bucket, newID: uuid.NewString}
}

// ObjectKey is interviews/<id>/q<NN>-<uuid>.<ext>.
func (a *AudioArchive) ObjectKey(interviewID string, questionNumber int, mimeType string) string {
	name := fmt.Sprintf("q%02d-%s.%s", questionNumber, a.newID(), extensionFor(mimeType))
	return path.Join("interviews", interviewID, name)
}

// Put uploads one recording and returns its object key.
func (a *AudioArchive) Put(ctx context.Context, interviewID string, questionNumber int, mimeType string, audio []byte) (string, error) {
	key := a.ObjectKey(interviewID, questionNumber, mimeType)
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(audio),
		ContentType:   aws.String(mimeType),
		ContentLength: aws.Int64(int64(len(audio))),
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	return key, nil
}

func extensionFor(mimeType string) string {
	base, _, _ := strings.Cut(mimeType, ";")
	switch strings.TrimSpace(base) {
	case "audio/webm":
		return "webm"
	case "audio/ogg":
		return "ogg"
	case "audio/mpeg", "audio/mp3":
		return "mp3"
	case "audio/mp4", "audio/m4a", "audio/x-m4a":
		return "m4a"
	case "audio/wav", "audio/x-wav", "audio/wave":
		return "wav"
	}
	return "bin"
}
