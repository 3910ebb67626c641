package livekit

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/livekit/protocol/auth"
)

const DefaultTokenTTL = 6 * time.Hour

var ErrNotConfigured = errors.New("livekit: credentials not configured")

// RoomMetadata is handed to the voice agent through participant metadata.
type RoomMetadata struct {
	InterviewID     string `json:"interviewId"`
	InterviewType   string `json:"interviewType"`
	DifficultyLevel string `json:"difficultyLevel"`
	MaxQuestions    int    `json:"maxQuestions"`
	UserName        string `json:"userName"`
	UserID          string `json:"userId"`
}

type Grant struct {
	Identity string
	Name     string
	Room     string
	Metadata RoomMetadata
}

type Issuer struct {
	url    string
	key    string
	secret string
	ttl    time.Duration
}

func NewIssuer(url, apiKey, apiSecret string) *Issuer {
	return &Issuer{url: url, key: apiKey, secret: apiSecret, ttl: DefaultTokenTTL}
}

func (i *Issuer) Configured() bool {
	return i != nil && i.url != "" && i.key != "" && i.secret != ""
}

func (i *Issuer) URL() string { return i.url }

func RoomName(interviewID string) string { return "interview-" + interviewID }

func Identity(userID string) string { return "user-" + userID }

// Issue signs a participant token allowing the holder to join, publish and subscribe in g.Room.
func (i *Issuer) Issue(g Grant) (string, error) {
	if !i.Configured() {
		return "", ErrNotConfigured
	}
	meta, err := json.Marshal(g.Metadata)
	if err != nil {
		return "", fmt.Errorf("livekit: encode metadata: %w", err)
	}

	grant := &auth.VideoGrant{
		Room:       g.Room,
		RoomJoin:   true,
		RoomCreate: true,
	}
	grant.SetCanPublish(true)
	grant.SetCanSubscribe(true)
	grant.SetCanPublishData(true)

	at := auth.NewAccessToken(i.key, i.secret).
		SetVideoGrant(grant).
		SetIdentity(g.Identity).
		SetName(g.Name).
		SetMetadata(string(meta)).
		SetValidFor(i.ttl)

	signed, err := at.ToJWT()
	if err != nil {
		return "", fmt.Errorf("livekit: sign token: %w", err)
	}
	return signed, nil
}
