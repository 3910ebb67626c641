package account

import (
	"context"

	"google.golang.org/api/idtoken"
)

// GoogleProfile is what we keep from a verified Google ID token.
type GoogleProfile struct {
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
	Picture       string
}

type GoogleVerifier interface {
	Verify(ctx context.Context, credential string) (*GoogleProfile, error)
}

// IDTokenVerifier checks Google-signed ID tokens against our OAuth client id.
type IDTokenVerifier struct {
	clientID string
	validate func(ctx context.Context, token, audience string) (*idtoken.Payload, error)
}

func NewIDTokenVerifier(clientID string) *IDTokenVerifier {
	return &IDTokenVerifier{clientID: clientID, validate: idtoken.Validate}
}

func (v *IDTokenVerifier) Verify(ctx context.Context, credential string) (*GoogleProfile, error) {
	payload, err := v.validate(ctx, credential, v.clientID)
	if err != nil {
		return nil, err
	}
	return &GoogleProfile{
		Subject:       payload.Subject,
		Email:         stringClaim(payload.Claims, "email"),
		EmailVerified: payload.Claims["email_verified"] == true,
		Name:          stringClaim(payload.Claims, "name"),
		Picture:       stringClaim(payload.Claims, "picture"),
	}, nil
}

func stringClaim(claims map[string]interface{}, key string) string {
	v, _ := claims[key].(string)
	return v
}
