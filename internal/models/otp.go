package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OTPChallenge is an emailed verification code; Mongo expires it via a TTL index on ExpiresAt.
type OTPChallenge struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email     string             `bson:"email" json:"email"`
	Code      string             `bson:"otp" json:"-"`
	ExpiresAt time.Time          `bson:"expiresAt" json:"expiresAt"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

func (o *OTPChallenge) Expired(now time.Time) bool {
	return !now.Before(o.ExpiresAt)
}
