package mongo

import (
	"context"
	"errors"
	"time"

	"intervuai/backend/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type OTPRepo struct{ col *mongo.Collection }

// NewOTPRepo ensures a TTL index so Mongo drops challenges once expiresAt passes.
func NewOTPRepo(ctx context.Context, c *Client) (*OTPRepo, error) {
	db, err := c.DB()
	if err != nil {
		return nil, err
	}
	r := &OTPRepo{col: db.Collection("otpverifications")}

	_, err = r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "expiresAt", Value: 1}}, Options: options.Index().SetExpireAfterSeconds(0)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Put replaces any outstanding challenge for the same email.
func (r *OTPRepo) Put(ctx context.Context, o *models.OTPChallenge) error {
	o.ID = primitive.NilObjectID
	o.CreatedAt = time.Now().UTC()
	_, err := r.col.ReplaceOne(ctx, bson.M{"email": o.Email}, o, options.Replace().SetUpsert(true))
	return err
}

// Consume deletes and reports a matching unexpired challenge in one step, so a code works once.
func (r *OTPRepo) Consume(ctx context.Context, email, code string, now time.Time) (bool, error) {
	err := r.col.FindOneAndDelete(ctx, bson.M{
		"email":     email,
		"otp":       code,
		"expiresAt": bson.M{"$gt": now},
	}).Err()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *OTPRepo) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.col.DeleteMany(ctx, bson.M{"expiresAt": bson.M{"$lte": before}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
