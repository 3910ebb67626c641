package mongo

import (
	"context"
	"errors"
	"time"

	"intervuai/backend/internal/apperr"
	"intervuai/backend/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type UserRepo struct{ col *mongo.Collection }

// NewUserRepo ensures unique indexes on email and (sparse) googleId.
func NewUserRepo(ctx context.Context, c *Client) (*UserRepo, error) {
	db, err := c.DB()
	if err != nil {
		return nil, err
	}
	r := &UserRepo{col: db.Collection("users")}

	_, err = r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "googleId", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (r *UserRepo) Create(ctx context.Context, u *models.User) error {
	now := time.Now().UTC()
	u.ID = primitive.NewObjectID()
	u.CreatedAt = now
	u.UpdatedAt = now
	if _, err := r.col.InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperr.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (r *UserRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepo) FindByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"googleId": googleID})
}

func (r *UserRepo) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var u models.User
	if err := r.col.FindOne(ctx, filter).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.ErrNotFound.WithMessage("User not found")
		}
		return nil, err
	}
	return &u, nil
}

// LinkGoogleAccount attaches a Google subject id. picture is only written when non-empty.
func (r *UserRepo) LinkGoogleAccount(ctx context.Context, id primitive.ObjectID, googleID, picture string) (*models.User, error) {
	set := bson.M{"googleId": googleID, "isVerified": true, "updatedAt": time.Now().UTC()}
	if picture != "" {
		set["profilePicture"] = picture
	}
	return r.findOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set})
}

func (r *UserRepo) TouchLogin(ctx context.Context, id primitive.ObjectID) error {
	now := time.Now().UTC()
	_, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"lastLogin": now, "updatedAt": now}})
	return err
}

// DebitCredits atomically takes cost credits and counts the interview. It reports false
// when the balance is too low, leaving the account untouched.
func (r *UserRepo) DebitCredits(ctx context.Context, id primitive.ObjectID, cost int) (bool, error) {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id, "credits": bson.M{"$gte": cost}},
		bson.M{
			"$inc": bson.M{"credits": -cost, "totalInterviews": 1},
			"$set": bson.M{"updatedAt": time.Now().UTC()},
		},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount == 1, nil
}

// ApplySubscription grants credits and activates the plan. The grant is keyed by
// sub.OrderID, so applying the same order twice leaves the account as it is.
func (r *UserRepo) ApplySubscription(ctx context.Context, id primitive.ObjectID, sub models.Subscription) (*models.User, error) {
	u, err := r.findOneAndUpdate(ctx,
		bson.M{"_id": id, "creditedOrders": bson.M{"$ne": sub.OrderID}},
		bson.M{
			"$inc":      bson.M{"credits": sub.Credits},
			"$addToSet": bson.M{"creditedOrders": sub.OrderID},
			"$set": bson.M{
				"subscriptionPlan":    sub.Plan,
				"subscriptionActive":  true,
				"subscriptionEndDate": sub.EndDate,
				"updatedAt":           time.Now().UTC(),
			},
		})
	if errors.Is(err, apperr.ErrNotFound) {
		// already granted, or no such user
		return r.FindByID(ctx, id)
	}
	return u, err
}

func (r *UserRepo) findOneAndUpdate(ctx context.Context, filter, update bson.M) (*models.User, error) {
	var updated models.User
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.ErrNotFound.WithMessage("User not found")
		}
		return nil, err
	}
	return &updated, nil
}
