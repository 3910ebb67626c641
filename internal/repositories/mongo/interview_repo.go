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

type InterviewRepo struct{ col *mongo.Collection }

func NewInterviewRepo(ctx context.Context, c *Client) (*InterviewRepo, error) {
	db, err := c.DB()
	if err != nil {
		return nil, err
	}
	r := &InterviewRepo{col: db.Collection("interviews")}

	_, err = r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (r *InterviewRepo) Create(ctx context.Context, iv *models.Interview) error {
	now := time.Now().UTC()
	iv.ID = primitive.NewObjectID()
	iv.Version = 1
	iv.CreatedAt = now
	iv.UpdatedAt = now
	if iv.Questions == nil {
		iv.Questions = []models.QuestionRecord{}
	}
	_, err := r.col.InsertOne(ctx, iv)
	return err
}

func (r *InterviewRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Interview, error) {
	var iv models.Interview
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&iv); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.ErrNotFound.WithMessage("Interview not found")
		}
		return nil, err
	}
	return &iv, nil
}

// Save replaces the document only if nobody else saved since it was read.
func (r *InterviewRepo) Save(ctx context.Context, iv *models.Interview) error {
	expected := iv.Version
	next := *iv
	next.Version = expected + 1
	next.UpdatedAt = time.Now().UTC()

	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": iv.ID, "version": expected}, &next)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.ErrVersionConflict
	}
	iv.Version = next.Version
	iv.UpdatedAt = next.UpdatedAt
	return nil
}

func (r *InterviewRepo) ListByUser(ctx context.Context, userID primitive.ObjectID, limit, skip int64) ([]models.Interview, int64, error) {
	filter := bson.M{"userId": userID}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(limit).
		SetSkip(skip)

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	out := []models.Interview{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, err
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
