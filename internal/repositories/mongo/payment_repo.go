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

type PaymentRepo struct{ col *mongo.Collection }

func NewPaymentRepo(ctx context.Context, c *Client) (*PaymentRepo, error) {
	db, err := c.DB()
	if err != nil {
		return nil, err
	}
	r := &PaymentRepo{col: db.Collection("payments")}

	_, err = r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "razorpayOrderId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (r *PaymentRepo) Create(ctx context.Context, p *models.Payment) error {
	now := time.Now().UTC()
	p.ID = primitive.NewObjectID()
	p.CreatedAt = now
	p.UpdatedAt = now
	_, err := r.col.InsertOne(ctx, p)
	return err
}

func (r *PaymentRepo) FindByOrderID(ctx context.Context, orderID string) (*models.Payment, error) {
	var p models.Payment
	if err := r.col.FindOne(ctx, bson.M{"razorpayOrderId": orderID}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.ErrNotFound.WithMessage("Payment record not found")
		}
		return nil, err
	}
	return &p, nil
}

// MarkCompleted moves a pending order to completed. Only one caller can win the
// transition; everyone else gets ErrNotFound.
func (r *PaymentRepo) MarkCompleted(ctx context.Context, orderID, paymentID, signature string) (*models.Payment, error) {
	var updated models.Payment
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"razorpayOrderId": orderID, "status": models.PaymentPending},
		bson.M{"$set": bson.M{
			"razorpayPaymentId": paymentID,
			"razorpaySignature": signature,
			"status":            models.PaymentCompleted,
			"updatedAt":         time.Now().UTC(),
		}},
		opts,
	).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.ErrNotFound.WithMessage("Pending payment not found")
		}
		return nil, err
	}
	return &updated, nil
}

// MarkFailed only touches the owner's pending orders so a completed payment is never downgraded.
func (r *PaymentRepo) MarkFailed(ctx context.Context, orderID string, userID primitive.ObjectID) error {
	_, err := r.col.UpdateOne(ctx,
		bson.M{"razorpayOrderId": orderID, "userId": userID, "status": models.PaymentPending},
		bson.M{"$set": bson.M{"status": models.PaymentFailed, "updatedAt": time.Now().UTC()}},
	)
	return err
}

// MarkCredited records that the order's credits reached the account.
func (r *PaymentRepo) MarkCredited(ctx context.Context, orderID string) error {
	_, err := r.col.UpdateOne(ctx,
		bson.M{"razorpayOrderId": orderID, "status": models.PaymentCompleted},
		bson.M{"$set": bson.M{"credited": true, "updatedAt": time.Now().UTC()}},
	)
	return err
}

func (r *PaymentRepo) ListByUser(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.Payment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetLimit(limit)
	cur, err := r.col.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Payment{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ExpirePending fails orders that stayed pending since before cutoff.
func (r *PaymentRepo) ExpirePending(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.col.UpdateMany(ctx,
		bson.M{"status": models.PaymentPending, "createdAt": bson.M{"$lt": cutoff}},
		bson.M{"$set": bson.M{"status": models.PaymentFailed, "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}
