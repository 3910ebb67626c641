package payment

import (
	"context"
	"fmt"
	"strings"

	razorpay "github.com/razorpay/razorpay-go"
)

// OrderRequest describes an order; Amount is in the smallest currency unit.
type OrderRequest struct {
	Amount   int64
	Currency string
	Receipt  string
	Notes    map[string]string
}

type Order struct {
	ID       string
	Amount   int64
	Currency string
	Receipt  string
	Status   string
}

// Gateway creates orders with the payment provider.
type Gateway interface {
	CreateOrder(ctx context.Context, req OrderRequest) (*Order, error)
}

// RazorpayClient adapts the Razorpay SDK's orders resource.
type RazorpayClient struct {
	create func(data map[string]interface{}) (map[string]interface{}, error)
}

func NewRazorpayClient(keyID, keySecret string) *RazorpayClient {
	rp := razorpay.NewClient(strings.TrimSpace(keyID), strings.TrimSpace(keySecret))
	return &RazorpayClient{
		create: func(data map[string]interface{}) (map[string]interface{}, error) {
			return rp.Order.Create(data, nil)
		},
	}
}

func (c *RazorpayClient) CreateOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	// the SDK call is not cancellable; bail out before starting it
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	notes := make(map[string]interface{}, len(req.Notes))
	for k, v := range req.Notes {
		notes[k] = v
	}
	body, err := c.create(map[string]interface{}{
		"amount":   req.Amount,
		"currency": req.Currency,
		"receipt":  req.Receipt,
		"notes":    notes,
	})
	if err != nil {
		return nil, fmt.Errorf("razorpay: create order: %w", err)
	}
	return orderFrom(body)
}

func orderFrom(body map[string]interface{}) (*Order, error) {
	id, _ := body["id"].(string)
	if id == "" {
		return nil, fmt.Errorf("razorpay: order response without id")
	}
	o := &Order{ID: id}
	o.Currency, _ = body["currency"].(string)
	o.Receipt, _ = body["receipt"].(string)
	o.Status, _ = body["status"].(string)
	switch amount := body["amount"].(type) {
	case float64:
		o.Amount = int64(amount)
	case int64:
		o.Amount = amount
	case int:
		o.Amount = int64(amount)
	}
	return o, nil
}
