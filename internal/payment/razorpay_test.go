package payment

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestRazorpayCreateOrder(t *testing.T) {
	var sent map[string]interface{}
	client := &RazorpayClient{create: func(data map[string]interface{}) (map[string]interface{}, error) {
		sent = data
		// the SDK decodes JSON numbers as float64
		return map[string]interface{}{"id": "order_123", "amount": float64(49900), "currency": "INR", "receipt": "r_1", "status": "created"}, nil
	}}

	order, err := client.CreateOrder(context.Background(), OrderRequest{
		Amount: 49900, Currency: "INR", Receipt: "r_1", Notes: map[string]string{"plan": "starter"},
	})
	if err != nil {
		t.Fatalf("CreateOrder returned error: %v", err)
	}
	if order.ID != "order_123" || order.Amount != 49900 || order.Status != "created" || order.Currency != "INR" {
		t.Fatalf("unexpected order %+v", order)
	}
	notes, _ := sent["notes"].(map[string]interface{})
	if sent["amount"] != int64(49900) || sent["currency"] != "INR" || sent["receipt"] != "r_1" || notes["plan"] != "starter" {
		t.Fatalf("unexpected order request %+v", sent)
	}
}

func TestRazorpayCreateOrderError(t *testing.T) {
	client := &RazorpayClient{create: func(map[string]interface{}) (map[string]interface{}, error) {
		return nil, errors.New("Authentication failed")
	}}
	_, err := client.CreateOrder(context.Background(), OrderRequest{Amount: 1, Currency: "INR"})
	if err == nil || !strings.Contains(err.Error(), "Authentication failed") {
		t.Fatalf("expected provider description in error, got %v", err)
	}

	client = &RazorpayClient{create: func(map[string]interface{}) (map[string]interface{}, error) {
		return map[string]interface{}{"error": map[string]interface{}{}}, nil
	}}
	if _, err := client.CreateOrder(context.Background(), OrderRequest{Amount: 1, Currency: "INR"}); err == nil {
		t.Fatal("expected error for a response without an order id")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	client = &RazorpayClient{create: func(map[string]interface{}) (map[string]interface{}, error) {
		panic("unexpected create call")
	}}
	if _, err := client.CreateOrder(ctx, OrderRequest{Amount: 1}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestVerifySignature(t *testing.T) {
	sig := Sign("secret", "order_1", "pay_1")
	if len(sig) != 64 {
		t.Fatalf("expected hex sha256, got %q", sig)
	}
	if !VerifySignature("secret", "order_1", "pay_1", sig) {
		t.Fatal("expected matching signature to verify")
	}
	for _, bad := range []string{"", sig[:63], strings.ToUpper(sig), Sign("other", "order_1", "pay_1"), Sign("secret", "order_1|", "pay_1")} {
		if VerifySignature("secret", "order_1", "pay_1", bad) {
			t.Fatalf("signature %q should not verify", bad)
		}
	}
}
