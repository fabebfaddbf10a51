package testutil

import (
	"context"
	"encoding/json"
	"time"

	stripeint "github.com/bldrfitness/bldr/internal/integration/stripe"
	"github.com/stretchr/testify/mock"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

// TestWebhookSecret signs payloads produced by SignedWebhookPayload.
const TestWebhookSecret = "whsec_test_secret"

// MockStripeClient is a testify mock of stripeint.Client. Signature checks
// are real and use TestWebhookSecret.
type MockStripeClient struct {
	mock.Mock
}

var _ stripeint.Client = (*MockStripeClient)(nil)

func NewMockStripeClient() *MockStripeClient {
	return &MockStripeClient{}
}

func (m *MockStripeClient) FindPromotionCode(ctx context.Context, code string) (*stripe.PromotionCode, error) {
	args := m.Called(ctx, code)
	promo, _ := args.Get(0).(*stripe.PromotionCode)
	return promo, args.Error(1)
}

func (m *MockStripeClient) CreatePaymentIntent(ctx context.Context, req *stripeint.CreatePaymentIntentRequest) (*stripe.PaymentIntent, error) {
	args := m.Called(ctx, req)
	pi, _ := args.Get(0).(*stripe.PaymentIntent)
	return pi, args.Error(1)
}

func (m *MockStripeClient) CreateCustomer(ctx context.Context, req *stripeint.CreateCustomerRequest) (*stripe.Customer, error) {
	args := m.Called(ctx, req)
	cust, _ := args.Get(0).(*stripe.Customer)
	return cust, args.Error(1)
}

func (m *MockStripeClient) CreateSubscription(ctx context.Context, req *stripeint.CreateSubscriptionRequest) (*stripe.Subscription, error) {
	args := m.Called(ctx, req)
	sub, _ := args.Get(0).(*stripe.Subscription)
	return sub, args.Error(1)
}

func (m *MockStripeClient) ConstructEvent(payload []byte, signature string) (stripe.Event, error) {
	return stripeint.ConstructEvent(payload, signature, TestWebhookSecret, webhook.DefaultTolerance)
}

// PercentPromotionCode builds an active promotion code backed by a percent coupon.
func PercentPromotionCode(id, code string, percent float64) *stripe.PromotionCode {
	return &stripe.PromotionCode{
		ID:     id,
		Code:   code,
		Active: true,
		Coupon: &stripe.Coupon{
			ID:         "coupon_" + id,
			PercentOff: percent,
			Valid:      true,
		},
	}
}

// AmountPromotionCode builds an active promotion code backed by a fixed coupon.
func AmountPromotionCode(id, code string, amountOff int64, currency string) *stripe.PromotionCode {
	return &stripe.PromotionCode{
		ID:     id,
		Code:   code,
		Active: true,
		Coupon: &stripe.Coupon{
			ID:        "coupon_" + id,
			AmountOff: amountOff,
			Currency:  stripe.Currency(currency),
			Valid:     true,
		},
	}
}

// SubscriptionEvent describes a customer.subscription.* webhook to sign.
type SubscriptionEvent struct {
	EventID        string
	Type           string
	Created        time.Time
	SubscriptionID string
	CustomerID     string
	ProductID      string
	Status         string
	Interval       string
	PeriodStart    time.Time
	PeriodEnd      time.Time
	CanceledAt     *time.Time
	EndedAt        *time.Time
}

// Payload renders the event as the JSON body Stripe would post.
func (e SubscriptionEvent) Payload() []byte {
	item := map[string]interface{}{
		"id":                   "si_" + e.SubscriptionID,
		"object":               "subscription_item",
		"current_period_start": e.PeriodStart.Unix(),
		"current_period_end":   e.PeriodEnd.Unix(),
		"price": map[string]interface{}{
			"id":      "price_" + e.ProductID,
			"object":  "price",
			"product": e.ProductID,
			"recurring": map[string]interface{}{
				"interval":       e.Interval,
				"interval_count": 1,
			},
		},
	}

	obj := map[string]interface{}{
		"id":       e.SubscriptionID,
		"object":   "subscription",
		"customer": e.CustomerID,
		"status":   e.Status,
		"items": map[string]interface{}{
			"object": "list",
			"data":   []interface{}{item},
		},
	}
	if e.CanceledAt != nil {
		obj["canceled_at"] = e.CanceledAt.Unix()
	}
	if e.EndedAt != nil {
		obj["ended_at"] = e.EndedAt.Unix()
	}

	body, _ := json.Marshal(map[string]interface{}{
		"id":          e.EventID,
		"object":      "event",
		"api_version": stripe.APIVersion,
		"type":        e.Type,
		"created":     e.Created.Unix(),
		"data":        map[string]interface{}{"object": obj},
	})
	return body
}

// SignedWebhookPayload returns the payload and a valid Stripe-Signature
// header for it.
func SignedWebhookPayload(payload []byte) ([]byte, string) {
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    TestWebhookSecret,
		Timestamp: time.Now(),
	})
	return signed.Payload, signed.Header
}
