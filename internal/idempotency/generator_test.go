package idempotency

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGenerateKey(t *testing.T) {
	g := NewGenerator()

	a := g.GenerateKey(ScopePaymentIntent, map[string]interface{}{"user_id": "u1", "amount": 9990})
	b := g.GenerateKey(ScopePaymentIntent, map[string]interface{}{"amount": 9990, "user_id": "u1"})
	c := g.GenerateKey(ScopePaymentIntent, map[string]interface{}{"user_id": "u1", "amount": 8990})
	d := g.GenerateKey(ScopeCustomer, map[string]interface{}{"user_id": "u1", "amount": 9990})

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.NotEqual(t, a, d)
	assert.Contains(t, a, "payment_intent_")
	assert.LessOrEqual(t, len(a), 255)
}

func TestGenerateWindowedKey(t *testing.T) {
	now := time.Date(2026, 5, 1, 10, 3, 0, 0, time.UTC)
	g := &Generator{now: func() time.Time { return now }}
	params := map[string]interface{}{"user_id": "u1"}

	first := g.GenerateWindowedKey(ScopePaymentIntent, params, 10*time.Minute)

	now = now.Add(5 * time.Minute)
	sameWindow := g.GenerateWindowedKey(ScopePaymentIntent, params, 10*time.Minute)

	now = now.Add(10 * time.Minute)
	nextWindow := g.GenerateWindowedKey(ScopePaymentIntent, params, 10*time.Minute)

	assert.Equal(t, first, sameWindow)
	assert.NotEqual(t, first, nextWindow)
	assert.Len(t, params, 1)
}
