package idempotency

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Scope prefixes keys so different provider operations never collide.
type Scope string

const (
	ScopePaymentIntent Scope = "payment_intent"
	ScopeCustomer      Scope = "customer"
	ScopeSubscription  Scope = "subscription"
)

// Generator produces deterministic idempotency keys.
type Generator struct {
	now func() time.Time
}

func NewGenerator() *Generator {
	return &Generator{now: time.Now}
}

// GenerateKey hashes scope and params (sorted by key) into a stable key.
func (g *Generator) GenerateKey(scope Scope, params map[string]interface{}) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(string(scope))
	for _, k := range keys {
		b.WriteString(fmt.Sprintf(":%s=%v", k, params[k]))
	}

	hash := sha256.Sum256([]byte(b.String()))
	return fmt.Sprintf("%s_%s", scope, hex.EncodeToString(hash[:16]))
}

// GenerateWindowedKey is GenerateKey with the current time bucket added, so
// a retry inside the same window reuses the key and a later request does not.
func (g *Generator) GenerateWindowedKey(scope Scope, params map[string]interface{}, window time.Duration) string {
	merged := make(map[string]interface{}, len(params)+1)
	for k, v := range params {
		merged[k] = v
	}
	if window > 0 {
		merged["window"] = g.now().UTC().Truncate(window).Unix()
	}
	return g.GenerateKey(scope, merged)
}
