package types

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// LockScope represents the scope of a database advisory lock
type LockScope string

const (
	// LockScopeSubscription serialises writes for one provider subscription id
	LockScopeSubscription LockScope = "subscription"
	// LockScopeCustomerLink serialises linking a user to a provider customer
	LockScopeCustomerLink LockScope = "customer_link"
)

const DefaultLockTimeout = 30 * time.Second

// LockRequest describes an advisory lock taken inside a transaction.
type LockRequest struct {
	Key     string
	Timeout *time.Duration
}

// GetTimeout returns the configured timeout or DefaultLockTimeout.
func (r LockRequest) GetTimeout() time.Duration {
	if r.Timeout == nil {
		return DefaultLockTimeout
	}
	return *r.Timeout
}

// GenerateLockKey builds scope:key1=value1:key2=value2 with keys sorted.
// Postgres hashes the string with hashtext().
func GenerateLockKey(scope LockScope, params map[string]interface{}) string {
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

	return b.String()
}

// TableName represents a database table name
type TableName string

const (
	TableNameSubscriptionPlans TableName = "subscription_plans"
	TableNameUserProfiles      TableName = "user_profiles"
	TableNameUserSubscriptions TableName = "user_subscriptions"
)
