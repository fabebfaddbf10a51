package dto

import "github.com/bldrfitness/bldr/internal/types"

// WebhookResponse acknowledges a provider notification
type WebhookResponse struct {
	Received bool `json:"received"`
}

// WebhookResult reports what ingesting one event did. It is logged, not
// returned to the provider.
type WebhookResult struct {
	EventID   string                   `json:"event_id"`
	EventType string                   `json:"event_type"`
	Outcome   types.ReconcileOutcome   `json:"outcome"`
	Lifecycle types.LifecycleEventType `json:"lifecycle"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
