package service

import (
	"context"

	"github.com/bldrfitness/bldr/internal/api/dto"
	"github.com/bldrfitness/bldr/internal/domain/lifecycle"
	stripeint "github.com/bldrfitness/bldr/internal/integration/stripe"
)

// WebhookService verifies and applies provider notifications.
type WebhookService interface {
	// Ingest verifies the signature and decodes the event. Nothing is read
	// from or written to the store.
	Ingest(ctx context.Context, payload []byte, signature string) (*lifecycle.Event, error)

	// HandleStripeWebhook ingests and reconciles one delivery.
	HandleStripeWebhook(ctx context.Context, payload []byte, signature string) (*dto.WebhookResult, error)
}

type webhookService struct {
	ServiceParams
	reconciler SubscriptionReconciler
}

func NewWebhookService(params ServiceParams, reconciler SubscriptionReconciler) WebhookService {
	return &webhookService{
		ServiceParams: params,
		reconciler:    reconciler,
	}
}

func (s *webhookService) Ingest(ctx context.Context, payload []byte, signature string) (*lifecycle.Event, error) {
	event, err := s.StripeClient.ConstructEvent(payload, signature)
	if err != nil {
		s.Logger.WithContext(ctx).Warnw("rejected stripe webhook", "error", err)
		return nil, err
	}

	return stripeint.ToLifecycleEvent(event)
}

func (s *webhookService) HandleStripeWebhook(ctx context.Context, payload []byte, signature string) (*dto.WebhookResult, error) {
	event, err := s.Ingest(ctx, payload, signature)
	if err != nil {
		return nil, err
	}

	s.Logger.WithContext(ctx).Infow("received stripe webhook",
		"event_id", event.ID,
		"event_type", event.ProviderEventType,
		"stripe_subscription_id", event.ProviderSubscriptionID,
	)

	outcome, err := s.reconciler.Reconcile(ctx, event)
	if err != nil {
		return nil, err
	}

	return &dto.WebhookResult{
		EventID:   event.ID,
		EventType: event.ProviderEventType,
		Outcome:   outcome,
		Lifecycle: event.Type,
	}, nil
}
