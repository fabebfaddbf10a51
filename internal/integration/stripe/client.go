package stripe

import (
	"context"
	"time"

	"github.com/bldrfitness/bldr/internal/config"
	ierr "github.com/bldrfitness/bldr/internal/errors"
	"github.com/bldrfitness/bldr/internal/logger"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
	"github.com/stripe/stripe-go/v82/webhook"
)

// Client defines the Stripe operations the billing flows depend on
type Client interface {
	// FindPromotionCode returns the active promotion code with its coupon
	// expanded, or nil when no active code matches.
	FindPromotionCode(ctx context.Context, code string) (*stripe.PromotionCode, error)
	CreatePaymentIntent(ctx context.Context, req *CreatePaymentIntentRequest) (*stripe.PaymentIntent, error)
	CreateCustomer(ctx context.Context, req *CreateCustomerRequest) (*stripe.Customer, error)
	CreateSubscription(ctx context.Context, req *CreateSubscriptionRequest) (*stripe.Subscription, error)
	// ConstructEvent verifies the Stripe-Signature header and parses the event.
	ConstructEvent(payload []byte, signature string) (stripe.Event, error)
}

// StripeClient is the production Client. It holds one SDK client built at
// startup and shared read-only by all requests.
type StripeClient struct {
	api              *client.API
	webhookSecret    string
	webhookTolerance time.Duration
	logger           *logger.Logger
}

// NewClient creates the Stripe client. Network retries are done by the
// retryablehttp transport, so the SDK's own retries are disabled and every
// mutating call carries an idempotency key.
func NewClient(cfg *config.Configuration, log *logger.Logger) Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = cfg.Stripe.APIRetries
	retryClient.RetryWaitMin = 250 * time.Millisecond
	retryClient.RetryWaitMax = 2 * time.Second
	retryClient.Logger = log.GetRetryableHTTPLogger()

	httpClient := retryClient.StandardClient()
	httpClient.Timeout = 30 * time.Second

	backends := stripe.NewBackendsWithConfig(&stripe.BackendConfig{
		HTTPClient:        httpClient,
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     log,
	})

	return &StripeClient{
		api:              client.New(cfg.Stripe.SecretKey, backends),
		webhookSecret:    cfg.Stripe.WebhookSecret,
		webhookTolerance: cfg.Stripe.WebhookTolerance,
		logger:           log,
	}
}

func (c *StripeClient) FindPromotionCode(ctx context.Context, code string) (*stripe.PromotionCode, error) {
	params := &stripe.PromotionCodeListParams{
		Code:   stripe.String(code),
		Active: stripe.Bool(true),
	}
	params.Context = ctx
	params.Limit = stripe.Int64(1)
	params.AddExpand("data.coupon")

	iter := c.api.PromotionCodes.List(params)
	var found *stripe.PromotionCode
	if iter.Next() {
		found = iter.PromotionCode()
	}
	if err := iter.Err(); err != nil {
		c.logger.Errorw("failed to list promotion codes", "error", err, "code", code)
		return nil, convertError(err, "Failed to look up coupon")
	}

	return found, nil
}

func (c *StripeClient) CreatePaymentIntent(ctx context.Context, req *CreatePaymentIntentRequest) (*stripe.PaymentIntent, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	params := &stripe.PaymentIntentParams{
		Amount:      stripe.Int64(req.Amount),
		Currency:    stripe.String(req.Currency),
		Description: stripe.String(req.Description),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}

	pi, err := c.api.PaymentIntents.New(params)
	if err != nil {
		c.logger.Errorw("failed to create payment intent",
			"error", err,
			"amount", req.Amount,
			"currency", req.Currency,
		)
		return nil, convertError(err, "Failed to create payment")
	}

	c.logger.Infow("created payment intent",
		"payment_intent_id", pi.ID,
		"amount", pi.Amount,
		"currency", pi.Currency,
	)
	return pi, nil
}

func (c *StripeClient) CreateCustomer(ctx context.Context, req *CreateCustomerRequest) (*stripe.Customer, error) {
	params := &stripe.CustomerParams{}
	params.Context = ctx
	if req.Email != "" {
		params.Email = stripe.String(req.Email)
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}

	cust, err := c.api.Customers.New(params)
	if err != nil {
		c.logger.Errorw("failed to create customer", "error", err)
		return nil, convertError(err, "Failed to create customer")
	}
	return cust, nil
}

func (c *StripeClient) CreateSubscription(ctx context.Context, req *CreateSubscriptionRequest) (*stripe.Subscription, error) {
	if req.CustomerID == "" || req.PriceID == "" {
		return nil, ierr.NewError("customer and price are required").
			Mark(ierr.ErrValidation)
	}

	params := &stripe.SubscriptionParams{
		Customer: stripe.String(req.CustomerID),
		Items: []*stripe.SubscriptionItemsParams{
			{Price: stripe.String(req.PriceID)},
		},
		PaymentBehavior: stripe.String("default_incomplete"),
		PaymentSettings: &stripe.SubscriptionPaymentSettingsParams{
			SaveDefaultPaymentMethod: stripe.String("on_subscription"),
		},
	}
	params.Context = ctx
	if req.PromotionCodeID != "" {
		params.Discounts = []*stripe.SubscriptionDiscountParams{
			{PromotionCode: stripe.String(req.PromotionCodeID)},
		}
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}
	params.AddExpand("latest_invoice.confirmation_secret")
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}

	sub, err := c.api.Subscriptions.New(params)
	if err != nil {
		c.logger.Errorw("failed to create subscription",
			"error", err,
			"customer_id", req.CustomerID,
			"price_id", req.PriceID,
		)
		return nil, convertError(err, "Failed to create subscription")
	}
	return sub, nil
}

func (c *StripeClient) ConstructEvent(payload []byte, signature string) (stripe.Event, error) {
	return ConstructEvent(payload, signature, c.webhookSecret, c.webhookTolerance)
}

// ConstructEvent verifies payload against the signing secret. Any failure,
// including a missing header, is an authentication error.
func ConstructEvent(payload []byte, signature, secret string, tolerance time.Duration) (stripe.Event, error) {
	if signature == "" {
		return stripe.Event{}, ierr.NewError("missing stripe signature").
			WithHint("Missing Stripe-Signature header").
			Mark(ierr.ErrAuthentication)
	}
	if secret == "" {
		return stripe.Event{}, ierr.NewError("webhook secret not configured").
			Mark(ierr.ErrInternal)
	}

	if tolerance <= 0 {
		tolerance = webhook.DefaultTolerance
	}

	event, err := webhook.ConstructEventWithOptions(payload, signature, secret, webhook.ConstructEventOptions{
		Tolerance:                tolerance,
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return stripe.Event{}, ierr.WithError(err).
			WithHint("Invalid webhook signature").
			Mark(ierr.ErrAuthentication)
	}
	return event, nil
}
