package stripe

import (
	"errors"

	ierr "github.com/bldrfitness/bldr/internal/errors"
	"github.com/stripe/stripe-go/v82"
)

// convertError marks an SDK error as an upstream failure, keeping the Stripe
// request id for support tickets.
func convertError(err error, hint string) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		details := map[string]interface{}{
			"stripe_code":       string(stripeErr.Code),
			"stripe_type":       string(stripeErr.Type),
			"stripe_status":     stripeErr.HTTPStatusCode,
			"stripe_request_id": stripeErr.RequestID,
		}
		sentinel := ierr.ErrUpstream
		if stripeErr.Code == stripe.ErrorCodeResourceMissing {
			sentinel = ierr.ErrNotFound
		}
		return ierr.WithError(err).
			WithHint(hint).
			WithReportableDetails(details).
			Mark(sentinel)
	}

	return ierr.WithError(err).
		WithHint(hint).
		Mark(ierr.ErrUpstream)
}
