package stripe

import (
	"errors"
	"testing"

	ierr "github.com/bldrfitness/bldr/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stripe/stripe-go/v82"
)

func TestConvertError(t *testing.T) {
	t.Run("api error is upstream", func(t *testing.T) {
		err := convertError(&stripe.Error{
			Code:           stripe.ErrorCodeCardDeclined,
			Type:           stripe.ErrorTypeCard,
			HTTPStatusCode: 402,
			RequestID:      "req_1",
		}, "Failed to create payment")

		assert.True(t, ierr.IsUpstream(err))
		details := ierr.GetReportableDetails(err)
		assert.Equal(t, "req_1", details["stripe_request_id"])
	})

	t.Run("missing resource is not found", func(t *testing.T) {
		err := convertError(&stripe.Error{
			Code:           stripe.ErrorCodeResourceMissing,
			HTTPStatusCode: 404,
		}, "Failed to look up coupon")

		assert.True(t, ierr.IsNotFound(err))
		assert.False(t, ierr.IsUpstream(err))
	})

	t.Run("transport error is upstream", func(t *testing.T) {
		err := convertError(errors.New("connection reset"), "Failed to create customer")
		assert.True(t, ierr.IsUpstream(err))
	})
}
