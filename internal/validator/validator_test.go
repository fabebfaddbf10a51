package validator

import (
	"testing"

	ierr "github.com/bldrfitness/bldr/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	PlanID        string `validate:"required"`
	Currency      string `validate:"currency"`
	BillingPeriod string `validate:"billing_period"`
}

func TestValidateRequest(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, ValidateRequest(sampleRequest{PlanID: "p", Currency: "brl", BillingPeriod: "annual"}))
	})

	t.Run("invalid fields listed", func(t *testing.T) {
		err := ValidateRequest(sampleRequest{Currency: "reais", BillingPeriod: "weekly"})
		require.Error(t, err)
		assert.True(t, ierr.IsValidation(err))

		details := ierr.GetReportableDetails(err)
		assert.Equal(t, "required", details["planid"])
		assert.Equal(t, "currency", details["currency"])
		assert.Equal(t, "billing_period", details["billingperiod"])
	})
}
