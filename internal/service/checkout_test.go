package service

import (
	"testing"

	"checkout-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testAddress = models.Address{
	FullName:   "Ada Lovelace",
	Email:      "ada@example.com",
	Line1:      "12 Analytical Way",
	City:       "London",
	PostalCode: "N1 9GU",
	Country:    "GB",
}

func TestNewSessionDefaults(t *testing.T) {
	cs := NewCheckoutSession()

	data := cs.Data()
	assert.Equal(t, models.StepShipping, data.CurrentStep)
	assert.True(t, data.SameAsShipping)
	assert.Nil(t, data.ShippingAddress)
	assert.False(t, data.AcceptTerms)
}

func TestStepWalkAndBoundaries(t *testing.T) {
	cs := NewCheckoutSession()

	// PrevStep on the first step is a no-op.
	assert.Equal(t, models.StepShipping, cs.PrevStep())

	assert.Equal(t, models.StepBilling, cs.NextStep())
	assert.Equal(t, models.StepPayment, cs.NextStep())
	assert.Equal(t, models.StepReview, cs.NextStep())

	// NextStep on the last step is a no-op.
	assert.Equal(t, models.StepReview, cs.NextStep())

	assert.Equal(t, models.StepPayment, cs.PrevStep())
}

func TestShippingAddressMirrorsIntoBilling(t *testing.T) {
	cs := NewCheckoutSession()

	cs.UpdateShippingAddress(testAddress)

	data := cs.Data()
	require.NotNil(t, data.BillingAddress)
	assert.Equal(t, testAddress, *data.BillingAddress)
}

func TestExplicitBillingAddress(t *testing.T) {
	cs := NewCheckoutSession()
	cs.SetSameAsShipping(false)
	cs.UpdateShippingAddress(testAddress)

	data := cs.Data()
	assert.Nil(t, data.BillingAddress)

	billing := testAddress
	billing.FullName = "Charles Babbage"
	cs.UpdateBillingAddress(billing)

	data = cs.Data()
	require.NotNil(t, data.BillingAddress)
	assert.Equal(t, "Charles Babbage", data.BillingAddress.FullName)
	assert.Equal(t, "Ada Lovelace", data.ShippingAddress.FullName)
}

func TestSameAsShippingToggleReMirrors(t *testing.T) {
	cs := NewCheckoutSession()
	cs.SetSameAsShipping(false)
	cs.UpdateShippingAddress(testAddress)

	billing := testAddress
	billing.City = "Cambridge"
	cs.UpdateBillingAddress(billing)

	cs.SetSameAsShipping(true)
	data := cs.Data()
	assert.Equal(t, "London", data.BillingAddress.City)

	// Toggling off keeps the mirrored copy as the last explicit value.
	cs.SetSameAsShipping(false)
	data = cs.Data()
	assert.Equal(t, "London", data.BillingAddress.City)
}

func TestDataReturnsCopies(t *testing.T) {
	cs := NewCheckoutSession()
	cs.UpdateShippingAddress(testAddress)

	data := cs.Data()
	data.ShippingAddress.City = "Mutated"

	assert.Equal(t, "London", cs.Data().ShippingAddress.City)
}

func TestCanProceedGates(t *testing.T) {
	cs := NewCheckoutSession()

	// shipping: requires a shipping address.
	assert.False(t, cs.CanProceed())
	cs.UpdateShippingAddress(testAddress)
	assert.True(t, cs.CanProceed())

	// billing: sameAsShipping satisfies the gate.
	cs.NextStep()
	assert.True(t, cs.CanProceed())

	cs.SetSameAsShipping(false)
	// mirrored billing copy from before the toggle still counts
	assert.True(t, cs.CanProceed())

	// payment: requires a payment method.
	cs.NextStep()
	assert.False(t, cs.CanProceed())
	cs.SetPaymentMethod("pm-1", "card")
	assert.True(t, cs.CanProceed())

	// review: requires accepted terms.
	cs.NextStep()
	assert.False(t, cs.CanProceed())
	cs.SetAcceptTerms(true)
	assert.True(t, cs.CanProceed())
}

func TestBillingGateWithoutMirrorOrAddress(t *testing.T) {
	cs := NewCheckoutSession()
	cs.SetSameAsShipping(false)
	cs.UpdateShippingAddress(testAddress)
	cs.NextStep()

	assert.Equal(t, models.StepBilling, cs.CurrentStep())
	assert.False(t, cs.CanProceed())
}
