package service

import (
	"sync"

	"checkout-service/internal/models"
)

// checkoutSteps is the linear step order.
var checkoutSteps = []models.CheckoutStep{
	models.StepShipping,
	models.StepBilling,
	models.StepPayment,
	models.StepReview,
}

// CheckoutSession holds one checkout's working state and walks it through
// the shipping, billing, payment and review steps. NextStep and PrevStep
// move exactly one position and are no-ops at the boundaries.
//
// The session does not gate its own transitions; CanProceed is the
// contract the calling layer checks before advancing.
type CheckoutSession struct {
	mu   sync.Mutex
	data models.CheckoutData
}

// NewCheckoutSession creates a fresh session at the shipping step with
// billing mirrored from shipping.
func NewCheckoutSession() *CheckoutSession {
	return &CheckoutSession{
		data: models.CheckoutData{
			SameAsShipping: true,
			CurrentStep:    models.StepShipping,
		},
	}
}

// Data returns a copy of the session state.
func (cs *CheckoutSession) Data() models.CheckoutData {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	data := cs.data
	if cs.data.ShippingAddress != nil {
		addr := *cs.data.ShippingAddress
		data.ShippingAddress = &addr
	}
	if cs.data.BillingAddress != nil {
		addr := *cs.data.BillingAddress
		data.BillingAddress = &addr
	}
	return data
}

// CurrentStep returns the step the session is on.
func (cs *CheckoutSession) CurrentStep() models.CheckoutStep {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.data.CurrentStep
}

// NextStep advances one step; no-op on the review step.
func (cs *CheckoutSession) NextStep() models.CheckoutStep {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	idx := stepIndex(cs.data.CurrentStep)
	if idx >= 0 && idx < len(checkoutSteps)-1 {
		cs.data.CurrentStep = checkoutSteps[idx+1]
	}
	return cs.data.CurrentStep
}

// PrevStep goes back one step; no-op on the shipping step.
func (cs *CheckoutSession) PrevStep() models.CheckoutStep {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	idx := stepIndex(cs.data.CurrentStep)
	if idx > 0 {
		cs.data.CurrentStep = checkoutSteps[idx-1]
	}
	return cs.data.CurrentStep
}

// UpdateShippingAddress sets the shipping address and, while billing
// mirrors shipping, copies it into the billing address field for field.
func (cs *CheckoutSession) UpdateShippingAddress(addr models.Address) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	shipping := addr
	cs.data.ShippingAddress = &shipping
	if cs.data.SameAsShipping {
		billing := addr
		cs.data.BillingAddress = &billing
	}
}

// UpdateBillingAddress sets the billing address directly. Only meaningful
// while SameAsShipping is off.
func (cs *CheckoutSession) UpdateBillingAddress(addr models.Address) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	billing := addr
	cs.data.BillingAddress = &billing
}

// SetSameAsShipping toggles billing mirroring. Turning it on re-mirrors
// the current shipping address immediately; turning it off leaves the last
// explicit billing address in place.
func (cs *CheckoutSession) SetSameAsShipping(same bool) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	cs.data.SameAsShipping = same
	if same && cs.data.ShippingAddress != nil {
		billing := *cs.data.ShippingAddress
		cs.data.BillingAddress = &billing
	}
}

// SetPaymentMethod records the selected payment method reference.
func (cs *CheckoutSession) SetPaymentMethod(id, methodType string) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	cs.data.PaymentMethodID = id
	cs.data.PaymentMethodType = methodType
}

// SetOrderNotes records free-form notes for the order.
func (cs *CheckoutSession) SetOrderNotes(notes string) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.data.OrderNotes = notes
}

// SetAcceptTerms records the terms acceptance flag.
func (cs *CheckoutSession) SetAcceptTerms(accepted bool) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.data.AcceptTerms = accepted
}

// SetSubscribeNewsletter records the newsletter opt-in.
func (cs *CheckoutSession) SetSubscribeNewsletter(subscribe bool) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.data.SubscribeNewsletter = subscribe
}

// CanProceed reports whether the current step's requirements are met.
func (cs *CheckoutSession) CanProceed() bool {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	switch cs.data.CurrentStep {
	case models.StepShipping:
		return cs.data.ShippingAddress != nil
	case models.StepBilling:
		return cs.data.SameAsShipping || cs.data.BillingAddress != nil
	case models.StepPayment:
		return cs.data.PaymentMethodID != ""
	case models.StepReview:
		return cs.data.AcceptTerms
	default:
		return false
	}
}

func stepIndex(step models.CheckoutStep) int {
	for i, s := range checkoutSteps {
		if s == step {
			return i
		}
	}
	return -1
}
