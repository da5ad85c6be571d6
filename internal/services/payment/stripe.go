package payment

import (
	"context"
	"fmt"
	"os"

	"github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/charge"
)

// CardCharger charges a tokenized card and returns the provider's charge
// reference. Card numbers never reach this backend; clients tokenize
// through Stripe Elements or the mobile SDK and send the token.
type CardCharger interface {
	Charge(ctx context.Context, amount int64, token, description string) (string, error)
}

type stripeCharger struct{}

// NewStripeCharger returns a CardCharger backed by the Stripe charges API.
func NewStripeCharger() CardCharger { return stripeCharger{} }

func (stripeCharger) Charge(ctx context.Context, amount int64, token, description string) (string, error) {
	stripe.Key = os.Getenv("STRIPE_SECRET_KEY")

	params := &stripe.ChargeParams{
		Amount:      stripe.Int64(amount),
		Currency:    stripe.String(string(stripe.CurrencyCRC)),
		Description: stripe.String(description),
	}
	params.Context = ctx
	if err := params.SetSource(token); err != nil {
		return "", fmt.Errorf("invalid card token: %w", err)
	}

	ch, err := charge.New(params)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrChargeFailed, err)
	}
	return ch.ID, nil
}
