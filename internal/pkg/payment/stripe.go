package payment

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"

	"github.com/monchobi/artschool/internal/app/models"
	"github.com/monchobi/artschool/internal/pkg/apperrors"
)

// Provider creates payment intents with an external payment processor.
type Provider interface {
	CreateIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (*models.PaymentIntent, error)
}

// StripeProvider creates card payment intents through the Stripe API.
type StripeProvider struct {
	sc     *client.API
	logger zerolog.Logger
}

// NewProvider returns a Stripe backed provider, or Disabled when secretKey is empty.
func NewProvider(secretKey string, logger zerolog.Logger) Provider {
	if secretKey == "" {
		logger.Warn().Msg("Payment secret key not configured - payment intents are disabled")
		return Disabled{}
	}
	return &StripeProvider{
		sc:     client.New(secretKey, nil),
		logger: logger,
	}
}

func (p *StripeProvider) CreateIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (*models.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(amount),
		Currency:           stripe.String(strings.ToLower(currency)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	params.Context = ctx
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	pi, err := p.sc.PaymentIntents.New(params)
	if err != nil {
		p.logger.Error().Err(err).Int64("amount", amount).Msg("Failed to create payment intent")
		return nil, classify(err)
	}

	return &models.PaymentIntent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
	}, nil
}

// classify maps provider failures onto application errors. Requests the
// provider rejected are the caller's fault; everything else may be retried.
func classify(err error) error {
	var se *stripe.Error
	if errors.As(err, &se) {
		switch se.Type {
		case stripe.ErrorTypeInvalidRequest, stripe.ErrorTypeCard:
			return apperrors.NewBadRequestError(se.Msg)
		}
	}
	return apperrors.NewUnavailableError("payment provider unavailable", err)
}

// Disabled rejects every request with ErrPaymentProviderUnset.
type Disabled struct{}

func (Disabled) CreateIntent(context.Context, int64, string, map[string]string) (*models.PaymentIntent, error) {
	return nil, apperrors.ErrPaymentProviderUnset
}
