// Package stripe адаптер PayoutProvider поверх stripe-go.
package stripe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ignatzorin/gig-marketplace/internal/config"
	"github.com/ignatzorin/gig-marketplace/internal/domain/repository"
	"github.com/ignatzorin/gig-marketplace/internal/logger"
	"github.com/ignatzorin/gig-marketplace/internal/pkg/apperror"
	"github.com/sirupsen/logrus"
	stripego "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

type Provider struct {
	api           *client.API
	webhookSecret string
	returnURL     string
	refreshURL    string
}

var _ repository.PayoutProvider = (*Provider)(nil)

func NewProvider(cfg config.StripeConfig) *Provider {
	return &Provider{
		api:           client.New(cfg.SecretKey, nil),
		webhookSecret: cfg.WebhookSecret,
		returnURL:     cfg.PayoutReturnURL,
		refreshURL:    cfg.PayoutRefreshURL,
	}
}

func (p *Provider) CreateTransfer(ctx context.Context, req repository.TransferRequest) (string, error) {
	params := &stripego.TransferParams{
		Amount:      stripego.Int64(req.AmountMinor),
		Currency:    stripego.String(req.Currency),
		Destination: stripego.String(req.DestinationAccount),
	}
	params.Context = ctx
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	tr, err := p.api.Transfers.New(params)
	if err != nil {
		logger.WithFields(logrus.Fields{
			"destination": req.DestinationAccount,
			"amount":      req.AmountMinor,
		}).WithError(err).Error("stripe: не удалось создать перевод")
		return "", providerError(err, "Failed to create transfer")
	}
	return tr.ID, nil
}

func (p *Provider) CreateConnectedAccount(ctx context.Context, email string) (string, error) {
	params := &stripego.AccountParams{
		Type:  stripego.String(string(stripego.AccountTypeExpress)),
		Email: stripego.String(email),
		Capabilities: &stripego.AccountCapabilitiesParams{
			Transfers: &stripego.AccountCapabilitiesTransfersParams{Requested: stripego.Bool(true)},
		},
	}
	params.Context = ctx

	acct, err := p.api.Accounts.New(params)
	if err != nil {
		return "", providerError(err, "Failed to create payout account")
	}
	return acct.ID, nil
}

func (p *Provider) CreateAccountOnboardingLink(ctx context.Context, accountID string) (string, error) {
	params := &stripego.AccountLinkParams{
		Account:    stripego.String(accountID),
		RefreshURL: stripego.String(p.refreshURL),
		ReturnURL:  stripego.String(p.returnURL),
		Type:       stripego.String("account_onboarding"),
	}
	params.Context = ctx

	link, err := p.api.AccountLinks.New(params)
	if err != nil {
		return "", providerError(err, "Failed to create onboarding link")
	}
	return link.URL, nil
}

func (p *Provider) CreatePaymentIntent(ctx context.Context, req repository.PaymentIntentRequest) (*repository.PaymentIntent, error) {
	params := &stripego.PaymentIntentParams{
		Amount:   stripego.Int64(req.AmountMinor),
		Currency: stripego.String(req.Currency),
		AutomaticPaymentMethods: &stripego.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripego.Bool(true),
		},
	}
	params.Context = ctx
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	pi, err := p.api.PaymentIntents.New(params)
	if err != nil {
		return nil, providerError(err, "Failed to create payment intent")
	}
	return &repository.PaymentIntent{ID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

func (p *Provider) ParseEvent(payload []byte, signature string) (*repository.PayoutEvent, error) {
	return parseEvent(payload, signature, p.webhookSecret)
}

func parseEvent(payload []byte, signature, secret string) (*repository.PayoutEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeBadRequest, "Invalid webhook signature")
	}

	out := &repository.PayoutEvent{
		ID:   event.ID,
		Type: repository.PayoutEventType(event.Type),
	}
	if event.Data == nil {
		return out, nil
	}

	switch out.Type {
	case repository.EventPaymentSucceeded, repository.EventPaymentFailed:
		var pi stripego.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return nil, decodeError(err, event.Type)
		}
		out.PaymentIntentID = pi.ID
		out.AmountMinor = pi.Amount
		out.Metadata = pi.Metadata

	case repository.EventAccountUpdated:
		var acct stripego.Account
		if err := json.Unmarshal(event.Data.Raw, &acct); err != nil {
			return nil, decodeError(err, event.Type)
		}
		out.AccountID = acct.ID
		out.DetailsSubmitted = acct.DetailsSubmitted
		out.ChargesEnabled = acct.ChargesEnabled
		out.PayoutsEnabled = acct.PayoutsEnabled
		if acct.Requirements != nil {
			out.CurrentlyDue = len(acct.Requirements.CurrentlyDue)
		}

	case repository.EventTransferCreated, repository.EventTransferReversed:
		var tr stripego.Transfer
		if err := json.Unmarshal(event.Data.Raw, &tr); err != nil {
			return nil, decodeError(err, event.Type)
		}
		out.TransferID = tr.ID
		out.AmountMinor = tr.Amount
		out.Metadata = tr.Metadata
	}

	return out, nil
}

func decodeError(err error, eventType stripego.EventType) error {
	return apperror.Wrap(err, apperror.ErrCodeBadRequest, fmt.Sprintf("Malformed %s payload", eventType))
}

// providerError сохраняет сообщение Stripe для клиента, если оно есть.
func providerError(err error, fallback string) error {
	var stripeErr *stripego.Error
	if errors.As(err, &stripeErr) && stripeErr.Msg != "" {
		return apperror.Wrap(err, apperror.ErrCodeBadRequest, fallback+": "+stripeErr.Msg)
	}
	return apperror.Wrap(err, apperror.ErrCodeBadRequest, fallback)
}
