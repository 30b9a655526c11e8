package repository

import (
	"context"

	"github.com/ignatzorin/gig-marketplace/internal/domain/valueobject"
	"github.com/shopspring/decimal"
)

// PayoutProvider внешний платёжный провайдер: переводы, подключённые аккаунты, вебхуки.
type PayoutProvider interface {
	CreateTransfer(ctx context.Context, req TransferRequest) (string, error)
	CreateConnectedAccount(ctx context.Context, email string) (string, error)
	CreateAccountOnboardingLink(ctx context.Context, accountID string) (string, error)
	CreatePaymentIntent(ctx context.Context, req PaymentIntentRequest) (*PaymentIntent, error)
	// ParseEvent проверяет подпись вебхука и переводит событие в доменный вид.
	ParseEvent(payload []byte, signature string) (*PayoutEvent, error)
}

type TransferRequest struct {
	AmountMinor        int64
	Currency           string
	DestinationAccount string
	Metadata           map[string]string
}

type PaymentIntentRequest struct {
	AmountMinor int64
	Currency    string
	Metadata    map[string]string
}

type PaymentIntent struct {
	ID           string
	ClientSecret string
}

type PayoutEventType string

const (
	EventPaymentSucceeded PayoutEventType = "payment_intent.succeeded"
	EventPaymentFailed    PayoutEventType = "payment_intent.payment_failed"
	EventAccountUpdated   PayoutEventType = "account.updated"
	EventTransferCreated  PayoutEventType = "transfer.created"
	EventTransferReversed PayoutEventType = "transfer.reversed"
)

// PayoutEvent нормализованное событие вебхука. Заполняются поля, относящиеся к Type.
type PayoutEvent struct {
	ID   string
	Type PayoutEventType

	// payment_intent.*
	PaymentIntentID string
	AmountMinor     int64
	Metadata        map[string]string

	// account.updated
	AccountID        string
	DetailsSubmitted bool
	CurrentlyDue     int
	ChargesEnabled   bool
	PayoutsEnabled   bool

	// transfer.*
	TransferID string
}

// Amount сумма события в основных единицах валюты.
func (e *PayoutEvent) Amount() decimal.Decimal {
	return valueobject.FromMinorUnits(e.AmountMinor)
}
