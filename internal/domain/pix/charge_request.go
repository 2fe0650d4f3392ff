package pix

import (
	"fmt"
	"time"

	"github.com/cassiomorais/pixgateway/internal/domain/fields"
)

const (
	// PaymentMethodPix selects the instant-payment rail on the gateway.
	PaymentMethodPix = "PIX"
	// ItemTitle labels the single line item of every charge.
	ItemTitle = "Assinatura Digital"

	expiresInDays = 1
)

// ChargeRequest is the transaction payload the gateway expects.
type ChargeRequest struct {
	PaymentMethod string         `json:"paymentMethod"`
	Amount        int64          `json:"amount"`
	CompanyID     string         `json:"companyId"`
	Description   string         `json:"description"`
	PostbackURL   string         `json:"postbackUrl,omitempty"`
	Customer      Customer       `json:"customer"`
	Shipping      Shipping       `json:"shipping"`
	Pix           PixOptions     `json:"pix"`
	Items         []Item         `json:"items"`
	Metadata      ChargeMetadata `json:"metadata"`
}

type PixOptions struct {
	ExpiresInDays int `json:"expiresInDays"`
}

type Item struct {
	Title       string `json:"title"`
	UnitPrice   int64  `json:"unitPrice"`
	Quantity    int    `json:"quantity"`
	ExternalRef string `json:"externalRef"`
}

// ChargeMetadata travels with the transaction for later reconciliation.
// OriginalBody is the client body exactly as received.
type ChargeMetadata struct {
	Tracking     string         `json:"tracking"`
	Nome         string         `json:"nome"`
	CPF          string         `json:"cpf"`
	GeneratedAt  string         `json:"generated_at"`
	OriginalBody map[string]any `json:"original_body"`
}

// ChargeInput is everything the builder needs, already canonicalized.
type ChargeInput struct {
	Amount       Amount
	Customer     Customer
	Shipping     Shipping
	Tracking     string
	CompanyID    string
	PostbackURL  string
	OriginalBody map[string]any
}

// ReadChargeInput canonicalizes a client body. Gateway settings are left for
// the caller to fill in.
func ReadChargeInput(body map[string]any, digits DigitSource) ChargeInput {
	if body == nil {
		body = map[string]any{}
	}
	placeholders := NewPlaceholders(digits)

	raw, _ := fields.Present(body, "amount", "valor", "total")
	return ChargeInput{
		Amount:       ParseAmount(raw),
		Customer:     ResolveCustomer(body, placeholders),
		Shipping:     ResolveShipping(body),
		Tracking:     ResolveTracking(body, placeholders),
		OriginalBody: body,
	}
}

// BuildChargeRequest assembles the gateway payload. now stamps the item
// reference and the metadata.
func BuildChargeRequest(in ChargeInput, now time.Time) ChargeRequest {
	now = now.UTC()
	original := in.OriginalBody
	if original == nil {
		original = map[string]any{}
	}

	return ChargeRequest{
		PaymentMethod: PaymentMethodPix,
		Amount:        in.Amount.MinorUnits,
		CompanyID:     in.CompanyID,
		Description:   ItemTitle + " " + in.Tracking,
		PostbackURL:   in.PostbackURL,
		Customer:      in.Customer,
		Shipping:      in.Shipping,
		Pix:           PixOptions{ExpiresInDays: expiresInDays},
		Items: []Item{{
			Title:       ItemTitle,
			UnitPrice:   in.Amount.MinorUnits,
			Quantity:    1,
			ExternalRef: fmt.Sprintf("pay-%d", now.UnixMilli()),
		}},
		Metadata: ChargeMetadata{
			Tracking:     in.Tracking,
			Nome:         in.Customer.Name,
			CPF:          in.Customer.Document,
			GeneratedAt:  now.Format("2006-01-02T15:04:05.000Z07:00"),
			OriginalBody: original,
		},
	}
}
