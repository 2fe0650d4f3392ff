package pix

import (
	"encoding/json"

	"github.com/cassiomorais/pixgateway/internal/domain/fields"
)

// Charge is the normalized view of a gateway creation response. Each value
// is held once and fanned out to all of its client-facing names by
// MarshalJSON.
type Charge struct {
	TransactionID string
	Code          string
	QRCode        string
	Key           string
	Amount        Amount
	Raw           map[string]any
}

// NormalizeCharge resolves the PIX code, QR code, key and transaction id
// from a gateway response, looking in the nested pix object first and then
// at the root.
func NormalizeCharge(raw map[string]any, amount Amount) Charge {
	if raw == nil {
		raw = map[string]any{}
	}
	pixData, _ := fields.Object(raw, "pix")

	code := fields.First(pixData, "brcode", "payload", "qr_code", "qrcode")
	if code == "" {
		code = fields.First(raw, "brcode", "payload", "qrcode")
	}
	qr := fields.FirstOr(pixData, code, "qrcode", "qr_code", "payload")

	key := fields.First(pixData, "key")
	if key == "" {
		key = fields.First(raw, "key")
	}

	return Charge{
		TransactionID: fields.First(raw, "id", "transactionId"),
		Code:          code,
		QRCode:        qr,
		Key:           key,
		Amount:        amount,
		Raw:           raw,
	}
}

type chargeJSON struct {
	Success       bool           `json:"success"`
	PixCode       *string        `json:"pix_code"`
	TransactionID *string        `json:"transaction_id"`
	DepositID     *string        `json:"deposit_id"`
	QRCode        *string        `json:"qrcode"`
	Amount        json.Number    `json:"amount"`
	Key           *string        `json:"key"`
	Brcode        *string        `json:"brcode"`
	Payload       *string        `json:"payload"`
	PixCodeCamel  *string        `json:"pixCode"`
	Pix           chargePixJSON  `json:"pix"`
	Raw           map[string]any `json:"raw"`
}

type chargePixJSON struct {
	Key     *string `json:"key"`
	Brcode  *string `json:"brcode"`
	QRCode  *string `json:"qrcode"`
	Payload *string `json:"payload"`
}

func (c Charge) MarshalJSON() ([]byte, error) {
	code := nullable(c.Code)
	id := nullable(c.TransactionID)
	qr := nullable(c.QRCode)
	key := nullable(c.Key)

	raw := c.Raw
	if raw == nil {
		raw = map[string]any{}
	}

	return json.Marshal(chargeJSON{
		Success:       true,
		PixCode:       code,
		TransactionID: id,
		DepositID:     id,
		QRCode:        qr,
		Amount:        json.Number(c.Amount.Display.String()),
		Key:           key,
		Brcode:        code,
		Payload:       code,
		PixCodeCamel:  code,
		Pix: chargePixJSON{
			Key:     key,
			Brcode:  code,
			QRCode:  qr,
			Payload: code,
		},
		Raw: raw,
	})
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
