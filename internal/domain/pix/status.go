package pix

import "github.com/cassiomorais/pixgateway/internal/domain/fields"

const (
	StatusPending  = "pending"
	StatusPaid     = "paid"
	StatusApproved = "approved"
)

// PaymentStatus is the client view of a polled gateway transaction. The
// service keeps nothing between polls.
type PaymentStatus struct {
	Success bool           `json:"success"`
	ID      string         `json:"id"`
	Status  string         `json:"status"`
	Paid    bool           `json:"paid"`
	Raw     map[string]any `json:"raw"`
}

// NewPaymentStatus maps a gateway status response. A missing status reads
// as pending.
func NewPaymentStatus(id string, raw map[string]any) PaymentStatus {
	if raw == nil {
		raw = map[string]any{}
	}
	status := fields.FirstOr(raw, StatusPending, "status")
	return PaymentStatus{
		Success: true,
		ID:      id,
		Status:  status,
		Paid:    IsPaid(status),
		Raw:     raw,
	}
}

// IsPaid reports whether a gateway status means the charge was settled.
func IsPaid(status string) bool {
	return status == StatusPaid || status == StatusApproved
}
