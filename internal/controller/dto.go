package controller

import "github.com/cassiomorais/pixgateway/internal/domain/cpf"

// --- Response DTOs ---
// Successful payment responses are pix.Charge and pix.PaymentStatus, which
// serialize themselves.

// ErrorResponse is the error envelope of the payment routes.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// LookupErrorResponse is the error envelope of the identity route.
type LookupErrorResponse struct {
	Status    int    `json:"status"`
	StatusMsg string `json:"statusMsg"`
}

// IdentityResponse wraps a normalized CPF record.
type IdentityResponse struct {
	DADOS cpf.Record `json:"DADOS"`
}

type HealthResponse struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}
