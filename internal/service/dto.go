package service

// Controllers convert their HTTP input to these types.

// CheckPaymentRequest identifies the gateway transaction to poll.
type CheckPaymentRequest struct {
	ID string `validate:"required"`
}

// LookupCPFRequest carries the CPF exactly as the client typed it.
type LookupCPFRequest struct {
	CPF string
}

type lookupQuery struct {
	CPF string `validate:"required,numeric,max=11"`
}
