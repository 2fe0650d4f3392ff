package service

import (
	"context"

	"github.com/cassiomorais/pixgateway/internal/infrastructure/providers"
)

// Gateway is the payment gateway as seen by PixService.
type Gateway interface {
	CreateTransaction(ctx context.Context, payload any) (*providers.Response, error)
	GetTransaction(ctx context.Context, id string) (*providers.Response, error)
}

// IdentityProvider is the CPF lookup as seen by IdentityService.
type IdentityProvider interface {
	Lookup(ctx context.Context, cpf string) (*providers.Response, error)
}
