package testutil

import (
	"context"
	"sync"

	"github.com/cassiomorais/pixgateway/internal/infrastructure/providers"
)

// --- Gateway Mock ---

// MockGateway is a mock implementation of service.Gateway. It records every
// call and answers 200 {} unless a Func is set.
type MockGateway struct {
	mu      sync.Mutex
	created []any
	polled  []string

	CreateTransactionFunc func(ctx context.Context, payload any) (*providers.Response, error)
	GetTransactionFunc    func(ctx context.Context, id string) (*providers.Response, error)
}

func NewMockGateway() *MockGateway {
	return &MockGateway{}
}

func (m *MockGateway) CreateTransaction(ctx context.Context, payload any) (*providers.Response, error) {
	m.mu.Lock()
	m.created = append(m.created, payload)
	m.mu.Unlock()

	if m.CreateTransactionFunc != nil {
		return m.CreateTransactionFunc(ctx, payload)
	}
	return JSONResponse(200, `{}`), nil
}

func (m *MockGateway) GetTransaction(ctx context.Context, id string) (*providers.Response, error) {
	m.mu.Lock()
	m.polled = append(m.polled, id)
	m.mu.Unlock()

	if m.GetTransactionFunc != nil {
		return m.GetTransactionFunc(ctx, id)
	}
	return JSONResponse(200, `{}`), nil
}

// Created returns the payloads passed to CreateTransaction.
func (m *MockGateway) Created() []any {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]any(nil), m.created...)
}

// Polled returns the ids passed to GetTransaction.
func (m *MockGateway) Polled() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.polled...)
}

// --- Identity Provider Mock ---

// MockIdentityProvider is a mock implementation of service.IdentityProvider.
type MockIdentityProvider struct {
	mu      sync.Mutex
	lookups []string

	LookupFunc func(ctx context.Context, cpf string) (*providers.Response, error)
}

func NewMockIdentityProvider() *MockIdentityProvider {
	return &MockIdentityProvider{}
}

func (m *MockIdentityProvider) Lookup(ctx context.Context, cpf string) (*providers.Response, error) {
	m.mu.Lock()
	m.lookups = append(m.lookups, cpf)
	m.mu.Unlock()

	if m.LookupFunc != nil {
		return m.LookupFunc(ctx, cpf)
	}
	return JSONResponse(200, `{}`), nil
}

// Lookups returns the CPFs passed to Lookup.
func (m *MockIdentityProvider) Lookups() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.lookups...)
}
