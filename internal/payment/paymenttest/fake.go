// Package paymenttest provides an in-memory payment.Provider for tests.
package paymenttest

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"

	"github.com/bookcourier/bookcourier-server/internal/payment"
)

// Provider records created sessions and serves them back.
// Sessions start unpaid; tests settle them with MarkPaid.
type Provider struct {
	mu       sync.Mutex
	sessions map[string]*payment.CheckoutSession
	requests []payment.CheckoutRequest
	next     int

	// CreateErr and GetErr, when set, fail the respective call.
	CreateErr error
	GetErr    error
}

// New creates an empty fake provider.
func New() *Provider {
	return &Provider{sessions: make(map[string]*payment.CheckoutSession)}
}

// CreateCheckoutSession implements payment.Provider.
func (p *Provider) CreateCheckoutSession(_ context.Context, req payment.CheckoutRequest) (*payment.CheckoutSession, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.CreateErr != nil {
		return nil, p.CreateErr
	}

	p.next++
	id := fmt.Sprintf("cs_test_%d", p.next)
	s := &payment.CheckoutSession{
		ID:            id,
		URL:           "https://checkout.example/pay/" + id,
		PaymentStatus: payment.StatusUnpaid,
		AmountTotal:   req.UnitAmount,
		Currency:      req.Currency,
		CustomerEmail: req.CustomerEmail,
		Metadata:      maps.Clone(req.Metadata),
	}
	p.sessions[id] = s
	p.requests = append(p.requests, req)

	out := *s
	return &out, nil
}

// GetCheckoutSession implements payment.Provider.
func (p *Provider) GetCheckoutSession(_ context.Context, id string) (*payment.CheckoutSession, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.GetErr != nil {
		return nil, p.GetErr
	}
	s, ok := p.sessions[id]
	if !ok {
		return nil, errors.New("no such checkout session: " + id)
	}
	out := *s
	return &out, nil
}

// AddSession registers a session directly, bypassing CreateCheckoutSession.
func (p *Provider) AddSession(s *payment.CheckoutSession) {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := *s
	p.sessions[s.ID] = &out
}

// MarkPaid settles a session with the given payment intent id.
func (p *Provider) MarkPaid(id, paymentIntentID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if s, ok := p.sessions[id]; ok {
		s.PaymentStatus = payment.StatusPaid
		s.PaymentIntentID = paymentIntentID
	}
}

// Requests returns every create request seen so far.
func (p *Provider) Requests() []payment.CheckoutRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]payment.CheckoutRequest(nil), p.requests...)
}
