package payments

import (
	"context"
	"fmt"
	"sync"
)

// Fake is an in-memory Gateway. New intents start in
// "requires_payment_method"; tests move them with SetStatus.
type Fake struct {
	mu      sync.Mutex
	intents map[string]*Intent
	seq     int
	Refunds []Refund
	Err     error
}

func NewFake() *Fake {
	return &Fake{intents: map[string]*Intent{}}
}

func (f *Fake) CreateIntent(_ context.Context, amount int64, currency string, _ map[string]string) (*Intent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	f.seq++
	id := fmt.Sprintf("pi_fake_%d", f.seq)
	in := &Intent{
		ID:           id,
		ClientSecret: id + "_secret",
		Status:       "requires_payment_method",
		Amount:       amount,
		Currency:     currency,
	}
	f.intents[id] = in
	cp := *in
	return &cp, nil
}

func (f *Fake) RetrieveIntent(_ context.Context, id string) (*Intent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	in, ok := f.intents[id]
	if !ok {
		return nil, fmt.Errorf("%w: no such payment_intent %s", ErrGatewayAPI, id)
	}
	cp := *in
	return &cp, nil
}

func (f *Fake) Refund(_ context.Context, intentID string, amount int64) (*Refund, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	if _, ok := f.intents[intentID]; !ok {
		return nil, fmt.Errorf("%w: no such payment_intent %s", ErrGatewayAPI, intentID)
	}
	r := Refund{ID: fmt.Sprintf("re_fake_%d", len(f.Refunds)+1), Amount: amount, Status: IntentSucceeded}
	f.Refunds = append(f.Refunds, r)
	return &r, nil
}

// SetStatus simulates the customer completing (or failing) the intent.
func (f *Fake) SetStatus(id, status string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if in, ok := f.intents[id]; ok {
		in.Status = status
	}
}
