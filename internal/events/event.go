// Package events publishes domain events about ledger records, users and shops.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// Type names an event and doubles as its AMQP routing key.
type Type string

const (
	RevenueRecorded   Type = "revenue.recorded"
	RevenueUpdated    Type = "revenue.updated"
	ExpenseRecorded   Type = "expense.recorded"
	ExpenseUpdated    Type = "expense.updated"
	UserRegistered    Type = "user.registered"
	UserStatusChanged Type = "user.status_changed"
	UserRoleChanged   Type = "user.role_changed"
	ShopCreated       Type = "shop.created"
	ShopStatusChanged Type = "shop.status_changed"
)

// Event is one thing that happened. Actor is the identifier of whoever caused
// it and Subject the id of the entity it happened to.
type Event struct {
	Type      Type            `json:"type"`
	Actor     string          `json:"actor"`
	Subject   string          `json:"subject"`
	Shop      string          `json:"shop,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// New builds an event stamped with the current time, encoding payload as JSON.
func New(typ Type, actor, subject, shop string, payload any) (Event, error) {
	e := Event{
		Type:      typ,
		Actor:     actor,
		Subject:   subject,
		Shop:      shop,
		Timestamp: time.Now().UTC(),
	}
	if payload != nil {
		body, err := json.Marshal(payload)
		if err != nil {
			return Event{}, fmt.Errorf("marshal %s payload: %w", typ, err)
		}
		e.Payload = body
	}
	return e, nil
}

// Publisher delivers events to interested consumers.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Nop discards every event. It is used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *Recorder) Close() error { return nil }

// Events returns a copy of everything published so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Types returns the type of every published event in order.
func (r *Recorder) Types() []Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]Type, 0, len(r.events))
	for _, e := range r.events {
		types = append(types, e.Type)
	}
	return types
}
