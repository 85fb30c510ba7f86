package events

import (
	"context"
	"sync"

	"reelspin/models"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeBalanceChange   EventType = "balance_change"
	EventTypeAccountCreated  EventType = "account_created"
	EventTypeSpinSettled     EventType = "spin_settled"
	EventTypeAutoSpinChanged EventType = "auto_spin_changed"
	EventTypePolicyUpdated   EventType = "policy_updated"
	EventTypeSpinLogged      EventType = "spin_logged"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// BalanceChangeEvent is emitted after a balance change has been committed to the store
type BalanceChangeEvent struct {
	AccountID       string                 `json:"accountId"`
	OldBalance      int64                  `json:"oldBalance"`
	NewBalance      int64                  `json:"newBalance"`
	ChangeAmount    int64                  `json:"changeAmount"`
	TransactionType models.TransactionType `json:"transactionType"`
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// AccountCreatedEvent represents the first contact with an account
type AccountCreatedEvent struct {
	AccountID      string `json:"accountId"`
	InitialBalance int64  `json:"initialBalance"`
}

func (e AccountCreatedEvent) Type() EventType {
	return EventTypeAccountCreated
}

// SpinSettledEvent carries the outcome of a completed spin
type SpinSettledEvent struct {
	Result   models.SpinResult `json:"result"`
	AutoSpin bool              `json:"autoSpin"`
}

func (e SpinSettledEvent) Type() EventType {
	return EventTypeSpinSettled
}

// AutoSpinChangedEvent is emitted when auto-spin is switched on or off for an account
type AutoSpinChangedEvent struct {
	AccountID string `json:"accountId"`
	Enabled   bool   `json:"enabled"`
	Remaining int    `json:"remaining"`
	Reason    string `json:"reason,omitempty"`
}

func (e AutoSpinChangedEvent) Type() EventType {
	return EventTypeAutoSpinChanged
}

// PolicyUpdatedEvent is emitted after the outcome policy has been replaced
type PolicyUpdatedEvent struct {
	Policy models.WinPolicyConfig `json:"policy"`
}

func (e PolicyUpdatedEvent) Type() EventType {
	return EventTypePolicyUpdated
}

// SpinLoggedEvent mirrors a spin log record
type SpinLoggedEvent struct {
	AccountID string            `json:"accountId"`
	Status    models.SpinStatus `json:"status"`
	Amount    int64             `json:"amount"`
}

func (e SpinLoggedEvent) Type() EventType {
	return EventTypeSpinLogged
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// SubscribeAll adds one handler for several event types
func (b *Bus) SubscribeAll(handler Handler, eventTypes ...EventType) {
	for _, eventType := range eventTypes {
		b.Subscribe(eventType, handler)
	}
}

// Emit dispatches an event to all registered handlers. Handlers run on their own goroutines.
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	log.WithFields(log.Fields{
		"eventType":    event.Type(),
		"handlerCount": len(handlers),
	}).Debug("Emitting event")

	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// Publish emits immediately. It lets the bus stand in wherever a publisher is expected
// outside a unit of work.
func (b *Bus) Publish(event Event) error {
	b.Emit(context.Background(), event)
	return nil
}

// TransactionalBus holds events raised inside a unit of work until the transaction commits
type TransactionalBus struct {
	real    *Bus
	mu      sync.Mutex
	pending []Event
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.pending = append(b.pending, e)
	log.WithFields(log.Fields{
		"eventType":    e.Type(),
		"pendingCount": len(b.pending),
	}).Debug("Queued event until commit")
	return nil
}

// Flush is called after a successful commit.
// Emission is detached from ctx so a finished request doesn't cancel handlers.
func (b *TransactionalBus) Flush(ctx context.Context) {
	b.mu.Lock()
	pending := b.pending
	b.pending = nil
	b.mu.Unlock()

	eventCtx := context.WithoutCancel(ctx)
	for _, ev := range pending {
		b.real.Emit(eventCtx, ev)
	}

	log.WithField("eventCount", len(pending)).Debug("Flushed pending events")
}

// Discard drops pending events after a rollback
func (b *TransactionalBus) Discard() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending = nil
}
