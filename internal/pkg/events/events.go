package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	EventSeatReserved        = "SeatReserved"
	EventEnrollmentCancelled = "EnrollmentCancelled"
	EventPaymentFinalized    = "PaymentFinalized"
	EventClassSubmitted      = "ClassSubmitted"
	EventClassStatusChanged  = "ClassStatusChanged"
	EventClassFeedbackSet    = "ClassFeedbackSet"
)

// Envelope wraps every domain event published by the API.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // class id
	Payload       json.RawMessage `json:"payload"`
}

// New builds a version 1 envelope. correlationID is the class the event is about.
func New(eventType, correlationID string, payload any) Envelope {
	return Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		CorrelationID: correlationID,
		Payload:       mustMarshal(payload),
	}
}

func mustMarshal(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

// UnwrapPayload decodes the payload of an envelope.
func UnwrapPayload[T any](payload json.RawMessage) (T, error) {
	var t T
	err := json.Unmarshal(payload, &t)
	return t, err
}

// ---- Payloads ----

type SeatReservedPayload struct {
	EnrollmentID string `json:"enrollment_id"`
	ClassID      string `json:"class_id"`
	Email        string `json:"email"`
}

type EnrollmentCancelledPayload struct {
	EnrollmentID string `json:"enrollment_id"`
	ClassID      string `json:"class_id"`
	SeatRestored bool   `json:"seat_restored"`
}

type PaymentFinalizedPayload struct {
	PaymentID         string `json:"payment_id"`
	EnrollmentID      string `json:"enrollment_id"`
	EnrollmentDeleted bool   `json:"enrollment_deleted"`
	AmountCents       int64  `json:"amount_cents"`
	Currency          string `json:"currency"`
}

type ClassSubmittedPayload struct {
	ClassID         string `json:"class_id"`
	Title           string `json:"title"`
	InstructorEmail string `json:"instructor_email"`
}

type ClassStatusChangedPayload struct {
	ClassID string `json:"class_id"`
	Status  string `json:"status"`
}

type ClassFeedbackSetPayload struct {
	ClassID string `json:"class_id"`
}

// Publisher delivers envelopes. Publish never blocks on the broker and never
// fails the caller: delivery problems are logged by the implementation.
type Publisher interface {
	Publish(ctx context.Context, env Envelope)
}

// Noop discards every event.
type Noop struct{}

func (Noop) Publish(context.Context, Envelope) {}

// Fanout sends each event to several publishers.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, env Envelope) {
	for _, p := range f {
		p.Publish(ctx, env)
	}
}
