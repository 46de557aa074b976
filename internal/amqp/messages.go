package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Message kinds carried on the shared queue.
const (
	KindSnapshotRequest = "snapshot.request"
	KindExpenseExport   = "expense.export"
)

// Envelope wraps every message so one queue can carry both kinds.
type Envelope struct {
	Kind      string          `json:"kind"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// SnapshotRequestMessage asks the worker to recompute a user's net worth.
type SnapshotRequestMessage struct {
	UserID string `json:"user_id"`
}

// ExpenseExportMessage carries only the expense ID, the worker fetches
// the full row from the database before exporting.
type ExpenseExportMessage struct {
	ID uuid.UUID `json:"id"`
}

func newEnvelope(kind string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return json.Marshal(Envelope{
		Kind:      kind,
		Timestamp: time.Now(),
		Payload:   body,
	})
}

// EnvelopeFromJSON decodes a raw delivery body.
func EnvelopeFromJSON(data []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	if env.Kind == "" {
		return nil, fmt.Errorf("envelope missing kind")
	}
	return &env, nil
}

// Decode unmarshals the payload into dst.
func (e *Envelope) Decode(dst any) error {
	return json.Unmarshal(e.Payload, dst)
}
