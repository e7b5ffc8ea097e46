package amqp

import (
	"encoding/json"
	"time"
)

// PaymentPaidMessage announces that a pasanaco contribution was settled. The
// ledger worker debits the participant's linked account when it sees one.
type PaymentPaidMessage struct {
	PaymentID     int64     `json:"payment_id"`
	GroupID       int64     `json:"group_id"`
	ParticipantID int64     `json:"participant_id"`
	AmountCents   int64     `json:"amount_cents"`
	Month         int       `json:"month"`
	Year          int       `json:"year"`
	TransactionID string    `json:"transaction_id"`
	Timestamp     time.Time `json:"timestamp"`
}

// RoundAdvancedMessage announces that a group finished collecting a round and
// the payout is due to the recipient participant.
type RoundAdvancedMessage struct {
	GroupID                int64     `json:"group_id"`
	CompletedRound         int       `json:"completed_round"`
	RecipientParticipantID int64     `json:"recipient_participant_id"`
	PayoutCents            int64     `json:"payout_cents"`
	Timestamp              time.Time `json:"timestamp"`
}

// Envelope wraps every message on the wire with a type discriminator so one
// queue can carry both event kinds.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

const (
	TypePaymentPaid   = "payment_paid"
	TypeRoundAdvanced = "round_advanced"
)

func NewEnvelope(msgType string, payload any) (*Envelope, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Envelope{Type: msgType, Payload: body}, nil
}

func (e *Envelope) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// DecodePayload unmarshals the payload into the message struct matching Type.
func (e *Envelope) DecodePayload(v any) error {
	return json.Unmarshal(e.Payload, v)
}

func EnvelopeFromJSON(data []byte) (*Envelope, error) {
	var e Envelope
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
