package amqp

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestExponentialBackoff(t *testing.T) {
	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{0, 1 * time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 16 * time.Second},
		{5, 30 * time.Second},  // capped at 30s
		{10, 30 * time.Second}, // capped at 30s
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("attempt_%d", tt.attempt), func(t *testing.T) {
			result := exponentialBackoff(tt.attempt)
			if result != tt.expected {
				t.Errorf("exponentialBackoff(%d) = %v, want %v", tt.attempt, result, tt.expected)
			}
		})
	}
}

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"connection refused", errors.New("connection refused"), true},
		{"closed connection", errors.New("connection closed"), true},
		{"EOF", errors.New("unexpected EOF"), true},
		{"broken pipe", errors.New("write: broken pipe"), true},
		{"unrelated error", errors.New("invalid month"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := isConnectionError(tt.err)
			if result != tt.expected {
				t.Errorf("isConnectionError(%v) = %v, want %v", tt.err, result, tt.expected)
			}
		})
	}
}

func TestEnvelopeRoundTrip(t *testing.T) {
	msg := &PaymentPaidMessage{
		PaymentID:     7,
		GroupID:       1,
		ParticipantID: 3,
		AmountCents:   10000,
		Month:         11,
		Year:          2024,
		TransactionID: "tx-abc",
		Timestamp:     time.Date(2024, 11, 5, 12, 0, 0, 0, time.UTC),
	}

	env, err := NewEnvelope(TypePaymentPaid, msg)
	if err != nil {
		t.Fatalf("NewEnvelope: %v", err)
	}
	body, err := env.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	got, err := EnvelopeFromJSON(body)
	if err != nil {
		t.Fatalf("EnvelopeFromJSON: %v", err)
	}
	if got.Type != TypePaymentPaid {
		t.Errorf("type = %q, want %q", got.Type, TypePaymentPaid)
	}

	var decoded PaymentPaidMessage
	if err := got.DecodePayload(&decoded); err != nil {
		t.Fatalf("DecodePayload: %v", err)
	}
	if decoded != *msg {
		t.Errorf("decoded = %+v, want %+v", decoded, *msg)
	}
}

func TestEnvelopeFromJSONInvalid(t *testing.T) {
	if _, err := EnvelopeFromJSON([]byte("not json")); err == nil {
		t.Error("expected error for invalid JSON")
	}
}
