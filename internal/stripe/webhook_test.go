package stripe

import (
	"errors"
	"testing"
	"time"
)

const webhookSecret = "whsec_test"

var eventPayload = []byte(`{
	"id": "evt_1",
	"type": "payment_intent.succeeded",
	"data": {"object": {"id": "pi_1", "amount_received": 5000, "currency": "usd", "metadata": {"referral_code": "ABCD1234"}}}
}`)

func TestConstructEvent_ValidSignature(t *testing.T) {
	sig := SignPayload(eventPayload, webhookSecret, time.Now())

	event, err := ConstructEvent(eventPayload, sig, webhookSecret)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if event.Type != "payment_intent.succeeded" {
		t.Errorf("type %q", event.Type)
	}

	intent, err := event.PaymentIntent()
	if err != nil {
		t.Fatal(err)
	}
	if intent.AmountReceived != 5000 {
		t.Errorf("amount %d, want 5000", intent.AmountReceived)
	}
	if intent.Metadata["referral_code"] != "ABCD1234" {
		t.Errorf("metadata %+v", intent.Metadata)
	}
}

func TestConstructEvent_WrongSecret(t *testing.T) {
	sig := SignPayload(eventPayload, "whsec_other", time.Now())

	if _, err := ConstructEvent(eventPayload, sig, webhookSecret); !errors.Is(err, ErrInvalidSignature) {
		t.Errorf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestConstructEvent_TamperedPayload(t *testing.T) {
	sig := SignPayload(eventPayload, webhookSecret, time.Now())

	tampered := append([]byte{}, eventPayload...)
	tampered[len(tampered)-2] = ' '
	if _, err := ConstructEvent(tampered, sig, webhookSecret); !errors.Is(err, ErrInvalidSignature) {
		t.Errorf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestConstructEvent_StaleTimestamp(t *testing.T) {
	sig := SignPayload(eventPayload, webhookSecret, time.Now().Add(-10*time.Minute))

	if _, err := ConstructEvent(eventPayload, sig, webhookSecret); !errors.Is(err, ErrStaleTimestamp) {
		t.Errorf("expected ErrStaleTimestamp, got %v", err)
	}
}

func TestConstructEvent_MalformedHeader(t *testing.T) {
	for _, header := range []string{"", "t=abc,v1=def", "v1=deadbeef", "t=123"} {
		if _, err := ConstructEvent(eventPayload, header, webhookSecret); err == nil {
			t.Errorf("header %q accepted", header)
		}
	}
}
