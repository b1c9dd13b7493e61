package events

import (
	"encoding/json"
	"testing"
	"time"
)

func TestEventBus(t *testing.T) {
	bus := NewEventBus()

	var received *Event
	var callCount int

	bus.Subscribe(EventSessionStarted, func(event *Event) error {
		received = event
		callCount++
		return nil
	})

	payload := SessionEventPayload{
		SessionID:        7,
		WorkerID:         3,
		WorkerTelegramID: 100500,
		Position:         "Грузчик",
		StartedAt:        time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC),
	}
	if err := bus.PublishJSON(EventSessionStarted, payload); err != nil {
		t.Fatalf("PublishJSON failed: %v", err)
	}

	if callCount != 1 {
		t.Errorf("expected 1 call, got %d", callCount)
	}

	if received.Type != EventSessionStarted {
		t.Errorf("expected type %s, got %s", EventSessionStarted, received.Type)
	}

	var decoded SessionEventPayload
	if err := json.Unmarshal(received.Payload, &decoded); err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}

	if decoded.SessionID != 7 || decoded.Position != "Грузчик" {
		t.Errorf("unexpected payload: %+v", decoded)
	}
}

func TestEventBusMultipleSubscribers(t *testing.T) {
	bus := NewEventBus()
	var count1, count2 int

	bus.Subscribe("event", func(_ *Event) error { count1++; return nil })
	bus.Subscribe("event", func(_ *Event) error { count2++; return nil })

	bus.Publish(&Event{Type: "event"})

	if count1 != 1 || count2 != 1 {
		t.Errorf("expected both handlers to be called once, got %d and %d", count1, count2)
	}
}

func TestEventBusNoSubscribers(t *testing.T) {
	bus := NewEventBus()
	// Should not panic
	bus.Publish(&Event{Type: "unknown"})
	if err := bus.PublishJSON("unknown", nil); err != nil {
		t.Errorf("PublishJSON failed: %v", err)
	}
}

func TestEventBusNilReceiver(t *testing.T) {
	var bus *EventBus
	if err := bus.PublishJSON(EventSessionEnded, nil); err != nil {
		t.Errorf("nil bus should be a no-op, got %v", err)
	}
}
