package server

import (
	"encoding/json"
	"testing"
)

func TestBrokerKeyedByGame(t *testing.T) {
	b := NewBroker()
	g1 := b.Subscribe("g1")
	g2 := b.Subscribe("g2")

	b.Publish("g1", LiveEvent{Type: "cursor_moved", GameID: "g1", CycleIndex: 3})

	select {
	case data := <-g1:
		var ev LiveEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			t.Fatalf("decoding: %v", err)
		}
		if ev.CycleIndex != 3 {
			t.Errorf("cycleIndex = %d, want 3", ev.CycleIndex)
		}
	default:
		t.Fatal("g1 subscriber got nothing")
	}
	select {
	case <-g2:
		t.Error("g2 subscriber got g1's event")
	default:
	}

	b.Unsubscribe("g1", g1)
	if n := b.Subscribers("g1"); n != 0 {
		t.Errorf("g1 subscribers = %d, want 0", n)
	}
	if n := b.Subscribers("g2"); n != 1 {
		t.Errorf("g2 subscribers = %d, want 1", n)
	}
}

func TestBrokerDropsForSlowSubscriber(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe("g")
	for i := 0; i < cap(ch)+5; i++ {
		b.Publish("g", LiveEvent{Type: "x"})
	}
	if len(ch) != cap(ch) {
		t.Errorf("buffered %d, want %d", len(ch), cap(ch))
	}
}
