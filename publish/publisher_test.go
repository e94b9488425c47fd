package publish

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"fleetxp/game/attribution"

	"github.com/segmentio/kafka-go"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func sampleAward() *attribution.Award {
	return &attribution.Award{
		EngagementID:  "5f1d7a3c-7c55-4d0e-9a43-2d5d0c4c6a11",
		CombatXP:      map[string]float64{"b": 100, "a": 200},
		TotalCombatXP: 300,
		NonCombatXP:   30,
		Civilians:     []string{"c1"},
	}
}

func TestPublishAward(t *testing.T) {
	w := &fakeWriter{}
	p := newPublisherWithWriter(w, w, nil)
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return at }

	if err := p.PublishAward(context.Background(), sampleAward()); err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	if len(w.msgs) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(w.msgs))
	}

	wantKeys := []string{"a", "b", "c1"}
	for i, msg := range w.msgs {
		if string(msg.Key) != wantKeys[i] {
			t.Fatalf("message %d: expected key %s, got %s", i, wantKeys[i], msg.Key)
		}
	}

	var last AwardEvent
	if err := json.Unmarshal(w.msgs[2].Value, &last); err != nil {
		t.Fatalf("decode event: %v", err)
	}
	if last.Source != SourceNonCombat || last.XP != 30 || !last.AwardedAt.Equal(at) {
		t.Fatalf("unexpected civilian event %+v", last)
	}

	if err := p.Close(); err != nil || !w.closed {
		t.Fatalf("close must reach the writer")
	}
}

func TestPublishAwardWrapsWriterError(t *testing.T) {
	boom := errors.New("broker down")
	p := newPublisherWithWriter(&fakeWriter{err: boom}, nil, nil)
	if err := p.PublishAward(context.Background(), sampleAward()); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped writer error, got %v", err)
	}
}

func TestDisabledPublisher(t *testing.T) {
	p, err := NewPublisher(Config{}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Enabled() {
		t.Fatalf("publisher without brokers must be disabled")
	}
	if err := p.PublishAward(context.Background(), sampleAward()); err != nil {
		t.Fatalf("disabled publish must be a no-op, got %v", err)
	}
	if _, err := NewPublisher(Config{Brokers: []string{"localhost:9092"}}, nil); err == nil {
		t.Fatalf("expected an error for a missing topic")
	}
}

func TestEventsSkipZeroCivilianBonus(t *testing.T) {
	award := sampleAward()
	award.NonCombatXP = 0
	if got := Events(award, time.Now()); len(got) != 2 {
		t.Fatalf("expected only combat events, got %d", len(got))
	}
	if Events(nil, time.Now()) != nil {
		t.Fatalf("nil award has no events")
	}
}
