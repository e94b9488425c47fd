package publish

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"fleetxp/game/attribution"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	SourceCombat    = "combat"
	SourceNonCombat = "non_combat"
)

// AwardEvent is published once per ship that received XP in an engagement.
type AwardEvent struct {
	EngagementID string    `json:"engagement_id"`
	MemberID     string    `json:"member_id"`
	XP           float64   `json:"xp"`
	Source       string    `json:"source"`
	AwardedAt    time.Time `json:"awarded_at"`
}

type Config struct {
	Brokers []string
	Topic   string
}

type kafkaMessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type kafkaWriteCloser interface {
	Close() error
}

// Publisher writes award events to kafka. With no brokers configured it is
// disabled and every publish is a no-op.
type Publisher struct {
	writer kafkaMessageWriter
	closer kafkaWriteCloser
	log    *zap.Logger
	now    func() time.Time
}

func NewPublisher(cfg Config, log *zap.Logger) (*Publisher, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if len(cfg.Brokers) == 0 {
		log.Info("award publisher disabled, no kafka brokers configured")
		return &Publisher{log: log, now: time.Now}, nil
	}
	if strings.TrimSpace(cfg.Topic) == "" {
		return nil, errors.New("kafka topic must not be empty")
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: false,
	}
	log.Info("award publisher enabled", zap.Strings("brokers", cfg.Brokers), zap.String("topic", cfg.Topic))
	return newPublisherWithWriter(w, w, log), nil
}

func newPublisherWithWriter(writer kafkaMessageWriter, closer kafkaWriteCloser, log *zap.Logger) *Publisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Publisher{writer: writer, closer: closer, log: log, now: time.Now}
}

func (p *Publisher) Enabled() bool {
	return p != nil && p.writer != nil
}

// Events expands an award into one event per paid ship, combat first.
func Events(award *attribution.Award, at time.Time) []AwardEvent {
	if award == nil {
		return nil
	}
	events := make([]AwardEvent, 0, len(award.CombatXP)+len(award.Civilians))
	for _, id := range award.ContributorIDs() {
		events = append(events, AwardEvent{
			EngagementID: award.EngagementID,
			MemberID:     id,
			XP:           award.CombatXP[id],
			Source:       SourceCombat,
			AwardedAt:    at,
		})
	}
	if award.NonCombatXP > 0 {
		for _, id := range award.Civilians {
			events = append(events, AwardEvent{
				EngagementID: award.EngagementID,
				MemberID:     id,
				XP:           award.NonCombatXP,
				Source:       SourceNonCombat,
				AwardedAt:    at,
			})
		}
	}
	return events
}

// PublishAward writes every event of the award in one batch keyed by member id.
func (p *Publisher) PublishAward(ctx context.Context, award *attribution.Award) error {
	if !p.Enabled() {
		return nil
	}
	events := Events(award, p.now().UTC())
	if len(events) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, 0, len(events))
	for _, ev := range events {
		value, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("encode award event: %w", err)
		}
		msgs = append(msgs, kafka.Message{Key: []byte(ev.MemberID), Value: value})
	}
	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish award %s: %w", award.EngagementID, err)
	}
	p.log.Debug("award published", zap.String("engagement", award.EngagementID), zap.Int("events", len(msgs)))
	return nil
}

func (p *Publisher) Close() error {
	if p == nil || p.closer == nil {
		return nil
	}
	return p.closer.Close()
}
