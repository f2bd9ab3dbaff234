package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/sheikh-saqib/financial-statements-engine/internal/models/events"
)

// Invalidator drops everything cached for a scope.
type Invalidator interface {
	Invalidate(ctx context.Context, scope string) error
}

// Consumer reads invalidation events and evicts the affected scope.
type Consumer struct {
	reader      *kafka.Reader
	invalidator Invalidator
	log         *zap.Logger
}

func NewConsumer(brokers []string, topic, groupID string, invalidator Invalidator, log *zap.Logger) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers: brokers,
			Topic:   topic,
			GroupID: groupID,
		}),
		invalidator: invalidator,
		log:         log,
	}
}

// Run blocks until ctx is done. Undecodable messages are logged and skipped.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		m, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			c.log.Error("kafka read failed", zap.Error(err))
			continue
		}
		if err := c.handle(ctx, m.Value); err != nil {
			c.log.Warn("invalidation event dropped",
				zap.Int64("offset", m.Offset),
				zap.Error(err))
		}
	}
}

func (c *Consumer) handle(ctx context.Context, value []byte) error {
	var env events.Envelope
	if err := json.Unmarshal(value, &env); err != nil {
		return fmt.Errorf("decode event: %w", err)
	}
	switch env.Type {
	case events.TypeLedgerIngested, events.TypeStructureUpdated:
	default:
		return fmt.Errorf("unknown event type %q", env.Type)
	}
	if env.Scope == "" {
		return fmt.Errorf("event %s has no scope", env.EventID)
	}

	if err := c.invalidator.Invalidate(ctx, env.Scope); err != nil {
		return fmt.Errorf("invalidate %s: %w", env.Scope, err)
	}
	c.log.Info("cache invalidated",
		zap.String("scope", env.Scope),
		zap.String("event_type", env.Type),
		zap.String("event_id", env.EventID))
	return nil
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
