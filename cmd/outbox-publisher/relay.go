package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/noorvia/noorvia-backend/pkg/config"
	"github.com/noorvia/noorvia-backend/pkg/db/models"
	"github.com/noorvia/noorvia-backend/pkg/logger"
	"github.com/noorvia/noorvia-backend/pkg/outbox"
	"github.com/noorvia/noorvia-backend/pkg/outbox/registry"
)

const (
	publishTimeout = 15 * time.Second
	maxPause       = 30 * time.Second
)

type dbClient interface {
	Ping(context.Context) error
	WithTx(context.Context, func(tx *gorm.DB) error) error
}

type pubSubClient interface {
	Ping(context.Context) error
	Publisher(name string) *gcppubsub.Publisher
}

type outboxStore interface {
	FetchUnpublishedForPublish(tx *gorm.DB, limit, maxAttempts int) ([]models.OutboxEvent, error)
	MarkPublishedTx(tx *gorm.DB, id uuid.UUID) error
	MarkFailedTx(tx *gorm.DB, id uuid.UUID, err error) error
	MarkTerminalTx(tx *gorm.DB, id uuid.UUID, err error, terminalAttempts int) error
}

type relayMetrics interface {
	ObserveBatch(time.Duration)
	IncPublished(eventType string)
	IncFailure(eventType string)
}

type eventResolver interface {
	Resolve(models.OutboxEvent) (*registry.ResolvedEvent, error)
}

// topicPublisher is the slice of *pubsub.Publisher the relay needs. Orders are
// published with their id as ordering key, so a failed publish pauses that key
// until ResumePublish is called.
type topicPublisher interface {
	Publish(ctx context.Context, msg *gcppubsub.Message) *gcppubsub.PublishResult
	ResumePublish(orderingKey string)
}

type relayParams struct {
	Config    *config.Config
	Logger    *logger.Logger
	DB        dbClient
	PubSub    pubSubClient
	Store     outboxStore
	Events    eventResolver
	Metrics   relayMetrics
	Publisher func(topic string) topicPublisher
	// Await reads the server id from a publish result. Tests swap it out.
	Await func(context.Context, *gcppubsub.PublishResult) (string, error)
}

// relay drains the outbox table onto the order events topic. Events for the
// same order leave in the order they were written.
type relay struct {
	cfg        config.OutboxConfig
	logg       *logger.Logger
	db         dbClient
	pubsub     pubSubClient
	store      outboxStore
	events     eventResolver
	metrics    relayMetrics
	publisher  func(topic string) topicPublisher
	await      func(context.Context, *gcppubsub.PublishResult) (string, error)
	publishers map[string]topicPublisher
}

// batchStats reports what one drain pass did.
type batchStats struct {
	fetched   int
	published int
	parked    int
	retrying  int
	held      int
}

func (s batchStats) progressed() bool {
	return s.published+s.parked+s.retrying > 0
}

func newRelay(p relayParams) (*relay, error) {
	switch {
	case p.Config == nil:
		return nil, errors.New("config is required")
	case p.Logger == nil:
		return nil, errors.New("logger is required")
	case p.DB == nil:
		return nil, errors.New("database is required")
	case p.PubSub == nil:
		return nil, errors.New("pubsub client is required")
	case p.Store == nil:
		return nil, errors.New("outbox store is required")
	case p.Events == nil:
		return nil, errors.New("event registry is required")
	}

	cfg := p.Config.Outbox
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 10
	}

	r := &relay{
		cfg:        cfg,
		logg:       p.Logger,
		db:         p.DB,
		pubsub:     p.PubSub,
		store:      p.Store,
		events:     p.Events,
		metrics:    p.Metrics,
		publisher:  p.Publisher,
		await:      p.Await,
		publishers: make(map[string]topicPublisher),
	}
	if r.publisher == nil {
		r.publisher = r.orderedPublisher
	}
	if r.await == nil {
		r.await = func(ctx context.Context, res *gcppubsub.PublishResult) (string, error) {
			return res.Get(ctx)
		}
	}
	return r, nil
}

func (r *relay) orderedPublisher(topic string) topicPublisher {
	pub := r.pubsub.Publisher(topic)
	if pub == nil {
		return nil
	}
	pub.EnableMessageOrdering = true
	return pub
}

// run drains until ctx is cancelled. A full batch is followed straight away by
// the next one; an idle pass waits one poll interval and failures back off.
func (r *relay) run(ctx context.Context) error {
	if err := r.db.Ping(ctx); err != nil {
		return fmt.Errorf("database not ready: %w", err)
	}
	if err := r.pubsub.Ping(ctx); err != nil {
		return fmt.Errorf("pubsub not ready: %w", err)
	}

	failures := 0
	for {
		stats, err := r.drain(ctx)
		wait := r.cfg.PollInterval()
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return ctx.Err()
			}
			failures++
			wait = r.pause(failures)
			r.logg.Error(r.logg.WithFields(ctx, map[string]any{
				"consecutive_failures": failures,
				"retry_in":             wait.String(),
			}), "outbox drain failed", err)
		case stats.fetched == r.cfg.BatchSize && stats.progressed():
			failures = 0
			if ctx.Err() != nil {
				return ctx.Err()
			}
			continue
		default:
			failures = 0
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// pause doubles the poll interval per consecutive failure, capped at maxPause.
func (r *relay) pause(failures int) time.Duration {
	wait := r.cfg.PollInterval()
	for i := 0; i < failures && wait < maxPause; i++ {
		wait *= 2
	}
	if wait > maxPause {
		return maxPause
	}
	return wait
}

// drain publishes one batch inside a transaction so the row locks last until
// each row is marked. Once an order has a retryable failure its later events
// in the batch are held back and picked up on a later pass.
func (r *relay) drain(ctx context.Context) (batchStats, error) {
	var stats batchStats
	start := time.Now()

	err := r.db.WithTx(ctx, func(tx *gorm.DB) error {
		rows, err := r.store.FetchUnpublishedForPublish(tx, r.cfg.BatchSize, r.cfg.MaxAttempts)
		if err != nil {
			return fmt.Errorf("fetch outbox rows: %w", err)
		}
		stats.fetched = len(rows)

		stalled := make(map[uuid.UUID]struct{})
		for _, row := range rows {
			if _, held := stalled[row.AggregateID]; held {
				stats.held++
				continue
			}
			result, err := r.deliver(ctx, tx, row)
			if err != nil {
				return err
			}
			switch result {
			case outcomePublished:
				stats.published++
			case outcomeParked:
				stats.parked++
			case outcomeRetry:
				stats.retrying++
				stalled[row.AggregateID] = struct{}{}
			}
		}
		return nil
	})

	if stats.fetched > 0 && r.metrics != nil {
		r.metrics.ObserveBatch(time.Since(start))
	}
	if stats.fetched > 0 {
		r.logg.Info(r.logg.WithFields(ctx, map[string]any{
			"fetched":   stats.fetched,
			"published": stats.published,
			"parked":    stats.parked,
			"retrying":  stats.retrying,
			"held":      stats.held,
		}), "outbox batch drained")
	}
	return stats, err
}

type outcome int

const (
	outcomePublished outcome = iota
	outcomeParked
	outcomeRetry
)

// deliver publishes one row and records the result. The returned error is
// only set when the row state could not be written.
func (r *relay) deliver(ctx context.Context, tx *gorm.DB, row models.OutboxEvent) (outcome, error) {
	eventType := string(row.EventType)
	ctx = r.logg.WithFields(ctx, map[string]any{
		"event_id":   row.ID.String(),
		"event_type": eventType,
		"order_id":   row.AggregateID.String(),
	})

	resolved, err := r.events.Resolve(row)
	if err != nil {
		var nonRetryable registry.NonRetryableError
		if errors.As(err, &nonRetryable) {
			return outcomeParked, r.park(ctx, tx, row, err, "undeliverable")
		}
		return r.retryOrPark(ctx, tx, row, err)
	}

	msg, err := orderMessage(row, resolved)
	if err != nil {
		return outcomeParked, r.park(ctx, tx, row, err, "undeliverable")
	}

	pub := r.publisherFor(resolved.Descriptor.Topic)
	if pub == nil {
		return r.retryOrPark(ctx, tx, row, fmt.Errorf("no publisher for topic %q", resolved.Descriptor.Topic))
	}

	publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	serverID, err := r.await(publishCtx, pub.Publish(publishCtx, msg))
	cancel()
	if err != nil {
		pub.ResumePublish(msg.OrderingKey)
		return r.retryOrPark(ctx, tx, row, fmt.Errorf("publish to %s: %w", resolved.Descriptor.Topic, err))
	}

	if err := r.store.MarkPublishedTx(tx, row.ID); err != nil {
		return outcomePublished, fmt.Errorf("mark %s published: %w", row.ID, err)
	}
	if r.metrics != nil {
		r.metrics.IncPublished(eventType)
	}
	r.logg.Info(r.logg.WithField(ctx, "message_id", serverID), "order event published")
	return outcomePublished, nil
}

func (r *relay) publisherFor(topic string) topicPublisher {
	if pub, ok := r.publishers[topic]; ok {
		return pub
	}
	pub := r.publisher(topic)
	if pub != nil {
		r.publishers[topic] = pub
	}
	return pub
}

// retryOrPark counts a failed attempt, parking the row once it would reach
// the attempt ceiling.
func (r *relay) retryOrPark(ctx context.Context, tx *gorm.DB, row models.OutboxEvent, cause error) (outcome, error) {
	if row.AttemptCount+1 >= r.cfg.MaxAttempts {
		return outcomeParked, r.park(ctx, tx, row, cause, "attempts exhausted")
	}
	if r.metrics != nil {
		r.metrics.IncFailure(string(row.EventType))
	}
	r.logg.Warn(r.logg.WithField(ctx, "attempt", row.AttemptCount+1), "order event publish failed: "+cause.Error())
	if err := r.store.MarkFailedTx(tx, row.ID, cause); err != nil {
		return outcomeRetry, fmt.Errorf("mark %s failed: %w", row.ID, err)
	}
	return outcomeRetry, nil
}

func (r *relay) park(ctx context.Context, tx *gorm.DB, row models.OutboxEvent, cause error, reason string) error {
	if r.metrics != nil {
		r.metrics.IncFailure(string(row.EventType))
	}
	r.logg.Error(r.logg.WithField(ctx, "park_reason", reason), "order event parked", cause)
	if err := r.store.MarkTerminalTx(tx, row.ID, cause, r.cfg.MaxAttempts); err != nil {
		return fmt.Errorf("park %s: %w", row.ID, err)
	}
	return nil
}

// orderMessage builds the Pub/Sub message for an order event. The body is the
// stored envelope; attributes let subscribers filter on order state without
// decoding it.
func orderMessage(row models.OutboxEvent, resolved *registry.ResolvedEvent) (*gcppubsub.Message, error) {
	attrs := map[string]string{
		"event_id":    row.ID.String(),
		"event_type":  string(row.EventType),
		"order_id":    row.AggregateID.String(),
		"occurred_at": resolved.Envelope.OccurredAt.UTC().Format(time.RFC3339Nano),
		"version":     fmt.Sprintf("%d", resolved.Envelope.Version),
	}
	if id := resolved.Envelope.CorrelationID; id != "" {
		attrs["correlation_id"] = id
	}

	switch payload := resolved.Payload.(type) {
	case *outbox.OrderPlacedEvent:
		if payload.OrderID != row.AggregateID {
			return nil, fmt.Errorf("payload order %s does not match row order %s", payload.OrderID, row.AggregateID)
		}
		attrs["user_id"] = payload.UserID.String()
		attrs["order_status"] = payload.Status.String()
		attrs["total_price"] = payload.TotalPrice.StringFixed(2)
	case *outbox.OrderStatusChangedEvent:
		if payload.OrderID != row.AggregateID {
			return nil, fmt.Errorf("payload order %s does not match row order %s", payload.OrderID, row.AggregateID)
		}
		attrs["user_id"] = payload.UserID.String()
		attrs["order_status"] = payload.To.String()
		attrs["previous_status"] = payload.From.String()
	default:
		return nil, fmt.Errorf("no message shape for %s", row.EventType)
	}

	return &gcppubsub.Message{
		Data:        row.Payload,
		Attributes:  attrs,
		OrderingKey: row.AggregateID.String(),
	}, nil
}
