package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/nurturelink/consult-api/internal/model"
	"github.com/nurturelink/consult-api/internal/repository"

	"github.com/nurturelink/consult-api/pkg/logger"
	"github.com/nurturelink/consult-api/pkg/messaging"
	"github.com/nurturelink/consult-api/pkg/metrics"
	"github.com/nurturelink/consult-api/pkg/storage"
)

type OutboxProcessorConfig struct {
	BatchSize     int
	PollInterval  time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
	Retention     time.Duration
}

// OutboxProcessor drains the outbox table: link upserts and storage
// deletes are applied directly, everything else is published to the
// broker. Events that keep failing past RetryAttempts move to FAILED.
type OutboxProcessor struct {
	repo     repository.OutboxRepository
	linkRepo repository.LinkRepository
	store    storage.ObjectStore
	broker   messaging.Broker
	config   OutboxProcessorConfig
	logger   *logger.Logger
	metrics  *metrics.Metrics
}

func NewOutboxProcessor(
	repo repository.OutboxRepository,
	linkRepo repository.LinkRepository,
	store storage.ObjectStore,
	broker messaging.Broker,
	config OutboxProcessorConfig,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *OutboxProcessor {
	if config.BatchSize <= 0 {
		config.BatchSize = 50
	}
	if config.PollInterval <= 0 {
		config.PollInterval = 5 * time.Second
	}
	if config.RetryAttempts <= 0 {
		config.RetryAttempts = 3
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = 30 * time.Second
	}

	return &OutboxProcessor{
		repo:     repo,
		linkRepo: linkRepo,
		store:    store,
		broker:   broker,
		config:   config,
		logger:   logger,
		metrics:  metrics,
	}
}

func (p *OutboxProcessor) Start(ctx context.Context) {
	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	cleanup := time.NewTicker(time.Hour)
	defer cleanup.Stop()

	p.logger.Info("Starting outbox processor")

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Shutting down outbox processor")
			return
		case <-ticker.C:
			if err := p.processEvents(ctx); err != nil {
				p.logger.Error(err, "Failed to process events")
			}
		case <-cleanup.C:
			p.cleanupProcessed(ctx)
		}
	}
}

func (p *OutboxProcessor) processEvents(ctx context.Context) error {
	timer := prometheus.NewTimer(p.metrics.OutboxProcessingLatency)
	defer timer.ObserveDuration()

	events, err := p.repo.GetPendingEvents(ctx, p.config.BatchSize)
	if err != nil {
		p.metrics.DatabaseOperations.WithLabelValues("get_pending_events", "error").Inc()
		return fmt.Errorf("failed to get pending events: %w", err)
	}
	p.metrics.DatabaseOperations.WithLabelValues("get_pending_events", "success").Inc()

	for _, event := range events {
		if err := p.processEvent(ctx, event); err != nil {
			p.logger.Error(err, "Failed to process event",
				"event_id", event.ID.String(),
				"event_type", event.EventType)
		}
	}
	return nil
}

func (p *OutboxProcessor) processEvent(ctx context.Context, event *model.OutboxEvent) error {
	err := p.dispatch(ctx, event)
	if err == nil {
		p.metrics.OutboxEventsProcessed.Inc()
		return p.repo.MarkProcessed(ctx, event.ID)
	}

	p.metrics.OutboxEventsFailed.Inc()
	p.metrics.OutboxRetries.WithLabelValues(event.EventType).Inc()

	var retryAt *time.Time
	if event.RetryCount+1 < p.config.RetryAttempts {
		t := time.Now().Add(p.config.RetryDelay)
		retryAt = &t
	}
	if markErr := p.repo.MarkFailed(ctx, event.ID, err.Error(), retryAt); markErr != nil {
		p.logger.Error(markErr, "Failed to update event status", "event_id", event.ID.String())
	}
	return err
}

func (p *OutboxProcessor) dispatch(ctx context.Context, event *model.OutboxEvent) error {
	switch event.EventType {
	case model.EventTypeLinkUpsert:
		var payload model.LinkUpsertPayload
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			return fmt.Errorf("malformed link payload: %w", err)
		}
		_, err := p.linkRepo.Upsert(ctx, &model.ExpertChildLink{
			ExpertID:     payload.ExpertID,
			ChildID:      payload.ChildID,
			ParentUserID: payload.ParentUserID,
		})
		return err

	case model.EventTypeStorageDelete:
		var payload model.StorageDeletePayload
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			return fmt.Errorf("malformed storage payload: %w", err)
		}
		return p.store.Delete(ctx, payload.Key)

	default:
		return p.broker.Publish(ctx, event.EventType, &messaging.Message{
			Type:    event.EventType,
			Payload: event.Payload,
		})
	}
}

func (p *OutboxProcessor) cleanupProcessed(ctx context.Context) {
	if p.config.Retention <= 0 {
		return
	}
	n, err := p.repo.DeleteProcessedBefore(ctx, time.Now().Add(-p.config.Retention))
	if err != nil {
		p.logger.Error(err, "Failed to clean up processed events")
		return
	}
	if n > 0 {
		p.logger.Info("Cleaned up processed outbox events", "count", n)
	}
}
