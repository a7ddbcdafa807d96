package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/wagatehq/wagate/internal/media"
	"github.com/wagatehq/wagate/internal/metrics"
	"github.com/wagatehq/wagate/internal/models"
)

// Resolver turns a media id into a downloadable URL.
type Resolver interface {
	ResolveMediaURL(ctx context.Context, mediaID string) (string, error)
}

// Notifier fans a processed event out to registered subscribers.
type Notifier interface {
	Notify(ctx context.Context, event *models.Event)
}

// Alerter surfaces ops notifications for failed media tasks. Optional.
type Alerter interface {
	Send(ctx context.Context, subject, body string) error
}

const defaultMaxConcurrency = 8

// Processor is the webhook ingestion coordinator: it flattens an inbound
// event, schedules one classification task per message, joins all tasks,
// then triggers fan-out. Per-message failures are logged and swallowed;
// they never alter the top-level outcome.
type Processor struct {
	resolver       Resolver
	store          media.Saver
	notifier       Notifier
	alerter        Alerter
	maxConcurrency int
	logger         *slog.Logger
}

func NewProcessor(log *slog.Logger, resolver Resolver, store media.Saver, notifier Notifier, maxConcurrency int) *Processor {
	if log == nil {
		log = slog.Default()
	}
	if maxConcurrency <= 0 {
		maxConcurrency = defaultMaxConcurrency
	}
	return &Processor{
		resolver:       resolver,
		store:          store,
		notifier:       notifier,
		maxConcurrency: maxConcurrency,
		logger:         log.With(slog.String("service", "ingest")),
	}
}

// SetAlerter wires the optional ops alerter for media task failures.
func (p *Processor) SetAlerter(a Alerter) {
	p.alerter = a
}

// Handle processes one inbound event: statuses are logged in encounter
// order, message tasks run concurrently under the configured bound, and the
// call does not return before every task has completed. Fan-out happens
// exactly once after the join, regardless of per-message outcomes.
func (p *Processor) Handle(ctx context.Context, event *models.Event) error {
	log := p.logger.With(slog.String("ingest_id", uuid.NewString()))

	var msgs []models.Message
	for _, entry := range event.Entry {
		for _, change := range entry.Changes {
			for _, status := range change.Value.Statuses {
				log.Info("status update received",
					slog.String("message_id", status.ID),
					slog.String("status", status.Status),
					slog.String("recipient_id", status.RecipientID),
				)
			}
			msgs = append(msgs, change.Value.Messages...)
		}
	}

	if len(msgs) > 0 {
		sem := make(chan struct{}, p.maxConcurrency)
		var wg sync.WaitGroup
		for _, msg := range msgs {
			wg.Add(1)
			go func(msg models.Message) {
				defer wg.Done()
				defer func() {
					if r := recover(); r != nil {
						metrics.ProcessingErrors.Add(1)
						log.Error("message task panicked",
							slog.String("message_id", msg.ID),
							slog.Any("panic", r),
						)
					}
				}()
				sem <- struct{}{}
				defer func() { <-sem }()
				p.processMessage(ctx, log, msg)
			}(msg)
		}
		wg.Wait()
		log.Info("all message tasks completed", slog.Int("count", len(msgs)))
	}

	if p.notifier != nil {
		p.notifier.Notify(ctx, event)
	}
	return nil
}

// processMessage classifies one message and runs the matching routine.
// Failures are caught and logged here; nothing escapes to siblings or the
// enclosing webhook call.
func (p *Processor) processMessage(ctx context.Context, log *slog.Logger, msg models.Message) {
	metrics.MessagesReceived.Add(1)

	kind, ref := msg.Payload()
	switch kind {
	case models.KindText:
		body := "No body"
		if msg.Text != nil && msg.Text.Body != "" {
			body = msg.Text.Body
		}
		// Intentional no-op beyond logging; reply logic lives downstream.
		log.Info("text message received",
			slog.String("message_id", msg.ID),
			slog.String("from", msg.From),
			slog.String("body", body),
		)
	case models.KindImage, models.KindAudio, models.KindVideo, models.KindDocument:
		if ref.ID == "" {
			log.Warn("media message without id", slog.String("message_id", msg.ID))
			return
		}
		metrics.CountMediaReceived(kind)
		p.handleMedia(ctx, log, media.Task{
			MediaID:  ref.ID,
			Category: categoryFor(kind),
			MimeType: ref.MimeType,
			Filename: ref.Filename,
			Caption:  ref.Caption,
		})
	default:
		log.Warn("unhandled message type",
			slog.String("message_id", msg.ID),
			slog.String("type", msg.Type),
		)
	}
}

// handleMedia runs one media task: resolve the URL, then download and store
// the bytes. Either step failing aborts only this task.
func (p *Processor) handleMedia(ctx context.Context, log *slog.Logger, task media.Task) {
	log.Info("processing media message", slog.String("media_id", task.MediaID))

	url, err := p.resolver.ResolveMediaURL(ctx, task.MediaID)
	if err != nil {
		metrics.ProcessingErrors.Add(1)
		log.Error("failed to fetch media url",
			slog.String("media_id", task.MediaID),
			slog.Any("error", err),
		)
		p.alert(ctx, task.MediaID, err)
		return
	}

	path, err := p.store.Save(ctx, url, task)
	if err != nil {
		metrics.ProcessingErrors.Add(1)
		log.Error("failed to save media",
			slog.String("media_id", task.MediaID),
			slog.Any("error", err),
		)
		p.alert(ctx, task.MediaID, err)
		return
	}

	log.Info("media saved", slog.String("media_id", task.MediaID), slog.String("path", path))
	if task.Caption != "" {
		log.Info("message contains caption", slog.String("caption", task.Caption))
	}
}

func (p *Processor) alert(ctx context.Context, mediaID string, cause error) {
	if p.alerter == nil {
		return
	}
	subject := "wagate: media processing failure"
	body := fmt.Sprintf("media task failed for media_id %s: %v", mediaID, cause)
	if err := p.alerter.Send(ctx, subject, body); err != nil {
		p.logger.Warn("ops alert failed", slog.Any("error", err))
	}
}

// categoryFor maps a message kind to the media storage category. Audio
// keeps the original deployment's "voice" directory name.
func categoryFor(kind models.MessageKind) string {
	if kind == models.KindAudio {
		return "voice"
	}
	return string(kind)
}
