package anchor

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"pharmaops/internal/platform/metrics"
	"pharmaops/pkg/domain"
)

const drainBatchSize = 50

// Worker drains the anchor outbox. Anchoring is strictly best-effort: a
// failed attempt is retried with backoff up to maxAttempts and then abandoned,
// and no outcome here ever touches the business tables that produced the
// intent.
type Worker struct {
	outbox       OutboxStore
	anchors      Store
	provider     Provider
	network      string
	pollInterval time.Duration
	maxAttempts  int
	logger       *slog.Logger
	metrics      *metrics.Metrics
	tracer       trace.Tracer
}

func NewWorker(
	outbox OutboxStore,
	anchors Store,
	provider Provider,
	network string,
	pollInterval time.Duration,
	maxAttempts int,
	logger *slog.Logger,
	m *metrics.Metrics,
) *Worker {
	return &Worker{
		outbox:       outbox,
		anchors:      anchors,
		provider:     provider,
		network:      network,
		pollInterval: pollInterval,
		maxAttempts:  maxAttempts,
		logger:       logger,
		metrics:      m,
		tracer:       otel.Tracer("pharmaops/anchor"),
	}
}

// Run polls until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.Drain(ctx)
		}
	}
}

// Drain processes one batch of due intents. Exported so tests and the seed
// command can flush the outbox without running the poll loop.
func (w *Worker) Drain(ctx context.Context) {
	intents, err := w.outbox.Due(ctx, time.Now(), drainBatchSize)
	if err != nil {
		w.logger.Error("anchor outbox poll failed", "error", err)
		return
	}
	for _, intent := range intents {
		w.process(ctx, intent)
	}
}

func (w *Worker) process(ctx context.Context, intent Intent) {
	ctx, span := w.tracer.Start(ctx, "anchor.process", trace.WithAttributes(
		attribute.String("anchor.kind", string(intent.Kind)),
		attribute.Int("anchor.attempts", intent.Attempts),
	))
	defer span.End()

	start := time.Now()
	txHash, err := w.submit(ctx, intent)
	elapsed := time.Since(start)

	if err != nil {
		w.metrics.ObserveAnchor(string(intent.Kind), "failure", elapsed)
		w.retryOrAbandon(ctx, intent, err)
		return
	}

	if intent.Kind == KindDocument && intent.DocumentID != nil {
		a := Anchor{
			ID:         domain.NewAnchorID(),
			DocumentID: *intent.DocumentID,
			TxHash:     txHash,
			Network:    w.network,
			AnchoredAt: time.Now(),
		}
		if err := w.anchors.Save(ctx, a); err != nil {
			w.logger.Error("anchor confirmed but not persisted", "txHash", txHash, "error", err)
			w.retryOrAbandon(ctx, intent, err)
			return
		}
	}

	if err := w.outbox.MarkDone(ctx, intent.ID); err != nil {
		w.logger.Error("anchor done but outbox not marked", "intentId", intent.ID, "error", err)
		return
	}

	w.metrics.ObserveAnchor(string(intent.Kind), "success", elapsed)
	w.logger.Info("anchored", "kind", intent.Kind, "txHash", txHash, "attempts", intent.Attempts+1)
}

func (w *Worker) submit(ctx context.Context, intent Intent) (string, error) {
	switch intent.Kind {
	case KindShipment:
		if intent.ShipmentID == nil {
			return "", errMalformedIntent
		}
		return w.provider.RecordShipment(ctx, *intent.ShipmentID, intent.EventType)
	default:
		if intent.DocumentID == nil {
			return "", errMalformedIntent
		}
		return w.provider.AnchorDocument(ctx, intent.PayloadHash, intent.Version)
	}
}

func (w *Worker) retryOrAbandon(ctx context.Context, intent Intent, cause error) {
	attempts := intent.Attempts + 1
	if attempts >= w.maxAttempts {
		w.logger.Error("anchor abandoned after max attempts",
			"intentId", intent.ID, "kind", intent.Kind, "attempts", attempts, "error", cause)
		w.metrics.ObserveAnchor(string(intent.Kind), "abandoned", 0)
		if err := w.outbox.MarkDone(ctx, intent.ID); err != nil {
			w.logger.Error("failed to retire abandoned intent", "intentId", intent.ID, "error", err)
		}
		return
	}

	next := time.Now().Add(backoff(attempts))
	w.logger.Warn("anchor attempt failed, rescheduling",
		"intentId", intent.ID, "kind", intent.Kind, "attempts", attempts, "nextAttempt", next, "error", cause)
	if err := w.outbox.Reschedule(ctx, intent.ID, attempts, next); err != nil {
		w.logger.Error("failed to reschedule intent", "intentId", intent.ID, "error", err)
	}
}

// backoff doubles per attempt: 2s, 4s, 8s, ...
func backoff(attempts int) time.Duration {
	d := 2 * time.Second
	for i := 1; i < attempts; i++ {
		d *= 2
		if d > 5*time.Minute {
			return 5 * time.Minute
		}
	}
	return d
}

var errMalformedIntent = errors.New("malformed anchor intent")
