package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"pharmaops/internal/platform/metrics"
	"pharmaops/pkg/domain"
)

// Recorder appends audit entries with fail-closed semantics: if the entry
// cannot be persisted, the error propagates and the enclosing operation must
// abort. The spec tolerates no silent loss of audit records.
type Recorder struct {
	store   Store
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewRecorder(store Store, logger *slog.Logger, m *metrics.Metrics) *Recorder {
	return &Recorder{store: store, logger: logger, metrics: m}
}

// Record appends one entry. Called inside the same transaction as the state
// mutation it describes; the store joins that transaction via ctx.
func (r *Recorder) Record(ctx context.Context, actor *domain.UserID, action Action, details map[string]any) error {
	if action == "" {
		return fmt.Errorf("audit entry requires an action")
	}

	entry := Entry{
		ID:        domain.NewEntryID(),
		Action:    action,
		ActorID:   actor,
		Details:   details,
		CreatedAt: time.Now(),
	}

	if err := r.store.Append(ctx, entry); err != nil {
		if r.logger != nil {
			r.logger.ErrorContext(ctx, "CRITICAL: audit append failed",
				"action", action,
				"error", err,
			)
		}
		return fmt.Errorf("audit persistence failed: %w", err)
	}

	r.metrics.ObserveAuditEntry(string(action))
	return nil
}

// Query returns entries matching the filter, newest first.
func (r *Recorder) Query(ctx context.Context, filter Filter) ([]Entry, error) {
	return r.store.Query(ctx, filter)
}
