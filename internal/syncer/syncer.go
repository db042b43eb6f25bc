// Package syncer drives resumable synchronization passes: fetch a bounded batch
// of messages after the account's checkpoint, parse and persist each one, then
// advance the checkpoint. One RunBatch call processes at most one batch and
// returns immediately with progress; callers loop until Completed.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/Revenn0/trackwatch/internal/mailbox"
	"github.com/Revenn0/trackwatch/internal/parser"
	"github.com/Revenn0/trackwatch/internal/store"
	"github.com/Revenn0/trackwatch/pkg/models"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// rawBodyLimit caps the audit copy of the message body stored on each alert.
const rawBodyLimit = 500

// Progress reports the outcome of one RunBatch call. Total is the number of
// messages pending after the checkpoint when the call started; Remaining is what
// is left after this batch.
type Progress struct {
	Total        int    `json:"total"`
	Processed    int    `json:"processed"`
	Remaining    int    `json:"remaining"`
	BatchSize    int    `json:"batch_size"`
	NewAlerts    int    `json:"new_alerts"`
	Completed    bool   `json:"completed"`
	ErrorSummary string `json:"error_summary,omitempty"`
}

// Orchestrator coordinates one account's ingestion. Accounts are independent:
// concurrent RunBatch calls for different accounts never contend.
type Orchestrator struct {
	store   store.Store
	source  mailbox.Source
	workers int
}

// New creates an Orchestrator with a bounded parse/persist worker pool.
func New(s store.Store, source mailbox.Source, workers int) *Orchestrator {
	if workers < 1 {
		workers = 1
	}
	return &Orchestrator{store: s, source: source, workers: workers}
}

// RunBatch executes one synchronization batch for the account: read checkpoint,
// fetch up to limit messages after it, parse and upsert each message, advance
// the checkpoint, and finalize a SyncRun audit row.
//
// A fetch failure aborts the call with the checkpoint untouched, so a retry
// resumes from the same point. An individual message's persistence failure is
// recorded in the error summary and does not stop the batch: the upsert is
// idempotent, so anything retried later is harmless.
func (o *Orchestrator) RunBatch(ctx context.Context, accountID uuid.UUID, limit int) (*Progress, error) {
	run := &models.SyncRun{
		ID:        uuid.New(),
		AccountID: accountID,
		StartedAt: time.Now().UTC(),
		Status:    models.SyncRunStatusRunning,
	}
	if err := o.store.CreateSyncRun(ctx, run); err != nil {
		return nil, fmt.Errorf("create sync run: %w", err)
	}

	marker := ""
	checkpoint, err := o.store.GetCheckpoint(ctx, accountID)
	switch {
	case err == nil:
		marker = checkpoint.LastMessageID
	case errors.Is(err, store.ErrNotFound):
		// First sync for this account; start from the beginning.
	default:
		o.finalizeError(ctx, run.ID, 0, 0, err)
		return nil, fmt.Errorf("read checkpoint: %w", err)
	}

	messages, totalPending, err := o.source.FetchSince(ctx, accountID, marker, limit)
	if err != nil {
		o.finalizeError(ctx, run.ID, 0, 0, err)
		return nil, fmt.Errorf("fetch messages: %w", err)
	}

	if len(messages) == 0 {
		o.finalize(ctx, run.ID, models.SyncRunStatusSuccess, 0, 0, nil)
		return &Progress{Total: totalPending, Remaining: totalPending, Completed: totalPending == 0}, nil
	}

	inserted, msgErrs := o.persistBatch(ctx, accountID, messages)

	// The batch was fully attempted: advance the checkpoint past it, even when
	// individual messages failed. A message that failed while its batch
	// advanced is permanently skipped; that tradeoff keeps the checkpoint
	// coarse and is surfaced through the error summary.
	last := messages[len(messages)-1]
	if err := o.store.AdvanceCheckpoint(ctx, accountID, last.ID, time.Now().UTC()); err != nil {
		o.finalizeError(ctx, run.ID, len(messages), inserted, err)
		return nil, fmt.Errorf("advance checkpoint: %w", err)
	}

	summary := joinErrors(msgErrs)
	var summaryPtr *string
	if summary != "" {
		summaryPtr = &summary
	}
	o.finalize(ctx, run.ID, models.SyncRunStatusSuccess, len(messages), inserted, summaryPtr)

	remaining := totalPending - len(messages)
	if remaining < 0 {
		remaining = 0
	}

	slog.Info("sync batch completed",
		"account_id", accountID,
		"batch_size", len(messages),
		"new_alerts", inserted,
		"remaining", remaining,
		"failed", len(msgErrs),
	)

	return &Progress{
		Total:        totalPending,
		Processed:    len(messages),
		Remaining:    remaining,
		BatchSize:    len(messages),
		NewAlerts:    inserted,
		Completed:    remaining == 0,
		ErrorSummary: summary,
	}, nil
}

// persistBatch parses and upserts every message on a bounded worker pool.
// Messages are independent, so ordering within the batch does not matter; each
// upsert is its own single-statement transaction so one bad row never blocks
// the others. Returns the number of newly inserted alerts and the per-message
// errors.
func (o *Orchestrator) persistBatch(ctx context.Context, accountID uuid.UUID, messages []models.Message) (int, []string) {
	var (
		mu       sync.Mutex
		inserted int
		msgErrs  []string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)

	for _, msg := range messages {
		g.Go(func() error {
			alert := buildAlert(accountID, msg)
			ok, err := o.store.UpsertAlert(gctx, alert)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				msgErrs = append(msgErrs, fmt.Sprintf("%s: %v", msg.ID, err))
				slog.Warn("alert persist failed", "account_id", accountID, "message_id", msg.ID, "error", err)
				return nil
			}
			if ok {
				inserted++
			}
			return nil
		})
	}

	// Workers never return errors; Wait is only a join point.
	_ = g.Wait()

	return inserted, msgErrs
}

// buildAlert turns one raw message into a persistable alert record.
func buildAlert(accountID uuid.UUID, msg models.Message) *models.Alert {
	fields := parser.Parse(msg.Body)

	return &models.Alert{
		ID:              uuid.New(),
		AccountID:       accountID,
		SourceMessageID: msg.ID,
		AlertType:       parser.Categorize(fields.AlertType),
		AlertTime:       fields.AlertTime,
		Location:        fields.Location,
		Latitude:        fields.Latitude,
		Longitude:       fields.Longitude,
		DeviceSerial:    fields.DeviceSerial,
		DeviceName:      fields.DeviceName,
		AccountName:     fields.AccountName,
		RawBody:         truncateString(msg.Body, rawBodyLimit),
		CreatedAt:       time.Now().UTC(),
	}
}

func (o *Orchestrator) finalize(ctx context.Context, runID uuid.UUID, status string, messagesRead, recordsNew int, errorSummary *string) {
	if err := o.store.FinalizeSyncRun(ctx, runID, status, messagesRead, recordsNew, errorSummary); err != nil {
		slog.Error("finalize sync run failed", "run_id", runID, "error", err)
	}
}

func (o *Orchestrator) finalizeError(ctx context.Context, runID uuid.UUID, messagesRead, recordsNew int, cause error) {
	summary := cause.Error()
	o.finalize(ctx, runID, models.SyncRunStatusError, messagesRead, recordsNew, &summary)
}

func joinErrors(errs []string) string {
	return strings.Join(errs, "; ")
}

// truncateString truncates s to maxBytes without splitting UTF-8 runes.
func truncateString(s string, maxBytes int) string {
	if len(s) <= maxBytes {
		return s
	}
	for maxBytes > 0 && !utf8.RuneStart(s[maxBytes]) {
		maxBytes--
	}
	return s[:maxBytes]
}
