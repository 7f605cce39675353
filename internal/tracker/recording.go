package tracker

import (
	"context"
	"log/slog"
	"time"

	"github.com/stacklok/milestone-tracker/internal/status"
)

// Acknowledge is called by the presentation layer once the user has seen the celebration.
// Recording is idempotent on the backend, so it is simply issued again. Identities this
// process did not dispatch and the ledger does not know are refused.
func (t *Tracker) Acknowledge(ctx context.Context, identity string) bool {
	if identity == "" {
		return false
	}

	t.mu.Lock()
	closed := t.closed
	_, dispatched := t.completed[identity]
	t.mu.Unlock()
	if closed {
		return false
	}

	// Only celebrations dispatched here or known to the ledger can be acknowledged
	entry := t.loadEntry(ctx, identity)
	if entry == nil {
		if !dispatched {
			slog.Warn("Ignoring acknowledgement for a celebration that was not dispatched", "identity", identity)
			return false
		}
		entry = &status.DispatchEntry{Identity: identity}
	}

	recorded := t.recorder.RecordCompleted(ctx, identity)
	t.applyRecordResult(entry, recorded, status.DispatchPhaseAcknowledged)
	t.saveEntry(ctx, entry)

	if !recorded {
		slog.Warn("Failed to record acknowledged milestone celebration", "identity", identity)
	}
	return recorded
}

// ReconcilePending retries recordings the ledger shows as unfinished, typically left by a
// previous process. It returns how many were recorded.
func (t *Tracker) ReconcilePending(ctx context.Context) int {
	if t.ledger == nil {
		return 0
	}

	entries, err := t.ledger.LoadAllEntries(ctx)
	if err != nil {
		slog.Error("Failed to load dispatch ledger", "error", err)
		return 0
	}

	reconciled := 0
	for identity, entry := range entries {
		if !entry.NeedsRecording() {
			continue
		}

		recorded := t.recorder.RecordCompleted(ctx, identity)
		t.applyRecordResult(entry, recorded, status.DispatchPhaseRecorded)
		t.saveEntry(ctx, entry)

		if recorded {
			reconciled++
		}
		slog.Info("Reconciled pending milestone recording",
			"identity", identity,
			"recorded", recorded,
			"attempts", entry.RecordAttempts)
	}

	return reconciled
}

func (*Tracker) applyRecordResult(entry *status.DispatchEntry, recorded bool, successPhase status.DispatchPhase) {
	entry.RecordAttempts++
	if recorded {
		now := time.Now()
		entry.Phase = successPhase
		entry.RecordedAt = &now
		entry.Message = ""
		return
	}
	entry.Phase = status.DispatchPhaseRecordFailed
	entry.Message = "backend did not acknowledge completion"
}

func (t *Tracker) saveEntry(ctx context.Context, entry *status.DispatchEntry) {
	if t.ledger == nil {
		return
	}
	if err := t.ledger.SaveEntry(ctx, entry); err != nil {
		slog.Error("Failed to save dispatch ledger entry", "identity", entry.Identity, "error", err)
	}
}

func (t *Tracker) loadEntry(ctx context.Context, identity string) *status.DispatchEntry {
	if t.ledger == nil {
		return nil
	}
	entry, err := t.ledger.LoadEntry(ctx, identity)
	if err != nil {
		slog.Warn("Failed to load dispatch ledger entry", "identity", identity, "error", err)
		return nil
	}
	return entry
}
