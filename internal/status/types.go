package status

import (
	"time"

	"github.com/stacklok/milestone-tracker/internal/milestone"
)

// DispatchPhase represents where a celebration is in its dispatch lifecycle
type DispatchPhase string

const (
	// DispatchPhaseDispatched means the payload was handed to the presentation layer
	// and recording has not finished yet
	DispatchPhaseDispatched DispatchPhase = "Dispatched"

	// DispatchPhaseRecorded means the backend acknowledged the completion
	DispatchPhaseRecorded DispatchPhase = "Recorded"

	// DispatchPhaseRecordFailed means every recording attempt failed; the backend may
	// still report shouldCelebrate for this identity
	DispatchPhaseRecordFailed DispatchPhase = "RecordFailed"

	// DispatchPhaseAcknowledged means the presentation layer confirmed the user saw it
	DispatchPhaseAcknowledged DispatchPhase = "Acknowledged"
)

// DispatchEntry is the persisted outcome of a celebration dispatch for one identity
type DispatchEntry struct {
	// Identity is the opaque identity the celebration was shown for
	Identity string `json:"identity"`

	// Phase is the current dispatch phase
	Phase DispatchPhase `json:"phase"`

	// Message provides additional information, typically the last recording error
	Message string `json:"message,omitempty"`

	// Payload is what was handed to the presentation layer
	Payload milestone.CelebrationPayload `json:"payload"`

	// DispatchedAt is when the payload was handed over
	DispatchedAt *time.Time `json:"dispatchedAt,omitempty"`

	// RecordedAt is when the backend last acknowledged the completion
	RecordedAt *time.Time `json:"recordedAt,omitempty"`

	// RecordAttempts counts recording rounds, including reconciliation after restarts
	RecordAttempts int `json:"recordAttempts,omitempty"`
}

// NeedsRecording reports whether the backend has not yet acknowledged this dispatch
func (e *DispatchEntry) NeedsRecording() bool {
	return e != nil && (e.Phase == DispatchPhaseDispatched || e.Phase == DispatchPhaseRecordFailed)
}
