package tracker

import "slices"

// State is the tracker's position in the milestone detection lifecycle
type State string

const (
	// StateIdle means no monitoring session is active
	StateIdle State = "Idle"

	// StatePolling means scheduled checks are running for the current identity
	StatePolling State = "Polling"

	// StateDetected means a celebration is being dispatched
	StateDetected State = "Detected"

	// StateCompleted means the celebration for the current identity was dispatched
	StateCompleted State = "Completed"

	// StateStopped means polling ended without a detection
	StateStopped State = "Stopped"
)

// Completed and Stopped only end the session for one identity, so both may start another.
var transitions = map[State][]State{
	StateIdle:      {StatePolling, StateDetected},
	StatePolling:   {StateDetected, StateStopped},
	StateDetected:  {StateCompleted},
	StateCompleted: {StatePolling, StateDetected},
	StateStopped:   {StateIdle, StatePolling, StateDetected},
}

// CanTransitionTo reports whether next is reachable from s in one step
func (s State) CanTransitionTo(next State) bool {
	return slices.Contains(transitions[s], next)
}
