package models

// ReconcileStatus represents the outcome of a thread reconciliation run
type ReconcileStatus interface {
	isReconcileStatus()
}

type reconcileStatusCreated struct{}
type reconcileStatusUpdated struct{}
type reconcileStatusSkipped struct{ Reason string }

func (reconcileStatusCreated) isReconcileStatus() {}
func (reconcileStatusUpdated) isReconcileStatus() {}
func (reconcileStatusSkipped) isReconcileStatus() {}

// ReconcileStatus variants
var (
	// RootCreated indicates a new root message was posted
	RootCreated ReconcileStatus = reconcileStatusCreated{}
	// RootUpdated indicates an existing root message was amended
	RootUpdated ReconcileStatus = reconcileStatusUpdated{}
)

// ReconcileSkipped creates a soft-failure status with a reason
func ReconcileSkipped(reason string) ReconcileStatus {
	return reconcileStatusSkipped{Reason: reason}
}

// IsCreated returns true if status is RootCreated
func IsCreated(s ReconcileStatus) bool {
	_, ok := s.(reconcileStatusCreated)
	return ok
}

// IsUpdated returns true if status is RootUpdated
func IsUpdated(s ReconcileStatus) bool {
	_, ok := s.(reconcileStatusUpdated)
	return ok
}

// IsSkipped returns true if status is a soft failure
func IsSkipped(s ReconcileStatus) bool {
	_, ok := s.(reconcileStatusSkipped)
	return ok
}

// SkipReason returns the reason string for a skipped status
func SkipReason(s ReconcileStatus) string {
	if skipped, ok := s.(reconcileStatusSkipped); ok {
		return skipped.Reason
	}
	return ""
}

// ReconcileResult is what a reconciliation run reports back to the pipeline
type ReconcileResult struct {
	// Status of the run
	Status ReconcileStatus
	// Found is true when an existing root message was located
	Found bool
	// ThreadTS is the timestamp id of the root message, if any
	ThreadTS string
	// ChannelID is the channel the root message lives in, if any
	ChannelID string
	// NewTickets are the ticket keys appended to the root this run
	NewTickets []string
}
