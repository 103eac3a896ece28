package model

import "time"

type TransitionKind string

const (
	TransitionSchedule TransitionKind = "schedule"
	TransitionMove     TransitionKind = "move"
	TransitionCancel   TransitionKind = "cancel"
)

type TransitionStatus string

const (
	// TransitionPending is written before the ledger write is issued.
	TransitionPending TransitionStatus = "pending"
	// TransitionResolved means both paired writes succeeded.
	TransitionResolved TransitionStatus = "resolved"
	// TransitionAborted means the ledger write failed and nothing changed.
	TransitionAborted TransitionStatus = "aborted"
	// TransitionStranded means the ledger write succeeded but the booking write did not.
	TransitionStranded TransitionStatus = "stranded"
)

// Transition is a journal entry pairing one ledger mutation with one booking mutation.
type Transition struct {
	ID                string           `json:"id" bson:"_id"`
	Kind              TransitionKind   `json:"kind" bson:"kind"`
	EquipmentID       string           `json:"equipment_id" bson:"equipmentId"`
	BookingID         string           `json:"booking_id,omitempty" bson:"bookingId,omitempty"`
	PreviousRemaining int64            `json:"previous_remaining" bson:"previousRemaining"`
	NextRemaining     int64            `json:"next_remaining" bson:"nextRemaining"`
	DeltaSeconds      int64            `json:"delta_seconds" bson:"deltaSeconds"`
	Start             time.Time        `json:"start" bson:"start"`
	End               time.Time        `json:"end" bson:"end"`
	Status            TransitionStatus `json:"status" bson:"status"`
	Error             string           `json:"error,omitempty" bson:"error,omitempty"`
	CreatedAt         time.Time        `json:"created_at" bson:"createdAt"`
	ResolvedAt        *time.Time       `json:"resolved_at,omitempty" bson:"resolvedAt,omitempty"`
}

func (t *Transition) Unresolved() bool {
	return t.Status == TransitionPending || t.Status == TransitionStranded
}
