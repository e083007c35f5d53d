package models

import "time"

type TimelineEventKind string

const (
	TimelineEventCreated      TimelineEventKind = "created"
	TimelineEventEscalated    TimelineEventKind = "escalated"
	TimelineEventAcknowledged TimelineEventKind = "acknowledged"
	TimelineEventResolved     TimelineEventKind = "resolved"
)

// TimelineEvent is a derived view-model record representing one moment in an
// alert's lifecycle. It is produced fresh from an Alert plus its escalation
// history and is never persisted or mutated in place.
type TimelineEvent struct {
	Kind            TimelineEventKind `json:"kind"`
	Timestamp       time.Time         `json:"timestamp"`
	ActorName       string            `json:"actor_name,omitempty"`
	ActorRole       string            `json:"actor_role,omitempty"`
	Note            string            `json:"note,omitempty"`
	EscalationLevel int               `json:"escalation_level,omitempty"`
}
