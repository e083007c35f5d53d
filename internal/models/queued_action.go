package models

import (
	"encoding/json"
	"time"
)

type ActionStatus string

const (
	ActionStatusPending   ActionStatus = "pending"
	ActionStatusInFlight  ActionStatus = "in_flight"
	ActionStatusFailed    ActionStatus = "failed"
	ActionStatusDelivered ActionStatus = "delivered"
)

// ActionContext carries the request context an action was captured under,
// so the drain can replay it against the right hospital later.
type ActionContext struct {
	HospitalID string `json:"hospital_id,omitempty"`
	UserID     string `json:"user_id,omitempty"`
}

// QueuedAction is one write action deferred because the agent had no
// connectivity when it was attempted. Actions are replayed strictly in
// enqueue order once connectivity returns.
type QueuedAction struct {
	ID         string          `json:"id" db:"id"`
	Seq        int64           `json:"seq" db:"seq"`
	Domain     string          `json:"domain" db:"domain"`
	Kind       string          `json:"kind" db:"kind"`
	Payload    json.RawMessage `json:"payload" db:"payload"`
	Context    ActionContext   `json:"context" db:"context"`
	Status     ActionStatus    `json:"status" db:"status"`
	Attempts   int             `json:"attempts" db:"attempts"`
	LastError  string          `json:"last_error,omitempty" db:"last_error"`
	EnqueuedAt time.Time       `json:"enqueued_at" db:"enqueued_at"`
}
