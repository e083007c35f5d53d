package models

import "time"

type AlertStatus string

const (
	AlertStatusActive       AlertStatus = "active"
	AlertStatusAcknowledged AlertStatus = "acknowledged"
	AlertStatusResolved     AlertStatus = "resolved"
)

type AlertType string

const (
	AlertTypeCardiacArrest    AlertType = "cardiac_arrest"
	AlertTypeCodeBlue         AlertType = "code_blue"
	AlertTypeFire             AlertType = "fire"
	AlertTypeSecurity         AlertType = "security"
	AlertTypeMedicalEmergency AlertType = "medical_emergency"
)

// Alert is one emergency/notification record tied to a hospital room.
// Urgency level runs 1-5, lower is more urgent. Once the status reaches
// resolved the record is immutable.
type Alert struct {
	ID                    string      `json:"id" db:"id"`
	HospitalID            string      `json:"hospital_id" db:"hospital_id"`
	RoomNumber            string      `json:"room_number" db:"room_number"`
	AlertType             AlertType   `json:"alert_type" db:"alert_type"`
	UrgencyLevel          int         `json:"urgency_level" db:"urgency_level"`
	Status                AlertStatus `json:"status" db:"status"`
	Description           string      `json:"description,omitempty" db:"description"`
	CreatedBy             string      `json:"created_by,omitempty" db:"created_by"`
	CreatedByName         string      `json:"created_by_name,omitempty" db:"created_by_name"`
	CreatedAt             time.Time   `json:"created_at" db:"created_at"`
	AcknowledgedAt        *time.Time  `json:"acknowledged_at,omitempty" db:"acknowledged_at"`
	AcknowledgedBy        string      `json:"acknowledged_by,omitempty" db:"acknowledged_by"`
	AcknowledgedByName    string      `json:"acknowledged_by_name,omitempty" db:"acknowledged_by_name"`
	ResolvedAt            *time.Time  `json:"resolved_at,omitempty" db:"resolved_at"`
	ResolvedBy            string      `json:"resolved_by,omitempty" db:"resolved_by"`
	ResolvedByName        string      `json:"resolved_by_name,omitempty" db:"resolved_by_name"`
	Resolution            string      `json:"resolution,omitempty" db:"resolution"`
	CurrentEscalationTier int         `json:"current_escalation_tier" db:"current_escalation_tier"`
	NextEscalationAt      *time.Time  `json:"next_escalation_at,omitempty" db:"next_escalation_at"`
}

// Clone returns a deep copy. Pointer fields are re-allocated so callers
// can never reach back into cache-owned memory.
func (a Alert) Clone() Alert {
	c := a
	if a.AcknowledgedAt != nil {
		t := *a.AcknowledgedAt
		c.AcknowledgedAt = &t
	}
	if a.ResolvedAt != nil {
		t := *a.ResolvedAt
		c.ResolvedAt = &t
	}
	if a.NextEscalationAt != nil {
		t := *a.NextEscalationAt
		c.NextEscalationAt = &t
	}
	return c
}

// EscalationEvent is one discrete escalation of a single alert, created by
// the backend escalation engine when a response-time threshold is exceeded.
// Immutable once created.
type EscalationEvent struct {
	ID              string    `json:"id" db:"id"`
	AlertID         string    `json:"alert_id" db:"alert_id"`
	EscalatedAt     time.Time `json:"escalated_at" db:"escalated_at"`
	EscalationLevel int       `json:"escalation_level" db:"escalation_level"`
	EscalatedByName string    `json:"escalated_by_name,omitempty" db:"escalated_by_name"`
	EscalatedByRole string    `json:"escalated_by_role,omitempty" db:"escalated_by_role"`
	Reason          string    `json:"reason,omitempty" db:"reason"`
}
