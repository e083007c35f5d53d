package timeline

import (
	"testing"
	"time"

	"github.com/sivaSai9177/alert-agent/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseAlert(createdAt time.Time) models.Alert {
	return models.Alert{
		ID:                    "alert-1",
		HospitalID:            "hospital-1",
		RoomNumber:            "302",
		AlertType:             models.AlertTypeCodeBlue,
		UrgencyLevel:          1,
		Status:                models.AlertStatusActive,
		CreatedByName:         "Nurse Joy",
		CreatedAt:             createdAt,
		CurrentEscalationTier: 1,
	}
}

func TestBuild_CreatedOnly(t *testing.T) {
	createdAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	alert := baseAlert(createdAt)

	events := Build(alert, nil)

	require.Len(t, events, 1)
	assert.Equal(t, models.TimelineEventCreated, events[0].Kind)
	assert.Equal(t, createdAt, events[0].Timestamp)
	assert.Equal(t, "Nurse Joy", events[0].ActorName)
}

func TestBuild_FullLifecycle(t *testing.T) {
	createdAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	ackAt := createdAt.Add(5 * time.Minute)
	resolvedAt := createdAt.Add(20 * time.Minute)

	alert := baseAlert(createdAt)
	alert.Status = models.AlertStatusResolved
	alert.AcknowledgedAt = &ackAt
	alert.AcknowledgedByName = "Dr. Stone"
	alert.ResolvedAt = &resolvedAt
	alert.ResolvedByName = "Dr. Stone"
	alert.Resolution = "Patient stabilized"
	alert.CurrentEscalationTier = 2

	escalations := []models.EscalationEvent{
		{
			ID:              "esc-1",
			AlertID:         alert.ID,
			EscalatedAt:     createdAt.Add(3 * time.Minute),
			EscalationLevel: 2,
			EscalatedByRole: "charge_nurse",
			Reason:          "no response within threshold",
		},
	}

	events := Build(alert, escalations)

	// 1 created + len(escalations) + acknowledged + resolved
	require.Len(t, events, 4)
	assert.Equal(t, models.TimelineEventCreated, events[0].Kind)
	assert.Equal(t, models.TimelineEventEscalated, events[1].Kind)
	assert.Equal(t, 2, events[1].EscalationLevel)
	assert.Equal(t, "no response within threshold", events[1].Note)
	assert.Equal(t, models.TimelineEventAcknowledged, events[2].Kind)
	assert.Equal(t, "Dr. Stone", events[2].ActorName)
	assert.Equal(t, models.TimelineEventResolved, events[3].Kind)
	assert.Equal(t, "Patient stabilized", events[3].Note)
}

func TestBuild_LengthFormula(t *testing.T) {
	createdAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	ackAt := createdAt.Add(time.Minute)

	cases := []struct {
		name        string
		escalations int
		ack         bool
		resolved    bool
		want        int
	}{
		{"no extras", 0, false, false, 1},
		{"escalations only", 3, false, false, 4},
		{"acknowledged", 2, true, false, 4},
		{"resolved", 1, true, true, 4},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			alert := baseAlert(createdAt)
			if tc.ack {
				alert.AcknowledgedAt = &ackAt
			}
			if tc.resolved {
				resolvedAt := ackAt.Add(time.Minute)
				alert.ResolvedAt = &resolvedAt
			}

			var escalations []models.EscalationEvent
			for i := 0; i < tc.escalations; i++ {
				escalations = append(escalations, models.EscalationEvent{
					ID:              "esc",
					AlertID:         alert.ID,
					EscalatedAt:     createdAt.Add(time.Duration(i+1) * time.Minute),
					EscalationLevel: i + 2,
				})
			}

			events := Build(alert, escalations)
			assert.Len(t, events, tc.want)
		})
	}
}

func TestBuild_SortedAscending(t *testing.T) {
	createdAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	ackAt := createdAt.Add(10 * time.Minute)

	alert := baseAlert(createdAt)
	alert.AcknowledgedAt = &ackAt

	// Escalations deliberately out of order.
	escalations := []models.EscalationEvent{
		{ID: "esc-2", EscalatedAt: createdAt.Add(8 * time.Minute), EscalationLevel: 3},
		{ID: "esc-1", EscalatedAt: createdAt.Add(4 * time.Minute), EscalationLevel: 2},
	}

	events := Build(alert, escalations)

	require.Len(t, events, 4)
	for i := 1; i < len(events); i++ {
		assert.False(t, events[i].Timestamp.Before(events[i-1].Timestamp),
			"events must be sorted non-decreasing by timestamp")
	}
}

func TestBuild_EqualTimestampsKeepInputOrder(t *testing.T) {
	createdAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	alert := baseAlert(createdAt)

	// Escalation stamped at the exact creation instant: created stays first
	// because it is constructed first and the sort is stable.
	escalations := []models.EscalationEvent{
		{ID: "esc-1", EscalatedAt: createdAt, EscalationLevel: 2},
	}

	events := Build(alert, escalations)

	require.Len(t, events, 2)
	assert.Equal(t, models.TimelineEventCreated, events[0].Kind)
	assert.Equal(t, models.TimelineEventEscalated, events[1].Kind)
}

func TestBuild_TierMismatchDoesNotInferEvents(t *testing.T) {
	createdAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	alert := baseAlert(createdAt)
	alert.CurrentEscalationTier = 2

	// Tier says 2 but only one escalation record exists; the builder must
	// report exactly what is on record.
	escalations := []models.EscalationEvent{
		{ID: "esc-1", EscalatedAt: createdAt.Add(time.Minute), EscalationLevel: 2},
	}

	events := Build(alert, escalations)

	escalated := 0
	for _, e := range events {
		if e.Kind == models.TimelineEventEscalated {
			escalated++
		}
	}
	assert.Equal(t, 1, escalated)
}

func TestBuild_ZeroCreatedAt(t *testing.T) {
	events := Build(models.Alert{ID: "alert-1"}, nil)
	assert.Empty(t, events)
}

func TestBuild_DoesNotMutateInputs(t *testing.T) {
	createdAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	alert := baseAlert(createdAt)
	escalations := []models.EscalationEvent{
		{ID: "esc-2", EscalatedAt: createdAt.Add(8 * time.Minute), EscalationLevel: 3},
		{ID: "esc-1", EscalatedAt: createdAt.Add(4 * time.Minute), EscalationLevel: 2},
	}

	Build(alert, escalations)

	assert.Equal(t, "esc-2", escalations[0].ID, "input slice order must be preserved")
	assert.Equal(t, "esc-1", escalations[1].ID)
}
