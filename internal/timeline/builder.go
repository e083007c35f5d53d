// Package timeline turns an alert's lifecycle fields plus its escalation
// history into a single chronologically ordered event sequence for display.
package timeline

import (
	"sort"

	"github.com/sivaSai9177/alert-agent/internal/models"
)

// Build produces the display timeline for one alert. It is pure and
// deterministic: no side effects, inputs are never mutated, and it is safe
// to call on every read.
//
// The result always starts from the alert's creation, carries one escalated
// entry per recorded EscalationEvent (missing records are never inferred
// from the alert's escalation tier), and ends with acknowledged/resolved
// entries when those timestamps are stamped. Events are sorted ascending by
// timestamp; events with exactly equal timestamps keep their input order.
func Build(alert models.Alert, escalations []models.EscalationEvent) []models.TimelineEvent {
	if alert.CreatedAt.IsZero() {
		return nil
	}

	events := make([]models.TimelineEvent, 0, len(escalations)+3)

	events = append(events, models.TimelineEvent{
		Kind:      models.TimelineEventCreated,
		Timestamp: alert.CreatedAt,
		ActorName: alert.CreatedByName,
		Note:      alert.Description,
	})

	for _, esc := range escalations {
		events = append(events, models.TimelineEvent{
			Kind:            models.TimelineEventEscalated,
			Timestamp:       esc.EscalatedAt,
			ActorName:       esc.EscalatedByName,
			ActorRole:       esc.EscalatedByRole,
			Note:            esc.Reason,
			EscalationLevel: esc.EscalationLevel,
		})
	}

	if alert.AcknowledgedAt != nil {
		events = append(events, models.TimelineEvent{
			Kind:      models.TimelineEventAcknowledged,
			Timestamp: *alert.AcknowledgedAt,
			ActorName: alert.AcknowledgedByName,
		})
	}

	if alert.ResolvedAt != nil {
		events = append(events, models.TimelineEvent{
			Kind:      models.TimelineEventResolved,
			Timestamp: *alert.ResolvedAt,
			ActorName: alert.ResolvedByName,
			Note:      alert.Resolution,
		})
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp.Before(events[j].Timestamp)
	})

	return events
}
