// Package cache holds the agent's in-memory view of alert state and
// coordinates it with the remote backend. Writes go through Acknowledge and
// Resolve only; both apply the change locally before the network call and
// roll back to a full prior snapshot if the call fails.
package cache

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/sivaSai9177/alert-agent/internal/client"
	"github.com/sivaSai9177/alert-agent/internal/models"
)

var (
	// ErrNotFound means the alert is not present in the cache.
	ErrNotFound = errors.New("alert not found in cache")
	// ErrPrecondition means the alert's current status does not allow the
	// requested transition, or another mutation on it is still in flight.
	// Per the error policy such calls are refused without touching the
	// network.
	ErrPrecondition = errors.New("alert status precondition not met")
)

// Cache is the alert-by-ID store for one hospital session. It is created per
// authenticated session and shared by everything rendering alert state; all
// access is through its methods and every returned record is a deep copy.
type Cache struct {
	mu        sync.RWMutex
	alerts    map[string]models.Alert
	snapshots map[string]models.Alert

	api    client.AlertsAPI
	logger zerolog.Logger
}

func New(api client.AlertsAPI, logger zerolog.Logger) *Cache {
	return &Cache{
		alerts:    make(map[string]models.Alert),
		snapshots: make(map[string]models.Alert),
		api:       api,
		logger:    logger.With().Str("component", "alert_cache").Logger(),
	}
}

// Get returns a copy of one alert.
func (c *Cache) Get(alertID string) (models.Alert, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	alert, ok := c.alerts[alertID]
	if !ok {
		return models.Alert{}, false
	}
	return alert.Clone(), true
}

// List returns copies of all cached alerts ordered by urgency (most urgent
// first) and creation time.
func (c *Cache) List() []models.Alert {
	c.mu.RLock()
	defer c.mu.RUnlock()

	alerts := make([]models.Alert, 0, len(c.alerts))
	for _, alert := range c.alerts {
		alerts = append(alerts, alert.Clone())
	}

	sort.Slice(alerts, func(i, j int) bool {
		if alerts[i].UrgencyLevel != alerts[j].UrgencyLevel {
			return alerts[i].UrgencyLevel < alerts[j].UrgencyLevel
		}
		return alerts[i].CreatedAt.Before(alerts[j].CreatedAt)
	})
	return alerts
}

// Len reports the number of cached alerts.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.alerts)
}

// Replace swaps the full cache contents for the given server state. Used by
// the polling refresh; an in-flight mutation may interleave with it, and the
// last write from the server wins after the mutation settles.
func (c *Cache) Replace(alerts []models.Alert) {
	next := make(map[string]models.Alert, len(alerts))
	for _, alert := range alerts {
		next[alert.ID] = alert.Clone()
	}

	c.mu.Lock()
	c.alerts = next
	c.mu.Unlock()
}

// Acknowledge transitions an active alert to acknowledged. The cache is
// updated synchronously before the backend call so the caller sees the
// transition with zero latency; on backend failure the alert is restored to
// the exact pre-mutation snapshot and the error is returned.
func (c *Cache) Acknowledge(ctx context.Context, alertID, notes string) error {
	now := time.Now()

	c.mu.Lock()
	alert, ok := c.alerts[alertID]
	if !ok {
		c.mu.Unlock()
		return errors.Wrap(ErrNotFound, alertID)
	}
	if _, pending := c.snapshots[alertID]; pending || alert.Status != models.AlertStatusActive {
		c.mu.Unlock()
		return errors.Wrapf(ErrPrecondition, "acknowledge %s in status %s", alertID, alert.Status)
	}

	c.snapshots[alertID] = alert.Clone()

	optimistic := alert.Clone()
	optimistic.Status = models.AlertStatusAcknowledged
	optimistic.AcknowledgedAt = &now
	c.alerts[alertID] = optimistic
	c.mu.Unlock()

	confirmed, err := c.api.AcknowledgeAlert(ctx, alertID, notes)
	return c.settle(alertID, confirmed, err, "acknowledge")
}

// Resolve transitions an acknowledged alert to resolved, with the same
// optimistic contract as Acknowledge.
func (c *Cache) Resolve(ctx context.Context, alertID, resolution string) error {
	now := time.Now()

	c.mu.Lock()
	alert, ok := c.alerts[alertID]
	if !ok {
		c.mu.Unlock()
		return errors.Wrap(ErrNotFound, alertID)
	}
	if _, pending := c.snapshots[alertID]; pending || alert.Status != models.AlertStatusAcknowledged {
		c.mu.Unlock()
		return errors.Wrapf(ErrPrecondition, "resolve %s in status %s", alertID, alert.Status)
	}

	c.snapshots[alertID] = alert.Clone()

	optimistic := alert.Clone()
	optimistic.Status = models.AlertStatusResolved
	optimistic.ResolvedAt = &now
	optimistic.Resolution = resolution
	c.alerts[alertID] = optimistic
	c.mu.Unlock()

	confirmed, err := c.api.ResolveAlert(ctx, alertID, resolution)
	return c.settle(alertID, confirmed, err, "resolve")
}

// settle finishes an optimistic mutation: on success the server-confirmed
// record replaces the optimistic one, on failure the snapshot is restored
// untouched. Either way the snapshot slot is freed for the next mutation.
func (c *Cache) settle(alertID string, confirmed models.Alert, err error, op string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	snapshot, pending := c.snapshots[alertID]
	if !pending {
		// Snapshot vanished under us; nothing to reconcile.
		return errors.Wrapf(err, "%s %s settled without snapshot", op, alertID)
	}
	delete(c.snapshots, alertID)

	if err != nil {
		c.alerts[alertID] = snapshot
		c.logger.Warn().
			Err(err).
			Str("alert_id", alertID).
			Str("op", op).
			Msg("mutation failed, cache rolled back")
		return errors.Wrapf(err, "%s %s", op, alertID)
	}

	if confirmed.ID == alertID {
		c.alerts[alertID] = confirmed.Clone()
	}
	return nil
}
