package cache

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/sivaSai9177/alert-agent/internal/client"
)

// Poller refreshes the cache from the backend on a fixed interval. A failed
// poll keeps the previous cache contents.
type Poller struct {
	cache      *Cache
	api        client.AlertsAPI
	hospitalID string
	interval   time.Duration
	logger     zerolog.Logger
}

func NewPoller(cache *Cache, api client.AlertsAPI, hospitalID string, interval time.Duration, logger zerolog.Logger) *Poller {
	return &Poller{
		cache:      cache,
		api:        api,
		hospitalID: hospitalID,
		interval:   interval,
		logger:     logger.With().Str("component", "alert_poller").Logger(),
	}
}

// Run polls until the context is cancelled. An initial refresh happens
// immediately so the cache is warm before the first tick.
func (p *Poller) Run(ctx context.Context) error {
	if err := p.Refresh(ctx); err != nil {
		p.logger.Warn().Err(err).Msg("initial refresh failed")
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info().Msg("poller stopped")
			return ctx.Err()
		case <-ticker.C:
			if err := p.Refresh(ctx); err != nil {
				p.logger.Warn().Err(err).Msg("refresh failed, keeping cached state")
			}
		}
	}
}

// Refresh unconditionally re-fetches the hospital's active alerts and
// replaces the cache contents. Also used for manual pull-to-refresh.
func (p *Poller) Refresh(ctx context.Context) error {
	alerts, err := p.api.GetActiveAlerts(ctx, p.hospitalID)
	if err != nil {
		return errors.Wrap(err, "refresh active alerts")
	}

	p.cache.Replace(alerts)
	p.logger.Debug().Int("count", len(alerts)).Msg("cache refreshed")
	return nil
}
