package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/sivaSai9177/alert-agent/internal/config"
	"github.com/sivaSai9177/alert-agent/internal/models"
)

// AlertsAPI is the remote hospital alerts backend as consumed by the agent.
// The backend owns all alert state; the agent only mirrors it.
type AlertsAPI interface {
	GetActiveAlerts(ctx context.Context, hospitalID string) ([]models.Alert, error)
	AcknowledgeAlert(ctx context.Context, alertID, notes string) (models.Alert, error)
	ResolveAlert(ctx context.Context, alertID, resolution string) (models.Alert, error)
	CreateAlert(ctx context.Context, payload json.RawMessage) (string, error)
	GetEscalationHistory(ctx context.Context, alertID string) ([]models.EscalationEvent, error)
	Ping(ctx context.Context) error
}

// APIError is a failed call to the alerts backend, classified so callers can
// decide between rollback-and-retry (transient) and surfacing the rejection
// as-is (validation).
type APIError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("alerts api: %s (status %d)", e.Message, e.StatusCode)
	}
	return fmt.Sprintf("alerts api: %s", e.Message)
}

func (e *APIError) Unwrap() error { return e.Err }

// Transient reports whether the failure is worth retrying: network-level
// errors and server-side 5xx responses.
func (e *APIError) Transient() bool {
	return e.StatusCode == 0 || e.StatusCode >= 500
}

// Validation reports whether the backend rejected the request payload.
func (e *APIError) Validation() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500
}

type Client struct {
	http   *resty.Client
	probe  *resty.Client
	logger zerolog.Logger
}

func New(cfg config.APIConfig, logger zerolog.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(3 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	// Separate client without retries so the connectivity probe reports a
	// dead link quickly instead of after the full retry budget.
	probeClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.ProbeTimeout)

	if cfg.Token != "" {
		httpClient.SetAuthToken(cfg.Token)
		probeClient.SetAuthToken(cfg.Token)
	}

	return &Client{
		http:   httpClient,
		probe:  probeClient,
		logger: logger.With().Str("component", "alerts_client").Logger(),
	}
}

type activeAlertsResponse struct {
	Alerts []models.Alert `json:"alerts"`
}

func (c *Client) GetActiveAlerts(ctx context.Context, hospitalID string) ([]models.Alert, error) {
	var out activeAlertsResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		Get(fmt.Sprintf("/api/hospitals/%s/alerts/active", hospitalID))
	if err := c.check(resp, err, "get active alerts"); err != nil {
		return nil, err
	}
	return out.Alerts, nil
}

type acknowledgeRequest struct {
	Notes string `json:"notes,omitempty"`
}

func (c *Client) AcknowledgeAlert(ctx context.Context, alertID, notes string) (models.Alert, error) {
	var out models.Alert
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(acknowledgeRequest{Notes: notes}).
		SetResult(&out).
		Post(fmt.Sprintf("/api/alerts/%s/acknowledge", alertID))
	if err := c.check(resp, err, "acknowledge alert"); err != nil {
		return models.Alert{}, err
	}
	return out, nil
}

type resolveRequest struct {
	Resolution string `json:"resolution"`
}

func (c *Client) ResolveAlert(ctx context.Context, alertID, resolution string) (models.Alert, error) {
	var out models.Alert
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(resolveRequest{Resolution: resolution}).
		SetResult(&out).
		Post(fmt.Sprintf("/api/alerts/%s/resolve", alertID))
	if err := c.check(resp, err, "resolve alert"); err != nil {
		return models.Alert{}, err
	}
	return out, nil
}

type createAlertResponse struct {
	Alert struct {
		ID string `json:"id"`
	} `json:"alert"`
}

func (c *Client) CreateAlert(ctx context.Context, payload json.RawMessage) (string, error) {
	var out createAlertResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(payload).
		SetResult(&out).
		Post("/api/alerts")
	if err := c.check(resp, err, "create alert"); err != nil {
		return "", err
	}
	return out.Alert.ID, nil
}

type escalationsResponse struct {
	Escalations []models.EscalationEvent `json:"escalations"`
}

func (c *Client) GetEscalationHistory(ctx context.Context, alertID string) ([]models.EscalationEvent, error) {
	var out escalationsResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		Get(fmt.Sprintf("/api/alerts/%s/escalations", alertID))
	if err := c.check(resp, err, "get escalation history"); err != nil {
		return nil, err
	}
	return out.Escalations, nil
}

// Ping is used by the connectivity monitor.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.probe.R().
		SetContext(ctx).
		Get("/health")
	return c.check(resp, err, "ping")
}

func (c *Client) check(resp *resty.Response, err error, op string) error {
	if err != nil {
		c.logger.Warn().Err(err).Str("op", op).Msg("request failed")
		return &APIError{Message: op, Err: errors.Wrap(err, op)}
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		c.logger.Warn().
			Int("status", resp.StatusCode()).
			Str("op", op).
			Msg("backend returned error")
		return &APIError{
			StatusCode: resp.StatusCode(),
			Message:    fmt.Sprintf("%s: %s", op, resp.Status()),
		}
	}
	return nil
}
