package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/Emmanjr/health-monitoring/internal/domain"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Notifier delivers a fired alert outside the system.
type Notifier interface {
	NotifyAlert(ctx context.Context, event *domain.AlertEvent) error
}

// AlertPayload is the webhook body.
type AlertPayload struct {
	Title                 string    `json:"title"`
	Body                  string    `json:"body"`
	EventID               string    `json:"event_id"`
	UserID                string    `json:"user_id"`
	ReadingID             string    `json:"reading_id"`
	Severity              string    `json:"severity"`
	ShouldAlertPhysically bool      `json:"should_alert_physically"`
	TriggeredAt           time.Time `json:"triggered_at"`
}

// WebhookResponse is the envelope a receiver may answer with.
type WebhookResponse struct {
	Status int    `json:"status"`
	Msg    string `json:"msg"`
}

// WebhookClient posts alerts as JSON to a configured URL.
type WebhookClient struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

// NewWebhookClient creates a client that retries transient failures.
func NewWebhookClient(url string, timeout time.Duration, logger *zap.Logger) *WebhookClient {
	client := resty.New().
		SetBaseURL(url).
		SetTimeout(timeout).
		SetRetryCount(3).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(3 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= 500
		}).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &WebhookClient{httpClient: client, logger: logger}
}

var _ Notifier = (*WebhookClient)(nil)

// NotifyAlert posts event. A non-2xx answer or a non-zero status in the body is an error.
func (c *WebhookClient) NotifyAlert(ctx context.Context, event *domain.AlertEvent) error {
	payload := AlertPayload{
		Title:                 "Health Alert",
		Body:                  event.Message,
		EventID:               event.EventID,
		UserID:                event.UserID,
		ReadingID:             event.ReadingID,
		Severity:              event.Severity,
		ShouldAlertPhysically: event.ShouldAlertPhysically,
		TriggeredAt:           event.TriggeredAt,
	}

	var response WebhookResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(payload).
		SetResult(&response).
		Post("")
	if err != nil {
		c.logger.Error("Alert webhook call failed",
			zap.String("event_id", event.EventID),
			zap.Error(err),
		)
		return fmt.Errorf("failed to call alert webhook: %w", err)
	}
	if resp.IsError() {
		c.logger.Error("Alert webhook rejected event",
			zap.String("event_id", event.EventID),
			zap.Int("status_code", resp.StatusCode()),
		)
		return fmt.Errorf("alert webhook returned HTTP %d", resp.StatusCode())
	}
	if response.Status != 0 {
		return fmt.Errorf("alert webhook error: %s (status: %d)", response.Msg, response.Status)
	}

	c.logger.Debug("Alert webhook delivered", zap.String("event_id", event.EventID))
	return nil
}

// Nop discards alerts. Used when no webhook is configured.
type Nop struct{}

func (Nop) NotifyAlert(context.Context, *domain.AlertEvent) error { return nil }
