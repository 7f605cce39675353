// Package presentation contains the milestone.Presenter implementations the tracker hands
// celebration payloads to.
package presentation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/stacklok/milestone-tracker/internal/config"
	"github.com/stacklok/milestone-tracker/internal/httpclient"
	"github.com/stacklok/milestone-tracker/internal/milestone"
)

// NewPresenter creates a Presenter based on the configured presentation target.
//
// When a webhook URL is configured the payload is posted to it, otherwise the
// celebration is only logged.
func NewPresenter(cfg *config.Config, client httpclient.Client) milestone.Presenter {
	if url := cfg.GetWebhookURL(); url != "" {
		return NewWebhookPresenter(client, url)
	}
	return NewLogPresenter()
}

// LogPresenter writes celebrations to the structured log
type LogPresenter struct{}

// NewLogPresenter creates a LogPresenter
func NewLogPresenter() *LogPresenter {
	return &LogPresenter{}
}

// Present implements milestone.Presenter
func (*LogPresenter) Present(_ context.Context, identity string, payload milestone.CelebrationPayload) error {
	slog.Info("First investment milestone reached",
		"identity", identity,
		"asset", payload.AssetDisplayName,
		"asset_code", payload.TargetAssetCode,
		"purchase_value_cents", payload.PurchaseValueCents,
		"holdings", payload.HoldingsQuantity)
	return nil
}

// WebhookEvent is the body posted to the celebration webhook
type WebhookEvent struct {
	EventID  string                       `json:"eventId"`
	Type     string                       `json:"type"`
	Identity string                       `json:"identity"`
	SentAt   time.Time                    `json:"sentAt"`
	Payload  milestone.CelebrationPayload `json:"payload"`
}

// EventTypeFirstInvestment is the webhook event type for the first-investment celebration
const EventTypeFirstInvestment = "milestone.first_investment.celebrate"

// WebhookPresenter posts celebrations to an external presentation service
type WebhookPresenter struct {
	client httpclient.Client
	url    string
}

// NewWebhookPresenter creates a WebhookPresenter posting to url
func NewWebhookPresenter(client httpclient.Client, url string) *WebhookPresenter {
	return &WebhookPresenter{client: client, url: url}
}

// Present implements milestone.Presenter
func (w *WebhookPresenter) Present(ctx context.Context, identity string, payload milestone.CelebrationPayload) error {
	event := WebhookEvent{
		EventID:  uuid.NewString(),
		Type:     EventTypeFirstInvestment,
		Identity: identity,
		SentAt:   time.Now().UTC(),
		Payload:  payload,
	}

	if _, err := w.client.PostJSON(ctx, w.url, event); err != nil {
		return fmt.Errorf("failed to post celebration webhook: %w", err)
	}

	slog.Debug("Posted celebration webhook", "identity", identity, "event_id", event.EventID)
	return nil
}
