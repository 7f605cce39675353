package presentation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/milestone-tracker/internal/config"
	"github.com/stacklok/milestone-tracker/internal/httpclient"
	"github.com/stacklok/milestone-tracker/internal/milestone"
)

var testPayload = milestone.CelebrationPayload{
	AssetDisplayName:   "Ethereum",
	PurchaseValueCents: 2550,
	HoldingsQuantity:   "0",
	TargetAssetCode:    "ETH",
}

func TestNewPresenter(t *testing.T) {
	t.Parallel()

	client := httpclient.NewDefaultClient(time.Second)

	t.Run("log presenter without webhook", func(t *testing.T) {
		t.Parallel()

		p := NewPresenter(&config.Config{}, client)
		assert.IsType(t, &LogPresenter{}, p)
	})

	t.Run("webhook presenter when configured", func(t *testing.T) {
		t.Parallel()

		cfg := &config.Config{Presentation: &config.PresentationConfig{WebhookURL: "https://hooks.example.com/celebrate"}}
		p := NewPresenter(cfg, client)
		require.IsType(t, &WebhookPresenter{}, p)
		assert.Equal(t, "https://hooks.example.com/celebrate", p.(*WebhookPresenter).url)
	})
}

func TestLogPresenter_Present(t *testing.T) {
	t.Parallel()

	assert.NoError(t, NewLogPresenter().Present(context.Background(), "user-1", testPayload))
}

func TestWebhookPresenter_Present(t *testing.T) {
	t.Parallel()

	received := make(chan WebhookEvent, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var event WebhookEvent
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&event))
		received <- event

		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	p := NewWebhookPresenter(httpclient.NewDefaultClient(time.Second), server.URL)
	require.NoError(t, p.Present(context.Background(), "user-1", testPayload))

	event := <-received
	assert.NotEmpty(t, event.EventID)
	assert.Equal(t, EventTypeFirstInvestment, event.Type)
	assert.Equal(t, "user-1", event.Identity)
	assert.Equal(t, testPayload, event.Payload)
	assert.False(t, event.SentAt.IsZero())
}

func TestWebhookPresenter_PresentError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "renderer unavailable", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	p := NewWebhookPresenter(httpclient.NewDefaultClient(time.Second), server.URL)
	err := p.Present(context.Background(), "user-1", testPayload)
	require.Error(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, httpclient.StatusCode(err))
}
