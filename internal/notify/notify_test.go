package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvoss/ontime/internal/model"
	"github.com/nvoss/ontime/internal/storage"
)

func testAlert() *model.ScheduledAlert {
	return &model.ScheduledAlert{
		ID:       "abc-wake-0",
		Title:    "Time to wake up",
		Body:     "Get up now to leave for office at 08:40.",
		Urgency:  model.UrgencyMedium,
		FireTime: time.Date(2026, 9, 1, 8, 10, 0, 0, time.UTC),
	}
}

func TestDiscordFormatter(t *testing.T) {
	payload, err := (&DiscordFormatter{}).Format(testAlert())
	require.NoError(t, err)

	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal(payload, &parsed))

	embeds := parsed["embeds"].([]interface{})
	require.Len(t, embeds, 1)
	embed := embeds[0].(map[string]interface{})
	assert.Equal(t, "Time to wake up", embed["title"])
	assert.Equal(t, float64(ColorForUrgency(model.UrgencyMedium)), embed["color"])
}

func TestGenericFormatter(t *testing.T) {
	payload, err := (&GenericFormatter{}).Format(testAlert())
	require.NoError(t, err)

	var parsed genericPayload
	require.NoError(t, json.Unmarshal(payload, &parsed))
	assert.Equal(t, "abc-wake-0", parsed.ID)
	assert.Equal(t, "medium", parsed.Urgency)
}

func TestGenericFormatterTemplate(t *testing.T) {
	f := NewGenericFormatter(`{"text": "{{.Title}}"}`)
	payload, err := f.Format(testAlert())
	require.NoError(t, err)
	assert.JSONEq(t, `{"text": "Time to wake up"}`, string(payload))
}

func TestGetFormatter(t *testing.T) {
	assert.IsType(t, &DiscordFormatter{}, GetFormatter(model.WebhookTypeDiscord))
	assert.IsType(t, &GenericFormatter{}, GetFormatter(model.WebhookTypeGeneric))
	assert.IsType(t, &GenericFormatter{}, GetFormatter("unknown"))
}

func TestColorForUrgencyMonotone(t *testing.T) {
	assert.NotEqual(t, ColorForUrgency(model.UrgencyLow), ColorForUrgency(model.UrgencyHigh))
}

func TestDispatcherSendAlert(t *testing.T) {
	var received int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received++
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)

	db, err := storage.Open(storage.Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := storage.NewWebhookRepo(db)
	require.NoError(t, repo.Create(&model.Webhook{
		Name:    "test",
		Type:    model.WebhookTypeGeneric,
		URL:     server.URL,
		Enabled: true,
	}))

	d := NewDispatcher(repo)
	results := d.SendAlert(context.Background(), testAlert())
	require.Len(t, results, 1)
	assert.True(t, results[0].Success)
	assert.Equal(t, 1, received)

	// Last-used bookkeeping recorded the success.
	wh, err := repo.Get("test")
	require.NoError(t, err)
	assert.False(t, wh.LastUsed.IsZero())
	assert.Empty(t, wh.LastError)
}

func TestDispatcherNoWebhooks(t *testing.T) {
	db, err := storage.Open(storage.Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	d := NewDispatcher(storage.NewWebhookRepo(db))
	assert.Nil(t, d.SendAlert(context.Background(), testAlert()))
	assert.False(t, d.HasEnabledWebhooks())
}
