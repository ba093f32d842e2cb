package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nvoss/ontime/internal/model"
	"github.com/nvoss/ontime/internal/storage"
)

// Dispatcher delivers fired alarms to all enabled webhooks.
type Dispatcher struct {
	webhookRepo *storage.WebhookRepo
	httpClient  *HTTPClient
}

// NewDispatcher creates a new notification dispatcher.
func NewDispatcher(webhookRepo *storage.WebhookRepo) *Dispatcher {
	return &Dispatcher{
		webhookRepo: webhookRepo,
		httpClient:  NewHTTPClient(),
	}
}

// DispatchResult contains the result of dispatching to a single webhook.
type DispatchResult struct {
	WebhookName string
	Success     bool
	StatusCode  int
	Duration    time.Duration
	Error       error
}

// SendAlert delivers a fired alarm to all enabled webhooks concurrently.
func (d *Dispatcher) SendAlert(ctx context.Context, alert *model.ScheduledAlert) []DispatchResult {
	webhooks, err := d.webhookRepo.ListEnabled()
	if err != nil {
		return []DispatchResult{{
			WebhookName: "all",
			Success:     false,
			Error:       fmt.Errorf("failed to list webhooks: %w", err),
		}}
	}

	if len(webhooks) == 0 {
		return nil // No webhooks configured
	}

	var wg sync.WaitGroup
	results := make([]DispatchResult, len(webhooks))

	for i, webhook := range webhooks {
		wg.Add(1)
		go func(idx int, wh *model.Webhook) {
			defer wg.Done()
			results[idx] = d.sendToWebhook(ctx, alert, wh)
		}(i, webhook)
	}

	wg.Wait()
	return results
}

// sendToWebhook delivers a fired alarm to a single webhook.
func (d *Dispatcher) sendToWebhook(ctx context.Context, alert *model.ScheduledAlert, webhook *model.Webhook) DispatchResult {
	result := DispatchResult{
		WebhookName: webhook.Name,
	}

	var formatter Formatter
	if webhook.Type == model.WebhookTypeGeneric && webhook.Template != "" {
		formatter = NewGenericFormatter(webhook.Template)
	} else {
		formatter = GetFormatter(webhook.Type)
	}

	payload, err := formatter.Format(alert)
	if err != nil {
		result.Error = fmt.Errorf("failed to format alert: %w", err)
		d.updateWebhookStatus(webhook.Name, result.Error)
		return result
	}

	sendResult := d.httpClient.Send(ctx, webhook.URL, formatter.ContentType(), payload)

	result.StatusCode = sendResult.StatusCode
	result.Duration = sendResult.Duration
	result.Error = sendResult.Error
	result.Success = sendResult.Error == nil

	d.updateWebhookStatus(webhook.Name, sendResult.Error)

	return result
}

// updateWebhookStatus updates the last used timestamp and error for a
// webhook. Failures here are not critical and are ignored.
func (d *Dispatcher) updateWebhookStatus(name string, err error) {
	_ = d.webhookRepo.UpdateLastUsed(name, err)
}

// SendToSingle delivers a fired alarm to a single webhook by name.
func (d *Dispatcher) SendToSingle(ctx context.Context, alert *model.ScheduledAlert, webhookName string) DispatchResult {
	webhook, err := d.webhookRepo.Get(webhookName)
	if err != nil {
		return DispatchResult{
			WebhookName: webhookName,
			Success:     false,
			Error:       fmt.Errorf("webhook not found: %w", err),
		}
	}

	return d.sendToWebhook(ctx, alert, webhook)
}

// TestWebhook sends a test alert to a specific webhook.
func (d *Dispatcher) TestWebhook(ctx context.Context, webhookName string) DispatchResult {
	testAlert := &model.ScheduledAlert{
		ID:       "test",
		Title:    "Ontime Test",
		Body:     "This is a test alert from Ontime. If you see this, your webhook is configured correctly!",
		Urgency:  model.UrgencyLow,
		FireTime: time.Now(),
	}

	return d.SendToSingle(ctx, testAlert, webhookName)
}

// HasEnabledWebhooks returns true if there are any enabled webhooks.
func (d *Dispatcher) HasEnabledWebhooks() bool {
	webhooks, err := d.webhookRepo.ListEnabled()
	if err != nil {
		return false
	}
	return len(webhooks) > 0
}
