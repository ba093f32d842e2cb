package notify

import (
	"bytes"
	"encoding/json"
	"text/template"

	"github.com/nvoss/ontime/internal/model"
)

// GenericFormatter formats fired alarms for generic webhooks.
type GenericFormatter struct {
	// Template is an optional custom template for the payload.
	Template string
}

// genericPayload is the default payload for generic webhooks.
type genericPayload struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Body     string `json:"body,omitempty"`
	Urgency  string `json:"urgency"`
	Sound    string `json:"sound,omitempty"`
	FireTime string `json:"fire_time"`
	Color    int    `json:"color,omitempty"`
}

// Format converts a fired alarm to the generic webhook format.
func (f *GenericFormatter) Format(alert *model.ScheduledAlert) ([]byte, error) {
	if f.Template != "" {
		return f.formatWithTemplate(alert)
	}

	payload := genericPayload{
		ID:       alert.ID,
		Title:    alert.Title,
		Body:     alert.Body,
		Urgency:  alert.Urgency.String(),
		Sound:    alert.Sound,
		FireTime: alert.FireTime.UTC().Format("2006-01-02T15:04:05Z"),
		Color:    ColorForUrgency(alert.Urgency),
	}

	return json.Marshal(payload)
}

// formatWithTemplate uses a custom template to format the alarm.
func (f *GenericFormatter) formatWithTemplate(alert *model.ScheduledAlert) ([]byte, error) {
	tmpl, err := template.New("webhook").Parse(f.Template)
	if err != nil {
		return nil, err
	}

	data := map[string]interface{}{
		"ID":       alert.ID,
		"Title":    alert.Title,
		"Body":     alert.Body,
		"Urgency":  alert.Urgency.String(),
		"Sound":    alert.Sound,
		"FireTime": alert.FireTime,
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// ContentType returns the content type for generic webhooks.
func (f *GenericFormatter) ContentType() string {
	return "application/json"
}

// NewGenericFormatter creates a new generic formatter with an optional template.
func NewGenericFormatter(template string) *GenericFormatter {
	return &GenericFormatter{Template: template}
}
