package domain

import "time"

// WebhookTickerAll subscribes a webhook to matches on every ticker.
const WebhookTickerAll = "*"

// Webhook represents a subscription to match notifications for a ticker.
type Webhook struct {
	WebhookID string
	Ticker    string // specific ticker or WebhookTickerAll
	URL       string
	CreatedAt time.Time
	UpdatedAt time.Time
}
