package service

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/efreitasn/stockmatch/internal/domain"
	"github.com/efreitasn/stockmatch/internal/store"
	"github.com/google/uuid"
)

// UpsertWebhookRequest represents the input for webhook registration.
type UpsertWebhookRequest struct {
	Ticker string // specific ticker or "*" for all
	URL    string
}

// WebhookService handles webhook CRUD and match notification dispatch.
// It implements engine.MatchNotifier.
type WebhookService struct {
	store  *store.WebhookStore
	client *http.Client
}

// NewWebhookService creates a new WebhookService with the given store
// and delivery timeout.
func NewWebhookService(webhookStore *store.WebhookStore, timeout time.Duration) *WebhookService {
	return &WebhookService{
		store: webhookStore,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Upsert validates the request and creates or refreshes a webhook
// subscription. Returns the resulting webhook and whether it was newly
// created.
func (s *WebhookService) Upsert(req UpsertWebhookRequest) (*domain.Webhook, bool, error) {
	if req.Ticker == "" {
		return nil, false, &domain.ValidationError{Message: "ticker is required ('*' subscribes to all tickers)"}
	}
	if req.URL == "" {
		return nil, false, &domain.ValidationError{Message: "url is required"}
	}
	if len(req.URL) > 2048 {
		return nil, false, &domain.ValidationError{Message: "url must be at most 2048 characters"}
	}
	parsed, err := url.ParseRequestURI(req.URL)
	if err != nil || !parsed.IsAbs() {
		return nil, false, &domain.ValidationError{Message: "url must be a valid absolute URL"}
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, false, &domain.ValidationError{Message: "url must use http or https scheme"}
	}

	now := time.Now().UTC().Truncate(time.Second)
	w := &domain.Webhook{
		WebhookID: uuid.New().String(),
		Ticker:    req.Ticker,
		URL:       req.URL,
		CreatedAt: now,
		UpdatedAt: now,
	}

	stored, created := s.store.Upsert(w)
	return stored, created, nil
}

// List returns all webhook subscriptions.
func (s *WebhookService) List() []*domain.Webhook {
	return s.store.List()
}

// Delete removes a webhook subscription by ID.
func (s *WebhookService) Delete(webhookID string) error {
	return s.store.Delete(webhookID)
}

// matchPayload is the JSON payload for match notifications.
type matchPayload struct {
	Event     string    `json:"event"`
	Timestamp string    `json:"timestamp"`
	Data      matchData `json:"data"`
}

type matchData struct {
	MatchID         string  `json:"match_id"`
	Ticker          string  `json:"ticker"`
	BuyOrderID      string  `json:"buy_order_id"`
	SellOrderID     string  `json:"sell_order_id"`
	BuyPrice        float64 `json:"buy_price"`
	SellPrice       float64 `json:"sell_price"`
	MatchedQuantity int64   `json:"matched_quantity"`
}

// NotifyMatch dispatches a match.executed notification to every webhook
// subscribed to the event's ticker. Fire-and-forget — delivery happens
// on background goroutines and errors are silently ignored, so the
// matching path never blocks on network I/O.
func (s *WebhookService) NotifyMatch(ev *domain.MatchEvent) {
	subs := s.store.ListByTicker(ev.Ticker)
	if len(subs) == 0 {
		return
	}

	payload := matchPayload{
		Event:     "match.executed",
		Timestamp: ev.ExecutedAt.UTC().Truncate(time.Second).Format(time.RFC3339),
		Data: matchData{
			MatchID:         ev.MatchID,
			Ticker:          ev.Ticker,
			BuyOrderID:      ev.BuyOrderID,
			SellOrderID:     ev.SellOrderID,
			BuyPrice:        ev.BuyPrice,
			SellPrice:       ev.SellPrice,
			MatchedQuantity: ev.MatchedQuantity,
		},
	}

	for _, wh := range subs {
		go s.deliver(wh, payload)
	}
}

// deliver sends the payload via HTTP POST with the delivery headers.
// Errors are silently ignored (fire-and-forget).
func (s *WebhookService) deliver(wh *domain.Webhook, payload matchPayload) {
	body, err := json.Marshal(payload)
	if err != nil {
		return
	}

	req, err := http.NewRequest(http.MethodPost, wh.URL, bytes.NewReader(body))
	if err != nil {
		return
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Delivery-Id", uuid.New().String())
	req.Header.Set("X-Webhook-Id", wh.WebhookID)
	req.Header.Set("X-Event-Type", "match.executed")

	resp, err := s.client.Do(req)
	if err != nil {
		return
	}
	resp.Body.Close()
}
