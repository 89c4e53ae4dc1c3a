package store

import (
	"sync"

	"github.com/efreitasn/stockmatch/internal/domain"
)

// WebhookStore is a thread-safe in-memory store for webhooks.
// Primary index: webhook_id → webhook.
// Secondary index: ticker → url → webhook.
type WebhookStore struct {
	mu       sync.RWMutex
	webhooks map[string]*domain.Webhook            // webhook_id → webhook
	byTicker map[string]map[string]*domain.Webhook // ticker → url → webhook
}

// NewWebhookStore creates an empty WebhookStore.
func NewWebhookStore() *WebhookStore {
	return &WebhookStore{
		webhooks: make(map[string]*domain.Webhook),
		byTicker: make(map[string]map[string]*domain.Webhook),
	}
}

// Upsert inserts or refreshes a webhook subscription keyed by
// (ticker, url). If a subscription already exists for that pair, only
// UpdatedAt changes and the webhook_id remains stable. It returns the
// surviving webhook and whether a new subscription was created; lookup
// and insert share one critical section, so the result is always the
// stored record.
func (s *WebhookStore) Upsert(w *domain.Webhook) (*domain.Webhook, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if urls, ok := s.byTicker[w.Ticker]; ok {
		if existing, ok := urls[w.URL]; ok {
			existing.UpdatedAt = w.UpdatedAt
			return existing, false
		}
	}

	// New subscription — add to both indexes.
	s.webhooks[w.WebhookID] = w

	if s.byTicker[w.Ticker] == nil {
		s.byTicker[w.Ticker] = make(map[string]*domain.Webhook)
	}
	s.byTicker[w.Ticker][w.URL] = w

	return w, true
}

// Get retrieves a webhook by ID. It returns
// domain.ErrWebhookNotFound if the webhook does not exist.
func (s *WebhookStore) Get(id string) (*domain.Webhook, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w, ok := s.webhooks[id]
	if !ok {
		return nil, domain.ErrWebhookNotFound
	}
	return w, nil
}

// List returns all webhook subscriptions.
func (s *WebhookStore) List() []*domain.Webhook {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Webhook, 0, len(s.webhooks))
	for _, w := range s.webhooks {
		result = append(result, w)
	}
	return result
}

// ListByTicker returns the webhooks subscribed to a ticker, including
// wildcard subscriptions.
func (s *WebhookStore) ListByTicker(ticker string) []*domain.Webhook {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Webhook
	for _, w := range s.byTicker[ticker] {
		result = append(result, w)
	}
	if ticker != domain.WebhookTickerAll {
		for _, w := range s.byTicker[domain.WebhookTickerAll] {
			result = append(result, w)
		}
	}
	return result
}

// Delete removes a webhook by ID. It returns
// domain.ErrWebhookNotFound if the webhook does not exist.
// Both the primary and secondary indexes are cleaned up.
func (s *WebhookStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.webhooks[id]
	if !ok {
		return domain.ErrWebhookNotFound
	}

	delete(s.webhooks, id)

	if urls, ok := s.byTicker[w.Ticker]; ok {
		delete(urls, w.URL)
		if len(urls) == 0 {
			delete(s.byTicker, w.Ticker)
		}
	}

	return nil
}
