package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"neocafe-assistant/chat-svc/internal/domain"
	"neocafe-assistant/chat-svc/internal/service"
)

const menuCacheTTL = 5 * time.Minute

// MenuClient fetches the live catalog from the menu service and caches it.
// When the menu service is unreachable it serves the last good snapshot, or
// the built-in baseline menu if there never was one, so the dialogue can keep
// taking orders through a menu outage.
type MenuClient struct {
	BaseURL string
	Client  *http.Client

	mu        sync.RWMutex
	cached    domain.Catalog
	fetchedAt time.Time
}

func NewMenuClient(baseURL string, client *http.Client) *MenuClient {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	return &MenuClient{BaseURL: baseURL, Client: client}
}

var _ service.CatalogSource = (*MenuClient)(nil)

func (m *MenuClient) Snapshot(ctx context.Context) (domain.Catalog, error) {
	m.mu.RLock()
	if len(m.cached.Items) > 0 && time.Since(m.fetchedAt) < menuCacheTTL {
		catalog := m.cached
		m.mu.RUnlock()
		return catalog, nil
	}
	m.mu.RUnlock()

	catalog, err := m.fetch(ctx)
	if err != nil {
		log.Printf("Warning: menu fetch failed, using fallback: %v", err)
		m.mu.RLock()
		defer m.mu.RUnlock()
		if len(m.cached.Items) > 0 {
			return m.cached, nil
		}
		return FallbackCatalog(), nil
	}

	m.mu.Lock()
	m.cached = catalog
	m.fetchedAt = time.Now()
	m.mu.Unlock()
	return catalog, nil
}

func (m *MenuClient) fetch(ctx context.Context) (domain.Catalog, error) {
	if m.BaseURL == "" {
		return domain.Catalog{}, fmt.Errorf("no menu service configured")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.BaseURL+"/api/menu", nil)
	if err != nil {
		return domain.Catalog{}, err
	}
	resp, err := m.Client.Do(req)
	if err != nil {
		return domain.Catalog{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return domain.Catalog{}, fmt.Errorf("menu service returned status %d", resp.StatusCode)
	}

	var payload struct {
		Items []domain.CatalogItem `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return domain.Catalog{}, err
	}
	if len(payload.Items) == 0 {
		return domain.Catalog{}, fmt.Errorf("menu service returned an empty menu")
	}
	return domain.Catalog{Items: payload.Items}, nil
}

// FallbackCatalog is the baseline cafe menu served when no menu service has
// ever answered.
func FallbackCatalog() domain.Catalog {
	return domain.Catalog{Items: []domain.CatalogItem{
		{ID: "espresso", Name: "Espresso", Description: "Rich single shot", Price: 2.95, Category: "coffee", Popular: true},
		{ID: "latte", Name: "Latte", Description: "Espresso with steamed milk", Price: 4.50, Category: "coffee", Popular: true},
		{ID: "cappuccino", Name: "Cappuccino", Description: "Espresso with foamed milk", Price: 4.25, Category: "coffee"},
		{ID: "mocha", Name: "Mocha", Description: "Espresso with chocolate and steamed milk", Price: 4.75, Category: "coffee"},
		{ID: "croissant", Name: "Croissant", Description: "Butter croissant", Price: 3.25, Category: "pastry"},
	}}
}
