package in_memory

import (
	"context"
	"sync"

	"github.com/olyamironova/paper-exchange/internal/domain"
	"github.com/olyamironova/paper-exchange/internal/port"
)

type Cache struct {
	mu      sync.Mutex
	summary *domain.MarketSummary
	writes  int
}

var _ port.Cache = (*Cache)(nil)

func NewCache() *Cache {
	return &Cache{}
}

func (c *Cache) SetMarketSummary(ctx context.Context, s *domain.MarketSummary) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	cpy := *s
	c.summary = &cpy
	c.writes++
	return nil
}

func (c *Cache) GetMarketSummary(ctx context.Context) (*domain.MarketSummary, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.summary == nil {
		return nil, nil
	}
	cpy := *c.summary
	return &cpy, nil
}

// Writes counts SetMarketSummary calls.
func (c *Cache) Writes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.writes
}
