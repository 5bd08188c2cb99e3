package port

import (
	"context"

	"github.com/olyamironova/paper-exchange/internal/domain"
)

type Cache interface {
	SetMarketSummary(ctx context.Context, s *domain.MarketSummary) error
	// GetMarketSummary returns nil, nil when nothing is cached.
	GetMarketSummary(ctx context.Context) (*domain.MarketSummary, error)
}
