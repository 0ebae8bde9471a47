package universe

import (
	"context"
	"fmt"
	"time"

	logger "github.com/sirupsen/logrus"

	"signalscanner/src/model"
)

// ConstituentsFetcher supplies the fresh index symbol list.
type ConstituentsFetcher interface {
	GetSP500Constituents(ctx context.Context) ([]string, error)
}

type cacheStore interface {
	GetAll(ctx context.Context) ([]model.SymbolsCache, error)
	ReplaceAll(ctx context.Context, symbols []string, now time.Time) error
}

// Cache is the time-boxed symbol universe. Freshness is judged by the
// oldest cached entry, so a half-finished refresh can never look fresh.
// When the upstream fetch fails or comes back empty, a stale cache is
// preferred over failing the scan.
type Cache struct {
	store   cacheStore
	fetcher ConstituentsFetcher
}

func NewCache(store cacheStore, fetcher ConstituentsFetcher) *Cache {
	return &Cache{store: store, fetcher: fetcher}
}

// GetUniverse returns the index constituents, refreshing the cache when it
// is older than ttl.
func (c *Cache) GetUniverse(ctx context.Context, now time.Time, ttl time.Duration) ([]string, error) {
	cached, err := c.store.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("read symbols cache: %w", err)
	}

	if len(cached) > 0 {
		oldest := cached[0].UpdatedAt
		for _, entry := range cached[1:] {
			if entry.UpdatedAt.Before(oldest) {
				oldest = entry.UpdatedAt
			}
		}
		if now.Sub(oldest) < ttl {
			logger.WithField("symbols", len(cached)).Debug("Using cached universe symbols")
			return symbolsOf(cached), nil
		}
	}

	logger.Info("Fetching fresh universe constituents")
	fresh, err := c.fetcher.GetSP500Constituents(ctx)
	if err != nil || len(fresh) == 0 {
		if err != nil {
			logger.WithError(err).Warn("Constituents fetch failed")
		}
		if len(cached) > 0 {
			logger.Warn("Falling back to stale universe cache")
			return symbolsOf(cached), nil
		}
		if err != nil {
			return nil, fmt.Errorf("fetch constituents: %w", err)
		}
		return nil, nil
	}

	if err := c.store.ReplaceAll(ctx, fresh, now); err != nil {
		return nil, fmt.Errorf("refresh symbols cache: %w", err)
	}

	logger.WithField("symbols", len(fresh)).Info("Universe cache refreshed")
	return fresh, nil
}

func symbolsOf(entries []model.SymbolsCache) []string {
	symbols := make([]string, 0, len(entries))
	for _, entry := range entries {
		symbols = append(symbols, entry.Symbol)
	}
	return symbols
}
