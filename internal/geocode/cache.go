package geocode

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CachedGeocoder memoizes resolved addresses in Redis. Cache failures degrade
// to a direct lookup so a flaky cache never fails a shelter request.
type CachedGeocoder struct {
	inner  Geocoder
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedGeocoder wraps a geocoder with a Redis cache. When client is nil
// or ttl is zero, the inner geocoder is used directly.
func NewCachedGeocoder(inner Geocoder, client *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedGeocoder {
	return &CachedGeocoder{inner: inner, client: client, ttl: ttl, logger: logger}
}

// ReverseGeocode returns the cached address when present, resolving and
// storing it otherwise.
func (g *CachedGeocoder) ReverseGeocode(ctx context.Context, lat, lon float64) (string, error) {
	if g.client == nil || g.ttl <= 0 {
		return g.inner.ReverseGeocode(ctx, lat, lon)
	}

	key := cacheKey(lat, lon)
	if cached, err := g.client.Get(ctx, key).Result(); err == nil && cached != "" {
		return cached, nil
	} else if err != nil && err != redis.Nil {
		g.logger.Warn("geocode cache read failed", zap.Error(err))
	}

	address, err := g.inner.ReverseGeocode(ctx, lat, lon)
	if err != nil {
		return "", err
	}

	if err := g.client.Set(ctx, key, address, g.ttl).Err(); err != nil {
		g.logger.Warn("geocode cache write failed", zap.Error(err))
	}
	return address, nil
}

func cacheKey(lat, lon float64) string {
	return fmt.Sprintf("geocode:%.6f,%.6f", lat, lon)
}
