package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/GTDGit/bookstore_api/internal/models"
)

// ProductKind identifies which catalog collection a record came from.
type ProductKind string

const (
	KindBook       ProductKind = "book"
	KindStationery ProductKind = "stationery"
)

const defaultDimensionTTL = 6 * time.Hour

// CachedDimensions is the stored form of a catalog product's shipping attributes.
type CachedDimensions struct {
	Kind       ProductKind       `json:"kind"`
	Dimensions models.Dimensions `json:"dimensions"`
	CachedAt   time.Time         `json:"cachedAt"`
}

// DimensionCache caches catalog dimension records. Carrier responses are
// never stored here.
type DimensionCache struct {
	store Store
	ttl   time.Duration
}

// NewDimensionCache creates a DimensionCache over store.
func NewDimensionCache(store Store, ttl time.Duration) *DimensionCache {
	if ttl <= 0 {
		ttl = defaultDimensionTTL
	}
	return &DimensionCache{store: store, ttl: ttl}
}

func (c *DimensionCache) key(productID int) string {
	return fmt.Sprintf("catalog:dimensions:%d", productID)
}

// Get returns the cached record for productID. A miss yields (nil, nil).
func (c *DimensionCache) Get(ctx context.Context, productID int) (*CachedDimensions, error) {
	raw, err := c.store.Get(ctx, c.key(productID))
	if errors.Is(err, ErrMiss) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var data CachedDimensions
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal dimension data: %w", err)
	}
	return &data, nil
}

// Set stores the dimensions of a catalog record.
func (c *DimensionCache) Set(ctx context.Context, productID int, kind ProductKind, dims models.Dimensions) error {
	data := CachedDimensions{Kind: kind, Dimensions: dims, CachedAt: time.Now()}
	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal dimension data: %w", err)
	}
	return c.store.Set(ctx, c.key(productID), string(jsonData), c.ttl)
}

// Delete drops a cached record.
func (c *DimensionCache) Delete(ctx context.Context, productID int) error {
	return c.store.Delete(ctx, c.key(productID))
}
