package service

import (
	"context"

	"github.com/abdallah244/store-backend/internal/models"
	"github.com/abdallah244/store-backend/internal/redisclient"
	"github.com/abdallah244/store-backend/internal/store"
	"github.com/abdallah244/store-backend/internal/util"

	"go.uber.org/zap"
)

// productStore is the slice of the database layer the catalog needs
type productStore interface {
	GetProductByID(ctx context.Context, id string) (*models.Product, error)
	GetProductsByIDs(ctx context.Context, ids []string) ([]models.Product, error)
	DeductStock(ctx context.Context, productID string, qty int) (bool, error)
	RestoreStock(ctx context.Context, productID string, qty int) error
}

// productCache is the slice of the Redis client the catalog needs
type productCache interface {
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	SetProduct(ctx context.Context, product *models.Product) error
	InvalidateProduct(ctx context.Context, id string) error
}

// CatalogClient fronts the product store with a Redis cache. Stock writes go
// straight to the database and invalidate the cached product afterwards; a
// stale cache entry can only ever affect reads, never the deduction itself.
type CatalogClient struct {
	store  productStore
	cache  productCache
	logger *zap.Logger
}

// NewCatalogClient creates a new catalog client
func NewCatalogClient(store *store.Store, redis *redisclient.Client) *CatalogClient {
	cc := &CatalogClient{
		store:  store,
		logger: util.GetLogger(),
	}
	if redis != nil {
		cc.cache = redis
	}
	return cc
}

// GetProductByID retrieves a product, cache-aside
func (cc *CatalogClient) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	if cc.cache != nil {
		cached, err := cc.cache.GetProduct(ctx, id)
		if err != nil {
			cc.logger.Warn("Product cache read failed", zap.String("product_id", id), zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	product, err := cc.store.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if cc.cache != nil {
		if err := cc.cache.SetProduct(ctx, product); err != nil {
			cc.logger.Warn("Product cache write failed", zap.String("product_id", id), zap.Error(err))
		}
	}
	return product, nil
}

// GetProductsByIDs retrieves several products at once. Cache hits are served
// from Redis, the misses go to the database in one batch query and are cached
// on the way out. Products that no longer exist are simply absent from the
// result.
func (cc *CatalogClient) GetProductsByIDs(ctx context.Context, ids []string) ([]models.Product, error) {
	products := make([]models.Product, 0, len(ids))
	misses := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))

	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if cc.cache != nil {
			cached, err := cc.cache.GetProduct(ctx, id)
			if err != nil {
				cc.logger.Warn("Product cache read failed", zap.String("product_id", id), zap.Error(err))
			} else if cached != nil {
				products = append(products, *cached)
				continue
			}
		}
		misses = append(misses, id)
	}

	if len(misses) > 0 {
		fetched, err := cc.store.GetProductsByIDs(ctx, misses)
		if err != nil {
			return nil, err
		}
		for i := range fetched {
			if cc.cache != nil {
				if err := cc.cache.SetProduct(ctx, &fetched[i]); err != nil {
					cc.logger.Warn("Product cache write failed",
						zap.String("product_id", fetched[i].ID), zap.Error(err))
				}
			}
			products = append(products, fetched[i])
		}
	}

	return products, nil
}

// DeductStock atomically decrements stock when enough remains. The cached
// product is dropped on either outcome: a refused decrement means stock moved
// under us and whatever the cache holds is stale.
func (cc *CatalogClient) DeductStock(ctx context.Context, productID string, qty int) (bool, error) {
	ok, err := cc.store.DeductStock(ctx, productID, qty)
	if err != nil {
		return false, err
	}
	cc.invalidate(ctx, productID)
	return ok, nil
}

// RestoreStock re-increments stock deducted earlier (compensation)
func (cc *CatalogClient) RestoreStock(ctx context.Context, productID string, qty int) error {
	if err := cc.store.RestoreStock(ctx, productID, qty); err != nil {
		return err
	}
	cc.invalidate(ctx, productID)
	return nil
}

func (cc *CatalogClient) invalidate(ctx context.Context, productID string) {
	if cc.cache == nil {
		return
	}
	if err := cc.cache.InvalidateProduct(ctx, productID); err != nil {
		cc.logger.Warn("Product cache invalidation failed",
			zap.String("product_id", productID), zap.Error(err))
	}
}
