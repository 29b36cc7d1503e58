package redisclient

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/abdallah244/store-backend/internal/models"

	"github.com/go-redis/redis/v8"
)

const (
	productCacheTTL = 5 * time.Minute
	deliveryFeeTTL  = time.Hour

	deliveryFeeKey = "settings:delivery-fee"
)

type Client struct {
	rdb *redis.Client
}

// NewClient creates a new Redis client
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// GetProduct returns a cached product, or nil on a cache miss
func (c *Client) GetProduct(ctx context.Context, productID string) (*models.Product, error) {
	data, err := c.rdb.Get(ctx, productKey(productID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var product models.Product
	if err := json.Unmarshal(data, &product); err != nil {
		return nil, fmt.Errorf("failed to decode cached product: %w", err)
	}
	return &product, nil
}

// SetProduct caches a product with a TTL
func (c *Client) SetProduct(ctx context.Context, product *models.Product) error {
	data, err := json.Marshal(product)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, productKey(product.ID), data, productCacheTTL).Err()
}

// InvalidateProduct drops a product from the cache after a stock write
func (c *Client) InvalidateProduct(ctx context.Context, productID string) error {
	return c.rdb.Del(ctx, productKey(productID)).Err()
}

// GetDeliveryFee returns the cached default delivery fee. The second return
// reports whether the key was present.
func (c *Client) GetDeliveryFee(ctx context.Context) (int64, bool, error) {
	fee, err := c.rdb.Get(ctx, deliveryFeeKey).Int64()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return fee, true, nil
}

// SetDeliveryFee caches the default delivery fee with a TTL
func (c *Client) SetDeliveryFee(ctx context.Context, fee int64) error {
	return c.rdb.Set(ctx, deliveryFeeKey, fee, deliveryFeeTTL).Err()
}

func productKey(id string) string {
	return fmt.Sprintf("product:%s", id)
}
