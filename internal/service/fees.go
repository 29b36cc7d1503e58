package service

import (
	"context"

	"github.com/abdallah244/store-backend/internal/redisclient"
	"github.com/abdallah244/store-backend/internal/util"

	"go.uber.org/zap"
)

// FeeSource provides the store-wide default delivery fee applied when a cart
// omits one.
type FeeSource interface {
	DefaultDeliveryFee(ctx context.Context) int64
}

type deliveryFeeCache interface {
	GetDeliveryFee(ctx context.Context) (int64, bool, error)
	SetDeliveryFee(ctx context.Context, fee int64) error
}

// DeliveryFees serves the default delivery fee from Redis, writing the
// configured value through on a miss so every instance converges on the same
// fee. Without Redis it just serves the configured value.
type DeliveryFees struct {
	cache    deliveryFeeCache
	fallback int64
	logger   *zap.Logger
}

// NewDeliveryFees creates a fee source backed by Redis; redis may be nil
func NewDeliveryFees(redis *redisclient.Client, fallback int64) *DeliveryFees {
	d := &DeliveryFees{
		fallback: fallback,
		logger:   util.GetLogger(),
	}
	if redis != nil {
		d.cache = redis
	}
	return d
}

// DefaultDeliveryFee returns the cached fee, falling back to the configured
// value when the cache is cold or unreachable
func (d *DeliveryFees) DefaultDeliveryFee(ctx context.Context) int64 {
	if d.cache == nil {
		return d.fallback
	}

	fee, ok, err := d.cache.GetDeliveryFee(ctx)
	if err != nil {
		d.logger.Warn("Delivery fee cache read failed", zap.Error(err))
		return d.fallback
	}
	if ok {
		return fee
	}

	if err := d.cache.SetDeliveryFee(ctx, d.fallback); err != nil {
		d.logger.Warn("Delivery fee cache write failed", zap.Error(err))
	}
	return d.fallback
}
