package service

import (
	"context"
	"errors"
	"testing"

	"github.com/abdallah244/store-backend/internal/util"

	"github.com/stretchr/testify/assert"
)

type fakeFeeCache struct {
	fee      int64
	present  bool
	getErr   error
	setCalls []int64
}

func (f *fakeFeeCache) GetDeliveryFee(ctx context.Context) (int64, bool, error) {
	return f.fee, f.present, f.getErr
}

func (f *fakeFeeCache) SetDeliveryFee(ctx context.Context, fee int64) error {
	f.setCalls = append(f.setCalls, fee)
	f.fee = fee
	f.present = true
	return nil
}

func TestDeliveryFeeServedFromCache(t *testing.T) {
	cache := &fakeFeeCache{fee: 65, present: true}
	fees := &DeliveryFees{cache: cache, fallback: 50, logger: util.GetLogger()}

	assert.Equal(t, int64(65), fees.DefaultDeliveryFee(context.Background()))
	assert.Empty(t, cache.setCalls)
}

func TestDeliveryFeeWritesThroughOnMiss(t *testing.T) {
	cache := &fakeFeeCache{}
	fees := &DeliveryFees{cache: cache, fallback: 50, logger: util.GetLogger()}

	assert.Equal(t, int64(50), fees.DefaultDeliveryFee(context.Background()))
	assert.Equal(t, []int64{50}, cache.setCalls, "the configured value seeds the cache")

	assert.Equal(t, int64(50), fees.DefaultDeliveryFee(context.Background()))
	assert.Len(t, cache.setCalls, 1, "a warm cache is not re-seeded")
}

func TestDeliveryFeeFallsBackOnCacheError(t *testing.T) {
	cache := &fakeFeeCache{getErr: errors.New("connection refused")}
	fees := &DeliveryFees{cache: cache, fallback: 50, logger: util.GetLogger()}

	assert.Equal(t, int64(50), fees.DefaultDeliveryFee(context.Background()))
	assert.Empty(t, cache.setCalls)
}

func TestDeliveryFeeWithoutRedis(t *testing.T) {
	fees := NewDeliveryFees(nil, 50)
	assert.Equal(t, int64(50), fees.DefaultDeliveryFee(context.Background()))
}
