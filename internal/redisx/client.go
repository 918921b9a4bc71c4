package redisx

import (
	"context"
	"fmt"
	"github.com/redis/go-redis/v9"
	"time"
)

func New(addr string) *redis.Client {
	r := redis.NewClient(&redis.Options{Addr: addr})
	_ = r.WithTimeout(2 * time.Second)
	return r
}

// InvalidateProduct drops every cache entry derived from a product's row.
// Called after any stock mutation so reads never serve a stale quantity.
func InvalidateProduct(ctx context.Context, rdb *redis.Client, productID string) {
	_ = rdb.Del(ctx, fmt.Sprintf(KeyProduct, productID), KeyWarehouseStats).Err()
}
