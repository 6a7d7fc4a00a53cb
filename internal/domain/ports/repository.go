package ports

import (
	"context"

	"currency-proxy/internal/domain/model"
)

// RateProvider performs one outbound conversion call per invocation. It never caches.
type RateProvider interface {
	Name() string
	FetchConversion(ctx context.Context, key model.ConversionKey) (*model.ConversionRecord, error)
}
