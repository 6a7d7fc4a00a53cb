package ports

import (
	"context"

	"currency-proxy/internal/domain/model"
)

// ConversionCache stores provider results for the lifetime of the process.
// Put must not replace a record that is already present.
type ConversionCache interface {
	Get(ctx context.Context, key model.ConversionKey) (model.ConversionRecord, bool)
	Put(ctx context.Context, key model.ConversionKey, record model.ConversionRecord)
	Len() int
}
