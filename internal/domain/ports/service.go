package ports

import (
	"context"

	"currency-proxy/internal/domain/model"
)

type ConversionService interface {
	Convert(ctx context.Context, source, target, date string) (*model.ConversionResult, error)
}
