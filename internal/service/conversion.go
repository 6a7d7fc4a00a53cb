package service

import (
	"context"

	"golang.org/x/sync/singleflight"

	"currency-proxy/internal/domain/model"
	"currency-proxy/internal/domain/ports"
	"currency-proxy/internal/metrics"
	"currency-proxy/pkg/logger"
)

// ConversionService decides between the cache and the provider.
//
// Concurrent misses for the same key are coalesced: one provider call and one
// cache write, shared by every waiting caller.
type ConversionService struct {
	provider ports.RateProvider
	cache    ports.ConversionCache
	log      *logger.Logger
	metrics  *metrics.Metrics
	flights  singleflight.Group
}

type flightResult struct {
	record    model.ConversionRecord
	fromCache bool
}

func NewConversionService(provider ports.RateProvider, cache ports.ConversionCache, log *logger.Logger, m *metrics.Metrics) *ConversionService {
	return &ConversionService{
		provider: provider,
		cache:    cache,
		log:      log,
		metrics:  m,
	}
}

func (s *ConversionService) Convert(ctx context.Context, source, target, date string) (*model.ConversionResult, error) {
	key := model.NewConversionKey(source, target, date)

	if record, found := s.cache.Get(ctx, key); found {
		s.log.Info("Retrieved exchange rate from cache", "key", key.String())
		s.metrics.CacheHitsTotal.Inc()
		return model.NewConversionResult(key, record, true), nil
	}

	// The shared fetch must outlive any single caller's cancellation.
	flightCtx := context.WithoutCancel(ctx)

	v, err, shared := s.flights.Do(key.String(), func() (any, error) {
		// A flight for this key may have stored the record since our lookup.
		if record, found := s.cache.Get(flightCtx, key); found {
			return flightResult{record: record, fromCache: true}, nil
		}

		s.metrics.CacheMissesTotal.Inc()
		s.log.Info("Fetching exchange rate from provider", "key", key.String(), "provider", s.provider.Name())

		record, err := s.provider.FetchConversion(flightCtx, key)
		if err != nil {
			s.metrics.ProviderRequestsTotal.WithLabelValues(s.provider.Name(), "error").Inc()
			return nil, err
		}
		s.metrics.ProviderRequestsTotal.WithLabelValues(s.provider.Name(), "success").Inc()

		s.cache.Put(flightCtx, key, *record)
		s.metrics.CacheEntries.Set(float64(s.cache.Len()))

		return flightResult{record: *record}, nil
	})
	if err != nil {
		s.log.Error("Error fetching exchange rate from provider", "error", err, "key", key.String())
		return nil, err
	}

	res := v.(flightResult)
	if shared {
		s.log.Debug("Joined in-flight provider request", "key", key.String())
	}
	if res.fromCache {
		s.metrics.CacheHitsTotal.Inc()
	}

	return model.NewConversionResult(key, res.record, res.fromCache), nil
}
