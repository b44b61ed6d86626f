package megasena

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ServiceStats is a snapshot of the shared infrastructure state
type ServiceStats struct {
	CacheKind      string       `json:"cache_type"`
	CircuitBreaker BreakerStats `json:"circuit_breaker"`
}

// Service composes the cache, breaker, upstream client and aggregator
// into the operations the REST surface exposes. All reads are
// cache-first; writes apply differentiated TTLs per key kind.
type Service struct {
	cache      *CacheManager
	aggregator *Aggregator
	client     *APIClient
	breaker    *Breaker
	logger     Logger

	processedTTL  time.Duration
	estimateTTL   time.Duration
	drawTTL       time.Duration
	lookupWindow  int
	lookupTimeout time.Duration
}

// NewService wires the service from its collaborators, constructed
// once at process start and shared by every request.
func NewService(cfg *Config, cache *CacheManager, aggregator *Aggregator, client *APIClient, breaker *Breaker, logger Logger) *Service {
	return &Service{
		cache:         cache,
		aggregator:    aggregator,
		client:        client,
		breaker:       breaker,
		logger:        logger,
		processedTTL:  cfg.Cache.ProcessedDataTTL,
		estimateTTL:   cfg.Cache.EstimateTTL,
		drawTTL:       cfg.Cache.DrawTTL,
		lookupWindow:  cfg.API.LookupWindow,
		lookupTimeout: cfg.API.LookupTimeout,
	}
}

// GetProcessedData returns the normalized recent draw history,
// refreshing from the upstream on cache miss or when forceRefresh is
// set.
func (s *Service) GetProcessedData(ctx context.Context, forceRefresh bool) ([]DrawRecord, error) {
	if !forceRefresh {
		if raw, ok := s.cache.Get(ctx, CacheKeyProcessedData); ok {
			var records []DrawRecord
			if err := json.Unmarshal(raw, &records); err == nil {
				return records, nil
			}
			s.logger.Error("Discarding corrupt cache entry %q", CacheKeyProcessedData)
		}
	}

	draws, err := s.aggregator.FetchHistoricalWindow(ctx)
	if err != nil {
		return nil, err
	}

	records := FilterRecent(NormalizeDraws(draws))

	if data, err := json.Marshal(records); err == nil {
		s.cache.Set(ctx, CacheKeyProcessedData, data, s.processedTTL)
	}
	return records, nil
}

// GetEstimate returns the most frequent numbers grouped as quadra,
// quina and sorte, stamped with the current date. The estimate is
// cached independently of the processed data, with a shorter TTL.
func (s *Service) GetEstimate(ctx context.Context) (*Estimate, error) {
	if raw, ok := s.cache.Get(ctx, CacheKeyEstimate); ok {
		var estimate Estimate
		if err := json.Unmarshal(raw, &estimate); err == nil {
			return &estimate, nil
		}
		s.logger.Error("Discarding corrupt cache entry %q", CacheKeyEstimate)
	}

	records, err := s.GetProcessedData(ctx, false)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrDataProcessing.WithDetails("no historical data available to generate an estimate")
	}

	estimate := GenerateEstimates(CalculateFrequencies(records))
	estimate.Data = time.Now().Format(DateFormatISO)

	if data, err := json.Marshal(estimate); err == nil {
		s.cache.Set(ctx, CacheKeyEstimate, data, s.estimateTTL)
	}
	return &estimate, nil
}

// GetDrawByDate looks up the draw held on the given ISO date. It
// searches the processed history first and then falls back to a
// direct bounded scan of recent draw numbers. A date that does not
// parse resolves to the same not-found error as an absent date; that
// is observable behavior existing callers rely on.
func (s *Service) GetDrawByDate(ctx context.Context, date string) (*DrawRecord, error) {
	parsed, err := time.Parse(DateFormatISO, date)
	if err != nil {
		return nil, NewDrawNotFoundError(date)
	}
	dateBR := parsed.Format(DateFormatBR)

	key := CacheKeyDrawPrefix + date
	if raw, ok := s.cache.Get(ctx, key); ok {
		var record DrawRecord
		if err := json.Unmarshal(raw, &record); err == nil {
			return &record, nil
		}
	}

	records, err := s.GetProcessedData(ctx, false)
	if err != nil {
		return nil, err
	}
	for _, record := range records {
		if record.Data == dateBR {
			found := DrawRecord{
				Data:           dateBR,
				NumeroConcurso: record.NumeroConcurso,
				Numeros:        record.Numeros,
			}
			s.storeDraw(ctx, key, &found)
			return &found, nil
		}
	}

	record, err := s.scanUpstream(ctx, dateBR)
	if err != nil {
		return nil, err
	}
	if record != nil {
		s.storeDraw(ctx, key, record)
		return record, nil
	}

	return nil, NewDrawNotFoundError(date)
}

// storeDraw caches a resolved date lookup with the long TTL;
// historical draws never change.
func (s *Service) storeDraw(ctx context.Context, key string, record *DrawRecord) {
	if data, err := json.Marshal(record); err == nil {
		s.cache.Set(ctx, key, data, s.drawTTL)
	}
}

// scanUpstream probes the most recent draw numbers directly for a
// draw held on dateBR. Per-draw failures are skipped; an open breaker
// aborts the scan and propagates so callers can back off.
func (s *Service) scanUpstream(ctx context.Context, dateBR string) (*DrawRecord, error) {
	latest, err := s.aggregator.LatestDrawNumber(ctx)
	if err != nil {
		if errors.Is(err, ErrCircuitOpen) {
			return nil, err
		}
		return nil, nil
	}

	start := latest - s.lookupWindow
	if start < 1 {
		start = 1
	}

	for number := start; number <= latest; number++ {
		result, err := s.breaker.Call(func() (any, error) {
			return s.client.DrawByNumberQuick(ctx, number, s.lookupTimeout)
		})
		if err != nil {
			if errors.Is(err, ErrCircuitOpen) {
				return nil, err
			}
			continue
		}

		draw := result.(RawDraw)
		if draw.DateString() != dateBR {
			continue
		}
		return &DrawRecord{
			Data:           dateBR,
			NumeroConcurso: extractConcurso(draw),
			Numeros:        extractNumbers(draw),
		}, nil
	}
	return nil, nil
}

// WarmUp primes the processed-data cache once at startup
func (s *Service) WarmUp(ctx context.Context) {
	if _, err := s.GetProcessedData(ctx, false); err != nil {
		s.logger.Error("Cache warm-up failed: %v", err)
		return
	}
	s.logger.Info("Cache warm-up complete")
}

// ClearCache empties every cached entry
func (s *Service) ClearCache(ctx context.Context) bool {
	return s.cache.Clear(ctx)
}

// Stats returns the cache backend kind and a breaker snapshot
func (s *Service) Stats() ServiceStats {
	return ServiceStats{
		CacheKind:      s.cache.Kind(),
		CircuitBreaker: s.breaker.Stats(),
	}
}
