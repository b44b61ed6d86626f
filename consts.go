package megasena

import "time"

const (
	// DefaultBaseURL is the public Caixa endpoint for Mega-Sena draws
	DefaultBaseURL = "https://servicebus2.caixa.gov.br/portaldeloterias/api/megasena"

	// DefaultRequestTimeout is the per-request timeout for upstream calls
	DefaultRequestTimeout = 10 * time.Second

	// DefaultLookupTimeout is the shorter timeout used by the date-lookup fallback scan
	DefaultLookupTimeout = 5 * time.Second

	// DefaultHistoryWindow is how many draw numbers back the aggregator scans
	DefaultHistoryWindow = 180

	// DefaultLookupWindow is how many draw numbers back the date-lookup fallback scans
	DefaultLookupWindow = 100

	// DefaultFetchConcurrency is the number of in-flight upstream fetches
	DefaultFetchConcurrency = 10

	// RecencyWindowDays bounds which draws count as historical data (~2 years)
	RecencyWindowDays = 730

	// MinNumbersPerDraw is the minimum count of recognized numbers for a
	// record to survive normalization (enough for a quadra)
	MinNumbersPerDraw = 4

	// NumberMin and NumberMax bound the valid Mega-Sena number range
	NumberMin = 1
	NumberMax = 60
)

const (
	// CacheKeyProcessedData holds the normalized and filtered draw list
	CacheKeyProcessedData = "processed_data"

	// CacheKeyEstimate holds the current frequency estimate
	CacheKeyEstimate = "estimate"

	// CacheKeyDrawPrefix prefixes per-date draw lookup keys
	CacheKeyDrawPrefix = "draw:"

	// DefaultProcessedDataTTL is how long processed draw data stays cached
	DefaultProcessedDataTTL = 1 * time.Hour

	// DefaultEstimateTTL is how long a generated estimate stays cached
	DefaultEstimateTTL = 30 * time.Minute

	// DefaultDrawTTL caches historical date lookups; past draws never change
	DefaultDrawTTL = 24 * time.Hour
)

const (
	// DefaultBreakerName is the default name for the upstream circuit breaker
	DefaultBreakerName = "megasena-api"

	// DefaultFailureThreshold is the number of consecutive failures that opens the breaker
	DefaultFailureThreshold = 5

	// DefaultRecoveryTimeout is how long the breaker stays open before probing recovery
	DefaultRecoveryTimeout = 30 * time.Second
)

const (
	// DateFormatBR is the localized date layout used by draw records
	DateFormatBR = "02/01/2006"

	// DateFormatISO is the date layout accepted by lookups and stamped on estimates
	DateFormatISO = "2006-01-02"
)

const (
	CacheKindMemory = "memory"
	CacheKindRedis  = "redis"
)
