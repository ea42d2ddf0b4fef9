package forecast

// Default tuning values applied by DefaultConfig.
const (
	DefaultAlpha              = 0.3
	DefaultBeta               = 0.1
	DefaultMinDataPoints      = 3
	DefaultMaxForecastHorizon = 12
	DefaultMaxSeasonLength    = 12
	DefaultConfidenceLevel    = 0.95
)

// Config carries the per-call tuning of the engine. Every Analyze call reads
// its parameters from an explicit Config value rather than package globals,
// so concurrent callers can run with independent settings.
type Config struct {
	// Alpha is the level smoothing weight for both exponential methods,
	// in [0, 1].
	Alpha float64

	// Beta is the trend smoothing weight for double exponential
	// smoothing, in [0, 1].
	Beta float64

	// MinDataPoints is the minimum number of usable rows a table must
	// provide before any forecast is attempted.
	MinDataPoints int

	// MaxForecastHorizon caps the number of future periods produced,
	// regardless of how many the caller requests.
	MaxForecastHorizon int

	// MaxSeasonLength caps the cycle length used by seasonal
	// decomposition; the effective season length is the smaller of this
	// cap and half the series length.
	MaxSeasonLength int
}

// DefaultConfig returns the standard engine tuning.
func DefaultConfig() Config {
	return Config{
		Alpha:              DefaultAlpha,
		Beta:               DefaultBeta,
		MinDataPoints:      DefaultMinDataPoints,
		MaxForecastHorizon: DefaultMaxForecastHorizon,
		MaxSeasonLength:    DefaultMaxSeasonLength,
	}
}

// withDefaults fills unset (zero or negative) fields with their defaults so
// a partially populated Config still behaves sensibly.
func (c Config) withDefaults() Config {
	if c.Alpha <= 0 || c.Alpha > 1 {
		c.Alpha = DefaultAlpha
	}
	if c.Beta <= 0 || c.Beta > 1 {
		c.Beta = DefaultBeta
	}
	if c.MinDataPoints <= 0 {
		c.MinDataPoints = DefaultMinDataPoints
	}
	if c.MaxForecastHorizon <= 0 {
		c.MaxForecastHorizon = DefaultMaxForecastHorizon
	}
	if c.MaxSeasonLength <= 0 {
		c.MaxSeasonLength = DefaultMaxSeasonLength
	}
	return c
}
