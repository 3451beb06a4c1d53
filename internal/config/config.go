package config

// Config holds the runtime settings of a screening. Every field is read from
// a TRIAD_* environment variable (or a .env file); CLI flags override them.
type Config struct {
	// Input and output
	DataRoot    string `envconfig:"TRIAD_DATA_ROOT" default:"data" validate:"required"`
	OutDir      string `envconfig:"TRIAD_OUT_DIR" default:"out" validate:"required"`
	DBPath      string `envconfig:"TRIAD_DB_PATH"`      // empty disables persistence
	MetricsFile string `envconfig:"TRIAD_METRICS_FILE"` // Prometheus textfile; empty disables export

	// Execution
	Workers  int    `envconfig:"TRIAD_WORKERS" default:"4" validate:"gte=1,lte=256"`
	LogLevel string `envconfig:"TRIAD_LOG_LEVEL" default:"info" validate:"oneof=debug info warn warning error"`
	NoColor  bool   `envconfig:"TRIAD_NO_COLOR" default:"false"`

	// Gate
	Preset         string  `envconfig:"TRIAD_PRESET" default:"default" validate:"oneof=default strict"`
	ThresholdsFile string  `envconfig:"TRIAD_THRESHOLDS_FILE"`
	Alpha          float64 `envconfig:"TRIAD_ALPHA" default:"0.005" validate:"gt=0,lt=1"`

	// Metrics
	WindowS   float64 `envconfig:"TRIAD_WINDOW_S" default:"5" validate:"gt=0"`
	BinS      float64 `envconfig:"TRIAD_BIN_S" default:"5" validate:"gt=0"`
	Lags      int     `envconfig:"TRIAD_LAGS" default:"10" validate:"gte=1,lte=1000"`
	Weighting string  `envconfig:"TRIAD_M_WEIGHTING" default:"lag" validate:"oneof=lag ljung-box"`
	MaxBins   int     `envconfig:"TRIAD_MAX_BINS" default:"1000000" validate:"gte=1"`
}

// ConfigErrorType categorizes configuration loading failures to aid debugging.
type ConfigErrorType string

const (
	// ErrParsing indicates an environment value could not be parsed.
	ErrParsing ConfigErrorType = "PARSING_FAILED"
	// ErrValidation indicates the populated Config failed struct validation.
	ErrValidation ConfigErrorType = "VALIDATION_FAILED"
	// ErrThresholdsFile indicates the thresholds override file could not be read or decoded.
	ErrThresholdsFile ConfigErrorType = "THRESHOLDS_FILE"
	// ErrThresholds indicates the resolved thresholds are invalid.
	ErrThresholds ConfigErrorType = "THRESHOLDS_INVALID"
)
