package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config represents the application configuration structure.
// It contains settings for the environment, HTTP server, database connection,
// forecasting engine parameters, and graceful shutdown behavior.
type Config struct {
	// Environment specifies the current running environment (development, production, etc.)
	Environment string `env:"ENVIRONMENT" env-default:"development" yaml:"environment"`

	// HTTP contains all HTTP server related configurations
	HTTP struct {
		// Addr is the address and port the HTTP server will listen on
		Addr string `env:"HTTP_ADDR" env-default:":8080" yaml:"addr"`
		// ReadTimeout is the maximum duration for reading the entire request, including the body
		ReadTimeout time.Duration `env:"HTTP_READ_TIMEOUT" env-default:"1m" yaml:"readTimeout"`
		// ReadHeaderTimeout is the amount of time allowed to read request headers
		ReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" env-default:"10s" yaml:"readHeaderTimeout"`
		// WriteTimeout is the maximum duration before timing out writes of the response
		WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" env-default:"2m" yaml:"writeTimeout"`
		// IdleTimeout is the maximum amount of time to wait for the next request when keep-alives are enabled
		IdleTimeout time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"2m" yaml:"idleTimeout"`
		// RequestTimeout is the maximum time allowed for processing a single request
		RequestTimeout time.Duration `env:"HTTP_REQUEST_TIMEOUT" env-default:"10s" yaml:"requestTimeout"`
		// MaxHeaderBytes controls the maximum number of bytes the server will read parsing the request header
		MaxHeaderBytes int `env:"HTTP_MAX_HEADER_BYTES" env-default:"0" yaml:"maxHeaderBytes"`
		// MetricsPath defines the URL path where metrics are exposed
		MetricsPath string `env:"HTTP_METRICS_PATH" env-default:"/metrics" yaml:"metricsPath"`
	} `yaml:"http"`

	// Database contains all database connection related configurations
	Database struct {
		// Username for database authentication
		Username string `env:"DATABASE_USERNAME" env-default:"myuser" yaml:"username"`
		// Password for database authentication
		Password string `env:"DATABASE_PASSWORD" env-default:"mypassword" yaml:"password"`
		// Host is the database server hostname or IP address
		Host string `env:"DATABASE_HOST" env-default:"localhost" yaml:"host"`
		// Port is the database server port number
		Port int `env:"DATABASE_PORT" env-default:"5432" yaml:"port"`
		// SslMode defines the SSL mode for the database connection
		SslMode string `env:"DATABASE_SSL_MODE" env-default:"disable" yaml:"sslMode"`
		// DatabaseName is the name of the database to connect to
		DatabaseName string `env:"DATABASE_NAME" env-default:"workforce" yaml:"name"`
		// MaxOpenConnections limits the number of open connections to the database
		MaxOpenConnections int `env:"DATABASE_MAX_OPEN_CONNECTIONS" env-default:"10" yaml:"maxOpenConnections"`
		// MaxIdleConnections limits the number of connections in the idle connection pool
		MaxIdleConnections int `env:"DATABASE_MAX_IDLE_CONNECTIONS" env-default:"8" yaml:"maxIdleConnections"`
		// ConnMaxLifetime is the maximum amount of time a connection may be reused
		ConnMaxLifetime time.Duration `env:"DATABASE_CONNECTION_MAX_LIFETIME" env-default:"3m" yaml:"connMaxLifetime"`
		// ConnMaxIdleTime is the maximum amount of time a connection may be idle
		ConnMaxIdleTime time.Duration `env:"DATABASE_CONNECTION_MAX_IDLE_TIME" env-default:"3m" yaml:"connMaxIdleTime"`
	} `yaml:"database"`

	// Engine holds the forecasting and scenario parameters. The defaults mirror
	// the published municipal targets and the national retention statistics.
	Engine struct {
		// AnnualTarget is the recruitment goal in net new full-time workers per year.
		AnnualTarget float64 `env:"ENGINE_ANNUAL_TARGET" env-default:"1500" yaml:"annualTarget"`
		// HorizonYears is the number of years projected beyond the cutoff year.
		HorizonYears int `env:"ENGINE_HORIZON_YEARS" env-default:"5" yaml:"horizonYears"`
		// CutoffYear is the last year treated as observed history.
		CutoffYear int `env:"ENGINE_CUTOFF_YEAR" env-default:"2025" yaml:"cutoffYear"`
		// WorkerMetric names the metric whose forecast drives the scenario analysis.
		WorkerMetric string `env:"ENGINE_WORKER_METRIC" env-default:"Total workers" yaml:"workerMetric"`
		// ImmigrationMetric and EmigrationMetric name the migration series used by
		// the recruitment plan.
		ImmigrationMetric string `env:"ENGINE_IMMIGRATION_METRIC" env-default:"Immigration foreign citizens 20-64 years" yaml:"immigrationMetric"` //nolint: lll
		EmigrationMetric  string `env:"ENGINE_EMIGRATION_METRIC" env-default:"Emigration foreign citizens 20-64 years" yaml:"emigrationMetric"`    //nolint: lll

		// RetentionEmployedPartner is the 5-year retention rate of workers whose partner holds a job.
		RetentionEmployedPartner float64 `env:"ENGINE_RETENTION_EMPLOYED_PARTNER" env-default:"0.61" yaml:"retentionEmployedPartner"`
		// RetentionUnemployedPartner is the 5-year retention rate of workers whose partner does not.
		RetentionUnemployedPartner float64 `env:"ENGINE_RETENTION_UNEMPLOYED_PARTNER" env-default:"0.49" yaml:"retentionUnemployedPartner"` //nolint: lll
		// SingleWorkerRetention is the 5-year retention rate of workers without a partner.
		SingleWorkerRetention float64 `env:"ENGINE_SINGLE_WORKER_RETENTION" env-default:"0.41" yaml:"singleWorkerRetention"`

		// ScenarioRates are the partner employment rates to evaluate, one scenario each.
		ScenarioRates []float64 `env:"ENGINE_SCENARIO_RATES" env-default:"0.1,0.2,0.3,0.4,0.5,0.6,0.7" yaml:"scenarioRates"`
		// DefaultScenarioRate marks which scenario is presented by default.
		DefaultScenarioRate float64 `env:"ENGINE_DEFAULT_SCENARIO_RATE" env-default:"0.3" yaml:"defaultScenarioRate"`
		// ObservedPartnerEmploymentRate is the partner employment rate embedded in
		// the historical data; scenario contributions are deltas against it.
		ObservedPartnerEmploymentRate float64 `env:"ENGINE_OBSERVED_PARTNER_EMPLOYMENT_RATE" env-default:"0.3" yaml:"observedPartnerEmploymentRate"` //nolint: lll

		// JobMaxAttempts is the maximum number of attempts the background worker
		// should make per scenario evaluation job before marking it failed.
		JobMaxAttempts int `env:"ENGINE_JOB_MAX_ATTEMPTS" env-default:"3" yaml:"jobMaxAttempts"`

		// SegmentShares splits the worker population by household situation.
		// The three shares must sum to one.
		SegmentShares struct {
			Single              float64 `env:"ENGINE_SHARE_SINGLE" env-default:"0.55" yaml:"single"`
			AccompanyingPartner float64 `env:"ENGINE_SHARE_ACCOMPANYING_PARTNER" env-default:"0.30" yaml:"accompanyingPartner"`
			DanishPartner       float64 `env:"ENGINE_SHARE_DANISH_PARTNER" env-default:"0.15" yaml:"danishPartner"`
		} `yaml:"segmentShares"`
	} `yaml:"engine"`

	// JWT holds the RS256 key material used to sign and verify API tokens.
	JWT struct {
		// PublicKey is the PEM-encoded RSA public key used to verify bearer tokens.
		PublicKey string `env:"JWT_PUBLIC_KEY" yaml:"publicKey"`
		// PrivateKey is the PEM-encoded RSA private key used by the jwt subcommand.
		PrivateKey string `env:"JWT_PRIVATE_KEY" yaml:"privateKey"`
	} `yaml:"jwt"`

	// GracefulShutdownTimeout is the maximum duration to wait for ongoing requests to complete during shutdown
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_TIMEOUT" env-default:"10s" yaml:"gracefulShutdownTimeout"` //nolint: lll
}

// Load receives the path for yaml config file and returns a filled Config struct.
func Load(configPath string) (*Config, error) {
	var cfg Config
	err := cleanenv.ReadConfig(configPath, &cfg)
	if err != nil {
		return nil, fmt.Errorf("could not read config: %w", err)
	}

	return &cfg, nil
}
