package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config represents the application configuration structure.
// It contains settings for the environment, HTTP server, database connection,
// discovery pipeline, billing webhook, and graceful shutdown behavior.
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

	// JWT contains settings for verifying bearer tokens on the API surface
	JWT struct {
		// PublicKey is the PEM-encoded RSA public key used to verify tokens
		PublicKey string `env:"JWT_PUBLIC_KEY" yaml:"publicKey"`
		// PrivateKey is the PEM-encoded RSA private key used by the jwt subcommand to mint tokens
		PrivateKey string `env:"JWT_PRIVATE_KEY" yaml:"privateKey"`
	} `yaml:"jwt"`

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
		DatabaseName string `env:"DATABASE_NAME" env-default:"leadscout" yaml:"name"`
		// MaxOpenConnections limits the number of open connections to the database
		MaxOpenConnections int `env:"DATABASE_MAX_OPEN_CONNECTIONS" env-default:"10" yaml:"maxOpenConnections"`
		// MaxIdleConnections limits the number of connections in the idle connection pool
		MaxIdleConnections int `env:"DATABASE_MAX_IDLE_CONNECTIONS" env-default:"8" yaml:"maxIdleConnections"`
		// ConnMaxLifetime is the maximum amount of time a connection may be reused
		ConnMaxLifetime time.Duration `env:"DATABASE_CONNECTION_MAX_LIFETIME" env-default:"3m" yaml:"connMaxLifetime"`
		// ConnMaxIdleTime is the maximum amount of time a connection may be idle
		ConnMaxIdleTime time.Duration `env:"DATABASE_CONNECTION_MAX_IDLE_TIME" env-default:"3m" yaml:"connMaxIdleTime"`
	} `yaml:"database"`

	// Discovery contains settings for discovery runs and the monthly quota
	Discovery struct {
		// FreeLimit is the monthly discovery budget of the free tier
		FreeLimit int `env:"DISCOVERY_FREE_LIMIT" env-default:"10" yaml:"freeLimit"`
		// ProLimit is the monthly discovery budget of the pro tier
		ProLimit int `env:"DISCOVERY_PRO_LIMIT" env-default:"250" yaml:"proLimit"`
		// MaxCandidatesPerRun caps how many candidates one run requests from the search source
		MaxCandidatesPerRun int `env:"DISCOVERY_MAX_CANDIDATES_PER_RUN" env-default:"25" yaml:"maxCandidatesPerRun"`
		// MaxAttempts is the maximum number of attempts the background worker should
		// make when processing a discovery run before marking it failed
		MaxAttempts int `env:"DISCOVERY_MAX_ATTEMPTS" env-default:"3" yaml:"maxAttempts"`
		// UniqueRunPeriod is the lookback window during which an identical
		// (user, query, location) run is treated as a duplicate
		UniqueRunPeriod time.Duration `env:"DISCOVERY_UNIQUE_RUN_PERIOD" env-default:"15m" yaml:"uniqueRunPeriod"`
	} `yaml:"discovery"`

	// BizSearch contains settings for the external business-search provider
	BizSearch struct {
		// BaseURL is the API root of the search provider
		BaseURL string `env:"BIZSEARCH_BASE_URL" env-default:"https://api.bizsearch.example.com" yaml:"baseUrl"`
		// Token is the API key for the search provider
		Token string `env:"BIZSEARCH_TOKEN" yaml:"token"`
		// RequestTimeout bounds a single search request
		RequestTimeout time.Duration `env:"BIZSEARCH_REQUEST_TIMEOUT" env-default:"30s" yaml:"requestTimeout"`
	} `yaml:"bizSearch"`

	// Billing contains settings for verifying and processing webhook events
	Billing struct {
		// SigningSecret is the shared secret used to verify webhook signatures
		SigningSecret string `env:"BILLING_SIGNING_SECRET" yaml:"signingSecret"`
		// SignatureHeader is the request header carrying the event signature
		SignatureHeader string `env:"BILLING_SIGNATURE_HEADER" env-default:"X-Billing-Signature" yaml:"signatureHeader"`
	} `yaml:"billing"`

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
