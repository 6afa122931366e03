package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	PartnerCenter PartnerCenterConfig
	Store         StoreConfig
	Enhance       EnhanceConfig
	Observe       ObserveConfig
	Server        ServerConfig
}

type ServerConfig struct {
	Port                   int `env:"SERVER_PORT, default=8080"`
	ShutdownTimeoutSeconds int `env:"SERVER_SHUTDOWN_TIMEOUT_SECS, default=25"`

	OutgoingHTTPMaxIdleConns    int `env:"SERVER_OUTGOING_MAX_IDLE_CONNS, default=100"`
	OutgoingHTTPMaxConnsPerHost int `env:"SERVER_OUTGOING_MAX_CONNS_PER_HOST, default=20"`
}

// PartnerCenterConfig holds the identity and API settings used to reach the
// Partner Center analytics API.
type PartnerCenterConfig struct {
	ClientID string `env:"PARTNER_CENTER_CLIENT_ID, required"`
	TenantID string `env:"PARTNER_CENTER_TENANT_ID, required"`

	// ClientSecret is used directly when set. Otherwise ClientSecretARN names an
	// AWS Secrets Manager secret holding it.
	ClientSecret    string `env:"PARTNER_CENTER_CLIENT_SECRET"`
	ClientSecretARN string `env:"PARTNER_CENTER_CLIENT_SECRET_ARN"`

	AuthorityURL string `env:"PARTNER_CENTER_AUTHORITY_URL, default=https://login.microsoftonline.com"`
	Scope        string `env:"PARTNER_CENTER_SCOPE, default=https://api.partnercenter.microsoft.com/.default"`
	APIURL       string `env:"PARTNER_CENTER_API_URL, default=https://api.partnercenter.microsoft.com"`

	Category string `env:"PARTNER_CENTER_CATEGORY, default=manufacturing"`
	Platform string `env:"PARTNER_CENTER_PLATFORM, default=dynamics365"`

	// TokenSafetyMargin is subtracted from the provider's expiry so that a
	// returned token always has at least this much life left.
	TokenSafetyMargin       time.Duration `env:"PARTNER_CENTER_TOKEN_SAFETY_MARGIN, default=5m"`
	TokenAcquisitionTimeout time.Duration `env:"PARTNER_CENTER_TOKEN_TIMEOUT, default=30s"`
	RequestTimeout          time.Duration `env:"PARTNER_CENTER_REQUEST_TIMEOUT, default=30s"`
}

// TokenURL is the client-credentials endpoint for the configured tenant.
func (c PartnerCenterConfig) TokenURL() string {
	return fmt.Sprintf("%s/%s/oauth2/v2.0/token", strings.TrimSuffix(c.AuthorityURL, "/"), c.TenantID)
}

// Validate checks settings that envconfig cannot express with tags.
func (c *PartnerCenterConfig) Validate() error {
	if c.ClientSecret == "" && c.ClientSecretARN == "" {
		return errors.New("one of PARTNER_CENTER_CLIENT_SECRET or PARTNER_CENTER_CLIENT_SECRET_ARN is required")
	}

	if c.TokenSafetyMargin < 0 {
		return fmt.Errorf("PARTNER_CENTER_TOKEN_SAFETY_MARGIN must not be negative, got %s", c.TokenSafetyMargin)
	}

	if c.TokenAcquisitionTimeout <= 0 {
		return fmt.Errorf("PARTNER_CENTER_TOKEN_TIMEOUT must be positive, got %s", c.TokenAcquisitionTimeout)
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("PARTNER_CENTER_REQUEST_TIMEOUT must be positive, got %s", c.RequestTimeout)
	}

	return nil
}

// StoreConfig selects where acquired credentials are kept. A shared store
// lets several bridge instances reuse one access token.
type StoreConfig struct {
	// Type is "memory" (default) or "valkey".
	Type string `env:"CREDENTIAL_STORE_TYPE, default=memory"`

	Valkey ValkeyConfig

	// Encryption applies to the valkey store only.
	Encryption StoreEncryptionConfig
}

type ValkeyConfig struct {
	// Address is host:port.
	Address string `env:"VALKEY_ADDRESS"`

	// TLS defaults to on so the secure option is the default.
	TLS bool `env:"VALKEY_TLS, default=true"`

	Username string `env:"VALKEY_USERNAME"`
	Password string `env:"VALKEY_PASSWORD"`

	// KeyPrefix namespaces entries written by this deployment.
	KeyPrefix string `env:"VALKEY_KEY_PREFIX, default=partnercenter-bridge:"`
}

type StoreEncryptionConfig struct {
	Enabled bool `env:"CREDENTIAL_STORE_ENCRYPTION_ENABLED, default=false"`

	// KeysetFile is a cleartext Tink JSON keyset. Intended for local
	// development and tests; takes precedence over KeysetURI.
	KeysetFile string `env:"CREDENTIAL_STORE_ENCRYPTION_KEYSET_FILE"`

	// KeysetURI names the KMS-encrypted keyset.
	// Format: aws-secretsmanager://secret-name
	KeysetURI string `env:"CREDENTIAL_STORE_ENCRYPTION_KEYSET_URI"`

	// KMSEnvelopeKeyURI is the KMS key that decrypts the keyset.
	// Format: aws-kms://arn:aws:kms:region:account:key/key-id
	KMSEnvelopeKeyURI string `env:"CREDENTIAL_STORE_ENCRYPTION_KMS_ENVELOPE_KEY_URI"`

	RefreshInterval time.Duration `env:"CREDENTIAL_STORE_ENCRYPTION_REFRESH_INTERVAL, default=15m"`
}

// Validate checks the combinations of store settings.
func (c *StoreConfig) Validate() error {
	switch c.Type {
	case "memory":
		if c.Encryption.Enabled {
			return errors.New("credential store encryption requires CREDENTIAL_STORE_TYPE=valkey")
		}
		return nil

	case "valkey":
		if c.Valkey.Address == "" {
			return errors.New("VALKEY_ADDRESS required when CREDENTIAL_STORE_TYPE=valkey")
		}

	default:
		return fmt.Errorf("CREDENTIAL_STORE_TYPE must be one of memory or valkey, got %q", c.Type)
	}

	if !c.Encryption.Enabled || c.Encryption.KeysetFile != "" {
		return nil
	}

	if c.Encryption.KeysetURI == "" {
		return errors.New("CREDENTIAL_STORE_ENCRYPTION_KEYSET_URI or CREDENTIAL_STORE_ENCRYPTION_KEYSET_FILE required when encryption enabled")
	}
	if c.Encryption.KMSEnvelopeKeyURI == "" {
		return errors.New("CREDENTIAL_STORE_ENCRYPTION_KMS_ENVELOPE_KEY_URI required when encryption enabled")
	}
	if c.Encryption.RefreshInterval <= 0 {
		return fmt.Errorf("CREDENTIAL_STORE_ENCRYPTION_REFRESH_INTERVAL must be positive, got %s", c.Encryption.RefreshInterval)
	}

	return nil
}

type EnhanceConfig struct {
	// DefaultMarketSize (in millions) is used for revenue projections when the
	// caller does not supply an estimate.
	DefaultMarketSize float64 `env:"ENHANCE_DEFAULT_MARKET_SIZE, default=50"`
}

type ObserveConfig struct {
	SDKLogLevel                string `env:"OBSERVE_OTEL_LOG_LEVEL, default=info"`
	Enabled                    bool   `env:"OBSERVE_ENABLED, default=false"`
	MetricsEnabled             bool   `env:"OBSERVE_METRICS_ENABLED, default=true"`
	Type                       string `env:"OBSERVE_TYPE, default=grpc"`
	ServiceName                string `env:"OBSERVE_SERVICE_NAME, default=partnercenter-bridge"`
	TraceBatchTimeoutSeconds   int    `env:"OBSERVE_TRACE_BATCH_TIMEOUT_SECS, default=20"`
	MetricReadIntervalSeconds  int    `env:"OBSERVE_METRIC_READ_INTERVAL_SECS, default=60"`
	HTTPTransportEnabled       bool   `env:"OBSERVE_HTTP_TRANSPORT_ENABLED, default=true"`
	HTTPConnectionTraceEnabled bool   `env:"OBSERVE_CONNECTION_TRACE_ENABLED, default=true"`
}

// Validate checks the exporter type.
func (c *ObserveConfig) Validate() error {
	if c.Type != "grpc" && c.Type != "stdout" {
		return fmt.Errorf("OBSERVE_TYPE must be one of grpc or stdout, got %q", c.Type)
	}
	return nil
}

func Load(ctx context.Context) (Config, error) {
	return load(ctx, nil) // load from OS environment
}

func load(ctx context.Context, lookup envconfig.Lookuper) (Config, error) {
	var cfg Config
	err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookup, // nil defaults to OS environment
	})
	if err != nil {
		return cfg, err
	}

	err = cfg.PartnerCenter.Validate()
	if err != nil {
		return cfg, fmt.Errorf("invalid partner center configuration: %w", err)
	}

	err = cfg.Store.Validate()
	if err != nil {
		return cfg, fmt.Errorf("invalid credential store configuration: %w", err)
	}

	err = cfg.Observe.Validate()
	if err != nil {
		return cfg, fmt.Errorf("invalid observe configuration: %w", err)
	}

	return cfg, nil
}
