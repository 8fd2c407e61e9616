package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"registro/pkg/platform/validation"
)

// Admission modes.
const (
	AdmissionSoft   = "soft"
	AdmissionStrict = "strict"
)

// Store backends.
const (
	BackendMemory   = "memory"
	BackendDynamoDB = "dynamodb"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

const (
	defaultPort           = "8080"
	defaultTableName      = "ContactosCampiclouders"
	defaultRegion         = "us-east-1"
	defaultCORSOrigin     = "*"
	defaultMaxRecords     = 1000
	defaultCacheTTL       = 60 * time.Second
	defaultKafkaTopic     = "contact.registered"
	defaultEnvironment    = "development"
	defaultStaticDir      = "public"
	defaultRequestTimeout = 30 * time.Second
	defaultMaxBodyBytes   = validation.MaxBodySize
	defaultRateLimitBurst = 10
)

// Server captures process level configuration.
type Server struct {
	Addr           string
	Environment    string
	LogLevel       string
	CORSOrigin     string
	StaticDir      string
	RequestTimeout time.Duration
	MaxBodyBytes   int64
	TrustedProxies string

	Registration Registration
	Store        Store
	Database     Database
	Redis        Redis
	Kafka        Kafka
	RateLimit    RateLimit
}

// Registration holds the admission settings.
type Registration struct {
	MaxRecords    int
	CacheTTL      time.Duration
	AdmissionMode string
}

// Store selects and addresses the contact store.
type Store struct {
	Backend   string
	TableName string
	Region    string
	// Endpoint overrides the DynamoDB endpoint, e.g. DynamoDB Local.
	Endpoint string
}

type Database struct {
	URL string
}

type Redis struct {
	URL string
}

// Kafka is optional; publishing is disabled when Brokers is empty.
type Kafka struct {
	Brokers string
	Topic   string
}

// RateLimit is disabled when RPS is zero.
type RateLimit struct {
	RPS   float64
	Burst int
}

// IsProduction reports whether error details must be hidden from clients.
func (s Server) IsProduction() bool {
	return strings.EqualFold(s.Environment, "production")
}

// FromEnv builds a Server config from environment variables so main stays lean.
// Unset variables take their defaults; malformed values are reported together.
func FromEnv() (Server, error) {
	p := parser{}

	port := getenv("PORT", defaultPort)
	cfg := Server{
		Addr:           ":" + strings.TrimPrefix(port, ":"),
		Environment:    getenv("ENVIRONMENT", defaultEnvironment),
		LogLevel:       getenv("LOG_LEVEL", "info"),
		CORSOrigin:     getenv("CORS_ORIGIN", defaultCORSOrigin),
		StaticDir:      getenv("STATIC_DIR", defaultStaticDir),
		RequestTimeout: p.duration("REQUEST_TIMEOUT", defaultRequestTimeout),
		MaxBodyBytes:   int64(p.integer("MAX_BODY_BYTES", defaultMaxBodyBytes)),
		TrustedProxies: os.Getenv("TRUSTED_PROXIES"),
		Registration: Registration{
			MaxRecords:    p.integer("MAX_RECORDS", defaultMaxRecords),
			CacheTTL:      p.duration("CACHE_TTL", defaultCacheTTL),
			AdmissionMode: strings.ToLower(getenv("ADMISSION_MODE", AdmissionSoft)),
		},
		Store: Store{
			Backend:   strings.ToLower(getenv("STORE_BACKEND", BackendMemory)),
			TableName: getenv("TABLE_NAME", defaultTableName),
			Region:    getenv("AWS_REGION", defaultRegion),
			Endpoint:  os.Getenv("DYNAMODB_ENDPOINT"),
		},
		Database: Database{URL: os.Getenv("DATABASE_URL")},
		Redis:    Redis{URL: os.Getenv("REDIS_URL")},
		Kafka: Kafka{
			Brokers: os.Getenv("KAFKA_BROKERS"),
			Topic:   getenv("KAFKA_TOPIC", defaultKafkaTopic),
		},
		RateLimit: RateLimit{
			RPS:   p.float("RATE_LIMIT_RPS", 0),
			Burst: p.integer("RATE_LIMIT_BURST", defaultRateLimitBurst),
		},
	}

	if err := errors.Join(p.errs...); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the service cannot run with.
func (s Server) Validate() error {
	var errs []error
	if s.Registration.MaxRecords <= 0 {
		errs = append(errs, fmt.Errorf("MAX_RECORDS must be positive, got %d", s.Registration.MaxRecords))
	}
	if s.Registration.CacheTTL <= 0 {
		errs = append(errs, fmt.Errorf("CACHE_TTL must be positive, got %s", s.Registration.CacheTTL))
	}
	switch s.Registration.AdmissionMode {
	case AdmissionSoft, AdmissionStrict:
	default:
		errs = append(errs, fmt.Errorf("ADMISSION_MODE must be %q or %q, got %q", AdmissionSoft, AdmissionStrict, s.Registration.AdmissionMode))
	}
	switch s.Store.Backend {
	case BackendMemory, BackendDynamoDB:
	case BackendPostgres:
		if s.Database.URL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres backend"))
		}
	case BackendRedis:
		if s.Redis.URL == "" {
			errs = append(errs, errors.New("REDIS_URL is required for the redis backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_BACKEND %q", s.Store.Backend))
	}
	if strings.TrimSpace(s.Store.TableName) == "" {
		errs = append(errs, errors.New("TABLE_NAME must not be empty"))
	}
	if s.MaxBodyBytes <= 0 {
		errs = append(errs, fmt.Errorf("MAX_BODY_BYTES must be positive, got %d", s.MaxBodyBytes))
	}
	if s.RateLimit.RPS < 0 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_RPS must not be negative, got %v", s.RateLimit.RPS))
	}
	if s.RateLimit.RPS > 0 && s.RateLimit.Burst <= 0 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_BURST must be positive when rate limiting, got %d", s.RateLimit.Burst))
	}
	return errors.Join(errs...)
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

type parser struct {
	errs []error
}

func (p *parser) integer(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: invalid integer %q", key, raw))
		return fallback
	}
	return n
}

func (p *parser) float(key string, fallback float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: invalid number %q", key, raw))
		return fallback
	}
	return f
}

// duration accepts Go durations ("90s", "2m") or bare integer seconds.
func (p *parser) duration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: invalid duration %q", key, raw))
		return fallback
	}
	return d
}
