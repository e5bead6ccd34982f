package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// TaxConfig holds the rates of the simplified statutory formulas.
type TaxConfig struct {
	VATRate            decimal.Decimal
	CITRate            decimal.Decimal
	QITRate            decimal.Decimal
	PAYEBasicExemption decimal.Decimal
	PAYERate           decimal.Decimal
	RSSBEmployeeRate   decimal.Decimal
	RSSBEmployerRate   decimal.Decimal
	// CurrencyDecimals is the number of places money amounts are rounded to.
	CurrencyDecimals int32
}

// Config holds application configuration.
type Config struct {
	DatabaseURL        string
	StorageDriver      string
	MigrationsPath     string
	Port               string
	IsProduction       bool
	EnableDBCheck      bool
	DBMaxConns         int32
	JWTSecret          string
	JWTIssuer          string
	RateLimit          string // ulule/limiter formatted rate, e.g. "100-M"
	CORSAllowedOrigins []string
	ShutdownTimeout    time.Duration
	Tax                TaxConfig
}

// DefaultTaxConfig returns the rates used when nothing is configured.
func DefaultTaxConfig() TaxConfig {
	return TaxConfig{
		VATRate:            decimal.RequireFromString("0.18"),
		CITRate:            decimal.RequireFromString("0.30"),
		QITRate:            decimal.RequireFromString("0.30"),
		PAYEBasicExemption: decimal.NewFromInt(30000),
		PAYERate:           decimal.RequireFromString("0.15"),
		RSSBEmployeeRate:   decimal.RequireFromString("0.075"),
		RSSBEmployerRate:   decimal.RequireFromString("0.075"),
		CurrencyDecimals:   0,
	}
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	defaults := DefaultTaxConfig()
	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("STORAGE_DRIVER", StorageMemory)
	viper.SetDefault("MIGRATIONS_PATH", "file://migrations")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("DB_MAX_CONNS", 0)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("JWT_ISSUER", "statutory-ledger")
	viper.SetDefault("RATE_LIMIT", "300-M")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("SHUTDOWN_TIMEOUT", "5s")
	viper.SetDefault("VAT_RATE", defaults.VATRate.String())
	viper.SetDefault("CIT_RATE", defaults.CITRate.String())
	viper.SetDefault("QIT_RATE", defaults.QITRate.String())
	viper.SetDefault("PAYE_BASIC_EXEMPTION", defaults.PAYEBasicExemption.String())
	viper.SetDefault("PAYE_RATE", defaults.PAYERate.String())
	viper.SetDefault("RSSB_EMPLOYEE_RATE", defaults.RSSBEmployeeRate.String())
	viper.SetDefault("RSSB_EMPLOYER_RATE", defaults.RSSBEmployerRate.String())
	viper.SetDefault("CURRENCY_DECIMALS", defaults.CurrencyDecimals)

	// Values from .env have been exported by godotenv; real environment variables win.
	viper.AutomaticEnv()

	cfg := &Config{
		DatabaseURL:    viper.GetString("PGSQL_URL"),
		StorageDriver:  strings.ToLower(viper.GetString("STORAGE_DRIVER")),
		MigrationsPath: viper.GetString("MIGRATIONS_PATH"),
		Port:           viper.GetString("PORT"),
		IsProduction:   viper.GetBool("IS_PRODUCTION"),
		EnableDBCheck:  viper.GetBool("ENABLE_DB_CHECK"),
		JWTSecret:      viper.GetString("JWT_SECRET"),
		JWTIssuer:      viper.GetString("JWT_ISSUER"),
		RateLimit:      viper.GetString("RATE_LIMIT"),
	}

	switch cfg.StorageDriver {
	case StorageMemory:
	case StoragePostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("STORAGE_DRIVER is %q but PGSQL_URL is not set", StoragePostgres)
		}
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q (want %s or %s)", cfg.StorageDriver, StorageMemory, StoragePostgres)
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}
	if cfg.IsProduction && cfg.JWTSecret == "a-very-secret-key-should-be-longer-and-random" {
		log.Println("Warning: JWT_SECRET is the built-in default. Set it before serving real traffic.")
	}

	for _, o := range strings.Split(viper.GetString("CORS_ALLOWED_ORIGINS"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
		}
	}

	maxConns := viper.GetInt("DB_MAX_CONNS")
	if maxConns < 0 || maxConns > 1000 {
		return nil, fmt.Errorf("DB_MAX_CONNS must be between 0 and 1000, got %d", maxConns)
	}
	cfg.DBMaxConns = int32(maxConns)

	shutdownStr := viper.GetString("SHUTDOWN_TIMEOUT")
	shutdown, err := time.ParseDuration(shutdownStr)
	if err != nil {
		shutdown = 5 * time.Second
		log.Printf("Warning: Invalid value for SHUTDOWN_TIMEOUT ('%s'). Defaulting to %s.\n", shutdownStr, shutdown)
	}
	cfg.ShutdownTimeout = shutdown

	tax, err := loadTaxConfig()
	if err != nil {
		return nil, err
	}
	cfg.Tax = tax
	return cfg, nil
}

func loadTaxConfig() (TaxConfig, error) {
	var tc TaxConfig
	rates := []struct {
		key string
		dst *decimal.Decimal
	}{
		{"VAT_RATE", &tc.VATRate},
		{"CIT_RATE", &tc.CITRate},
		{"QIT_RATE", &tc.QITRate},
		{"PAYE_BASIC_EXEMPTION", &tc.PAYEBasicExemption},
		{"PAYE_RATE", &tc.PAYERate},
		{"RSSB_EMPLOYEE_RATE", &tc.RSSBEmployeeRate},
		{"RSSB_EMPLOYER_RATE", &tc.RSSBEmployerRate},
	}
	for _, r := range rates {
		v, err := decimal.NewFromString(strings.TrimSpace(viper.GetString(r.key)))
		if err != nil {
			return TaxConfig{}, fmt.Errorf("invalid %s: %w", r.key, err)
		}
		if v.IsNegative() {
			return TaxConfig{}, fmt.Errorf("%s must not be negative, got %s", r.key, v)
		}
		*r.dst = v
	}
	places := viper.GetInt("CURRENCY_DECIMALS")
	if places < 0 || places > 8 {
		return TaxConfig{}, fmt.Errorf("CURRENCY_DECIMALS must be between 0 and 8, got %d", places)
	}
	tc.CurrencyDecimals = int32(places)
	return tc, nil
}
