package config

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL        string
	Port               string
	IsProduction       bool
	EnableDBCheck      bool
	LogLevel           string
	RateLimit          string
	CORSAllowedOrigins []string
	RedisURL           string
	SnowflakeNode      int64

	// Chart of accounts
	ChartOfAccountsFile      string
	OpeningBalanceEquityCode string
	CashAccountCode          string
	TuitionIncomeCode        string

	// PPN
	PPNRate                  decimal.Decimal
	PPNReceivableAccountCode string
	PPNOutputAccountCode     string
	TaxAccountPattern        string

	// Credit ledger and billing
	LowBalanceThresholdHours decimal.Decimal
	AutoBillingDueDays       int

	// Reconciliation
	ReconDateWindowDays int
	ReconAmountEpsilon  decimal.Decimal
	ReconStrictTieBreak bool
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	setDefaults()
	viper.AutomaticEnv()

	cfg := &Config{
		DatabaseURL:              viper.GetString("PGSQL_URL"),
		Port:                     viper.GetString("PORT"),
		IsProduction:             viper.GetBool("IS_PRODUCTION"),
		EnableDBCheck:            viper.GetBool("ENABLE_DB_CHECK"),
		LogLevel:                 viper.GetString("LOG_LEVEL"),
		RateLimit:                viper.GetString("RATE_LIMIT"),
		CORSAllowedOrigins:       splitList(viper.GetString("CORS_ALLOWED_ORIGINS")),
		RedisURL:                 viper.GetString("REDIS_URL"),
		SnowflakeNode:            viper.GetInt64("SNOWFLAKE_NODE"),
		ChartOfAccountsFile:      viper.GetString("CHART_OF_ACCOUNTS_FILE"),
		OpeningBalanceEquityCode: viper.GetString("OPENING_BALANCE_EQUITY_CODE"),
		CashAccountCode:          viper.GetString("INVOICE_CASH_ACCOUNT_CODE"),
		TuitionIncomeCode:        viper.GetString("INVOICE_INCOME_ACCOUNT_CODE"),
		PPNReceivableAccountCode: viper.GetString("PPN_RECEIVABLE_ACCOUNT_CODE"),
		PPNOutputAccountCode:     viper.GetString("PPN_OUTPUT_ACCOUNT_CODE"),
		TaxAccountPattern:        viper.GetString("TAX_ACCOUNT_PATTERN"),
		AutoBillingDueDays:       viper.GetInt("AUTO_BILLING_DUE_DAYS"),
		ReconDateWindowDays:      viper.GetInt("RECON_DATE_WINDOW_DAYS"),
		ReconStrictTieBreak:      viper.GetBool("RECON_STRICT_TIEBREAK"),
	}

	if cfg.DatabaseURL == "" {
		slog.Warn("PGSQL_URL environment variable not set, using the in-memory store")
	}

	var err error
	if cfg.PPNRate, err = decimalSetting("PPN_RATE"); err != nil {
		return nil, err
	}
	if cfg.LowBalanceThresholdHours, err = decimalSetting("LOW_BALANCE_THRESHOLD_HOURS"); err != nil {
		return nil, err
	}
	if cfg.ReconAmountEpsilon, err = decimalSetting("RECON_AMOUNT_EPSILON"); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults() {
	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("RATE_LIMIT", "100-M")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("SNOWFLAKE_NODE", 1)
	viper.SetDefault("CHART_OF_ACCOUNTS_FILE", "")
	viper.SetDefault("OPENING_BALANCE_EQUITY_CODE", "3-9000")
	viper.SetDefault("INVOICE_CASH_ACCOUNT_CODE", "1-1100")
	viper.SetDefault("INVOICE_INCOME_ACCOUNT_CODE", "4-1000")
	viper.SetDefault("PPN_RATE", "0.11")
	viper.SetDefault("PPN_RECEIVABLE_ACCOUNT_CODE", "1-1300")
	viper.SetDefault("PPN_OUTPUT_ACCOUNT_CODE", "2-1200")
	viper.SetDefault("TAX_ACCOUNT_PATTERN", "(?i)ppn|pajak|tax")
	viper.SetDefault("LOW_BALANCE_THRESHOLD_HOURS", "2")
	viper.SetDefault("AUTO_BILLING_DUE_DAYS", 7)
	viper.SetDefault("RECON_DATE_WINDOW_DAYS", 3)
	viper.SetDefault("RECON_AMOUNT_EPSILON", "0")
	viper.SetDefault("RECON_STRICT_TIEBREAK", false)
}

func decimalSetting(key string) (decimal.Decimal, error) {
	v, err := decimal.NewFromString(viper.GetString(key))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid value for %s: %w", key, err)
	}
	return v, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks value ranges that viper cannot express.
func (c *Config) Validate() error {
	if c.PPNRate.IsNegative() {
		return fmt.Errorf("PPN_RATE must not be negative, got %s", c.PPNRate)
	}
	if c.ReconAmountEpsilon.IsNegative() {
		return fmt.Errorf("RECON_AMOUNT_EPSILON must not be negative, got %s", c.ReconAmountEpsilon)
	}
	if c.ReconDateWindowDays < 0 {
		return fmt.Errorf("RECON_DATE_WINDOW_DAYS must not be negative, got %d", c.ReconDateWindowDays)
	}
	if c.SnowflakeNode < 0 || c.SnowflakeNode > 1023 {
		return fmt.Errorf("SNOWFLAKE_NODE must be between 0 and 1023, got %d", c.SnowflakeNode)
	}
	if _, err := regexp.Compile(c.TaxAccountPattern); err != nil {
		return fmt.Errorf("invalid TAX_ACCOUNT_PATTERN: %w", err)
	}
	return nil
}
