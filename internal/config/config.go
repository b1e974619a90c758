// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/aristath/alphatrack/internal/domain"
	"github.com/joho/godotenv"
)

// Config holds application configuration. Every tunable the engine depends
// on lives here and is passed in explicitly at construction, so tests can
// vary them per run instead of reaching for process-wide globals.
type Config struct {
	Port     int
	LogLevel string
	DevMode  bool

	// Engine constants
	BenchmarkTicker       string  // market index the portfolio is measured against
	RiskFreeTicker        string  // yield-quoted instrument used as the risk-free proxy
	ReferenceTicker       string  // instrument whose last-trade timestamp drives the market clock
	TradingDaysPerYear    int
	LookbackYears         int     // beta estimation window
	BacktestYears         int     // default backtest window
	MinBetaObservations   int     // below this, beta falls back to the neutral default
	DefaultAnnualRiskFree float64 // used when the yield instrument cannot be resolved
	MarketCloseHour       int     // market close time of day, local time
	MarketCloseMinute     int

	// Default portfolio for the scheduled daily report and the CLI fallback,
	// e.g. "BKR:11,CF:11,MRK:11,PINS:11".
	DefaultPortfolio domain.Portfolio

	// Cron expression for the scheduled daily report; empty disables it.
	ReportSchedule string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	portfolio, err := ParsePortfolio(getEnv("ALPHATRACK_PORTFOLIO", "BKR:11,CF:11,MRK:11,PINS:11"))
	if err != nil {
		return nil, fmt.Errorf("invalid ALPHATRACK_PORTFOLIO: %w", err)
	}

	cfg := &Config{
		Port:     getEnvAsInt("ALPHATRACK_PORT", 8001),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		DevMode:  getEnvAsBool("DEV_MODE", false),

		BenchmarkTicker:       getEnv("BENCHMARK_TICKER", "^GSPC"),
		RiskFreeTicker:        getEnv("RISK_FREE_TICKER", "^TNX"),
		ReferenceTicker:       getEnv("REFERENCE_TICKER", "SPY"),
		TradingDaysPerYear:    getEnvAsInt("TRADING_DAYS_PER_YEAR", 252),
		LookbackYears:         getEnvAsInt("LOOKBACK_YEARS", 5),
		BacktestYears:         getEnvAsInt("BACKTEST_YEARS", 5),
		MinBetaObservations:   getEnvAsInt("MIN_BETA_OBSERVATIONS", 126),
		DefaultAnnualRiskFree: getEnvAsFloat("DEFAULT_ANNUAL_RISK_FREE", 0.04),
		MarketCloseHour:       getEnvAsInt("MARKET_CLOSE_HOUR", 16),
		MarketCloseMinute:     getEnvAsInt("MARKET_CLOSE_MINUTE", 30),

		DefaultPortfolio: portfolio,

		// 16:35 on weekdays, a few minutes after the close so the data
		// source has settled on final prices.
		ReportSchedule: getEnv("REPORT_SCHEDULE", "0 35 16 * * MON-FRI"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.TradingDaysPerYear <= 0 {
		return fmt.Errorf("trading days per year must be positive, got %d", c.TradingDaysPerYear)
	}
	if c.LookbackYears <= 0 || c.BacktestYears <= 0 {
		return fmt.Errorf("lookback and backtest windows must be positive years")
	}
	if c.MarketCloseHour < 0 || c.MarketCloseHour > 23 || c.MarketCloseMinute < 0 || c.MarketCloseMinute > 59 {
		return fmt.Errorf("invalid market close time %02d:%02d", c.MarketCloseHour, c.MarketCloseMinute)
	}
	return nil
}

// ParsePortfolio parses a "TICKER:SHARES,TICKER:SHARES" string into a
// portfolio. Whitespace around entries is tolerated; an empty string yields
// an empty portfolio.
func ParsePortfolio(s string) (domain.Portfolio, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return domain.Portfolio{}, nil
	}

	var holdings []domain.Holding
	for _, entry := range strings.Split(s, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, ":", 2)
		if len(parts) != 2 {
			return domain.Portfolio{}, fmt.Errorf("entry %q is not TICKER:SHARES", entry)
		}
		shares, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return domain.Portfolio{}, fmt.Errorf("invalid share count in %q: %w", entry, err)
		}
		holdings = append(holdings, domain.Holding{
			Ticker: strings.ToUpper(strings.TrimSpace(parts[0])),
			Shares: shares,
		})
	}

	return domain.Portfolio{Holdings: holdings}, nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
