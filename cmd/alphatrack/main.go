// Package main is the interactive CLI: prompts for tickers and share
// counts, then prints the daily and backtest report for the entered
// portfolio.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/aristath/alphatrack/internal/clients/yahoo"
	"github.com/aristath/alphatrack/internal/config"
	"github.com/aristath/alphatrack/internal/domain"
	"github.com/aristath/alphatrack/internal/modules/analytics"
	"github.com/aristath/alphatrack/internal/modules/backtest"
	"github.com/aristath/alphatrack/internal/modules/display"
	"github.com/aristath/alphatrack/internal/modules/marketclock"
	"github.com/aristath/alphatrack/internal/modules/quotes"
	"github.com/aristath/alphatrack/internal/modules/risk"
	"github.com/aristath/alphatrack/internal/modules/valuation"
	"github.com/aristath/alphatrack/pkg/logger"
)

func main() {
	years := flag.Int("years", 0, "backtest window in years (0 uses the configured default)")
	skipBacktest := flag.Bool("daily-only", false, "skip the backtest and report only the daily figures")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}
	if *years <= 0 {
		*years = cfg.BacktestYears
	}

	// The CLI keeps logs quiet unless asked; the report itself goes to stdout.
	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: true})

	portfolio := promptPortfolio(os.Stdin)
	if portfolio.IsEmpty() {
		fmt.Println("\nNo input detected. Using example portfolio.")
		portfolio = cfg.DefaultPortfolio
	}

	source := yahoo.NewClient(log)
	resolver := quotes.NewResolver(source, cfg.RiskFreeTicker, log)
	riskFree := quotes.NewRiskFreeProvider(resolver, cfg.RiskFreeTicker, cfg.DefaultAnnualRiskFree, cfg.TradingDaysPerYear, log)
	valuator := valuation.NewValuator(resolver, log)
	betas := risk.NewBetaEstimator(source, cfg.MinBetaObservations, log)
	alphas := risk.NewAlphaCalculator(riskFree, valuator, betas, cfg.TradingDaysPerYear, cfg.LookbackYears, log)
	backtester := backtest.NewBacktester(source, cfg.RiskFreeTicker, log)
	clock := marketclock.New(source, cfg.MarketCloseHour, cfg.MarketCloseMinute, log)

	engine := analytics.NewService(
		valuator,
		alphas,
		backtester,
		clock,
		cfg.BenchmarkTicker,
		cfg.ReferenceTicker,
		log,
	)

	ctx := context.Background()

	daily := engine.ComputeDaily(ctx, portfolio)
	label := engine.LastUpdatedLabel(ctx, "")

	var backtestResult *backtest.Result
	if !*skipBacktest {
		result, err := engine.ComputeBacktest(ctx, portfolio, *years)
		if err != nil {
			fmt.Fprintf(os.Stderr, "backtest failed: %v\n", err)
		} else {
			backtestResult = &result
		}
	}

	fmt.Println(display.Report(label, daily, backtestResult, *years))
}

// promptPortfolio reads ticker/share pairs interactively until the user
// enters "!".
func promptPortfolio(in io.Reader) domain.Portfolio {
	scanner := bufio.NewScanner(in)
	var holdings []domain.Holding

	for {
		fmt.Print(`Enter a ticker ("!" to stop): `)
		if !scanner.Scan() {
			break
		}
		ticker := strings.ToUpper(strings.TrimSpace(scanner.Text()))
		if ticker == "!" {
			break
		}
		if ticker == "" {
			continue
		}

		fmt.Print("How many shares: ")
		if !scanner.Scan() {
			break
		}
		shares, err := strconv.ParseFloat(strings.TrimSpace(scanner.Text()), 64)
		if err != nil {
			fmt.Println("Invalid input.")
			continue
		}

		holdings = append(holdings, domain.Holding{Ticker: ticker, Shares: shares})
	}

	return domain.Portfolio{Holdings: holdings}
}
