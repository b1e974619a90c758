// Package main is the entry point for the alphatrack analytics server: a
// REST API over the portfolio performance-analytics engine, plus a
// scheduled close-of-market report for the configured default portfolio.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aristath/alphatrack/internal/clients/yahoo"
	"github.com/aristath/alphatrack/internal/config"
	"github.com/aristath/alphatrack/internal/modules/analytics"
	"github.com/aristath/alphatrack/internal/modules/backtest"
	"github.com/aristath/alphatrack/internal/modules/marketclock"
	"github.com/aristath/alphatrack/internal/modules/quotes"
	"github.com/aristath/alphatrack/internal/modules/risk"
	"github.com/aristath/alphatrack/internal/modules/valuation"
	"github.com/aristath/alphatrack/internal/scheduler"
	"github.com/aristath/alphatrack/internal/server"
	"github.com/aristath/alphatrack/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	log.Info().Msg("Starting alphatrack")

	// Wire the engine. Every component is stateless between invocations;
	// construction only binds configuration and collaborators.
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

	srv := server.New(server.Config{
		Port:      cfg.Port,
		DevMode:   cfg.DevMode,
		Log:       log,
		Analytics: engine,
	})

	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()
	log.Info().Int("port", cfg.Port).Msg("Server started")

	// Scheduled daily report, if enabled.
	var sched *scheduler.Scheduler
	if cfg.ReportSchedule != "" && !cfg.DefaultPortfolio.IsEmpty() {
		sched = scheduler.New(log)
		job := scheduler.NewDailyReportJob(engine, cfg.DefaultPortfolio, log)
		if err := sched.AddJob(cfg.ReportSchedule, job); err != nil {
			log.Error().Err(err).Str("schedule", cfg.ReportSchedule).Msg("Failed to register daily report job")
		} else {
			sched.Start()
		}
	}

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down")

	if sched != nil {
		sched.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}

	log.Info().Msg("Shutdown complete")
}
