package scheduler

import (
	"context"
	"time"

	"github.com/aristath/alphatrack/internal/domain"
	"github.com/aristath/alphatrack/internal/modules/analytics"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DailyReportJob computes and logs the daily report for the configured
// default portfolio shortly after market close. It holds no state; every
// run recomputes from the data source.
type DailyReportJob struct {
	service   *analytics.Service
	portfolio domain.Portfolio
	timeout   time.Duration
	log       zerolog.Logger
}

// NewDailyReportJob creates the close-of-market report job.
func NewDailyReportJob(service *analytics.Service, portfolio domain.Portfolio, log zerolog.Logger) *DailyReportJob {
	return &DailyReportJob{
		service:   service,
		portfolio: portfolio,
		timeout:   5 * time.Minute,
		log:       log.With().Str("job", "daily-report").Logger(),
	}
}

// Name implements Job.
func (j *DailyReportJob) Name() string {
	return "daily-report"
}

// Run implements Job.
func (j *DailyReportJob) Run() error {
	if j.portfolio.IsEmpty() {
		j.log.Debug().Msg("No default portfolio configured, skipping report")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	runID := uuid.New().String()
	result := j.service.ComputeDaily(ctx, j.portfolio)
	label := j.service.LastUpdatedLabel(ctx, "")

	j.log.Info().
		Str("run_id", runID).
		Str("as_of", label).
		Float64("dollar_change", result.DollarChange).
		Float64("percent_change", result.PercentChange).
		Float64("alpha", result.Alpha).
		Bool("degraded", result.Degraded).
		Msg("Daily portfolio report")

	return nil
}
