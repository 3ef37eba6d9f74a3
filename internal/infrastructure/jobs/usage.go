package jobs

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/assetverse/asset-management/internal/core/domain"
	"github.com/assetverse/asset-management/internal/pkg/metrics"
)

const (
	DefaultUsageSchedule = "@every 1m"
	runTimeout           = 30 * time.Second
)

// HRLister lists every hr user.
type HRLister interface {
	ListHR(ctx context.Context) ([]*domain.User, error)
}

// AffiliationCounter counts the active affiliations of a company.
type AffiliationCounter interface {
	CountActive(ctx context.Context, companyName string) (int64, error)
}

// UsageReporter publishes each company's affiliated employees against its
// package limit as the package_usage gauge.
type UsageReporter struct {
	users        HRLister
	affiliations AffiliationCounter
	log          zerolog.Logger
	cron         *cron.Cron
}

func NewUsageReporter(users HRLister, affiliations AffiliationCounter, log zerolog.Logger) *UsageReporter {
	return &UsageReporter{
		users:        users,
		affiliations: affiliations,
		log:          log,
		cron:         cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
	}
}

// Start schedules the report and runs it on the cron goroutine.
func (r *UsageReporter) Start(schedule string) error {
	if schedule == "" {
		schedule = DefaultUsageSchedule
	}
	if _, err := r.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()
		if err := r.Run(ctx); err != nil {
			r.log.Error().Err(err).Msg("package usage report failed")
		}
	}); err != nil {
		return fmt.Errorf("schedule usage report %q: %w", schedule, err)
	}
	r.cron.Start()
	r.log.Info().Str("schedule", schedule).Msg("package usage reporter started")
	return nil
}

// Stop waits for a running report to finish.
func (r *UsageReporter) Stop() {
	<-r.cron.Stop().Done()
}

// Run computes one report.
func (r *UsageReporter) Run(ctx context.Context) error {
	hrs, err := r.users.ListHR(ctx)
	if err != nil {
		return fmt.Errorf("list hr: %w", err)
	}
	for _, hr := range hrs {
		if hr.CompanyName == "" {
			continue
		}
		used, err := r.affiliations.CountActive(ctx, hr.CompanyName)
		if err != nil {
			r.log.Warn().Err(err).Str("company", hr.CompanyName).Msg("count affiliations failed")
			continue
		}
		company := domain.CompanyKey(hr.CompanyName)
		metrics.PackageUsage.WithLabelValues(company, "used").Set(float64(used))
		metrics.PackageUsage.WithLabelValues(company, "limit").Set(float64(hr.PackageLimit))
		if used >= int64(hr.PackageLimit) {
			r.log.Debug().
				Str("company", hr.CompanyName).
				Str("package", hr.Package).
				Str("usage", strconv.FormatInt(used, 10)+"/"+strconv.Itoa(hr.PackageLimit)).
				Msg("company at package limit")
		}
	}
	return nil
}
