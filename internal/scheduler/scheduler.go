package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/decentfoods/internal/config"
	"github.com/mamadbah2/decentfoods/internal/service/reporting"
)

const runTimeout = 2 * time.Minute

// ReportRunner is the part of the reporting service the weekly job needs.
type ReportRunner interface {
	QuickReport(ctx context.Context, kind reporting.QuickPeriod) (reporting.Report, error)
	Render(report reporting.Report) string
	Archive(ctx context.Context, report reporting.Report) error
}

// Notifier delivers the rendered report to the manager.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron     *cron.Cron
	schedule string
	reports  ReportRunner
	notifier Notifier
	logger   *zap.Logger
}

// NewScheduler creates a scheduler running in the business time zone. The
// notifier may be nil, in which case reports are only archived.
func NewScheduler(cfg config.ReportingConfig, reports ReportRunner, notifier Notifier, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		schedule: cfg.CronSchedule,
		reports:  reports,
		notifier: notifier,
		logger:   logger,
	}, nil
}

// Start registers the weekly report job and starts the scheduler.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.runWeeklyReport); err != nil {
		return fmt.Errorf("schedule weekly report %q: %w", s.schedule, err)
	}
	s.cron.Start()
	s.logger.Info("scheduler started", zap.String("schedule", s.schedule))
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runWeeklyReport() {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	if err := s.WeeklyReport(ctx); err != nil {
		s.logger.Error("weekly report failed", zap.Error(err))
	}
}

// WeeklyReport builds this week's report, sends it to the manager and
// archives it. Delivery and archive failures are both attempted and the
// first is returned.
func (s *Scheduler) WeeklyReport(ctx context.Context) error {
	s.logger.Info("generating weekly report")

	report, err := s.reports.QuickReport(ctx, reporting.ThisWeek)
	if err != nil {
		return fmt.Errorf("build weekly report: %w", err)
	}

	var firstErr error
	if s.notifier != nil {
		if err := s.notifier.Notify(ctx, s.reports.Render(report)); err != nil {
			firstErr = fmt.Errorf("send weekly report: %w", err)
		} else {
			s.logger.Info("weekly report sent")
		}
	}

	if err := s.reports.Archive(ctx, report); err != nil {
		s.logger.Warn("weekly report not archived", zap.Error(err))
		if firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
