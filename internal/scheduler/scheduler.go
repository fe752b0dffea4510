package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/notexe/reminder-tracker/internal/config"
	"github.com/notexe/reminder-tracker/internal/notify"
	"github.com/notexe/reminder-tracker/internal/reminder"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Renewer runs a renewal scan.
type Renewer interface {
	Run(ctx context.Context, today reminder.Date) (reminder.Result, error)
}

// Checker sends the upcoming reminder digest.
type Checker interface {
	Check(ctx context.Context, today reminder.Date, channel string) (notify.Report, error)
}

// Scheduler runs the daily reminder job: a renewal scan when renewal mode is
// scheduled, then the upcoming reminder notification.
type Scheduler struct {
	renewer Renewer
	checker Checker
	spec    string
	onStart bool
	renew   bool
	loc     *time.Location
	now     func() time.Time
	log     zerolog.Logger
}

// New creates a Scheduler from the scheduler and renewal settings of cfg.
func New(renewer Renewer, checker Checker, cfg *config.Config, log zerolog.Logger) (*Scheduler, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	return &Scheduler{
		renewer: renewer,
		checker: checker,
		spec:    cfg.Scheduler.Cron,
		onStart: cfg.Scheduler.RunOnStart,
		renew:   cfg.Renewal.Mode == config.RenewalScheduled,
		loc:     loc,
		now:     time.Now,
		log:     log.With().Str("component", "scheduler").Logger(),
	}, nil
}

// Run blocks and runs the job on the cron schedule, plus once immediately
// when run_on_start is set. It exits when ctx is cancelled, after the
// running job finishes.
func (s *Scheduler) Run(ctx context.Context) error {
	c := cron.New(
		cron.WithLocation(s.loc),
		cron.WithChain(cron.Recover(cronLogger{s.log}), cron.SkipIfStillRunning(cronLogger{s.log})),
	)
	if _, err := c.AddFunc(s.spec, func() { s.tick(ctx) }); err != nil {
		return fmt.Errorf("invalid cron spec %q: %w", s.spec, err)
	}

	s.log.Info().Str("cron", s.spec).Str("timezone", s.loc.String()).Bool("renewal", s.renew).Msg("started")

	if s.onStart {
		s.tick(ctx)
	}

	c.Start()
	<-ctx.Done()
	s.log.Info().Msg("shutting down")
	<-c.Stop().Done()
	return nil
}

func (s *Scheduler) tick(ctx context.Context) {
	today := reminder.Today(s.now, s.loc)
	log := s.log.With().Str("today", today.String()).Logger()
	log.Info().Msg("checking reminders")

	if s.renew {
		res, err := s.renewer.Run(ctx, today)
		if err != nil {
			log.Error().Stack().Err(err).Msg("renewal scan failed")
		} else if sum := res.Summary(); sum.Processed > 0 {
			log.Info().
				Str("run_id", sum.RunID).
				Int("created", sum.Created).
				Int("skipped", sum.Skipped).
				Int("failed", sum.Failed).
				Msg("renewal scan done")
		}
	}

	report, err := s.checker.Check(ctx, today, "")
	if err != nil {
		log.Error().Stack().Err(err).Msg("reminder check failed")
		return
	}
	if report.Count == 0 {
		log.Info().Msg("no reminders to report")
		return
	}
	for _, r := range report.Results {
		log.Info().Str("channel", r.Channel).Str("status", r.Status).Str("error", r.Error).Msg("notification")
	}
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
