package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job is a scheduled unit of work. ctx is cancelled when the scheduler stops.
type Job func(ctx context.Context)

// Scheduler runs jobs on their rules. A job whose previous run is still in
// progress is skipped.
type Scheduler struct {
	cron    *cron.Cron
	logger  *zap.Logger
	loc     *time.Location
	ctx     context.Context
	entries map[string]cron.EntryID
}

// New creates a scheduler evaluating daily rules in loc.
func New(loc *time.Location, logger *zap.Logger) *Scheduler {
	cl := cronLogger{logger: logger.Sugar()}
	return &Scheduler{
		cron: cron.New(
			cron.WithParser(parser),
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		logger:  logger,
		loc:     loc,
		ctx:     context.Background(),
		entries: make(map[string]cron.EntryID),
	}
}

// Add registers job under name. Names are unique.
func (s *Scheduler) Add(name string, rule Rule, job Job) error {
	if _, exists := s.entries[name]; exists {
		return fmt.Errorf("job %q already scheduled", name)
	}
	id, err := s.cron.AddFunc(rule.Spec(), func() {
		start := time.Now()
		s.logger.Info("Scheduled job triggered", zap.String("job", name), zap.Stringer("rule", rule))
		job(s.ctx)
		s.logger.Info("Scheduled job finished", zap.String("job", name), zap.Duration("elapsed", time.Since(start)))
	})
	if err != nil {
		return fmt.Errorf("schedule %q: %w", name, err)
	}
	s.entries[name] = id

	fields := []zap.Field{zap.String("job", name), zap.Stringer("rule", rule)}
	if next, err := rule.Next(time.Now().In(s.loc)); err == nil {
		fields = append(fields, zap.Time("next_run", next))
	}
	s.logger.Info("Job scheduled", fields...)
	return nil
}

// Len returns the number of scheduled jobs.
func (s *Scheduler) Len() int { return len(s.entries) }

// Run starts the scheduler and blocks until ctx is done, then waits for
// running jobs to return.
func (s *Scheduler) Run(ctx context.Context) {
	s.ctx = ctx
	s.cron.Start()
	s.logger.Info("Scheduler started", zap.Int("jobs", len(s.entries)))

	<-ctx.Done()
	s.logger.Info("Scheduler stopping, waiting for running jobs")
	<-s.cron.Stop().Done()
	s.logger.Info("Scheduler stopped")
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	logger *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Errorw(msg, append(keysAndValues, "error", err)...)
}
