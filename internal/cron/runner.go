package cronrunner

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"bitbetty/internal/logger"
)

// Runner schedules background jobs on a shared base context. A job that is
// still running when its next tick fires is skipped, not overlapped.
type Runner struct {
	cron    *cron.Cron
	logger  *zap.Logger
	baseCtx context.Context
}

func New(log *zap.Logger, baseCtx context.Context) *Runner {
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	log = logger.OrNop(log)
	cl := cron.PrintfLogger(zap.NewStdLog(log))
	return &Runner{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		logger:  log,
		baseCtx: baseCtx,
	}
}

// Add registers job under name. An empty schedule disables the job.
func (r *Runner) Add(name, schedule string, job func(context.Context) error) (cron.EntryID, error) {
	if schedule == "" {
		r.logger.Info("cron job disabled", zap.String("job", name))
		return 0, nil
	}
	return r.cron.AddFunc(schedule, func() {
		if r.baseCtx.Err() != nil {
			return
		}
		start := time.Now()
		if err := job(r.baseCtx); err != nil {
			r.logger.Warn("cron job failed", zap.String("job", name), zap.Duration("took", time.Since(start)), zap.Error(err))
			return
		}
		r.logger.Debug("cron job done", zap.String("job", name), zap.Duration("took", time.Since(start)))
	})
}

func (r *Runner) Start() {
	r.logger.Info("cron started", zap.Int("jobs", len(r.cron.Entries())))
	r.cron.Start()
}

func (r *Runner) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
	r.logger.Info("cron stopped")
}
