package processor

import (
	"context"

	"partshop/background-worker-service/internal/app/background-worker/service"
	"partshop/pkg/logger"

	"github.com/robfig/cron/v3"
)

type CronScheduler struct {
	cron         *cron.Cron
	reconcileSvc service.ReconcileServiceInterface
}

// NewCronScheduler создает планировщик с секундным полем в расписании.
// Следующий запуск пропускается, если предыдущая сверка еще идет.
func NewCronScheduler(reconcileSvc service.ReconcileServiceInterface) *CronScheduler {
	cronLogger := cron.VerbosePrintfLogger(logger.NewPrintfWriter("cron"))

	c := cron.New(
		cron.WithSeconds(),
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
	)

	return &CronScheduler{
		cron:         c,
		reconcileSvc: reconcileSvc,
	}
}

// Start регистрирует задачу сверки и сразу выполняет ее один раз
func (s *CronScheduler) Start(ctx context.Context, schedule string) error {
	logger.Info().Str("schedule", schedule).Msg("Starting cron scheduler")

	_, err := s.cron.AddFunc(schedule, func() {
		s.runReconcile(ctx)
	})
	if err != nil {
		return err
	}

	s.cron.Start()

	logger.Info().Msg("Performing initial reconciliation...")
	s.runReconcile(ctx)

	return nil
}

func (s *CronScheduler) runReconcile(ctx context.Context) {
	if _, err := s.reconcileSvc.Reconcile(ctx); err != nil {
		logger.Error().Err(err).Msg("Reconciliation failed")
	}
}

func (s *CronScheduler) Stop() {
	logger.Info().Msg("Stopping cron scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info().Msg("Cron scheduler stopped")
}

func (s *CronScheduler) GetEntries() []cron.Entry {
	return s.cron.Entries()
}
