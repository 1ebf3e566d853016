package processor

import (
	"context"
	"log"

	"feedbackhub/stats-worker-service/internal/app/stats-worker/service"

	"github.com/robfig/cron/v3"
)

// CronScheduler запускает периодическую очистку устаревшей статистики
type CronScheduler struct {
	cron     *cron.Cron
	statsSvc service.StatsServiceInterface
}

func NewCronScheduler(statsSvc service.StatsServiceInterface) *CronScheduler {
	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(log.Default())))

	return &CronScheduler{
		cron:     c,
		statsSvc: statsSvc,
	}
}

func (s *CronScheduler) Start(ctx context.Context, schedule string) error {
	log.Printf("Starting cron scheduler with schedule: %s", schedule)

	_, err := s.cron.AddFunc(schedule, func() {
		log.Println("Cron job triggered: running stats retention")

		if err := s.statsSvc.RunRetention(ctx); err != nil {
			log.Printf("ERROR: Failed to run stats retention: %v", err)
		} else {
			log.Println("Cron job completed: stats retention finished")
		}
	})

	if err != nil {
		return err
	}

	s.cron.Start()
	log.Println("Cron scheduler started")

	return nil
}

func (s *CronScheduler) Stop() {
	log.Println("Stopping cron scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("Cron scheduler stopped")
}

func (s *CronScheduler) GetEntries() []cron.Entry {
	return s.cron.Entries()
}
