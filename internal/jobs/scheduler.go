// Package jobs управляет фоновыми задачами (cron).
// scheduler.go настраивает расписание: ночное урегулирование реакций
// и периодическая публикация рейтингов.
package jobs

import (
	"context"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"chatscore.ru/contribution-bot/internal/common"
	"chatscore.ru/contribution-bot/internal/config"
	"chatscore.ru/contribution-bot/internal/features/reports"
	"chatscore.ru/contribution-bot/internal/features/settlement"
)

// Scheduler управляет фоновыми задачами.
type Scheduler struct {
	cron              *cron.Cron
	cfg               *config.Config
	settlementService *settlement.Service
	reportsService    *reports.Service
}

// NewScheduler создаёт планировщик задач в часовом поясе приложения.
func NewScheduler(cfg *config.Config, settlementService *settlement.Service, reportsService *reports.Service) *Scheduler {
	loc := common.AppLocation(cfg.AppTimezone)
	return &Scheduler{
		cron:              cron.New(cron.WithLocation(loc)),
		cfg:               cfg,
		settlementService: settlementService,
		reportsService:    reportsService,
	}
}

// Start запускает все фоновые задачи.
func (s *Scheduler) Start(ctx context.Context) {
	// Ночное урегулирование: судим неизвестные реакции, доначисляем баллы.
	// 00:10, чтобы не пересекаться с публикацией рейтинга за день
	s.cron.AddFunc("10 0 * * *", func() {
		log.Info("[CRON] Ночное урегулирование реакций")
		stats, err := s.settlementService.Run(ctx)
		if err != nil {
			log.WithError(err).Error("[CRON] Ошибка урегулирования")
			return
		}
		log.WithFields(log.Fields{
			"symbols_judged":   stats.SymbolsJudged,
			"symbols_failed":   stats.SymbolsFailed,
			"reactions_scored": stats.ReactionsScored,
			"swept_scored":     stats.SweptScored,
		}).Info("[CRON] Урегулирование завершено")
	})

	// Рейтинг за прошедший день — в полночь
	s.cron.AddFunc("0 0 * * *", func() {
		log.Info("[CRON] Публикация дневного рейтинга")
		s.reportsService.PublishPeriodic(ctx, "день", s.cfg.AdminChatID)
	})

	// Недельный рейтинг — по понедельникам в 09:00
	s.cron.AddFunc("0 9 * * 1", func() {
		log.Info("[CRON] Публикация недельного рейтинга")
		s.reportsService.PublishPeriodic(ctx, "неделя", s.cfg.AdminChatID)
	})

	// Месячный рейтинг — первого числа в 09:00
	s.cron.AddFunc("0 9 1 * *", func() {
		log.Info("[CRON] Публикация месячного рейтинга")
		s.reportsService.PublishPeriodic(ctx, "месяц", s.cfg.AdminChatID)
	})

	s.cron.Start()
	log.WithField("timezone", s.cfg.AppTimezone).Info("Планировщик задач запущен")
}

// Stop останавливает планировщик и дожидается завершения задач.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("Планировщик задач остановлен")
}
