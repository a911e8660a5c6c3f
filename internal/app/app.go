// Package app инициализирует все компоненты приложения.
// app.go — точка сборки: создаёт БД-пул, репозитории, сервисы, бота
// и планировщик, и связывает их в один объект App.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	"github.com/mymmrac/telego"
	log "github.com/sirupsen/logrus"

	"chatscore.ru/contribution-bot/internal/bot"
	"chatscore.ru/contribution-bot/internal/bot/filters"
	"chatscore.ru/contribution-bot/internal/bot/middleware"
	"chatscore.ru/contribution-bot/internal/common"
	"chatscore.ru/contribution-bot/internal/config"
	"chatscore.ru/contribution-bot/internal/db/postgres"
	"chatscore.ru/contribution-bot/internal/features/admin"
	"chatscore.ru/contribution-bot/internal/features/intake"
	"chatscore.ru/contribution-bot/internal/features/ledger"
	"chatscore.ru/contribution-bot/internal/features/reactions"
	"chatscore.ru/contribution-bot/internal/features/reports"
	"chatscore.ru/contribution-bot/internal/features/routing"
	"chatscore.ru/contribution-bot/internal/features/scores"
	"chatscore.ru/contribution-bot/internal/features/settlement"
	"chatscore.ru/contribution-bot/internal/jobs"
)

// App содержит все компоненты приложения.
type App struct {
	Bot         *bot.Bot
	Scheduler   *jobs.Scheduler
	DB          *pgxpool.Pool
	RateLimiter *middleware.RateLimiter
}

// New создаёт и инициализирует приложение.
// Порядок инициализации важен — компоненты зависят друг от друга.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// === 1. База данных ===
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к БД: %w", err)
	}

	if err := runMigrations(ctx, pool); err != nil {
		return nil, fmt.Errorf("ошибка миграций: %w", err)
	}

	// === 2. Telegram Bot API ===
	api, err := telego.NewBot(cfg.TelegramBotToken,
		telego.WithDefaultLogger(cfg.AppEnv == "development", true))
	if err != nil {
		return nil, fmt.Errorf("ошибка создания Telegram API: %w", err)
	}
	me, err := api.GetMe(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка авторизации бота: %w", err)
	}
	log.Infof("Авторизован как @%s", me.Username)

	clock := clockwork.NewRealClock()
	loc := common.AppLocation(cfg.AppTimezone)

	// === 3. Репозитории ===
	ledgerRepo := ledger.NewRepository(pool)
	scoresRepo := scores.NewRepository(pool)
	reactionsRepo := reactions.NewRepository(pool)
	indexRepo := intake.NewRepository(pool)
	adminRepo := admin.NewRepository(pool)

	// === 4. Сервисы ===
	weights := scores.WeightsFromConfig(cfg)
	allowlist := reactions.NewAllowlist(cfg.ReactionAllowlist)

	ledgerService := ledger.NewService(ledgerRepo, clock)
	scoresService := scores.NewService(scoresRepo, weights, clock)
	reactionsService := reactions.NewService(allowlist, reactionsRepo, clock)
	settlementService := settlement.NewService(
		ledgerRepo, reactionsService, scoresRepo,
		reactions.NewHeuristicJudge(),
		cfg.ReactionAllowlist, cfg.SettlementMaxSymbols,
	)
	adminService := admin.NewService(adminRepo, cfg)

	router := routing.NewRouter(
		routing.NewKeywordClassifier(),
		cfg.FeatureAnswersEnabled,
		cfg.FeatureRecognitionEnabled,
	)
	intakeService := intake.NewService(
		router, ledgerService, scoresRepo, reactionsService, indexRepo, clock)

	// SendFunc отчётов замыкается на бота, который создаётся ниже
	var b *bot.Bot
	reportsService := reports.NewService(scoresService, cfg.ReportTopN, loc, clock,
		func(chatID int64, text string) { b.SendMessage(chatID, text) })

	// === 5. Фильтры и middleware ===
	chatFilter := filters.NewChatFilter(cfg.CommunityChatID, cfg.AdminChatID, cfg.AdminIDs)

	window, err := time.ParseDuration(cfg.RateLimitWindow)
	if err != nil {
		return nil, fmt.Errorf("некорректный RATE_LIMIT_WINDOW: %w", err)
	}
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRequests, window)

	// === 6. Собираем бота ===
	b = bot.New(
		api, cfg,
		intakeService, reportsService, scoresService,
		settlementService, adminService,
		rateLimiter, chatFilter,
	)

	// === 7. Планировщик задач ===
	scheduler := jobs.NewScheduler(cfg, settlementService, reportsService)

	return &App{
		Bot:         b,
		Scheduler:   scheduler,
		DB:          pool,
		RateLimiter: rateLimiter,
	}, nil
}

// runMigrations выполняет все SQL-миграции.
func runMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	if err := postgres.InitMigrations(ctx, pool); err != nil {
		return err
	}

	migrations := []struct {
		version int
		sql     string
	}{
		{1, migration001Events},
		{2, migration002UserScores},
		{3, migration003ReactionJudgement},
		{4, migration004MessageIndex},
		{5, migration005Admin},
	}

	for _, m := range migrations {
		if err := postgres.ExecMigrationSQL(ctx, pool, m.version, m.sql); err != nil {
			return fmt.Errorf("миграция %d: %w", m.version, err)
		}
		log.Infof("Миграция %d применена", m.version)
	}

	return nil
}

// SQL-миграции встроены в код для упрощения деплоя.

// Леджер событий: append-only, флаг scored меняется только false→true.
var migration001Events = `
CREATE TABLE IF NOT EXISTS events (
    id BIGSERIAL PRIMARY KEY,
    subject_user_id BIGINT NOT NULL,
    actor_user_id BIGINT,
    kind VARCHAR(32) NOT NULL,
    reaction_symbol VARCHAR(64),
    ts_epoch DOUBLE PRECISION NOT NULL,
    scored BOOLEAN NOT NULL DEFAULT FALSE,
    violation_rules TEXT
);
CREATE INDEX IF NOT EXISTS idx_events_subject ON events(subject_user_id);
CREATE INDEX IF NOT EXISTS idx_events_ts ON events(ts_epoch);
CREATE INDEX IF NOT EXISTS idx_events_kind_ts ON events(kind, ts_epoch);
CREATE INDEX IF NOT EXISTS idx_events_unscored ON events(kind) WHERE scored = FALSE;
`

// Зеркало накопительных счётов: O(1) чтение рейтинга за всё время.
var migration002UserScores = `
CREATE TABLE IF NOT EXISTS user_scores (
    user_id BIGINT PRIMARY KEY,
    post_count INTEGER NOT NULL DEFAULT 0,
    reaction_count INTEGER NOT NULL DEFAULT 0,
    answer_count INTEGER NOT NULL DEFAULT 0,
    positive_feedback_count INTEGER NOT NULL DEFAULT 0,
    violation_count INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP DEFAULT NOW(),
    updated_at TIMESTAMP DEFAULT NOW()
);
`

// Персистентный кэш вердиктов классификатора реакций.
var migration003ReactionJudgement = `
CREATE TABLE IF NOT EXISTS reaction_judgement (
    reaction_name VARCHAR(64) PRIMARY KEY,
    is_positive BOOLEAN NOT NULL,
    last_checked_ts DOUBLE PRECISION NOT NULL
);
`

// Индекс авторов сообщений: по нему реакция находит субъект начисления.
var migration004MessageIndex = `
CREATE TABLE IF NOT EXISTS message_index (
    chat_id BIGINT NOT NULL,
    message_id BIGINT NOT NULL,
    user_id BIGINT NOT NULL,
    ts_epoch DOUBLE PRECISION NOT NULL,
    PRIMARY KEY (chat_id, message_id)
);
CREATE INDEX IF NOT EXISTS idx_message_index_ts ON message_index(ts_epoch);
`

var migration005Admin = `
CREATE TABLE IF NOT EXISTS admin_sessions (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL,
    session_token VARCHAR(255) UNIQUE,
    authenticated_at TIMESTAMP DEFAULT NOW(),
    expires_at TIMESTAMP,
    is_active BOOLEAN DEFAULT TRUE
);
CREATE INDEX IF NOT EXISTS idx_admin_sessions_user_id ON admin_sessions(user_id);
CREATE TABLE IF NOT EXISTS admin_login_attempts (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT,
    attempt_time TIMESTAMP DEFAULT NOW(),
    success BOOLEAN DEFAULT FALSE
);
`
