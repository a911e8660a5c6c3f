// Package config загружает конфигурацию бота из переменных окружения.
// Используется envconfig для маппинга переменных окружения на поля структуры.
package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// Config содержит ВСЕ настройки приложения.
type Config struct {
	// --- Telegram ---
	TelegramBotToken string `envconfig:"TELEGRAM_BOT_TOKEN" required:"true"`
	// ID основного чата сообщества, активность которого считается
	CommunityChatID int64 `envconfig:"COMMUNITY_CHAT_ID" required:"true"`
	// ID админского чата: туда идут рейтинги и уведомления о нарушениях
	AdminChatID int64 `envconfig:"ADMIN_CHAT_ID" required:"true"`
	// ID топика вопросов-ответов (форум-топик в основном чате).
	// Ответы в тредах этого топика могут засчитываться как answer.
	QATopicID int `envconfig:"QA_TOPIC_ID" default:"0"`

	AdminIDsRaw string  `envconfig:"ADMIN_IDS" default:""`
	AdminIDs    []int64 `envconfig:"-"` // заполним вручную

	// --- Database ---
	// В Docker внутри контейнера "localhost" почти всегда неправильно.
	// Дефолт ставим "postgres" (имя сервиса в docker-compose).
	DBHost     string `envconfig:"DB_HOST" default:"postgres"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"botuser"`
	DBPassword string `envconfig:"DB_PASSWORD" required:"true"`
	DBName     string `envconfig:"DB_NAME" default:"contribution_bot"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	DBMaxConns int32  `envconfig:"DB_MAX_CONNS" default:"25"`
	DBMinConns int32  `envconfig:"DB_MIN_CONNS" default:"5"`

	// --- Application ---
	AppEnv      string `envconfig:"APP_ENV" default:"development"`
	AppLogLevel string `envconfig:"APP_LOG_LEVEL" default:"debug"`
	AppTimezone string `envconfig:"APP_TIMEZONE" default:"Europe/Moscow"`

	// --- Bot runtime ---
	// Сколько апдейтов обрабатываем параллельно. Иначе "go на каждый апдейт" = утечка памяти при флуде.
	BotMaxInflight int `envconfig:"BOT_MAX_INFLIGHT" default:"64"`
	// Таймаут long polling (секунды)
	BotUpdateTimeoutSeconds int `envconfig:"BOT_UPDATE_TIMEOUT_SECONDS" default:"60"`

	// --- Admin ---
	AdminPasswordHash string `envconfig:"ADMIN_PASSWORD_HASH" required:"true"`

	// --- Веса категорий ---
	// Из этих весов складывается итоговый балл: score = Σ weight × count.
	// Вес нарушения отрицательный.
	WeightPost             float64 `envconfig:"WEIGHT_POST" default:"1"`
	WeightReaction         float64 `envconfig:"WEIGHT_REACTION" default:"0.5"`
	WeightAnswer           float64 `envconfig:"WEIGHT_ANSWER" default:"3"`
	WeightPositiveFeedback float64 `envconfig:"WEIGHT_POSITIVE_FEEDBACK" default:"3"`
	WeightViolation        float64 `envconfig:"WEIGHT_VIOLATION" default:"-5"`

	// --- Реакции ---
	// Статический список однозначно позитивных реакций: проверяется ДО кэша,
	// в БД не сохраняется.
	ReactionAllowlistRaw string   `envconfig:"REACTION_ALLOWLIST" default:"👍,❤️,🔥,🎉,👏,🙏"`
	ReactionAllowlist    []string `envconfig:"-"`
	// Ограничение числа неизвестных символов, судимых за один прогон,
	// чтобы медленный классификатор не растянул прогон до следующего запуска.
	SettlementMaxSymbols int `envconfig:"SETTLEMENT_MAX_SYMBOLS" default:"50"`

	// --- Рейтинг ---
	ReportTopN int `envconfig:"REPORT_TOP_N" default:"5"`

	// --- Rate Limiting ---
	RateLimitRequests int    `envconfig:"RATE_LIMIT_REQUESTS" default:"30"`
	RateLimitWindow   string `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`

	// --- Feature Flags ---
	FeatureAnswersEnabled     bool `envconfig:"FEATURE_ANSWERS_ENABLED" default:"true"`
	FeatureRecognitionEnabled bool `envconfig:"FEATURE_RECOGNITION_ENABLED" default:"true"`
}

// DatabaseDSN возвращает строку подключения к PostgreSQL в формате DSN.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

func (c *Config) Validate() error {
	if c.CommunityChatID == 0 {
		return fmt.Errorf("COMMUNITY_CHAT_ID не задан или равен 0")
	}
	if c.AdminChatID == 0 {
		return fmt.Errorf("ADMIN_CHAT_ID не задан или равен 0")
	}
	if c.BotMaxInflight <= 0 {
		return fmt.Errorf("BOT_MAX_INFLIGHT должен быть > 0")
	}
	if c.BotUpdateTimeoutSeconds <= 0 {
		return fmt.Errorf("BOT_UPDATE_TIMEOUT_SECONDS должен быть > 0")
	}
	if c.DBMaxConns <= 0 || c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("некорректные DB_MIN_CONNS/DB_MAX_CONNS")
	}
	if c.WeightViolation > 0 {
		return fmt.Errorf("WEIGHT_VIOLATION должен быть отрицательным или нулевым")
	}
	if c.SettlementMaxSymbols <= 0 {
		return fmt.Errorf("SETTLEMENT_MAX_SYMBOLS должен быть > 0")
	}
	if c.ReportTopN <= 0 {
		return fmt.Errorf("REPORT_TOP_N должен быть > 0")
	}
	return nil
}

// Load читает переменные окружения и заполняет структуру Config.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("не удалось загрузить конфигурацию: %w", err)
	}

	ids, err := parseInt64CSV(cfg.AdminIDsRaw)
	if err != nil {
		return nil, fmt.Errorf("ADMIN_IDS parse: %w", err)
	}
	cfg.AdminIDs = ids
	cfg.ReactionAllowlist = parseStringCSV(cfg.ReactionAllowlistRaw)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func parseInt64CSV(s string) ([]int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		v, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad int64 %q: %w", p, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func parseStringCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
