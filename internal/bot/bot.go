// Package bot содержит главный модуль бота — инициализацию, запуск и остановку.
// bot.go создаёт polling-цикл, маршрутизирует команды и отправляет сообщения.
package bot

import (
	"context"
	"errors"
	"strings"

	"github.com/mymmrac/telego"
	log "github.com/sirupsen/logrus"

	"chatscore.ru/contribution-bot/internal/bot/filters"
	"chatscore.ru/contribution-bot/internal/bot/middleware"
	"chatscore.ru/contribution-bot/internal/common"
	"chatscore.ru/contribution-bot/internal/config"
	"chatscore.ru/contribution-bot/internal/features/admin"
	"chatscore.ru/contribution-bot/internal/features/intake"
	"chatscore.ru/contribution-bot/internal/features/reports"
	"chatscore.ru/contribution-bot/internal/features/scores"
	"chatscore.ru/contribution-bot/internal/features/settlement"
)

// Bot — главная структура бота, объединяющая все компоненты.
type Bot struct {
	api *telego.Bot
	cfg *config.Config

	chatFilter  *filters.ChatFilter
	rateLimiter *middleware.RateLimiter

	intakeService     *intake.Service
	reportsService    *reports.Service
	scoresService     *scores.Service
	settlementService *settlement.Service
	adminService      *admin.Service

	parser *CommandParser

	// ограничитель параллелизма обработки апдейтов
	inflight chan struct{}
}

// New создаёт новый экземпляр бота со всеми зависимостями.
func New(
	api *telego.Bot,
	cfg *config.Config,
	intakeService *intake.Service,
	reportsService *reports.Service,
	scoresService *scores.Service,
	settlementService *settlement.Service,
	adminService *admin.Service,
	rateLimiter *middleware.RateLimiter,
	chatFilter *filters.ChatFilter,
) *Bot {
	maxInFlight := cfg.BotMaxInflight
	if maxInFlight <= 0 {
		maxInFlight = 64
	}

	return &Bot{
		api:               api,
		cfg:               cfg,
		chatFilter:        chatFilter,
		rateLimiter:       rateLimiter,
		intakeService:     intakeService,
		reportsService:    reportsService,
		scoresService:     scoresService,
		settlementService: settlementService,
		adminService:      adminService,
		parser:            NewCommandParser(),
		inflight:          make(chan struct{}, maxInFlight),
	}
}

// Start запускает polling обновлений от Telegram.
// Блокируется до отмены ctx или закрытия канала updates.
func (b *Bot) Start(ctx context.Context) error {
	updates, err := b.api.UpdatesViaLongPolling(ctx, &telego.GetUpdatesParams{
		Timeout: b.cfg.BotUpdateTimeoutSeconds,
		// message_reaction не входит в дефолтный набор — его надо просить явно
		AllowedUpdates: []string{"message", "edited_message", "message_reaction"},
	})
	if err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"max_inflight": b.cfg.BotMaxInflight,
		"timeout_sec":  b.cfg.BotUpdateTimeoutSeconds,
	}).Info("Бот запущен и ожидает апдейты...")

	for {
		select {
		case <-ctx.Done():
			log.Info("Бот останавливается (ctx done)...")
			return nil

		case update, ok := <-updates:
			if !ok {
				log.Info("Канал updates закрыт, бот остановлен")
				return nil
			}

			// лимит параллелизма
			b.inflight <- struct{}{}
			go func(upd telego.Update) {
				defer func() { <-b.inflight }()
				b.handleUpdate(ctx, upd)
			}(update)
		}
	}
}

// handleUpdate обрабатывает одно обновление от Telegram.
func (b *Bot) handleUpdate(ctx context.Context, update telego.Update) {
	defer middleware.RecoverFromPanic()

	// Реакции на сообщения основного чата
	if update.MessageReaction != nil {
		if update.MessageReaction.Chat.ID == b.cfg.CommunityChatID {
			b.handleReaction(ctx, update.MessageReaction)
		}
		return
	}

	message := update.Message
	edited := false
	if message == nil && update.EditedMessage != nil {
		message = update.EditedMessage
		edited = true
	}
	if message == nil || message.Text == "" {
		return
	}

	middleware.LogMessage(message)

	if !b.chatFilter.CheckAccess(message) {
		return
	}

	chatID := message.Chat.ID
	userID := message.From.ID

	// Парсим команду
	cmd, args, isCommand := b.parser.ParseCommand(message.Text)
	if isCommand {
		if edited {
			return
		}
		if !b.rateLimiter.Allow(userID) {
			log.WithField("user_id", userID).Debug("rate limited")
			return
		}
		b.routeCommand(ctx, chatID, userID, cmd, args)
		return
	}

	// Не команда: сообщения основного чата идут в учёт вклада
	if chatID == b.cfg.CommunityChatID {
		b.handleMessage(ctx, message, edited)
	}
}

// routeCommand маршрутизирует команду к нужному обработчику.
func (b *Bot) routeCommand(ctx context.Context, chatID, userID int64, cmd string, args []string) {
	log.WithFields(log.Fields{
		"cmd":  cmd,
		"args": args,
	}).Debug("routing command")

	switch cmd {
	case "start", "help":
		b.sendMessage(chatID, "Я считаю вклад участников. Команды: !рейтинг [период], !вклад, /login <пароль> (админ), !пересчёт (админ)")

	case "login":
		// Пароль принимаем только в личке
		if chatID == userID {
			b.handleLogin(ctx, chatID, userID, args)
		}

	case "рейтинг", "топ":
		b.handleScoreboard(ctx, chatID, strings.Join(args, " "))

	case "вклад":
		b.handleTotals(ctx, chatID, userID)

	case "пересчёт", "пересчет":
		if !b.adminService.IsAuthorized(ctx, userID, chatID) {
			b.sendMessage(chatID, "❌ Команда доступна только администраторам")
			return
		}
		b.handleSettlement(ctx, chatID)
	}
}

// handleLogin обрабатывает /login <пароль> в личке.
func (b *Bot) handleLogin(ctx context.Context, chatID, userID int64, args []string) {
	if len(args) == 0 {
		b.sendMessage(chatID, "Использование: /login <пароль>")
		return
	}

	err := b.adminService.VerifyPassword(ctx, userID, strings.Join(args, " "))
	switch {
	case err == nil:
		b.sendMessage(chatID, "✅ Вход выполнен, сессия на 24 часа")
	case errors.Is(err, common.ErrTooManyAttempts):
		b.sendMessage(chatID, "⛔ Слишком много попыток, подождите час")
	case errors.Is(err, common.ErrWrongPassword):
		b.sendMessage(chatID, "❌ Неверный пароль")
	default:
		log.WithError(err).WithField("user_id", userID).Error("Ошибка входа")
		b.sendMessage(chatID, "Внутренняя ошибка, попробуйте позже")
	}
}

// sendMessage — утилита для отправки сообщений (HTML-разметка).
func (b *Bot) sendMessage(chatID int64, text string) {
	_, err := b.api.SendMessage(context.Background(), &telego.SendMessageParams{
		ChatID:    telego.ChatID{ID: chatID},
		Text:      text,
		ParseMode: telego.ModeHTML,
	})
	if err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Ошибка отправки сообщения")
	}
}

// SendMessage отправляет сообщение в чат. Используется планировщиком
// и сервисом отчётов.
func (b *Bot) SendMessage(chatID int64, text string) {
	b.sendMessage(chatID, text)
}

// CommandParser парсит русские команды с префиксами !, . и /
type CommandParser struct {
	validPrefixes []string
}

// NewCommandParser создаёт парсер команд.
func NewCommandParser() *CommandParser {
	return &CommandParser{
		validPrefixes: []string{"!", ".", "/"},
	}
}

// ParseCommand разбирает текст на команду и аргументы.
func (p *CommandParser) ParseCommand(text string) (string, []string, bool) {
	text = strings.TrimSpace(text)

	hasPrefix := false
	for _, prefix := range p.validPrefixes {
		if strings.HasPrefix(text, prefix) {
			text = strings.TrimPrefix(text, prefix)
			hasPrefix = true
			break
		}
	}

	if !hasPrefix {
		return "", nil, false
	}

	text = strings.TrimSpace(text)
	parts := strings.Fields(text)

	if len(parts) == 0 {
		return "", nil, false
	}

	// /рейтинг@имя_бота → рейтинг
	command := strings.ToLower(parts[0])
	if at := strings.IndexByte(command, '@'); at > 0 {
		command = command[:at]
	}

	var args []string
	if len(parts) > 1 {
		args = parts[1:]
	}

	return command, args, true
}
