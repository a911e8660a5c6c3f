// handlers.go переводит апдейты Telegram во входные события движка
// и формирует ответы на команды.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mymmrac/telego"
	log "github.com/sirupsen/logrus"

	"chatscore.ru/contribution-bot/internal/common"
	"chatscore.ru/contribution-bot/internal/features/intake"
	"chatscore.ru/contribution-bot/internal/features/ledger"
	"chatscore.ru/contribution-bot/internal/features/reports"
)

// handleMessage передаёт сообщение основного чата в приём событий.
func (b *Bot) handleMessage(ctx context.Context, message *telego.Message, edited bool) {
	in := intake.IncomingMessage{
		ChatID:     message.Chat.ID,
		MessageID:  message.MessageID,
		Author:     message.From.ID,
		Text:       message.Text,
		Mentions:   extractMentions(message),
		OccurredAt: common.FromEpoch(float64(message.Date)),
		Edited:     edited,
	}

	// Ответ в треде топика вопросов-ответов
	if parent := message.ReplyToMessage; parent != nil {
		if b.cfg.QATopicID != 0 && message.MessageThreadID == b.cfg.QATopicID {
			in.IsQAThreadReply = true
		}
		if parent.From != nil {
			in.ParentAuthor = parent.From.ID
		}
		in.ParentText = parent.Text
	}

	decision, err := b.intakeService.HandleMessage(ctx, in)
	if err != nil {
		if errors.Is(err, common.ErrNoSubjectUser) {
			return
		}
		log.WithError(err).WithFields(log.Fields{
			"chat_id":    in.ChatID,
			"message_id": in.MessageID,
		}).Error("Не удалось обработать сообщение")
		return
	}

	// О нарушении сообщаем в админский чат
	if decision.Kind == ledger.KindViolation && b.cfg.AdminChatID != 0 {
		b.sendMessage(b.cfg.AdminChatID, reports.BuildViolationAlert(in.Author, in.Text, decision.Rules))
	}
}

// handleReaction передаёт добавленные реакции в приём событий.
// Telegram присылает полный старый и новый наборы: учитываем только
// символы, появившиеся в новом.
func (b *Bot) handleReaction(ctx context.Context, upd *telego.MessageReactionUpdated) {
	if upd.User == nil {
		// Анонимная реакция от имени чата — актора нет
		return
	}

	old := make(map[string]struct{})
	for _, r := range upd.OldReaction {
		if e, ok := r.(*telego.ReactionTypeEmoji); ok {
			old[e.Emoji] = struct{}{}
		}
	}

	for _, r := range upd.NewReaction {
		e, ok := r.(*telego.ReactionTypeEmoji)
		if !ok {
			// Кастомные и платные реакции не учитываем
			continue
		}
		if _, seen := old[e.Emoji]; seen {
			continue
		}

		err := b.intakeService.HandleReaction(ctx, intake.IncomingReaction{
			ChatID:     upd.Chat.ID,
			MessageID:  upd.MessageID,
			Actor:      upd.User.ID,
			Symbol:     e.Emoji,
			OccurredAt: common.FromEpoch(float64(upd.Date)),
		})
		switch {
		case err == nil:
		case errors.Is(err, common.ErrSelfReaction):
			log.WithField("user_id", upd.User.ID).Debug("Самореакция, пропускаем")
		default:
			log.WithError(err).WithFields(log.Fields{
				"chat_id":    upd.Chat.ID,
				"message_id": upd.MessageID,
				"symbol":     e.Emoji,
			}).Error("Не удалось обработать реакцию")
		}
	}
}

// handleScoreboard отвечает рейтингом за указанный период.
func (b *Bot) handleScoreboard(ctx context.Context, chatID int64, periodText string) {
	text, err := b.reportsService.Scoreboard(ctx, periodText)
	if err != nil {
		if errors.Is(err, common.ErrBadWindow) {
			b.sendMessage(chatID, "❌ Некорректный период. Примеры: !рейтинг неделя, !рейтинг 20250101-20250131")
			return
		}
		log.WithError(err).Error("Не удалось построить рейтинг")
		b.sendMessage(chatID, "Внутренняя ошибка, попробуйте позже")
		return
	}
	b.sendMessage(chatID, text)
}

// handleTotals отвечает накопленным вкладом спросившего.
func (b *Bot) handleTotals(ctx context.Context, chatID, userID int64) {
	row, err := b.scoresService.UserTotals(ctx, userID)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("Не удалось получить вклад")
		b.sendMessage(chatID, "Внутренняя ошибка, попробуйте позже")
		return
	}

	var sb strings.Builder
	sb.WriteString("📊 <b>Ваш вклад за всё время</b>\n\n")
	sb.WriteString(fmt.Sprintf("Постов: %d\n", row.Counts.Posts))
	sb.WriteString(fmt.Sprintf("Реакций получено: %d\n", row.Counts.Reactions))
	sb.WriteString(fmt.Sprintf("Ответов: %d\n", row.Counts.Answers))
	sb.WriteString(fmt.Sprintf("Благодарностей: %d\n", row.Counts.PositiveFeedback))
	sb.WriteString(fmt.Sprintf("Нарушений: %d\n\n", row.Counts.Violations))
	sb.WriteString(fmt.Sprintf("Итого: <b>%.1f</b>", row.Score))
	b.sendMessage(chatID, sb.String())
}

// handleSettlement запускает прогон урегулирования по команде.
func (b *Bot) handleSettlement(ctx context.Context, chatID int64) {
	b.sendMessage(chatID, "⏳ Запускаю урегулирование отложенных реакций...")

	stats, err := b.settlementService.Run(ctx)
	if err != nil {
		log.WithError(err).Error("Прогон урегулирования завершился ошибкой")
		b.sendMessage(chatID, "❌ Урегулирование завершилось ошибкой, подробности в логах")
		return
	}

	b.sendMessage(chatID, fmt.Sprintf(
		"✅ Готово: символов отсужено %d (ошибок %d), реакций начислено %d, досчитано событий %d",
		stats.SymbolsJudged, stats.SymbolsFailed, stats.ReactionsScored, stats.SweptScored,
	))
}

// extractMentions собирает ID упомянутых пользователей из entities.
// Только text_mention несёт ID; @username без ID разрешить нельзя.
func extractMentions(message *telego.Message) []int64 {
	var ids []int64
	for _, entity := range message.Entities {
		if entity.Type == telego.EntityTypeTextMention && entity.User != nil {
			ids = append(ids, entity.User.ID)
		}
	}
	return ids
}
