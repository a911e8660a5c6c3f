package filters

import (
	"github.com/mymmrac/telego"
	log "github.com/sirupsen/logrus"
)

// ChatFilter решает, откуда бот вообще принимает сообщения:
// основной чат сообщества, админский чат и личка администраторов.
type ChatFilter struct {
	communityChatID int64
	adminChatID     int64
	adminIDs        []int64
}

func NewChatFilter(communityChatID, adminChatID int64, adminIDs []int64) *ChatFilter {
	return &ChatFilter{
		communityChatID: communityChatID,
		adminChatID:     adminChatID,
		adminIDs:        adminIDs,
	}
}

func (f *ChatFilter) CheckAccess(message *telego.Message) bool {
	if message == nil {
		return false
	}
	if message.From == nil {
		log.WithFields(log.Fields{
			"component": "ChatFilter",
			"chat_id":   message.Chat.ID,
			"chat_type": message.Chat.Type,
		}).Warn("nil message.From (сервисное сообщение или канал?)")
		return false
	}
	if f.communityChatID == 0 {
		log.WithField("component", "ChatFilter").Error("communityChatID равен 0 (ошибка конфигурации)")
		return false
	}

	chatID := message.Chat.ID

	// 1) Основной чат сообщества
	if chatID == f.communityChatID {
		return true
	}

	// 2) Админский чат
	if f.adminChatID != 0 && chatID == f.adminChatID {
		return true
	}

	// 3) Личка: только администраторы (для /login и команд)
	if message.Chat.Type == telego.ChatTypePrivate {
		for _, id := range f.adminIDs {
			if id == message.From.ID {
				return true
			}
		}
		log.WithFields(log.Fields{
			"component": "ChatFilter",
			"user_id":   message.From.ID,
		}).Debug("deny: личка не-администратора")
		return false
	}

	// 4) Остальные чаты игнорируем
	log.WithFields(log.Fields{
		"component": "ChatFilter",
		"chat_id":   chatID,
	}).Debug("deny: посторонний чат")
	return false
}
