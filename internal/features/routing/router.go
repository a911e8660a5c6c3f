// Package routing — router.go содержит цепочку приоритетов.
package routing

import (
	"context"

	log "github.com/sirupsen/logrus"

	"chatscore.ru/contribution-bot/internal/features/ledger"
)

// Router выбирает ровно одну категорию для сообщения.
type Router struct {
	classifier         Classifier
	answersEnabled     bool
	recognitionEnabled bool
}

// NewRouter создаёт маршрутизатор.
func NewRouter(classifier Classifier, answersEnabled, recognitionEnabled bool) *Router {
	return &Router{
		classifier:         classifier,
		answersEnabled:     answersEnabled,
		recognitionEnabled: recognitionEnabled,
	}
}

// Route применяет строгую цепочку приоритетов с ранним выходом:
//
//  1. нарушение правил → violation, остальные категории не рассматриваются;
//  2. признание другим участникам → positive_feedback каждому упомянутому,
//     кроме самого автора;
//  3. ответ в треде вопросов-ответов, автор родителя ≠ автор реплики,
//     классификатор подтвердил ответ → answer;
//  4. иначе → post.
//
// Сообщение попадает РОВНО в одну категорию, даже если подходит под
// несколько: нарушение с благодарностью внутри — только violation.
// Самоответ в треде всегда проваливается в post независимо от текста.
// Отказ классификатора никогда не ошибка: деградация к post.
func (r *Router) Route(ctx context.Context, msg Message) Decision {
	// 1. Нарушение правил
	cls, err := r.classifier.Classify(ctx, msg.Text)
	if err != nil {
		log.WithError(err).WithField("user_id", msg.Author).Warn("Классификатор недоступен, считаем постом")
		return Decision{Kind: ledger.KindPost}
	}
	if cls.IsViolation {
		return Decision{Kind: ledger.KindViolation, Rules: cls.RuleIDs}
	}

	// 2. Позитивный фидбэк
	if r.recognitionEnabled {
		targets, err := r.classifier.DetectRecognitionTargets(ctx, msg.Text, msg.Mentions)
		if err != nil {
			log.WithError(err).WithField("user_id", msg.Author).Warn("Детектор признания недоступен, считаем постом")
			return Decision{Kind: ledger.KindPost}
		}
		if filtered := dedupeTargets(targets, msg.Author); len(filtered) > 0 {
			return Decision{Kind: ledger.KindPositiveFeedback, Targets: filtered}
		}
	}

	// 3. Ответ в треде вопросов-ответов.
	// Самоответ отсекается сравнением авторов ДО вызова классификатора.
	if r.answersEnabled && msg.IsQAThreadReply && msg.ParentAuthor != 0 && msg.ParentAuthor != msg.Author {
		genuine, err := r.classifier.IsGenuineAnswer(ctx, msg.ParentText, msg.Text)
		if err != nil {
			log.WithError(err).WithField("user_id", msg.Author).Warn("Судья ответов недоступен, считаем постом")
			return Decision{Kind: ledger.KindPost}
		}
		if genuine {
			return Decision{Kind: ledger.KindAnswer}
		}
	}

	// 4. Обычный пост
	return Decision{Kind: ledger.KindPost}
}

// dedupeTargets убирает дубликаты и самого автора из списка получателей.
func dedupeTargets(targets []int64, author int64) []int64 {
	seen := make(map[int64]struct{}, len(targets))
	out := make([]int64, 0, len(targets))
	for _, t := range targets {
		if t == 0 || t == author {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
