// Package routing — classifier.go описывает внешний классификатор
// содержимого и его эвристическую реализацию по умолчанию.
package routing

import (
	"context"
	"strings"
)

// Classifier — внешний классификатор содержимого сообщений.
// Любой его отказ трактуется как «не удалось классифицировать»:
// маршрутизатор деградирует к обычному посту, приём не падает.
type Classifier interface {
	// Classify проверяет сообщение на нарушение правил сообщества.
	Classify(ctx context.Context, text string) (Classification, error)
	// DetectRecognitionTargets выбирает из кандидатов-упоминаний тех,
	// кому текст выражает признание. В Telegram ID упомянутых приходят
	// в entities сообщения, а не в тексте, поэтому кандидаты передаются
	// параметром.
	DetectRecognitionTargets(ctx context.Context, text string, mentions []int64) ([]int64, error)
	// IsGenuineAnswer судит, является ли ответ в треде настоящим
	// ответом на родительский вопрос.
	IsGenuineAnswer(ctx context.Context, parentText, replyText string) (bool, error)
}

// Эвристические словари KeywordClassifier.
// Боевой классификатор (LLM) подключается реализацией Classifier.
var (
	violationWords = []string{"badword"}

	recognitionWords = []string{
		"спасибо", "благодарю", "молодец", "выручил", "помог",
	}

	answerWords = []string{
		"попробуй", "нужно", "можно", "потому что", "дело в том",
	}
)

// KeywordClassifier — детерминированная реализация Classifier
// по словарям ключевых слов.
type KeywordClassifier struct{}

// NewKeywordClassifier создаёт эвристический классификатор.
func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{}
}

// Classify помечает нарушением тексты со словами из violationWords.
func (c *KeywordClassifier) Classify(_ context.Context, text string) (Classification, error) {
	txt := strings.ToLower(text)
	for i, w := range violationWords {
		if strings.Contains(txt, w) {
			return Classification{IsViolation: true, RuleIDs: []int{i + 1}}, nil
		}
	}
	return Classification{}, nil
}

// DetectRecognitionTargets возвращает всех кандидатов, если текст
// содержит слово благодарности.
func (c *KeywordClassifier) DetectRecognitionTargets(_ context.Context, text string, mentions []int64) ([]int64, error) {
	if len(mentions) == 0 {
		return nil, nil
	}
	txt := strings.ToLower(text)
	for _, w := range recognitionWords {
		if strings.Contains(txt, w) {
			return mentions, nil
		}
	}
	return nil, nil
}

// IsGenuineAnswer считает ответом содержательную реплику с маркером ответа.
func (c *KeywordClassifier) IsGenuineAnswer(_ context.Context, _ string, replyText string) (bool, error) {
	txt := strings.ToLower(replyText)
	for _, w := range answerWords {
		if strings.Contains(txt, w) {
			return true, nil
		}
	}
	return false, nil
}
