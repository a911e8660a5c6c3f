// Package reactions — allowlist.go содержит статический список
// однозначно позитивных реакций.
package reactions

// Allowlist — множество символов с бесплатным позитивным вердиктом.
// Проверяется ДО кэша: это дешевле и авторитетно, поэтому такие
// вердикты в БД не сохраняются.
type Allowlist map[string]struct{}

// NewAllowlist собирает множество из списка символов.
func NewAllowlist(symbols []string) Allowlist {
	a := make(Allowlist, len(symbols))
	for _, s := range symbols {
		if s != "" {
			a[s] = struct{}{}
		}
	}
	return a
}

// Contains сообщает, входит ли символ в список.
func (a Allowlist) Contains(symbol string) bool {
	_, ok := a[symbol]
	return ok
}

// Symbols возвращает список символов (для SQL-запросов `= ANY`).
func (a Allowlist) Symbols() []string {
	out := make([]string, 0, len(a))
	for s := range a {
		out = append(out, s)
	}
	return out
}
