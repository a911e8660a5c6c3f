package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCommand(t *testing.T) {
	p := NewCommandParser()

	cmd, args, ok := p.ParseCommand("!рейтинг неделя")
	assert.True(t, ok)
	assert.Equal(t, "рейтинг", cmd)
	assert.Equal(t, []string{"неделя"}, args)

	cmd, _, ok = p.ParseCommand("/login секрет")
	assert.True(t, ok)
	assert.Equal(t, "login", cmd)

	cmd, args, ok = p.ParseCommand(".вклад")
	assert.True(t, ok)
	assert.Equal(t, "вклад", cmd)
	assert.Empty(t, args)
}

func TestParseCommandBotSuffix(t *testing.T) {
	p := NewCommandParser()

	cmd, _, ok := p.ParseCommand("/рейтинг@contribution_bot месяц")
	assert.True(t, ok)
	assert.Equal(t, "рейтинг", cmd)
}

func TestParseCommandNotACommand(t *testing.T) {
	p := NewCommandParser()

	_, _, ok := p.ParseCommand("обычное сообщение")
	assert.False(t, ok)

	_, _, ok = p.ParseCommand("")
	assert.False(t, ok)

	// Префикс без команды
	_, _, ok = p.ParseCommand("!   ")
	assert.False(t, ok)
}
