package admin

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang.org/x/crypto/argon2"
)

func makeHash(t *testing.T, password string) string {
	t.Helper()
	salt := make([]byte, 16)
	_, err := rand.Read(salt)
	require.NoError(t, err)

	hash := argon2.IDKey([]byte(password), salt, 3, 65536, 2, 32)
	return fmt.Sprintf("$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		65536, 3, 2,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash))
}

func TestVerifyArgon2id(t *testing.T) {
	encoded := makeHash(t, "секретный-пароль")

	assert.True(t, verifyArgon2id("секретный-пароль", encoded))
	assert.False(t, verifyArgon2id("не тот пароль", encoded))
	assert.False(t, verifyArgon2id("", encoded))
}

func TestVerifyArgon2idBadFormat(t *testing.T) {
	assert.False(t, verifyArgon2id("пароль", ""))
	assert.False(t, verifyArgon2id("пароль", "просто строка"))
	assert.False(t, verifyArgon2id("пароль", "$argon2id$v=19$мусор$x$y"))
}

func TestGenerateSecureToken(t *testing.T) {
	a := generateSecureToken()
	b := generateSecureToken()
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}
