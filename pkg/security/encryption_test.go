package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextCipherSealOpen(t *testing.T) {
	cipher := NewTextCipher("correct horse battery staple")
	require.True(t, cipher.Enabled())

	sealed, err := cipher.Seal("prefers mornings")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(sealed, sealedPrefix))
	assert.NotContains(t, sealed, "mornings")

	plain, err := cipher.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "prefers mornings", plain)
}

func TestTextCipherUsesFreshNonce(t *testing.T) {
	cipher := NewTextCipher("key")
	first, err := cipher.Seal("same")
	require.NoError(t, err)
	second, err := cipher.Seal("same")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestTextCipherWrongKey(t *testing.T) {
	sealed, err := NewTextCipher("one").Seal("secret")
	require.NoError(t, err)

	_, err = NewTextCipher("two").Open(sealed)
	assert.ErrorIs(t, err, ErrDecryption)
}

func TestTextCipherPassthrough(t *testing.T) {
	disabled := NewTextCipher("")
	assert.False(t, disabled.Enabled())

	sealed, err := disabled.Seal("plain")
	require.NoError(t, err)
	assert.Equal(t, "plain", sealed)

	// legacy rows written before encryption was enabled stay readable
	plain, err := NewTextCipher("key").Open("legacy note")
	require.NoError(t, err)
	assert.Equal(t, "legacy note", plain)

	empty, err := NewTextCipher("key").Seal("")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestSecretboxEncryptorRejectsShortInput(t *testing.T) {
	_, err := NewSecretboxEncryptor("key").Decrypt([]byte("short"))
	assert.ErrorIs(t, err, ErrDecryption)
}
