package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEncryptor(t *testing.T) *encryptor {
	t.Helper()
	t.Setenv("WMGATEWAY_ENABLE_ENCRYPTION", "true")
	t.Setenv("WMGATEWAY_ENCRYPTION_SECRET", "test-secret-key-32-characters-long!")

	enc, err := NewEncryptor()
	require.NoError(t, err)
	return enc
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	enc := newTestEncryptor(t)

	ciphertext, err := enc.Encrypt("15551230000")
	require.NoError(t, err)
	assert.NotEqual(t, "15551230000", ciphertext)

	plaintext, err := enc.Decrypt(ciphertext)
	require.NoError(t, err)
	assert.Equal(t, "15551230000", plaintext)
}

func TestEncryptIsRandomized(t *testing.T) {
	enc := newTestEncryptor(t)

	first, err := enc.Encrypt("15551230000")
	require.NoError(t, err)
	second, err := enc.Encrypt("15551230000")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestEncryptForLookupIsDeterministic(t *testing.T) {
	enc := newTestEncryptor(t)

	first, err := enc.EncryptForLookup("15551230000")
	require.NoError(t, err)
	second, err := enc.EncryptForLookup("15551230000")
	require.NoError(t, err)
	other, err := enc.EncryptForLookup("15559990000")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.NotEqual(t, first, other)
}

func TestEncryptEmptyString(t *testing.T) {
	enc := newTestEncryptor(t)

	ciphertext, err := enc.Encrypt("")
	require.NoError(t, err)
	assert.Empty(t, ciphertext)
}

func TestDecryptInvalidInput(t *testing.T) {
	enc := newTestEncryptor(t)

	_, err := enc.Decrypt("not base64 !!!")
	assert.Error(t, err)

	_, err = enc.Decrypt("c2hvcnQ=")
	assert.Error(t, err)
}

func TestEncryptorDisabled(t *testing.T) {
	t.Setenv("WMGATEWAY_ENABLE_ENCRYPTION", "false")

	enc, err := NewEncryptor()
	require.NoError(t, err)

	ciphertext, err := enc.EncryptIfEnabled("15551230000")
	require.NoError(t, err)
	assert.Equal(t, "15551230000", ciphertext)

	plaintext, err := enc.DecryptIfEnabled("15551230000")
	require.NoError(t, err)
	assert.Equal(t, "15551230000", plaintext)
}

func TestNewEncryptorRequiresSecret(t *testing.T) {
	t.Setenv("WMGATEWAY_ENABLE_ENCRYPTION", "true")
	t.Setenv("WMGATEWAY_ENCRYPTION_SECRET", "")

	_, err := NewEncryptor()
	assert.Error(t, err)
}

func TestNewEncryptorRejectsShortSecret(t *testing.T) {
	t.Setenv("WMGATEWAY_ENABLE_ENCRYPTION", "true")
	t.Setenv("WMGATEWAY_ENCRYPTION_SECRET", "too-short")

	_, err := NewEncryptor()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 32 characters")
}
