package utils

import (
	"bytes"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey(t *testing.T, fill byte) {
	t.Helper()
	t.Setenv("ENCRYPTION_KEY", base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{fill}, 32)))
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	testKey(t, 0x2a)

	ciphertext, err := Encrypt("person@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, ciphertext)
	assert.NotContains(t, ciphertext, "person", "ciphertext must not leak the plaintext")

	plaintext, err := Decrypt(ciphertext)
	require.NoError(t, err)
	assert.Equal(t, "person@example.com", plaintext)
}

func TestEncryptUsesRandomNonce(t *testing.T) {
	testKey(t, 0x2a)

	a, err := Encrypt("same input")
	require.NoError(t, err)
	b, err := Encrypt("same input")
	require.NoError(t, err)

	assert.NotEqual(t, a, b, "equal plaintexts must not produce equal ciphertexts")
}

func TestEncryptEmptyPassesThrough(t *testing.T) {
	testKey(t, 0x2a)

	ciphertext, err := Encrypt("")
	require.NoError(t, err)
	assert.Empty(t, ciphertext)

	plaintext, err := Decrypt("")
	require.NoError(t, err)
	assert.Empty(t, plaintext)
}

func TestDecryptWrongKeyFails(t *testing.T) {
	testKey(t, 0x01)
	ciphertext, err := Encrypt("secret")
	require.NoError(t, err)

	testKey(t, 0x02)
	_, err = Decrypt(ciphertext)
	assert.Error(t, err)
}

func TestDecryptTamperedCiphertextFails(t *testing.T) {
	testKey(t, 0x2a)
	ciphertext, err := Encrypt("secret")
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0xff
	tampered := base64.StdEncoding.EncodeToString(raw)

	_, err = Decrypt(tampered)
	assert.Error(t, err, "GCM must reject modified ciphertext")
}

func TestGetEncryptionKeyValidation(t *testing.T) {
	t.Run("missing", func(t *testing.T) {
		t.Setenv("ENCRYPTION_KEY", "")
		_, err := GetEncryptionKey()
		assert.Error(t, err)
	})

	t.Run("not base64", func(t *testing.T) {
		t.Setenv("ENCRYPTION_KEY", "%%%not-base64%%%")
		_, err := GetEncryptionKey()
		assert.Error(t, err)
	})

	t.Run("wrong length", func(t *testing.T) {
		t.Setenv("ENCRYPTION_KEY", base64.StdEncoding.EncodeToString([]byte("short")))
		_, err := GetEncryptionKey()
		assert.Error(t, err)
	})
}
