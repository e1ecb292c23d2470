package crypto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	for _, plaintext := range []string{"", "CN-1234567", "a longer secret with spaces and unicode: مرحبا"} {
		encrypted, err := Encrypt(plaintext, "test-key")
		require.NoError(t, err)
		require.NotEqual(t, plaintext, encrypted)

		decrypted, err := Decrypt(encrypted, "test-key")
		require.NoError(t, err)
		require.Equal(t, plaintext, decrypted)
	}
}

func TestEncryptProducesFreshNonce(t *testing.T) {
	a, err := Encrypt("secret", "key")
	require.NoError(t, err)
	b, err := Encrypt("secret", "key")
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestDecryptWrongKeyFails(t *testing.T) {
	encrypted, err := Encrypt("secret", "right-key")
	require.NoError(t, err)

	_, err = Decrypt(encrypted, "wrong-key")
	require.Error(t, err)
}

func TestDecryptRejectsGarbage(t *testing.T) {
	_, err := Decrypt("not base64!!!", "key")
	require.Error(t, err)

	_, err = Decrypt("c2hvcnQ=", "key") // valid base64, too short for a nonce
	require.Error(t, err)
}

func TestEmptyKeyRejected(t *testing.T) {
	_, err := Encrypt("secret", "")
	require.Error(t, err)
	_, err = Decrypt("anything", "")
	require.Error(t, err)
}
