package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyCipherRoundTrip(t *testing.T) {
	cipher, err := NewKeyCipher("test-encryption-secret")
	require.NoError(t, err)

	sealed, err := cipher.Seal("sk-user-provider-key")
	require.NoError(t, err)
	require.NotEmpty(t, sealed)
	assert.NotContains(t, sealed, "sk-user-provider-key")

	opened, err := cipher.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "sk-user-provider-key", opened)
}

func TestKeyCipherSealIsNonDeterministic(t *testing.T) {
	cipher, err := NewKeyCipher("test-encryption-secret")
	require.NoError(t, err)

	first, err := cipher.Seal("sk-key")
	require.NoError(t, err)
	second, err := cipher.Seal("sk-key")
	require.NoError(t, err)
	// Fresh nonce per seal.
	assert.NotEqual(t, first, second)
}

func TestKeyCipherRejectsEmptyInputs(t *testing.T) {
	_, err := NewKeyCipher("")
	assert.Error(t, err)

	cipher, err := NewKeyCipher("secret")
	require.NoError(t, err)
	_, err = cipher.Seal("")
	assert.Error(t, err)
}

func TestKeyCipherOpenFailures(t *testing.T) {
	cipher, err := NewKeyCipher("secret-one")
	require.NoError(t, err)

	// Not base64.
	_, err = cipher.Open("%%%not-base64%%%")
	assert.ErrorIs(t, err, ErrDecryptFailed)

	// Too short to carry a nonce.
	_, err = cipher.Open("YWJj")
	assert.ErrorIs(t, err, ErrDecryptFailed)

	// Sealed under a different server secret.
	other, err := NewKeyCipher("secret-two")
	require.NoError(t, err)
	sealed, err := other.Seal("sk-key")
	require.NoError(t, err)
	_, err = cipher.Open(sealed)
	assert.ErrorIs(t, err, ErrDecryptFailed)

	// Tampered payload.
	sealed, err = cipher.Seal("sk-key")
	require.NoError(t, err)
	tampered := "A" + sealed[1:]
	if tampered == sealed {
		tampered = "B" + sealed[1:]
	}
	_, err = cipher.Open(tampered)
	assert.ErrorIs(t, err, ErrDecryptFailed)
}
