package pagination

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeMultiFieldToken(t *testing.T) {
	fields := []string{"2025-02-01", "0195f2a4-7c1e-7b33-9f61-2d4f0c8e1a10", "3"}

	token, err := EncodeMultiFieldToken(fields...)
	require.NoError(t, err)
	assert.NotEmpty(t, token, "Token should not be empty")
	assert.NotContains(t, token, "+", "Token must be safe in a query string")
	assert.NotContains(t, token, "=", "Token must not be padded")

	decoded, err := DecodeMultiFieldToken(token, 3)
	require.NoError(t, err)
	assert.Equal(t, fields, decoded)
}

func TestEncodeMultiFieldToken_RejectsSeparator(t *testing.T) {
	_, err := EncodeMultiFieldToken("a|b", "c")
	assert.Error(t, err)
}

func TestDecodeMultiFieldTokenError(t *testing.T) {
	// Invalid base64
	_, err := DecodeMultiFieldToken("this is not base64!", 3)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Contains(t, err.Error(), "base64 decode")

	// Wrong field count
	short := base64.RawURLEncoding.EncodeToString([]byte("2025-02-01|only-two"))
	_, err = DecodeMultiFieldToken(short, 3)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Contains(t, err.Error(), "expected 3 fields")

	// Tokens from the standard alphabet with padding are not accepted
	padded := base64.StdEncoding.EncodeToString([]byte("a|b|c"))
	_, err = DecodeMultiFieldToken(padded, 3)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
