package pagination

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

const fieldSeparator = "|"

// ErrInvalidToken is returned for tokens this package did not produce.
var ErrInvalidToken = errors.New("invalid pagination token")

// EncodeMultiFieldToken creates an opaque, URL-safe token from the given fields.
// Fields must not contain the separator.
func EncodeMultiFieldToken(fields ...string) (string, error) {
	for i, f := range fields {
		if strings.Contains(f, fieldSeparator) {
			return "", fmt.Errorf("pagination token field %d contains %q", i, fieldSeparator)
		}
	}
	return base64.RawURLEncoding.EncodeToString([]byte(strings.Join(fields, fieldSeparator))), nil
}

// DecodeMultiFieldToken decodes a token into exactly want fields.
func DecodeMultiFieldToken(token string, want int) ([]string, error) {
	decodedBytes, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("%w (base64 decode): %v", ErrInvalidToken, err)
	}

	parts := strings.Split(string(decodedBytes), fieldSeparator)
	if len(parts) != want {
		return nil, fmt.Errorf("%w: expected %d fields, got %d", ErrInvalidToken, want, len(parts))
	}
	return parts, nil
}
