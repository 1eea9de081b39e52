package services

import (
	"encoding/base64"
	"encoding/json"

	"github.com/shrawan7650/blog-user-client/internal/repo"
)

// encodeCursor serializes a keyset position into an opaque URL-safe token.
// Clients must treat the token as a black box and echo it back unchanged.
func encodeCursor(c repo.PostCursor) string {
	b, err := json.Marshal(c)
	if err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(b)
}

// decodeCursor reverses encodeCursor. Any malformed token yields
// ErrInvalidCursor rather than a partial position.
func decodeCursor(token string) (repo.PostCursor, error) {
	var c repo.PostCursor
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return c, ErrInvalidCursor
	}
	if err := json.Unmarshal(raw, &c); err != nil {
		return c, ErrInvalidCursor
	}
	return c, nil
}
