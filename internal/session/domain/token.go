package domain

import (
	"strings"

	"github.com/google/uuid"
)

// TokenProtocolVersion is the fixed leading field of every session bearer token.
const TokenProtocolVersion = "1"

// BearerToken is a parsed session bearer string "1:{sessionID}:{secret}".
type BearerToken struct {
	SessionID uuid.UUID
	Secret    string
}

// ParseBearerToken splits a bearer string on its first two colons only, so a
// secret containing colons survives intact. Anything that is not a three-field
// triple with the current protocol version and a UUID session id is rejected.
func ParseBearerToken(token string) (BearerToken, error) {
	parts := strings.SplitN(token, ":", 3)
	if len(parts) != 3 {
		return BearerToken{}, ErrInvalidTokenFormat
	}
	if parts[0] != TokenProtocolVersion {
		return BearerToken{}, ErrInvalidTokenFormat
	}
	sessionID, err := uuid.Parse(parts[1])
	if err != nil {
		return BearerToken{}, ErrInvalidTokenFormat
	}
	if parts[2] == "" {
		return BearerToken{}, ErrInvalidTokenFormat
	}
	return BearerToken{SessionID: sessionID, Secret: parts[2]}, nil
}

// FormatBearerToken builds the wire form of a session bearer token.
func FormatBearerToken(sessionID uuid.UUID, secret string) string {
	return TokenProtocolVersion + ":" + sessionID.String() + ":" + secret
}
