package usecase

import (
	"crypto/subtle"
	"time"

	"github.com/allisson/accounts/internal/auth/domain"
)

// Evaluate turns a resolved authentication method into the final allow/deny
// verdict. Rules run in order and the first one that fires wins.
func Evaluate(method domain.Method) domain.Decision {
	now := time.Now().UTC()

	if method.Type == domain.MethodNone {
		return domain.Deny(domain.FailureInvalidAuth)
	}

	// Terminal: a revoked session cannot be resurrected.
	if method.Type == domain.MethodRevoked {
		return domain.Deny(domain.FailureRevokedSession)
	}

	if method.User == nil {
		return domain.Deny(domain.FailureInvalidAuth)
	}

	switch method.Type {
	case domain.MethodJWT:
		return evaluateJWT(method)
	case domain.MethodSessionToken:
		return evaluateSessionToken(method, now)
	}

	return domain.Deny(domain.FailureInvalidAuth)
}

// evaluateJWT accepts a JWT only for accounts that never adopted sessions and
// only when the pw_hash claim still matches the current password. The match
// binds outstanding tokens to the password: changing it invalidates them all.
func evaluateJWT(method domain.Method) domain.Decision {
	if method.User.SupportsSessions() {
		return domain.Deny(domain.FailureInvalidAuth)
	}

	if method.Claims == nil || method.Claims.PwHash == "" {
		return domain.Deny(domain.FailureInvalidAuth)
	}

	expected := domain.PasswordDigest(method.User.EncryptedPassword)
	if subtle.ConstantTimeCompare([]byte(method.Claims.PwHash), []byte(expected)) != 1 {
		return domain.Deny(domain.FailureInvalidAuth)
	}

	return domain.Allow(method.User, nil)
}

// evaluateSessionToken distinguishes a fully dead session from one whose
// access window merely lapsed. The latter is recoverable by a silent refresh.
func evaluateSessionToken(method domain.Method, now time.Time) domain.Decision {
	if method.Session == nil {
		return domain.Deny(domain.FailureInvalidAuth)
	}

	if method.Session.RefreshExpired(now) {
		return domain.Deny(domain.FailureInvalidAuth)
	}
	if method.Session.AccessExpired(now) {
		return domain.Deny(domain.FailureExpiredToken)
	}

	return domain.Allow(method.User, method.Session)
}
