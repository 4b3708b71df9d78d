package domain

import (
	"fmt"

	apperrors "github.com/allisson/accounts/internal/errors"
)

// Domain errors for authentication operations.
var (
	// ErrInvalidCredentials is the generic denial for sign-in and token
	// operations. Wrong password and unknown email collapse to this same error
	// so the response never reveals which sub-check failed.
	ErrInvalidCredentials = fmt.Errorf("invalid credentials: %w", apperrors.ErrUnauthorized)

	// ErrTokenDecode indicates a token failed signature or claim validation
	// under both the primary and the legacy secret.
	ErrTokenDecode = fmt.Errorf("token decode failed: %w", apperrors.ErrUnauthorized)
)
