package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	authDomain "github.com/allisson/accounts/internal/auth/domain"
	authUseCase "github.com/allisson/accounts/internal/auth/usecase"
	apperrors "github.com/allisson/accounts/internal/errors"
	"github.com/allisson/accounts/internal/httputil"
)

// AuthenticationMiddleware authenticates requests via a Bearer token in the
// Authorization header.
//
// The middleware:
// 1. Extracts the Bearer token from the Authorization header (case-insensitive)
// 2. Resolves and evaluates it with authUseCase.Authenticate
// 3. Stores the authenticated user (and session, when present) in the context
//
// Denials are mapped to 401 with a machine-readable code so clients can pick
// the right recovery flow: "expired_token" means silent refresh,
// "revoked_session" means forced re-authentication, "invalid_auth" is generic.
// Dependency failures surface as 500, never as a denial.
func AuthenticationMiddleware(
	auth authUseCase.UseCase,
	logger *slog.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := extractBearerToken(c)
		if !ok {
			logger.Debug("authentication failed: missing or malformed authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		decision, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			httputil.HandleErrorGin(c, err, logger)
			c.Abort()
			return
		}

		if !decision.Success {
			logger.Debug("authentication denied",
				slog.String("failure_type", string(decision.FailureType)))
			respondAuthFailure(c, decision.FailureType)
			c.Abort()
			return
		}

		ctx := WithUser(c.Request.Context(), decision.User)
		if decision.Session != nil {
			ctx = WithSession(ctx, decision.Session)
		}
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// extractBearerToken parses the Authorization header, case-insensitive on the
// scheme.
func extractBearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}

	const bearerPrefix = "bearer "
	if len(authHeader) < len(bearerPrefix) ||
		!strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}

	token := authHeader[len(bearerPrefix):]
	if token == "" {
		return "", false
	}
	return token, true
}

// respondAuthFailure writes the typed denial. All three map to 401; the code
// tells the client whether refresh can recover the session.
func respondAuthFailure(c *gin.Context, failureType authDomain.FailureType) {
	c.JSON(http.StatusUnauthorized, httputil.ErrorResponse{
		Error:   "unauthorized",
		Message: "Authentication is required",
		Code:    string(failureType),
	})
}
