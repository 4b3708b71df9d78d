// Package http provides HTTP handlers for session management.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	authHTTP "github.com/allisson/accounts/internal/auth/http"
	apperrors "github.com/allisson/accounts/internal/errors"
	"github.com/allisson/accounts/internal/httputil"
	sessionUseCase "github.com/allisson/accounts/internal/session/usecase"
)

// SessionHandler handles HTTP requests for listing the user's active sessions.
type SessionHandler struct {
	sessionManager sessionUseCase.SessionManager
	logger         *slog.Logger
}

// NewSessionHandler creates a new session handler with required dependencies.
func NewSessionHandler(sessionManager sessionUseCase.SessionManager, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		sessionManager: sessionManager,
		logger:         logger,
	}
}

// SessionResponse represents an active session in API responses. Token digests
// never leave the server.
type SessionResponse struct {
	ID         string    `json:"id"`
	Device     string    `json:"device"`
	APIVersion string    `json:"api_version"`
	Current    bool      `json:"current"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ListSessionsResponse wraps the session list.
type ListSessionsResponse struct {
	Sessions []SessionResponse `json:"sessions"`
}

// ListHandler returns the user's long-lived sessions with a human-readable
// device description for each.
// GET /v1/sessions - Requires an authenticated request.
// Returns 200 OK with the session list.
func (h *SessionHandler) ListHandler(c *gin.Context) {
	user, ok := authHTTP.GetUser(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	sessions, err := h.sessionManager.ListSessions(c.Request.Context(), user.ID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	currentSession, _ := authHTTP.GetSession(c.Request.Context())

	response := ListSessionsResponse{Sessions: make([]SessionResponse, 0, len(sessions))}
	for _, session := range sessions {
		response.Sessions = append(response.Sessions, SessionResponse{
			ID:         session.ID.String(),
			Device:     h.sessionManager.DescribeDevice(session),
			APIVersion: session.APIVersion,
			Current:    currentSession != nil && currentSession.ID == session.ID,
			CreatedAt:  session.CreatedAt,
			UpdatedAt:  session.UpdatedAt,
		})
	}

	c.JSON(http.StatusOK, response)
}
