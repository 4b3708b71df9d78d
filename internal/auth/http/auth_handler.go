package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	validation "github.com/jellydator/validation"

	authUseCase "github.com/allisson/accounts/internal/auth/usecase"
	apperrors "github.com/allisson/accounts/internal/errors"
	"github.com/allisson/accounts/internal/httputil"
	sessionDomain "github.com/allisson/accounts/internal/session/domain"
	customValidation "github.com/allisson/accounts/internal/validation"
)

// AuthHandler handles HTTP requests for sign-in, session refresh, sign-out
// and password changes.
type AuthHandler struct {
	authUseCase authUseCase.UseCase
	logger      *slog.Logger
}

// NewAuthHandler creates a new authentication handler with required dependencies.
func NewAuthHandler(authUseCase authUseCase.UseCase, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authUseCase: authUseCase,
		logger:      logger,
	}
}

// SignInRequest contains the credentials for creating a session.
type SignInRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	APIVersion string `json:"api_version"`
	Ephemeral  bool   `json:"ephemeral"`
}

// Validate checks if the sign-in request is valid.
func (r *SignInRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Email,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(3, 255),
		),
		validation.Field(&r.Password,
			validation.Required,
		),
	)
}

// RefreshSessionRequest carries the refresh bearer token.
type RefreshSessionRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Validate checks if the refresh request is valid.
func (r *RefreshSessionRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.RefreshToken,
			validation.Required,
			customValidation.NotBlank,
		),
	)
}

// ChangePasswordRequest carries the current and replacement passwords.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// Validate checks if the change password request is valid.
func (r *ChangePasswordRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.CurrentPassword,
			validation.Required,
		),
		validation.Field(&r.NewPassword,
			validation.Required,
			validation.Length(8, 128),
		),
	)
}

// SessionBodyResponse represents the token pair issued to a client. The plain
// secrets appear here and nowhere else.
type SessionBodyResponse struct {
	AccessToken       string    `json:"access_token"`
	RefreshToken      string    `json:"refresh_token"`
	AccessExpiration  time.Time `json:"access_expiration"`
	RefreshExpiration time.Time `json:"refresh_expiration"`
	ReadonlyAccess    bool      `json:"readonly_access"`
}

// mapSessionBodyToResponse converts a domain session body to an API response.
func mapSessionBodyToResponse(body *sessionDomain.SessionBody) SessionBodyResponse {
	return SessionBodyResponse{
		AccessToken:       body.AccessToken,
		RefreshToken:      body.RefreshToken,
		AccessExpiration:  body.AccessExpiration,
		RefreshExpiration: body.RefreshExpiration,
		ReadonlyAccess:    body.ReadonlyAccess,
	}
}

// SignInHandler verifies credentials and issues a session token pair.
// POST /v1/sign-in - Unauthenticated, rate limited per source IP.
// Returns 201 Created with the token pair, 401 on bad credentials.
func (h *AuthHandler) SignInHandler(c *gin.Context) {
	var req SignInRequest

	// Parse and bind JSON
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	// Validate request
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	input := authUseCase.SignInInput{
		Email:      req.Email,
		Password:   req.Password,
		APIVersion: req.APIVersion,
		UserAgent:  c.GetHeader("User-Agent"),
		Ephemeral:  req.Ephemeral,
	}

	body, err := h.authUseCase.SignIn(c.Request.Context(), input)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, mapSessionBodyToResponse(body))
}

// RefreshSessionHandler rotates both session secrets.
// POST /v1/sessions/refresh - Unauthenticated; the refresh token is the proof.
// Returns 200 OK with the new token pair, 401 when the token can't be honored.
func (h *AuthHandler) RefreshSessionHandler(c *gin.Context) {
	var req RefreshSessionRequest

	// Parse and bind JSON
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	// Validate request
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	body, err := h.authUseCase.RefreshSession(c.Request.Context(), req.RefreshToken)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, mapSessionBodyToResponse(body))
}

// SignOutHandler revokes the current session and records a revocation marker.
// DELETE /v1/sessions - Requires a session-token authenticated request.
// Returns 204 No Content.
func (h *AuthHandler) SignOutHandler(c *gin.Context) {
	session, ok := GetSession(c.Request.Context())
	if !ok {
		// JWT-authenticated requests carry no session to sign out of.
		httputil.HandleErrorGin(c,
			apperrors.Wrap(apperrors.ErrInvalidInput, "sign-out requires a session token"),
			h.logger)
		return
	}

	if err := h.authUseCase.SignOut(c.Request.Context(), session); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}

// ChangePasswordHandler verifies the current password, stores the new hash and
// revokes every session the user holds.
// PUT /v1/users/password - Requires an authenticated request.
// Returns 204 No Content, 401 when the current password doesn't match.
func (h *AuthHandler) ChangePasswordHandler(c *gin.Context) {
	user, ok := GetUser(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	var req ChangePasswordRequest

	// Parse and bind JSON
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	// Validate request
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	input := authUseCase.ChangePasswordInput{
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	}

	if err := h.authUseCase.ChangePassword(c.Request.Context(), user, input); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}
