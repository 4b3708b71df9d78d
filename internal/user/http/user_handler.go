// Package http provides HTTP handlers for user-related operations.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	validation "github.com/jellydator/validation"

	"github.com/allisson/accounts/internal/httputil"
	"github.com/allisson/accounts/internal/user/domain"
	userUseCase "github.com/allisson/accounts/internal/user/usecase"
	customValidation "github.com/allisson/accounts/internal/validation"
)

// UserHandler handles user-related HTTP requests.
type UserHandler struct {
	userUseCase userUseCase.UseCase
	logger      *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userUseCase userUseCase.UseCase, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		userUseCase: userUseCase,
		logger:      logger,
	}
}

// RegisterUserRequest contains the parameters for registering an account.
type RegisterUserRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ProtocolVersion string `json:"protocol_version"`
}

// Validate checks if the register user request is valid. The protocol version
// is optional; the use case defaults it to the current one.
func (r *RegisterUserRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Email,
			validation.Required,
			customValidation.NotBlank,
			customValidation.Email,
			validation.Length(5, 255),
		),
		validation.Field(&r.Password,
			validation.Required,
			validation.Length(8, 128),
		),
		validation.Field(&r.ProtocolVersion,
			validation.In(
				domain.ProtocolVersionLegacy,
				domain.ProtocolVersionSessions,
			),
		),
	)
}

// UserResponse represents a user in API responses. The password hash never
// leaves the server.
type UserResponse struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	ProtocolVersion string    `json:"protocol_version"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// mapUserToResponse converts a domain user to an API response.
func mapUserToResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:              user.ID.String(),
		Email:           user.Email,
		ProtocolVersion: user.ProtocolVersion,
		CreatedAt:       user.CreatedAt,
		UpdatedAt:       user.UpdatedAt,
	}
}

// RegisterHandler registers a new account.
// POST /v1/users - Unauthenticated.
// Returns 201 Created with the account, 409 when the email is taken.
func (h *UserHandler) RegisterHandler(c *gin.Context) {
	var req RegisterUserRequest

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

	input := userUseCase.RegisterUserInput{
		Email:           req.Email,
		Password:        req.Password,
		ProtocolVersion: req.ProtocolVersion,
	}

	user, err := h.userUseCase.RegisterUser(c.Request.Context(), input)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, mapUserToResponse(user))
}
