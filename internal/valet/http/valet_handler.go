// Package http provides the HTTP handler for valet token issuance.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	validation "github.com/jellydator/validation"

	authHTTP "github.com/allisson/accounts/internal/auth/http"
	apperrors "github.com/allisson/accounts/internal/errors"
	"github.com/allisson/accounts/internal/httputil"
	"github.com/allisson/accounts/internal/valet/domain"
	valetUseCase "github.com/allisson/accounts/internal/valet/usecase"
	customValidation "github.com/allisson/accounts/internal/validation"
)

// ValetHandler handles HTTP requests for valet token issuance.
type ValetHandler struct {
	valetUseCase valetUseCase.UseCase
	logger       *slog.Logger
}

// NewValetHandler creates a new valet handler with required dependencies.
func NewValetHandler(valetUseCase valetUseCase.UseCase, logger *slog.Logger) *ValetHandler {
	return &ValetHandler{
		valetUseCase: valetUseCase,
		logger:       logger,
	}
}

// ResourceRequest names a single resource the grant should cover.
type ResourceRequest struct {
	Path            string `json:"path"`
	UnencryptedSize *int64 `json:"unencrypted_size"`
}

// IssueTokenRequest contains the parameters for issuing a valet token.
type IssueTokenRequest struct {
	Operation string            `json:"operation"`
	Resources []ResourceRequest `json:"resources"`
}

// Validate checks if the issue token request is structurally valid. Semantic
// checks (known operation, write sizes) live in the use case so CLI callers
// get them too.
func (r *IssueTokenRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Operation,
			validation.Required,
			customValidation.NotBlank,
		),
		validation.Field(&r.Resources,
			validation.Required,
			validation.Each(validation.By(validateResource)),
		),
	)
}

func validateResource(value interface{}) error {
	resource, ok := value.(ResourceRequest)
	if !ok {
		return validation.NewError("validation_resource_type", "must be a resource")
	}

	return validation.ValidateStruct(&resource,
		validation.Field(&resource.Path,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 1024),
		),
	)
}

// IssueTokenResponse contains the signed grant returned to the client.
type IssueTokenResponse struct {
	Token     string        `json:"token"`
	Grant     *domain.Grant `json:"grant"`
	ExpiresAt time.Time     `json:"expires_at"`
}

// IssueHandler issues a signed, time-boxed valet token for the requested
// resources.
// POST /v1/valet-tokens - Requires an authenticated request.
// Returns 201 Created with the token, 403 with a typed reason on refusal.
func (h *ValetHandler) IssueHandler(c *gin.Context) {
	user, ok := authHTTP.GetUser(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	var req IssueTokenRequest

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

	resources := make([]domain.Resource, 0, len(req.Resources))
	for _, resource := range req.Resources {
		resources = append(resources, domain.Resource{
			Path:            resource.Path,
			UnencryptedSize: resource.UnencryptedSize,
		})
	}

	issued, err := h.valetUseCase.IssueToken(
		c.Request.Context(), user.ID, domain.Operation(req.Operation), resources)
	if err != nil {
		var denial *domain.DenialError
		if apperrors.As(err, &denial) {
			h.respondDenial(c, denial)
			return
		}
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, IssueTokenResponse{
		Token:     issued.Token,
		Grant:     issued.Grant,
		ExpiresAt: issued.ExpiresAt,
	})
}

// respondDenial writes the typed refusal. The code field carries the reason so
// clients can tell "buy a subscription" from "renew it" from "fix the request".
func (h *ValetHandler) respondDenial(c *gin.Context, denial *domain.DenialError) {
	h.logger.Debug("valet token denied", slog.String("reason", string(denial.Reason)))

	status := http.StatusForbidden
	if denial.Reason == domain.DenialInvalidParameters {
		status = http.StatusUnprocessableEntity
	}

	c.JSON(status, httputil.ErrorResponse{
		Error:   "valet_token_denied",
		Message: denial.Error(),
		Code:    string(denial.Reason),
	})
}
