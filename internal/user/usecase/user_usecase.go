// Package usecase implements the user business logic and orchestrates user domain operations.
package usecase

import (
	"context"
	"strings"

	validation "github.com/jellydator/validation"

	"github.com/allisson/go-pwdhash"
	"github.com/google/uuid"

	apperrors "github.com/allisson/accounts/internal/errors"
	"github.com/allisson/accounts/internal/user/domain"
	appValidation "github.com/allisson/accounts/internal/validation"
)

// RegisterUserInput contains the input data for user registration
type RegisterUserInput struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ProtocolVersion string `json:"protocol_version"`
}

// UseCase defines the interface for user business logic operations
type UseCase interface {
	RegisterUser(ctx context.Context, input RegisterUserInput) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	VerifyPassword(user *domain.User, password string) bool
	HashPassword(password string) (string, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, newPassword string) error
}

// UserRepository interface defines user repository operations
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, encryptedPassword string) error
}

// UserUseCase handles user-related business logic
type UserUseCase struct {
	userRepo       UserRepository
	passwordHasher *pwdhash.PasswordHasher
}

// NewUserUseCase creates a new UserUseCase
func NewUserUseCase(userRepo UserRepository) (UseCase, error) {
	// Interactive policy keeps hashing latency acceptable on the sign-in path
	hasher, err := pwdhash.New(pwdhash.WithPolicy(pwdhash.PolicyInteractive))
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to create password hasher")
	}

	return &UserUseCase{
		userRepo:       userRepo,
		passwordHasher: hasher,
	}, nil
}

// validateRegisterUserInput validates the registration input using jellydator/validation
func (uc *UserUseCase) validateRegisterUserInput(input RegisterUserInput) error {
	err := validation.ValidateStruct(&input,
		validation.Field(&input.Email,
			validation.Required.Error("email is required"),
			appValidation.NotBlank,
			appValidation.Email,
			validation.Length(5, 255).Error("email must be between 5 and 255 characters"),
		),
		validation.Field(&input.Password,
			validation.Required.Error("password is required"),
			validation.Length(8, 128).Error("password must be between 8 and 128 characters"),
		),
		validation.Field(&input.ProtocolVersion,
			validation.In(
				domain.ProtocolVersionLegacy,
				domain.ProtocolVersionSessions,
			).Error("unsupported protocol version"),
		),
	)
	return appValidation.WrapValidationError(err)
}

// RegisterUser registers a new account. The password is hashed with Argon2id
// before persistence; an empty protocol version defaults to the current one.
func (uc *UserUseCase) RegisterUser(ctx context.Context, input RegisterUserInput) (*domain.User, error) {
	if err := uc.validateRegisterUserInput(input); err != nil {
		return nil, err
	}

	hashedPassword, err := uc.passwordHasher.Hash([]byte(input.Password))
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to hash password")
	}

	protocolVersion := input.ProtocolVersion
	if protocolVersion == "" {
		protocolVersion = domain.ProtocolVersionSessions
	}

	user := &domain.User{
		ID:                uuid.Must(uuid.NewV7()),
		Email:             strings.TrimSpace(strings.ToLower(input.Email)),
		EncryptedPassword: hashedPassword,
		ProtocolVersion:   protocolVersion,
	}

	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// GetUserByEmail retrieves a user by email
func (uc *UserUseCase) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return uc.userRepo.GetByEmail(ctx, email)
}

// GetUserByID retrieves a user by ID
func (uc *UserUseCase) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return uc.userRepo.GetByID(ctx, id)
}

// VerifyPassword performs a constant-time check of a plaintext password
// against the account's stored Argon2id hash.
func (uc *UserUseCase) VerifyPassword(user *domain.User, password string) bool {
	ok, err := uc.passwordHasher.Verify([]byte(password), user.EncryptedPassword)
	if err != nil {
		return false
	}
	return ok
}

// HashPassword hashes a plaintext password for storage.
func (uc *UserUseCase) HashPassword(password string) (string, error) {
	hashed, err := uc.passwordHasher.Hash([]byte(password))
	if err != nil {
		return "", apperrors.Wrap(err, "failed to hash password")
	}
	return hashed, nil
}

// UpdatePassword validates, hashes and persists a new password for the account.
func (uc *UserUseCase) UpdatePassword(ctx context.Context, id uuid.UUID, newPassword string) error {
	err := validation.Validate(newPassword,
		validation.Required.Error("password is required"),
		validation.Length(8, 128).Error("password must be between 8 and 128 characters"),
	)
	if err := appValidation.WrapValidationError(err); err != nil {
		return err
	}

	hashed, err := uc.passwordHasher.Hash([]byte(newPassword))
	if err != nil {
		return apperrors.Wrap(err, "failed to hash password")
	}

	return uc.userRepo.UpdatePassword(ctx, id, hashed)
}
