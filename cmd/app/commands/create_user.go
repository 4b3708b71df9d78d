package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	userDomain "github.com/allisson/accounts/internal/user/domain"
	userUsecase "github.com/allisson/accounts/internal/user/usecase"
)

// UserRegistrar registers new user accounts.
type UserRegistrar interface {
	RegisterUser(ctx context.Context, input userUsecase.RegisterUserInput) (*userDomain.User, error)
}

// RunCreateUser registers a new user account with the given credentials.
// Supports both text and JSON output formats. The password is hashed by the
// use case and never printed.
//
// Requirements: Database must be migrated and accessible.
func RunCreateUser(
	ctx context.Context,
	users UserRegistrar,
	logger *slog.Logger,
	w io.Writer,
	email string,
	password string,
	protocolVersion string,
	format string,
) error {
	logger.Info("creating user", slog.String("email", email))

	user, err := users.RegisterUser(ctx, userUsecase.RegisterUserInput{
		Email:           email,
		Password:        password,
		ProtocolVersion: protocolVersion,
	})
	if err != nil {
		return fmt.Errorf("failed to register user: %w", err)
	}

	if format == "json" {
		outputCreateUserJSON(w, user)
	} else {
		outputCreateUserText(w, user)
	}

	logger.Info("user created", slog.String("user_id", user.ID.String()))

	return nil
}

// outputCreateUserText outputs the result in human-readable text format.
func outputCreateUserText(w io.Writer, user *userDomain.User) {
	fmt.Fprintln(w, "User created successfully")
	fmt.Fprintf(w, "  ID:               %s\n", user.ID)
	fmt.Fprintf(w, "  Email:            %s\n", user.Email)
	fmt.Fprintf(w, "  Protocol version: %s\n", user.ProtocolVersion)
}

// outputCreateUserJSON outputs the result in JSON format for machine consumption.
func outputCreateUserJSON(w io.Writer, user *userDomain.User) {
	result := map[string]interface{}{
		"id":               user.ID.String(),
		"email":            user.Email,
		"protocol_version": user.ProtocolVersion,
		"created_at":       user.CreatedAt,
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Fprintf(w, "failed to marshal JSON: %v\n", err)
		return
	}

	fmt.Fprintln(w, string(jsonBytes))
}
