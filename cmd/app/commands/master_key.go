package commands

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"

	cryptoDomain "github.com/allisson/accounts/internal/crypto/domain"
	cryptoService "github.com/allisson/accounts/internal/crypto/service"
)

// RunCreateMasterKey generates a cryptographically secure 32-byte master key
// for field encryption. Key material is zeroed from memory after encoding.
//
// With no KMS parameters the key is printed base64-encoded for direct use as
// MASTER_KEY. When kmsProvider and kmsKeyURI are both set, the key is wrapped
// with KMS first and MASTER_KEY holds the ciphertext, unwrapped at startup.
// For local development, use kmsProvider="localsecrets" with
// kmsKeyURI="base64key://...". Never use localsecrets in production.
func RunCreateMasterKey(ctx context.Context, w io.Writer, kmsProvider, kmsKeyURI string) error {
	if (kmsProvider == "") != (kmsKeyURI == "") {
		return fmt.Errorf("--kms-provider and --kms-key-uri must be set together")
	}

	// Generate a cryptographically secure 32-byte master key
	masterKey := make([]byte, cryptoDomain.KeySize)
	if _, err := rand.Read(masterKey); err != nil {
		return fmt.Errorf("failed to generate master key: %w", err)
	}
	defer cryptoDomain.Zero(masterKey)

	if kmsProvider == "" {
		fmt.Fprintln(w, "# Master Key Configuration (plain mode)")
		fmt.Fprintln(w, "# Copy this environment variable to your .env file or secrets manager")
		fmt.Fprintln(w)
		fmt.Fprintf(w, "MASTER_KEY=\"%s\"\n", base64.StdEncoding.EncodeToString(masterKey))
		return nil
	}

	// Create KMS service and open keeper
	kmsService := cryptoService.NewKMSService()
	keeper, err := kmsService.OpenKeeper(ctx, kmsKeyURI)
	if err != nil {
		return fmt.Errorf("failed to open KMS keeper: %w", err)
	}
	defer func() {
		if closeErr := keeper.Close(); closeErr != nil {
			fmt.Fprintf(w, "# Warning: failed to close KMS keeper: %v\n", closeErr)
		}
	}()

	// Encrypt master key with KMS
	ciphertext, err := keeper.Encrypt(ctx, masterKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt master key with KMS: %w", err)
	}

	fmt.Fprintln(w, "# Master Key Configuration (KMS mode)")
	fmt.Fprintln(w, "# Copy these environment variables to your .env file or secrets manager")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "KMS_PROVIDER=\"%s\"\n", kmsProvider)
	fmt.Fprintf(w, "KMS_KEY_URI=\"%s\"\n", kmsKeyURI)
	fmt.Fprintf(w, "MASTER_KEY=\"%s\"\n", base64.StdEncoding.EncodeToString(ciphertext))

	return nil
}
