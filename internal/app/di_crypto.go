package app

import (
	"context"
	"encoding/base64"
	"fmt"

	cryptoDomain "github.com/allisson/accounts/internal/crypto/domain"
	cryptoRepository "github.com/allisson/accounts/internal/crypto/repository"
	cryptoService "github.com/allisson/accounts/internal/crypto/service"
	cryptoUsecase "github.com/allisson/accounts/internal/crypto/usecase"
)

// KMSService returns the KMS service for opening keepers.
func (c *Container) KMSService() cryptoService.KMSService {
	c.kmsServiceInit.Do(func() {
		c.kmsService = cryptoService.NewKMSService()
	})
	return c.kmsService
}

// MasterKey returns the unwrapped master key. When a KMS key URI is
// configured, MASTER_KEY holds the KMS-encrypted key and is unwrapped through
// the keeper once at startup. Otherwise MASTER_KEY is the base64-encoded raw
// key.
func (c *Container) MasterKey() (*cryptoDomain.MasterKey, error) {
	c.masterKeyInit.Do(func() {
		if c.config.KMSKeyURI == "" {
			masterKey, err := cryptoDomain.LoadMasterKey(c.config.MasterKey)
			if err != nil {
				c.initErrors["masterKey"] = fmt.Errorf("failed to load master key: %w", err)
				return
			}
			c.masterKey = masterKey
			return
		}

		masterKey, err := c.unwrapMasterKey(context.Background())
		if err != nil {
			c.initErrors["masterKey"] = err
			return
		}
		c.masterKey = masterKey
	})
	if storedErr, exists := c.initErrors["masterKey"]; exists {
		return nil, storedErr
	}
	return c.masterKey, nil
}

// unwrapMasterKey decrypts the KMS-wrapped master key through the configured
// keeper.
func (c *Container) unwrapMasterKey(ctx context.Context) (*cryptoDomain.MasterKey, error) {
	wrapped, err := base64.StdEncoding.DecodeString(c.config.MasterKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decode wrapped master key: %w", err)
	}

	keeper, err := c.KMSService().OpenKeeper(ctx, c.config.KMSKeyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open KMS keeper: %w", err)
	}
	defer func() {
		if closeErr := keeper.Close(); closeErr != nil {
			c.Logger().Warn("failed to close KMS keeper", "error", closeErr)
		}
	}()

	raw, err := keeper.Decrypt(ctx, wrapped)
	if err != nil {
		return nil, fmt.Errorf("failed to unwrap master key via KMS: %w", err)
	}

	masterKey, err := cryptoDomain.NewMasterKey(raw)
	cryptoDomain.Zero(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to load unwrapped master key: %w", err)
	}
	return masterKey, nil
}

// AEADManager returns the AEAD cipher manager.
func (c *Container) AEADManager() cryptoService.AEADManager {
	c.aeadManagerInit.Do(func() {
		c.aeadManager = cryptoService.NewAEADManager()
	})
	return c.aeadManager
}

// PrincipalKeyRepository returns the per-user data key repository for the
// configured database driver.
func (c *Container) PrincipalKeyRepository() (cryptoUsecase.PrincipalKeyRepository, error) {
	c.principalKeyRepoInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["principalKeyRepo"] = fmt.Errorf("failed to get database for principal key repository: %w", err)
			return
		}
		switch c.config.DBDriver {
		case "mysql":
			c.principalKeyRepo = cryptoRepository.NewMySQLPrincipalKeyRepository(db)
		default:
			c.principalKeyRepo = cryptoRepository.NewPostgreSQLPrincipalKeyRepository(db)
		}
	})
	if storedErr, exists := c.initErrors["principalKeyRepo"]; exists {
		return nil, storedErr
	}
	return c.principalKeyRepo, nil
}

// VaultUseCase returns the field encryption vault.
func (c *Container) VaultUseCase() (cryptoUsecase.VaultUseCase, error) {
	c.vaultInit.Do(func() {
		masterKey, err := c.MasterKey()
		if err != nil {
			c.initErrors["vault"] = err
			return
		}
		principalKeyRepo, err := c.PrincipalKeyRepository()
		if err != nil {
			c.initErrors["vault"] = err
			return
		}
		c.vault = cryptoUsecase.NewVaultUseCase(
			masterKey,
			cryptoDomain.Algorithm(c.config.EncryptionAlgorithm),
			c.AEADManager(),
			principalKeyRepo,
		)
	})
	if storedErr, exists := c.initErrors["vault"]; exists {
		return nil, storedErr
	}
	return c.vault, nil
}
