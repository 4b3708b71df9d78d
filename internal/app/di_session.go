package app

import (
	"fmt"

	sessionRepository "github.com/allisson/accounts/internal/session/repository"
	sessionService "github.com/allisson/accounts/internal/session/service"
	sessionUsecase "github.com/allisson/accounts/internal/session/usecase"
)

// SessionRepository returns the long-lived session repository for the
// configured database driver.
func (c *Container) SessionRepository() (sessionUsecase.SessionRepository, error) {
	c.sessionRepoInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["sessionRepo"] = fmt.Errorf("failed to get database for session repository: %w", err)
			return
		}
		switch c.config.DBDriver {
		case "mysql":
			c.sessionRepo = sessionRepository.NewMySQLSessionRepository(db)
		default:
			c.sessionRepo = sessionRepository.NewPostgreSQLSessionRepository(db)
		}
	})
	if storedErr, exists := c.initErrors["sessionRepo"]; exists {
		return nil, storedErr
	}
	return c.sessionRepo, nil
}

// EphemeralSessionRepository returns the ephemeral session repository for the
// configured database driver.
func (c *Container) EphemeralSessionRepository() (sessionUsecase.EphemeralSessionRepository, error) {
	c.ephemeralRepoInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["ephemeralRepo"] = fmt.Errorf("failed to get database for ephemeral session repository: %w", err)
			return
		}
		switch c.config.DBDriver {
		case "mysql":
			c.ephemeralRepo = sessionRepository.NewMySQLEphemeralSessionRepository(db)
		default:
			c.ephemeralRepo = sessionRepository.NewPostgreSQLEphemeralSessionRepository(db)
		}
	})
	if storedErr, exists := c.initErrors["ephemeralRepo"]; exists {
		return nil, storedErr
	}
	return c.ephemeralRepo, nil
}

// RevokedSessionRepository returns the revoked session repository for the
// configured database driver.
func (c *Container) RevokedSessionRepository() (sessionUsecase.RevokedSessionRepository, error) {
	c.revokedRepoInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["revokedRepo"] = fmt.Errorf("failed to get database for revoked session repository: %w", err)
			return
		}
		switch c.config.DBDriver {
		case "mysql":
			c.revokedRepo = sessionRepository.NewMySQLRevokedSessionRepository(db)
		default:
			c.revokedRepo = sessionRepository.NewPostgreSQLRevokedSessionRepository(db)
		}
	})
	if storedErr, exists := c.initErrors["revokedRepo"]; exists {
		return nil, storedErr
	}
	return c.revokedRepo, nil
}

// SessionManager returns the session manager use case.
func (c *Container) SessionManager() (sessionUsecase.SessionManager, error) {
	c.sessionManagerInit.Do(func() {
		txManager, err := c.TxManager()
		if err != nil {
			c.initErrors["sessionManager"] = err
			return
		}
		sessionRepo, err := c.SessionRepository()
		if err != nil {
			c.initErrors["sessionManager"] = err
			return
		}
		ephemeralRepo, err := c.EphemeralSessionRepository()
		if err != nil {
			c.initErrors["sessionManager"] = err
			return
		}
		revokedRepo, err := c.RevokedSessionRepository()
		if err != nil {
			c.initErrors["sessionManager"] = err
			return
		}
		c.sessionManager = sessionUsecase.NewSessionManager(
			txManager,
			sessionRepo,
			ephemeralRepo,
			revokedRepo,
			sessionService.NewTokenService(),
			sessionService.NewDeviceService(c.Logger()),
			c.config.AccessTokenExpiration,
			c.config.RefreshTokenExpiration,
			c.config.EphemeralSessionTTL,
			c.Logger(),
		)
	})
	if storedErr, exists := c.initErrors["sessionManager"]; exists {
		return nil, storedErr
	}
	return c.sessionManager, nil
}
