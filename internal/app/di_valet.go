package app

import (
	"fmt"

	settingsRepository "github.com/allisson/accounts/internal/settings/repository"
	settingsUsecase "github.com/allisson/accounts/internal/settings/usecase"
	subscriptionRepository "github.com/allisson/accounts/internal/subscription/repository"
	subscriptionUsecase "github.com/allisson/accounts/internal/subscription/usecase"
	valetService "github.com/allisson/accounts/internal/valet/service"
	valetUsecase "github.com/allisson/accounts/internal/valet/usecase"
)

// SubscriptionRepository returns the subscription repository for the
// configured database driver.
func (c *Container) SubscriptionRepository() (subscriptionUsecase.SubscriptionRepository, error) {
	c.subscriptionRepoInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["subscriptionRepo"] = fmt.Errorf("failed to get database for subscription repository: %w", err)
			return
		}
		switch c.config.DBDriver {
		case "mysql":
			c.subscriptionRepo = subscriptionRepository.NewMySQLSubscriptionRepository(db)
		default:
			c.subscriptionRepo = subscriptionRepository.NewPostgreSQLSubscriptionRepository(db)
		}
	})
	if storedErr, exists := c.initErrors["subscriptionRepo"]; exists {
		return nil, storedErr
	}
	return c.subscriptionRepo, nil
}

// SettingRepository returns the setting repository for the configured
// database driver.
func (c *Container) SettingRepository() (settingsUsecase.SettingRepository, error) {
	c.settingRepoInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["settingRepo"] = fmt.Errorf("failed to get database for setting repository: %w", err)
			return
		}
		switch c.config.DBDriver {
		case "mysql":
			c.settingRepo = settingsRepository.NewMySQLSettingRepository(db)
		default:
			c.settingRepo = settingsRepository.NewPostgreSQLSettingRepository(db)
		}
	})
	if storedErr, exists := c.initErrors["settingRepo"]; exists {
		return nil, storedErr
	}
	return c.settingRepo, nil
}

// SubscriptionUseCase returns the subscription use case.
func (c *Container) SubscriptionUseCase() (subscriptionUsecase.UseCase, error) {
	c.subscriptionUseCaseInit.Do(func() {
		subscriptionRepo, err := c.SubscriptionRepository()
		if err != nil {
			c.initErrors["subscriptionUseCase"] = err
			return
		}
		c.subscriptionUseCase = subscriptionUsecase.NewSubscriptionUseCase(subscriptionRepo)
	})
	if storedErr, exists := c.initErrors["subscriptionUseCase"]; exists {
		return nil, storedErr
	}
	return c.subscriptionUseCase, nil
}

// SettingsUseCase returns the settings use case backed by the vault.
func (c *Container) SettingsUseCase() (settingsUsecase.UseCase, error) {
	c.settingsUseCaseInit.Do(func() {
		settingRepo, err := c.SettingRepository()
		if err != nil {
			c.initErrors["settingsUseCase"] = err
			return
		}
		vault, err := c.VaultUseCase()
		if err != nil {
			c.initErrors["settingsUseCase"] = err
			return
		}
		c.settingsUseCase = settingsUsecase.NewSettingsUseCase(settingRepo, vault)
	})
	if storedErr, exists := c.initErrors["settingsUseCase"]; exists {
		return nil, storedErr
	}
	return c.settingsUseCase, nil
}

// ValetUseCase returns the valet token use case.
func (c *Container) ValetUseCase() (valetUsecase.UseCase, error) {
	c.valetUseCaseInit.Do(func() {
		subscriptions, err := c.SubscriptionUseCase()
		if err != nil {
			c.initErrors["valetUseCase"] = err
			return
		}
		settings, err := c.SettingsUseCase()
		if err != nil {
			c.initErrors["valetUseCase"] = err
			return
		}
		c.valetUseCase = valetUsecase.NewValetUseCase(
			subscriptions,
			settings,
			valetService.NewGrantCodec(c.config.ValetTokenSecret, c.config.ValetTokenTTL),
			c.config.DefaultUploadBytesLimit,
			c.Logger(),
		)
	})
	if storedErr, exists := c.initErrors["valetUseCase"]; exists {
		return nil, storedErr
	}
	return c.valetUseCase, nil
}
