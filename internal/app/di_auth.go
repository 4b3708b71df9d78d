package app

import (
	authService "github.com/allisson/accounts/internal/auth/service"
	authUsecase "github.com/allisson/accounts/internal/auth/usecase"
)

// AuthUseCase returns the authentication use case wrapped with business
// metrics.
func (c *Container) AuthUseCase() (authUsecase.UseCase, error) {
	c.authUseCaseInit.Do(func() {
		sessionManager, err := c.SessionManager()
		if err != nil {
			c.initErrors["authUseCase"] = err
			return
		}
		revokedRepo, err := c.RevokedSessionRepository()
		if err != nil {
			c.initErrors["authUseCase"] = err
			return
		}
		userUseCase, err := c.UserUseCase()
		if err != nil {
			c.initErrors["authUseCase"] = err
			return
		}
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			c.initErrors["authUseCase"] = err
			return
		}

		jwtCodec := authService.NewJWTCodec(c.config.JWTSecret, c.config.LegacyJWTSecret)
		resolver := authUsecase.NewResolver(jwtCodec, sessionManager, revokedRepo, userUseCase, c.Logger())
		useCase := authUsecase.NewAuthUseCase(resolver, sessionManager, userUseCase, c.Logger())
		c.authUseCase = authUsecase.NewMetricsDecorator(useCase, businessMetrics)
	})
	if storedErr, exists := c.initErrors["authUseCase"]; exists {
		return nil, storedErr
	}
	return c.authUseCase, nil
}
