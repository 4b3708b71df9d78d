package usecase

import (
	"context"
	"time"

	"github.com/allisson/accounts/internal/auth/domain"
	"github.com/allisson/accounts/internal/metrics"
	sessionDomain "github.com/allisson/accounts/internal/session/domain"
	userDomain "github.com/allisson/accounts/internal/user/domain"
)

const metricsDomain = "auth"

// metricsDecorator wraps a UseCase with business metrics recording.
type metricsDecorator struct {
	next            UseCase
	businessMetrics metrics.BusinessMetrics
}

// NewMetricsDecorator wraps the use case with operation and duration metrics.
func NewMetricsDecorator(next UseCase, businessMetrics metrics.BusinessMetrics) UseCase {
	return &metricsDecorator{
		next:            next,
		businessMetrics: businessMetrics,
	}
}

func (d *metricsDecorator) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	d.businessMetrics.RecordOperation(ctx, metricsDomain, operation, status)
	d.businessMetrics.RecordDuration(ctx, metricsDomain, operation, time.Since(start), status)
}

func (d *metricsDecorator) SignIn(
	ctx context.Context,
	input SignInInput,
) (*sessionDomain.SessionBody, error) {
	start := time.Now()
	body, err := d.next.SignIn(ctx, input)
	d.record(ctx, "sign_in", start, err)
	return body, err
}

func (d *metricsDecorator) Authenticate(ctx context.Context, token string) (domain.Decision, error) {
	start := time.Now()
	decision, err := d.next.Authenticate(ctx, token)
	d.record(ctx, "authenticate", start, err)
	return decision, err
}

func (d *metricsDecorator) RefreshSession(
	ctx context.Context,
	refreshToken string,
) (*sessionDomain.SessionBody, error) {
	start := time.Now()
	body, err := d.next.RefreshSession(ctx, refreshToken)
	d.record(ctx, "refresh_session", start, err)
	return body, err
}

func (d *metricsDecorator) SignOut(ctx context.Context, session *sessionDomain.Session) error {
	start := time.Now()
	err := d.next.SignOut(ctx, session)
	d.record(ctx, "sign_out", start, err)
	return err
}

func (d *metricsDecorator) ChangePassword(
	ctx context.Context,
	user *userDomain.User,
	input ChangePasswordInput,
) error {
	start := time.Now()
	err := d.next.ChangePassword(ctx, user, input)
	d.record(ctx, "change_password", start, err)
	return err
}
