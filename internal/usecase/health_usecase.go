package usecase

import (
	"context"
	"time"
)

// HealthCheck pings one dependency
type HealthCheck func(ctx context.Context) error

type HealthUsecase interface {
	// Check reports "ok" or the error per dependency, and whether all passed
	Check(ctx context.Context) (map[string]string, bool)
}

type healthUsecase struct {
	checks map[string]HealthCheck
}

func NewHealthUsecase(checks map[string]HealthCheck) HealthUsecase {
	return &healthUsecase{checks: checks}
}

func (u *healthUsecase) Check(ctx context.Context) (map[string]string, bool) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	status := map[string]string{"api": "ok"}
	healthy := true
	for name, check := range u.checks {
		if err := check(ctx); err != nil {
			status[name] = err.Error()
			healthy = false
			continue
		}
		status[name] = "ok"
	}
	return status, healthy
}
