package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"diving-mate-backend/internal/domain"
	"diving-mate-backend/pkg/apperror"

	"github.com/go-playground/validator/v10"
)

type authUsecase struct {
	userRepo domain.UserRepository
	validate *validator.Validate
}

func NewAuthUsecase(userRepo domain.UserRepository, validate *validator.Validate) domain.AuthUsecase {
	return &authUsecase{userRepo: userRepo, validate: validate}
}

// EnsureUserExists creates the local record for a token subject on first sight.
// The stored role is authoritative; the only role taken from the token is
// admin, which comes from provider-controlled app metadata.
func (u *authUsecase) EnsureUserExists(ctx context.Context, user *domain.User) error {
	tokenAdmin := user.Role == domain.RoleAdmin

	existing, err := u.userRepo.GetByID(ctx, user.ID)
	if err == nil {
		changed := false
		if user.Email != "" && existing.Email != user.Email {
			existing.Email = user.Email
			changed = true
		}
		if tokenAdmin && existing.Role != domain.RoleAdmin {
			existing.Role = domain.RoleAdmin
			changed = true
		}
		if changed {
			existing.UpdatedAt = time.Now()
			if err := u.userRepo.Update(ctx, existing); err != nil {
				return apperror.Internal(err)
			}
		}
		user.Role = existing.Role
		return nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return apperror.Internal(err)
	}

	if !tokenAdmin {
		user.Role = domain.RoleConsumer
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt

	if err := u.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil // Created concurrently by another request
		}
		return apperror.Internal(err)
	}
	return nil
}

func (u *authUsecase) GetCurrentUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := u.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("User not found")
		}
		return nil, apperror.Internal(err)
	}
	return user, nil
}

func (u *authUsecase) UpdateAccount(ctx context.Context, userID string, update *domain.AccountUpdate) (*domain.User, error) {
	if err := requireSelf(ctx, userID); err != nil {
		return nil, err
	}
	if err := u.validate.Struct(update); err != nil {
		return nil, invalidInput(err)
	}

	user, err := u.GetCurrentUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if update.DisplayName != nil {
		name := strings.TrimSpace(*update.DisplayName)
		user.DisplayName = &name
	}
	if update.Phone != nil {
		phone := strings.TrimSpace(*update.Phone)
		user.Phone = &phone
	}
	user.UpdatedAt = time.Now()

	if err := u.userRepo.Update(ctx, user); err != nil {
		return nil, apperror.Internal(err)
	}
	return user, nil
}
