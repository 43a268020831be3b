package usecase

import (
	"context"
	"net/http"
	"strings"

	"diving-mate-backend/internal/domain"
	"diving-mate-backend/pkg/apperror"
	"diving-mate-backend/pkg/validation"
)

// requireSelf checks that the authenticated caller is userID
func requireSelf(ctx context.Context, userID string) error {
	ctxUserID, ok := ctx.Value(domain.KeyUserID).(string)
	if !ok || ctxUserID == "" {
		return apperror.Unauthorized("User not authenticated")
	}
	if ctxUserID != userID {
		return apperror.Forbidden("You can only access your own account")
	}
	return nil
}

func requireAdmin(ctx context.Context) error {
	role, ok := ctx.Value(domain.KeyUserRole).(string)
	if !ok || role != domain.RoleAdmin {
		return apperror.Forbidden("Admin access required")
	}
	return nil
}

// invalidInput converts validator errors into a 400 with readable messages
func invalidInput(err error) *apperror.AppError {
	msgs := validation.FormatValidationErrors(err)
	if len(msgs) == 0 {
		return apperror.BadRequest(err.Error())
	}
	return apperror.New(http.StatusBadRequest, strings.Join(msgs, "; "), err)
}
