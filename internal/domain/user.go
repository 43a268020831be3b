package domain

import (
	"context"
	"time"
)

type User struct {
	ID          string    `json:"id"` // Identity provider subject
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	DisplayName *string   `json:"display_name,omitempty"`
	Phone       *string   `json:"phone,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// AccountUpdate carries the user-editable account fields
type AccountUpdate struct {
	DisplayName *string `json:"display_name" validate:"omitempty,max=80,valid_name,no_emoji"`
	Phone       *string `json:"phone" validate:"omitempty,valid_phone"`
}

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	Update(ctx context.Context, user *User) error
}

type AuthUsecase interface {
	EnsureUserExists(ctx context.Context, user *User) error
	GetCurrentUser(ctx context.Context, id string) (*User, error)
	UpdateAccount(ctx context.Context, userID string, update *AccountUpdate) (*User, error)
}
