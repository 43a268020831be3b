package memory

import "diving-mate-backend/internal/domain"

var (
	_ domain.ProfileRepository      = (*ProfileRepo)(nil)
	_ domain.SavedItemRepository    = (*SavedItemRepo)(nil)
	_ domain.UserRepository         = (*UserRepo)(nil)
	_ domain.VerificationRepository = (*VerificationRepo)(nil)
)
