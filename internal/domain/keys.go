package domain

type CtxKey string

const (
	KeyUserID    CtxKey = "UserID"
	KeyUserEmail CtxKey = "Email"
	KeyUserRole  CtxKey = "Role"
)

// Roles
const (
	RoleConsumer   = "consumer"
	RoleInstructor = "instructor"
	RoleResort     = "resort"
	RoleAdmin      = "admin"
)
