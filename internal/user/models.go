package user

import (
	"pharmaops/pkg/domain"
)

// User is an account known to the workflow. Vendors belong to a company;
// internal roles (admin, qa_reviewer, auditor) do not.
type User struct {
	ID           domain.UserID
	Email        string
	PasswordHash string
	Role         domain.Role
	CompanyID    *domain.CompanyID
}

// Invitation is the outcome of inviting a vendor: the created account plus
// the one-time password that was mailed to them.
type Invitation struct {
	User         User
	TempPassword string
}
