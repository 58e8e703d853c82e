package domain

import (
	"time"

	"gorm.io/datatypes"
)

type UserRole string

const (
	RoleAdmin     UserRole = "admin"
	RoleHRManager UserRole = "hr_manager"
	RoleRecruiter UserRole = "recruiter"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleHRManager, RoleRecruiter:
		return true
	}
	return false
}

type SecuritySettings struct {
	EmailVerified       bool       `json:"email_verified"`
	LastLogin           *time.Time `json:"last_login,omitempty"`
	FailedLoginAttempts int        `json:"failed_login_attempts"`
	AccountLockedUntil  *time.Time `json:"account_locked_until,omitempty"`
}

type User struct {
	ID           string                               `gorm:"type:varchar(36);primaryKey" json:"id"`
	Email        string                               `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string                               `gorm:"type:varchar(100);not null" json:"-"`
	Role         UserRole                             `gorm:"type:varchar(20);default:'recruiter'" json:"role"`
	FirstName    string                               `gorm:"type:varchar(100)" json:"first_name"`
	LastName     string                               `gorm:"type:varchar(100)" json:"last_name"`
	Company      *string                              `gorm:"type:varchar(255)" json:"company,omitempty"`
	Security     datatypes.JSONType[SecuritySettings] `json:"security"`
	IsActive     bool                                 `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time                            `json:"created_at"`
	UpdatedAt    time.Time                            `json:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Actor identifies who triggered an operation and from where; it feeds the
// audit trail.
type Actor struct {
	UserID    string
	IP        string
	UserAgent string
}
