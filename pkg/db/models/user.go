package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/peptracker/peptracker-backend/pkg/enums"
)

// User is the operator directory consumed by the auth collaborator. Tokens are
// minted elsewhere; this service only reads identity and role from them, and
// rows are written solely by the provisioning command.
type User struct {
	ID           uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email        string         `gorm:"column:email;not null;unique"`
	PasswordHash string         `gorm:"column:password_hash;not null"`
	Role         enums.UserRole `gorm:"column:role;type:user_role;not null;default:'user'"`
	IsActive     bool           `gorm:"column:is_active;not null;default:true"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
