// Package family groups users into households that share plans, pantry and
// shopping lists.
package family

import (
	"errors"
	"time"
)

var (
	ErrNotFound        = errors.New("family not found")
	ErrAlreadyMember   = errors.New("user already belongs to a family")
	ErrNotMember       = errors.New("user does not belong to a family")
	ErrInvalidInvite   = errors.New("invalid or expired invite")
	ErrEmptyFamilyName = errors.New("family name is required")
)

// Role of a member within a family.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleMember Role = "member"
)

// Family is a household.
type Family struct {
	ID             string    `json:"id" db:"id"`
	Name           string    `json:"name" db:"name"`
	OwnerID        string    `json:"owner_id" db:"owner_id"`
	TelegramChatID int64     `json:"telegram_chat_id,omitempty" db:"telegram_chat_id"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// Member links a user to a family.
type Member struct {
	FamilyID string    `json:"family_id" db:"family_id"`
	UserID   string    `json:"user_id" db:"user_id"`
	Role     Role      `json:"role" db:"role"`
	JoinedAt time.Time `json:"joined_at" db:"joined_at"`
}
