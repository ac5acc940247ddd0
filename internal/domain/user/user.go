package user

import (
	"time"
)

type User struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Username    string    `gorm:"uniqueIndex;not null;column:username" json:"username"`
	Email       string    `gorm:"index;column:email" json:"email"`
	Password    string    `gorm:"not null;column:password" json:"-"`
	FirstName   string    `gorm:"column:first_name" json:"first_name"`
	LastName    string    `gorm:"column:last_name" json:"last_name"`
	Institution string    `gorm:"column:institution" json:"institution"`
	AgreedTerms bool      `gorm:"not null;column:agreed_terms" json:"agreed_terms"`
	Enabled     bool      `gorm:"not null;column:enabled" json:"enabled"`
	Roles       []Role    `gorm:"many2many:user_roles;" json:"roles"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (User) TableName() string { return "users" }

// RoleIDs is the materialised role set used by access checks.
func (u *User) RoleIDs() []uint {
	if u == nil {
		return nil
	}
	out := make([]uint, 0, len(u.Roles))
	for _, r := range u.Roles {
		out = append(out, r.ID)
	}
	return out
}
