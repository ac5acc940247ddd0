package user

import "time"

// Names of the roles every installation carries.
const (
	RoleGuest = "guest"
	RoleAdmin = "admin"
)

type Role struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"uniqueIndex;not null;column:name" json:"name"`
	Description string    `gorm:"column:description" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Role) TableName() string { return "roles" }

func (r Role) IsBuiltin() bool { return r.Name == RoleGuest || r.Name == RoleAdmin }
