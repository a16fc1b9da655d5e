package entity

import (
	"time"

	"github.com/google/uuid"
)

type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

// User is the parent account. The billing core only reads it to resolve
// the invoice recipient.
type User struct {
	Id        uuid.UUID
	Email     string
	FullName  string
	Phone     string
	Role      UserRole
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}
