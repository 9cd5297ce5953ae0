package model

import (
	"time"
)

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

type User struct {
	ID           int64     `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	Role         string    `db:"role" json:"role"`
	Activated    bool      `db:"activated" json:"activated"`
	PasswordHash *string   `db:"password_hash" json:"-"` // Nullable for users provisioned without login
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// ValidRole reports whether role is one of the roles the user table accepts
func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}
