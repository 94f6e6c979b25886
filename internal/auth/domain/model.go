// Package domain contains core types for the auth service.
package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleManager  Role = "MANAGER"
	RoleEmployee Role = "EMPLOYEE"
)

// User represents a plant staff account.
type User struct {
	ID                  snowflake.ID `json:"id" gorm:"primaryKey"`
	Email               string       `json:"email" gorm:"type:text;not null;uniqueIndex:ux_users_email"`
	Name                string       `json:"name" gorm:"type:text;not null"`
	Role                Role         `json:"role" gorm:"type:text;not null"`
	Active              bool         `json:"active" gorm:"not null"`
	PasswordHash        string       `json:"-" gorm:"type:text;not null"`
	LastPasswordChanged *time.Time   `json:"last_password_changed,omitempty"`
	CreatedAt           time.Time    `json:"created_at" gorm:"not null"`
	UpdatedAt           time.Time    `json:"updated_at" gorm:"not null"`
}

// TableName sets the database table name.
func (User) TableName() string { return "users" }

func ParseRole(value string) (Role, bool) {
	switch r := Role(strings.ToUpper(strings.TrimSpace(value))); r {
	case RoleAdmin, RoleManager, RoleEmployee:
		return r, true
	default:
		return "", false
	}
}
