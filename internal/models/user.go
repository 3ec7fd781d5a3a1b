// Package models contains data structures for the application's domain models.
package models

import (
	"strings"
	"time"
)

// User represents an account that can author posts, comment and follow authors.
type User struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Username   string    `gorm:"size:150;uniqueIndex;not null" json:"username"`
	FirstName  string    `gorm:"size:150" json:"first_name"`
	LastName   string    `gorm:"size:150" json:"last_name"`
	Email      string    `gorm:"size:254" json:"email"`
	Password   string    `gorm:"not null" json:"-"`
	IsStaff    bool      `gorm:"default:false" json:"is_staff"`
	DateJoined time.Time `gorm:"autoCreateTime" json:"date_joined"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// FullName returns "first last", or the username when both are blank.
func (u User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

func (u User) String() string {
	return u.Username
}
