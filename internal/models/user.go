// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// DefaultBusinessScore is assigned to every newly registered user.
const DefaultBusinessScore = 50

// User represents a small-business owner in the ShareSmallBiz application.
// The password hash is never serialized to clients; json:"-" makes that a
// structural guarantee for every response path, nested authors included.
type User struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Username      string         `gorm:"unique;not null" json:"username"`
	Email         string         `gorm:"unique;not null" json:"email"`
	Password      string         `gorm:"not null" json:"-"`
	FullName      string         `json:"full_name"`
	BusinessName  string         `json:"business_name,omitempty"`
	BusinessType  string         `json:"business_type,omitempty"`
	Location      string         `json:"location,omitempty"`
	Avatar        string         `json:"avatar,omitempty"`
	Bio           string         `json:"bio,omitempty"`
	Website       string         `json:"website,omitempty"`
	Connections   int            `gorm:"default:0" json:"connections"`
	BusinessScore int            `gorm:"default:50" json:"business_score"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
	Posts         []Post         `gorm:"foreignKey:UserID" json:"posts,omitempty"`
}
