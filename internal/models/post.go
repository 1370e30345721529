// Package models contains data structures for the application's domain models.
package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Post types supported by the feed.
const (
	PostTypeDiscussion    = "discussion"
	PostTypeMarketing     = "marketing"
	PostTypeOpportunity   = "opportunity"
	PostTypeCollaboration = "collaboration"
)

// ValidPostType reports whether t is one of the supported post types.
func ValidPostType(t string) bool {
	switch t {
	case PostTypeDiscussion, PostTypeMarketing, PostTypeOpportunity, PostTypeCollaboration:
		return true
	}
	return false
}

// StringList is an ordered list of strings stored as a JSON column.
type StringList []string

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(value any) error {
	if value == nil {
		*l = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("unsupported type %T for StringList", value)
	}
}

// Contains reports whether the list contains s.
func (l StringList) Contains(s string) bool {
	for _, v := range l {
		if v == s {
			return true
		}
	}
	return false
}

// CollaborationDetails is the structured payload attached to collaboration posts.
type CollaborationDetails struct {
	Offers StringList `json:"offers,omitempty"`
}

// Value implements driver.Valuer.
func (d CollaborationDetails) Value() (driver.Value, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (d *CollaborationDetails) Scan(value any) error {
	if value == nil {
		*d = CollaborationDetails{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, d)
	case string:
		return json.Unmarshal([]byte(v), d)
	default:
		return fmt.Errorf("unsupported type %T for CollaborationDetails", value)
	}
}

// Post represents a feed entry authored by a user.
//
// LikesCount and CommentsCount are denormalized: they are persisted on the
// row and must always equal the number of Like/Comment rows referencing the
// post. The engagement repository updates them atomically in the same
// transaction as the like/comment mutation.
type Post struct {
	ID                   uint                  `gorm:"primaryKey" json:"id"`
	UserID               uint                  `gorm:"not null;index" json:"user_id"`
	User                 User                  `gorm:"foreignKey:UserID" json:"user"`
	Title                string                `json:"title,omitempty"`
	Content              string                `gorm:"type:text;not null" json:"content"`
	ImageURL             string                `json:"image_url,omitempty"`
	PostType             string                `gorm:"type:varchar(20);not null;default:'discussion';index" json:"post_type"`
	Tags                 StringList            `gorm:"type:text" json:"tags,omitempty"`
	IsCollaboration      bool                  `gorm:"default:false" json:"is_collaboration"`
	CollaborationDetails *CollaborationDetails `gorm:"type:text" json:"collaboration_details,omitempty"`
	LikesCount           int                   `gorm:"not null;default:0" json:"likes_count"`
	CommentsCount        int                   `gorm:"not null;default:0" json:"comments_count"`
	SharesCount          int                   `gorm:"not null;default:0" json:"shares_count"`
	// Liked indicates whether the requesting user liked this post (computed per viewer)
	Liked     bool           `gorm:"-" json:"liked"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
