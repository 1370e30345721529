package models

import "time"

// Like records a user's like on a post. The (PostID, UserID) pair is the
// natural key; a pair is either absent or present, never duplicated.
type Like struct {
	PostID    uint      `gorm:"primaryKey;autoIncrement:false" json:"post_id"`
	UserID    uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
