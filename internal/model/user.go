package model

import "time"

// User is a forum member. Authentication lives outside this service.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"size:150;not null;uniqueIndex" json:"username"`
	CreatedAt time.Time `json:"created_at"`
}
