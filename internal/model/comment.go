package model

import "time"

// Comment is a reply posted on a subject.
type Comment struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	SubjectID   uint      `gorm:"not null;index" json:"subject_id"`
	CommenterID uint      `gorm:"not null;index" json:"commenter_id"`
	Body        string    `gorm:"size:500;not null" json:"body"`
	Active      bool      `gorm:"not null;default:true" json:"active"`
	ReplyToID   *uint     `json:"reply_to_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
