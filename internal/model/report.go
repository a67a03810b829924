package model

import "time"

// Report flags a subject or comment to the admins of a board.
type Report struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ReporterID *uint     `json:"reporter_id,omitempty"`
	SubjectID  *uint     `gorm:"index" json:"subject_id,omitempty"`
	CommentID  *uint     `gorm:"index" json:"comment_id,omitempty"`
	BoardID    *uint     `gorm:"index" json:"board_id,omitempty"`
	Active     bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt  time.Time `json:"created_at"`
}
