package model

import (
	"strings"
	"time"
)

// MaxBoardAdmins is the number of admins a board may have.
const MaxBoardAdmins = 3

// Board is a community that subjects are submitted to.
type Board struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:100;not null;uniqueIndex" json:"title"`
	Slug        string    `gorm:"size:100;index" json:"slug"`
	Description string    `gorm:"size:500" json:"description,omitempty"`
	Admins      []*User   `gorm:"many2many:board_admins;" json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// BoardSlugFor derives a lower-case, underscore separated slug from a board title.
func BoardSlugFor(title string) string {
	s := strings.ToLower(strings.Join(strings.Fields(title), "_"))
	if len(s) > 80 {
		s = s[:80]
	}
	return s
}

// BoardAdmin records a board moderator.
type BoardAdmin struct {
	BoardID   uint `gorm:"primaryKey"`
	UserID    uint `gorm:"primaryKey"`
	CreatedAt time.Time
}
