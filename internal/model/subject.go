package model

import (
	"strings"
	"time"
)

// Subject is a user-submitted post within a board.
//
// Points is the number of distinct users who starred the subject. It is read
// from the subject_stars join table and never written back. RankScore is
// derived from Points and the subject's age and is only written by the
// trending pipeline.
type Subject struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"size:150;not null;index" json:"title"`
	Slug      string    `gorm:"size:150;index" json:"slug"`
	Body      string    `gorm:"size:5000" json:"body,omitempty"`
	Photo     string    `json:"photo,omitempty"`
	AuthorID  uint      `gorm:"not null;index" json:"author_id"`
	Author    *User     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author,omitempty"`
	BoardID   uint      `gorm:"not null;index" json:"board_id"`
	Board     *Board    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"board,omitempty"`
	Stars     []*User   `gorm:"many2many:subject_stars;" json:"-"`
	Mentioned []*User   `gorm:"many2many:subject_mentions;" json:"-"`
	Points    int       `gorm:"->;-:migration" json:"points"`
	RankScore float64   `gorm:"not null;default:0" json:"rank_score"`
	Active    bool      `gorm:"not null;default:true;index" json:"active"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SlugFor derives the URL slug of a subject title.
func SlugFor(title string) string {
	return strings.ReplaceAll(strings.TrimSpace(title), " ", "-")
}

// SubjectStar records that a user starred a subject.
type SubjectStar struct {
	SubjectID uint `gorm:"primaryKey"`
	UserID    uint `gorm:"primaryKey"`
	CreatedAt time.Time
}

// SubjectMention records that a user was mentioned in a subject.
type SubjectMention struct {
	SubjectID uint `gorm:"primaryKey"`
	UserID    uint `gorm:"primaryKey"`
	CreatedAt time.Time
}
