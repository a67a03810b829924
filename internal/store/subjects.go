package store

import (
	"context"
	"fmt"

	"ditto/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// subjectsWithPoints selects subjects together with their star count.
func (s *Store) subjectsWithPoints(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Model(&model.Subject{}).
		Select("subjects.*, COUNT(subject_stars.user_id) AS points").
		Joins("LEFT JOIN subject_stars ON subject_stars.subject_id = subjects.id").
		Group("subjects.id")
}

// ActiveSubjects returns every active subject, newest first, with Points and
// Board filled.
func (s *Store) ActiveSubjects(ctx context.Context) ([]model.Subject, error) {
	var out []model.Subject
	err := s.subjectsWithPoints(ctx).
		Preload("Board").
		Where("subjects.active = ?", true).
		Order("subjects.created_at DESC").
		Order("subjects.id DESC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list active subjects: %w", err)
	}
	return out, nil
}

// SubjectByID returns a subject with Points filled.
func (s *Store) SubjectByID(ctx context.Context, id uint) (*model.Subject, error) {
	var sub model.Subject
	err := s.subjectsWithPoints(ctx).Where("subjects.id = ?", id).Take(&sub).Error
	if err != nil {
		return nil, notFound(err, fmt.Sprintf("subject %d", id))
	}
	return &sub, nil
}

// SaveRanks writes every subject's RankScore in a single transaction. Any
// failure rolls the whole batch back.
func (s *Store) SaveRanks(ctx context.Context, subjects []model.Subject) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, sub := range subjects {
			err := tx.Model(&model.Subject{}).
				Where("id = ?", sub.ID).
				UpdateColumn("rank_score", sub.RankScore).Error
			if err != nil {
				return fmt.Errorf("save rank of subject %d: %w", sub.ID, err)
			}
		}
		return nil
	})
}

// CreateSubject inserts a subject; ID and timestamps are filled in place.
func (s *Store) CreateSubject(ctx context.Context, sub *model.Subject) error {
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(sub).Error; err != nil {
		return fmt.Errorf("create subject: %w", err)
	}
	return nil
}

// DeactivateSubject hides a subject from listings.
func (s *Store) DeactivateSubject(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Model(&model.Subject{}).Where("id = ?", id).Update("active", false)
	if res.Error != nil {
		return fmt.Errorf("deactivate subject %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("subject %d: %w", id, ErrNotFound)
	}
	return nil
}

// AddStar records userID's star on subjectID. Starring twice is a no-op.
func (s *Store) AddStar(ctx context.Context, subjectID, userID uint) error {
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.SubjectStar{SubjectID: subjectID, UserID: userID}).Error
	if err != nil {
		return fmt.Errorf("star subject %d: %w", subjectID, err)
	}
	return nil
}

// RemoveStar deletes userID's star on subjectID if present.
func (s *Store) RemoveStar(ctx context.Context, subjectID, userID uint) error {
	err := s.db.WithContext(ctx).
		Where("subject_id = ? AND user_id = ?", subjectID, userID).
		Delete(&model.SubjectStar{}).Error
	if err != nil {
		return fmt.Errorf("unstar subject %d: %w", subjectID, err)
	}
	return nil
}

// HasStar reports whether userID starred subjectID.
func (s *Store) HasStar(ctx context.Context, subjectID, userID uint) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&model.SubjectStar{}).
		Where("subject_id = ? AND user_id = ?", subjectID, userID).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("check star on subject %d: %w", subjectID, err)
	}
	return n > 0, nil
}

// CountStars returns the number of distinct users who starred subjectID.
func (s *Store) CountStars(ctx context.Context, subjectID uint) (int, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&model.SubjectStar{}).
		Where("subject_id = ?", subjectID).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count stars of subject %d: %w", subjectID, err)
	}
	return int(n), nil
}

// AddMentions records the users mentioned in a subject.
func (s *Store) AddMentions(ctx context.Context, subjectID uint, users []model.User) error {
	if len(users) == 0 {
		return nil
	}
	rows := make([]model.SubjectMention, 0, len(users))
	for _, u := range users {
		rows = append(rows, model.SubjectMention{SubjectID: subjectID, UserID: u.ID})
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
	if err != nil {
		return fmt.Errorf("record mentions of subject %d: %w", subjectID, err)
	}
	return nil
}

// CreateComment inserts a comment.
func (s *Store) CreateComment(ctx context.Context, c *model.Comment) error {
	if err := s.db.WithContext(ctx).Create(c).Error; err != nil {
		return fmt.Errorf("create comment: %w", err)
	}
	return nil
}
