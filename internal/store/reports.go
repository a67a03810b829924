package store

import (
	"context"
	"fmt"

	"ditto/internal/model"
)

func (s *Store) CreateReport(ctx context.Context, r *model.Report) error {
	if err := s.db.WithContext(ctx).Create(r).Error; err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	return nil
}

// HasBoardReport reports whether an active report flags subjectID to boardID.
func (s *Store) HasBoardReport(ctx context.Context, subjectID, boardID uint) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&model.Report{}).
		Where("subject_id = ? AND board_id = ? AND active = ?", subjectID, boardID, true).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("check reports of subject %d: %w", subjectID, err)
	}
	return n > 0, nil
}
