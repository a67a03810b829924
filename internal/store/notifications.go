package store

import (
	"context"
	"fmt"

	"ditto/internal/model"
)

func (s *Store) CreateNotification(ctx context.Context, n *model.Notification) error {
	if err := s.db.WithContext(ctx).Omit("Actor", "Subject").Create(n).Error; err != nil {
		return fmt.Errorf("create %s notification: %w", n.Type, err)
	}
	return nil
}

// NotificationsFor returns the notifications targeted at userID, newest
// first, leaving out the ones the user triggered themselves.
func (s *Store) NotificationsFor(ctx context.Context, userID uint) ([]model.Notification, error) {
	var out []model.Notification
	err := s.db.WithContext(ctx).
		Preload("Actor").
		Preload("Subject").
		Where("target_id = ? AND actor_id <> ?", userID, userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list notifications of user %d: %w", userID, err)
	}
	return out, nil
}

// MarkNotificationsRead flags every notification of userID as read.
func (s *Store) MarkNotificationsRead(ctx context.Context, userID uint) error {
	err := s.db.WithContext(ctx).Model(&model.Notification{}).
		Where("target_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error
	if err != nil {
		return fmt.Errorf("mark notifications read for user %d: %w", userID, err)
	}
	return nil
}
