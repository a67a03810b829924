package store

import (
	"context"
	"fmt"

	"ditto/internal/model"

	"gorm.io/gorm/clause"
)

func (s *Store) exists(ctx context.Context, m any, query string, args ...any) (bool, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(m).Where(query, args...).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// IsFollowing reports whether followerID follows followeeID.
func (s *Store) IsFollowing(ctx context.Context, followerID, followeeID uint) (bool, error) {
	ok, err := s.exists(ctx, &model.Follow{}, "follower_id = ? AND followee_id = ?", followerID, followeeID)
	if err != nil {
		return false, fmt.Errorf("check follow %d->%d: %w", followerID, followeeID, err)
	}
	return ok, nil
}

func (s *Store) AddFollow(ctx context.Context, followerID, followeeID uint) error {
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.Follow{FollowerID: followerID, FolloweeID: followeeID}).Error
	if err != nil {
		return fmt.Errorf("follow %d->%d: %w", followerID, followeeID, err)
	}
	return nil
}

func (s *Store) RemoveFollow(ctx context.Context, followerID, followeeID uint) error {
	err := s.db.WithContext(ctx).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Delete(&model.Follow{}).Error
	if err != nil {
		return fmt.Errorf("unfollow %d->%d: %w", followerID, followeeID, err)
	}
	return nil
}

// CountFollowers returns how many users follow userID.
func (s *Store) CountFollowers(ctx context.Context, userID uint) (int, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&model.Follow{}).Where("followee_id = ?", userID).Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count followers of user %d: %w", userID, err)
	}
	return int(n), nil
}

// HasMessageRequest reports whether senderID has a pending request to receiverID.
func (s *Store) HasMessageRequest(ctx context.Context, senderID, receiverID uint) (bool, error) {
	ok, err := s.exists(ctx, &model.MessageRequest{}, "sender_id = ? AND receiver_id = ?", senderID, receiverID)
	if err != nil {
		return false, fmt.Errorf("check message request %d->%d: %w", senderID, receiverID, err)
	}
	return ok, nil
}

func (s *Store) AddMessageRequest(ctx context.Context, senderID, receiverID uint) error {
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.MessageRequest{SenderID: senderID, ReceiverID: receiverID}).Error
	if err != nil {
		return fmt.Errorf("request messages %d->%d: %w", senderID, receiverID, err)
	}
	return nil
}

func (s *Store) RemoveMessageRequest(ctx context.Context, senderID, receiverID uint) error {
	err := s.db.WithContext(ctx).
		Where("sender_id = ? AND receiver_id = ?", senderID, receiverID).
		Delete(&model.MessageRequest{}).Error
	if err != nil {
		return fmt.Errorf("drop message request %d->%d: %w", senderID, receiverID, err)
	}
	return nil
}

// AddContacts makes a and b contacts of each other.
func (s *Store) AddContacts(ctx context.Context, a, b uint) error {
	rows := []model.Contact{{UserID: a, ContactID: b}, {UserID: b, ContactID: a}}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
	if err != nil {
		return fmt.Errorf("add contacts %d<->%d: %w", a, b, err)
	}
	return nil
}

// IsContact reports whether userID may message contactID.
func (s *Store) IsContact(ctx context.Context, userID, contactID uint) (bool, error) {
	ok, err := s.exists(ctx, &model.Contact{}, "user_id = ? AND contact_id = ?", userID, contactID)
	if err != nil {
		return false, fmt.Errorf("check contact %d->%d: %w", userID, contactID, err)
	}
	return ok, nil
}
