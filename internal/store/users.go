package store

import (
	"context"
	"errors"
	"fmt"

	"ditto/internal/model"
)

// ErrTooManyAdmins is returned when a board already has MaxBoardAdmins admins.
var ErrTooManyAdmins = errors.New("store: board admin limit reached")

func (s *Store) CreateUser(ctx context.Context, u *model.User) error {
	if err := s.db.WithContext(ctx).Create(u).Error; err != nil {
		return fmt.Errorf("create user %s: %w", u.Username, err)
	}
	return nil
}

// UserByID looks up a user by primary key.
func (s *Store) UserByID(ctx context.Context, id uint) (*model.User, error) {
	var u model.User
	if err := s.db.WithContext(ctx).Take(&u, id).Error; err != nil {
		return nil, notFound(err, fmt.Sprintf("user %d", id))
	}
	return &u, nil
}

// UserByUsername looks up a user by exact username.
func (s *Store) UserByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).Take(&u).Error; err != nil {
		return nil, notFound(err, fmt.Sprintf("user %q", username))
	}
	return &u, nil
}

// CreateBoard inserts a board, deriving the slug from the title when empty.
func (s *Store) CreateBoard(ctx context.Context, b *model.Board) error {
	if b.Slug == "" {
		b.Slug = model.BoardSlugFor(b.Title)
	}
	if err := s.db.WithContext(ctx).Omit("Admins").Create(b).Error; err != nil {
		return fmt.Errorf("create board %s: %w", b.Title, err)
	}
	return nil
}

// AddBoardAdmin makes userID an admin of boardID, up to MaxBoardAdmins.
func (s *Store) AddBoardAdmin(ctx context.Context, boardID, userID uint) error {
	var n int64
	db := s.db.WithContext(ctx)
	if err := db.Model(&model.BoardAdmin{}).Where("board_id = ?", boardID).Count(&n).Error; err != nil {
		return fmt.Errorf("count admins of board %d: %w", boardID, err)
	}
	if n >= model.MaxBoardAdmins {
		return ErrTooManyAdmins
	}
	if err := db.Create(&model.BoardAdmin{BoardID: boardID, UserID: userID}).Error; err != nil {
		return fmt.Errorf("add admin to board %d: %w", boardID, err)
	}
	return nil
}

// IsBoardAdmin reports whether userID moderates boardID.
func (s *Store) IsBoardAdmin(ctx context.Context, boardID, userID uint) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&model.BoardAdmin{}).
		Where("board_id = ? AND user_id = ?", boardID, userID).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("check admin of board %d: %w", boardID, err)
	}
	return n > 0, nil
}
