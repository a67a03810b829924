// Package forum implements the write side of the forum: subjects, comments,
// stars, moderation and notifications.
package forum

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"ditto/internal/media"
	"ditto/internal/mention"
	"ditto/internal/model"
	"ditto/internal/store"
)

var (
	// ErrInvalidInput wraps validation failures.
	ErrInvalidInput = errors.New("forum: invalid input")
	// ErrForbidden is returned when the acting user lacks the required role.
	ErrForbidden = errors.New("forum: forbidden")
	// ErrNotReported is returned when moderating a subject nobody reported.
	ErrNotReported = errors.New("forum: subject has no report on its board")
	// ErrNoRequest is returned when accepting a message request that was never sent.
	ErrNoRequest = errors.New("forum: no pending message request")
)

// Field limits.
const (
	MaxTitleLen   = 150
	MaxBodyLen    = 5000
	MaxCommentLen = 500
)

// Repository is the storage the forum writes through. *store.Store satisfies it.
type Repository interface {
	mention.UserFinder
	UserByID(ctx context.Context, id uint) (*model.User, error)

	CreateSubject(ctx context.Context, sub *model.Subject) error
	SubjectByID(ctx context.Context, id uint) (*model.Subject, error)
	DeactivateSubject(ctx context.Context, id uint) error
	AddStar(ctx context.Context, subjectID, userID uint) error
	RemoveStar(ctx context.Context, subjectID, userID uint) error
	HasStar(ctx context.Context, subjectID, userID uint) (bool, error)
	CountStars(ctx context.Context, subjectID uint) (int, error)
	AddMentions(ctx context.Context, subjectID uint, users []model.User) error
	CreateComment(ctx context.Context, c *model.Comment) error

	CreateNotification(ctx context.Context, n *model.Notification) error
	NotificationsFor(ctx context.Context, userID uint) ([]model.Notification, error)
	MarkNotificationsRead(ctx context.Context, userID uint) error

	CreateReport(ctx context.Context, r *model.Report) error
	HasBoardReport(ctx context.Context, subjectID, boardID uint) (bool, error)
	IsBoardAdmin(ctx context.Context, boardID, userID uint) (bool, error)

	IsFollowing(ctx context.Context, followerID, followeeID uint) (bool, error)
	AddFollow(ctx context.Context, followerID, followeeID uint) error
	RemoveFollow(ctx context.Context, followerID, followeeID uint) error
	CountFollowers(ctx context.Context, userID uint) (int, error)
	HasMessageRequest(ctx context.Context, senderID, receiverID uint) (bool, error)
	AddMessageRequest(ctx context.Context, senderID, receiverID uint) error
	RemoveMessageRequest(ctx context.Context, senderID, receiverID uint) error
	AddContacts(ctx context.Context, a, b uint) error
}

// PhotoCompressor re-encodes an uploaded photo and returns the path to use.
type PhotoCompressor interface {
	Compress(path string) (string, error)
}

// Service applies forum rules on top of a Repository. Every operation that
// writes more than one record does so in a single transaction.
type Service struct {
	repo   Repository
	inTx   func(ctx context.Context, fn func(r Repository) error) error
	photos PhotoCompressor
}

// NewService returns a Service. photos may be nil to store photos as uploaded.
func NewService(st *store.Store, photos PhotoCompressor) *Service {
	return &Service{
		repo: st,
		inTx: func(ctx context.Context, fn func(r Repository) error) error {
			return st.Transaction(ctx, func(tx *store.Store) error { return fn(tx) })
		},
		photos: photos,
	}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// SubmitSubject is the input of Service.SubmitSubject.
type SubmitSubject struct {
	AuthorID uint
	BoardID  uint
	Title    string
	Body     string
	// Photo is the path of an already stored upload, if any.
	Photo string
}

func (in SubmitSubject) validate() error {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return invalid("title is required")
	}
	if n := utf8.RuneCountInString(title); n > MaxTitleLen {
		return invalid("title has %d characters, limit is %d", n, MaxTitleLen)
	}
	if n := utf8.RuneCountInString(in.Body); n > MaxBodyLen {
		return invalid("body has %d characters, limit is %d", n, MaxBodyLen)
	}
	if in.Photo != "" && !media.Supported(in.Photo) {
		return invalid("photo must be a .jpg, .jpeg or .png file")
	}
	return nil
}

// SubmitSubject creates a subject starred by its author and notifies the
// users mentioned in its title or body.
func (s *Service) SubmitSubject(ctx context.Context, in SubmitSubject) (*model.Subject, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(in.Title)
	sub := &model.Subject{
		Title:    title,
		Slug:     model.SlugFor(title),
		Body:     in.Body,
		Photo:    s.compress(in.Photo),
		AuthorID: in.AuthorID,
		BoardID:  in.BoardID,
		Active:   true,
	}
	var mentioned int
	err := s.inTx(ctx, func(r Repository) error {
		if err := r.CreateSubject(ctx, sub); err != nil {
			return err
		}
		if err := r.AddStar(ctx, sub.ID, in.AuthorID); err != nil {
			return err
		}
		users, err := mention.Find(ctx, r, sub.Title+" "+sub.Body)
		if err != nil {
			return fmt.Errorf("resolve mentions: %w", err)
		}
		if err := r.AddMentions(ctx, sub.ID, users); err != nil {
			return err
		}
		for _, u := range users {
			if u.ID == in.AuthorID {
				continue
			}
			if err := notify(ctx, r, in.AuthorID, u.ID, &sub.ID, model.NotifySubjectMentioned); err != nil {
				return err
			}
		}
		mentioned = len(users)
		return nil
	})
	if err != nil {
		return nil, err
	}
	slog.Info("forum: subject submitted", "id", sub.ID, "board", sub.BoardID, "mentions", mentioned)
	return sub, nil
}

// compress returns the compressed photo path, or the original on failure.
func (s *Service) compress(photo string) string {
	if photo == "" || s.photos == nil {
		return photo
	}
	out, err := s.photos.Compress(photo)
	if err != nil {
		slog.Warn("forum: photo compression failed, keeping original", "path", photo, "error", err)
		return photo
	}
	return out
}

// AddComment is the input of Service.AddComment.
type AddComment struct {
	SubjectID   uint
	CommenterID uint
	Body        string
	ReplyToID   *uint
}

// AddComment posts a comment on an active subject, notifying the subject's
// author and the users mentioned in the comment.
func (s *Service) AddComment(ctx context.Context, in AddComment) (*model.Comment, error) {
	body := strings.TrimSpace(in.Body)
	if body == "" {
		return nil, invalid("comment body is required")
	}
	if n := utf8.RuneCountInString(body); n > MaxCommentLen {
		return nil, invalid("comment has %d characters, limit is %d", n, MaxCommentLen)
	}
	sub, err := s.repo.SubjectByID(ctx, in.SubjectID)
	if err != nil {
		return nil, err
	}
	if !sub.Active {
		return nil, invalid("subject %d is no longer active", sub.ID)
	}

	c := &model.Comment{
		SubjectID:   sub.ID,
		CommenterID: in.CommenterID,
		Body:        body,
		Active:      true,
		ReplyToID:   in.ReplyToID,
	}
	err = s.inTx(ctx, func(r Repository) error {
		if err := r.CreateComment(ctx, c); err != nil {
			return err
		}
		if in.CommenterID != sub.AuthorID {
			if err := notify(ctx, r, in.CommenterID, sub.AuthorID, &sub.ID, model.NotifyComment); err != nil {
				return err
			}
		}
		users, err := mention.Find(ctx, r, body)
		if err != nil {
			return fmt.Errorf("resolve mentions: %w", err)
		}
		for _, u := range users {
			if u.ID == in.CommenterID {
				continue
			}
			if err := notify(ctx, r, in.CommenterID, u.ID, &sub.ID, model.NotifyCommentMentioned); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func notify(ctx context.Context, r Repository, actor, target uint, subjectID *uint, typ model.NotificationType) error {
	n := &model.Notification{ActorID: actor, TargetID: target, Type: typ}
	if subjectID != nil {
		id := *subjectID
		n.SubjectID = &id
	}
	return r.CreateNotification(ctx, n)
}

// StarResult is the state of a subject's stars after a toggle.
type StarResult struct {
	Starred bool `json:"starred"`
	Total   int  `json:"total"`
}

// ToggleStar stars the subject for userID, or removes the star if present.
func (s *Service) ToggleStar(ctx context.Context, subjectID, userID uint) (StarResult, error) {
	if _, err := s.repo.SubjectByID(ctx, subjectID); err != nil {
		return StarResult{}, err
	}
	var res StarResult
	err := s.inTx(ctx, func(r Repository) error {
		has, err := r.HasStar(ctx, subjectID, userID)
		if err != nil {
			return err
		}
		if has {
			err = r.RemoveStar(ctx, subjectID, userID)
		} else {
			err = r.AddStar(ctx, subjectID, userID)
		}
		if err != nil {
			return err
		}
		total, err := r.CountStars(ctx, subjectID)
		if err != nil {
			return err
		}
		res = StarResult{Starred: !has, Total: total}
		return nil
	})
	if err != nil {
		return StarResult{}, err
	}
	return res, nil
}

// ReportSubject flags a subject to the admins of its board.
func (s *Service) ReportSubject(ctx context.Context, subjectID, reporterID uint) (*model.Report, error) {
	sub, err := s.repo.SubjectByID(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	reporter, subjectRef, board := reporterID, sub.ID, sub.BoardID
	r := &model.Report{ReporterID: &reporter, SubjectID: &subjectRef, BoardID: &board, Active: true}
	if err := s.repo.CreateReport(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// Deactivate hides a reported subject. Only admins of the subject's board
// may do so, and only while an active report exists on that board.
func (s *Service) Deactivate(ctx context.Context, subjectID, adminID uint) error {
	sub, err := s.repo.SubjectByID(ctx, subjectID)
	if err != nil {
		return err
	}
	ok, err := s.repo.IsBoardAdmin(ctx, sub.BoardID, adminID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: user %d is not an admin of board %d", ErrForbidden, adminID, sub.BoardID)
	}
	reported, err := s.repo.HasBoardReport(ctx, sub.ID, sub.BoardID)
	if err != nil {
		return err
	}
	if !reported {
		return ErrNotReported
	}
	if err := s.repo.DeactivateSubject(ctx, sub.ID); err != nil {
		return err
	}
	slog.Info("forum: subject deactivated", "id", sub.ID, "board", sub.BoardID, "admin", adminID)
	return nil
}

// Notifications lists userID's notifications newest first.
func (s *Service) Notifications(ctx context.Context, userID uint) ([]model.Notification, error) {
	return s.repo.NotificationsFor(ctx, userID)
}

// MarkRead marks all of userID's notifications as read.
func (s *Service) MarkRead(ctx context.Context, userID uint) error {
	return s.repo.MarkNotificationsRead(ctx, userID)
}

// FollowResult is the follow state after a toggle.
type FollowResult struct {
	Following bool `json:"following"`
	Followers int  `json:"followers"`
}

// Follow makes followerID follow targetID, or unfollow if already following.
// Only a new follow notifies the target.
func (s *Service) Follow(ctx context.Context, followerID, targetID uint) (FollowResult, error) {
	if followerID == targetID {
		return FollowResult{}, invalid("users cannot follow themselves")
	}
	if _, err := s.repo.UserByID(ctx, targetID); err != nil {
		return FollowResult{}, err
	}
	var res FollowResult
	err := s.inTx(ctx, func(r Repository) error {
		following, err := r.IsFollowing(ctx, followerID, targetID)
		if err != nil {
			return err
		}
		if following {
			err = r.RemoveFollow(ctx, followerID, targetID)
		} else {
			err = r.AddFollow(ctx, followerID, targetID)
			if err == nil {
				err = notify(ctx, r, followerID, targetID, nil, model.NotifyFollow)
			}
		}
		if err != nil {
			return err
		}
		n, err := r.CountFollowers(ctx, targetID)
		if err != nil {
			return err
		}
		res = FollowResult{Following: !following, Followers: n}
		return nil
	})
	if err != nil {
		return FollowResult{}, err
	}
	return res, nil
}

// SendMessageRequest asks receiverID to accept messages from senderID. Sending
// again withdraws the pending request. It reports whether a request is pending.
func (s *Service) SendMessageRequest(ctx context.Context, senderID, receiverID uint) (bool, error) {
	if senderID == receiverID {
		return false, invalid("users cannot message themselves")
	}
	if _, err := s.repo.UserByID(ctx, receiverID); err != nil {
		return false, err
	}
	var pending bool
	err := s.inTx(ctx, func(r Repository) error {
		has, err := r.HasMessageRequest(ctx, senderID, receiverID)
		if err != nil {
			return err
		}
		if has {
			return r.RemoveMessageRequest(ctx, senderID, receiverID)
		}
		if err := r.AddMessageRequest(ctx, senderID, receiverID); err != nil {
			return err
		}
		pending = true
		return notify(ctx, r, senderID, receiverID, nil, model.NotifySentMsgRequest)
	})
	if err != nil {
		return false, err
	}
	return pending, nil
}

// AcceptMessageRequest turns senderID's pending request to acceptorID into a
// two-way contact and tells the sender.
func (s *Service) AcceptMessageRequest(ctx context.Context, acceptorID, senderID uint) error {
	return s.inTx(ctx, func(r Repository) error {
		has, err := r.HasMessageRequest(ctx, senderID, acceptorID)
		if err != nil {
			return err
		}
		if !has {
			return ErrNoRequest
		}
		if err := r.RemoveMessageRequest(ctx, senderID, acceptorID); err != nil {
			return err
		}
		if err := r.AddContacts(ctx, acceptorID, senderID); err != nil {
			return err
		}
		return notify(ctx, r, acceptorID, senderID, nil, model.NotifyConfirmedMsgRequest)
	})
}
