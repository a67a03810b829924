package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"ditto/internal/model"
	"ditto/internal/store"
	"ditto/internal/store/storetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	s     *store.Store
	alice *model.User
	bob   *model.User
	carol *model.User
	board *model.Board
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	f := &fixture{s: storetest.Open(t)}
	f.alice = &model.User{Username: "alice"}
	f.bob = &model.User{Username: "bob"}
	f.carol = &model.User{Username: "carol"}
	for _, u := range []*model.User{f.alice, f.bob, f.carol} {
		require.NoError(t, f.s.CreateUser(ctx, u))
	}
	f.board = &model.Board{Title: "Golang Nuts", Description: "all things go"}
	require.NoError(t, f.s.CreateBoard(ctx, f.board))
	return f
}

func (f *fixture) subject(t *testing.T, title string, created time.Time) *model.Subject {
	t.Helper()
	sub := &model.Subject{
		Title:     title,
		Slug:      model.SlugFor(title),
		AuthorID:  f.alice.ID,
		BoardID:   f.board.ID,
		Active:    true,
		CreatedAt: created,
	}
	require.NoError(t, f.s.CreateSubject(context.Background(), sub))
	return sub
}

func TestBoardSlug(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, "golang_nuts", f.board.Slug)
}

func TestActiveSubjectsCountsStarsAndSkipsInactive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Now().UTC()

	older := f.subject(t, "older post", now.Add(-2*time.Hour))
	newer := f.subject(t, "newer post", now.Add(-time.Minute))
	hidden := f.subject(t, "hidden post", now)

	require.NoError(t, f.s.AddStar(ctx, older.ID, f.alice.ID))
	require.NoError(t, f.s.AddStar(ctx, older.ID, f.bob.ID))
	require.NoError(t, f.s.AddStar(ctx, older.ID, f.bob.ID)) // duplicate
	require.NoError(t, f.s.AddStar(ctx, newer.ID, f.carol.ID))
	require.NoError(t, f.s.DeactivateSubject(ctx, hidden.ID))

	subjects, err := f.s.ActiveSubjects(ctx)
	require.NoError(t, err)
	require.Len(t, subjects, 2)
	assert.Equal(t, newer.ID, subjects[0].ID)
	assert.Equal(t, 1, subjects[0].Points)
	assert.Equal(t, older.ID, subjects[1].ID)
	assert.Equal(t, 2, subjects[1].Points)
	require.NotNil(t, subjects[0].Board)
	assert.Equal(t, "golang_nuts", subjects[0].Board.Slug)
}

func TestStarsToggle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sub := f.subject(t, "toggle", time.Now())

	has, err := f.s.HasStar(ctx, sub.ID, f.bob.ID)
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, f.s.AddStar(ctx, sub.ID, f.bob.ID))
	has, err = f.s.HasStar(ctx, sub.ID, f.bob.ID)
	require.NoError(t, err)
	assert.True(t, has)

	n, err := f.s.CountStars(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, f.s.RemoveStar(ctx, sub.ID, f.bob.ID))
	n, err = f.s.CountStars(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestSaveRanks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.subject(t, "a", time.Now())
	b := f.subject(t, "b", time.Now())

	a.RankScore = 1.5
	b.RankScore = -0.25
	require.NoError(t, f.s.SaveRanks(ctx, []model.Subject{*a, *b}))

	got, err := f.s.SubjectByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 1.5, got.RankScore)
	got, err = f.s.SubjectByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, -0.25, got.RankScore)
}

func TestSaveRanksHonoursCancelledContext(t *testing.T) {
	f := newFixture(t)
	a := f.subject(t, "a", time.Now())
	a.RankScore = 3

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, f.s.SaveRanks(ctx, []model.Subject{*a}))
}

func TestNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.s.UserByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = f.s.SubjectByID(ctx, 999)
	assert.ErrorIs(t, err, store.ErrNotFound)

	assert.ErrorIs(t, f.s.DeactivateSubject(ctx, 999), store.ErrNotFound)
}

func TestBoardAdminLimit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	dave := &model.User{Username: "dave"}
	require.NoError(t, f.s.CreateUser(ctx, dave))

	for _, u := range []*model.User{f.alice, f.bob, f.carol} {
		require.NoError(t, f.s.AddBoardAdmin(ctx, f.board.ID, u.ID))
	}
	assert.ErrorIs(t, f.s.AddBoardAdmin(ctx, f.board.ID, dave.ID), store.ErrTooManyAdmins)

	ok, err := f.s.IsBoardAdmin(ctx, f.board.ID, f.bob.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = f.s.IsBoardAdmin(ctx, f.board.ID, dave.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNotificationsExcludeSelfActed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sub := f.subject(t, "hello world", time.Now())

	for _, n := range []*model.Notification{
		{ActorID: f.bob.ID, TargetID: f.alice.ID, SubjectID: &sub.ID, Type: model.NotifyComment},
		{ActorID: f.alice.ID, TargetID: f.alice.ID, SubjectID: &sub.ID, Type: model.NotifyComment},
		{ActorID: f.carol.ID, TargetID: f.bob.ID, Type: model.NotifyFollow},
	} {
		require.NoError(t, f.s.CreateNotification(ctx, n))
	}

	got, err := f.s.NotificationsFor(ctx, f.alice.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, `bob commented on your subject "hello world".`, got[0].Message())
	assert.False(t, got[0].IsRead)

	require.NoError(t, f.s.MarkNotificationsRead(ctx, f.alice.ID))
	got, err = f.s.NotificationsFor(ctx, f.alice.ID)
	require.NoError(t, err)
	assert.True(t, got[0].IsRead)
}

func TestMentionsAndReports(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sub := f.subject(t, "report me", time.Now())

	require.NoError(t, f.s.AddMentions(ctx, sub.ID, []model.User{*f.bob, *f.carol}))
	require.NoError(t, f.s.AddMentions(ctx, sub.ID, []model.User{*f.bob}))

	has, err := f.s.HasBoardReport(ctx, sub.ID, f.board.ID)
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, f.s.CreateReport(ctx, &model.Report{
		ReporterID: &f.bob.ID, SubjectID: &sub.ID, BoardID: &f.board.ID, Active: true,
	}))
	has, err = f.s.HasBoardReport(ctx, sub.ID, f.board.ID)
	require.NoError(t, err)
	assert.True(t, has)
}

func TestTransactionRollsBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := f.s.Transaction(ctx, func(tx *store.Store) error {
		sub := &model.Subject{Title: "ghost", AuthorID: f.alice.ID, BoardID: f.board.ID, Active: true}
		require.NoError(t, tx.CreateSubject(ctx, sub))
		require.NoError(t, tx.AddStar(ctx, sub.ID, f.alice.ID))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	active, err := f.s.ActiveSubjects(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)

	err = f.s.Transaction(ctx, func(tx *store.Store) error {
		return tx.CreateSubject(ctx, &model.Subject{Title: "kept", AuthorID: f.alice.ID, BoardID: f.board.ID, Active: true})
	})
	require.NoError(t, err)
	active, err = f.s.ActiveSubjects(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 1)
}

func TestFollowsRequestsAndContacts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.s.UserByID(ctx, f.bob.ID)
	require.NoError(t, err)
	assert.Equal(t, "bob", u.Username)
	_, err = f.s.UserByID(ctx, 4242)
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, f.s.AddFollow(ctx, f.alice.ID, f.bob.ID))
	require.NoError(t, f.s.AddFollow(ctx, f.alice.ID, f.bob.ID))
	require.NoError(t, f.s.AddFollow(ctx, f.carol.ID, f.bob.ID))
	n, err := f.s.CountFollowers(ctx, f.bob.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.NoError(t, f.s.RemoveFollow(ctx, f.alice.ID, f.bob.ID))
	ok, err := f.s.IsFollowing(ctx, f.alice.ID, f.bob.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, f.s.AddMessageRequest(ctx, f.alice.ID, f.bob.ID))
	ok, err = f.s.HasMessageRequest(ctx, f.alice.ID, f.bob.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = f.s.HasMessageRequest(ctx, f.bob.ID, f.alice.ID)
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, f.s.RemoveMessageRequest(ctx, f.alice.ID, f.bob.ID))

	require.NoError(t, f.s.AddContacts(ctx, f.alice.ID, f.bob.ID))
	for _, pair := range [][2]uint{{f.alice.ID, f.bob.ID}, {f.bob.ID, f.alice.ID}} {
		ok, err = f.s.IsContact(ctx, pair[0], pair[1])
		require.NoError(t, err)
		assert.True(t, ok)
	}
}
