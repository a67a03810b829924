package mention

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"ditto/internal/model"
	"ditto/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	cases := []struct {
		name string
		text string
		want []string
	}{
		{"empty", "", nil},
		{"no mentions", "just a plain comment", nil},
		{"single", "hey u/alice look", []string{"alice"}},
		{"start and end", "u/bob and u/carol", []string{"bob", "carol"}},
		{"dedupe keeps first order", "u/bob u/alice u/bob", []string{"bob", "alice"}},
		{"punctuation", "thanks u/alice, and u/bob!", []string{"alice", "bob"}},
		{"newlines and tabs", "line\nu/alice\tu/bob", []string{"alice", "bob"}},
		{"bare prefix", "u/ nothing", nil},
		{"embedded is not a mention", "see/u/alice or xu/bob", nil},
		{"case sensitive", "u/Alice u/alice", []string{"Alice", "alice"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Parse(tc.text))
		})
	}
}

type fakeUsers map[string]uint

func (f fakeUsers) UserByUsername(_ context.Context, name string) (*model.User, error) {
	if name == "explode" {
		return nil, errors.New("connection reset")
	}
	id, ok := f[name]
	if !ok {
		return nil, fmt.Errorf("user %q: %w", name, store.ErrNotFound)
	}
	return &model.User{ID: id, Username: name}, nil
}

func TestResolveSkipsUnknown(t *testing.T) {
	users := fakeUsers{"alice": 1, "bob": 2}
	got, err := Resolve(context.Background(), users, []string{"alice", "ghost", "bob"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "alice", got[0].Username)
	assert.Equal(t, "bob", got[1].Username)
}

func TestResolvePropagatesLookupErrors(t *testing.T) {
	users := fakeUsers{"alice": 1}
	_, err := Resolve(context.Background(), users, []string{"alice", "explode"})
	assert.EqualError(t, err, "connection reset")
}

func TestFind(t *testing.T) {
	users := fakeUsers{"alice": 1}
	got, err := Find(context.Background(), users, "ping u/alice and u/alice again, u/nobody")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, uint(1), got[0].ID)
}
