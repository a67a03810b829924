// Package mention finds u/username references in free text.
package mention

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"ditto/internal/model"
	"ditto/internal/store"
)

const prefix = "u/"

// Parse returns the usernames referenced as u/<name> tokens in text, in the
// order they first appear and without duplicates. Trailing punctuation is not
// part of a name.
func Parse(text string) []string {
	var names []string
	seen := map[string]struct{}{}
	for _, word := range strings.Fields(text) {
		if !strings.HasPrefix(word, prefix) {
			continue
		}
		name := strings.TrimRight(word[len(prefix):], ".,;:!?)\"'")
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}

// UserFinder looks users up by username and returns store.ErrNotFound for
// unknown names.
type UserFinder interface {
	UserByUsername(ctx context.Context, username string) (*model.User, error)
}

// Resolve maps candidate usernames to users. Unknown usernames are skipped;
// any other lookup failure is returned.
func Resolve(ctx context.Context, users UserFinder, names []string) ([]model.User, error) {
	out := make([]model.User, 0, len(names))
	seen := map[uint]struct{}{}
	for _, name := range names {
		u, err := users.UserByUsername(ctx, name)
		if errors.Is(err, store.ErrNotFound) {
			slog.Debug("mention: skipping unknown username", "username", name)
			continue
		}
		if err != nil {
			return nil, err
		}
		if _, ok := seen[u.ID]; ok {
			continue
		}
		seen[u.ID] = struct{}{}
		out = append(out, *u)
	}
	return out, nil
}

// Find parses text and resolves the mentioned users in one step.
func Find(ctx context.Context, users UserFinder, text string) ([]model.User, error) {
	return Resolve(ctx, users, Parse(text))
}
