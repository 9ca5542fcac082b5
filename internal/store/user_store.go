package store

import (
	"context"

	users "github.com/AdamBeresnev/elim-bracket/internal/user"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type UserStore struct {
	db *sqlx.DB
}

const userColumns = "id, email, username, created_at, provider, provider_id, avatar_url"

const (
	getUserQuery = "SELECT " + userColumns + " FROM users WHERE id = ?"

	// A provider login refreshes the avatar and keeps the stored username when
	// the provider sends none.
	upsertProviderUserQuery = `
		INSERT INTO users (id, email, username, provider, provider_id, avatar_url)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (provider, provider_id) DO UPDATE SET
			username = CASE WHEN excluded.username <> '' THEN excluded.username ELSE users.username END,
			avatar_url = excluded.avatar_url
		RETURNING id`

	insertUserIfMissingQuery = `
		INSERT INTO users (id, email, username) VALUES (?, ?, ?)
		ON CONFLICT (id) DO NOTHING
	`
)

func NewUserStore(db *sqlx.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) GetUser(ctx context.Context, id uuid.UUID) (*users.User, error) {
	var user users.User
	if err := s.db.GetContext(ctx, &user, getUserQuery, id); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpsertProviderUser creates the user for an OAuth identity or updates the
// one already linked to it. The stored row is returned, so the id of an
// existing user wins over user.ID.
func (s *UserStore) UpsertProviderUser(ctx context.Context, user *users.User) (*users.User, error) {
	var id uuid.UUID
	err := s.db.GetContext(ctx, &id, upsertProviderUserQuery,
		user.ID, user.Email, user.Username, user.Provider, user.ProviderID, user.AvatarURL)
	if err != nil {
		return nil, err
	}
	return s.GetUser(ctx, id)
}

// EnsureUser inserts a user without a provider unless its id exists, then
// returns the stored row.
func (s *UserStore) EnsureUser(ctx context.Context, user *users.User) (*users.User, error) {
	if _, err := s.db.ExecContext(ctx, insertUserIfMissingQuery, user.ID, user.Email, user.Username); err != nil {
		return nil, err
	}
	return s.GetUser(ctx, user.ID)
}
