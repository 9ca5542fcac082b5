package store

import (
	"context"
	"database/sql"
	"testing"

	users "github.com/AdamBeresnev/elim-bracket/internal/user"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserStore_GetUser(t *testing.T) {
	database := setupTestDB(t)
	store := NewUserStore(database)
	ctx := context.Background()

	guest, err := store.GetUser(ctx, users.GuestID)
	require.NoError(t, err)
	assert.True(t, guest.IsGuest())
	assert.Nil(t, guest.Provider)

	_, err = store.GetUser(ctx, uuid.New())
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestUserStore_UpsertProviderUser(t *testing.T) {
	database := setupTestDB(t)
	store := NewUserStore(database)
	ctx := context.Background()

	provider, providerID := "discord", "1234"
	avatar := "https://cdn.example/a.png"
	first := &users.User{
		ID:         uuid.New(),
		Email:      "ref@example.com",
		Username:   "ref",
		Provider:   &provider,
		ProviderID: &providerID,
		AvatarURL:  &avatar,
	}

	created, err := store.UpsertProviderUser(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, first.ID, created.ID)
	assert.Equal(t, "ref", created.Username)

	newAvatar := "https://cdn.example/b.png"
	again := &users.User{
		ID:         uuid.New(),
		Email:      "ref@example.com",
		Username:   "",
		Provider:   &provider,
		ProviderID: &providerID,
		AvatarURL:  &newAvatar,
	}

	updated, err := store.UpsertProviderUser(ctx, again)
	require.NoError(t, err)
	assert.Equal(t, first.ID, updated.ID, "existing identity keeps its id")
	assert.Equal(t, "ref", updated.Username, "blank username leaves the stored one")
	require.NotNil(t, updated.AvatarURL)
	assert.Equal(t, newAvatar, *updated.AvatarURL)

	var count int
	require.NoError(t, database.Get(&count, "SELECT COUNT(*) FROM users WHERE provider = ?", provider))
	assert.Equal(t, 1, count)
}

func TestUserStore_EnsureUser(t *testing.T) {
	database := setupTestDB(t)
	store := NewUserStore(database)
	ctx := context.Background()

	existing, err := store.EnsureUser(ctx, &users.User{ID: users.GuestID, Email: "other@example.com", Username: "Other"})
	require.NoError(t, err)
	assert.Equal(t, "Guest User", existing.Username, "existing rows are not overwritten")

	id := uuid.New()
	created, err := store.EnsureUser(ctx, &users.User{ID: id, Email: "new@example.com", Username: "New"})
	require.NoError(t, err)
	assert.Equal(t, id, created.ID)
	assert.Equal(t, "New", created.Username)
}
