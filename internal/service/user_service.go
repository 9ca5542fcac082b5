package service

import (
	"context"

	"github.com/AdamBeresnev/elim-bracket/internal/store"
	users "github.com/AdamBeresnev/elim-bracket/internal/user"
	"github.com/AdamBeresnev/elim-bracket/internal/utils"
	"github.com/google/uuid"
	"github.com/markbates/goth"
)

type UserService struct {
	store *store.UserStore
}

func NewUserService(store *store.UserStore) *UserService {
	return &UserService{store: store}
}

// FindOrCreateUserByProvider signs in an OAuth identity, creating the
// organizer on first login and refreshing the name and avatar afterwards.
func (s *UserService) FindOrCreateUserByProvider(ctx context.Context, gothUser goth.User) (*users.User, error) {
	user, err := s.store.UpsertProviderUser(ctx, &users.User{
		ID:         uuid.New(),
		Email:      gothUser.Email,
		Username:   utils.FirstNonBlank(gothUser.NickName, gothUser.Name),
		Provider:   &gothUser.Provider,
		ProviderID: &gothUser.UserID,
		AvatarURL:  utils.StringOrNil(gothUser.AvatarURL),
	})
	if err != nil {
		return nil, storageErr("upsert user", err)
	}
	return user, nil
}

// EnsureGuestUser returns the guest organizer, recreating the row if it was
// removed.
func (s *UserService) EnsureGuestUser(ctx context.Context) (*users.User, error) {
	guest, err := s.store.EnsureUser(ctx, &users.User{
		ID:       users.GuestID,
		Email:    "guest@elim-bracket.app",
		Username: "Guest User",
	})
	if err != nil {
		return nil, storageErr("ensure guest user", err)
	}
	return guest, nil
}
