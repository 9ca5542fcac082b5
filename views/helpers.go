package views

import (
	"context"

	"github.com/AdamBeresnev/elim-bracket/internal/bracket"
	"github.com/AdamBeresnev/elim-bracket/internal/middleware"
	users "github.com/AdamBeresnev/elim-bracket/internal/user"
	"github.com/AdamBeresnev/elim-bracket/internal/utils"
)

func GetUser(ctx context.Context) *users.User {
	return middleware.GetAuthenticatedUser(ctx)
}

func scoreText(score *int) string {
	return utils.FormatOr(score, "-")
}

func slotClass(p bracket.Participant) string {
	switch {
	case p.Kind == bracket.SlotBye:
		return "slot bye"
	case !p.Resolved():
		return "slot pending"
	case p.IsWinner:
		return "slot winner"
	case p.Status == bracket.ParticipantPlayed:
		return "slot loser"
	default:
		return "slot"
	}
}
