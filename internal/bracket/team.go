package bracket

import (
	"time"

	"github.com/google/uuid"
)

type Team struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Entrant is a registered team as the builder sees it: an identifier and the
// display name resolved for it.
type Entrant struct {
	TeamID uuid.UUID
	Name   string
}
