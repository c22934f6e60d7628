// Package roster reads the active team list.
package roster

import (
	"context"

	"presence/internal/roster/models"
)

// Source lists active team members. An empty roster is not an error.
type Source interface {
	Members(ctx context.Context) (models.Roster, error)
}
