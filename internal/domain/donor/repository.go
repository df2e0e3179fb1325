package donor

import "context"

type Repository interface {
	// Get returns the donor or an error marked ErrNotFound
	Get(ctx context.Context, id string) (*Donor, error)
}
