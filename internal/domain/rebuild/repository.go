package rebuild

import "context"

type Repository interface {
	Start(ctx context.Context, run Run) error
	Finish(ctx context.Context, run Run) error
	ListRecent(ctx context.Context, familyKey string, limit int) ([]Run, error)
}
