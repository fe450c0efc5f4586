package ports

import "context"

// ViewInvalidator marks cached listing views as stale.
type ViewInvalidator interface {
	Invalidate(ctx context.Context, paths ...string) error
	Version(ctx context.Context, path string) (int64, error)
}
