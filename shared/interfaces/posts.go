package interfaces

import (
	"context"
)

// PostViewInvalidator drops cached post views. Populated views embed author
// fields, so a profile change must invalidate them.
type PostViewInvalidator interface {
	InvalidatePostViews(ctx context.Context)
}
