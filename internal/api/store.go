package api

import (
	"context"
	"time"

	"github.com/studiowebux/studentcrud/internal/types"
)

// Store is the data-fetching port consumed by the shell and the CLI.
// *Client implements it against the remote endpoint.
type Store interface {
	List(ctx context.Context) ([]types.Student, error)
	Create(ctx context.Context, draft types.Draft) (types.Student, error)
	Update(ctx context.Context, id string, patch types.Patch) (types.Student, error)
	Delete(ctx context.Context, id string) error
}

var _ Store = (*Client)(nil)

// Call describes one completed round trip
type Call struct {
	Method   string
	URL      string
	Status   int
	Duration time.Duration
	Err      error
}

type observerKey struct{}

// WithCallObserver returns a context whose requests report their Call to fn
func WithCallObserver(ctx context.Context, fn func(Call)) context.Context {
	return context.WithValue(ctx, observerKey{}, fn)
}

func observerFrom(ctx context.Context) func(Call) {
	fn, _ := ctx.Value(observerKey{}).(func(Call))
	return fn
}
