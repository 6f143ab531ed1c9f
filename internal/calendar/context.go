package calendar

import (
	"context"
	"errors"
)

var ErrNoProvider = errors.New("calendar state must be used within a provider")

type stateKey struct{}

// WithState installs s as the calendar state for everything derived from ctx.
func WithState(ctx context.Context, s *State) context.Context {
	return context.WithValue(ctx, stateKey{}, s)
}

func FromContext(ctx context.Context) (*State, error) {
	if ctx == nil {
		return nil, ErrNoProvider
	}
	s, ok := ctx.Value(stateKey{}).(*State)
	if !ok || s == nil {
		return nil, ErrNoProvider
	}
	return s, nil
}

func MustFromContext(ctx context.Context) *State {
	s, err := FromContext(ctx)
	if err != nil {
		panic(err)
	}
	return s
}
