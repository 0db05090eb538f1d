package admin

import (
	"context"
	"errors"
	"strings"
)

// ErrNoIdentifier is returned by a source that has nothing to offer.
var ErrNoIdentifier = errors.New("no device identifier available")

// IdentifierSource yields the identifier of the current installation.
type IdentifierSource interface {
	DeviceID(ctx context.Context) (string, error)
}

// StaticSource always returns the same identifier. An empty value reports
// ErrNoIdentifier.
type StaticSource string

func (s StaticSource) DeviceID(_ context.Context) (string, error) {
	id := strings.TrimSpace(string(s))
	if id == "" {
		return "", ErrNoIdentifier
	}
	return id, nil
}

// SourceFunc adapts a plain function to IdentifierSource.
type SourceFunc func(ctx context.Context) (string, error)

func (f SourceFunc) DeviceID(ctx context.Context) (string, error) { return f(ctx) }

// ChainSource asks each source in order and returns the first non-empty
// identifier. If none succeeds the errors are joined.
type ChainSource []IdentifierSource

func (c ChainSource) DeviceID(ctx context.Context) (string, error) {
	var errs []error
	for _, src := range c {
		if src == nil {
			continue
		}
		id, err := src.DeviceID(ctx)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if id = strings.TrimSpace(id); id != "" {
			return id, nil
		}
	}
	if len(errs) == 0 {
		return "", ErrNoIdentifier
	}
	return "", errors.Join(append([]error{ErrNoIdentifier}, errs...)...)
}
