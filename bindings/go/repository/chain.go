package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/uklance/gradle-dependency-export/bindings/go/coordinate"
)

// Chain looks up artifacts in a list of repositories in order and returns the first hit.
type Chain struct {
	name         string
	repositories []Repository
}

var _ Repository = (*Chain)(nil)

func NewChain(name string, repositories ...Repository) *Chain {
	return &Chain{name: name, repositories: repositories}
}

func (c *Chain) Name() string {
	return c.name
}

// Repositories returns the repositories of the chain in lookup order.
func (c *Chain) Repositories() []Repository {
	return append([]Repository(nil), c.repositories...)
}

// Fetch returns the artifact from the first repository holding it. If no repository holds it,
// the error wraps ErrNotFound unless at least one repository failed for another reason,
// in which case those failures are returned.
func (c *Chain) Fetch(ctx context.Context, coord coordinate.Coordinate, extension string) (string, error) {
	var failures []error
	names := make([]string, 0, len(c.repositories))
	for _, repo := range c.repositories {
		names = append(names, repo.Name())
		p, err := repo.Fetch(ctx, coord, extension)
		switch {
		case err == nil:
			return p, nil
		case errors.Is(err, ErrNotFound):
			continue
		case ctx.Err() != nil:
			return "", err
		default:
			failures = append(failures, fmt.Errorf("%s: %w", repo.Name(), err))
		}
	}
	if len(failures) > 0 {
		return "", errors.Join(failures...)
	}
	return "", fmt.Errorf("%s@%s in [%s]: %w", coord, extension, strings.Join(names, ", "), ErrNotFound)
}
