package credentials

import (
	"context"
	"errors"

	"github.com/uklance/gradle-dependency-export/bindings/go/runtime"
)

// ErrNotFound is returned when no credentials could be found for the given identity.
var ErrNotFound = errors.New("credentials not found")

const (
	CredentialKeyUsername = "username"
	CredentialKeyPassword = "password"
	// CredentialKeyToken is sent as bearer token and takes precedence over username and password.
	CredentialKeyToken = "token"
)

// Resolver defines the interface for resolving credentials based on a given identity.
// In case no credentials are known for the identity it returns ErrNotFound.
type Resolver interface {
	Resolve(ctx context.Context, identity runtime.Identity) (map[string]string, error)
}
