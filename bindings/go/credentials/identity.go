package credentials

import (
	"fmt"

	"github.com/uklance/gradle-dependency-export/bindings/go/runtime"
)

// ConsumerType is the identity type of remote model repositories.
const ConsumerType = "MavenRepository"

// IdentityForURL creates the consumer identity of the repository at the given URL.
func IdentityForURL(repositoryURL string) (runtime.Identity, error) {
	identity, err := runtime.ParseURLToIdentity(repositoryURL)
	if err != nil {
		return nil, fmt.Errorf("creating consumer identity for %q failed: %w", repositoryURL, err)
	}
	if identity[runtime.IdentityAttributeHostname] == "" {
		return nil, fmt.Errorf("creating consumer identity for %q failed: missing hostname", repositoryURL)
	}
	identity[runtime.IdentityAttributeType] = ConsumerType
	return identity, nil
}

// ParseIdentity parses the string form of an identity as produced by runtime.Identity.String,
// i.e. comma separated key=value pairs.
func ParseIdentity(s string) (runtime.Identity, error) {
	identity := runtime.Identity{}
	for _, pair := range splitPairs(s) {
		key, value, ok := cutPair(pair)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid identity attribute %q in %q", pair, s)
		}
		identity[key] = value
	}
	return identity, nil
}
