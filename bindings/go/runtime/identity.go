package runtime

import (
	"fmt"
	"maps"
	"net/url"
	"slices"
	"strings"
)

// Attributes of identities derived from repository URLs.
const (
	IdentityAttributeType     = "type"
	IdentityAttributeHostname = "hostname"
	IdentityAttributeScheme   = "scheme"
	IdentityAttributePath     = "path"
	IdentityAttributePort     = "port"
)

// Identity is a set of attributes naming a credential consumer such as a remote repository.
type Identity map[string]string

// String renders the identity as comma separated key=value pairs in sorted key order.
// Equal identities always render to the same string.
func (i Identity) String() string {
	var sb strings.Builder
	for n, k := range slices.Sorted(maps.Keys(i)) {
		if n > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(k + "=" + i[k])
	}
	return sb.String()
}

// ParseURLToIdentity derives the scheme, hostname, port and path attributes from a URL.
// The scheme may be omitted, e.g. "repo.example.com/maven2". Empty attributes are left out
// and the path is stored without leading or trailing slashes.
func ParseURLToIdentity(rawURL string) (Identity, error) {
	withScheme := rawURL
	if !strings.Contains(rawURL, "://") {
		withScheme = "none://" + rawURL
	}
	u, err := url.Parse(withScheme)
	if err != nil {
		return nil, fmt.Errorf("parsing url %q failed: %w", rawURL, err)
	}

	identity := Identity{}
	set := func(key, value string) {
		if value != "" {
			identity[key] = value
		}
	}
	if withScheme == rawURL {
		set(IdentityAttributeScheme, u.Scheme)
	}
	set(IdentityAttributeHostname, u.Hostname())
	set(IdentityAttributePort, u.Port())
	set(IdentityAttributePath, strings.Trim(u.Path, "/"))
	return identity, nil
}
