package credentials

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/uklance/gradle-dependency-export/bindings/go/runtime"
)

type (
	credentials   map[string]string
	credentialsID string
)

type staticEntry struct {
	identity    runtime.Identity
	credentials credentials
}

// StaticCredentialsResolver is a simple implementation of the Resolver interface
// that uses a static map to store credentials.
//
// Lookups first try the exact identity. Otherwise the first entry (in sorted key order)
// whose identity matches is used, where the path attribute of an entry may be a glob
// pattern (see runtime.Identity.Match).
type StaticCredentialsResolver struct {
	staticCredentialsStore map[credentialsID]credentials
	entries                []staticEntry
	mutex                  *sync.Mutex
}

// NewStaticCredentialsResolver creates a new StaticCredentialsResolver with the provided credentials map.
// The keys are the string representation of a runtime.Identity, the values the credential attributes.
func NewStaticCredentialsResolver(credMap map[string]map[string]string) (*StaticCredentialsResolver, error) {
	credStore := make(map[credentialsID]credentials, len(credMap))
	entries := make([]staticEntry, 0, len(credMap))

	for _, id := range slices.Sorted(maps.Keys(credMap)) {
		identity, err := ParseIdentity(id)
		if err != nil {
			return nil, fmt.Errorf("invalid credential consumer identity: %w", err)
		}
		creds := maps.Clone(credMap[id])
		credStore[credentialsID(identity.String())] = creds
		entries = append(entries, staticEntry{identity: identity, credentials: creds})
	}

	return &StaticCredentialsResolver{
		staticCredentialsStore: credStore,
		entries:                entries,
		mutex:                  &sync.Mutex{},
	}, nil
}

func (s *StaticCredentialsResolver) Resolve(_ context.Context, identity runtime.Identity) (map[string]string, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if creds, ok := s.staticCredentialsStore[credentialsID(identity.String())]; ok {
		return maps.Clone(creds), nil
	}
	for _, entry := range s.entries {
		if identity.Match(entry.identity) {
			return maps.Clone(entry.credentials), nil
		}
	}
	return nil, ErrNotFound
}

func splitPairs(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func cutPair(pair string) (string, string, bool) {
	key, value, ok := strings.Cut(pair, "=")
	return strings.TrimSpace(key), strings.TrimSpace(value), ok
}
