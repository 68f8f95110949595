package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/uklance/gradle-dependency-export/bindings/go/coordinate"
	"github.com/uklance/gradle-dependency-export/bindings/go/credentials"
	"github.com/uklance/gradle-dependency-export/bindings/go/repository"
	"github.com/uklance/gradle-dependency-export/bindings/go/repository/pathmatcher"
	"github.com/uklance/gradle-dependency-export/bindings/go/runtime"
)

type countingResolver struct {
	mu    sync.Mutex
	calls int
	creds map[string]map[string]string
}

func (c *countingResolver) Resolve(_ context.Context, identity runtime.Identity) (map[string]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if creds, ok := c.creds[identity[runtime.IdentityAttributeHostname]]; ok {
		return creds, nil
	}
	return nil, credentials.ErrNotFound
}

func chainNames(t *testing.T, repo repository.Repository) []string {
	t.Helper()
	chain, ok := repo.(*repository.Chain)
	require.True(t, ok)
	var names []string
	for _, r := range chain.Repositories() {
		names = append(names, r.Name())
	}
	return names
}

func TestProvider_Routing(t *testing.T) {
	r := require.New(t)
	ctx := t.Context()
	provider, err := New(ctx, Options{
		Specs: []repository.Spec{
			{Name: "central", URL: "https://repo.maven.apache.org/maven2"},
			{Name: "internal", URL: "https://nexus.example.com/releases"},
		},
		Rules: []pathmatcher.Rule{
			{GroupPattern: "com.example.**", Repositories: []string{"internal"}},
		},
		CacheDir:        t.TempDir(),
		LocalRepository: t.TempDir(),
	})
	r.NoError(err)

	repo, err := provider.RepositoryFor(ctx, coordinate.MustNew("com.example.platform", "bom", "1.0"))
	r.NoError(err)
	r.Equal([]string{"local", "internal"}, chainNames(t, repo))
	r.Equal("local,internal", repo.Name())

	repo, err = provider.RepositoryFor(ctx, coordinate.MustNew("org.junit", "junit-bom", "5.10.0"))
	r.NoError(err)
	r.Equal([]string{"local", "central", "internal"}, chainNames(t, repo), "unrouted coordinates use all repositories")
}

func TestProvider_Caching(t *testing.T) {
	r := require.New(t)
	ctx := t.Context()
	resolver := &countingResolver{}
	provider, err := New(ctx, Options{
		Specs:       []repository.Spec{{Name: "central", URL: "https://repo.maven.apache.org/maven2"}},
		Credentials: resolver,
		CacheDir:    t.TempDir(),
	})
	r.NoError(err)

	first, err := provider.RepositoryFor(ctx, coordinate.MustNew("g", "a", "1"))
	r.NoError(err)
	second, err := provider.RepositoryFor(ctx, coordinate.MustNew("g", "b", "2"))
	r.NoError(err)

	r.Same(first.(*repository.Chain).Repositories()[0], second.(*repository.Chain).Repositories()[0])
	r.Equal(1, resolver.calls, "credentials are resolved once per repository")
	r.Len(provider.repoCache, 1)
}

func TestProvider_FetchesWithCredentials(t *testing.T) {
	r := require.New(t)
	ctx := t.Context()
	const pom = "<project/>"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if user, pass, ok := req.BasicAuth(); !ok || user != "deployer" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if req.URL.Path != "/releases/g/a/1/a-1.pom" {
			http.NotFound(w, req)
			return
		}
		_, _ = w.Write([]byte(pom))
	}))
	t.Cleanup(server.Close)

	cacheDir := t.TempDir()
	resolver := &countingResolver{creds: map[string]map[string]string{
		"127.0.0.1": {credentials.CredentialKeyUsername: "deployer", credentials.CredentialKeyPassword: "secret"},
	}}
	provider, err := New(ctx, Options{
		Specs:         []repository.Spec{{Name: "internal", URL: server.URL + "/releases"}},
		Credentials:   resolver,
		HTTPClient:    server.Client(),
		CacheDir:      cacheDir,
		SkipChecksums: true,
	})
	r.NoError(err)

	repo, err := provider.RepositoryFor(ctx, coordinate.MustNew("g", "a", "1"))
	r.NoError(err)
	p, err := repo.Fetch(ctx, coordinate.MustNew("g", "a", "1"), "pom")
	r.NoError(err)
	r.Equal(filepath.Join(cacheDir, "internal", "g", "a", "1", "a-1.pom"), p)
	data, err := os.ReadFile(p)
	r.NoError(err)
	r.Equal(pom, string(data))
}

func TestNew_Invalid(t *testing.T) {
	ctx := t.Context()
	central := repository.Spec{Name: "central", URL: "https://repo.maven.apache.org/maven2"}
	tests := []struct {
		name string
		opts Options
	}{
		{"missing cache dir", Options{Specs: []repository.Spec{central}}},
		{"duplicate repository", Options{Specs: []repository.Spec{central, central}, CacheDir: t.TempDir()}},
		{"unsupported type", Options{Specs: []repository.Spec{{Type: repository.TypeLocal, Name: "x", URL: "/tmp"}}, CacheDir: t.TempDir()}},
		{"unknown rule repository", Options{
			Specs:    []repository.Spec{central},
			Rules:    []pathmatcher.Rule{{GroupPattern: "*", Repositories: []string{"internal"}}},
			CacheDir: t.TempDir(),
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(ctx, tc.opts)
			require.Error(t, err)
		})
	}
}

func TestSanitize(t *testing.T) {
	r := require.New(t)
	r.Equal("central", sanitize("central"))
	r.Equal("my_repo_1", sanitize("my/repo:1"))
	r.Equal("_", sanitize(".."))
}
