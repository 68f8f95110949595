package credentials_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/uklance/gradle-dependency-export/bindings/go/credentials"
	"github.com/uklance/gradle-dependency-export/bindings/go/runtime"
)

func TestStaticCredentialsResolver(t *testing.T) {
	credMap := map[string]map[string]string{
		"hostname=repo.example.com,type=MavenRepository": {
			"username": "testuser",
			"password": "testpass",
		},
		"hostname=nexus.example.com,path=repository/*,type=MavenRepository": {
			"token": "nexustoken",
		},
	}

	resolver, err := credentials.NewStaticCredentialsResolver(credMap)
	require.NoError(t, err)

	t.Run("resolve existing credentials", func(t *testing.T) {
		r := require.New(t)
		identity := runtime.Identity{
			"type":     "MavenRepository",
			"hostname": "repo.example.com",
		}
		creds, err := resolver.Resolve(t.Context(), identity)
		r.NoError(err)
		r.Equal("testuser", creds["username"])
		r.Equal("testpass", creds["password"])
	})

	t.Run("resolve by path pattern", func(t *testing.T) {
		r := require.New(t)
		identity := runtime.Identity{
			"type":     "MavenRepository",
			"hostname": "nexus.example.com",
			"path":     "repository/maven-public",
		}
		creds, err := resolver.Resolve(t.Context(), identity)
		r.NoError(err)
		r.Equal("nexustoken", creds[credentials.CredentialKeyToken])
	})

	t.Run("resolve not found", func(t *testing.T) {
		r := require.New(t)
		identity := runtime.Identity{
			"type":     "MavenRepository",
			"hostname": "notfound.example.com",
		}
		creds, err := resolver.Resolve(t.Context(), identity)
		r.ErrorIs(err, credentials.ErrNotFound)
		r.Nil(creds)
	})

	t.Run("returned credentials are copies", func(t *testing.T) {
		r := require.New(t)
		identity := runtime.Identity{"type": "MavenRepository", "hostname": "repo.example.com"}
		creds, err := resolver.Resolve(t.Context(), identity)
		r.NoError(err)
		creds["username"] = "changed"
		creds, err = resolver.Resolve(t.Context(), identity)
		r.NoError(err)
		r.Equal("testuser", creds["username"])
	})

	t.Run("concurrent access", func(t *testing.T) {
		var wg sync.WaitGroup
		for range 10 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				identity := runtime.Identity{
					"type":     "MavenRepository",
					"hostname": "repo.example.com",
				}
				creds, err := resolver.Resolve(t.Context(), identity)
				require.NoError(t, err)
				require.Equal(t, "testuser", creds["username"])
			}()
		}
		wg.Wait()
	})
}

func TestNewStaticCredentialsResolver_InvalidIdentity(t *testing.T) {
	_, err := credentials.NewStaticCredentialsResolver(map[string]map[string]string{
		"hostname": {"username": "user"},
	})
	require.Error(t, err)
}

func TestIdentityForURL(t *testing.T) {
	tests := []struct {
		url     string
		want    runtime.Identity
		wantErr bool
	}{
		{
			url: "https://repo.maven.apache.org/maven2/",
			want: runtime.Identity{
				"type":     "MavenRepository",
				"scheme":   "https",
				"hostname": "repo.maven.apache.org",
				"path":     "maven2",
			},
		},
		{
			url: "http://localhost:8081/repository/releases",
			want: runtime.Identity{
				"type":     "MavenRepository",
				"scheme":   "http",
				"hostname": "localhost",
				"port":     "8081",
				"path":     "repository/releases",
			},
		},
		{url: "file:///tmp/repo", wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.url, func(t *testing.T) {
			r := require.New(t)
			identity, err := credentials.IdentityForURL(tc.url)
			if tc.wantErr {
				r.Error(err)
				return
			}
			r.NoError(err)
			r.Equal(tc.want, identity)
		})
	}
}

func TestParseIdentity(t *testing.T) {
	r := require.New(t)
	identity, err := credentials.ParseIdentity("type=MavenRepository, hostname=repo.example.com")
	r.NoError(err)
	r.Equal(runtime.Identity{"type": "MavenRepository", "hostname": "repo.example.com"}, identity)
	r.Equal("hostname=repo.example.com,type=MavenRepository", identity.String())

	empty, err := credentials.ParseIdentity("")
	r.NoError(err)
	r.Empty(empty)
}
