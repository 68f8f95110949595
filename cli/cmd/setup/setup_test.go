package setup_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/uklance/gradle-dependency-export/bindings/go/configuration"
	"github.com/uklance/gradle-dependency-export/bindings/go/credentials"
	"github.com/uklance/gradle-dependency-export/cli/cmd/setup"
)

func TestCredentials(t *testing.T) {
	r := require.New(t)
	cfg := &configuration.Config{
		Repositories: []configuration.Repository{
			{Name: "internal", URL: "https://nexus.example.com/repository/releases"},
			{Name: "central", URL: configuration.CentralURL},
		},
		Credentials: []configuration.Credential{
			{Repository: "internal", Username: "deployer", Password: "secret"},
		},
	}
	resolver, err := setup.Credentials(cfg)
	r.NoError(err)

	identity, err := credentials.IdentityForURL("https://nexus.example.com/repository/releases")
	r.NoError(err)
	creds, err := resolver.Resolve(t.Context(), identity)
	r.NoError(err)
	r.Equal(map[string]string{
		credentials.CredentialKeyUsername: "deployer",
		credentials.CredentialKeyPassword: "secret",
	}, creds)

	central, err := credentials.IdentityForURL(configuration.CentralURL)
	r.NoError(err)
	_, err = resolver.Resolve(t.Context(), central)
	r.ErrorIs(err, credentials.ErrNotFound)

	cfg.Credentials = append(cfg.Credentials, configuration.Credential{Repository: "unknown", Token: "t"})
	_, err = setup.Credentials(cfg)
	r.ErrorContains(err, "unknown repository")
}

func TestNewRuntime(t *testing.T) {
	r := require.New(t)
	t.Setenv(configuration.EnvConfig, "")
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	rt, err := setup.NewRuntime(t.Context(), setup.Options{ExportDir: t.TempDir()})
	r.NoError(err)
	r.NotNil(rt.Resolver)
	r.NotNil(rt.Export)
	r.Equal([]configuration.Repository{{Name: configuration.CentralName, URL: configuration.CentralURL}}, rt.Config.Repositories)
	r.Empty(rt.Engine.Names())
}
