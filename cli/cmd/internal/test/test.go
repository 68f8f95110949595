// Package test runs the root command in tests against repositories on the local file system.
package test

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/uklance/gradle-dependency-export/bindings/go/coordinate"
	"github.com/uklance/gradle-dependency-export/bindings/go/repository"
	clicmd "github.com/uklance/gradle-dependency-export/cli/cmd"
)

type Option func(*cobra.Command)

func WithArgs(args ...string) Option {
	return func(cmd *cobra.Command) {
		cmd.SetArgs(args)
	}
}

func WithOutput(w io.Writer) Option {
	return func(cmd *cobra.Command) {
		cmd.SetOut(w)
	}
}

func WithErrorOutput(w io.Writer) Option {
	return func(cmd *cobra.Command) {
		cmd.SetErr(w)
	}
}

// Run executes a fresh root command.
func Run(t *testing.T, opts ...Option) (*cobra.Command, error) {
	t.Helper()
	cmd := clicmd.New()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	for _, opt := range opts {
		opt(cmd)
	}
	return cmd, cmd.ExecuteContext(t.Context())
}

// LocalRepository writes the given models, keyed by "<groupId>:<artifactId>:<version>",
// into a new directory in repository layout.
func LocalRepository(t *testing.T, models map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for ref, content := range models {
		c, err := coordinate.Parse(ref)
		require.NoError(t, err)
		path := filepath.Join(root, filepath.FromSlash(repository.Path(c, coordinate.ModelPackaging)))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
	return root
}

// Config writes a configuration using localRepository and an empty remote repository.
func Config(t *testing.T, localRepository string) string {
	t.Helper()
	remote := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(remote.Close)

	dir := t.TempDir()
	path := filepath.Join(dir, "pomresolve.yaml")
	content := fmt.Sprintf(`type: resolver.config.gradle-dependency-export/v1
localRepository: %q
cacheDir: %q
repositories:
  - name: remote
    url: %s
`, localRepository, filepath.Join(dir, "cache"), remote.URL)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// Pom renders a minimal project model.
func Pom(c string, parent string, imports ...string) string {
	gav, err := coordinate.Parse(c)
	if err != nil {
		panic(err)
	}
	pom := `<project xmlns="http://maven.apache.org/POM/4.0.0"><modelVersion>4.0.0</modelVersion>`
	if parent != "" {
		p, err := coordinate.Parse(parent)
		if err != nil {
			panic(err)
		}
		pom += fmt.Sprintf("<parent><groupId>%s</groupId><artifactId>%s</artifactId><version>%s</version></parent>",
			p.GroupID, p.ArtifactID, p.Version)
	}
	pom += fmt.Sprintf("<groupId>%s</groupId><artifactId>%s</artifactId><version>%s</version><packaging>pom</packaging>",
		gav.GroupID, gav.ArtifactID, gav.Version)
	pom += "<dependencyManagement><dependencies>"
	for _, imp := range imports {
		i, err := coordinate.Parse(imp)
		if err != nil {
			panic(err)
		}
		pom += fmt.Sprintf("<dependency><groupId>%s</groupId><artifactId>%s</artifactId><version>%s</version>"+
			"<type>pom</type><scope>import</scope></dependency>", i.GroupID, i.ArtifactID, i.Version)
	}
	return pom + "</dependencies></dependencyManagement></project>"
}
