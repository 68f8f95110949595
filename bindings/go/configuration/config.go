// Package configuration contains the configuration of the model resolver: the
// repositories models are fetched from, the routing of groups to repositories, the
// credentials of remote repositories and the HTTP transport settings.
//
// A configuration document looks like
//
//	type: resolver.config.gradle-dependency-export/v1
//	localRepository: ~/.m2/repository
//	repositories:
//	  - name: central
//	    url: https://repo.maven.apache.org/maven2
//	  - name: internal
//	    url: https://nexus.example.com/repository/releases
//	resolvers:
//	  - groupPattern: com.example.**
//	    repositories: [internal]
//	credentials:
//	  - repository: internal
//	    username: deployer
//	    password: secret
//	http:
//	  timeout: 30s
package configuration

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/uklance/gradle-dependency-export/bindings/go/runtime"
)

const (
	ConfigType = "resolver.config.gradle-dependency-export"
	Version    = "v1"

	// EnvConfig holds a list of configuration files separated by os.PathListSeparator.
	EnvConfig = "POMRESOLVE_CONFIG"

	CentralName = "central"
	CentralURL  = "https://repo.maven.apache.org/maven2"
)

// Config is the root configuration document.
type Config struct {
	Type runtime.Type `json:"type"`

	// LocalRepository is a directory in repository layout consulted before any remote repository.
	// A leading "~/" is expanded to the home directory.
	LocalRepository string `json:"localRepository,omitempty"`

	// CacheDir receives the models downloaded from remote repositories.
	CacheDir string `json:"cacheDir,omitempty"`

	Repositories []Repository `json:"repositories,omitempty"`

	// Resolvers route groups to a subset of the repositories. The first matching resolver wins,
	// coordinates without a matching resolver are looked up in all repositories.
	Resolvers []Resolver `json:"resolvers,omitempty"`

	Credentials []Credential `json:"credentials,omitempty"`

	HTTP *HTTP `json:"http,omitempty"`
}

// Repository is a remote repository in repository layout.
type Repository struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Resolver routes coordinates to repositories.
type Resolver struct {
	// GroupPattern is a glob over the group id with "." as separator,
	// e.g. "org.apache.*" or "com.example.**".
	GroupPattern string `json:"groupPattern"`
	// VersionConstraint is an optional semantic version constraint such as ">= 2.0".
	VersionConstraint string `json:"versionConstraint,omitempty"`
	// Repositories are names of configured repositories, tried in order.
	Repositories []string `json:"repositories"`
}

// Credential holds the credentials for a configured repository.
// A token takes precedence over username and password.
type Credential struct {
	Repository string `json:"repository"`
	Username   string `json:"username,omitempty"`
	Password   string `json:"password,omitempty"`
	Token      string `json:"token,omitempty"`
}

// Default returns the configuration used if no configuration file is given:
// Maven Central as the only remote repository.
func Default() *Config {
	cfg := &Config{
		Type: runtime.NewVersionedType(ConfigType, Version),
		Repositories: []Repository{
			{Name: CentralName, URL: CentralURL},
		},
	}
	cfg.Complete()
	return cfg
}

// Complete fills in defaults for all unset fields.
func (c *Config) Complete() {
	if c.Type == "" {
		c.Type = runtime.NewVersionedType(ConfigType, Version)
	}
	if c.LocalRepository == "" {
		if home, err := os.UserHomeDir(); err == nil {
			c.LocalRepository = filepath.Join(home, ".m2", "repository")
		}
	} else {
		c.LocalRepository = expandHome(c.LocalRepository)
	}
	if c.CacheDir == "" {
		if dir, err := os.UserCacheDir(); err == nil {
			c.CacheDir = filepath.Join(dir, "pomresolve")
		} else {
			c.CacheDir = filepath.Join(os.TempDir(), "pomresolve")
		}
	} else {
		c.CacheDir = expandHome(c.CacheDir)
	}
	if len(c.Repositories) == 0 {
		c.Repositories = []Repository{{Name: CentralName, URL: CentralURL}}
	}
	c.HTTP = MergeHTTP(DefaultHTTP(), c.HTTP)
}

// RepositoryByName returns the configured repository with the given name.
func (c *Config) RepositoryByName(name string) (Repository, bool) {
	for _, repo := range c.Repositories {
		if repo.Name == name {
			return repo, true
		}
	}
	return Repository{}, false
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
