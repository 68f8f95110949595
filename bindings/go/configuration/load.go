package configuration

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/gobwas/glob"
	"sigs.k8s.io/yaml"

	"github.com/uklance/gradle-dependency-export/bindings/go/runtime"
)

// Decode parses a YAML or JSON configuration document and validates it against the schema.
// An unversioned type is replaced by the current version, no other defaults are applied.
func Decode(data []byte) (*Config, error) {
	jsonData, err := yaml.YAMLToJSON(data)
	if err != nil {
		return nil, fmt.Errorf("converting configuration to json failed: %w", err)
	}
	if err := validateJSON(jsonData); err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(jsonData, &cfg); err != nil {
		return nil, fmt.Errorf("decoding configuration failed: %w", err)
	}
	typ, err := runtime.Parse(cfg.Type.String())
	if err != nil {
		return nil, err
	}
	if typ.GetKind() != ConfigType {
		return nil, fmt.Errorf("unsupported configuration type %q", typ)
	}
	// the unversioned type is an alias of the current version
	if !typ.HasVersion() {
		cfg.Type = runtime.NewVersionedType(ConfigType, Version)
	}
	return &cfg, nil
}

// Load reads, merges and completes the given configuration files.
// Without files the Default configuration is returned.
func Load(paths ...string) (*Config, error) {
	if len(paths) == 0 {
		return Default(), nil
	}
	configs := make([]*Config, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading configuration %q failed: %w", path, err)
		}
		cfg, err := Decode(data)
		if err != nil {
			return nil, fmt.Errorf("loading configuration %q failed: %w", path, err)
		}
		if cfg.LocalRepository != "" {
			cfg.LocalRepository = relativeTo(path, cfg.LocalRepository)
		}
		if cfg.CacheDir != "" {
			cfg.CacheDir = relativeTo(path, cfg.CacheDir)
		}
		configs = append(configs, cfg)
	}
	merged := Merge(configs...)
	merged.Complete()
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return merged, nil
}

// PathsFromEnv returns the configuration files listed in EnvConfig.
func PathsFromEnv() []string {
	var paths []string
	for _, path := range filepath.SplitList(os.Getenv(EnvConfig)) {
		if path = strings.TrimSpace(path); path != "" {
			paths = append(paths, path)
		}
	}
	return paths
}

// Merge merges the provided configs into a single config.
// Scalars are taken from the last config setting them. Lists are appended,
// except for repositories where a later repository replaces an earlier one with the same name.
func Merge(configs ...*Config) *Config {
	merged := &Config{}
	var https []*HTTP
	for _, config := range configs {
		if config == nil {
			continue
		}
		if config.Type != "" {
			merged.Type = config.Type
		}
		if config.LocalRepository != "" {
			merged.LocalRepository = config.LocalRepository
		}
		if config.CacheDir != "" {
			merged.CacheDir = config.CacheDir
		}
		for _, repo := range config.Repositories {
			replaced := false
			for i := range merged.Repositories {
				if merged.Repositories[i].Name == repo.Name {
					merged.Repositories[i] = repo
					replaced = true
					break
				}
			}
			if !replaced {
				merged.Repositories = append(merged.Repositories, repo)
			}
		}
		merged.Resolvers = append(merged.Resolvers, config.Resolvers...)
		merged.Credentials = append(merged.Credentials, config.Credentials...)
		https = append(https, config.HTTP)
	}
	if len(https) > 0 {
		merged.HTTP = MergeHTTP(https...)
	}
	return merged
}

// Validate checks the references between the sections of a configuration.
func (c *Config) Validate() error {
	var errs []error
	names := make(map[string]struct{}, len(c.Repositories))
	for i, repo := range c.Repositories {
		if repo.Name == "" {
			errs = append(errs, fmt.Errorf("repository %d has no name", i))
			continue
		}
		if _, dup := names[repo.Name]; dup {
			errs = append(errs, fmt.Errorf("repository %q is defined more than once", repo.Name))
		}
		names[repo.Name] = struct{}{}
		u, err := url.Parse(repo.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, fmt.Errorf("repository %q has invalid url %q", repo.Name, repo.URL))
		}
	}
	for i, resolver := range c.Resolvers {
		if _, err := glob.Compile(resolver.GroupPattern, '.'); err != nil {
			errs = append(errs, fmt.Errorf("resolver %d has invalid group pattern %q: %w", i, resolver.GroupPattern, err))
		}
		if resolver.VersionConstraint != "" {
			if _, err := semver.NewConstraint(resolver.VersionConstraint); err != nil {
				errs = append(errs, fmt.Errorf("resolver %d has invalid version constraint %q: %w", i, resolver.VersionConstraint, err))
			}
		}
		for _, name := range resolver.Repositories {
			if _, ok := names[name]; !ok {
				errs = append(errs, fmt.Errorf("resolver %d references unknown repository %q", i, name))
			}
		}
	}
	for _, cred := range c.Credentials {
		if _, ok := names[cred.Repository]; !ok {
			errs = append(errs, fmt.Errorf("credentials reference unknown repository %q", cred.Repository))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

func relativeTo(configPath, path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(filepath.Dir(configPath), path)
}
