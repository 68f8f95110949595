// Package setup wires the configuration into a ready to use model resolver.
package setup

import (
	"context"
	"fmt"
	"log/slog"

	slogcontext "github.com/veqryn/slog-context"

	"github.com/uklance/gradle-dependency-export/bindings/go/configuration"
	"github.com/uklance/gradle-dependency-export/bindings/go/credentials"
	"github.com/uklance/gradle-dependency-export/bindings/go/fetch"
	"github.com/uklance/gradle-dependency-export/bindings/go/listener"
	"github.com/uklance/gradle-dependency-export/bindings/go/repository"
	"github.com/uklance/gradle-dependency-export/bindings/go/repository/pathmatcher"
	"github.com/uklance/gradle-dependency-export/bindings/go/repository/providers"
	"github.com/uklance/gradle-dependency-export/bindings/go/resolver"
)

// DefaultTaskPrefix prefixes the names of the fetch units created by the CLI.
const DefaultTaskPrefix = "pomresolve"

type Options struct {
	// ConfigPaths are merged in order. Without paths the files listed in
	// configuration.EnvConfig are used, and the default configuration without either.
	ConfigPaths []string
	TaskPrefix  string
	// ExportDir enables exporting every resolved model if set.
	ExportDir     string
	SkipChecksums bool
	UserAgent     string
}

// Runtime holds everything a command needs to resolve models.
type Runtime struct {
	Config   *configuration.Config
	Engine   *fetch.Engine
	Resolver *resolver.Resolver
	Recorder *listener.Recorder
	// Export is nil unless Options.ExportDir is set.
	Export *listener.Export
}

func NewRuntime(ctx context.Context, opts Options) (*Runtime, error) {
	paths := opts.ConfigPaths
	if len(paths) == 0 {
		paths = configuration.PathsFromEnv()
	}
	cfg, err := configuration.Load(paths...)
	if err != nil {
		return nil, err
	}
	slogcontext.FromCtx(ctx).DebugContext(ctx, "loaded configuration",
		slog.Any("files", paths),
		slog.String("localRepository", cfg.LocalRepository),
		slog.Int("repositories", len(cfg.Repositories)),
	)

	creds, err := Credentials(cfg)
	if err != nil {
		return nil, err
	}

	providerOpts := providers.Options{
		Credentials:     creds,
		HTTPClient:      repository.NewHTTPClient(repository.WithHTTPConfig(cfg.HTTP), repository.WithHTTPUserAgent(opts.UserAgent)),
		CacheDir:        cfg.CacheDir,
		LocalRepository: cfg.LocalRepository,
		SkipChecksums:   opts.SkipChecksums,
	}
	for _, repo := range cfg.Repositories {
		providerOpts.Specs = append(providerOpts.Specs, repository.Spec{Type: repository.TypeRemote, Name: repo.Name, URL: repo.URL})
	}
	for _, rule := range cfg.Resolvers {
		providerOpts.Rules = append(providerOpts.Rules, pathmatcher.Rule{
			GroupPattern:      rule.GroupPattern,
			VersionConstraint: rule.VersionConstraint,
			Repositories:      rule.Repositories,
		})
	}
	provider, err := providers.New(ctx, providerOpts)
	if err != nil {
		return nil, fmt.Errorf("could not create repository provider: %w", err)
	}

	engine, err := fetch.NewEngine(provider)
	if err != nil {
		return nil, err
	}

	rt := &Runtime{
		Config:   cfg,
		Engine:   engine,
		Recorder: &listener.Recorder{},
	}
	listeners := []resolver.Listener{listener.Log(slog.LevelInfo), listener.Metrics(), rt.Recorder}
	if opts.ExportDir != "" {
		if rt.Export, err = listener.NewExport(opts.ExportDir); err != nil {
			return nil, err
		}
		listeners = append(listeners, rt.Export)
	}

	prefix := opts.TaskPrefix
	if prefix == "" {
		prefix = DefaultTaskPrefix
	}
	if rt.Resolver, err = resolver.New(prefix, engine, listener.Multi(listeners...)); err != nil {
		return nil, err
	}
	return rt, nil
}

// Credentials builds a static resolver from the configured credentials, keyed by the
// consumer identity of the repository they belong to.
func Credentials(cfg *configuration.Config) (*credentials.StaticCredentialsResolver, error) {
	credMap := make(map[string]map[string]string, len(cfg.Credentials))
	for _, cred := range cfg.Credentials {
		repo, ok := cfg.RepositoryByName(cred.Repository)
		if !ok {
			return nil, fmt.Errorf("credentials reference unknown repository %q", cred.Repository)
		}
		identity, err := credentials.IdentityForURL(repo.URL)
		if err != nil {
			return nil, err
		}
		attrs := make(map[string]string, 3)
		if cred.Username != "" {
			attrs[credentials.CredentialKeyUsername] = cred.Username
		}
		if cred.Password != "" {
			attrs[credentials.CredentialKeyPassword] = cred.Password
		}
		if cred.Token != "" {
			attrs[credentials.CredentialKeyToken] = cred.Token
		}
		credMap[identity.String()] = attrs
	}
	return credentials.NewStaticCredentialsResolver(credMap)
}

// AnnotationSkipRuntime marks commands that do not resolve models.
const AnnotationSkipRuntime = "pomresolve.skip-runtime"
