// Package providers assembles the repositories a coordinate is looked up in:
// the local repository first, followed by the remote repositories routed to by
// the path matcher rules, or all remote repositories if no rule matches.
package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"sync"

	"github.com/cyberphone/json-canonicalization/go/src/webpki.org/jsoncanonicalizer"
	slogcontext "github.com/veqryn/slog-context"

	"github.com/uklance/gradle-dependency-export/bindings/go/coordinate"
	"github.com/uklance/gradle-dependency-export/bindings/go/credentials"
	"github.com/uklance/gradle-dependency-export/bindings/go/repository"
	"github.com/uklance/gradle-dependency-export/bindings/go/repository/pathmatcher"
)

// Options configures the creation of a Provider.
type Options struct {
	// Specs are the remote repositories in default lookup order.
	Specs []repository.Spec
	// Rules route groups to subsets of Specs, referenced by name.
	Rules []pathmatcher.Rule
	// Credentials resolves credentials for remote repositories. Optional.
	Credentials credentials.Resolver
	// HTTPClient is shared by all remote repositories. Defaults to repository.NewHTTPClient().
	HTTPClient *http.Client
	// CacheDir receives downloads of remote repositories, one subdirectory per repository.
	CacheDir string
	// LocalRepository is consulted before any remote repository if set.
	LocalRepository string
	SkipChecksums   bool
}

// Provider returns the repository chain for a coordinate. Remote repository instances
// are created on first use and cached by the canonical JSON of their repository.Spec.
type Provider struct {
	specs        map[string]repository.Spec
	order        []string
	specProvider *pathmatcher.SpecProvider
	local        repository.Repository
	credentials  credentials.Resolver
	client       *http.Client
	cacheDir     string
	skipChecksum bool

	lock      sync.RWMutex
	repoCache map[string]repository.Repository
}

// New creates a Provider based on the provided options.
func New(ctx context.Context, opts Options) (*Provider, error) {
	if len(opts.Specs) > 0 && opts.CacheDir == "" {
		return nil, fmt.Errorf("cache directory is required for remote repositories")
	}

	p := &Provider{
		specs:        make(map[string]repository.Spec, len(opts.Specs)),
		credentials:  opts.Credentials,
		client:       opts.HTTPClient,
		cacheDir:     opts.CacheDir,
		skipChecksum: opts.SkipChecksums,
		repoCache:    make(map[string]repository.Repository),
	}
	if p.client == nil {
		p.client = repository.NewHTTPClient()
	}

	for _, spec := range opts.Specs {
		if spec.Type == "" {
			spec.Type = repository.TypeRemote
		}
		if !spec.Type.Equal(repository.TypeRemote) {
			return nil, fmt.Errorf("repository %q has unsupported type %q", spec.Name, spec.Type)
		}
		if _, dup := p.specs[spec.Name]; dup {
			return nil, fmt.Errorf("repository %q is defined more than once", spec.Name)
		}
		p.specs[spec.Name] = spec
		p.order = append(p.order, spec.Name)
	}

	for index, rule := range opts.Rules {
		for _, name := range rule.Repositories {
			if _, ok := p.specs[name]; !ok {
				return nil, fmt.Errorf("rule index %d references unknown repository %q", index, name)
			}
		}
	}
	specProvider, err := pathmatcher.NewSpecProvider(ctx, opts.Rules)
	if err != nil {
		return nil, err
	}
	p.specProvider = specProvider

	if opts.LocalRepository != "" {
		local, err := repository.NewLocal("local", opts.LocalRepository)
		if err != nil {
			return nil, err
		}
		slogcontext.FromCtx(ctx).DebugContext(ctx, "using local repository",
			slog.String("realm", "repository"),
			slog.String("root", local.Root()),
		)
		p.local = local
	}

	return p, nil
}

// RepositoryFor returns the chain of repositories c is looked up in.
func (p *Provider) RepositoryFor(ctx context.Context, c coordinate.Coordinate) (repository.Repository, error) {
	names, err := p.specProvider.RepositoriesFor(ctx, c)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		names = p.order
	case err != nil:
		return nil, fmt.Errorf("getting repositories for %s failed: %w", c, err)
	}

	repos := make([]repository.Repository, 0, len(names)+1)
	if p.local != nil {
		repos = append(repos, p.local)
	}
	for _, name := range names {
		repo, err := p.getRepository(ctx, p.specs[name])
		if err != nil {
			return nil, err
		}
		repos = append(repos, repo)
	}

	chainNames := make([]string, 0, len(repos))
	for _, repo := range repos {
		chainNames = append(chainNames, repo.Name())
	}
	return repository.NewChain(strings.Join(chainNames, ","), repos...), nil
}

// getRepository returns a cached repository for spec, or creates a new one.
// It handles credential resolution and caching internally.
func (p *Provider) getRepository(ctx context.Context, spec repository.Spec) (repository.Repository, error) {
	specdata, err := json.Marshal(&spec)
	if err != nil {
		return nil, fmt.Errorf("marshaling repository to json failed: %w", err)
	}
	specdata, err = jsoncanonicalizer.Transform(specdata)
	if err != nil {
		return nil, fmt.Errorf("canonicalizing repository json failed: %w", err)
	}
	cacheKey := string(specdata)

	p.lock.RLock()
	if repo, found := p.repoCache[cacheKey]; found {
		p.lock.RUnlock()
		return repo, nil
	}
	p.lock.RUnlock()

	p.lock.Lock()
	defer p.lock.Unlock()
	if repo, found := p.repoCache[cacheKey]; found {
		return repo, nil
	}

	logger := slogcontext.FromCtx(ctx).With(slog.String("realm", "repository"))
	var credMap map[string]string
	if p.credentials != nil {
		identity, err := credentials.IdentityForURL(spec.URL)
		if err != nil {
			return nil, err
		}
		if credMap, err = p.credentials.Resolve(ctx, identity); err != nil {
			if !errors.Is(err, credentials.ErrNotFound) {
				return nil, fmt.Errorf("resolving credentials for repository %q failed: %w", spec.Name, err)
			}
			logger.DebugContext(ctx, "no credentials for repository", slog.String("repository", spec.Name))
		}
	}

	repo, err := repository.NewRemote(spec.Name, spec.URL, p.cacheDirFor(spec.Name),
		repository.WithHTTPClient(p.client),
		repository.WithCredentials(credMap),
		repository.WithSkipChecksums(p.skipChecksum),
	)
	if err != nil {
		return nil, fmt.Errorf("creating repository %q failed: %w", spec.Name, err)
	}
	p.repoCache[cacheKey] = repo
	return repo, nil
}

func (p *Provider) cacheDirFor(name string) string {
	return filepath.Join(p.cacheDir, sanitize(name))
}

func sanitize(name string) string {
	if name == "." || name == ".." {
		return "_"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, name)
}
