// Package pathmatcher routes coordinates to repositories by matching the group id
// against glob patterns and the version against semantic version constraints.
package pathmatcher

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Masterminds/semver/v3"
	"github.com/gobwas/glob"
	slogcontext "github.com/veqryn/slog-context"

	"github.com/uklance/gradle-dependency-export/bindings/go/coordinate"
	"github.com/uklance/gradle-dependency-export/bindings/go/repository"
)

// Rule routes all coordinates whose group id matches GroupPattern and whose version
// satisfies VersionConstraint to Repositories.
type Rule struct {
	// GroupPattern is a github.com/gobwas/glob pattern with "." as separator,
	// so "org.apache.*" matches "org.apache.commons" but not "org.apache.commons.io",
	// while "org.apache.**" matches both.
	GroupPattern string
	// VersionConstraint is optional. Versions that are no semantic versions never
	// satisfy a constraint.
	VersionConstraint string
	Repositories      []string
}

type compiledRule struct {
	Rule
	group      glob.Glob
	constraint *semver.Constraints
}

// SpecProvider returns the repositories of the first rule matching a coordinate.
// The list of rules is immutable after creation.
type SpecProvider struct {
	rules []compiledRule
}

// NewSpecProvider compiles the given rules.
func NewSpecProvider(_ context.Context, rules []Rule) (*SpecProvider, error) {
	compiled := make([]compiledRule, 0, len(rules))
	for index, rule := range rules {
		g, err := glob.Compile(rule.GroupPattern, '.')
		if err != nil {
			return nil, fmt.Errorf("failed to compile glob pattern %q in rule index %d: %w", rule.GroupPattern, index, err)
		}
		cr := compiledRule{Rule: rule, group: g}
		if rule.VersionConstraint != "" {
			if cr.constraint, err = semver.NewConstraint(rule.VersionConstraint); err != nil {
				return nil, fmt.Errorf("failed to parse version constraint %q in rule index %d: %w", rule.VersionConstraint, index, err)
			}
		}
		compiled = append(compiled, cr)
	}
	return &SpecProvider{rules: compiled}, nil
}

// RepositoriesFor returns the repository names of the first rule matching c.
// If no rule matches, repository.ErrNotFound is returned.
func (p *SpecProvider) RepositoriesFor(ctx context.Context, c coordinate.Coordinate) ([]string, error) {
	logger := slogcontext.FromCtx(ctx).With(slog.String("realm", "repository"))
	logger.Log(ctx, slog.LevelDebug, "resolving repositories for coordinate",
		slog.String("coordinate", c.String()),
		slog.Int("rules", len(p.rules)),
	)

	var version *semver.Version
	for index, rule := range p.rules {
		if !rule.group.Match(c.GroupID) {
			continue
		}
		if rule.constraint != nil {
			if version == nil {
				v, err := semver.NewVersion(c.Version)
				if err != nil {
					logger.Log(ctx, slog.LevelDebug, "version is no semantic version, skipping constrained rule",
						slog.Int("index", index),
						slog.String("version", c.Version),
					)
					continue
				}
				version = v
			}
			if !rule.constraint.Check(version) {
				continue
			}
		}
		logger.Log(ctx, slog.LevelDebug, "matched rule",
			slog.Int("index", index),
			slog.String("pattern", rule.GroupPattern),
			slog.Any("repositories", rule.Repositories),
		)
		return append([]string(nil), rule.Repositories...), nil
	}

	logger.Log(ctx, slog.LevelDebug, "no matching rule found for coordinate", slog.String("coordinate", c.String()))
	return nil, repository.ErrNotFound
}
