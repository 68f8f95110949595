package resolver_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/uklance/gradle-dependency-export/bindings/go/coordinate"
	"github.com/uklance/gradle-dependency-export/bindings/go/resolver"
)

// fakeFetchService serves files by notation and records every unit it creates.
type fakeFetchService struct {
	mu    sync.Mutex
	files map[string][]string
	units []*fakeUnit
	names map[string]struct{}
}

func newFakeFetchService() *fakeFetchService {
	return &fakeFetchService{
		files: map[string][]string{},
		names: map[string]struct{}{},
	}
}

func (f *fakeFetchService) serve(t *testing.T, c coordinate.Coordinate, content string) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), c.GroupID, c.ArtifactID, c.Version)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, fmt.Sprintf("%s-%s.pom", c.ArtifactID, c.Version))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[c.Notation(coordinate.ModelPackaging)] = []string{path}
	return path
}

func (f *fakeFetchService) CreateFetchUnit(_ context.Context, name string) (resolver.FetchUnit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.names[name]; exists {
		return nil, fmt.Errorf("fetch unit %q already exists", name)
	}
	f.names[name] = struct{}{}
	u := &fakeUnit{name: name, service: f, transitive: true}
	f.units = append(f.units, u)
	return u, nil
}

func (f *fakeFetchService) recorded() []*fakeUnit {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*fakeUnit(nil), f.units...)
}

type fakeUnit struct {
	name       string
	service    *fakeFetchService
	mu         sync.Mutex
	transitive bool
	notations  []string
	resolved   int
}

func (u *fakeUnit) SetTransitive(transitive bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.transitive = transitive
}

func (u *fakeUnit) AddDependency(notation string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.notations = append(u.notations, notation)
	return nil
}

func (u *fakeUnit) ResolveToSingleFile(_ context.Context) (string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.resolved++
	var files []string
	u.service.mu.Lock()
	for _, n := range u.notations {
		files = append(files, u.service.files[n]...)
	}
	u.service.mu.Unlock()
	if len(files) != 1 {
		return "", fmt.Errorf("expected exactly one file for unit %q, got %d", u.name, len(files))
	}
	return files[0], nil
}

type recordingListener struct {
	mu     sync.Mutex
	events []resolver.Event
}

func (l *recordingListener) OnResolveModel(_ context.Context, event resolver.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
}

func (l *recordingListener) recorded() []resolver.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]resolver.Event(nil), l.events...)
}

func readAll(t *testing.T, rc io.ReadCloser, err error) string {
	t.Helper()
	require.NoError(t, err)
	defer func() { require.NoError(t, rc.Close()) }()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	return string(data)
}

const parentPom = `<project><groupId>org.example</groupId><artifactId>parent</artifactId><version>1.0</version></project>`

func TestNew_RequiresCollaborators(t *testing.T) {
	r := require.New(t)
	fetch := newFakeFetchService()
	listener := &recordingListener{}

	_, err := resolver.New("", fetch, listener)
	r.Error(err)
	_, err = resolver.New("task", nil, listener)
	r.Error(err)
	_, err = resolver.New("task", fetch, nil)
	r.Error(err)

	res, err := resolver.New("task", fetch, listener)
	r.NoError(err)
	r.NotNil(res)
}

func TestResolveModel(t *testing.T) {
	r := require.New(t)
	ctx := t.Context()
	fetch := newFakeFetchService()
	c := coordinate.MustNew("org.example", "parent", "1.0")
	expected := fetch.serve(t, c, parentPom)
	listener := &recordingListener{}

	res, err := resolver.New("exportPoms", fetch, listener)
	r.NoError(err)

	source, err := res.ResolveModel(ctx, "org.example", "parent", "1.0")
	r.NoError(err)
	r.Equal(expected, source.Location())
	r.True(filepath.IsAbs(source.Location()))
	r.Equal("parent-1.0.pom", filepath.Base(source.Location()))

	rc, err := source.ReadCloser()
	r.Equal(parentPom, readAll(t, rc, err))

	units := fetch.recorded()
	r.Len(units, 1)
	r.Equal("exportPoms0", units[0].name)
	r.False(units[0].transitive, "fetch units must be non-transitive")
	r.Equal([]string{"org.example:parent:1.0@pom"}, units[0].notations)
	r.Equal(1, units[0].resolved)

	events := listener.recorded()
	r.Len(events, 1)
	r.Equal(resolver.Event{GroupID: "org.example", ArtifactID: "parent", Version: "1.0", File: expected}, events[0])
	r.Equal(c, events[0].Coordinate())

	_, err = os.Stat(expected)
	r.NoError(err, "the resolved file must not be removed")
}

func TestResolveModel_UnitNamesAreSequential(t *testing.T) {
	r := require.New(t)
	ctx := t.Context()
	fetch := newFakeFetchService()
	fetch.serve(t, coordinate.MustNew("g", "a", "1"), parentPom)

	res, err := resolver.New("task", fetch, &recordingListener{})
	r.NoError(err)

	for range 3 {
		_, err := res.ResolveModel(ctx, "g", "a", "1")
		r.NoError(err)
	}
	_, err = res.ResolveModel(ctx, "g", "missing", "1")
	r.Error(err)
	_, err = res.ResolveModel(ctx, "g", "a", "1")
	r.NoError(err)

	var names []string
	for _, u := range fetch.recorded() {
		names = append(names, u.name)
	}
	r.Equal([]string{"task0", "task1", "task2", "task3", "task4"}, names, "failed resolutions consume a name as well")
}

func TestResolveModel_ConcurrentUnitsAreIsolated(t *testing.T) {
	r := require.New(t)
	ctx := t.Context()
	fetch := newFakeFetchService()
	coordinates := []coordinate.Coordinate{
		coordinate.MustNew("org.example", "parent", "1.0"),
		coordinate.MustNew("org.example", "bom", "2.0"),
		coordinate.MustNew("org.example", "root", "3.0"),
	}
	for _, c := range coordinates {
		fetch.serve(t, c, c.String())
	}
	listener := &recordingListener{}
	res, err := resolver.New("concurrent", fetch, listener)
	r.NoError(err)

	const perCoordinate = 25
	eg, egctx := errgroup.WithContext(ctx)
	for i := range perCoordinate * len(coordinates) {
		c := coordinates[i%len(coordinates)]
		eg.Go(func() error {
			source, err := res.ResolveModel(egctx, c.GroupID, c.ArtifactID, c.Version)
			if err != nil {
				return err
			}
			rc, err := source.ReadCloser()
			if err != nil {
				return err
			}
			defer rc.Close()
			data, err := io.ReadAll(rc)
			if err != nil {
				return err
			}
			if string(data) != c.String() {
				return fmt.Errorf("read %q for %s", data, c)
			}
			return nil
		})
	}
	r.NoError(eg.Wait())

	units := fetch.recorded()
	r.Len(units, perCoordinate*len(coordinates), "identical coordinates are fetched again, nothing is cached")
	names := map[string]struct{}{}
	for _, u := range units {
		names[u.name] = struct{}{}
		r.Len(u.notations, 1, "unit %s was shared between resolutions", u.name)
		r.Equal(1, u.resolved)
	}
	r.Len(names, len(units), "unit names must be pairwise distinct")
	r.Len(listener.recorded(), len(units))
}

func TestResolveParentAndDependency(t *testing.T) {
	r := require.New(t)
	ctx := t.Context()
	fetch := newFakeFetchService()
	c := coordinate.MustNew("org.junit", "junit-bom", "5.10.0")
	fetch.serve(t, c, parentPom)

	res, err := resolver.New("task", fetch, &recordingListener{})
	r.NoError(err)

	direct, err := res.ResolveModel(ctx, c.GroupID, c.ArtifactID, c.Version)
	r.NoError(err)
	fromParent, err := res.ResolveParent(ctx, coordinate.Parent{GroupID: c.GroupID, ArtifactID: c.ArtifactID, Version: c.Version, RelativePath: "../pom.xml"})
	r.NoError(err)
	fromDependency, err := res.ResolveDependency(ctx, coordinate.Dependency{GroupID: c.GroupID, ArtifactID: c.ArtifactID, Version: c.Version, Type: "pom", Scope: "import"})
	r.NoError(err)

	for _, source := range []interface{ Location() string }{fromParent, fromDependency} {
		r.Equal(direct.Location(), source.Location())
	}
	rc, err := fromParent.ReadCloser()
	r.Equal(parentPom, readAll(t, rc, err))
	rc, err = fromDependency.ReadCloser()
	r.Equal(parentPom, readAll(t, rc, err))

	units := fetch.recorded()
	r.Len(units, 3)
	r.NotEqual(units[1].name, units[2].name)
	for _, u := range units {
		r.Equal([]string{"org.junit:junit-bom:5.10.0@pom"}, u.notations)
	}
}

func TestResolve_InvalidReference(t *testing.T) {
	r := require.New(t)
	ctx := t.Context()
	fetch := newFakeFetchService()
	listener := &recordingListener{}
	res, err := resolver.New("task", fetch, listener)
	r.NoError(err)

	_, err = res.ResolveParent(ctx, coordinate.Parent{GroupID: "org.example", ArtifactID: "parent"})
	r.ErrorIs(err, resolver.ErrInvalidReference)
	r.ErrorIs(err, coordinate.ErrIncompleteReference)
	var invalid *resolver.InvalidReferenceError
	r.True(errors.As(err, &invalid))
	r.Equal("parent", invalid.Kind)

	_, err = res.ResolveDependency(ctx, coordinate.Dependency{ArtifactID: "bom", Version: "1"})
	r.ErrorIs(err, resolver.ErrInvalidReference)
	r.False(errors.Is(err, resolver.ErrUnresolvableCoordinate))

	r.Empty(fetch.recorded(), "no fetch is attempted for invalid references")
	r.Empty(listener.recorded())
}

func TestResolveModel_Unresolvable(t *testing.T) {
	r := require.New(t)
	ctx := t.Context()
	fetch := newFakeFetchService()
	listener := &recordingListener{}
	res, err := resolver.New("task", fetch, listener)
	r.NoError(err)

	source, err := res.ResolveModel(ctx, "com.example", "missing", "1.0")
	r.Nil(source)
	r.ErrorIs(err, resolver.ErrUnresolvableCoordinate)

	var unresolvable *resolver.UnresolvableCoordinateError
	r.True(errors.As(err, &unresolvable))
	r.Equal(coordinate.Coordinate{GroupID: "com.example", ArtifactID: "missing", Version: "1.0"}, unresolvable.Coordinate)
	r.Equal("task0", unresolvable.Unit)
	r.Contains(err.Error(), "com.example:missing:1.0")

	r.Empty(listener.recorded(), "the listener is never notified on failure")
}

func TestResolveModel_FetchUnitCreationFailure(t *testing.T) {
	r := require.New(t)
	ctx := t.Context()
	fetch := newFakeFetchService()
	c := coordinate.MustNew("g", "a", "1")
	fetch.serve(t, c, parentPom)
	// occupy the first name in the shared namespace
	_, err := fetch.CreateFetchUnit(ctx, "task0")
	r.NoError(err)

	listener := &recordingListener{}
	res, err := resolver.New("task", fetch, listener)
	r.NoError(err)

	_, err = res.ResolveModel(ctx, c.GroupID, c.ArtifactID, c.Version)
	r.ErrorIs(err, resolver.ErrUnresolvableCoordinate)
	r.Empty(listener.recorded())

	_, err = res.ResolveModel(ctx, c.GroupID, c.ArtifactID, c.Version)
	r.NoError(err, "the counter moved on to the next name")
}

func TestResolveModel_ListenerRunsBeforeReturn(t *testing.T) {
	r := require.New(t)
	ctx := t.Context()
	fetch := newFakeFetchService()
	c := coordinate.MustNew("g", "a", "1")
	path := fetch.serve(t, c, parentPom)

	var returned bool
	var sawReturned []bool
	listener := resolver.ListenerFunc(func(_ context.Context, event resolver.Event) {
		sawReturned = append(sawReturned, returned)
		require.Equal(t, path, event.File)
	})
	res, err := resolver.New("task", fetch, listener)
	r.NoError(err)

	_, err = res.ResolveModel(ctx, c.GroupID, c.ArtifactID, c.Version)
	returned = true
	r.NoError(err)
	r.Equal([]bool{false}, sawReturned)
}

func TestAddRepository_IsIgnored(t *testing.T) {
	r := require.New(t)
	ctx := t.Context()

	resolveOnce := func(addRepositories bool) []string {
		fetch := newFakeFetchService()
		fetch.serve(t, coordinate.MustNew("g", "a", "1"), parentPom)
		res, err := resolver.New("task", fetch, &recordingListener{})
		r.NoError(err)
		if addRepositories {
			repo := resolver.Repository{ID: "snapshots", URL: "https://repo.example.com/snapshots"}
			r.NoError(res.AddRepository(ctx, repo))
			r.NoError(res.AddRepositoryReplace(ctx, repo, true))
			r.NoError(res.AddRepositoryReplace(ctx, repo, false))
		}
		_, err = res.ResolveModel(ctx, "g", "a", "1")
		r.NoError(err)

		var calls []string
		for _, u := range fetch.recorded() {
			calls = append(calls, fmt.Sprintf("%s %v %v", u.name, u.transitive, u.notations))
		}
		return calls
	}

	r.Equal(resolveOnce(false), resolveOnce(true))
}

func TestCopy_SharesCounter(t *testing.T) {
	r := require.New(t)
	ctx := t.Context()
	fetch := newFakeFetchService()
	fetch.serve(t, coordinate.MustNew("g", "a", "1"), parentPom)
	res, err := resolver.New("task", fetch, &recordingListener{})
	r.NoError(err)

	cp := res.Copy()
	r.Same(res, cp)

	_, err = res.ResolveModel(ctx, "g", "a", "1")
	r.NoError(err)
	_, err = cp.ResolveModel(ctx, "g", "a", "1")
	r.NoError(err)

	units := fetch.recorded()
	r.Equal("task0", units[0].name)
	r.Equal("task1", units[1].name)
}
