package hierarchy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	goruntime "runtime"
	"sync"

	slogcontext "github.com/veqryn/slog-context"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/uklance/gradle-dependency-export/bindings/go/coordinate"
	"github.com/uklance/gradle-dependency-export/bindings/go/modelsource"
	"github.com/uklance/gradle-dependency-export/bindings/go/resolver"
)

const Realm = "hierarchy"

// Walker discovers the model hierarchy below a root coordinate.
type Walker struct {
	Resolver resolver.ModelResolver
	// Concurrency limits the number of models resolved at the same time.
	// Defaults to the number of CPUs.
	Concurrency int
	// KeepGoing records failed references in Result.Failures instead of aborting the walk.
	// Failures of the root model and cycles always abort.
	KeepGoing bool
}

// Result is the outcome of a walk.
type Result struct {
	Root     coordinate.Coordinate
	Graph    *Graph
	Projects map[coordinate.Coordinate]*Project
	// Failures maps references that could not be resolved to the reason.
	Failures map[string]error
}

type node struct {
	done  chan struct{}
	props map[string]string
	err   error
}

type walk struct {
	*Walker
	sem   *semaphore.Weighted
	nodes sync.Map // map[string]*node

	mu     sync.Mutex
	result *Result
}

// Walk resolves the root model and, recursively, all parents and imported bills of materials.
// Every coordinate is resolved at most once per walk.
func (w *Walker) Walk(ctx context.Context, root coordinate.Coordinate) (*Result, error) {
	if w.Resolver == nil {
		return nil, errors.New("walker has no model resolver")
	}
	if err := root.Validate(); err != nil {
		return nil, err
	}
	concurrency := w.Concurrency
	if concurrency <= 0 {
		concurrency = goruntime.NumCPU()
	}
	wk := &walk{
		Walker: w,
		sem:    semaphore.NewWeighted(int64(concurrency)),
		result: &Result{
			Root:     root,
			Graph:    NewGraph(),
			Projects: make(map[coordinate.Coordinate]*Project),
			Failures: make(map[string]error),
		},
	}
	wk.result.Graph.AddVertex(root.String())

	_, err := wk.visit(ctx, root, func(ctx context.Context) (modelsource.ModelSource, error) {
		return w.Resolver.ResolveModel(ctx, root.GroupID, root.ArtifactID, root.Version)
	})
	if err != nil {
		return nil, err
	}
	return wk.result, nil
}

type resolveFunc func(ctx context.Context) (modelsource.ModelSource, error)

// visit processes c once; concurrent and later visitors wait for the first one and share its outcome.
func (wk *walk) visit(ctx context.Context, c coordinate.Coordinate, resolve resolveFunc) (map[string]string, error) {
	actual, loaded := wk.nodes.LoadOrStore(c.String(), &node{done: make(chan struct{})})
	n := actual.(*node)
	if loaded {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-n.done:
		}
		return n.props, n.err
	}
	defer close(n.done)
	n.props, n.err = wk.process(ctx, c, resolve)
	return n.props, n.err
}

func (wk *walk) process(ctx context.Context, c coordinate.Coordinate, resolve resolveFunc) (map[string]string, error) {
	logger := slogcontext.FromCtx(ctx).With(slog.String("realm", Realm), slog.String("coordinate", c.String()))

	if err := wk.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	src, err := resolve(ctx)
	wk.sem.Release(1)
	if err != nil {
		return nil, err
	}

	project, err := ReadSource(src)
	if err != nil {
		return nil, err
	}
	if declared, err := project.Coordinate(); err != nil || declared != c {
		logger.WarnContext(ctx, "model declares a different coordinate",
			slog.String("declared", fmt.Sprintf("%s:%s:%s", project.GroupID, project.ArtifactID, project.Version)))
	}
	wk.mu.Lock()
	wk.result.Projects[c] = project
	wk.mu.Unlock()

	var inherited map[string]string
	if project.Parent != nil {
		parent := *project.Parent
		props, err := wk.reference(ctx, c, EdgeParent, parent.String(), parent.Coordinate,
			func(ctx context.Context) (modelsource.ModelSource, error) {
				return wk.Resolver.ResolveParent(ctx, parent)
			})
		if err != nil {
			return nil, err
		}
		inherited = props
	}

	props := project.EffectiveProperties(inherited)
	eg, egctx := errgroup.WithContext(ctx)
	for _, dep := range project.Imports(props) {
		eg.Go(func() error {
			_, err := wk.reference(egctx, c, EdgeImport, dep.String(), dep.Coordinate,
				func(ctx context.Context) (modelsource.ModelSource, error) {
					return wk.Resolver.ResolveDependency(ctx, dep)
				})
			return err
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	logger.DebugContext(ctx, "walked model")
	return props, nil
}

// reference follows a reference from the model from. Incomplete references are passed to
// the resolver as well so that they fail the way the resolver reports them.
func (wk *walk) reference(
	ctx context.Context,
	from coordinate.Coordinate,
	kind EdgeKind,
	ref string,
	extract func() (coordinate.Coordinate, error),
	resolve resolveFunc,
) (map[string]string, error) {
	to, err := extract()
	if err != nil {
		_, err = resolve(ctx)
		return nil, wk.fail(ctx, ref, err)
	}
	if err := wk.result.Graph.AddEdge(from.String(), to.String(), kind); err != nil {
		return nil, err
	}
	props, err := wk.visit(ctx, to, resolve)
	if err != nil {
		return nil, wk.fail(ctx, to.String(), err)
	}
	return props, nil
}

// fail decides whether a failed reference aborts the walk.
func (wk *walk) fail(ctx context.Context, ref string, err error) error {
	if err == nil {
		return nil
	}
	var cycle *CycleError
	if !wk.KeepGoing || errors.As(err, &cycle) || ctx.Err() != nil {
		return err
	}
	wk.mu.Lock()
	defer wk.mu.Unlock()
	if _, seen := wk.result.Failures[ref]; !seen {
		wk.result.Failures[ref] = err
		slogcontext.FromCtx(ctx).WarnContext(ctx, "skipping unresolvable reference",
			slog.String("realm", Realm),
			slog.String("reference", ref),
			slog.Any("error", err),
		)
	}
	return nil
}
