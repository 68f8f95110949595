package hierarchy

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
)

// EdgeKind labels how a model refers to another model.
type EdgeKind string

const (
	EdgeParent EdgeKind = "parent"
	EdgeImport EdgeKind = "import"
)

// Edge is a reference from one model to another, identified by "<groupId>:<artifactId>:<version>".
type Edge struct {
	From string   `json:"from"`
	To   string   `json:"to"`
	Kind EdgeKind `json:"kind"`
}

type CycleError struct {
	Cycle []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("model hierarchy contains a cycle: %s", strings.Join(e.Cycle, " -> "))
}

// Graph is a directed acyclic graph of model references. It is safe for concurrent use.
type Graph struct {
	mu       sync.RWMutex
	vertices map[string]struct{}
	edges    map[string]map[string]EdgeKind
}

func NewGraph() *Graph {
	return &Graph{
		vertices: make(map[string]struct{}),
		edges:    make(map[string]map[string]EdgeKind),
	}
}

// AddVertex adds a vertex if it does not exist yet.
func (g *Graph) AddVertex(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.vertices[id] = struct{}{}
}

// AddEdge adds an edge and its vertices. It fails with a *CycleError if the edge
// would close a cycle, in which case the graph is left unchanged.
func (g *Graph) AddEdge(from, to string, kind EdgeKind) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if from == to {
		return &CycleError{Cycle: []string{from, to}}
	}
	if path := g.path(to, from); path != nil {
		return &CycleError{Cycle: append([]string{from}, path...)}
	}
	g.vertices[from] = struct{}{}
	g.vertices[to] = struct{}{}
	if g.edges[from] == nil {
		g.edges[from] = make(map[string]EdgeKind)
	}
	g.edges[from][to] = kind
	return nil
}

// path returns a path from -> ... -> to, or nil if to is not reachable. Callers hold the lock.
func (g *Graph) path(from, to string) []string {
	visited := make(map[string]bool)
	var dfs func(id string) []string
	dfs = func(id string) []string {
		if id == to {
			return []string{id}
		}
		visited[id] = true
		for _, next := range slices.Sorted(maps.Keys(g.edges[id])) {
			if visited[next] {
				continue
			}
			if rest := dfs(next); rest != nil {
				return append([]string{id}, rest...)
			}
		}
		return nil
	}
	return dfs(from)
}

// Vertices returns all vertices in sorted order.
func (g *Graph) Vertices() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return slices.Sorted(maps.Keys(g.vertices))
}

// Edges returns all edges sorted by source, then target.
func (g *Graph) Edges() []Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var edges []Edge
	for from, targets := range g.edges {
		for to, kind := range targets {
			edges = append(edges, Edge{From: from, To: to, Kind: kind})
		}
	}
	slices.SortFunc(edges, func(a, b Edge) int {
		return cmp.Or(cmp.Compare(a.From, b.From), cmp.Compare(a.To, b.To))
	})
	return edges
}

// Children returns the outgoing edges of a vertex, parent first, then imports by target.
func (g *Graph) Children(id string) []Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var edges []Edge
	for to, kind := range g.edges[id] {
		edges = append(edges, Edge{From: id, To: to, Kind: kind})
	}
	slices.SortFunc(edges, func(a, b Edge) int {
		return cmp.Or(cmp.Compare(kindOrder(a.Kind), kindOrder(b.Kind)), cmp.Compare(a.To, b.To))
	})
	return edges
}

// TopologicalSort returns the vertices such that every model comes after all models it refers to.
func (g *Graph) TopologicalSort() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	visited := make(map[string]bool, len(g.vertices))
	order := make([]string, 0, len(g.vertices))
	var dfs func(string)
	dfs = func(id string) {
		visited[id] = true
		for _, next := range slices.Sorted(maps.Keys(g.edges[id])) {
			if !visited[next] {
				dfs(next)
			}
		}
		order = append(order, id)
	}
	for _, id := range slices.Sorted(maps.Keys(g.vertices)) {
		if !visited[id] {
			dfs(id)
		}
	}
	return order
}

func kindOrder(kind EdgeKind) int {
	if kind == EdgeParent {
		return 0
	}
	return 1
}
