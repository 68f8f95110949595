package hierarchy_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/uklance/gradle-dependency-export/bindings/go/hierarchy"
)

func TestGraph(t *testing.T) {
	r := require.New(t)
	g := hierarchy.NewGraph()
	g.AddVertex("root")
	r.NoError(g.AddEdge("root", "parent", hierarchy.EdgeParent))
	r.NoError(g.AddEdge("root", "bom-b", hierarchy.EdgeImport))
	r.NoError(g.AddEdge("root", "bom-a", hierarchy.EdgeImport))
	r.NoError(g.AddEdge("bom-a", "bom-b", hierarchy.EdgeImport))

	r.Equal([]string{"bom-a", "bom-b", "parent", "root"}, g.Vertices())
	r.Equal([]hierarchy.Edge{
		{From: "bom-a", To: "bom-b", Kind: hierarchy.EdgeImport},
		{From: "root", To: "bom-a", Kind: hierarchy.EdgeImport},
		{From: "root", To: "bom-b", Kind: hierarchy.EdgeImport},
		{From: "root", To: "parent", Kind: hierarchy.EdgeParent},
	}, g.Edges())
	r.Equal([]hierarchy.Edge{
		{From: "root", To: "parent", Kind: hierarchy.EdgeParent},
		{From: "root", To: "bom-a", Kind: hierarchy.EdgeImport},
		{From: "root", To: "bom-b", Kind: hierarchy.EdgeImport},
	}, g.Children("root"))
	r.Equal([]string{"bom-b", "bom-a", "parent", "root"}, g.TopologicalSort())

	err := g.AddEdge("bom-b", "root", hierarchy.EdgeImport)
	var cycle *hierarchy.CycleError
	r.True(errors.As(err, &cycle))
	r.Equal([]string{"bom-b", "root", "bom-a", "bom-b"}, cycle.Cycle)
	r.Len(g.Edges(), 4, "a rejected edge leaves the graph unchanged")

	r.Error(g.AddEdge("root", "root", hierarchy.EdgeImport))
}
