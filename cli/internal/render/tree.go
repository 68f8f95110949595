package render

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/list"

	"github.com/uklance/gradle-dependency-export/bindings/go/hierarchy"
)

// Tree renders the models reachable from root, one level of indentation per reference.
// The references of a model are listed at its first occurrence only, later occurrences
// are marked with "(see above)".
func Tree(w io.Writer, g *hierarchy.Graph, root string) {
	lw := list.NewWriter()
	lw.SetStyle(list.StyleConnectedRounded)

	expanded := make(map[string]struct{})
	var traverse func(id, item string)
	traverse = func(id, item string) {
		children := g.Children(id)
		if _, seen := expanded[id]; seen && len(children) > 0 {
			lw.AppendItem(item + " (see above)")
			return
		}
		expanded[id] = struct{}{}
		lw.AppendItem(item)
		for _, edge := range children {
			lw.Indent()
			traverse(edge.To, fmt.Sprintf("%s (%s)", edge.To, edge.Kind))
			lw.UnIndent()
		}
	}
	traverse(root, root)

	lw.SetOutputMirror(w)
	lw.Render()
}
