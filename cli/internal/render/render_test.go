package render_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/uklance/gradle-dependency-export/bindings/go/hierarchy"
	"github.com/uklance/gradle-dependency-export/cli/internal/render"
)

func TestRender(t *testing.T) {
	v := []map[string]string{{"coordinate": "g:a:1"}}
	rows := [][]string{{"g:a:1"}}

	tests := []struct {
		format render.OutputFormat
		want   string
	}{
		{render.OutputFormatJSON, `"coordinate": "g:a:1"`},
		{render.OutputFormatYAML, "- coordinate: g:a:1"},
		{render.OutputFormatTable, "COORDINATE"},
	}
	for _, tc := range tests {
		t.Run(tc.format.String(), func(t *testing.T) {
			buf := new(bytes.Buffer)
			require.NoError(t, render.Render(buf, tc.format, v, []string{"Coordinate"}, rows))
			require.Contains(t, buf.String(), tc.want)
		})
	}

	require.Error(t, render.Render(new(bytes.Buffer), "xml", v, nil, nil))
}

func TestTree(t *testing.T) {
	r := require.New(t)
	g := hierarchy.NewGraph()
	r.NoError(g.AddEdge("root", "parent", hierarchy.EdgeParent))
	r.NoError(g.AddEdge("root", "bom", hierarchy.EdgeImport))
	r.NoError(g.AddEdge("parent", "bom", hierarchy.EdgeImport))
	r.NoError(g.AddEdge("parent", "leaf", hierarchy.EdgeImport))
	r.NoError(g.AddEdge("root", "leaf", hierarchy.EdgeImport))
	r.NoError(g.AddEdge("bom", "bom-parent", hierarchy.EdgeParent))

	buf := new(bytes.Buffer)
	render.Tree(buf, g, "root")
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	r.Len(lines, 7, buf.String())
	r.Contains(lines[0], "root")
	r.Contains(lines[1], "parent (parent)")
	r.Contains(lines[2], "bom (import)")
	r.Contains(lines[3], "bom-parent (parent)")
	r.Contains(lines[4], "leaf (import)")
	r.Contains(lines[5], "bom (import) (see above)")
	r.Contains(lines[6], "leaf (import)")
	r.NotContains(lines[6], "see above", "models without references are not collapsed")
	r.Equal(1, strings.Count(buf.String(), "bom-parent"), "shared subtrees are expanded once")
}
