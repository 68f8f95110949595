package tree

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/uklance/gradle-dependency-export/bindings/go/coordinate"
	"github.com/uklance/gradle-dependency-export/bindings/go/hierarchy"
	ctxpkg "github.com/uklance/gradle-dependency-export/cli/internal/context"
	"github.com/uklance/gradle-dependency-export/cli/internal/render"
)

const (
	FlagOutput      = "output"
	FlagConcurrency = "concurrency"
	FlagKeepGoing   = "keep-going"

	OutputFormatTree = "tree"
)

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tree {groupId:artifactId:version}",
		Short: "Show the parent and bill of materials hierarchy of a project model",
		Long: `Resolve a project model and, recursively, its parent and all bills of materials it imports
in its dependency management (scope import, type pom). Every model is resolved once.`,
		Args: cobra.MatchAll(cobra.ExactArgs(1), func(_ *cobra.Command, args []string) error {
			_, err := coordinate.Parse(args[0])
			return err
		}),
		Example: strings.TrimSpace(`
pomresolve tree org.springframework.boot:spring-boot-dependencies:3.2.0
pomresolve tree com.example:app:1.0 --keep-going -oyaml
`),
		RunE:              WalkHierarchy,
		DisableAutoGenTag: true,
	}
	cmd.Flags().StringP(FlagOutput, "o", OutputFormatTree,
		fmt.Sprintf("output format (%s, %s, %s)", OutputFormatTree, render.OutputFormatJSON, render.OutputFormatYAML))
	cmd.Flags().Int(FlagConcurrency, 0, "maximum number of models resolved in parallel (0 = number of CPUs)")
	cmd.Flags().Bool(FlagKeepGoing, false, "report unresolvable parents and imports instead of failing")
	return cmd
}

// Hierarchy is the JSON and YAML representation of a walk.
type Hierarchy struct {
	Root string `json:"root"`
	// Models are ordered such that every model comes after the models it refers to.
	Models   []string          `json:"models"`
	Edges    []hierarchy.Edge  `json:"edges,omitempty"`
	Failures map[string]string `json:"failures,omitempty"`
}

func WalkHierarchy(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	rt := ctxpkg.Runtime(ctx)
	if rt == nil {
		return fmt.Errorf("could not retrieve resolver from context")
	}
	output, err := cmd.Flags().GetString(FlagOutput)
	if err != nil {
		return fmt.Errorf("getting output flag failed: %w", err)
	}
	concurrency, err := cmd.Flags().GetInt(FlagConcurrency)
	if err != nil {
		return fmt.Errorf("getting concurrency flag failed: %w", err)
	}
	keepGoing, err := cmd.Flags().GetBool(FlagKeepGoing)
	if err != nil {
		return fmt.Errorf("getting keep-going flag failed: %w", err)
	}
	root, err := coordinate.Parse(args[0])
	if err != nil {
		return err
	}

	walker := &hierarchy.Walker{Resolver: rt.Resolver, Concurrency: concurrency, KeepGoing: keepGoing}
	result, err := walker.Walk(ctx, root)
	if err != nil {
		return err
	}
	slog.DebugContext(ctx, "walked hierarchy",
		slog.String("root", root.String()),
		slog.Int("models", len(result.Projects)),
		slog.Int("failures", len(result.Failures)))

	out := cmd.OutOrStdout()
	switch output {
	case OutputFormatTree:
		render.Tree(out, result.Graph, root.String())
		for _, ref := range slices.Sorted(maps.Keys(result.Failures)) {
			fmt.Fprintf(cmd.ErrOrStderr(), "unresolved %s: %v\n", ref, result.Failures[ref])
		}
		return nil
	case render.OutputFormatJSON.String(), render.OutputFormatYAML.String():
		h := Hierarchy{
			Root:   root.String(),
			Models: result.Graph.TopologicalSort(),
			Edges:  result.Graph.Edges(),
		}
		if len(result.Failures) > 0 {
			h.Failures = make(map[string]string, len(result.Failures))
			for ref, err := range result.Failures {
				h.Failures[ref] = err.Error()
			}
		}
		return render.Render(out, render.OutputFormat(output), h, nil, nil)
	default:
		return fmt.Errorf("unknown output format: %q", output)
	}
}
