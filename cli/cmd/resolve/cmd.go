package resolve

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/uklance/gradle-dependency-export/bindings/go/coordinate"
	"github.com/uklance/gradle-dependency-export/bindings/go/modelsource"
	ctxpkg "github.com/uklance/gradle-dependency-export/cli/internal/context"
	"github.com/uklance/gradle-dependency-export/cli/internal/render"
)

const FlagOutput = "output"

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve {groupId:artifactId:version}...",
		Short: "Resolve coordinates to the location of their project model",
		Args:  cobra.MatchAll(cobra.MinimumNArgs(1), coordinatesAsPositionals),
		Example: strings.TrimSpace(`
pomresolve resolve org.junit:junit-bom:5.10.0
pomresolve resolve io.netty:netty-bom:4.1.100.Final org.slf4j:slf4j-parent:2.0.9 -ojson
pomresolve resolve com.example:platform:1.0 --config ./pomresolve.yaml --export-dir ./poms
`),
		RunE:              ResolveModels,
		DisableAutoGenTag: true,
	}
	cmd.Flags().StringP(FlagOutput, "o", render.OutputFormatTable.String(),
		fmt.Sprintf("output format (%s)", strings.Join(render.OutputFormats(), ", ")))
	return cmd
}

func coordinatesAsPositionals(_ *cobra.Command, args []string) error {
	var errs []error
	for _, arg := range args {
		if _, err := coordinate.Parse(arg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Model is a resolved model as rendered by the command.
type Model struct {
	Coordinate string `json:"coordinate"`
	Location   string `json:"location"`
	Digest     string `json:"digest"`
}

// ResolveModels resolves every argument. Models that could be resolved are rendered
// even if others fail, the failures are returned together.
func ResolveModels(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	rt := ctxpkg.Runtime(ctx)
	if rt == nil {
		return fmt.Errorf("could not retrieve resolver from context")
	}
	output, err := cmd.Flags().GetString(FlagOutput)
	if err != nil {
		return fmt.Errorf("getting output flag failed: %w", err)
	}
	format := render.OutputFormat(output)
	if !slices.Contains(render.OutputFormats(), output) {
		return fmt.Errorf("unknown output format: %q", output)
	}

	var (
		models []Model
		errs   []error
	)
	for _, arg := range args {
		c, err := coordinate.Parse(arg)
		if err != nil {
			return err
		}
		source, err := rt.Resolver.ResolveModel(ctx, c.GroupID, c.ArtifactID, c.Version)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		dig, err := modelsource.Digest(source)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		models = append(models, Model{Coordinate: c.String(), Location: source.Location(), Digest: dig.String()})
	}
	slog.DebugContext(ctx, "resolved models", slog.Int("resolved", len(models)), slog.Int("failed", len(errs)))

	if len(models) > 0 {
		rows := make([][]string, 0, len(models))
		for _, m := range models {
			rows = append(rows, []string{m.Coordinate, m.Location, m.Digest})
		}
		if err := render.Render(cmd.OutOrStdout(), format, models,
			[]string{"Coordinate", "Location", "Digest"}, rows); err != nil {
			return err
		}
	}
	return errors.Join(errs...)
}
