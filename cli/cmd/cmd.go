package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	slogcontext "github.com/veqryn/slog-context"

	"github.com/uklance/gradle-dependency-export/bindings/go/configuration"
	"github.com/uklance/gradle-dependency-export/bindings/go/metrics"
	"github.com/uklance/gradle-dependency-export/cli/cmd/resolve"
	"github.com/uklance/gradle-dependency-export/cli/cmd/setup"
	"github.com/uklance/gradle-dependency-export/cli/cmd/tree"
	"github.com/uklance/gradle-dependency-export/cli/cmd/version"
	ctxpkg "github.com/uklance/gradle-dependency-export/cli/internal/context"
	"github.com/uklance/gradle-dependency-export/cli/log"
)

const (
	FlagConfig          = "config"
	FlagTaskPrefix      = "task-prefix"
	FlagExportDir       = "export-dir"
	FlagMetricsTextfile = "metrics-textfile"
	FlagSkipChecksums   = "skip-checksums"
	FlagUserAgent       = "user-agent"
)

// Execute runs the root command. This is called by main.main().
func Execute() {
	err := New().Execute()
	if err != nil {
		os.Exit(1)
	}
}

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pomresolve [sub-command]",
		Short: "Resolve Maven project models from local and remote repositories",
		Long: `pomresolve resolves coordinates of the form <groupId>:<artifactId>:<version> to
  their project model (pom) and discovers the parent and bill of materials hierarchy of a model.
  Resolved models can be exported into a directory in repository layout.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		PersistentPreRunE:  preRunE,
		PersistentPostRunE: postRunE,
		DisableAutoGenTag:  true,
		SilenceUsage:       true,
	}

	cmd.PersistentFlags().StringArray(FlagConfig, nil,
		fmt.Sprintf("configuration file, can be repeated; later files take precedence (default: files in $%s)", configuration.EnvConfig))
	cmd.PersistentFlags().String(FlagTaskPrefix, setup.DefaultTaskPrefix, "prefix of the fetch unit names")
	cmd.PersistentFlags().String(FlagExportDir, "", "copy every resolved model into this directory in repository layout")
	cmd.PersistentFlags().String(FlagMetricsTextfile, "", "write the collected metrics in text format to this file after the command")
	cmd.PersistentFlags().Bool(FlagSkipChecksums, false, "do not verify checksums of downloaded models")
	cmd.PersistentFlags().String(FlagUserAgent, "", "User-Agent sent to remote repositories, overriding the config file value")
	log.RegisterLoggingFlags(cmd)

	cmd.AddCommand(resolve.New())
	cmd.AddCommand(tree.New())
	cmd.AddCommand(version.New())
	return cmd
}

func preRunE(cmd *cobra.Command, _ []string) error {
	logger, err := log.GetBaseLogger(cmd)
	if err != nil {
		return fmt.Errorf("could not retrieve logger: %w", err)
	}
	slog.SetDefault(logger)
	ctx := slogcontext.NewCtx(cmd.Context(), logger)
	cmd.SetContext(ctx)

	if cmd.Annotations[setup.AnnotationSkipRuntime] == "true" {
		return nil
	}

	flags := cmd.Flags()
	var opts setup.Options
	if opts.ConfigPaths, err = flags.GetStringArray(FlagConfig); err != nil {
		return err
	}
	if opts.TaskPrefix, err = flags.GetString(FlagTaskPrefix); err != nil {
		return err
	}
	if opts.ExportDir, err = flags.GetString(FlagExportDir); err != nil {
		return err
	}
	if opts.SkipChecksums, err = flags.GetBool(FlagSkipChecksums); err != nil {
		return err
	}
	if opts.UserAgent, err = flags.GetString(FlagUserAgent); err != nil {
		return err
	}

	rt, err := setup.NewRuntime(ctx, opts)
	if err != nil {
		return fmt.Errorf("could not set up resolver: %w", err)
	}
	ctxpkg.Register(cmd, rt)
	return nil
}

func postRunE(cmd *cobra.Command, _ []string) error {
	var errs []error
	if rt := ctxpkg.Runtime(cmd.Context()); rt != nil && rt.Export != nil {
		if err := rt.Export.Err(); err != nil {
			errs = append(errs, fmt.Errorf("export incomplete: %w", err))
		}
	}
	path, err := cmd.Flags().GetString(FlagMetricsTextfile)
	if err != nil {
		return err
	}
	if path != "" {
		if err := metrics.WriteTextfile(path); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
