// Package cli implements the posts command-line tool.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	blog "github.com/darshanbajgain/darshan-blog-temp"
	"github.com/darshanbajgain/darshan-blog-temp/internal/di"
)

type moduleKey struct{}

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configFile string
	contentDir string
	logLevel   string
	jsonOutput bool
}

// NewRootCommand builds the posts CLI. Extra container options are applied
// to the module each subcommand runs against.
func NewRootCommand(opts ...di.Option) *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:           "posts",
		Short:         "Inspect and announce blog posts",
		Long:          `Inspect, search, lint and announce the Markdown posts of the blog.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			module, err := openModule(cmd.Context(), flags, opts)
			if err != nil {
				return err
			}
			cmd.SetContext(context.WithValue(cmd.Context(), moduleKey{}, module))
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			if module, ok := cmd.Context().Value(moduleKey{}).(*blog.Module); ok {
				return module.Close()
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	root.PersistentFlags().StringVar(&flags.configFile, "config", "", "YAML configuration file")
	root.PersistentFlags().StringVar(&flags.contentDir, "content-dir", "", "directory holding post sources (overrides configuration)")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "error", "log level")
	root.PersistentFlags().BoolVar(&flags.jsonOutput, "json", false, "print JSON instead of tables")

	root.AddCommand(
		newListCommand(flags),
		newSearchCommand(flags),
		newShowCommand(flags),
		newCategoriesCommand(flags),
		newLintCommand(flags),
		newNotifyCommand(),
		newProcessedCommand(flags),
		newNewCommand(),
	)
	return root
}

// Execute runs the CLI with ctx.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	root := NewRootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.ExecuteContext(ctx)
}

func openModule(ctx context.Context, flags *globalFlags, opts []di.Option) (*blog.Module, error) {
	cfg, err := blog.LoadConfig(flags.configFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if dir := strings.TrimSpace(flags.contentDir); dir != "" {
		cfg.Content.Dir = dir
	}
	if level := strings.TrimSpace(flags.logLevel); level != "" {
		cfg.Logging.Level = level
	}
	cfg.Logging.Format = "console"
	// The CLI never runs the watcher.
	cfg.Watcher.Enabled = false

	return blog.New(ctx, cfg, opts...)
}

func moduleFrom(cmd *cobra.Command) (*blog.Module, error) {
	module, ok := cmd.Context().Value(moduleKey{}).(*blog.Module)
	if !ok || module == nil {
		return nil, fmt.Errorf("posts: module not initialised")
	}
	return module, nil
}

func writeJSON(w io.Writer, value any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}
