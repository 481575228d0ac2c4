package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/goliatone/go-command/dispatcher"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	blog "github.com/darshanbajgain/darshan-blog-temp"
)

// ErrLintFailed is returned when at least one source fails the lint.
var ErrLintFailed = errors.New("posts: lint failed")

func newLintCommand(global *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "lint",
		Short: "Check front matter of every post source",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			module, err := moduleFrom(cmd)
			if err != nil {
				return err
			}
			results, err := module.Lint(cmd.Context())
			if err != nil {
				return err
			}

			failed := 0
			for _, result := range results {
				if !result.OK() {
					failed++
				}
			}

			out := cmd.OutOrStdout()
			if global.jsonOutput {
				if err := writeJSON(out, lintReport(results)); err != nil {
					return err
				}
			} else {
				t := table.NewWriter()
				t.SetOutputMirror(out)
				t.SetStyle(table.StyleLight)
				t.AppendHeader(table.Row{"Slug", "Status", "Problem"})
				for _, result := range results {
					t.AppendRows(lintRows(result))
				}
				t.Render()
			}
			if failed > 0 {
				return fmt.Errorf("%w: %d of %d sources", ErrLintFailed, failed, len(results))
			}
			return nil
		},
	}
}

type lintEntry struct {
	Slug     string   `json:"slug"`
	OK       bool     `json:"ok"`
	Problems []string `json:"problems,omitempty"`
}

func lintReport(results []blog.LintResult) []lintEntry {
	report := make([]lintEntry, 0, len(results))
	for _, result := range results {
		entry := lintEntry{Slug: result.Slug, OK: result.OK()}
		for _, row := range lintRows(result) {
			if problem, _ := row[2].(string); problem != "" {
				entry.Problems = append(entry.Problems, problem)
			}
		}
		report = append(report, entry)
	}
	return report
}

func lintRows(result blog.LintResult) []table.Row {
	if result.OK() {
		return []table.Row{{result.Slug, "ok", ""}}
	}
	if len(result.Issues) == 0 {
		return []table.Row{{result.Slug, "error", result.Err.Error()}}
	}
	rows := make([]table.Row, 0, len(result.Issues))
	for _, issue := range result.Issues {
		problem := issue.Message
		if issue.Location != "" {
			problem = issue.Location + ": " + issue.Message
		}
		rows = append(rows, table.Row{result.Slug, "invalid", problem})
	}
	return rows
}

func newNotifyCommand() *cobra.Command {
	var (
		force   bool
		retries int
	)
	cmd := &cobra.Command{
		Use:   "notify <slug>",
		Short: "Send the newsletter broadcast for a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			module, err := moduleFrom(cmd)
			if err != nil {
				return err
			}

			if retries > 0 {
				err = dispatchNotify(cmd, module, args[0], force, retries)
			} else {
				err = module.Notify(cmd.Context(), args[0], force)
			}
			switch {
			case err == nil:
				fmt.Fprintf(cmd.OutOrStdout(), "announced %s\n", args[0])
				return nil
			case blog.IsAlreadyProcessed(err):
				fmt.Fprintf(cmd.OutOrStdout(), "%s was already announced; use --force to send again\n", args[0])
				return nil
			case blog.IsNotFound(err):
				return fmt.Errorf("post %q not found", args[0])
			default:
				return err
			}
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "announce even if the post was announced before")
	cmd.Flags().IntVar(&retries, "retries", 0, "retry failed announcements through the command dispatcher")
	return cmd
}

func dispatchNotify(cmd *cobra.Command, module *blog.Module, slug string, force bool, retries int) error {
	msg, err := module.NotifyCommand(slug, force)
	if err != nil {
		return err
	}
	registration, err := blog.RegisterCommands(module, blog.RegistrationOptions{
		Dispatcher: blog.NewDispatcher(retries),
	})
	if err != nil {
		return err
	}
	defer registration.Unsubscribe()
	return dispatcher.Dispatch(cmd.Context(), msg)
}

func newProcessedCommand(global *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "processed",
		Short: "Inspect the files already announced",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List announced files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			module, err := moduleFrom(cmd)
			if err != nil {
				return err
			}
			files, err := module.Processed(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if global.jsonOutput {
				return writeJSON(out, files)
			}
			t := table.NewWriter()
			t.SetOutputMirror(out)
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"File", "Announced"})
			for _, file := range files {
				t.AppendRow(table.Row{file.Filename, file.ProcessedAt.Format(time.RFC3339)})
			}
			t.Render()
			return nil
		},
	}

	forget := &cobra.Command{
		Use:   "forget <filename>",
		Short: "Clear the marker so the file is announced again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			module, err := moduleFrom(cmd)
			if err != nil {
				return err
			}
			if err := module.Forget(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "forgot %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(list, forget)
	return cmd
}

func newNewCommand() *cobra.Command {
	var (
		description string
		categories  []string
		date        string
	)
	cmd := &cobra.Command{
		Use:   "new <title>",
		Short: "Create a post scaffold in the content directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			module, err := moduleFrom(cmd)
			if err != nil {
				return err
			}
			post := blog.NewPost{
				Title:       args[0],
				Description: description,
				Categories:  categories,
			}
			if date != "" {
				at, err := time.Parse(time.DateOnly, date)
				if err != nil {
					return fmt.Errorf("invalid --date %q: want YYYY-MM-DD", date)
				}
				post.Date = at
			}
			slug, err := module.CreatePost(post)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", slug)
			return nil
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "post description")
	cmd.Flags().StringSliceVar(&categories, "category", nil, "post category (repeatable)")
	cmd.Flags().StringVar(&date, "date", "", "publication date, YYYY-MM-DD (defaults to today)")
	return cmd
}
