package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	blog "github.com/darshanbajgain/darshan-blog-temp"
	"github.com/darshanbajgain/darshan-blog-temp/internal/query"
)

type listFlags struct {
	category  string
	page      int
	pageSize  int
	plainText bool
}

func (f *listFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.category, "category", blog.AllCategories, "only posts in this category")
	cmd.Flags().IntVar(&f.page, "page", 1, "page number, starting at 1")
	cmd.Flags().IntVar(&f.pageSize, "page-size", 0, "posts per page (defaults to the configured size)")
	cmd.Flags().BoolVar(&f.plainText, "plain", false, "match text against content without markup")
}

func newListCommand(global *globalFlags) *cobra.Command {
	flags := &listFlags{}
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List posts, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runQuery(cmd, global, blog.Query{
				Category:  flags.category,
				Page:      flags.page,
				PlainText: flags.plainText,
			}, flags.pageSize)
		},
	}
	flags.bind(cmd)
	return cmd
}

func newSearchCommand(global *globalFlags) *cobra.Command {
	flags := &listFlags{}
	cmd := &cobra.Command{
		Use:   "search <text>",
		Short: "Search titles, descriptions and content",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, global, blog.Query{
				Text:      strings.Join(args, " "),
				Category:  flags.category,
				Page:      flags.page,
				PlainText: flags.plainText,
			}, flags.pageSize)
		},
	}
	flags.bind(cmd)
	return cmd
}

func runQuery(cmd *cobra.Command, global *globalFlags, q blog.Query, pageSize int) error {
	module, err := moduleFrom(cmd)
	if err != nil {
		return err
	}
	page, err := module.Search(cmd.Context(), q, pageSize)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if global.jsonOutput {
		return writeJSON(out, page)
	}
	renderPosts(out, page.Items)
	fmt.Fprintf(out, "page %d of %d, %d matching\n", page.Page, page.TotalPages, page.TotalMatching)
	return nil
}

func renderPosts(w io.Writer, list []blog.Post) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Slug", "Date", "Title", "Categories", "Read"})
	for _, post := range list {
		t.AppendRow(table.Row{
			post.Slug,
			post.Date,
			post.Title,
			strings.Join(post.Categories, ", "),
			fmt.Sprintf("%d min", query.ReadingTime(post.Content)),
		})
	}
	t.Render()
}

func newShowCommand(global *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show <slug>",
		Short: "Print one post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			module, err := moduleFrom(cmd)
			if err != nil {
				return err
			}
			post, err := module.LoadOne(cmd.Context(), args[0])
			if err != nil {
				if blog.IsNotFound(err) {
					return fmt.Errorf("post %q not found", args[0])
				}
				return err
			}
			out := cmd.OutOrStdout()
			if global.jsonOutput {
				return writeJSON(out, post)
			}
			fmt.Fprintf(out, "Title:       %s\n", post.Title)
			fmt.Fprintf(out, "Date:        %s\n", post.Date)
			fmt.Fprintf(out, "Author:      %s\n", post.Author)
			fmt.Fprintf(out, "Categories:  %s\n", strings.Join(post.Categories, ", "))
			fmt.Fprintf(out, "Description: %s\n", post.Description)
			fmt.Fprintf(out, "Reading:     %d min\n\n", query.ReadingTime(post.Content))
			fmt.Fprintln(out, post.Content)
			return nil
		},
	}
}

func newCategoriesCommand(global *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List categories with post counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			module, err := moduleFrom(cmd)
			if err != nil {
				return err
			}
			counts, err := module.Categories(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if global.jsonOutput {
				return writeJSON(out, counts)
			}
			t := table.NewWriter()
			t.SetOutputMirror(out)
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Category", "Posts", "URL"})
			urls := module.Container().URLs()
			for _, count := range counts {
				link, _ := urls.CategoryURL(count.Name)
				t.AppendRow(table.Row{count.Name, count.Count, link})
			}
			t.Render()
			return nil
		},
	}
}
