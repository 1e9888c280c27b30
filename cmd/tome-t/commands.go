package main

import (
	"context"
	"fmt"
	"os"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/justyntemme/tome-t/internal/library"
	"github.com/justyntemme/tome-t/internal/ui"
	"github.com/justyntemme/tome-t/internal/viewer"
	"github.com/justyntemme/tome-t/pkg/models"
	"github.com/spf13/cobra"
)

const listTimeout = 30 * time.Second

var lsCmd = &cobra.Command{
	Use:   "ls [folder]",
	Short: "Print one page of a library listing",
	Long: `Print one page of a library listing. With a folder argument the folder
is listed; with --search the library is searched; otherwise every book is
listed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := setup(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		q, err := listQuery(cmd, args)
		if err != nil {
			return err
		}
		page, _ := cmd.Flags().GetInt("page")

		ctx, cancel := context.WithTimeout(cmd.Context(), listTimeout)
		defer cancel()
		resp, err := library.Fetch(ctx, env.client, q, page)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, b := range resp.Books {
			fmt.Fprintln(out, formatEntry(b))
		}
		if resp.HasMore {
			fmt.Fprintf(out, "... more on page %d\n", page+1)
		}
		return nil
	},
}

var openCmd = &cobra.Command{
	Use:   "open <file>",
	Short: "Read a local comic archive or EPUB",
	Long: `Read a local file without a server: comic archives (.cbz .cbr .cb7
.zip .rar .7z) open in the page viewer, .epub files in the reader.
Nothing is reported to the server.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(args[0]); err != nil {
			return err
		}
		env, err := setup(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		app, err := ui.NewLocalApp(env.deps, args[0])
		if err != nil {
			return err
		}
		return runTUI(app)
	},
}

var optionsCmd = &cobra.Command{
	Use:   "options",
	Short: "Show or change the saved viewer options",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := setup(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		store := env.deps.Options
		opts := store.Load()
		changed := false
		if cmd.Flags().Changed("direction") {
			d, _ := cmd.Flags().GetString("direction")
			opts.Direction = viewer.Direction(strings.ToLower(d))
			changed = true
		}
		if cmd.Flags().Changed("spread") {
			s, _ := cmd.Flags().GetString("spread")
			opts.Spread = viewer.SpreadMode(strings.ToLower(s))
			changed = true
		}
		if cmd.Flags().Changed("font-size") {
			n, _ := cmd.Flags().GetInt("font-size")
			opts.FontSize = viewer.ClampFontSize(n)
			changed = true
		}
		if changed {
			if err := opts.Validate(); err != nil {
				return err
			}
			if err := store.Save(opts); err != nil {
				return err
			}
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "direction  %s\n", opts.Direction)
		fmt.Fprintf(out, "spread     %s\n", opts.Spread)
		fmt.Fprintf(out, "font size  %d\n", opts.FontSize)
		return nil
	},
}

func init() {
	lsCmd.Flags().String("sort", string(models.SortTitle), "Sort key: title, added_time, last_opened, progress")
	lsCmd.Flags().String("order", string(models.OrderAsc), "Sort order: asc or desc")
	lsCmd.Flags().Int("page", 1, "Page of the listing to print")
	lsCmd.Flags().String("search", "", "Search text")

	optionsCmd.Flags().String("direction", "", "Reading direction: ltr or rtl")
	optionsCmd.Flags().String("spread", "", "Two-page spreads: none, odd or even")
	optionsCmd.Flags().Int("font-size", viewer.DefaultFontSize, "EPUB font size (8-48)")
}

// listQuery builds the listing the ls flags describe
func listQuery(cmd *cobra.Command, args []string) (library.Query, error) {
	sortKey, _ := cmd.Flags().GetString("sort")
	order, _ := cmd.Flags().GetString("order")
	search, _ := cmd.Flags().GetString("search")

	key := models.SortKey(sortKey)
	if !slices.Contains(models.SortKeys, key) {
		return library.Query{}, fmt.Errorf("unknown sort key %q", sortKey)
	}
	ord := models.SortOrder(order)
	if ord != models.OrderAsc && ord != models.OrderDesc {
		return library.Query{}, fmt.Errorf("unknown sort order %q", order)
	}

	q := library.AllQuery()
	switch {
	case search != "":
		q = library.SearchQuery(search)
	case len(args) == 1:
		q = library.FolderQuery(args[0])
	}
	return q.WithSort(key, ord), nil
}

func formatEntry(b models.BookEntry) string {
	title := b.Title
	if title == "" {
		title = path.Base(b.Path)
	}
	kind := string(b.Type)
	if b.IsFolder() {
		return fmt.Sprintf("%-6s %s/", kind, b.Path)
	}
	progress := ""
	if b.Progress > 0 {
		progress = fmt.Sprintf("  %3.0f%%", b.Progress*100)
	}
	return fmt.Sprintf("%-6s %s%s\n       %s", kind, title, progress, b.Path)
}
