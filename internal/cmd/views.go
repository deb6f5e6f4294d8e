package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/Iron-Ham/dmdash/internal/dashboard"
	"github.com/Iron-Ham/dmdash/internal/store"
	"github.com/Iron-Ham/dmdash/internal/util"
	"github.com/spf13/cobra"
)

var viewsCmd = &cobra.Command{
	Use:   "views",
	Short: "List and edit saved views",
	Long: `List and edit the project's saved views without opening the dashboard.

Views are referenced by key, backend ID or title. Actions follow the same
rules as the dashboard's tab bar: locked views cannot be renamed, and
closing the last view leaves a fresh default view.`,
	RunE: runViewsList,
}

var viewsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List views in tab order",
	Args:    cobra.NoArgs,
	RunE:    runViewsList,
}

var viewsAddCmd = &cobra.Command{
	Use:   "add [title]",
	Short: "Add a view",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runViewsAdd,
}

var viewsRenameCmd = &cobra.Command{
	Use:   "rename <view> <title>",
	Short: "Rename a view",
	Args:  cobra.ExactArgs(2),
	RunE:  runViewsRename,
}

var viewsDuplicateCmd = &cobra.Command{
	Use:   "duplicate <view>",
	Short: "Duplicate a view",
	Args:  cobra.ExactArgs(1),
	RunE:  runViewsDuplicate,
}

var viewsDeleteCmd = &cobra.Command{
	Use:     "delete <view>",
	Aliases: []string{"rm"},
	Short:   "Delete a view",
	Args:    cobra.ExactArgs(1),
	RunE:    runViewsDelete,
}

func init() {
	rootCmd.AddCommand(viewsCmd)
	viewsCmd.AddCommand(viewsListCmd)
	viewsCmd.AddCommand(viewsAddCmd)
	viewsCmd.AddCommand(viewsRenameCmd)
	viewsCmd.AddCommand(viewsDuplicateCmd)
	viewsCmd.AddCommand(viewsDeleteCmd)
}

// withViews builds an env, runs fn with a tab controller over its store,
// and flushes the writes fn queued.
func withViews(cmd *cobra.Command, fn func(e *env, tabs *dashboard.TabController) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	defer logger.Close()

	e, err := newEnv(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	fnErr := fn(e, dashboard.NewTabController(e.store, logger))
	closeErr := e.Close()
	if fnErr != nil {
		return fnErr
	}
	if closeErr != nil {
		return fmt.Errorf("failed to save: %w", closeErr)
	}
	return nil
}

func runViewsList(cmd *cobra.Command, args []string) error {
	return withViews(cmd, func(e *env, tabs *dashboard.TabController) error {
		printViews(cmd.OutOrStdout(), e.store)
		return nil
	})
}

func printViews(w io.Writer, s *store.Store) {
	selected := s.Views().SelectedKey()
	fmt.Fprintf(w, "  %-4s %-8s %-24s %-9s %s\n", "#", "ID", "TITLE", "FILTERS", "FLAGS")
	for i, v := range s.Views().All() {
		marker := " "
		if v.Key() == selected {
			marker = "*"
		}
		id := v.ID()
		if id == "" {
			id = "-"
		}
		conj, filters := v.Filters()
		filterText := "-"
		if len(filters) > 0 {
			filterText = fmt.Sprintf("%d (%s)", len(filters), conj)
		}
		fmt.Fprintf(w, "%s %-4d %-8s %s %-9s %s\n",
			marker, i+1, id, util.Fit(util.Flatten(v.Title()), 24), filterText, viewFlags(v))
	}
}

func viewFlags(v *store.View) string {
	caps := v.Capabilities()
	var flags []string
	if !caps.Editable {
		flags = append(flags, "locked")
	}
	if !caps.Deletable {
		flags = append(flags, "permanent")
	}
	if caps.Virtual {
		flags = append(flags, "unsaved")
	}
	return strings.Join(flags, ",")
}

func runViewsAdd(cmd *cobra.Command, args []string) error {
	return withViews(cmd, func(e *env, tabs *dashboard.TabController) error {
		opts := store.AddViewOptions{}
		if len(args) > 0 {
			opts.Title = args[0]
		}
		v := e.store.Views().AddView(opts)
		fmt.Fprintf(cmd.OutOrStdout(), "Added view %q (%s)\n", v.Title(), v.Key())
		return nil
	})
}

func runViewsRename(cmd *cobra.Command, args []string) error {
	return withViews(cmd, func(e *env, tabs *dashboard.TabController) error {
		v, err := resolveView(e.store, args[0])
		if err != nil {
			return err
		}
		old := v.Title()
		if err := tabs.Rename(v.Key(), args[1]); err != nil {
			return fmt.Errorf("cannot rename %q: %w", old, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Renamed %q to %q\n", old, v.Title())
		return nil
	})
}

func runViewsDuplicate(cmd *cobra.Command, args []string) error {
	return withViews(cmd, func(e *env, tabs *dashboard.TabController) error {
		v, err := resolveView(e.store, args[0])
		if err != nil {
			return err
		}
		if err := tabs.Duplicate(v.Key()); err != nil {
			return fmt.Errorf("cannot duplicate %q: %w", v.Title(), err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Duplicated %q as %q\n", v.Title(), e.store.Views().Selected().Title())
		return nil
	})
}

func runViewsDelete(cmd *cobra.Command, args []string) error {
	return withViews(cmd, func(e *env, tabs *dashboard.TabController) error {
		v, err := resolveView(e.store, args[0])
		if err != nil {
			return err
		}
		if err := tabs.Close(v.Key()); err != nil {
			return fmt.Errorf("cannot delete %q: %w", v.Title(), err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %q\n", v.Title())
		return nil
	})
}
