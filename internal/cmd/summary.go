package cmd

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/Iron-Ham/dmdash/internal/dashboard"
	"github.com/Iron-Ham/dmdash/internal/tui/view"
	"github.com/Iron-Ham/dmdash/internal/util"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print the counters for a view",
	Long: `Print the tab bar and the summary counters for the selected view (or
the one named by --view) and exit. Use --output yaml for scripts.`,
	Args: cobra.NoArgs,
	RunE: runSummary,
}

var (
	summaryView   string
	summaryOutput string
)

func init() {
	rootCmd.AddCommand(summaryCmd)

	summaryCmd.Flags().StringVar(&summaryView, "view", "", "View key, ID or title (default: the selected view)")
	summaryCmd.Flags().StringVarP(&summaryOutput, "output", "o", "text", "Output format (text/yaml)")
}

// summaryReport is the --output yaml form.
type summaryReport struct {
	Project     int    `yaml:"project"`
	View        string `yaml:"view"`
	Tasks       int    `yaml:"tasks"`
	Found       int    `yaml:"found"`
	Annotations int    `yaml:"annotations"`
	Predictions int    `yaml:"predictions"`
	Boxes       int    `yaml:"boxes"`
	StorageSync bool   `yaml:"storage_sync"`
}

func runSummary(cmd *cobra.Command, args []string) error {
	if summaryOutput != "text" && summaryOutput != "yaml" {
		return fmt.Errorf("invalid output format %q: expected text or yaml", summaryOutput)
	}
	return withViews(cmd, func(e *env, tabs *dashboard.TabController) error {
		if summaryView != "" {
			v, err := resolveView(e.store, summaryView)
			if err != nil {
				return err
			}
			if err := tabs.Select(v.Key()); err != nil {
				return err
			}
		}

		sh := e.shell()
		defer sh.Stop()
		drive(sh, sh.LoadProject())
		drive(sh, sh.LoadTasks())
		drive(sh, sh.SyncBoxes())

		sum := sh.Summary()
		out := cmd.OutOrStdout()
		if summaryOutput == "yaml" {
			return yaml.NewEncoder(out).Encode(summaryReport{
				Project:     e.store.Project().ID,
				View:        e.store.Views().Selected().Title(),
				Tasks:       sum.TotalTasks,
				Found:       sum.TotalFoundTasks,
				Annotations: sum.TotalAnnotations,
				Predictions: sum.TotalPredictions,
				Boxes:       sum.Boxes,
				StorageSync: sum.CloudSync,
			})
		}

		width := 0
		if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			width, _, _ = term.GetSize(int(f.Fd()))
		}
		printSummary(out, width, e, sh)
		return nil
	})
}

// drive runs cmd and feeds its result, and any follow-up commands, back
// into the shell synchronously.
func drive(sh *dashboard.Shell, cmd tea.Cmd) {
	for cmd != nil {
		_, cmd = sh.Update(cmd())
	}
}

func printSummary(w io.Writer, width int, e *env, sh *dashboard.Shell) {
	line := func(s string) {
		if width > 0 {
			s = util.TruncateANSI(s, width)
		}
		fmt.Fprintln(w, s)
	}

	p := e.store.Project()
	if p.Title != "" {
		line(fmt.Sprintf("%s (project %d)", util.Flatten(p.Title), p.ID))
	} else {
		line(fmt.Sprintf("Project %d", p.ID))
	}
	line(view.TabTitles(sh.Tabs.Tabs()))
	line(sh.Summary().String())
	if err := sh.Boxes.Err(); err != nil {
		line("boxes: " + err.Error())
	}
}
