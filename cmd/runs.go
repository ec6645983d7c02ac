package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/directory-enrich/internal/model"
	"github.com/sells-group/directory-enrich/internal/score"
	"github.com/sells-group/directory-enrich/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect enrichment run history",
	Long:  "Commands for listing and viewing stored enrichment runs. Requires store.driver.",
}

// -- runs list --

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List enrichment runs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		if err := cfg.Validate("runs"); err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		status, _ := cmd.Flags().GetString("status")
		business, _ := cmd.Flags().GetString("business")
		limit, _ := cmd.Flags().GetInt("limit")

		runs, err := st.ListRuns(ctx, store.RunFilter{
			Status:     model.RunStatus(status),
			BusinessID: business,
			Limit:      limit,
		})
		if err != nil {
			return eris.Wrap(err, "runs list")
		}

		if len(runs) == 0 {
			fmt.Fprintln(os.Stderr, "No runs found.")
			return nil
		}

		formatRunsList(os.Stdout, runs)
		return nil
	},
}

// -- runs show --

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show full details of a run, including the score breakdown",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := cfg.Validate("runs"); err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		run, err := st.GetRun(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "runs show")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(runView(run))
	},
}

func init() {
	runsListCmd.Flags().String("status", "", "filter by run status (complete, partial, failed)")
	runsListCmd.Flags().String("business", "", "filter by business ID")
	runsListCmd.Flags().Int("limit", 50, "max number of runs to display")

	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	rootCmd.AddCommand(runsCmd)
}

// runDetail is a stored run plus the per-criterion score it earned.
type runDetail struct {
	*model.Run
	Breakdown []score.Criterion `json:"breakdown,omitempty"`
}

func runView(run *model.Run) runDetail {
	d := runDetail{Run: run}
	if run != nil && run.Response != nil {
		d.Breakdown = score.Breakdown(&run.Response.Result)
	}
	return d
}

// formatRunsList writes a tabular list of runs to w.
func formatRunsList(out io.Writer, runs []model.Run) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tBUSINESS\tSTATUS\tSCORE\tSOURCES\tERRORS\tCREATED")
	_, _ = fmt.Fprintln(w, "--\t--------\t------\t-----\t-------\t------\t-------")

	for _, r := range runs {
		business := r.Request.BusinessName
		if business == "" {
			business = r.Request.BusinessID
		}
		if len(business) > 30 {
			business = business[:27] + "..."
		}

		sources, errs := 0, 0
		if r.Response != nil {
			sources = len(r.Response.Result.SourcesUsed)
			errs = len(r.Response.Errors)
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			truncateID(r.ID),
			business,
			r.Status,
			r.ConfidenceScore,
			sources,
			errs,
			r.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	_ = w.Flush()
}

// truncateID returns the first 8 characters of a UUID for compact display.
func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
