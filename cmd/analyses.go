package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/fincase/bizcase-cli/internal/model"
	"github.com/fincase/bizcase-cli/internal/store"
)

var analysesCmd = &cobra.Command{
	Use:   "analyses",
	Short: "Inspect stored analyses",
	Long:  "Commands for listing, viewing, and archiving analyses and their simulation history.",
}

// -- analyses list --

var analysesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List analyses",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		status, _ := cmd.Flags().GetString("status")
		archetype, _ := cmd.Flags().GetString("archetype")
		limit, _ := cmd.Flags().GetInt("limit")

		analyses, err := st.ListAnalyses(ctx, store.AnalysisFilter{
			Status:    model.AnalysisStatus(status),
			Archetype: model.Archetype(archetype),
			Limit:     limit,
		})
		if err != nil {
			return eris.Wrap(err, "analyses list")
		}

		if len(analyses) == 0 {
			fmt.Fprintln(os.Stderr, "No analyses found.")
			return nil
		}

		formatAnalysesList(os.Stdout, analyses)
		return nil
	},
}

// -- analyses show --

var analysesShowCmd = &cobra.Command{
	Use:   "show <analysis-id>",
	Short: "Show full details of an analysis",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		a, err := st.GetAnalysis(ctx, args[0])
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(a)
	},
}

// -- analyses history --

var analysesHistoryCmd = &cobra.Command{
	Use:   "history <analysis-id>",
	Short: "List the simulation history of an analysis",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		limit, _ := cmd.Flags().GetInt("limit")
		records, err := st.ListSimulations(ctx, args[0], limit)
		if err != nil {
			return err
		}

		if len(records) == 0 {
			fmt.Fprintln(os.Stderr, "No simulations recorded.")
			return nil
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "WHEN\tINSTRUCTION\tDELTAS")
		for _, r := range records {
			fmt.Fprintf(tw, "%s\t%s\t%d\n",
				r.CreatedAt.Format(time.RFC3339), r.Instruction, len(r.Deltas))
		}
		return tw.Flush()
	},
}

// -- analyses archive --

var analysesArchiveCmd = &cobra.Command{
	Use:   "archive <analysis-id>",
	Short: "Archive an analysis",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		return st.ArchiveAnalysis(ctx, args[0])
	},
}

func formatAnalysesList(w io.Writer, analyses []model.Analysis) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tARCHETYPE\tSTATUS\tROI\tUPDATED")
	for _, a := range analyses {
		roi := "-"
		if a.Result != nil {
			roi = a.Result.ROI.String()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			a.ID, a.Name, a.Archetype, a.Status, roi, a.UpdatedAt.Format("2006-01-02 15:04"))
	}
	tw.Flush()
}

func init() {
	analysesListCmd.Flags().String("status", "", "filter by status (active, archived)")
	analysesListCmd.Flags().String("archetype", "", "filter by archetype (savings, royalty, revenue)")
	analysesListCmd.Flags().Int("limit", 50, "maximum number of analyses")
	analysesHistoryCmd.Flags().Int("limit", 50, "maximum number of simulations")

	analysesCmd.AddCommand(analysesListCmd, analysesShowCmd, analysesHistoryCmd, analysesArchiveCmd)
	rootCmd.AddCommand(analysesCmd)
}
