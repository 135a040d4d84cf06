package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fincase/bizcase-cli/internal/model"
)

var simulateJSON bool

var simulateCmd = &cobra.Command{
	Use:   "simulate <analysis-id> <instruction>",
	Short: "Apply a what-if instruction to an analysis",
	Long:  `Parses a natural-language instruction ("increase price by 10%", "set royalty rate to 12%") into parameter deltas, applies them to the working copy and recomputes the projection. The baseline is never touched.`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		eng, st, err := initEngine(ctx, true)
		if err != nil {
			return err
		}
		defer st.Close()

		res, err := eng.Simulate(ctx, args[0], args[1])
		if err != nil {
			return err
		}

		if len(res.Applied) == 0 && len(res.Skipped) == 0 {
			fmt.Fprintln(os.Stderr, "No recognizable instruction. Try e.g. \"increase price by 10%\" or \"set growth to 8%\".")
		}

		if simulateJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		}

		formatSimulation(os.Stdout, res)
		return nil
	},
}

var revertCmd = &cobra.Command{
	Use:   "revert <analysis-id>",
	Short: "Discard all simulations and restore the baseline",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		eng, st, err := initEngine(ctx, false)
		if err != nil {
			return err
		}
		defer st.Close()

		res, err := eng.Revert(ctx, args[0])
		if err != nil {
			return err
		}

		formatSimulation(os.Stdout, res)
		return nil
	},
}

func formatSimulation(w io.Writer, res *model.SimulationResult) {
	for _, d := range res.Applied {
		fmt.Fprintf(w, "applied: %s\n", d)
	}
	for _, d := range res.Skipped {
		fmt.Fprintf(w, "skipped: %s (not in active archetype)\n", d)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "METRIC\tBEFORE\tAFTER\tCHANGE")
	for _, md := range res.Comparison {
		fmt.Fprintf(tw, "%s\t%.0f\t%.0f\t%+.1f%%\n", md.Metric, md.Before, md.After, md.PercentChg)
	}
	tw.Flush()

	m := res.Result
	fmt.Fprintf(w, "\nROI: %s  break-even: %s  net profit: %.0f\n", m.ROI, m.BreakEven, m.NetProfit)
	for _, warn := range m.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warn.Message)
	}
}

func init() {
	simulateCmd.Flags().BoolVar(&simulateJSON, "json", false, "print the full result as JSON")
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(revertCmd)
}
