package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	analyzeName  string
	analyzeNoLLM bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <document>",
	Short: "Analyze a business document into a projected business case",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		text, err := os.ReadFile(args[0])
		if err != nil {
			return eris.Wrapf(err, "read document %s", args[0])
		}

		eng, st, err := initEngine(ctx, !analyzeNoLLM)
		if err != nil {
			return err
		}
		defer st.Close()

		a, err := eng.Analyze(ctx, analyzeName, string(text))
		if err != nil {
			return err
		}

		zap.L().Info("analysis stored",
			zap.String("id", a.ID),
			zap.String("archetype", string(a.Archetype)),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(a)
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeName, "name", "", "analysis name (default: resolved project name)")
	analyzeCmd.Flags().BoolVar(&analyzeNoLLM, "no-llm", false, "skip the model extraction tier")
	rootCmd.AddCommand(analyzeCmd)
}
