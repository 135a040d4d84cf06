package main

import (
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fincase/bizcase-cli/internal/export"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export <analysis-id>",
	Short: "Export an analysis to an Excel workbook",
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

		out := exportOut
		if out == "" {
			out = filepath.Join(cfg.Export.Dir, a.ID+".xlsx")
		}

		wb := export.NewWorkbook(cfg.Export.Currency)
		if err := wb.Write(a, out); err != nil {
			return err
		}

		zap.L().Info("workbook written",
			zap.String("analysis", a.ID),
			zap.String("path", out),
		)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output path (default <export dir>/<id>.xlsx)")
	rootCmd.AddCommand(exportCmd)
}
