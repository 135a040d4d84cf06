package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var batchNoLLM bool

var batchCmd = &cobra.Command{
	Use:   "batch <document>...",
	Short: "Analyze multiple documents concurrently",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		eng, st, err := initEngine(ctx, !batchNoLLM)
		if err != nil {
			return err
		}
		defer st.Close()

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(cfg.Batch.MaxConcurrentAnalyses)

		for _, path := range args {
			g.Go(func() error {
				text, err := os.ReadFile(path)
				if err != nil {
					return eris.Wrapf(err, "read document %s", path)
				}
				name := filepath.Base(path)
				a, err := eng.Analyze(gctx, name, string(text))
				if err != nil {
					return eris.Wrapf(err, "analyze %s", path)
				}
				fmt.Fprintf(os.Stdout, "%s\t%s\t%s\n", a.ID, a.Archetype, path)
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return err
		}
		zap.L().Info("batch complete", zap.Int("documents", len(args)))
		return nil
	},
}

func init() {
	batchCmd.Flags().BoolVar(&batchNoLLM, "no-llm", false, "skip the model extraction tier")
	rootCmd.AddCommand(batchCmd)
}
