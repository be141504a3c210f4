package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/velorisk/riskmap/internal/dataset"
	"github.com/velorisk/riskmap/internal/mapview"
	"github.com/velorisk/riskmap/internal/report"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Summarize a risk model dataset",
	Long:  "Loads one model and prints its feature count, fields, map center and the color legend of every view. Optionally writes the legends to an xlsx workbook.",
	RunE:  runInspect,
}

func init() {
	inspectCmd.Flags().String("model", "", "model to inspect (segment or grid)")
	inspectCmd.Flags().String("xlsx", "", "write the legends to this workbook")
	_ = inspectCmd.MarkFlagRequired("model")
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, _ []string) error {
	name, _ := cmd.Flags().GetString("model")
	xlsxPath, _ := cmd.Flags().GetString("xlsx")

	model, err := mapview.ParseModel(name)
	if err != nil {
		return err
	}

	loader := dataset.NewLoader(1, 0)
	prep, err := prepareModel(cfg, loader, model)
	if err != nil {
		return err
	}

	summary := report.Summarize(model, prep)
	if err := summary.WriteText(cmd.OutOrStdout()); err != nil {
		return err
	}

	if xlsxPath != "" {
		if err := report.WriteWorkbook(xlsxPath, summary); err != nil {
			return err
		}
		zap.L().Info("legend workbook written", zap.String("path", xlsxPath))
	}
	return nil
}
