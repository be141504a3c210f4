package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/velorisk/riskmap/internal/dataset"
	"github.com/velorisk/riskmap/internal/mapview"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a reprojected, colored model as GeoJSON",
	Long:  "Writes the WGS84 feature collection of one model, including the fill color columns of every view, to a file or stdout.",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().String("model", "", "model to export (segment or grid)")
	exportCmd.Flags().StringP("out", "o", "", `output file ("-" for stdout, default <model>.geojson)`)
	_ = exportCmd.MarkFlagRequired("model")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	name, _ := cmd.Flags().GetString("model")
	out, _ := cmd.Flags().GetString("out")

	model, err := mapview.ParseModel(name)
	if err != nil {
		return err
	}
	if out == "" {
		out = string(model) + ".geojson"
	}

	loader := dataset.NewLoader(1, 0)
	prep, err := prepareModel(cfg, loader, model)
	if err != nil {
		return err
	}

	data, err := prep.GeoJSON()
	if err != nil {
		return err
	}

	if out == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return eris.Wrap(err, "export: write stdout")
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return eris.Wrapf(err, "export: write %s", out)
	}
	zap.L().Info("geojson exported",
		zap.String("model", string(model)),
		zap.String("path", out),
		zap.Int("features", prep.Len()),
	)
	return nil
}
