package main

import (
	"context"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/velorisk/riskmap/internal/config"
	"github.com/velorisk/riskmap/internal/dataset"
	"github.com/velorisk/riskmap/internal/mapview"
	"github.com/velorisk/riskmap/internal/projection"
)

// modelPath returns the configured dataset file of a model.
func modelPath(c *config.Config, m mapview.Model) string {
	if m == mapview.Grid {
		return c.Data.GridPath()
	}
	return c.Data.SegmentsPath()
}

// prepareModel loads, reprojects and colors one model's dataset. The .prj
// sidecar wins over the configured source projection.
func prepareModel(c *config.Config, loader *dataset.Loader, m mapview.Model) (*mapview.Prepared, error) {
	path := modelPath(c, m)
	ds, err := loader.Load(path)
	if err != nil {
		return nil, eris.Wrapf(err, "load %s model", m)
	}

	p, err := projection.New(ds.SRS, c.Data.SourceProj)
	if err != nil {
		return nil, eris.Wrapf(err, "load %s model", m)
	}

	prep, err := mapview.Prepare(ds, p)
	if err != nil {
		return nil, eris.Wrapf(err, "load %s model", m)
	}
	return prep, nil
}

// prepareModels prepares every model concurrently. The first failure
// cancels the rest and is returned.
func prepareModels(ctx context.Context, c *config.Config, loader *dataset.Loader) (map[mapview.Model]*mapview.Prepared, error) {
	g, ctx := errgroup.WithContext(ctx)

	var mu sync.Mutex
	out := make(map[mapview.Model]*mapview.Prepared, len(mapview.Models))

	for _, m := range mapview.Models {
		m := m
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			prep, err := prepareModel(c, loader, m)
			if err != nil {
				return err
			}
			zap.L().Info("model ready",
				zap.String("component", "loader"),
				zap.String("model", string(m)),
				zap.String("path", modelPath(c, m)),
				zap.Int("features", prep.Len()),
				zap.Float64("center_lat", prep.Center.Latitude),
				zap.Float64("center_lon", prep.Center.Longitude),
			)
			mu.Lock()
			out[m] = prep
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
