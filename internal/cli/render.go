package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"deblend/internal/models"
	"deblend/pkg/blend"
	"deblend/pkg/config"
	"deblend/pkg/visualization"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	config    string // scene configuration file
	output    string // raw float64 output of the rendered scene
	observed  string // raw float64 observation in the model frame
	slicesDir string // directory for per-channel PNG images
	workers   int    // overrides render.numWorkers when positive
}

func newRenderCmd() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the sources of a scene into its model frame",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd.Context(), cmd.OutOrStdout(), &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.config, "config", "c", "deblend.yaml", "scene configuration (defaults are used if missing)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the rendered cube as little-endian float64")
	cmd.Flags().StringVar(&opts.observed, "observed", "", "little-endian float64 observation to evaluate against")
	cmd.Flags().StringVar(&opts.slicesDir, "slices-dir", "", "write every channel as a PNG image into this directory")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 0, "number of concurrent renderers (default from config)")

	return cmd
}

func runRender(ctx context.Context, out io.Writer, opts *renderOpts) error {
	logger := loggerFromContext(ctx)

	cfg, err := config.LoadConfig(opts.config)
	if err != nil {
		return err
	}
	if cfg.Output.Verbose {
		logger.SetLevel(log.DebugLevel)
	}

	f, err := cfg.BuildFrame()
	if err != nil {
		return fmt.Errorf("building frame: %w", err)
	}
	sources, err := cfg.BuildSources(f)
	if err != nil {
		return fmt.Errorf("building sources: %w", err)
	}
	logger.Debug("Loaded scene", "frame", f, "sources", len(sources))

	workers := cfg.Render.NumWorkers
	if opts.workers > 0 {
		workers = opts.workers
	}
	scene, err := blend.New(f, sources, blend.WithWorkers(workers), blend.WithLogger(logger))
	if err != nil {
		return err
	}

	prog := newProgress(logger, "Rendered scene", "sources", len(sources), "workers", workers,
		"free", len(scene.FreeParameters()))
	img, err := scene.Render(ctx, nil)
	if err != nil {
		return err
	}
	prog.done("flux", img.Sum())

	prog = newProgress(logger, "Measured footprints", "threshold", cfg.Render.FootprintThreshold)
	footprints, err := scene.Footprints(ctx, cfg.Render.FootprintThreshold)
	if err != nil {
		return err
	}
	empty := 0
	for _, fp := range footprints {
		if fp.Empty() {
			empty++
		}
	}
	prog.done("empty", empty)

	fmt.Fprintf(out, "frame: %s\n", f)
	fmt.Fprintf(out, "flux: %.6g\n", img.Sum())
	for i, fp := range footprints {
		fmt.Fprintf(out, "source %d: box %s footprint %s\n", i, sources[i].Box(), fp)
	}

	if opts.output != "" {
		if err := img.SaveRaw(opts.output); err != nil {
			return err
		}
		logger.Info("Wrote rendered cube", "path", opts.output, "shape", img.Shape)
	}

	if opts.observed != "" {
		observed, err := models.LoadRaw(opts.observed, f.Shape())
		if err != nil {
			return err
		}
		prog = newProgress(logger, "Evaluated observation", "path", opts.observed)
		m, err := scene.Evaluate(ctx, observed, nil)
		if err != nil {
			return err
		}
		prog.done("rmse", m.RMSE)
		fmt.Fprintf(out, "rmse: %.6g\n", m.RMSE)
		fmt.Fprintf(out, "mean residual: %.6g\n", m.MeanResidual)
		fmt.Fprintf(out, "correlation: %.6g\n", m.Correlation)
		fmt.Fprintf(out, "model flux: %.6g\n", m.ModelFlux)
		fmt.Fprintf(out, "observed flux: %.6g\n", m.ObservedFlux)
	}

	dir := opts.slicesDir
	if dir == "" && cfg.Output.SaveSlices {
		dir = cfg.Output.SlicesDir
	}
	if dir != "" {
		if err := visualization.NewViewer(img).SaveSliceSequence("z", dir); err != nil {
			return fmt.Errorf("saving slices: %w", err)
		}
		logger.Info("Saved channel images", "dir", dir, "channels", img.Depth())
	}

	return nil
}
