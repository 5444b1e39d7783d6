// Package blend renders a scene of many sources into an observation frame and
// compares the result with observed data.
//
// Sources are independent model graphs that share one model frame. Rendering
// them does not touch shared state, so Blend fans the renders out over a pool
// of goroutines and sums the projected images.
package blend

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"time"

	"deblend/internal/models"
	"deblend/pkg/bbox"
	"deblend/pkg/component"
	"deblend/pkg/modelerr"
	"deblend/pkg/parameter"

	"github.com/charmbracelet/log"
	"gonum.org/v1/gonum/floats"
)

// Blend is a set of sources rendered together into a target frame.
type Blend struct {
	// frame is the target every source is projected into
	frame component.Frame

	// sources are the top-level model nodes, one per object
	sources []component.Model

	// workers bounds the number of concurrent renders
	workers int

	logger *log.Logger
}

// Option configures a Blend.
type Option func(*Blend)

// WithWorkers sets the number of concurrent renders. Values below one select
// a single worker.
func WithWorkers(n int) Option {
	return func(b *Blend) { b.workers = max(n, 1) }
}

// WithLogger sets the logger used for progress messages.
func WithLogger(l *log.Logger) Option {
	return func(b *Blend) { b.logger = l }
}

// New creates a blend rendering sources into target. All sources must share
// the same model frame; target may be a different frame, e.g. the frame of
// one observation.
func New(target component.Frame, sources []component.Model, opts ...Option) (*Blend, error) {
	if target == nil {
		return nil, modelerr.New(modelerr.CodeTypeMismatch, "blend needs a target frame")
	}
	for i, s := range sources {
		if s == nil {
			return nil, modelerr.New(modelerr.CodeTypeMismatch, "source %d is nil", i)
		}
		if !component.SameFrame(s.Frame(), sources[0].Frame()) {
			return nil, modelerr.New(modelerr.CodeAlignmentMismatch, "source %d uses a different model frame", i)
		}
	}

	b := &Blend{
		frame:   target,
		sources: append([]component.Model(nil), sources...),
		workers: runtime.NumCPU(),
		logger:  log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Frame returns the target frame.
func (b *Blend) Frame() component.Frame { return b.frame }

// Sources returns the top-level models.
func (b *Blend) Sources() []component.Model { return b.sources }

// Parameters lists the parameters of all sources in source order.
func (b *Blend) Parameters() []*parameter.Parameter {
	var out []*parameter.Parameter
	for _, s := range b.sources {
		out = append(out, s.Parameters()...)
	}
	return out
}

// FreeParameters lists the parameters an optimiser may update, i.e. those
// not marked Fixed, in source order.
func (b *Blend) FreeParameters() []*parameter.Parameter {
	var out []*parameter.Parameter
	for _, p := range b.Parameters() {
		if !p.Fixed {
			out = append(out, p)
		}
	}
	return out
}

// RenderSources projects every source into the target frame. The i-th cube
// belongs to the i-th source.
func (b *Blend) RenderSources(ctx context.Context, values parameter.Values) ([]models.Cube, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("rendering sources: %w", err)
	}
	if err := values.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()
	result := make([]models.Cube, len(b.sources))

	type renderResult struct {
		index int
		cube  models.Cube
	}
	jobs := make(chan int)
	// buffered so workers never block after a cancellation
	results := make(chan renderResult, len(b.sources))

	workers := min(b.workers, len(b.sources))
	for w := 0; w < workers; w++ {
		go func() {
			for i := range jobs {
				results <- renderResult{index: i, cube: b.sources[i].Render(values, b.frame)}
			}
		}()
	}

	// feed jobs until done or cancelled; workers exit once jobs is closed
	go func() {
		defer close(jobs)
		for i := range b.sources {
			select {
			case jobs <- i:
			case <-ctx.Done():
				return
			}
		}
	}()

	for completed := 0; completed < len(b.sources); completed++ {
		select {
		case res := <-results:
			result[res.index] = res.cube
			b.logger.Debug("rendered source", "index", res.index, "box", b.sources[res.index].Box(),
				"progress", fmt.Sprintf("%d/%d", completed+1, len(b.sources)))
		case <-ctx.Done():
			return nil, fmt.Errorf("rendering sources: %w", ctx.Err())
		}
	}

	b.logger.Debug("rendered blend", "sources", len(b.sources), "workers", workers, "elapsed", time.Since(start))
	return result, nil
}

// Render returns the sum of all sources in the target frame.
func (b *Blend) Render(ctx context.Context, values parameter.Values) (models.Cube, error) {
	cubes, err := b.RenderSources(ctx, values)
	if err != nil {
		return models.Cube{}, err
	}
	total := models.NewCube(b.frame.Shape())
	for _, c := range cubes {
		floats.Add(total.Data, c.Data)
	}
	return total, nil
}

// Footprints returns, per source, the box of its pixels above threshold in
// target-frame coordinates. Sources without signal get the zero Box.
func (b *Blend) Footprints(ctx context.Context, threshold float64) ([]bbox.Box, error) {
	cubes, err := b.RenderSources(ctx, nil)
	if err != nil {
		return nil, err
	}
	out := make([]bbox.Box, len(cubes))
	for i, c := range cubes {
		fp := bbox.FromData(c, threshold)
		if !fp.Empty() {
			fp = fp.Offset(b.frame.Box().Origin)
		}
		out[i] = fp
	}
	return out, nil
}
