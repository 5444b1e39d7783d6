package blend

import (
	"bytes"
	"context"
	"math"
	"testing"

	"deblend/internal/models"
	"deblend/pkg/bbox"
	"deblend/pkg/component"
	"deblend/pkg/frame"
	"deblend/pkg/modelerr"
	"deblend/pkg/parameter"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFrame(t *testing.T, shape []int, opts ...frame.Option) *frame.Frame {
	t.Helper()
	f, err := frame.New(shape, opts...)
	require.NoError(t, err)
	return f
}

func constantSource(t *testing.T, f component.Frame, box bbox.Box, v float64) component.Model {
	t.Helper()
	data := models.NewCube(box.Shape)
	data.Fill(v)
	c, err := component.NewCubeComponentFromData(f, data, component.WithBox(box))
	require.NoError(t, err)
	return c
}

func testScene(t *testing.T) (*frame.Frame, []component.Model) {
	f := newFrame(t, []int{2, 8, 8})
	return f, []component.Model{
		constantSource(t, f, bbox.Box{Shape: [3]int{2, 3, 3}, Origin: [3]int{0, 1, 1}}, 1),
		constantSource(t, f, bbox.Box{Shape: [3]int{2, 3, 3}, Origin: [3]int{0, 2, 2}}, 2),
		constantSource(t, f, bbox.Box{Shape: [3]int{2, 2, 2}, Origin: [3]int{0, 20, 20}}, 5),
	}
}

func TestRender(t *testing.T) {
	f, sources := testScene(t)
	b, err := New(f, sources, WithWorkers(2))
	require.NoError(t, err)

	img, err := b.Render(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, f.Shape(), img.Shape)

	assert.Equal(t, 1.0, img.At(0, 1, 1))
	assert.Equal(t, 3.0, img.At(1, 2, 2))
	assert.Equal(t, 2.0, img.At(0, 4, 4))
	assert.Equal(t, 0.0, img.At(0, 7, 7))
	assert.Equal(t, 2*(9*1+9*2.0), img.Sum())
	assert.Len(t, b.Parameters(), 3)
}

func TestRenderSourcesIndependentOfWorkers(t *testing.T) {
	f, sources := testScene(t)
	serial, err := New(f, sources, WithWorkers(1))
	require.NoError(t, err)
	parallel, err := New(f, sources, WithWorkers(8))
	require.NoError(t, err)

	a, err := serial.RenderSources(context.Background(), nil)
	require.NoError(t, err)
	p, err := parallel.RenderSources(context.Background(), nil)
	require.NoError(t, err)

	require.Len(t, a, len(sources))
	for i := range a {
		assert.Equal(t, a[i].Data, p[i].Data, "source %d", i)
	}
	assert.Zero(t, a[2].Sum(), "source outside the frame contributes nothing")
}

func TestRenderCancelled(t *testing.T) {
	f, sources := testScene(t)
	b, err := New(f, sources)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = b.Render(ctx, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewErrors(t *testing.T) {
	f, sources := testScene(t)
	other := newFrame(t, []int{2, 8, 8})

	_, err := New(nil, sources)
	assert.ErrorIs(t, err, modelerr.ErrTypeMismatch)

	mixed := append(sources, constantSource(t, other, other.Box(), 1))
	_, err = New(f, mixed)
	assert.ErrorIs(t, err, modelerr.ErrAlignmentMismatch)

	empty, err := New(f, nil)
	require.NoError(t, err)
	img, err := empty.Render(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, img.Sum())
}

func TestEvaluate(t *testing.T) {
	f, sources := testScene(t)
	b, err := New(f, sources)
	require.NoError(t, err)

	model, err := b.Render(context.Background(), nil)
	require.NoError(t, err)

	m, err := b.Evaluate(context.Background(), model.Clone(), nil)
	require.NoError(t, err)
	assert.Zero(t, m.RMSE)
	assert.Zero(t, m.MeanResidual)
	assert.InDelta(t, 1, m.Correlation, 1e-12)
	assert.Equal(t, m.ModelFlux, m.ObservedFlux)

	shifted := model.Clone()
	for i := range shifted.Data {
		shifted.Data[i]++
	}
	m, err = b.Evaluate(context.Background(), shifted, nil)
	require.NoError(t, err)
	assert.InDelta(t, 1, m.RMSE, 1e-12)
	assert.InDelta(t, 1, m.MeanResidual, 1e-12)
	assert.InDelta(t, float64(model.Len()), m.ObservedFlux-m.ModelFlux, 1e-9)

	residual, err := b.Residual(context.Background(), shifted, nil)
	require.NoError(t, err)
	for _, v := range residual.Data {
		if math.Abs(v-1) > 1e-12 {
			t.Fatalf("Expected residual of 1 everywhere, got %v", v)
		}
	}

	_, err = b.Evaluate(context.Background(), models.NewCube([3]int{1, 8, 8}), nil)
	assert.ErrorIs(t, err, modelerr.ErrInvalidDimension)
	_, err = b.Residual(context.Background(), models.NewCube([3]int{1, 8, 8}), nil)
	assert.ErrorIs(t, err, modelerr.ErrInvalidDimension)
}

func TestFootprints(t *testing.T) {
	model := newFrame(t, []int{1, 10, 10})
	obs := newFrame(t, []int{1, 6, 6}, frame.WithOrigin([3]int{0, 2, 2}))
	sources := []component.Model{
		constantSource(t, model, bbox.Box{Shape: [3]int{1, 3, 3}, Origin: [3]int{0, 3, 3}}, 1),
		constantSource(t, model, bbox.Box{Shape: [3]int{1, 3, 3}}, 1),
		constantSource(t, model, bbox.Box{Shape: [3]int{1, 2, 2}, Origin: [3]int{0, 8, 0}}, 1),
	}
	b, err := New(obs, sources)
	require.NoError(t, err)

	fps, err := b.Footprints(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, fps, 3)
	assert.Equal(t, bbox.Box{Shape: [3]int{1, 3, 3}, Origin: [3]int{0, 3, 3}}, fps[0])
	assert.Equal(t, bbox.Box{Shape: [3]int{1, 1, 1}, Origin: [3]int{0, 2, 2}}, fps[1], "clipped to the observation")
	assert.Equal(t, bbox.Box{}, fps[2], "no signal inside the observation")
}

func TestLogging(t *testing.T) {
	f, sources := testScene(t)
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})

	b, err := New(f, sources, WithLogger(logger))
	require.NoError(t, err)
	_, err = b.Render(context.Background(), nil)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "rendered source")
	assert.Contains(t, buf.String(), "rendered blend")
}

func TestFreeParameters(t *testing.T) {
	f, sources := testScene(t)
	b, err := New(f, sources)
	require.NoError(t, err)
	require.Len(t, b.FreeParameters(), 3)

	params := b.Parameters()
	params[1].Fixed = true
	free := b.FreeParameters()
	require.Len(t, free, 2)
	assert.Same(t, params[0], free[0])
	assert.Same(t, params[2], free[1])
}

func TestRenderRejectsMisSizedValues(t *testing.T) {
	f, sources := testScene(t)
	b, err := New(f, sources)
	require.NoError(t, err)

	values := parameter.Values{b.Parameters()[0]: {1, 2, 3}}
	_, err = b.Render(context.Background(), values)
	assert.ErrorIs(t, err, modelerr.ErrInvalidDimension)

	_, err = b.Evaluate(context.Background(), models.NewCube(f.Shape()), values)
	assert.ErrorIs(t, err, modelerr.ErrInvalidDimension)
}
