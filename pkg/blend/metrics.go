package blend

import (
	"context"
	"math"

	"deblend/internal/models"
	"deblend/pkg/modelerr"
	"deblend/pkg/parameter"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Metrics compares a rendered blend with observed data.
type Metrics struct {
	// RMSE is the root mean square of observed - model.
	RMSE float64

	// MeanResidual is the mean of observed - model. A negative value means
	// the model carries more flux than the data.
	MeanResidual float64

	// Correlation is the Pearson correlation between model and data pixels.
	// It is NaN when either has no variance.
	Correlation float64

	// ModelFlux and ObservedFlux are the pixel sums of model and data.
	ModelFlux    float64
	ObservedFlux float64
}

// Residual returns observed - model in the target frame.
func (b *Blend) Residual(ctx context.Context, observed models.Cube, values parameter.Values) (models.Cube, error) {
	if observed.Shape != b.frame.Shape() {
		return models.Cube{}, modelerr.New(modelerr.CodeInvalidDimension, "observed shape %v does not match frame %v", observed.Shape, b.frame.Shape())
	}
	model, err := b.Render(ctx, values)
	if err != nil {
		return models.Cube{}, err
	}
	residual := observed.Clone()
	floats.Sub(residual.Data, model.Data)
	return residual, nil
}

// Evaluate renders the blend and computes Metrics against observed.
func (b *Blend) Evaluate(ctx context.Context, observed models.Cube, values parameter.Values) (Metrics, error) {
	if observed.Shape != b.frame.Shape() {
		return Metrics{}, modelerr.New(modelerr.CodeInvalidDimension, "observed shape %v does not match frame %v", observed.Shape, b.frame.Shape())
	}
	model, err := b.Render(ctx, values)
	if err != nil {
		return Metrics{}, err
	}
	return compare(observed, model), nil
}

func compare(observed, model models.Cube) Metrics {
	m := Metrics{
		ModelFlux:    model.Sum(),
		ObservedFlux: observed.Sum(),
	}
	n := len(observed.Data)
	if n == 0 {
		return m
	}

	residual := make([]float64, n)
	floats.SubTo(residual, observed.Data, model.Data)
	m.RMSE = math.Sqrt(floats.Dot(residual, residual) / float64(n))
	m.MeanResidual = stat.Mean(residual, nil)
	m.Correlation = stat.Correlation(model.Data, observed.Data, nil)
	return m
}
