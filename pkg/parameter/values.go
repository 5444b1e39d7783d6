package parameter

import "deblend/pkg/modelerr"

// Values overrides the current data of parameters during a render, e.g. with
// the trial point of an optimiser. Parameters without an entry render with
// their own Data. A nil Values is valid.
type Values map[*Parameter][]float64

// Of returns the data to use for p. An override whose length differs from
// p.Size() is ignored; Validate reports it.
func (v Values) Of(p *Parameter) []float64 {
	if d, ok := v[p]; ok && len(d) == p.Size() {
		return d
	}
	return p.Data
}

// Validate checks that every override has the size of its parameter.
func (v Values) Validate() error {
	for p, d := range v {
		if p == nil {
			return modelerr.New(modelerr.CodeTypeMismatch, "override for a nil parameter")
		}
		if len(d) != p.Size() {
			return modelerr.New(modelerr.CodeInvalidDimension, "parameter %s: %d values, want %d", p.Name, len(d), p.Size())
		}
	}
	return nil
}

// Bind pairs data positionally with params, the order in which a model lists
// its parameters. Each entry must have the size of its parameter.
func Bind(params []*Parameter, data [][]float64) (Values, error) {
	if len(params) != len(data) {
		return nil, modelerr.New(modelerr.CodeInvalidDimension, "%d values for %d parameters", len(data), len(params))
	}
	v := make(Values, len(params))
	for i, p := range params {
		if len(data[i]) != p.Size() {
			return nil, modelerr.New(modelerr.CodeInvalidDimension, "parameter %d (%s): %d values, want %d", i, p.Name, len(data[i]), p.Size())
		}
		v[p] = data[i]
	}
	return v, nil
}
