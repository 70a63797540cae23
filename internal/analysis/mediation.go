package analysis

import (
	"math"

	"aistats/domain/core"
	"aistats/domain/stats"

	"gonum.org/v1/gonum/stat/distuv"
)

// Mediation estimates the simple mediation model X -> M -> Y with three OLS fits
// (M~X, Y~X+M, Y~X) over complete rows, testing the indirect effect a*b with Sobel's z.
func (e *Engine) Mediation(x, m, y string) (*stats.MediationResult, error) {
	ds, err := e.snapshot()
	if err != nil {
		return nil, err
	}
	cols, err := lookupAll(ds, "mediation", x, m, y)
	if err != nil {
		return nil, err
	}
	names := columnNames(cols)
	data := completeCases(cols)
	xs, ms, ys := data[0], data[1], data[2]
	n := len(xs)
	if n < minMediationRows {
		return nil, core.NewInsufficientDataError("mediation", n, minMediationRows)
	}

	subject := "mediation " + names[0] + " -> " + names[1] + " -> " + names[2]
	pathA, err := ols(subject+" (path a)", ms, [][]float64{xs})
	if err != nil {
		return nil, err
	}
	pathB, err := ols(subject+" (path b)", ys, [][]float64{xs, ms})
	if err != nil {
		return nil, err
	}
	pathC, err := ols(subject+" (path c)", ys, [][]float64{xs})
	if err != nil {
		return nil, err
	}

	a, b := pathA.path(1), pathB.path(2)
	indirect := a.Estimate * b.Estimate
	sobelSE := math.Sqrt(b.Estimate*b.Estimate*a.StdError*a.StdError + a.Estimate*a.Estimate*b.StdError*b.StdError)
	z := indirect / sobelSE
	sobelP := 2 * distuv.UnitNormal.Survival(math.Abs(z))
	c := pathC.path(1)
	ratio := 0.0
	if c.Estimate != 0 {
		ratio = indirect / c.Estimate * 100
	}
	if err := checkFinite(subject, indirect, z, sobelP, ratio); err != nil {
		return nil, err
	}

	result := &stats.MediationResult{
		X:              names[0],
		M:              names[1],
		Y:              names[2],
		N:              n,
		A:              a,
		B:              b,
		CPrime:         pathB.path(1),
		C:              c,
		Indirect:       indirect,
		SobelZ:         z,
		SobelP:         sobelP,
		MediationRatio: ratio,
		Significant:    a.PValue < 0.05 && b.PValue < 0.05,
	}
	e.logger.Debug("[Engine] %s: indirect=%.4f z=%.4f p=%.4g", subject, indirect, z, sobelP)
	e.remember(result)
	return result, nil
}
