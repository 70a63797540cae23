package analysis

import (
	"errors"
	"math"

	"aistats/domain/core"
	"aistats/domain/stats"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

var errCollinear = errors.New("predictors are collinear")

// olsFit is an intercept model y = b0 + b1*x1 + ... estimated by least squares.
// Index 0 of every slice is the intercept.
type olsFit struct {
	beta  []float64
	se    []float64
	t     []float64
	p     []float64
	sse   float64
	sst   float64
	n     int
	dfRes int
}

// ols fits y on the predictor columns xs (each the same length as y).
// Callers guarantee len(y) >= len(xs)+2.
func ols(subject string, y []float64, xs [][]float64) (*olsFit, error) {
	n, k := len(y), len(xs)
	fit := &olsFit{n: n, dfRes: n - k - 1}

	yMean := stat.Mean(y, nil)
	for _, v := range y {
		fit.sst += (v - yMean) * (v - yMean)
	}
	if fit.sst == 0 {
		return nil, core.NewComputationError(subject, errZeroVariance)
	}

	var diag []float64 // diagonal of (X'X)^-1
	if k == 1 {
		x := xs[0]
		alpha, beta := stat.LinearRegression(x, y, nil, false)
		xMean := stat.Mean(x, nil)
		sxx := 0.0
		for _, v := range x {
			sxx += (v - xMean) * (v - xMean)
		}
		if sxx == 0 {
			return nil, core.NewComputationError(subject, errZeroVariance)
		}
		fit.beta = []float64{alpha, beta}
		diag = []float64{1/float64(n) + xMean*xMean/sxx, 1 / sxx}
	} else {
		design := mat.NewDense(n, k+1, nil)
		for r := 0; r < n; r++ {
			design.Set(r, 0, 1)
			for j, x := range xs {
				design.Set(r, j+1, x[r])
			}
		}
		var xtx, inv mat.Dense
		xtx.Mul(design.T(), design)
		if err := inv.Inverse(&xtx); err != nil {
			return nil, core.NewComputationError(subject, errCollinear)
		}
		var xty, b mat.VecDense
		xty.MulVec(design.T(), mat.NewVecDense(n, y))
		b.MulVec(&inv, &xty)

		fit.beta = make([]float64, k+1)
		diag = make([]float64, k+1)
		for j := range fit.beta {
			fit.beta[j] = b.AtVec(j)
			diag[j] = inv.At(j, j)
		}
	}

	for r := 0; r < n; r++ {
		predicted := fit.beta[0]
		for j, x := range xs {
			predicted += fit.beta[j+1] * x[r]
		}
		fit.sse += (y[r] - predicted) * (y[r] - predicted)
	}

	sigma2 := fit.sse / float64(fit.dfRes)
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(fit.dfRes)}
	fit.se = make([]float64, k+1)
	fit.t = make([]float64, k+1)
	fit.p = make([]float64, k+1)
	for j := range fit.beta {
		fit.se[j] = math.Sqrt(sigma2 * diag[j])
		fit.t[j] = fit.beta[j] / fit.se[j]
		fit.p[j] = 2 * dist.Survival(math.Abs(fit.t[j]))
	}

	values := append(append(append([]float64{fit.sse}, fit.beta...), fit.se...), fit.t...)
	if err := checkFinite(subject, append(values, fit.p...)...); err != nil {
		return nil, err
	}
	return fit, nil
}

func (f *olsFit) path(j int) stats.Path {
	return stats.Path{Estimate: f.beta[j], StdError: f.se[j], TStatistic: f.t[j], PValue: f.p[j]}
}

// Regression fits outcome on one or more predictors by ordinary least squares
// over rows complete in every variable. Names resolve like Comparison.
func (e *Engine) Regression(outcome string, predictors []string) (*stats.RegressionResult, error) {
	ds, err := e.snapshot()
	if err != nil {
		return nil, err
	}
	if len(predictors) == 0 {
		return nil, core.NewInsufficientDataError("regression predictors", 0, 1)
	}
	cols, err := lookupAll(ds, "regression", append([]string{outcome}, predictors...)...)
	if err != nil {
		return nil, err
	}
	names := columnNames(cols)
	k := len(predictors)

	complete := completeCases(cols)
	n := len(complete[0])
	if n < k+2 {
		return nil, core.NewInsufficientDataError("regression", n, k+2)
	}

	fit, err := ols("regression of "+names[0], complete[0], complete[1:])
	if err != nil {
		return nil, err
	}

	rSquared := 1 - fit.sse/fit.sst
	adj := 1 - (1-rSquared)*float64(n-1)/float64(fit.dfRes)
	f := ((fit.sst - fit.sse) / float64(k)) / (fit.sse / float64(fit.dfRes))
	fp := distuv.F{D1: float64(k), D2: float64(fit.dfRes)}.Survival(f)
	residualStd := math.Sqrt(fit.sse / float64(fit.dfRes))
	if err := checkFinite("regression of "+names[0], rSquared, adj, f, fp, residualStd); err != nil {
		return nil, err
	}

	terms := append([]string{stats.InterceptTerm}, names[1:]...)
	coefficients := make([]stats.Coefficient, len(terms))
	for j, term := range terms {
		coefficients[j] = stats.Coefficient{
			Term:       term,
			Estimate:   fit.beta[j],
			StdError:   fit.se[j],
			TStatistic: fit.t[j],
			PValue:     fit.p[j],
		}
	}

	result := &stats.RegressionResult{
		Outcome:      names[0],
		Predictors:   names[1:],
		N:            n,
		Coefficients: coefficients,
		RSquared:     rSquared,
		AdjRSquared:  adj,
		FStatistic:   f,
		FPValue:      fp,
		DFModel:      k,
		DFResidual:   fit.dfRes,
		ResidualStd:  residualStd,
		Significance: stats.SignificanceTier(fp),
	}
	e.logger.Debug("[Engine] regression %s ~ %v: R2=%.4f F=%.4f p=%.4g", names[0], names[1:], rSquared, f, fp)
	e.remember(result)
	return result, nil
}
