// Package regression implements ordinary least squares fitting over gonum matrices.
package regression

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

var (
	ErrNoSamples          = errors.New("regression: no samples")
	ErrDimensionMismatch  = errors.New("regression: dimension mismatch")
	ErrNotFitted          = errors.New("regression: model not fitted")
	ErrFactorization      = errors.New("regression: SVD factorization failed")
	ErrSingularPredictors = errors.New("regression: predictors have zero variance")
)

// Model is a fitted linear model y = intercept + x·coef
type Model interface {
	Fit(x mat.Matrix, y []float64) error
	Predict(x mat.Matrix) ([]float64, error)
	Score(x mat.Matrix, y []float64) (float64, error)
	Intercept() float64
	Coef() []float64
}

// LinearRegression is an ordinary least squares model with an intercept.
//
// Features and target are centred before solving, and the centred system is
// solved for the minimum-norm solution using the SVD, so rank-deficient
// designs (a constant column, duplicated columns) still produce a fit.
type LinearRegression struct {
	coef      []float64
	intercept float64
	fitted    bool
}

// NewLinearRegression creates an unfitted model
func NewLinearRegression() *LinearRegression {
	return &LinearRegression{}
}

// Fit estimates coefficients from the n×p design matrix x and n targets y
func (m *LinearRegression) Fit(x mat.Matrix, y []float64) error {
	n, p := x.Dims()
	if n == 0 || p == 0 {
		return ErrNoSamples
	}
	if len(y) != n {
		return fmt.Errorf("%w: %d rows, %d targets", ErrDimensionMismatch, n, len(y))
	}

	xMean := make([]float64, p)
	for j := 0; j < p; j++ {
		for i := 0; i < n; i++ {
			xMean[j] += x.At(i, j)
		}
		xMean[j] /= float64(n)
	}
	var yMean float64
	for _, v := range y {
		yMean += v
	}
	yMean /= float64(n)

	centred := mat.NewDense(n, p, nil)
	yc := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < p; j++ {
			centred.Set(i, j, x.At(i, j)-xMean[j])
		}
		yc.SetVec(i, y[i]-yMean)
	}

	coef := make([]float64, p)
	beta, err := solveLeastSquares(centred, yc)
	switch {
	case errors.Is(err, ErrSingularPredictors):
		// Every feature is constant: the best fit is the mean.
	case err != nil:
		return err
	default:
		for j := 0; j < p; j++ {
			coef[j] = beta.AtVec(j)
		}
	}

	intercept := yMean
	for j := 0; j < p; j++ {
		intercept -= xMean[j] * coef[j]
	}

	m.coef = coef
	m.intercept = intercept
	m.fitted = true
	return nil
}

func solveLeastSquares(a *mat.Dense, b *mat.VecDense) (*mat.VecDense, error) {
	var svd mat.SVD
	if ok := svd.Factorize(a, mat.SVDThin); !ok {
		return nil, ErrFactorization
	}
	n, p := a.Dims()
	rcond := math.Nextafter(1, 2) - 1
	rank := svd.Rank(rcond * float64(max(n, p)))
	if rank == 0 {
		return nil, ErrSingularPredictors
	}
	var beta mat.VecDense
	svd.SolveVecTo(&beta, b, rank)
	return &beta, nil
}

// Predict evaluates the model for each row of x
func (m *LinearRegression) Predict(x mat.Matrix) ([]float64, error) {
	if !m.fitted {
		return nil, ErrNotFitted
	}
	n, p := x.Dims()
	if p != len(m.coef) {
		return nil, fmt.Errorf("%w: model has %d features, got %d", ErrDimensionMismatch, len(m.coef), p)
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		v := m.intercept
		for j, c := range m.coef {
			v += c * x.At(i, j)
		}
		out[i] = v
	}
	return out, nil
}

// Score returns the coefficient of determination R² of the prediction
func (m *LinearRegression) Score(x mat.Matrix, y []float64) (float64, error) {
	pred, err := m.Predict(x)
	if err != nil {
		return 0, err
	}
	if len(pred) != len(y) {
		return 0, fmt.Errorf("%w: %d predictions, %d targets", ErrDimensionMismatch, len(pred), len(y))
	}
	var mean float64
	for _, v := range y {
		mean += v
	}
	mean /= float64(len(y))

	var ssRes, ssTot float64
	for i, v := range y {
		ssRes += (v - pred[i]) * (v - pred[i])
		ssTot += (v - mean) * (v - mean)
	}
	if ssTot == 0 {
		if ssRes == 0 {
			return 1, nil
		}
		return 0, nil
	}
	return 1 - ssRes/ssTot, nil
}

// Intercept returns the fitted intercept
func (m *LinearRegression) Intercept() float64 {
	return m.intercept
}

// Coef returns a copy of the fitted feature coefficients
func (m *LinearRegression) Coef() []float64 {
	out := make([]float64, len(m.coef))
	copy(out, m.coef)
	return out
}

var _ Model = (*LinearRegression)(nil)
