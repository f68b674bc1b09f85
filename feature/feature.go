// Package feature provides elementwise helpers for batches of binary
// feature vectors. A batch is a *mat.Dense with one sample per row and
// one feature per column; values are 0/1 at the boundaries and may be
// fractional only while a search works in a relaxed continuous state.
package feature

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// apply returns a fresh matrix with fn mapped over every element of x.
func apply(fn func(v float64) float64, x *mat.Dense) *mat.Dense {
	r, c := x.Dims()
	o := mat.NewDense(r, c, nil)
	o.Apply(func(_, _ int, v float64) float64 { return fn(v) }, x)
	return o
}

// Round thresholds x against alpha: out[i,j] = 1 iff x[i,j] > alpha.
func Round(x *mat.Dense, alpha float64) *mat.Dense {
	return apply(func(v float64) float64 {
		if v > alpha {
			return 1
		}
		return 0
	}, x)
}

// RoundRand thresholds every component of x against an independent
// uniform [0,1) draw. Same elementwise semantics as Round with a
// per-component alpha.
func RoundRand(x *mat.Dense, rnd *rand.Rand) *mat.Dense {
	dist := distuv.Uniform{Min: 0, Max: 1, Src: rnd}
	r, c := x.Dims()
	o := mat.NewDense(r, c, nil)
	o.Apply(func(_, _ int, v float64) float64 {
		if v > dist.Rand() {
			return 1
		}
		return 0
	}, x)
	return o
}

// Or merges two binary matrices elementwise: out = a OR b.
func Or(a, b *mat.Dense) *mat.Dense {
	r, c := a.Dims()
	o := mat.NewDense(r, c, nil)
	o.Apply(func(i, j int, v float64) float64 {
		if v != 0 || b.At(i, j) != 0 {
			return 1
		}
		return 0
	}, a)
	return o
}

// Xor merges two binary matrices elementwise: out = a XOR b. Used to
// apply a toggle mask to a binary state.
func Xor(a, b *mat.Dense) *mat.Dense {
	r, c := a.Dims()
	o := mat.NewDense(r, c, nil)
	o.Apply(func(i, j int, v float64) float64 {
		if (v != 0) != (b.At(i, j) != 0) {
			return 1
		}
		return 0
	}, a)
	return o
}

// Clip clamps every component into [0,1].
func Clip(x *mat.Dense) *mat.Dense {
	return apply(func(v float64) float64 {
		return math.Min(1, math.Max(0, v))
	}, x)
}

// SignStep returns x + eps*sign(grad). Zero gradient components keep
// their value.
func SignStep(x, grad *mat.Dense, eps float64) *mat.Dense {
	r, c := x.Dims()
	o := mat.NewDense(r, c, nil)
	o.Apply(func(i, j int, v float64) float64 {
		g := grad.At(i, j)
		switch {
		case g > 0:
			return v + eps
		case g < 0:
			return v - eps
		}
		return v
	}, x)
	return o
}

// Uniform draws an r×c matrix of uniform [0,1) values.
func Uniform(r, c int, rnd *rand.Rand) *mat.Dense {
	dist := distuv.Uniform{Min: 0, Max: 1, Src: rnd}
	o := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			o.Set(i, j, dist.Rand())
		}
	}
	return o
}

// Init builds the starting point of a search. With sample false it
// returns a copy of x. With sample true it draws a uniformly random
// binary matrix and OR-merges it with x, so the random start still
// contains every active feature of x.
func Init(x *mat.Dense, sample bool, rnd *rand.Rand) *mat.Dense {
	if !sample {
		return mat.DenseCopyOf(x)
	}
	r, c := x.Dims()
	return Or(x, Round(Uniform(r, c, rnd), 0.5))
}
