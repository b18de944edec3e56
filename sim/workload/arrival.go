package workload

import (
	"math"
	"math/rand"

	"github.com/sirupsen/logrus"
)

// ArrivalSampler generates changeset arrival ticks.
type ArrivalSampler interface {
	// SampleArrival returns the next arrival tick given the previous one.
	// Interval-based samplers always return a tick after prev.
	SampleArrival(rng *rand.Rand, prev int64) int64
}

// UniformSampler draws each arrival independently from [min, max).
type UniformSampler struct {
	min, max int64
}

func (s *UniformSampler) SampleArrival(rng *rand.Rand, _ int64) int64 {
	return s.min + rng.Int63n(s.max-s.min)
}

// PoissonSampler generates exponentially-distributed inter-arrival gaps (CV=1).
type PoissonSampler struct {
	meanInterval float64 // ticks
}

func (s *PoissonSampler) SampleArrival(rng *rand.Rand, prev int64) int64 {
	iat := int64(rng.ExpFloat64() * s.meanInterval)
	if iat < 1 {
		iat = 1
	}
	return prev + iat
}

// GammaSampler generates Gamma-distributed inter-arrival gaps.
// CV > 1 produces bursty arrivals (pushes that land together).
type GammaSampler struct {
	shape float64 // 1/CV² (alpha parameter)
	scale float64 // CV² * mean interval (beta parameter)
}

func (s *GammaSampler) SampleArrival(rng *rand.Rand, prev int64) int64 {
	iat := int64(gammaRand(rng, s.shape, s.scale))
	if iat < 1 {
		iat = 1
	}
	return prev + iat
}

// gammaRand samples from Gamma(shape, scale) using Marsaglia-Tsang's method.
// For shape >= 1: direct method.
// For shape < 1: Gamma(shape) = Gamma(shape+1) * U^(1/shape).
func gammaRand(rng *rand.Rand, shape, scale float64) float64 {
	if shape < 1.0 {
		u := rng.Float64()
		return gammaRand(rng, shape+1.0, scale) * math.Pow(u, 1.0/shape)
	}

	d := shape - 1.0/3.0
	c := 1.0 / math.Sqrt(9.0*d)

	for {
		var x, v float64
		for {
			x = rng.NormFloat64()
			v = 1.0 + c*x
			if v > 0 {
				break
			}
		}
		v = v * v * v
		u := rng.Float64()

		// Squeeze test
		if u < 1.0-0.0331*(x*x)*(x*x) {
			return d * v * scale
		}
		if math.Log(u) < 0.5*x*x+d*(1.0-v+math.Log(v)) {
			return d * v * scale
		}
	}
}

// NewArrivalSampler creates an ArrivalSampler from a validated spec.
func NewArrivalSampler(spec ArrivalSpec) ArrivalSampler {
	switch spec.Process {
	case "uniform":
		return &UniformSampler{min: spec.MinTick, max: spec.MaxTick}

	case "poisson":
		return &PoissonSampler{meanInterval: spec.MeanInterval}

	case "gamma":
		cv := spec.CV
		if cv <= 0 {
			cv = 1.0
		}
		shape := 1.0 / (cv * cv)
		scale := spec.MeanInterval * cv * cv
		if shape < 0.01 {
			logrus.Warnf("Gamma shape %.4f (CV=%.1f) is very small; falling back to Poisson", shape, cv)
			return &PoissonSampler{meanInterval: spec.MeanInterval}
		}
		return &GammaSampler{shape: shape, scale: scale}

	default:
		// Validated before reaching here
		return &UniformSampler{min: spec.MinTick, max: spec.MaxTick}
	}
}
