package rating

import "math"

const maxSolverIterations = 50

// volatilityF is the f(x) whose root gives the new volatility (step 5 of the
// Glicko-2 update).
func volatilityF(x, deltaSq, phiSq, v, a, tauSq float64) float64 {
	ex := math.Exp(x)
	num := ex * (deltaSq - phiSq - v - ex)
	den := 2.0 * (phiSq + v + ex) * (phiSq + v + ex)
	return num/den - (x-a)/tauSq
}

// newVolatility solves for the post-period volatility with the Illinois
// variant of regula falsi. Guaranteed to terminate: after the iteration cap
// it returns the best bracketing estimate rather than iterating on.
func newVolatility(sigma, delta, phi, v float64) float64 {
	a := math.Log(sigma * sigma)
	tauSq := Tau * Tau
	deltaSq := delta * delta
	phiSq := phi * phi

	bigA := a
	var bigB float64
	if deltaSq > phiSq+v {
		bigB = math.Log(deltaSq - phiSq - v)
	} else {
		k := 1.0
		for volatilityF(a-k*Tau, deltaSq, phiSq, v, a, tauSq) < 0 {
			k++
		}
		bigB = a - k*Tau
	}

	fA := volatilityF(bigA, deltaSq, phiSq, v, a, tauSq)
	fB := volatilityF(bigB, deltaSq, phiSq, v, a, tauSq)

	for i := 0; i < maxSolverIterations; i++ {
		bigC := bigA + (bigA-bigB)*fA/(fB-fA)
		fC := volatilityF(bigC, deltaSq, phiSq, v, a, tauSq)

		if math.Abs(fC) < epsilon {
			return math.Exp(bigC / 2.0)
		}

		if fC*fB < 0 {
			bigA = bigB
			fA = fB
		} else {
			// Illinois halving keeps the stale side from pinning convergence.
			fA /= 2.0
		}

		bigB = bigC
		fB = fC
	}

	return math.Exp(bigA / 2.0)
}
