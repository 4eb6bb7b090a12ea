package rating

import "math"

// Glicko-2 system constants.
const (
	Tau     = 0.5
	epsilon = 1e-6
	scale   = 173.7178

	DefaultRating     = 1500.0
	DefaultRD         = 350.0
	DefaultVolatility = 0.06
)

// Player holds the current Glicko-2 state for one symbol, on the public
// (1500-centered) scale.
type Player struct {
	Symbol          string
	Rating          float64
	RatingDeviation float64
	Volatility      float64
}

// NewPlayer returns a player at the unrated defaults.
func NewPlayer(symbol string) Player {
	return Player{
		Symbol:          symbol,
		Rating:          DefaultRating,
		RatingDeviation: DefaultRD,
		Volatility:      DefaultVolatility,
	}
}

// toScale converts to the internal Glicko-2 (mu, phi) scale.
func (p Player) toScale() (mu, phi float64) {
	return (p.Rating - DefaultRating) / scale, p.RatingDeviation / scale
}

// fromScale converts internal values back to the public scale.
func fromScale(mu, phi float64) (rating, rd float64) {
	return scale*mu + DefaultRating, scale * phi
}

// g dampens an opponent's influence by their deviation.
func g(phi float64) float64 {
	return 1.0 / math.Sqrt(1.0+3.0*phi*phi/(math.Pi*math.Pi))
}

// expectedScore is E(mu, mu_j, phi_j): the win probability of mu over mu_j.
func expectedScore(mu, muJ, gPhiJ float64) float64 {
	return 1.0 / (1.0 + math.Exp(-gPhiJ*(mu-muJ)))
}

// UpdateRating plays one rated outcome against the opponent and returns the
// player's post-period state. score is in [0,1]; 0.5 is a draw. The input
// player is not mutated.
func UpdateRating(p Player, opponentRating, opponentRD, score float64) Player {
	mu, phi := p.toScale()
	opp := Player{Rating: opponentRating, RatingDeviation: opponentRD}
	muJ, phiJ := opp.toScale()

	gPhiJ := g(phiJ)
	e := expectedScore(mu, muJ, gPhiJ)

	// Estimated variance of the rating from game outcomes alone.
	v := 1.0 / (gPhiJ * gPhiJ * e * (1.0 - e))

	// Estimated improvement in rating.
	delta := v * gPhiJ * (score - e)

	sigma := newVolatility(p.Volatility, delta, phi, v)

	phiStar := math.Sqrt(phi*phi + sigma*sigma)
	newPhi := 1.0 / math.Sqrt(1.0/(phiStar*phiStar)+1.0/v)
	newMu := mu + newPhi*newPhi*gPhiJ*(score-e)

	rating, rd := fromScale(newMu, newPhi)
	return Player{
		Symbol:          p.Symbol,
		Rating:          rating,
		RatingDeviation: rd,
		Volatility:      sigma,
	}
}
