package rating

import (
	"math"
	"testing"
)

func TestNewPlayerDefaults(t *testing.T) {
	p := NewPlayer("BTCUSDT")
	if p.Rating != DefaultRating || p.RatingDeviation != DefaultRD || p.Volatility != DefaultVolatility {
		t.Fatalf("unexpected defaults: %+v", p)
	}
}

func TestScaleRoundTrip(t *testing.T) {
	p := NewPlayer("BTCUSDT")
	mu, phi := p.toScale()
	rating, rd := fromScale(mu, phi)
	if math.Abs(rating-DefaultRating) > 1e-6 {
		t.Fatalf("rating round trip drifted: %v", rating)
	}
	if math.Abs(rd-DefaultRD) > 1e-6 {
		t.Fatalf("rd round trip drifted: %v", rd)
	}
}

func TestGFunctionRange(t *testing.T) {
	if g(0) != 1.0 {
		t.Fatalf("g(0) = %v, want 1", g(0))
	}
	for _, phi := range []float64{0.1, 1.0, 2.0, 10.0} {
		v := g(phi)
		if v <= 0 || v >= 1 {
			t.Fatalf("g(%v) = %v, want in (0,1)", phi, v)
		}
	}
}

func TestExpectedScoreEqualRatings(t *testing.T) {
	e := expectedScore(0, 0, 1)
	if math.Abs(e-0.5) > 1e-9 {
		t.Fatalf("expected 0.5 for equal ratings, got %v", e)
	}
}

func TestUpdateRatingWin(t *testing.T) {
	p := NewPlayer("BTCUSDT")
	u := UpdateRating(p, 1500, 200, 1.0)
	if u.Rating <= p.Rating {
		t.Fatalf("rating should rise after a win: %v -> %v", p.Rating, u.Rating)
	}
	if u.RatingDeviation >= p.RatingDeviation {
		t.Fatalf("rd should tighten after an outcome: %v -> %v", p.RatingDeviation, u.RatingDeviation)
	}
}

func TestUpdateRatingLoss(t *testing.T) {
	p := NewPlayer("BTCUSDT")
	u := UpdateRating(p, 1500, 200, 0.0)
	if u.Rating >= p.Rating {
		t.Fatalf("rating should fall after a loss: %v -> %v", p.Rating, u.Rating)
	}
	if u.RatingDeviation >= p.RatingDeviation {
		t.Fatalf("rd should tighten after an outcome: %v -> %v", p.RatingDeviation, u.RatingDeviation)
	}
}

func TestUpdateRatingDraw(t *testing.T) {
	p := NewPlayer("BTCUSDT")
	u := UpdateRating(p, p.Rating, 200, 0.5)
	// Symmetric draw: rating barely moves, certainty still improves.
	if math.Abs(u.Rating-p.Rating) > 1e-6 {
		t.Fatalf("draw against equal opponent moved rating to %v", u.Rating)
	}
	if u.RatingDeviation >= p.RatingDeviation {
		t.Fatalf("rd should tighten after a draw: %v", u.RatingDeviation)
	}
}

func TestUpdateRatingDoesNotMutateInput(t *testing.T) {
	p := NewPlayer("BTCUSDT")
	before := p
	_ = UpdateRating(p, 1500, 50, 1.0)
	if p != before {
		t.Fatalf("input player mutated: %+v", p)
	}
}

func TestUpdateRatingDeterministic(t *testing.T) {
	p := NewPlayer("BTCUSDT")
	a := UpdateRating(p, 1500, 50, 0.83)
	b := UpdateRating(p, 1500, 50, 0.83)
	if a != b {
		t.Fatalf("same inputs produced different updates: %+v vs %+v", a, b)
	}
}

func TestRepeatedWinsConverge(t *testing.T) {
	p := NewPlayer("BTCUSDT")
	prev := p
	for i := 0; i < 100; i++ {
		next := UpdateRating(prev, BenchmarkRating, BenchmarkRD, 1.0)
		if next.Rating <= prev.Rating {
			t.Fatalf("iteration %d: rating stopped rising at %v", i, next.Rating)
		}
		if next.RatingDeviation <= 0 || math.IsNaN(next.RatingDeviation) {
			t.Fatalf("iteration %d: bad rd %v", i, next.RatingDeviation)
		}
		if next.Volatility <= 0 || math.IsNaN(next.Volatility) {
			t.Fatalf("iteration %d: bad volatility %v", i, next.Volatility)
		}
		prev = next
	}
	if prev.RatingDeviation >= p.RatingDeviation {
		t.Fatalf("rd should shrink over 100 outcomes, got %v", prev.RatingDeviation)
	}
}

func TestNewVolatilityFinite(t *testing.T) {
	// Surprise outcome pushes delta^2 above phi^2+v, exercising the log-bound
	// branch of the bracket setup.
	cases := []struct {
		sigma, delta, phi, v float64
	}{
		{0.06, 0.1, 350.0 / 173.7178, 1.8},
		{0.06, 5.0, 0.5, 1.2},
		{0.06, -3.0, 1.0, 2.0},
		{0.5, 0.0, 2.0, 4.0},
	}
	for _, c := range cases {
		got := newVolatility(c.sigma, c.delta, c.phi, c.v)
		if got <= 0 || math.IsNaN(got) || math.IsInf(got, 0) {
			t.Fatalf("newVolatility(%+v) = %v", c, got)
		}
	}
}
