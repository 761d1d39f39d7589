package query

import "math"

const (
	podiumPositions = 3
	pointsPositions = 10
)

// pointStats summarizes one driver's or team's season points across all
// simulations. std is the population standard deviation.
type pointStats struct {
	mean, min, max, std float64
}

func summarize(xs []float64) pointStats {
	if len(xs) == 0 {
		return pointStats{}
	}
	st := pointStats{min: xs[0], max: xs[0]}
	sum := 0.0
	for _, x := range xs {
		sum += x
		st.min = math.Min(st.min, x)
		st.max = math.Max(st.max, x)
	}
	st.mean = sum / float64(len(xs))

	ss := 0.0
	for _, x := range xs {
		dev := x - st.mean
		ss += dev * dev
	}
	st.std = math.Sqrt(ss / float64(len(xs)))
	return st
}

// cellStats is one driver's outlook at one round, in percent.
type cellStats struct {
	win, podium, points float64
	likely              int // 1-based
	probs               []float64
}

// cell derives the outlook of driver d at round index r from its finishing
// position histogram.
func (e *Engine) cell(d, r int) cellStats {
	counts := e.bundle.PositionCounts(d, r)
	n := float64(e.bundle.NumSimulations())

	c := cellStats{probs: make([]float64, len(counts))}
	best := 0
	for p, count := range counts {
		c.probs[p] = pct(count, n)
		if count > counts[best] {
			best = p
		}
	}
	c.likely = best + 1
	if len(c.probs) > 0 {
		c.win = c.probs[0]
	}
	c.podium = sumTo(c.probs, podiumPositions)
	c.points = sumTo(c.probs, pointsPositions)
	return c
}

func sumTo(xs []float64, n int) float64 {
	total := 0.0
	for i := 0; i < n && i < len(xs); i++ {
		total += xs[i]
	}
	return total
}

// pct returns part/whole as a percentage; 0 when whole is 0.
func pct(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return part / whole * 100
}

// round1 rounds to one decimal place, halves away from zero.
func round1(x float64) float64 {
	return math.Round(x*10) / 10
}

func round0(x float64) float64 {
	return math.Round(x)
}

func roundAll(xs []float64) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = round1(x)
	}
	return out
}

// champPct is driver d's share of simulations won.
func (e *Engine) champPct(d int) float64 {
	return pct(float64(e.bundle.ChampionshipWins(d)), float64(e.bundle.NumSimulations()))
}

// winPct is driver d's race-win rate over every simulated round.
func (e *Engine) winPct(d int) float64 {
	opportunities := float64(e.bundle.NumSimulations() * e.bundle.NumRounds())
	return pct(e.bundle.Wins(d), opportunities)
}
