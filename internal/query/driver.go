package query

import (
	"errors"
	"sort"
)

const circuitHighlights = 5

// CircuitStats is one driver's outlook at one round.
type CircuitStats struct {
	Race      string  `json:"race"`
	Round     int     `json:"round"`
	WinPct    float64 `json:"win_pct"`
	PodiumPct float64 `json:"podium_pct"`
	PointsPct float64 `json:"points_pct"`
	LikelyPos int     `json:"likely_pos"`
}

// DriverProfile is a driver's season outlook.
type DriverProfile struct {
	Driver    string  `json:"driver"`
	FullName  string  `json:"full_name"`
	Team      string  `json:"team"`
	AvgPoints float64 `json:"avg_points"`
	ChampPct  float64 `json:"champ_pct"`
	WinPct    float64 `json:"win_pct"`
	MinPoints float64 `json:"min_points"`
	MaxPoints float64 `json:"max_points"`
	Std       float64 `json:"std"`
	// BestCircuits holds the five rounds with the highest win chance, best
	// first; WorstCircuits the five lowest, worst first.
	BestCircuits  []CircuitStats `json:"best_circuits"`
	WorstCircuits []CircuitStats `json:"worst_circuits"`
	AllCircuits   []CircuitStats `json:"all_circuits"`
}

// DriverSummary is the per-driver half of a head-to-head comparison.
type DriverSummary struct {
	Code      string  `json:"code"`
	FullName  string  `json:"full_name"`
	Team      string  `json:"team"`
	AvgPoints float64 `json:"avg_points"`
	ChampPct  float64 `json:"champ_pct"`
	WinPct    float64 `json:"win_pct"`
	MinPoints float64 `json:"min_points"`
	MaxPoints float64 `json:"max_points"`
}

// CircuitComparison compares two drivers at one round.
type CircuitComparison struct {
	Race     string  `json:"race"`
	Round    int     `json:"round"`
	D1WinPct float64 `json:"d1_win_pct"`
	D2WinPct float64 `json:"d2_win_pct"`
	D1Podium float64 `json:"d1_podium"`
	D2Podium float64 `json:"d2_podium"`
	D1Likely int     `json:"d1_likely"`
	D2Likely int     `json:"d2_likely"`
	// Advantage names the driver with the higher win chance; the second
	// driver when they are level.
	Advantage string `json:"advantage"`
}

// Comparison is the result of CompareDrivers.
type Comparison struct {
	Driver1           DriverSummary       `json:"driver1"`
	Driver2           DriverSummary       `json:"driver2"`
	D1BeatsD2Pct      float64             `json:"d1_beats_d2_pct"`
	D2BeatsD1Pct      float64             `json:"d2_beats_d1_pct"`
	TiePct            float64             `json:"tie_pct"`
	CircuitComparison []CircuitComparison `json:"circuit_comparison"`
}

// ranked pairs a row with its unrounded sort key.
type ranked[T any] struct {
	row T
	key float64
}

// sortByKeyDesc stably orders rows by descending key.
func sortByKeyDesc[T any](rows []ranked[T]) []T {
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].key > rows[j].key })
	out := make([]T, len(rows))
	for i, r := range rows {
		out[i] = r.row
	}
	return out
}

// circuits returns driver d's outlook at every round in calendar order,
// paired with the unrounded win chance.
func (e *Engine) circuits(d int) []ranked[CircuitStats] {
	rounds := e.bundle.Rounds()
	out := make([]ranked[CircuitStats], len(rounds))
	for r, rnd := range rounds {
		c := e.cell(d, r)
		out[r] = ranked[CircuitStats]{
			row: CircuitStats{
				Race:      e.bundle.RaceName(rnd),
				Round:     rnd,
				WinPct:    round1(c.win),
				PodiumPct: round1(c.podium),
				PointsPct: round1(c.points),
				LikelyPos: c.likely,
			},
			key: c.win,
		}
	}
	return out
}

// DriverProfile resolves query and returns that driver's season outlook.
func (e *Engine) DriverProfile(query string) (*DriverProfile, error) {
	code, d, err := e.resolveDriver(query)
	if err != nil {
		return nil, err
	}

	st := summarize(e.bundle.DriverPoints(d))
	all := sortByKeyDesc(e.circuits(d))

	best := all[:min(circuitHighlights, len(all))]
	worst := make([]CircuitStats, 0, circuitHighlights)
	for i := len(all) - 1; i >= 0 && len(worst) < circuitHighlights; i-- {
		worst = append(worst, all[i])
	}

	return &DriverProfile{
		Driver:        code,
		FullName:      e.bundle.DriverName(code),
		Team:          e.bundle.Team(code),
		AvgPoints:     round1(st.mean),
		ChampPct:      round1(e.champPct(d)),
		WinPct:        round1(e.winPct(d)),
		MinPoints:     round0(st.min),
		MaxPoints:     round0(st.max),
		Std:           round1(st.std),
		BestCircuits:  append([]CircuitStats(nil), best...),
		WorstCircuits: worst,
		AllCircuits:   all,
	}, nil
}

// CompareDrivers resolves both queries and compares the drivers head to
// head. When both queries fail, the returned error joins both
// *NotFoundErrors; see NotFoundErrors.
func (e *Engine) CompareDrivers(query1, query2 string) (*Comparison, error) {
	code1, d1, err1 := e.resolveDriver(query1)
	code2, d2, err2 := e.resolveDriver(query2)
	if err := errors.Join(err1, err2); err != nil {
		return nil, err
	}

	pts1, pts2 := e.bundle.DriverPoints(d1), e.bundle.DriverPoints(d2)
	var ahead1, ahead2, level int
	for s := range pts1 {
		switch {
		case pts1[s] > pts2[s]:
			ahead1++
		case pts2[s] > pts1[s]:
			ahead2++
		default:
			level++
		}
	}
	n := float64(e.bundle.NumSimulations())

	rounds := e.bundle.Rounds()
	circuits := make([]CircuitComparison, len(rounds))
	for r, rnd := range rounds {
		c1, c2 := e.cell(d1, r), e.cell(d2, r)
		advantage := code2
		if c1.win > c2.win {
			advantage = code1
		}
		circuits[r] = CircuitComparison{
			Race:      e.bundle.RaceName(rnd),
			Round:     rnd,
			D1WinPct:  round1(c1.win),
			D2WinPct:  round1(c2.win),
			D1Podium:  round1(c1.podium),
			D2Podium:  round1(c2.podium),
			D1Likely:  c1.likely,
			D2Likely:  c2.likely,
			Advantage: advantage,
		}
	}

	return &Comparison{
		Driver1:           e.summary(code1, d1),
		Driver2:           e.summary(code2, d2),
		D1BeatsD2Pct:      round1(pct(float64(ahead1), n)),
		D2BeatsD1Pct:      round1(pct(float64(ahead2), n)),
		TiePct:            round1(pct(float64(level), n)),
		CircuitComparison: circuits,
	}, nil
}

func (e *Engine) summary(code string, d int) DriverSummary {
	st := summarize(e.bundle.DriverPoints(d))
	return DriverSummary{
		Code:      code,
		FullName:  e.bundle.DriverName(code),
		Team:      e.bundle.Team(code),
		AvgPoints: round1(st.mean),
		ChampPct:  round1(e.champPct(d)),
		WinPct:    round1(e.winPct(d)),
		MinPoints: round0(st.min),
		MaxPoints: round0(st.max),
	}
}
