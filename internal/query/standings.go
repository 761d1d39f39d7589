package query

import "sort"

// DriverStanding is one row of the predicted drivers' championship.
type DriverStanding struct {
	Position  int     `json:"position"`
	Driver    string  `json:"driver"`
	FullName  string  `json:"full_name"`
	Team      string  `json:"team"`
	AvgPoints float64 `json:"avg_points"`
	ChampPct  float64 `json:"champ_pct"`
	WinPct    float64 `json:"win_pct"`
	MinPoints float64 `json:"min_points"`
	MaxPoints float64 `json:"max_points"`
	Std       float64 `json:"std"`
}

// Standings is the result of DriverStandings.
type Standings struct {
	Standings []DriverStanding `json:"standings"`
}

// ConstructorStanding is one row of the predicted constructors' championship.
type ConstructorStanding struct {
	Position  int      `json:"position"`
	Team      string   `json:"team"`
	AvgPoints float64  `json:"avg_points"`
	ChampPct  float64  `json:"champ_pct"`
	MinPoints float64  `json:"min_points"`
	MaxPoints float64  `json:"max_points"`
	Wins      float64  `json:"wins"`
	Drivers   []string `json:"drivers"`
}

// ConstructorStandings is the result of ConstructorStandings.
type ConstructorStandings struct {
	Constructors []ConstructorStanding `json:"constructors"`
}

// Contender is a driver who won the title in at least one simulation.
type Contender struct {
	Driver    string  `json:"driver"`
	FullName  string  `json:"full_name"`
	Team      string  `json:"team"`
	ChampPct  float64 `json:"champ_pct"`
	AvgPoints float64 `json:"avg_points"`
	WinPct    float64 `json:"win_pct"`
}

// Contenders is the result of TitleContenders.
type Contenders struct {
	Contenders []Contender `json:"contenders"`
}

// DriverStandings ranks every driver by mean season points.
func (e *Engine) DriverStandings() Standings {
	n := e.bundle.NumDrivers()
	stats := make([]pointStats, n)
	order := make([]int, n)
	for d := range order {
		order[d] = d
		stats[d] = summarize(e.bundle.DriverPoints(d))
	}
	sort.SliceStable(order, func(i, j int) bool {
		return stats[order[i]].mean > stats[order[j]].mean
	})

	drivers := e.bundle.Drivers()
	rows := make([]DriverStanding, n)
	for pos, d := range order {
		code := drivers[d]
		st := stats[d]
		rows[pos] = DriverStanding{
			Position:  pos + 1,
			Driver:    code,
			FullName:  e.bundle.DriverName(code),
			Team:      e.bundle.Team(code),
			AvgPoints: round1(st.mean),
			ChampPct:  round1(e.champPct(d)),
			WinPct:    round1(e.winPct(d)),
			MinPoints: round0(st.min),
			MaxPoints: round0(st.max),
			Std:       round1(st.std),
		}
	}
	return Standings{Standings: rows}
}

// TitleContenders lists drivers with a non-zero championship chance, most
// likely champion first.
func (e *Engine) TitleContenders() Contenders {
	drivers := e.bundle.Drivers()
	var order []int
	for d := range drivers {
		if e.bundle.ChampionshipWins(d) > 0 {
			order = append(order, d)
		}
	}
	sort.SliceStable(order, func(i, j int) bool {
		return e.bundle.ChampionshipWins(order[i]) > e.bundle.ChampionshipWins(order[j])
	})

	rows := make([]Contender, len(order))
	for i, d := range order {
		code := drivers[d]
		rows[i] = Contender{
			Driver:    code,
			FullName:  e.bundle.DriverName(code),
			Team:      e.bundle.Team(code),
			ChampPct:  round1(e.champPct(d)),
			AvgPoints: round1(summarize(e.bundle.DriverPoints(d)).mean),
			WinPct:    round1(e.winPct(d)),
		}
	}
	return Contenders{Contenders: rows}
}

type teamTotals struct {
	name    string
	members []string
	points  []float64 // [simulation]
	wins    float64
	titles  int
}

// teams groups drivers by team in order of first appearance over the driver
// list. Drivers without a team entry are grouped under the unknown team.
func (e *Engine) teams() []*teamTotals {
	nSims := e.bundle.NumSimulations()
	var out []*teamTotals
	byName := make(map[string]*teamTotals)
	for d, code := range e.bundle.Drivers() {
		name := e.bundle.Team(code)
		t, ok := byName[name]
		if !ok {
			t = &teamTotals{name: name, points: make([]float64, nSims)}
			byName[name] = t
			out = append(out, t)
		}
		t.members = append(t.members, code)
		for s, p := range e.bundle.DriverPoints(d) {
			t.points[s] += p
		}
		t.wins += e.bundle.Wins(d)
	}

	// The title goes to the first team, in grouping order, to reach the
	// simulation's highest total.
	for s := 0; s < nSims; s++ {
		best := 0
		for i, t := range out {
			if t.points[s] > out[best].points[s] {
				best = i
			}
		}
		out[best].titles++
	}
	return out
}

// ConstructorStandings ranks teams by mean combined season points.
func (e *Engine) ConstructorStandings() ConstructorStandings {
	teams := e.teams()
	stats := make([]pointStats, len(teams))
	for i, t := range teams {
		stats[i] = summarize(t.points)
	}
	order := make([]int, len(teams))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return stats[order[i]].mean > stats[order[j]].mean
	})

	nSims := float64(e.bundle.NumSimulations())
	rows := make([]ConstructorStanding, len(teams))
	for pos, i := range order {
		t, st := teams[i], stats[i]
		rows[pos] = ConstructorStanding{
			Position:  pos + 1,
			Team:      t.name,
			AvgPoints: round1(st.mean),
			ChampPct:  round1(pct(float64(t.titles), nSims)),
			MinPoints: round0(st.min),
			MaxPoints: round0(st.max),
			Wins:      t.wins,
			Drivers:   t.members,
		}
	}
	return ConstructorStandings{Constructors: rows}
}
