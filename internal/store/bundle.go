// Package store holds the immutable simulation bundle the query engine reads
// and the loaders that build it from on-disk or remote artifacts.
package store

import (
	"fmt"
	"math"
)

// UnknownTeam is the team reported for drivers missing from the team table.
const UnknownTeam = "Unknown"

// Raw is the unvalidated content of a simulation result set as decoded from
// its artifacts. New turns it into a Bundle.
type Raw struct {
	Drivers         []string       `json:"drivers"`
	Rounds          []int          `json:"rounds"`
	RaceNames       map[int]string `json:"race_names"`
	PosDistribution [][][]float64  `json:"pos_distribution"` // [driver][round][position]
	SimPoints       [][]float64    `json:"sim_points"`       // [simulation][driver]
	SimWins         []float64      `json:"sim_wins"`
	NSimulations    int            `json:"n_simulations"`
	Teams           *Table         `json:"-"`
	Names           *Table         `json:"-"`
}

// Race is one scheduled round.
type Race struct {
	Round int    `json:"round"`
	Name  string `json:"name"`
}

// Bundle is the loaded simulation result set. It is never mutated after New
// returns, so it may be shared by any number of concurrent readers. Slices
// returned by its accessors are views into that shared state and must be
// treated as read-only.
type Bundle struct {
	drivers     []string
	driverIndex map[string]int
	rounds      []int
	roundIndex  map[int]int
	raceNames   map[int]string
	posDist     [][][]float64
	points      [][]float64 // [driver][simulation]
	wins        []float64
	nSims       int
	nPositions  int
	teams       *Table
	names       *Table

	champWinners []int // [simulation] -> driver index
	champCounts  []int // [driver] -> simulations won
}

// New validates raw and builds a Bundle, deriving the per-simulation
// championship winner. Any inconsistency yields a *DataLoadError.
func New(raw Raw) (*Bundle, error) {
	d := len(raw.Drivers)
	r := len(raw.Rounds)
	if d == 0 {
		return nil, loadErr("bundle", "no drivers")
	}
	if r == 0 {
		return nil, loadErr("bundle", "no rounds")
	}
	if raw.NSimulations <= 0 {
		return nil, loadErr("bundle", "simulation count must be positive, got %d", raw.NSimulations)
	}

	driverIndex := make(map[string]int, d)
	for i, code := range raw.Drivers {
		if code == "" {
			return nil, loadErr("bundle", "driver %d has an empty code", i)
		}
		if _, dup := driverIndex[code]; dup {
			return nil, loadErr("bundle", "duplicate driver code %q", code)
		}
		driverIndex[code] = i
	}

	roundIndex := make(map[int]int, r)
	raceNames := make(map[int]string, r)
	for i, rnd := range raw.Rounds {
		if _, dup := roundIndex[rnd]; dup {
			return nil, loadErr("bundle", "duplicate round %d", rnd)
		}
		roundIndex[rnd] = i
		name, ok := raw.RaceNames[rnd]
		if !ok {
			return nil, loadErr("bundle", "round %d has no race name", rnd)
		}
		raceNames[rnd] = name
	}

	if len(raw.SimPoints) != raw.NSimulations {
		return nil, loadErr("bundle", "sim_points has %d rows, want %d simulations", len(raw.SimPoints), raw.NSimulations)
	}
	points := make([][]float64, d)
	for i := range points {
		points[i] = make([]float64, raw.NSimulations)
	}
	for s, row := range raw.SimPoints {
		if len(row) != d {
			return nil, loadErr("bundle", "sim_points row %d has %d columns, want %d drivers", s, len(row), d)
		}
		for i, v := range row {
			if err := checkCount(v); err != nil {
				return nil, loadErr("bundle", "sim_points[%d][%d]: %v", s, i, err)
			}
			points[i][s] = v
		}
	}

	if len(raw.SimWins) != d {
		return nil, loadErr("bundle", "sim_wins has %d entries, want %d drivers", len(raw.SimWins), d)
	}
	wins := make([]float64, d)
	for i, v := range raw.SimWins {
		if err := checkCount(v); err != nil {
			return nil, loadErr("bundle", "sim_wins[%d]: %v", i, err)
		}
		wins[i] = v
	}

	nPositions, err := checkDistribution(raw.PosDistribution, d, r)
	if err != nil {
		return nil, err
	}

	b := &Bundle{
		drivers:     append([]string(nil), raw.Drivers...),
		driverIndex: driverIndex,
		rounds:      append([]int(nil), raw.Rounds...),
		roundIndex:  roundIndex,
		raceNames:   raceNames,
		posDist:     copyDistribution(raw.PosDistribution),
		points:      points,
		wins:        wins,
		nSims:       raw.NSimulations,
		nPositions:  nPositions,
		teams:       raw.Teams.clone(),
		names:       raw.Names.clone(),
	}
	b.champWinners = championshipWinners(raw.SimPoints)
	b.champCounts = make([]int, d)
	for _, w := range b.champWinners {
		b.champCounts[w]++
	}
	return b, nil
}

func checkCount(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("not a finite number")
	}
	if v < 0 {
		return fmt.Errorf("negative value %v", v)
	}
	return nil
}

// checkDistribution verifies the [D][R][P] shape and returns P.
func checkDistribution(dist [][][]float64, d, r int) (int, error) {
	if len(dist) != d {
		return 0, loadErr("bundle", "pos_distribution has %d drivers, want %d", len(dist), d)
	}
	p := -1
	for i, byRound := range dist {
		if len(byRound) != r {
			return 0, loadErr("bundle", "pos_distribution[%d] has %d rounds, want %d", i, len(byRound), r)
		}
		for j, counts := range byRound {
			if p == -1 {
				p = len(counts)
				if p == 0 {
					return 0, loadErr("bundle", "pos_distribution tracks no positions")
				}
			}
			if len(counts) != p {
				return 0, loadErr("bundle", "pos_distribution[%d][%d] has %d positions, want %d", i, j, len(counts), p)
			}
			for k, v := range counts {
				if err := checkCount(v); err != nil {
					return 0, loadErr("bundle", "pos_distribution[%d][%d][%d]: %v", i, j, k, err)
				}
			}
		}
	}
	return p, nil
}

// championshipWinners returns, per simulation, the index of the driver with
// the most points. Ties go to the lowest driver index.
func copyDistribution(dist [][][]float64) [][][]float64 {
	out := make([][][]float64, len(dist))
	for d, rounds := range dist {
		out[d] = make([][]float64, len(rounds))
		for r, counts := range rounds {
			out[d][r] = append([]float64(nil), counts...)
		}
	}
	return out
}

func championshipWinners(rows [][]float64) []int {
	out := make([]int, len(rows))
	for s, row := range rows {
		best := 0
		for i := 1; i < len(row); i++ {
			if row[i] > row[best] {
				best = i
			}
		}
		out[s] = best
	}
	return out
}

// Drivers returns the driver codes in canonical index order.
func (b *Bundle) Drivers() []string {
	return append([]string(nil), b.drivers...)
}

// DriverIndex returns the canonical index of code.
func (b *Bundle) DriverIndex(code string) (int, bool) {
	i, ok := b.driverIndex[code]
	return i, ok
}

// Rounds returns the round numbers in calendar order.
func (b *Bundle) Rounds() []int {
	return append([]int(nil), b.rounds...)
}

// RoundIndex returns the position of round on the second axis of the
// position distribution.
func (b *Bundle) RoundIndex(round int) (int, bool) {
	i, ok := b.roundIndex[round]
	return i, ok
}

// RaceName returns the display name of round.
func (b *Bundle) RaceName(round int) string {
	return b.raceNames[round]
}

// Races returns every round with its name, in the order of Rounds.
func (b *Bundle) Races() []Race {
	out := make([]Race, len(b.rounds))
	for i, rnd := range b.rounds {
		out[i] = Race{Round: rnd, Name: b.raceNames[rnd]}
	}
	return out
}

func (b *Bundle) NumDrivers() int     { return len(b.drivers) }
func (b *Bundle) NumRounds() int      { return len(b.rounds) }
func (b *Bundle) NumPositions() int   { return b.nPositions }
func (b *Bundle) NumSimulations() int { return b.nSims }

// PositionCounts returns how many simulations put driver d in each finishing
// position at round index r.
func (b *Bundle) PositionCounts(d, r int) []float64 {
	return b.posDist[d][r]
}

// DriverPoints returns driver d's season points in every simulation.
func (b *Bundle) DriverPoints(d int) []float64 {
	return b.points[d]
}

// Wins returns driver d's race wins summed over all simulations and rounds.
func (b *Bundle) Wins(d int) float64 {
	return b.wins[d]
}

// ChampionshipWinner returns the driver index that won simulation s.
func (b *Bundle) ChampionshipWinner(s int) int {
	return b.champWinners[s]
}

// ChampionshipWins returns the number of simulations driver d won.
func (b *Bundle) ChampionshipWins(d int) int {
	return b.champCounts[d]
}

// DriverName returns the display name for code, falling back to the code.
func (b *Bundle) DriverName(code string) string {
	if name, ok := b.names.Get(code); ok {
		return name
	}
	return code
}

// Team returns the team for code, or UnknownTeam.
func (b *Bundle) Team(code string) string {
	if team, ok := b.teams.Get(code); ok {
		return team
	}
	return UnknownTeam
}

// TeamOf returns the team for code and whether one is recorded.
func (b *Bundle) TeamOf(code string) (string, bool) {
	return b.teams.Get(code)
}

// Names returns a copy of the display-name table.
func (b *Bundle) Names() *Table { return b.names.clone() }

// Teams returns a copy of the team table.
func (b *Bundle) Teams() *Table { return b.teams.clone() }

// IncompleteCell is a (driver, round) histogram whose counts do not add up
// to the simulation count, e.g. because positions beyond the tracked range
// were not recorded.
type IncompleteCell struct {
	Driver string  `json:"driver"`
	Round  int     `json:"round"`
	Total  float64 `json:"total"`
}

// IncompleteCells lists every histogram that does not sum to the simulation
// count, in driver then round order.
func (b *Bundle) IncompleteCells() []IncompleteCell {
	var out []IncompleteCell
	for d, code := range b.drivers {
		for r, rnd := range b.rounds {
			total := 0.0
			for _, c := range b.posDist[d][r] {
				total += c
			}
			if total != float64(b.nSims) {
				out = append(out, IncompleteCell{Driver: code, Round: rnd, Total: total})
			}
		}
	}
	return out
}
