package query

import "sort"

// RaceEntry is one driver's outlook at a race.
type RaceEntry struct {
	Position  int       `json:"position"`
	Driver    string    `json:"driver"`
	FullName  string    `json:"full_name"`
	Team      string    `json:"team"`
	WinPct    float64   `json:"win_pct"`
	PodiumPct float64   `json:"podium_pct"`
	PointsPct float64   `json:"points_pct"`
	LikelyPos int       `json:"likely_pos"`
	PosProbs  []float64 `json:"pos_probs"`
}

// RaceProbabilities is the whole grid's outlook at one race, most likely
// winner first.
type RaceProbabilities struct {
	Race    string      `json:"race"`
	Round   int         `json:"round"`
	Drivers []RaceEntry `json:"drivers"`
}

// Prediction is one driver's outlook at one race.
type Prediction struct {
	Driver    string    `json:"driver"`
	FullName  string    `json:"full_name"`
	Team      string    `json:"team"`
	Race      string    `json:"race"`
	Round     int       `json:"round"`
	WinPct    float64   `json:"win_pct"`
	PodiumPct float64   `json:"podium_pct"`
	PointsPct float64   `json:"points_pct"`
	LikelyPos int       `json:"likely_pos"`
	PosProbs  []float64 `json:"pos_probs"`
}

// Calendar is a driver's season, in calendar order and best race first.
type Calendar struct {
	Driver        string         `json:"driver"`
	FullName      string         `json:"full_name"`
	Team          string         `json:"team"`
	CalendarOrder []CircuitStats `json:"calendar_order"`
	RankedByWin   []CircuitStats `json:"ranked_by_win"`
}

// RaceWinnerProbabilities resolves query to a race and ranks every driver
// by win chance there.
func (e *Engine) RaceWinnerProbabilities(query string) (*RaceProbabilities, error) {
	race, r, err := e.resolveRace(query)
	if err != nil {
		return nil, err
	}

	drivers := e.bundle.Drivers()
	rows := make([]ranked[RaceEntry], len(drivers))
	for d, code := range drivers {
		c := e.cell(d, r)
		rows[d] = ranked[RaceEntry]{
			row: RaceEntry{
				Driver:    code,
				FullName:  e.bundle.DriverName(code),
				Team:      e.bundle.Team(code),
				WinPct:    round1(c.win),
				PodiumPct: round1(c.podium),
				PointsPct: round1(c.points),
				LikelyPos: c.likely,
				PosProbs:  roundAll(c.probs),
			},
			key: c.win,
		}
	}
	entries := sortByKeyDesc(rows)
	for i := range entries {
		entries[i].Position = i + 1
	}
	return &RaceProbabilities{Race: race.Name, Round: race.Round, Drivers: entries}, nil
}

// RacePrediction resolves a driver and a race and returns that driver's
// outlook there. The driver is resolved first, so an unknown driver is
// reported even when the race is also unknown.
func (e *Engine) RacePrediction(driverQuery, raceQuery string) (*Prediction, error) {
	code, d, err := e.resolveDriver(driverQuery)
	if err != nil {
		return nil, err
	}
	race, r, err := e.resolveRace(raceQuery)
	if err != nil {
		return nil, err
	}

	c := e.cell(d, r)
	return &Prediction{
		Driver:    code,
		FullName:  e.bundle.DriverName(code),
		Team:      e.bundle.Team(code),
		Race:      race.Name,
		Round:     race.Round,
		WinPct:    round1(c.win),
		PodiumPct: round1(c.podium),
		PointsPct: round1(c.points),
		LikelyPos: c.likely,
		PosProbs:  roundAll(c.probs),
	}, nil
}

// DriverCalendar resolves query and returns the driver's outlook at every
// round, chronologically and ranked by win chance.
func (e *Engine) DriverCalendar(query string) (*Calendar, error) {
	code, d, err := e.resolveDriver(query)
	if err != nil {
		return nil, err
	}

	rows := e.circuits(d)
	chrono := make([]CircuitStats, len(rows))
	for i, r := range rows {
		chrono[i] = r.row
	}
	sort.SliceStable(chrono, func(i, j int) bool { return chrono[i].Round < chrono[j].Round })

	return &Calendar{
		Driver:        code,
		FullName:      e.bundle.DriverName(code),
		Team:          e.bundle.Team(code),
		CalendarOrder: chrono,
		RankedByWin:   sortByKeyDesc(rows),
	}, nil
}
