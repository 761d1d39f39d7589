// Package tools is the catalogue of query tools shared by every transport:
// the MCP server, the WebSocket endpoint and the ask command. A tool takes
// string arguments by name and returns a JSON-serializable result.
package tools

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/nvandessel/poleposition/internal/query"
	"github.com/nvandessel/poleposition/internal/store"
)

// Tool names.
const (
	ChampionshipStandings = "championship_standings"
	ConstructorStandings  = "constructor_standings"
	TitleContenders       = "title_contenders"
	DriverProfile         = "driver_profile"
	CompareDrivers        = "compare_drivers"
	RaceProbabilities     = "race_probabilities"
	RacePrediction        = "race_prediction"
	DriverCalendar        = "driver_calendar"
	ListDrivers           = "list_drivers"
	ListRaces             = "list_races"
)

var (
	// ErrUnknownTool is returned by Call for a name not in the catalogue.
	ErrUnknownTool = errors.New("unknown tool")
	// ErrInvalidArgs is wrapped by every argument validation failure.
	ErrInvalidArgs = errors.New("invalid arguments")
)

// Param describes one tool argument.
type Param struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Tool is one catalogue entry.
type Tool struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Params      []Param `json:"params,omitempty"`

	run func(e *query.Engine, args Args) (any, error)
}

// Args holds tool arguments by name.
type Args map[string]any

// String returns the named argument as a trimmed string. Numbers and other
// scalars are formatted; a missing or blank argument is an error.
func (a Args) String(name string) (string, error) {
	v, ok := a[name]
	if !ok || v == nil {
		return "", fmt.Errorf("%w: missing required argument %q", ErrInvalidArgs, name)
	}
	var s string
	switch v := v.(type) {
	case string:
		s = v
	case fmt.Stringer:
		s = v.String()
	case bool, float64, float32, int, int64:
		s = fmt.Sprint(v)
	default:
		return "", fmt.Errorf("%w: argument %q must be a string, got %T", ErrInvalidArgs, name, v)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("%w: missing required argument %q", ErrInvalidArgs, name)
	}
	return s, nil
}

// DriversResult is the result of list_drivers.
type DriversResult struct {
	Drivers []query.DriverInfo `json:"drivers"`
}

// RacesResult is the result of list_races.
type RacesResult struct {
	Races []store.Race `json:"races"`
}

var (
	driverParam = Param{Name: "driver", Description: "Driver code (VER) or name (Verstappen)"}
	raceParam   = Param{Name: "race", Description: `Full Grand Prix name, e.g. "Monaco Grand Prix"`}
)

var catalogue = []Tool{
	{
		Name:        ChampionshipStandings,
		Description: "Predicted drivers' championship: average points, title chance, race win rate, points floor and ceiling for every driver",
		run: func(e *query.Engine, _ Args) (any, error) {
			return e.DriverStandings(), nil
		},
	},
	{
		Name:        ConstructorStandings,
		Description: "Predicted constructors' championship with combined team points, title chance and drivers",
		run: func(e *query.Engine, _ Args) (any, error) {
			return e.ConstructorStandings(), nil
		},
	},
	{
		Name:        TitleContenders,
		Description: "Drivers with a non-zero chance of winning the championship, most likely first",
		run: func(e *query.Engine, _ Args) (any, error) {
			return e.TitleContenders(), nil
		},
	},
	{
		Name:        DriverProfile,
		Description: "Season profile for one driver: points outlook, title chance, best and worst circuits",
		Params:      []Param{driverParam},
		run: func(e *query.Engine, args Args) (any, error) {
			d, err := args.String("driver")
			if err != nil {
				return nil, err
			}
			return e.DriverProfile(d)
		},
	},
	{
		Name:        CompareDrivers,
		Description: "Head to head comparison of two drivers across the season and at every circuit",
		Params: []Param{
			{Name: "driver1", Description: driverParam.Description},
			{Name: "driver2", Description: driverParam.Description},
		},
		run: func(e *query.Engine, args Args) (any, error) {
			d1, err := args.String("driver1")
			if err != nil {
				return nil, err
			}
			d2, err := args.String("driver2")
			if err != nil {
				return nil, err
			}
			return e.CompareDrivers(d1, d2)
		},
	},
	{
		Name:        RaceProbabilities,
		Description: "Win, podium and points probabilities for every driver at one race",
		Params:      []Param{raceParam},
		run: func(e *query.Engine, args Args) (any, error) {
			r, err := args.String("race")
			if err != nil {
				return nil, err
			}
			return e.RaceWinnerProbabilities(r)
		},
	},
	{
		Name:        RacePrediction,
		Description: "Full finishing-position breakdown for one driver at one race",
		Params:      []Param{driverParam, raceParam},
		run: func(e *query.Engine, args Args) (any, error) {
			d, err := args.String("driver")
			if err != nil {
				return nil, err
			}
			r, err := args.String("race")
			if err != nil {
				return nil, err
			}
			return e.RacePrediction(d, r)
		},
	},
	{
		Name:        DriverCalendar,
		Description: "Every race of the season for one driver, in calendar order and ranked by win chance",
		Params:      []Param{driverParam},
		run: func(e *query.Engine, args Args) (any, error) {
			d, err := args.String("driver")
			if err != nil {
				return nil, err
			}
			return e.DriverCalendar(d)
		},
	},
	{
		Name:        ListDrivers,
		Description: "Driver codes, names and teams on the grid",
		run: func(e *query.Engine, _ Args) (any, error) {
			return DriversResult{Drivers: e.Drivers()}, nil
		},
	},
	{
		Name:        ListRaces,
		Description: "Rounds and full race names of the season",
		run: func(e *query.Engine, _ Args) (any, error) {
			return RacesResult{Races: e.Races()}, nil
		},
	},
}

// All returns the catalogue sorted by name.
func All() []Tool {
	out := append([]Tool(nil), catalogue...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Lookup returns the named tool.
func Lookup(name string) (Tool, bool) {
	for _, t := range catalogue {
		if t.Name == name {
			return t, true
		}
	}
	return Tool{}, false
}

// Description returns the description of the named tool, or "".
func Description(name string) string {
	t, _ := Lookup(name)
	return t.Description
}

// Call runs the named tool against e.
func Call(e *query.Engine, name string, args Args) (any, error) {
	t, ok := Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTool, name)
	}
	if args == nil {
		args = Args{}
	}
	return t.run(e, args)
}

// ParseArgs turns key=value pairs into Args.
func ParseArgs(pairs []string) (Args, error) {
	args := make(Args, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("%w: %q, want key=value", ErrInvalidArgs, p)
		}
		args[k] = v
	}
	return args, nil
}
