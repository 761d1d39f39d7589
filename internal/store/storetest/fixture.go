// Package storetest provides a small, hand-checked simulation bundle for
// tests across packages.
//
// The fixture has 5 drivers, 6 rounds, 4 tracked positions and 10
// simulations. Expected values used by tests:
//
//	mean points: VER 369.0, NOR 349.5, LEC 273.0, HAM 103.5, LIN 10.0
//	titles:      VER 6, NOR 3, LEC 1 (simulation 3 is a VER/NOR tie won by VER)
//	VER vs NOR:  VER ahead in 5, NOR ahead in 4, level in 1
//	teams:       Red Bull 6, McLaren 2, Ferrari 2 titles; Ferrari highest mean 376.5
//	LIN has no team entry and takes its name from an override
package storetest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/nvandessel/poleposition/internal/store"
)

// Drivers in canonical order.
var Drivers = []string{"VER", "NOR", "LEC", "HAM", "LIN"}

// Races in calendar order.
var Races = []store.Race{
	{Round: 1, Name: "Bahrain Grand Prix"},
	{Round: 2, Name: "Saudi Arabian Grand Prix"},
	{Round: 3, Name: "Australian Grand Prix"},
	{Round: 4, Name: "Japanese Grand Prix"},
	{Round: 5, Name: "Monaco Grand Prix"},
	{Round: 6, Name: "Spanish Grand Prix"},
}

// Teams as they appear in the team source; LIN is deliberately absent.
var Teams = [][2]string{
	{"VER", "Red Bull Racing"},
	{"NOR", "McLaren"},
	{"LEC", "Ferrari"},
	{"HAM", "Ferrari"},
}

// Names as they appear in the names source, before overrides. BOT is not on
// the grid.
var Names = [][2]string{
	{"BOT", "Valtteri Bottas"},
	{"VER", "Max Verstappen"},
	{"NOR", "Lando Norris"},
	{"LEC", "Charles Leclerc"},
	{"HAM", "Lewis Hamilton"},
}

// Overrides supply names missing from the names source.
var Overrides = []store.NameOverride{
	{Code: "LIN", Name: "Arvid Lindblad"},
}

// SimPoints is [simulation][driver].
var SimPoints = [][]float64{
	{400, 350, 300, 100, 10},
	{380, 390, 250, 120, 10},
	{410, 300, 280, 90, 10},
	{360, 360, 200, 110, 10},
	{300, 340, 310, 100, 10},
	{420, 310, 290, 95, 10},
	{390, 370, 260, 105, 10},
	{280, 300, 330, 100, 10},
	{400, 395, 270, 115, 10},
	{350, 380, 240, 100, 10},
}

// SimWins is total race wins per driver across all simulations.
var SimWins = []float64{30, 15, 5, 0, 0}

// PosDistribution is [driver][round][position].
var PosDistribution = [][][]float64{
	// VER: best at Japan, worst at Monaco
	{{5, 3, 1, 1}, {6, 2, 1, 1}, {4, 3, 2, 1}, {7, 2, 1, 0}, {2, 3, 3, 2}, {5, 3, 1, 1}},
	// NOR
	{{3, 4, 2, 1}, {3, 4, 2, 1}, {3, 4, 2, 1}, {3, 4, 2, 1}, {2, 4, 2, 2}, {3, 4, 2, 1}},
	// LEC: Monaco specialist
	{{2, 2, 4, 2}, {2, 2, 4, 2}, {2, 2, 4, 2}, {2, 2, 4, 2}, {6, 2, 1, 1}, {2, 2, 4, 2}},
	// HAM: incomplete rows
	{{0, 1, 2, 5}, {0, 1, 2, 5}, {0, 1, 2, 5}, {0, 1, 2, 5}, {0, 1, 2, 5}, {0, 1, 2, 5}},
	// LIN: never wins
	{{0, 0, 1, 1}, {0, 0, 1, 1}, {0, 0, 1, 1}, {0, 0, 1, 1}, {0, 0, 2, 0}, {0, 0, 1, 1}},
}

// NSimulations is the simulation count.
const NSimulations = 10

// Raw returns a fresh copy of the fixture, tables and overrides applied.
func Raw() store.Raw {
	raceNames := make(map[int]string, len(Races))
	rounds := make([]int, len(Races))
	for i, r := range Races {
		rounds[i] = r.Round
		raceNames[r.Round] = r.Name
	}

	teams := store.NewTable()
	for _, kv := range Teams {
		teams.Set(kv[0], kv[1])
	}
	names := store.NewTable()
	for _, kv := range Names {
		names.Set(kv[0], kv[1])
	}
	for _, o := range Overrides {
		names.Set(o.Code, o.Name)
	}

	return store.Raw{
		Drivers:         append([]string(nil), Drivers...),
		Rounds:          rounds,
		RaceNames:       raceNames,
		PosDistribution: copy3(PosDistribution),
		SimPoints:       copy2(SimPoints),
		SimWins:         append([]float64(nil), SimWins...),
		NSimulations:    NSimulations,
		Teams:           teams,
		Names:           names,
	}
}

// Bundle builds the fixture bundle or fails the test.
func Bundle(t testing.TB) *store.Bundle {
	t.Helper()
	b, err := store.New(Raw())
	if err != nil {
		t.Fatalf("building fixture bundle: %v", err)
	}
	return b
}

// WriteArtifacts writes the fixture as a JSON bundle plus team and name CSVs
// under dir and returns sources pointing at them.
func WriteArtifacts(t testing.TB, dir string) store.Sources {
	t.Helper()
	raw := Raw()

	bundleJSON := map[string]any{
		"drivers":          raw.Drivers,
		"rounds":           raw.Rounds,
		"race_names":       raw.RaceNames,
		"pos_distribution": raw.PosDistribution,
		"sim_points":       raw.SimPoints,
		"sim_wins":         raw.SimWins,
		"N_SIMULATIONS":    raw.NSimulations,
	}
	data, err := json.Marshal(bundleJSON)
	if err != nil {
		t.Fatalf("marshal bundle: %v", err)
	}
	src := store.Sources{
		BundlePath:    filepath.Join(dir, "sim_data.json"),
		TeamsPath:     filepath.Join(dir, "features_2026.csv"),
		NamesPath:     filepath.Join(dir, "race_results_2025.csv"),
		NameOverrides: append([]store.NameOverride(nil), Overrides...),
	}
	writeFile(t, src.BundlePath, data)

	teamsCSV := "driver,team_2026,grid\n"
	for _, kv := range Teams {
		teamsCSV += kv[0] + "," + kv[1] + ",1\n"
	}
	writeFile(t, src.TeamsPath, []byte(teamsCSV))

	// Several rows per driver, like a season of race results.
	namesCSV := "round,driver,driver_name\n"
	for _, rnd := range []string{"1", "2"} {
		for _, kv := range Names {
			namesCSV += rnd + "," + kv[0] + "," + kv[1] + "\n"
		}
	}
	writeFile(t, src.NamesPath, []byte(namesCSV))
	return src
}

func writeFile(t testing.TB, path string, data []byte) {
	t.Helper()
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

func copy2(in [][]float64) [][]float64 {
	out := make([][]float64, len(in))
	for i, row := range in {
		out[i] = append([]float64(nil), row...)
	}
	return out
}

func copy3(in [][][]float64) [][][]float64 {
	out := make([][][]float64, len(in))
	for i, m := range in {
		out[i] = copy2(m)
	}
	return out
}
