package query

import (
	"errors"
	"testing"

	"github.com/nvandessel/poleposition/internal/store/storetest"
)

func rounds(rows []CircuitStats) []int {
	out := make([]int, len(rows))
	for i, r := range rows {
		out[i] = r.Round
	}
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestDriverProfile(t *testing.T) {
	e := newTestEngine(t)

	p, err := e.DriverProfile("verstappen")
	if err != nil {
		t.Fatalf("DriverProfile() error = %v", err)
	}
	if p.Driver != "VER" || p.FullName != "Max Verstappen" || p.Team != "Red Bull Racing" {
		t.Errorf("identity = %s / %s / %s", p.Driver, p.FullName, p.Team)
	}
	if p.AvgPoints != 369 || p.ChampPct != 60 || p.WinPct != 50 || p.MinPoints != 280 || p.MaxPoints != 420 || p.Std != 44.6 {
		t.Errorf("points outlook = %+v", p)
	}

	if got, want := rounds(p.AllCircuits), []int{4, 2, 1, 6, 3, 5}; !equalInts(got, want) {
		t.Errorf("all circuits by win%% = %v, want %v", got, want)
	}
	if got, want := rounds(p.BestCircuits), []int{4, 2, 1, 6, 3}; !equalInts(got, want) {
		t.Errorf("best circuits = %v, want %v", got, want)
	}
	if got, want := rounds(p.WorstCircuits), []int{5, 3, 6, 1, 2}; !equalInts(got, want) {
		t.Errorf("worst circuits = %v, want %v", got, want)
	}

	monaco := p.WorstCircuits[0]
	want := CircuitStats{Race: "Monaco Grand Prix", Round: 5, WinPct: 20, PodiumPct: 80, PointsPct: 100, LikelyPos: 2}
	if monaco != want {
		t.Errorf("Monaco = %+v, want %+v", monaco, want)
	}
	japan := p.BestCircuits[0]
	if japan.WinPct != 70 || japan.PodiumPct != 100 || japan.LikelyPos != 1 {
		t.Errorf("Japan = %+v", japan)
	}
}

func TestDriverProfile_NeverWins(t *testing.T) {
	e := newTestEngine(t)

	p, err := e.DriverProfile("LIN")
	if err != nil {
		t.Fatalf("DriverProfile() error = %v", err)
	}
	if len(p.BestCircuits) != 5 || len(p.WorstCircuits) != 5 {
		t.Fatalf("best/worst lengths = %d/%d, want 5/5", len(p.BestCircuits), len(p.WorstCircuits))
	}
	// All win chances are zero, so calendar order is kept.
	if got, want := rounds(p.BestCircuits), []int{1, 2, 3, 4, 5}; !equalInts(got, want) {
		t.Errorf("best circuits = %v, want %v", got, want)
	}
	if got, want := rounds(p.WorstCircuits), []int{6, 5, 4, 3, 2}; !equalInts(got, want) {
		t.Errorf("worst circuits = %v, want %v", got, want)
	}
	if p.Team != "Unknown" || p.FullName != "Arvid Lindblad" {
		t.Errorf("identity = %s / %s", p.FullName, p.Team)
	}
	if p.WinPct != 0 || p.ChampPct != 0 {
		t.Errorf("win/champ = %v/%v, want 0/0", p.WinPct, p.ChampPct)
	}
}

func TestDriverProfile_NotFound(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.DriverProfile("Schumacher")
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("DriverProfile() error = %v, want *NotFoundError", err)
	}
	if nf.Kind != KindDriver || nf.Query != "Schumacher" {
		t.Errorf("NotFoundError = %+v", nf)
	}
	if len(nf.Available) != len(storetest.Drivers) {
		t.Errorf("Available = %v, want every driver code", nf.Available)
	}
}

func TestCompareDrivers(t *testing.T) {
	e := newTestEngine(t)

	c, err := e.CompareDrivers("VER", "Norris")
	if err != nil {
		t.Fatalf("CompareDrivers() error = %v", err)
	}

	if c.Driver1.Code != "VER" || c.Driver2.Code != "NOR" {
		t.Fatalf("drivers = %s vs %s", c.Driver1.Code, c.Driver2.Code)
	}
	wantD1 := DriverSummary{Code: "VER", FullName: "Max Verstappen", Team: "Red Bull Racing",
		AvgPoints: 369, ChampPct: 60, WinPct: 50, MinPoints: 280, MaxPoints: 420}
	if c.Driver1 != wantD1 {
		t.Errorf("Driver1 = %+v, want %+v", c.Driver1, wantD1)
	}
	if c.D1BeatsD2Pct != 50 || c.D2BeatsD1Pct != 40 || c.TiePct != 10 {
		t.Errorf("head to head = %v/%v/%v, want 50/40/10", c.D1BeatsD2Pct, c.D2BeatsD1Pct, c.TiePct)
	}
	if len(c.CircuitComparison) != 6 {
		t.Fatalf("circuit comparison has %d rounds, want 6", len(c.CircuitComparison))
	}

	bahrain := c.CircuitComparison[0]
	want := CircuitComparison{Race: "Bahrain Grand Prix", Round: 1, D1WinPct: 50, D2WinPct: 30,
		D1Podium: 90, D2Podium: 90, D1Likely: 1, D2Likely: 2, Advantage: "VER"}
	if bahrain != want {
		t.Errorf("Bahrain = %+v, want %+v", bahrain, want)
	}

	// Level on win chance at Monaco: the second driver gets the nod.
	monaco := c.CircuitComparison[4]
	if monaco.D1WinPct != monaco.D2WinPct || monaco.Advantage != "NOR" {
		t.Errorf("Monaco = %+v, want level with advantage NOR", monaco)
	}
}

func TestCompareDrivers_OutcomesSumTo100(t *testing.T) {
	e := newTestEngine(t)
	for _, d1 := range storetest.Drivers {
		for _, d2 := range storetest.Drivers {
			c, err := e.CompareDrivers(d1, d2)
			if err != nil {
				t.Fatalf("CompareDrivers(%s, %s) error = %v", d1, d2, err)
			}
			sum := c.D1BeatsD2Pct + c.D2BeatsD1Pct + c.TiePct
			if sum < 99.9 || sum > 100.1 {
				t.Errorf("CompareDrivers(%s, %s) outcomes sum to %v", d1, d2, sum)
			}
		}
	}
}

func TestCompareDrivers_NotFound(t *testing.T) {
	e := newTestEngine(t)

	tests := []struct {
		name    string
		q1, q2  string
		queries []string
	}{
		{"first missing", "Senna", "VER", []string{"Senna"}},
		{"second missing", "VER", "Prost", []string{"Prost"}},
		{"both missing", "Senna", "Prost", []string{"Senna", "Prost"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := e.CompareDrivers(tt.q1, tt.q2)
			if err == nil {
				t.Fatalf("CompareDrivers() = %+v, want error", c)
			}
			if !IsNotFound(err) {
				t.Errorf("IsNotFound(%v) = false", err)
			}
			nfs := NotFoundErrors(err)
			if len(nfs) != len(tt.queries) {
				t.Fatalf("NotFoundErrors() = %v, want %d errors", nfs, len(tt.queries))
			}
			for i, q := range tt.queries {
				if nfs[i].Query != q || nfs[i].Kind != KindDriver {
					t.Errorf("error %d = %+v, want driver %q", i, nfs[i], q)
				}
			}
		})
	}
}
