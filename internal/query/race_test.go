package query

import (
	"errors"
	"fmt"
	"sync"
	"testing"
)

func TestRaceWinnerProbabilities(t *testing.T) {
	e := newTestEngine(t)

	res, err := e.RaceWinnerProbabilities("monaco grand prix")
	if err != nil {
		t.Fatalf("RaceWinnerProbabilities() error = %v", err)
	}
	if res.Race != "Monaco Grand Prix" || res.Round != 5 {
		t.Errorf("race = %q round %d", res.Race, res.Round)
	}

	wantOrder := []string{"LEC", "VER", "NOR", "HAM", "LIN"}
	if len(res.Drivers) != len(wantOrder) {
		t.Fatalf("got %d drivers, want %d", len(res.Drivers), len(wantOrder))
	}
	for i, code := range wantOrder {
		row := res.Drivers[i]
		if row.Driver != code || row.Position != i+1 {
			t.Errorf("row %d = %s (position %d), want %s (position %d)", i, row.Driver, row.Position, code, i+1)
		}
	}

	lec := res.Drivers[0]
	if lec.WinPct != 60 || lec.PodiumPct != 90 || lec.PointsPct != 100 || lec.LikelyPos != 1 {
		t.Errorf("LEC = %+v", lec)
	}
	ham := res.Drivers[3]
	if ham.WinPct != 0 || ham.PodiumPct != 30 || ham.PointsPct != 80 || ham.LikelyPos != 4 {
		t.Errorf("HAM = %+v", ham)
	}
	lin := res.Drivers[4]
	if lin.PodiumPct != 20 || lin.LikelyPos != 3 || lin.Team != "Unknown" {
		t.Errorf("LIN = %+v", lin)
	}
	if got := fmt.Sprint(res.Drivers[1].PosProbs); got != "[20 30 30 20]" {
		t.Errorf("VER pos_probs = %s, want [20 30 30 20]", got)
	}
}

func TestRaceWinnerProbabilities_NotFound(t *testing.T) {
	e := newTestEngine(t)

	for _, q := range []string{"Monaco", "Monaco GP", ""} {
		_, err := e.RaceWinnerProbabilities(q)
		var nf *NotFoundError
		if !errors.As(err, &nf) {
			t.Fatalf("RaceWinnerProbabilities(%q) error = %v, want *NotFoundError", q, err)
		}
		if nf.Kind != KindRace || len(nf.Available) != 6 || nf.Available[4] != "Monaco Grand Prix" {
			t.Errorf("NotFoundError = %+v", nf)
		}
	}
}

func TestRacePrediction_MatchesRaceRow(t *testing.T) {
	e := newTestEngine(t)

	pred, err := e.RacePrediction("VER", "Monaco Grand Prix")
	if err != nil {
		t.Fatalf("RacePrediction() error = %v", err)
	}
	res, err := e.RaceWinnerProbabilities("Monaco Grand Prix")
	if err != nil {
		t.Fatal(err)
	}

	var row *RaceEntry
	for i := range res.Drivers {
		if res.Drivers[i].Driver == "VER" {
			row = &res.Drivers[i]
		}
	}
	if row == nil {
		t.Fatal("VER missing from race table")
	}
	if pred.WinPct != row.WinPct || pred.PodiumPct != row.PodiumPct ||
		pred.PointsPct != row.PointsPct || pred.LikelyPos != row.LikelyPos ||
		fmt.Sprint(pred.PosProbs) != fmt.Sprint(row.PosProbs) {
		t.Errorf("prediction %+v differs from race row %+v", pred, row)
	}
	if pred.Race != "Monaco Grand Prix" || pred.Round != 5 || pred.FullName != "Max Verstappen" {
		t.Errorf("prediction identity = %+v", pred)
	}
	if pred.WinPct != 20 || pred.PodiumPct != 80 || pred.LikelyPos != 2 {
		t.Errorf("prediction = %+v", pred)
	}
}

func TestRacePrediction_DriverCheckedFirst(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.RacePrediction("zzz", "Nowhere Grand Prix")
	nfs := NotFoundErrors(err)
	if len(nfs) != 1 || nfs[0].Kind != KindDriver {
		t.Errorf("RacePrediction() error = %v, want a single driver not found", err)
	}

	_, err = e.RacePrediction("VER", "Nowhere Grand Prix")
	nfs = NotFoundErrors(err)
	if len(nfs) != 1 || nfs[0].Kind != KindRace || nfs[0].Query != "Nowhere Grand Prix" {
		t.Errorf("RacePrediction() error = %v, want race not found", err)
	}
}

func TestDriverCalendar(t *testing.T) {
	e := newTestEngine(t)

	cal, err := e.DriverCalendar("max")
	if err != nil {
		t.Fatalf("DriverCalendar() error = %v", err)
	}
	if cal.Driver != "VER" || cal.Team != "Red Bull Racing" {
		t.Errorf("identity = %s / %s", cal.Driver, cal.Team)
	}
	if got, want := rounds(cal.CalendarOrder), []int{1, 2, 3, 4, 5, 6}; !equalInts(got, want) {
		t.Errorf("calendar order = %v, want %v", got, want)
	}
	if got, want := rounds(cal.RankedByWin), []int{4, 2, 1, 6, 3, 5}; !equalInts(got, want) {
		t.Errorf("ranked by win = %v, want %v", got, want)
	}

	if _, err := e.DriverCalendar("nobody at all"); !IsNotFound(err) {
		t.Errorf("DriverCalendar(unknown) error = %v, want not found", err)
	}
}

func TestReferenceListings(t *testing.T) {
	e := newTestEngine(t)

	drivers := e.Drivers()
	if len(drivers) != 5 || drivers[0] != (DriverInfo{Code: "VER", Name: "Max Verstappen", Team: "Red Bull Racing"}) {
		t.Errorf("Drivers() = %+v", drivers)
	}
	if lin := drivers[4]; lin.Team != "" || lin.Name != "Arvid Lindblad" {
		t.Errorf("LIN listing = %+v, want empty team", lin)
	}

	races := e.Races()
	for i, r := range races {
		if r.Round != i+1 {
			t.Errorf("Races()[%d].Round = %d, want %d", i, r.Round, i+1)
		}
	}
}

func TestNotFoundError_Message(t *testing.T) {
	err := &NotFoundError{Kind: KindRace, Query: "Monaco"}
	if got := err.Error(); got != `race "Monaco" not found` {
		t.Errorf("Error() = %s", got)
	}
	if NotFoundErrors(nil) != nil {
		t.Error("NotFoundErrors(nil) should be nil")
	}
	wrapped := fmt.Errorf("tool failed: %w", err)
	if nfs := NotFoundErrors(wrapped); len(nfs) != 1 || nfs[0] != err {
		t.Errorf("NotFoundErrors(wrapped) = %v", nfs)
	}
}

func TestEngine_ConcurrentReads(t *testing.T) {
	e := newTestEngine(t)
	want := fmt.Sprint(e.DriverStandings())

	var wg sync.WaitGroup
	errs := make(chan error, 48)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got := fmt.Sprint(e.DriverStandings()); got != want {
				errs <- errors.New("standings differ under concurrency")
			}
			if _, err := e.CompareDrivers("VER", "LEC"); err != nil {
				errs <- err
			}
			if _, err := e.RaceWinnerProbabilities("Japanese Grand Prix"); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestEngine_ResolutionObserver(t *testing.T) {
	var (
		mu   sync.Mutex
		seen []Resolution
	)
	e := New(newTestEngine(t).Bundle(), WithResolutionObserver(func(r Resolution) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, r)
	}))

	if _, err := e.RacePrediction("verstappen", "monaco grand prix"); err != nil {
		t.Fatal(err)
	}
	_, _ = e.DriverProfile("Senna")

	want := []Resolution{
		{Kind: KindDriver, Query: "verstappen", Match: "VER", Strategy: "name"},
		{Kind: KindRace, Query: "monaco grand prix", Match: "Monaco Grand Prix", Strategy: "exact"},
		{Kind: KindDriver, Query: "Senna"},
	}
	if len(seen) != len(want) {
		t.Fatalf("observed %+v, want %+v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("resolution %d = %+v, want %+v", i, seen[i], want[i])
		}
	}
}
