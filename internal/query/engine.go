// Package query answers championship, driver and race questions from a loaded
// simulation bundle.
//
// Every operation is a pure read over the bundle, so an Engine may be shared
// by any number of goroutines without locking. Percentages are rounded to one
// decimal place and point extremes to whole numbers; ordering always uses the
// unrounded values with a stable sort, so equal keys keep canonical driver or
// calendar order.
package query

import (
	"sort"

	"github.com/nvandessel/poleposition/internal/resolve"
	"github.com/nvandessel/poleposition/internal/store"
)

// Engine answers queries over one bundle.
type Engine struct {
	bundle   *store.Bundle
	resolver *resolve.Resolver
	observe  func(Resolution)
}

// Resolution describes how one free-text query was resolved. Match and
// Strategy are empty when nothing matched.
type Resolution struct {
	Kind     Kind
	Query    string
	Match    string
	Strategy string
}

// Option configures an Engine.
type Option func(*Engine)

// WithResolutionObserver calls fn after every driver or race resolution.
// fn must be safe for concurrent use.
func WithResolutionObserver(fn func(Resolution)) Option {
	return func(e *Engine) { e.observe = fn }
}

// New creates an engine over b.
func New(b *store.Bundle, opts ...Option) *Engine {
	e := &Engine{
		bundle:   b,
		resolver: resolve.FromBundle(b),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Bundle returns the underlying bundle.
func (e *Engine) Bundle() *store.Bundle {
	return e.bundle
}

// Resolver returns the resolver used for driver and race queries.
func (e *Engine) Resolver() *resolve.Resolver {
	return e.resolver
}

// DriverInfo is one row of the driver reference listing.
type DriverInfo struct {
	Code string `json:"code"`
	Name string `json:"name"`
	// Team is empty when the driver has no team entry.
	Team string `json:"team"`
}

// Drivers lists every driver in canonical order.
func (e *Engine) Drivers() []DriverInfo {
	codes := e.bundle.Drivers()
	out := make([]DriverInfo, len(codes))
	for i, code := range codes {
		team, _ := e.bundle.TeamOf(code)
		out[i] = DriverInfo{Code: code, Name: e.bundle.DriverName(code), Team: team}
	}
	return out
}

// Races lists the calendar in ascending round order.
func (e *Engine) Races() []store.Race {
	races := e.bundle.Races()
	sort.SliceStable(races, func(i, j int) bool { return races[i].Round < races[j].Round })
	return races
}

func (e *Engine) resolveDriver(query string) (code string, idx int, err error) {
	code, strategy, ok := e.resolver.DriverMatch(query)
	e.record(Resolution{Kind: KindDriver, Query: query, Match: code, Strategy: strategy})
	if !ok {
		return "", 0, e.driverNotFound(query)
	}
	idx, _ = e.bundle.DriverIndex(code)
	return code, idx, nil
}

func (e *Engine) resolveRace(query string) (race store.Race, idx int, err error) {
	race, ok := e.resolver.Race(query)
	if !ok {
		e.record(Resolution{Kind: KindRace, Query: query})
		return store.Race{}, 0, e.raceNotFound(query)
	}
	e.record(Resolution{Kind: KindRace, Query: query, Match: race.Name, Strategy: "exact"})
	idx, _ = e.bundle.RoundIndex(race.Round)
	return race, idx, nil
}

func (e *Engine) record(r Resolution) {
	if e.observe != nil {
		e.observe(r)
	}
}
