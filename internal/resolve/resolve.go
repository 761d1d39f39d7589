// Package resolve maps free-text driver and race queries to canonical
// identifiers in a simulation bundle.
//
// Driver queries run through an ordered chain of strategies, each of which
// either returns a code or passes. The first strategy to match wins, and
// within a strategy the first candidate in iteration order wins:
//
//  1. exact:  the upper-cased query equals a driver code
//  2. name:   the query is a substring of a display name, or the name's first
//     token is a substring of the query (display-name table order)
//  3. prefix: the first three characters of the query appear in a driver
//     code (driver order)
//
// Race queries only match full race names, case-insensitively.
package resolve

import (
	"strings"

	"github.com/nvandessel/poleposition/internal/store"
)

// Strategy is one step of the driver resolution chain.
type Strategy struct {
	Name  string
	Match func(query string) (code string, ok bool)
}

// Resolver resolves driver and race queries against a fixed set of
// reference tables. It is safe for concurrent use.
type Resolver struct {
	drivers []string
	onGrid  map[string]bool
	names   []nameEntry
	races   []store.Race
	chain   []Strategy
}

type nameEntry struct {
	code  string
	upper string
	first string
}

// New builds a resolver over drivers (canonical order), names (display-name
// table, iterated in its own order) and races (calendar order).
func New(drivers []string, names *store.Table, races []store.Race) *Resolver {
	r := &Resolver{
		drivers: append([]string(nil), drivers...),
		onGrid:  make(map[string]bool, len(drivers)),
		races:   append([]store.Race(nil), races...),
	}
	for _, code := range drivers {
		r.onGrid[code] = true
	}

	names.Each(func(code, name string) bool {
		// Names for codes outside the grid cannot be answered for.
		if !r.onGrid[code] {
			return true
		}
		upper := strings.ToUpper(strings.TrimSpace(name))
		fields := strings.Fields(upper)
		if len(fields) == 0 {
			return true
		}
		r.names = append(r.names, nameEntry{code: code, upper: upper, first: fields[0]})
		return true
	})

	r.chain = []Strategy{
		{Name: "exact", Match: r.matchExact},
		{Name: "name", Match: r.matchName},
		{Name: "prefix", Match: r.matchPrefix},
	}
	return r
}

// FromBundle builds a resolver over a bundle's reference tables.
func FromBundle(b *store.Bundle) *Resolver {
	return New(b.Drivers(), b.Names(), b.Races())
}

// Strategies returns the driver resolution chain in evaluation order.
func (r *Resolver) Strategies() []Strategy {
	return append([]Strategy(nil), r.chain...)
}

// Driver resolves a driver query to a driver code.
func (r *Resolver) Driver(query string) (string, bool) {
	code, _, ok := r.DriverMatch(query)
	return code, ok
}

// DriverMatch resolves a driver query and reports which strategy matched.
func (r *Resolver) DriverMatch(query string) (code, strategy string, ok bool) {
	q := normalize(query)
	if q == "" {
		return "", "", false
	}
	for _, s := range r.chain {
		if code, ok := s.Match(q); ok {
			return code, s.Name, true
		}
	}
	return "", "", false
}

// Race resolves a race query to a scheduled round. Only full race names
// match; there is no substring or prefix fallback.
func (r *Resolver) Race(query string) (store.Race, bool) {
	q := strings.TrimSpace(query)
	if q == "" {
		return store.Race{}, false
	}
	for _, race := range r.races {
		if strings.EqualFold(q, race.Name) {
			return race, true
		}
	}
	return store.Race{}, false
}

func (r *Resolver) matchExact(q string) (string, bool) {
	if r.onGrid[q] {
		return q, true
	}
	return "", false
}

func (r *Resolver) matchName(q string) (string, bool) {
	for _, n := range r.names {
		if strings.Contains(n.upper, q) || strings.Contains(q, n.first) {
			return n.code, true
		}
	}
	return "", false
}

func (r *Resolver) matchPrefix(q string) (string, bool) {
	prefix := q
	if runes := []rune(q); len(runes) > 3 {
		prefix = string(runes[:3])
	}
	for _, code := range r.drivers {
		if strings.Contains(code, prefix) {
			return code, true
		}
	}
	return "", false
}

func normalize(query string) string {
	return strings.ToUpper(strings.TrimSpace(query))
}
