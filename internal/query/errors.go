package query

import (
	"errors"
	"fmt"
)

// Kind names the kind of entity a query failed to resolve.
type Kind string

const (
	KindDriver Kind = "driver"
	KindRace   Kind = "race"
)

// NotFoundError reports a driver or race query that did not resolve. It is
// recoverable: callers show Available as a hint and try again.
type NotFoundError struct {
	Kind  Kind
	Query string
	// Available lists the valid driver codes or race names.
	Available []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Query)
}

// NotFoundErrors returns every *NotFoundError in err's tree, in order. Joined
// errors (as returned by CompareDrivers when both drivers are unknown) are
// flattened.
func NotFoundErrors(err error) []*NotFoundError {
	if err == nil {
		return nil
	}
	var out []*NotFoundError
	var walk func(error)
	walk = func(err error) {
		if nf, ok := err.(*NotFoundError); ok {
			out = append(out, nf)
			return
		}
		switch u := err.(type) {
		case interface{ Unwrap() []error }:
			for _, e := range u.Unwrap() {
				walk(e)
			}
		case interface{ Unwrap() error }:
			if inner := u.Unwrap(); inner != nil {
				walk(inner)
			}
		}
	}
	walk(err)
	return out
}

// IsNotFound reports whether err contains a *NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

func (e *Engine) driverNotFound(query string) *NotFoundError {
	return &NotFoundError{Kind: KindDriver, Query: query, Available: e.bundle.Drivers()}
}

func (e *Engine) raceNotFound(query string) *NotFoundError {
	races := e.bundle.Races()
	names := make([]string, len(races))
	for i, r := range races {
		names[i] = r.Name
	}
	return &NotFoundError{Kind: KindRace, Query: query, Available: names}
}
