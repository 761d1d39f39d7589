package tools

import (
	"errors"

	"github.com/nvandessel/poleposition/internal/query"
	"github.com/nvandessel/poleposition/internal/ratelimit"
)

// ErrorResult is the structured form of a failed tool call, suitable for
// returning to an agent or API client.
type ErrorResult struct {
	Error     string   `json:"error"`
	Kind      string   `json:"kind,omitempty"`
	Query     string   `json:"query,omitempty"`
	Available []string `json:"available,omitempty"`
	// NotFound lists each unresolved query when more than one failed.
	NotFound []ErrorResult `json:"not_found,omitempty"`
}

// Status classifies a tool error for transports that map errors onto status
// codes.
type Status int

const (
	StatusInternal Status = iota
	StatusNotFound
	StatusBadRequest
	StatusRateLimited
)

// Classify returns the status for err.
func Classify(err error) Status {
	switch {
	case query.IsNotFound(err):
		return StatusNotFound
	case errors.Is(err, ratelimit.ErrRateLimited):
		return StatusRateLimited
	case errors.Is(err, ErrUnknownTool), errors.Is(err, ErrInvalidArgs):
		return StatusBadRequest
	default:
		return StatusInternal
	}
}

// NewErrorResult converts err into its structured form.
func NewErrorResult(err error) ErrorResult {
	nfs := query.NotFoundErrors(err)
	switch len(nfs) {
	case 0:
		return ErrorResult{Error: err.Error()}
	case 1:
		return notFoundResult(nfs[0])
	}
	out := ErrorResult{Error: err.Error()}
	for _, nf := range nfs {
		out.NotFound = append(out.NotFound, notFoundResult(nf))
	}
	return out
}

func notFoundResult(nf *query.NotFoundError) ErrorResult {
	return ErrorResult{
		Error:     nf.Error(),
		Kind:      string(nf.Kind),
		Query:     nf.Query,
		Available: nf.Available,
	}
}
