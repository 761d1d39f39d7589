package store

import "fmt"

// DataLoadError reports a missing, malformed or dimensionally inconsistent
// simulation artifact. It is fatal: no partially loaded bundle is ever served.
type DataLoadError struct {
	Artifact string // bundle, points, teams, names, snapshot
	Err      error
}

func (e *DataLoadError) Error() string {
	return fmt.Sprintf("loading %s: %v", e.Artifact, e.Err)
}

func (e *DataLoadError) Unwrap() error {
	return e.Err
}

func loadErr(artifact string, format string, args ...any) error {
	return &DataLoadError{Artifact: artifact, Err: fmt.Errorf(format, args...)}
}
