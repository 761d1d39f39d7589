package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// NameOverride supplies a display name for a driver code absent from the
// names source (or replaces the one it has).
type NameOverride struct {
	Code string `json:"code" yaml:"code"`
	Name string `json:"name" yaml:"name"`
}

// Sources locates the artifacts a bundle is built from. Paths may be local
// files or gs://bucket/object URLs.
type Sources struct {
	// BundlePath is the simulation result set: a JSON bundle, or a SQLite
	// snapshot (.db/.sqlite) that already contains the team and name tables.
	BundlePath string

	// PointsPath optionally replaces the bundle's points matrix with an Arrow
	// IPC file (one float64 column per driver code).
	PointsPath string

	TeamsPath  string
	NamesPath  string
	TeamColumn string // defaults to DefaultTeamColumn
	NameColumn string // defaults to DefaultNameColumn

	// NameOverrides are applied after the names source, in order.
	NameOverrides []NameOverride
}

// Load reads every artifact named by src and builds the bundle. Any failure
// is returned as a *DataLoadError.
func Load(ctx context.Context, src Sources) (*Bundle, error) {
	if src.BundlePath == "" {
		return nil, loadErr("bundle", "no bundle path configured")
	}

	if IsSnapshotPath(src.BundlePath) {
		path, cleanup, err := localSnapshot(ctx, src.BundlePath)
		if err != nil {
			return nil, &DataLoadError{Artifact: "snapshot", Err: err}
		}
		defer cleanup()
		raw, err := ReadSnapshot(ctx, path)
		if err != nil {
			return nil, &DataLoadError{Artifact: "snapshot", Err: err}
		}
		if err := applyPoints(ctx, src.PointsPath, &raw); err != nil {
			return nil, err
		}
		applyOverrides(raw.Names, src.NameOverrides)
		return New(raw)
	}

	raw, err := readBundleJSON(ctx, src.BundlePath)
	if err != nil {
		return nil, &DataLoadError{Artifact: "bundle", Err: err}
	}
	if err := applyPoints(ctx, src.PointsPath, &raw); err != nil {
		return nil, err
	}

	teamColumn := src.TeamColumn
	if teamColumn == "" {
		teamColumn = DefaultTeamColumn
	}
	nameColumn := src.NameColumn
	if nameColumn == "" {
		nameColumn = DefaultNameColumn
	}

	if src.TeamsPath == "" {
		return nil, loadErr("teams", "no teams path configured")
	}
	raw.Teams, err = loadTable(ctx, src.TeamsPath, teamColumn)
	if err != nil {
		return nil, &DataLoadError{Artifact: "teams", Err: err}
	}

	if src.NamesPath == "" {
		return nil, loadErr("names", "no names path configured")
	}
	raw.Names, err = loadTable(ctx, src.NamesPath, nameColumn)
	if err != nil {
		return nil, &DataLoadError{Artifact: "names", Err: err}
	}
	applyOverrides(raw.Names, src.NameOverrides)

	return New(raw)
}

func readBundleJSON(ctx context.Context, path string) (Raw, error) {
	rc, err := openArtifact(ctx, path)
	if err != nil {
		return Raw{}, err
	}
	defer rc.Close()

	var raw Raw
	if err := json.NewDecoder(rc).Decode(&raw); err != nil {
		return Raw{}, fmt.Errorf("decoding %s: %w", path, err)
	}
	return raw, nil
}

func applyPoints(ctx context.Context, path string, raw *Raw) error {
	if path == "" {
		return nil
	}
	rows, err := ReadPoints(ctx, path, raw.Drivers)
	if err != nil {
		return &DataLoadError{Artifact: "points", Err: err}
	}
	raw.SimPoints = rows
	if raw.NSimulations == 0 {
		raw.NSimulations = len(rows)
	}
	return nil
}

func loadTable(ctx context.Context, path, valueColumn string) (*Table, error) {
	rc, err := openArtifact(ctx, path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return ReadTable(rc, DefaultKeyColumn, valueColumn)
}

func applyOverrides(names *Table, overrides []NameOverride) {
	if names == nil {
		return
	}
	for _, o := range overrides {
		if o.Code == "" || o.Name == "" {
			continue
		}
		names.Set(o.Code, o.Name)
	}
}

// localSnapshot returns a local path for a snapshot, downloading remote ones
// to a temporary file that cleanup removes.
func localSnapshot(ctx context.Context, path string) (string, func(), error) {
	if !strings.HasPrefix(path, gcsScheme) {
		return path, func() {}, nil
	}
	data, err := readArtifact(ctx, path)
	if err != nil {
		return "", nil, err
	}
	f, err := os.CreateTemp("", "poleposition-*.db")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create temp snapshot: %w", err)
	}
	cleanup := func() { os.Remove(f.Name()) }
	if _, err := f.Write(data); err != nil {
		f.Close()
		cleanup()
		return "", nil, fmt.Errorf("failed to write temp snapshot: %w", err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, err
	}
	return f.Name(), cleanup, nil
}
