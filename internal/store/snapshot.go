package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver
)

// IsSnapshotPath reports whether path names a SQLite bundle snapshot.
func IsSnapshotPath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return true
	}
	return false
}

func openSnapshotDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

// WriteSnapshot stores b, including its name and team tables, in a new
// SQLite database at path. An existing file is an error.
func WriteSnapshot(ctx context.Context, path string, b *Bundle) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("snapshot %s already exists", path)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create snapshot directory: %w", err)
		}
	}

	db, err := openSnapshotDB(path)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := InitSchema(ctx, db); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	meta := map[string]string{
		"n_simulations": strconv.Itoa(b.nSims),
		"n_positions":   strconv.Itoa(b.nPositions),
	}
	for k, v := range meta {
		if _, err := tx.ExecContext(ctx, `INSERT INTO meta (key, value) VALUES (?, ?)`, k, v); err != nil {
			return fmt.Errorf("failed to write meta %s: %w", k, err)
		}
	}

	for i, code := range b.drivers {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO drivers (idx, code, sim_wins) VALUES (?, ?, ?)`,
			i, code, b.wins[i]); err != nil {
			return fmt.Errorf("failed to write driver %s: %w", code, err)
		}
	}
	for i, rnd := range b.rounds {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO rounds (idx, round, race_name) VALUES (?, ?, ?)`,
			i, rnd, b.raceNames[rnd]); err != nil {
			return fmt.Errorf("failed to write round %d: %w", rnd, err)
		}
	}

	distStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO pos_distribution (driver_idx, round_idx, counts) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare distribution insert: %w", err)
	}
	defer distStmt.Close()
	for d := range b.drivers {
		for r := range b.rounds {
			counts, err := json.Marshal(b.posDist[d][r])
			if err != nil {
				return fmt.Errorf("failed to marshal distribution: %w", err)
			}
			if _, err := distStmt.ExecContext(ctx, d, r, string(counts)); err != nil {
				return fmt.Errorf("failed to write distribution (%d, %d): %w", d, r, err)
			}
		}
	}

	pointsStmt, err := tx.PrepareContext(ctx, `INSERT INTO sim_points (sim, points) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare points insert: %w", err)
	}
	defer pointsStmt.Close()
	row := make([]float64, len(b.drivers))
	for s := 0; s < b.nSims; s++ {
		for d := range b.drivers {
			row[d] = b.points[d][s]
		}
		data, err := json.Marshal(row)
		if err != nil {
			return fmt.Errorf("failed to marshal points: %w", err)
		}
		if _, err := pointsStmt.ExecContext(ctx, s, string(data)); err != nil {
			return fmt.Errorf("failed to write simulation %d: %w", s, err)
		}
	}

	if err := writeTable(ctx, tx, `INSERT INTO driver_names (seq, code, name) VALUES (?, ?, ?)`, b.names); err != nil {
		return fmt.Errorf("failed to write driver names: %w", err)
	}
	if err := writeTable(ctx, tx, `INSERT INTO teams (seq, code, team) VALUES (?, ?, ?)`, b.teams); err != nil {
		return fmt.Errorf("failed to write teams: %w", err)
	}

	return tx.Commit()
}

func writeTable(ctx context.Context, tx *sql.Tx, stmt string, t *Table) error {
	seq := 0
	var err error
	t.Each(func(code, value string) bool {
		_, err = tx.ExecContext(ctx, stmt, seq, code, value)
		seq++
		return err == nil
	})
	return err
}

// ReadSnapshot loads the raw bundle content from a snapshot written by
// WriteSnapshot. The result still has to pass New.
func ReadSnapshot(ctx context.Context, path string) (Raw, error) {
	if _, err := os.Stat(path); err != nil {
		return Raw{}, err
	}
	db, err := openSnapshotDB(path)
	if err != nil {
		return Raw{}, err
	}
	defer db.Close()

	if err := InitSchema(ctx, db); err != nil {
		return Raw{}, err
	}

	var raw Raw
	var nPositions int
	if err := readMetaInt(ctx, db, "n_simulations", &raw.NSimulations); err != nil {
		return Raw{}, err
	}
	if err := readMetaInt(ctx, db, "n_positions", &nPositions); err != nil {
		return Raw{}, err
	}

	rows, err := db.QueryContext(ctx, `SELECT code, sim_wins FROM drivers ORDER BY idx`)
	if err != nil {
		return Raw{}, fmt.Errorf("failed to query drivers: %w", err)
	}
	for rows.Next() {
		var code string
		var wins float64
		if err := rows.Scan(&code, &wins); err != nil {
			rows.Close()
			return Raw{}, fmt.Errorf("failed to scan driver: %w", err)
		}
		raw.Drivers = append(raw.Drivers, code)
		raw.SimWins = append(raw.SimWins, wins)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return Raw{}, err
	}

	raw.RaceNames = make(map[int]string)
	rows, err = db.QueryContext(ctx, `SELECT round, race_name FROM rounds ORDER BY idx`)
	if err != nil {
		return Raw{}, fmt.Errorf("failed to query rounds: %w", err)
	}
	for rows.Next() {
		var rnd int
		var name string
		if err := rows.Scan(&rnd, &name); err != nil {
			rows.Close()
			return Raw{}, fmt.Errorf("failed to scan round: %w", err)
		}
		raw.Rounds = append(raw.Rounds, rnd)
		raw.RaceNames[rnd] = name
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return Raw{}, err
	}

	raw.PosDistribution = make([][][]float64, len(raw.Drivers))
	for d := range raw.PosDistribution {
		raw.PosDistribution[d] = make([][]float64, len(raw.Rounds))
	}
	rows, err = db.QueryContext(ctx, `SELECT driver_idx, round_idx, counts FROM pos_distribution`)
	if err != nil {
		return Raw{}, fmt.Errorf("failed to query distribution: %w", err)
	}
	for rows.Next() {
		var d, r int
		var counts string
		if err := rows.Scan(&d, &r, &counts); err != nil {
			rows.Close()
			return Raw{}, fmt.Errorf("failed to scan distribution: %w", err)
		}
		if d < 0 || d >= len(raw.Drivers) || r < 0 || r >= len(raw.Rounds) {
			rows.Close()
			return Raw{}, fmt.Errorf("distribution cell (%d, %d) out of range", d, r)
		}
		if err := json.Unmarshal([]byte(counts), &raw.PosDistribution[d][r]); err != nil {
			rows.Close()
			return Raw{}, fmt.Errorf("failed to decode distribution (%d, %d): %w", d, r, err)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return Raw{}, err
	}
	for d := range raw.PosDistribution {
		for r, counts := range raw.PosDistribution[d] {
			if counts == nil {
				return Raw{}, fmt.Errorf("distribution cell (%d, %d) missing", d, r)
			}
			if len(counts) != nPositions {
				return Raw{}, fmt.Errorf("distribution cell (%d, %d) has %d positions, want %d", d, r, len(counts), nPositions)
			}
		}
	}

	rows, err = db.QueryContext(ctx, `SELECT points FROM sim_points ORDER BY sim`)
	if err != nil {
		return Raw{}, fmt.Errorf("failed to query points: %w", err)
	}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			rows.Close()
			return Raw{}, fmt.Errorf("failed to scan points: %w", err)
		}
		var row []float64
		if err := json.Unmarshal([]byte(data), &row); err != nil {
			rows.Close()
			return Raw{}, fmt.Errorf("failed to decode points: %w", err)
		}
		raw.SimPoints = append(raw.SimPoints, row)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return Raw{}, err
	}

	if raw.Names, err = readTable(ctx, db, `SELECT code, name FROM driver_names ORDER BY seq`); err != nil {
		return Raw{}, fmt.Errorf("failed to read driver names: %w", err)
	}
	if raw.Teams, err = readTable(ctx, db, `SELECT code, team FROM teams ORDER BY seq`); err != nil {
		return Raw{}, fmt.Errorf("failed to read teams: %w", err)
	}
	return raw, nil
}

func readMetaInt(ctx context.Context, db *sql.DB, key string, dst *int) error {
	var value string
	err := db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("meta %s missing", key)
	}
	if err != nil {
		return fmt.Errorf("failed to read meta %s: %w", key, err)
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("meta %s: %w", key, err)
	}
	*dst = n
	return nil
}

func readTable(ctx context.Context, db *sql.DB, query string) (*Table, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	t := NewTable()
	for rows.Next() {
		var code, value string
		if err := rows.Scan(&code, &value); err != nil {
			return nil, err
		}
		t.Set(code, value)
	}
	return t, rows.Err()
}
