// Package db stores coverage-simulation run history for the CLI. The
// engine itself never touches storage; persistence is a caller concern.
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS simulations (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    method TEXT NOT NULL,
    distribution TEXT NOT NULL,
    true_parameter REAL NOT NULL,
    sample_size INTEGER NOT NULL,
    num_simulations INTEGER NOT NULL,
    confidence_level REAL NOT NULL,
    resamples INTEGER NOT NULL DEFAULT 0,
    seed INTEGER NOT NULL,
    empirical_coverage REAL NOT NULL,
    average_width REAL NOT NULL,
    run_date TEXT NOT NULL,
    notes TEXT
);
CREATE INDEX IF NOT EXISTS idx_simulations_method ON simulations(method);
CREATE INDEX IF NOT EXISTS idx_simulations_date ON simulations(run_date);

CREATE TABLE IF NOT EXISTS trials (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    simulation_id INTEGER NOT NULL REFERENCES simulations(id) ON DELETE CASCADE,
    trial_index INTEGER NOT NULL,
    sample_mean REAL NOT NULL,
    lower_bound REAL NOT NULL,
    upper_bound REAL NOT NULL,
    covers INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_trials_simulation ON trials(simulation_id);
`

// Simulation is one recorded coverage run.
type Simulation struct {
	ID                int64
	Method            string
	Distribution      string
	TrueParameter     float64
	SampleSize        int
	NumSimulations    int
	ConfidenceLevel   float64
	Resamples         int
	Seed              int64
	EmpiricalCoverage float64
	AverageWidth      float64
	RunDate           string
	Notes             string
}

// TrialRow is one persisted Monte Carlo replicate.
type TrialRow struct {
	SimulationID int64
	TrialIndex   int
	SampleMean   float64
	LowerBound   float64
	UpperBound   float64
	Covers       bool
}

type DB struct {
	*sql.DB
	path string
}

func (db *DB) Path() string {
	return db.path
}

func Open(dbPath string) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	dsn := dbPath
	if strings.Contains(dbPath, "?") {
		dsn += "&_pragma=foreign_keys(1)"
	} else {
		dsn += "?_pragma=foreign_keys(1)"
	}

	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := sqlDB.Exec("PRAGMA foreign_keys = ON"); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if _, err := sqlDB.Exec(schemaSQL); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return &DB{DB: sqlDB, path: dbPath}, nil
}

// InsertSimulation records a run summary and returns its ID.
func (db *DB) InsertSimulation(s *Simulation) (int64, error) {
	res, err := db.Exec(`INSERT INTO simulations
		(method, distribution, true_parameter, sample_size, num_simulations,
		 confidence_level, resamples, seed, empirical_coverage, average_width,
		 run_date, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.Method, s.Distribution, s.TrueParameter, s.SampleSize, s.NumSimulations,
		s.ConfidenceLevel, s.Resamples, s.Seed, s.EmpiricalCoverage, s.AverageWidth,
		s.RunDate, s.Notes)
	if err != nil {
		return 0, fmt.Errorf("insert simulation: %w", err)
	}
	return res.LastInsertId()
}

// InsertTrials records per-trial rows inside one transaction.
func (db *DB) InsertTrials(rows []TrialRow) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO trials
		(simulation_id, trial_index, sample_mean, lower_bound, upper_bound, covers)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare trial insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		covers := 0
		if r.Covers {
			covers = 1
		}
		if _, err := stmt.Exec(r.SimulationID, r.TrialIndex, r.SampleMean, r.LowerBound, r.UpperBound, covers); err != nil {
			return fmt.Errorf("insert trial %d: %w", r.TrialIndex, err)
		}
	}
	return tx.Commit()
}

// ListSimulations returns the most recent runs, newest first, optionally
// filtered by method.
func (db *DB) ListSimulations(limit int, method string) ([]Simulation, error) {
	query := `SELECT id, method, distribution, true_parameter, sample_size,
		num_simulations, confidence_level, resamples, seed,
		empirical_coverage, average_width, run_date, COALESCE(notes, '')
		FROM simulations`
	var args []any
	if method != "" {
		query += ` WHERE method = ?`
		args = append(args, method)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list simulations: %w", err)
	}
	defer rows.Close()

	var sims []Simulation
	for rows.Next() {
		var s Simulation
		if err := rows.Scan(&s.ID, &s.Method, &s.Distribution, &s.TrueParameter,
			&s.SampleSize, &s.NumSimulations, &s.ConfidenceLevel, &s.Resamples,
			&s.Seed, &s.EmpiricalCoverage, &s.AverageWidth, &s.RunDate, &s.Notes); err != nil {
			return nil, fmt.Errorf("scan simulation: %w", err)
		}
		sims = append(sims, s)
	}
	return sims, rows.Err()
}

// GetSimulation fetches one run by ID.
func (db *DB) GetSimulation(id int64) (*Simulation, error) {
	var s Simulation
	err := db.QueryRow(`SELECT id, method, distribution, true_parameter,
		sample_size, num_simulations, confidence_level, resamples, seed,
		empirical_coverage, average_width, run_date, COALESCE(notes, '')
		FROM simulations WHERE id = ?`, id).
		Scan(&s.ID, &s.Method, &s.Distribution, &s.TrueParameter, &s.SampleSize,
			&s.NumSimulations, &s.ConfidenceLevel, &s.Resamples, &s.Seed,
			&s.EmpiricalCoverage, &s.AverageWidth, &s.RunDate, &s.Notes)
	if err != nil {
		return nil, fmt.Errorf("get simulation %d: %w", id, err)
	}
	return &s, nil
}

// GetTrials fetches the per-trial rows of a run ordered by trial index.
func (db *DB) GetTrials(simulationID int64) ([]TrialRow, error) {
	rows, err := db.Query(`SELECT simulation_id, trial_index, sample_mean,
		lower_bound, upper_bound, covers
		FROM trials WHERE simulation_id = ? ORDER BY trial_index`, simulationID)
	if err != nil {
		return nil, fmt.Errorf("get trials: %w", err)
	}
	defer rows.Close()

	var out []TrialRow
	for rows.Next() {
		var r TrialRow
		var covers int
		if err := rows.Scan(&r.SimulationID, &r.TrialIndex, &r.SampleMean,
			&r.LowerBound, &r.UpperBound, &covers); err != nil {
			return nil, fmt.Errorf("scan trial: %w", err)
		}
		r.Covers = covers != 0
		out = append(out, r)
	}
	return out, rows.Err()
}

// DeleteSimulation removes a run and, via cascade, its trials.
func (db *DB) DeleteSimulation(id int64) error {
	res, err := db.Exec(`DELETE FROM simulations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete simulation %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("simulation %d not found", id)
	}
	return nil
}
