package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/flyby-triad/internal/gate"
	"github.com/danielpatrickdp/flyby-triad/internal/triad"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS screenings (
	analysis_id     TEXT PRIMARY KEY,
	data_root       TEXT,
	preset          TEXT,
	thresholds_json TEXT NOT NULL,
	alpha           REAL NOT NULL,
	n_runs          INTEGER NOT NULL,
	n_flags         INTEGER NOT NULL,
	created_at      TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS triad_results (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	analysis_id TEXT NOT NULL,
	trap_id     TEXT NOT NULL,
	run_id      TEXT NOT NULL,
	a_stat REAL, a_p REAL, b_a INTEGER NOT NULL, a_level TEXT NOT NULL, a_slope REAL,
	d_stat REAL, d_p REAL, b_d INTEGER NOT NULL, d_level TEXT NOT NULL, d_fano REAL,
	m_stat REAL, m_p REAL, b_m INTEGER NOT NULL, m_level TEXT NOT NULL, m_short_lag REAL,
	decision    TEXT NOT NULL,
	reason      TEXT,
	error       TEXT,
	FOREIGN KEY (analysis_id) REFERENCES screenings(analysis_id)
);

CREATE INDEX IF NOT EXISTS idx_triad_results_analysis ON triad_results(analysis_id);

CREATE TABLE IF NOT EXISTS decision_log (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	analysis_id TEXT NOT NULL,
	trap_id     TEXT NOT NULL,
	run_id      TEXT NOT NULL,
	decision    TEXT NOT NULL,
	flags       INTEGER NOT NULL,
	reason      TEXT,
	created_at  TEXT NOT NULL
);
`

// #endregion schema

// #region store-struct
// Store persists screenings and their results in SQLite.
type Store struct {
	db *sql.DB
}

// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use by other packages (e.g. logging).
func (s *Store) DB() *sql.DB {
	return s.db
}

// #endregion constructor

// #region save
// SaveScreening inserts a screening and all of its results in one
// transaction. An empty AnalysisID is filled with a new UUID and a zero
// CreatedAt with the current time; the stored record is returned.
func (s *Store) SaveScreening(sc Screening, results []triad.Result) (Screening, error) {
	if sc.AnalysisID == "" {
		sc.AnalysisID = uuid.New().String()
	}
	if sc.CreatedAt.IsZero() {
		sc.CreatedAt = time.Now().UTC()
	}
	sc.NRuns = len(results)
	sc.NFlags = 0
	for _, r := range results {
		sc.NFlags += r.FlagCount()
	}

	thJSON, err := json.Marshal(sc.Thresholds)
	if err != nil {
		return Screening{}, fmt.Errorf("marshal thresholds: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return Screening{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO screenings (analysis_id, data_root, preset, thresholds_json, alpha, n_runs, n_flags, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sc.AnalysisID, sc.DataRoot, sc.Preset, string(thJSON), sc.Alpha, sc.NRuns, sc.NFlags,
		sc.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return Screening{}, fmt.Errorf("insert screening: %w", err)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO triad_results (analysis_id, trap_id, run_id,
			a_stat, a_p, b_a, a_level, a_slope,
			d_stat, d_p, b_d, d_level, d_fano,
			m_stat, m_p, b_m, m_level, m_short_lag,
			decision, reason, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return Screening{}, fmt.Errorf("prepare result insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range results {
		_, err := stmt.Exec(sc.AnalysisID, r.TrapID, r.RunID,
			nullIfNaN(r.AStat), nullIfNaN(r.AP), boolInt(r.AFlag), string(r.ALevel), nullIfNaN(r.ASlope),
			nullIfNaN(r.DStat), nullIfNaN(r.DP), boolInt(r.DFlag), string(r.DLevel), nullIfNaN(r.DFano),
			nullIfNaN(r.MStat), nullIfNaN(r.MP), boolInt(r.MFlag), string(r.MLevel), nullIfNaN(r.MShortLag),
			string(r.Decision), r.Reason, r.Error,
		)
		if err != nil {
			return Screening{}, fmt.Errorf("insert result %s/%s: %w", r.TrapID, r.RunID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Screening{}, fmt.Errorf("commit: %w", err)
	}
	return sc, nil
}

// #endregion save

// #region get-screening
// GetScreening retrieves one screening by ID.
func (s *Store) GetScreening(id string) (Screening, error) {
	row := s.db.QueryRow(
		`SELECT analysis_id, data_root, preset, thresholds_json, alpha, n_runs, n_flags, created_at
		 FROM screenings WHERE analysis_id = ?`, id,
	)
	sc, err := scanScreening(row)
	if err != nil {
		return Screening{}, fmt.Errorf("get screening %s: %w", id, err)
	}
	return sc, nil
}

// ListScreenings returns the most recent screenings, newest first.
func (s *Store) ListScreenings(limit int) ([]Screening, error) {
	rows, err := s.db.Query(
		`SELECT analysis_id, data_root, preset, thresholds_json, alpha, n_runs, n_flags, created_at
		 FROM screenings ORDER BY created_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list screenings: %w", err)
	}
	defer rows.Close()

	var out []Screening
	for rows.Next() {
		sc, err := scanScreening(rows)
		if err != nil {
			return nil, fmt.Errorf("scan screening: %w", err)
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanScreening(sc scanner) (Screening, error) {
	var rec Screening
	var dataRoot, preset sql.NullString
	var thJSON, createdStr string
	if err := sc.Scan(&rec.AnalysisID, &dataRoot, &preset, &thJSON, &rec.Alpha, &rec.NRuns, &rec.NFlags, &createdStr); err != nil {
		return Screening{}, err
	}
	rec.DataRoot = dataRoot.String
	rec.Preset = preset.String
	if err := json.Unmarshal([]byte(thJSON), &rec.Thresholds); err != nil {
		return Screening{}, fmt.Errorf("unmarshal thresholds: %w", err)
	}
	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
	return rec, nil
}

// #endregion get-screening

// #region results
// Results returns the stored results of a screening in evaluation order.
// NULL statistics read back as NaN.
func (s *Store) Results(analysisID string) ([]triad.Result, error) {
	rows, err := s.db.Query(
		`SELECT trap_id, run_id,
			a_stat, a_p, b_a, a_level, a_slope,
			d_stat, d_p, b_d, d_level, d_fano,
			m_stat, m_p, b_m, m_level, m_short_lag,
			decision, reason, error
		 FROM triad_results WHERE analysis_id = ? ORDER BY id ASC`, analysisID,
	)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	var out []triad.Result
	for rows.Next() {
		var r triad.Result
		var aStat, aP, aSlope, dStat, dP, dFano, mStat, mP, mShort sql.NullFloat64
		var bA, bD, bM int
		var aLevel, dLevel, mLevel, decision string
		var reason, errMsg sql.NullString
		if err := rows.Scan(&r.TrapID, &r.RunID,
			&aStat, &aP, &bA, &aLevel, &aSlope,
			&dStat, &dP, &bD, &dLevel, &dFano,
			&mStat, &mP, &bM, &mLevel, &mShort,
			&decision, &reason, &errMsg,
		); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		r.AStat, r.AP, r.ASlope = nanIfNull(aStat), nanIfNull(aP), nanIfNull(aSlope)
		r.DStat, r.DP, r.DFano = nanIfNull(dStat), nanIfNull(dP), nanIfNull(dFano)
		r.MStat, r.MP, r.MShortLag = nanIfNull(mStat), nanIfNull(mP), nanIfNull(mShort)
		r.AFlag, r.DFlag, r.MFlag = bA == 1, bD == 1, bM == 1
		r.ALevel, r.DLevel, r.MLevel = gate.Level(aLevel), gate.Level(dLevel), gate.Level(mLevel)
		r.Decision = gate.Level(decision)
		r.Reason = reason.String
		r.Error = errMsg.String
		out = append(out, r)
	}
	return out, rows.Err()
}

// #endregion results

// #region helpers
// SQLite has no NaN; it is stored as NULL.
func nullIfNaN(v float64) interface{} {
	if math.IsNaN(v) {
		return nil
	}
	return v
}

func nanIfNull(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// #endregion helpers
