package storage

import (
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"weedlist/internal"
)

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  traceId TEXT NOT NULL,
  startedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  finishedAt TEXT,
  countersJson TEXT
);

CREATE TABLE IF NOT EXISTS raw_names (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  runId INTEGER NOT NULL,
  source TEXT NOT NULL,
  name TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(runId, source, name),
  FOREIGN KEY(runId) REFERENCES runs(id)
);
CREATE INDEX IF NOT EXISTS idx_raw_names_run ON raw_names(runId);

CREATE TABLE IF NOT EXISTS validations (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  runId INTEGER NOT NULL,
  idx INTEGER NOT NULL,
  candidate TEXT NOT NULL,
  status TEXT NOT NULL,
  reason TEXT NOT NULL,
  acceptedName TEXT,
  confidence REAL NOT NULL DEFAULT 0,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(runId, candidate),
  FOREIGN KEY(runId) REFERENCES runs(id)
);
CREATE INDEX IF NOT EXISTS idx_validations_run ON validations(runId);

CREATE TABLE IF NOT EXISTS powo_cache (
  genus TEXT NOT NULL,
  species TEXT NOT NULL,
  responseJson TEXT NOT NULL,
  fetchedAt TEXT NOT NULL,
  PRIMARY KEY(genus, species)
);
`
	_, err := d.conn.Exec(schema)
	return err
}

func (d *DB) InsertRun(traceID string) (int64, error) {
	res, err := d.conn.Exec(`INSERT INTO runs (traceId) VALUES (?)`, traceID)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (d *DB) FinishRun(runID int64, counters map[string]int) error {
	blob, err := json.Marshal(counters)
	if err != nil {
		return err
	}
	_, err = d.conn.Exec(`UPDATE runs SET finishedAt = ?, countersJson = ? WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339), string(blob), runID)
	return err
}

func (d *DB) LatestRunID() (int64, error) {
	var id int64
	err := d.conn.QueryRow(`SELECT id FROM runs ORDER BY id DESC LIMIT 1`).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return id, err
}

func (d *DB) InsertRawNames(runID int64, names []internal.RawName) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`INSERT OR IGNORE INTO raw_names (runId, source, name) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, n := range names {
		if _, err := stmt.Exec(runID, string(n.Source), n.Name); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (d *DB) ListRawNames(runID int64) ([]internal.RawName, error) {
	rows, err := d.conn.Query(`SELECT source, name FROM raw_names WHERE runId = ? ORDER BY id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []internal.RawName{}
	for rows.Next() {
		var r internal.RawName
		var source string
		if err := rows.Scan(&source, &r.Name); err != nil {
			return nil, err
		}
		r.Source = internal.SourceID(source)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (d *DB) InsertValidations(runID int64, reportRows []internal.ReportRow) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO validations
		(runId, idx, candidate, status, reason, acceptedName, confidence)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, row := range reportRows {
		if _, err := stmt.Exec(runID, row.Index, row.Candidate, row.Status, row.Reason, row.AcceptedName, row.Confidence); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (d *DB) ListValidations(runID int64) ([]internal.ReportRow, error) {
	rows, err := d.conn.Query(`SELECT idx, candidate, status, reason, acceptedName, confidence
		FROM validations WHERE runId = ? ORDER BY idx`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []internal.ReportRow{}
	for rows.Next() {
		var row internal.ReportRow
		var accepted sql.NullString
		if err := rows.Scan(&row.Index, &row.Candidate, &row.Status, &row.Reason, &accepted, &row.Confidence); err != nil {
			return nil, err
		}
		row.AcceptedName = accepted.String
		out = append(out, row)
	}
	return out, rows.Err()
}

func (d *DB) ListAcceptedNames(runID int64) ([]string, error) {
	rows, err := d.conn.Query(`SELECT DISTINCT acceptedName FROM validations
		WHERE runId = ? AND status != ? AND acceptedName != ''
		ORDER BY acceptedName`, runID, string(internal.StatusUnmatched))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

// Get and Put implement the authority response cache.

func (d *DB) Get(genus, species string) ([]byte, bool, error) {
	var blob string
	err := d.conn.QueryRow(`SELECT responseJson FROM powo_cache WHERE genus = ? AND species = ?`,
		genus, species).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(blob), true, nil
}

func (d *DB) Put(genus, species string, body []byte) error {
	_, err := d.conn.Exec(`INSERT OR REPLACE INTO powo_cache (genus, species, responseJson, fetchedAt)
		VALUES (?, ?, ?, ?)`, genus, species, string(body), time.Now().UTC().Format(time.RFC3339))
	return err
}
