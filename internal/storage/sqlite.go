package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/matsen/certscan/internal/issn"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite results database. Each batch is stored as a run.
type DB struct {
	db *sql.DB
}

// Run identifies one stored batch.
type Run struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Records   int       `json:"records"`
}

const selectRecordFields = `file, issn, issn_valid, checksum, title, abbreviated_title,
	publisher, frequency, medium, assignment_date, certificate_date, error`

// OpenDB opens or creates a SQLite database at the given path.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			created_at INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS records (
			run_id TEXT NOT NULL REFERENCES runs(id),
			position INTEGER NOT NULL,
			file TEXT NOT NULL,
			issn TEXT,
			issn_valid INTEGER,
			checksum TEXT,
			title TEXT,
			abbreviated_title TEXT,
			publisher TEXT,
			frequency TEXT,
			medium TEXT,
			assignment_date TEXT,
			certificate_date TEXT,
			error TEXT,
			PRIMARY KEY (run_id, position)
		);

		CREATE INDEX IF NOT EXISTS idx_records_issn ON records(issn) WHERE issn IS NOT NULL AND issn != '';
	`
	_, err := db.Exec(schema)
	return err
}

// SaveRun stores records as a new run and returns it.
func (d *DB) SaveRun(records []issn.Record) (Run, error) {
	run := Run{ID: uuid.NewString(), CreatedAt: time.Now().UTC().Truncate(time.Second), Records: len(records)}

	tx, err := d.db.Begin()
	if err != nil {
		return Run{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT INTO runs (id, created_at) VALUES (?, ?)`, run.ID, run.CreatedAt.Unix()); err != nil {
		return Run{}, fmt.Errorf("inserting run: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO records (run_id, position, ` + selectRecordFields + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return Run{}, fmt.Errorf("preparing record insert: %w", err)
	}
	defer stmt.Close()

	for i, rec := range records {
		var valid sql.NullBool
		if rec.ISSNValid != nil {
			valid = sql.NullBool{Bool: *rec.ISSNValid, Valid: true}
		}
		_, err := stmt.Exec(run.ID, i,
			rec.File, rec.ISSN, valid, string(rec.Checksum), rec.Title, rec.AbbreviatedTitle,
			rec.Publisher, rec.Frequency, rec.Medium, rec.AssignmentDate, rec.CertificateDate, rec.Error)
		if err != nil {
			return Run{}, fmt.Errorf("inserting record %s: %w", rec.File, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("committing run: %w", err)
	}
	return run, nil
}

// LatestRun returns the most recently stored run, or nil if there is none.
func (d *DB) LatestRun() (*Run, error) {
	var (
		run     Run
		created int64
	)
	err := d.db.QueryRow(`
		SELECT r.id, r.created_at, (SELECT COUNT(*) FROM records WHERE run_id = r.id)
		FROM runs r
		ORDER BY r.created_at DESC, r.rowid DESC
		LIMIT 1`).Scan(&run.ID, &created, &run.Records)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying latest run: %w", err)
	}
	run.CreatedAt = time.Unix(created, 0).UTC()
	return &run, nil
}

// Records returns a run's records in their original order.
func (d *DB) Records(runID string) ([]issn.Record, error) {
	rows, err := d.db.Query(`SELECT `+selectRecordFields+` FROM records WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	var records []issn.Record
	for rows.Next() {
		var (
			rec      issn.Record
			valid    sql.NullBool
			checksum string
		)
		if err := rows.Scan(&rec.File, &rec.ISSN, &valid, &checksum, &rec.Title, &rec.AbbreviatedTitle,
			&rec.Publisher, &rec.Frequency, &rec.Medium, &rec.AssignmentDate, &rec.CertificateDate, &rec.Error); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		if valid.Valid {
			v := valid.Bool
			rec.ISSNValid = &v
		}
		rec.Checksum = issn.ChecksumStatus(checksum)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Report summarizes a run by checksum status and frequency.
func (d *DB) Report(run Run) (*Report, error) {
	rep := &Report{
		Run:         &run,
		Records:     run.Records,
		Checksum:    make(map[string]int),
		Frequencies: make(map[string]int),
	}

	if err := d.db.QueryRow(`SELECT COUNT(*) FROM records WHERE run_id = ? AND error != ''`, run.ID).Scan(&rep.Errors); err != nil {
		return nil, fmt.Errorf("counting errors: %w", err)
	}

	if err := d.countBy(run.ID, "checksum", rep.Checksum); err != nil {
		return nil, err
	}
	if err := d.countBy(run.ID, "LOWER(frequency)", rep.Frequencies); err != nil {
		return nil, err
	}

	rows, err := d.db.Query(`
		SELECT issn FROM records
		WHERE run_id = ? AND checksum = ?
		ORDER BY position`, run.ID, string(issn.ChecksumInvalid))
	if err != nil {
		return nil, fmt.Errorf("querying invalid identifiers: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scanning identifier: %w", err)
		}
		rep.Invalid = append(rep.Invalid, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return rep, nil
}

// countBy groups non-error records of a run by a column expression.
func (d *DB) countBy(runID, expr string, into map[string]int) error {
	rows, err := d.db.Query(`
		SELECT `+expr+`, COUNT(*) FROM records
		WHERE run_id = ? AND error = '' AND `+expr+` != ''
		GROUP BY 1`, runID)
	if err != nil {
		return fmt.Errorf("grouping by %s: %w", expr, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			key string
			n   int
		)
		if err := rows.Scan(&key, &n); err != nil {
			return fmt.Errorf("scanning %s count: %w", expr, err)
		}
		into[key] = n
	}
	return rows.Err()
}
