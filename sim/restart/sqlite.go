package restart

import (
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/landsim/landsim/sim/geo"
)

// SQLiteStore keeps yearly restart snapshots of one or more runs in a SQLite
// database. A store writes under the run registered by StartRun; reading
// other runs needs no registration.
type SQLiteStore struct {
	conn  *sqlx.DB
	path  string
	runID uuid.UUID
}

// Run describes one stored run.
type Run struct {
	ID        string `db:"id"`
	Seed      int64  `db:"seed"`
	StartedAt string `db:"started_at"`
}

type zoneRow struct {
	Year        int             `db:"year"`
	Zone        int             `db:"zone"`
	DevCapacity sql.NullFloat64 `db:"dev_capacity"`
	DevLandUse  float64         `db:"dev_land_use"`
}

// OpenSQLite opens or creates the database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	conn.SetMaxOpenConns(1)

	s := &SQLiteStore{conn: conn, path: path}
	if err := s.migrate(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// StartRun registers a new run that later saves are written under.
func (s *SQLiteStore) StartRun(seed int64) error {
	id := uuid.New()
	_, err := s.conn.Exec("INSERT INTO runs (id, seed, started_at) VALUES (?, ?, ?)",
		id.String(), seed, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("register run: %w", err)
	}
	s.runID = id
	logrus.Infof("restart store %s: run %s", s.path, id)
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}

// RunID returns the id this store writes under, uuid.Nil before StartRun.
func (s *SQLiteStore) RunID() uuid.UUID { return s.runID }

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		seed INTEGER NOT NULL,
		started_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS zone_land (
		run_id TEXT NOT NULL REFERENCES runs(id),
		year INTEGER NOT NULL,
		zone INTEGER NOT NULL,
		dev_capacity REAL,
		dev_land_use REAL NOT NULL,
		PRIMARY KEY (run_id, year, zone)
	);
	`
	_, err := s.conn.Exec(schema)
	return err
}

// Save stores the snapshot of year under this run, replacing an earlier
// save of the same year.
func (s *SQLiteStore) Save(year int, snap Snapshot) error {
	if s.runID == uuid.Nil {
		return fmt.Errorf("save year %d: no run started", year)
	}
	tx, err := s.conn.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DELETE FROM zone_land WHERE run_id = ? AND year = ?", s.runID.String(), year); err != nil {
		return err
	}
	stmt, err := tx.Preparex(`INSERT INTO zone_land
		(run_id, year, zone, dev_capacity, dev_land_use)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for zone, acres := range snap.LandUse {
		capacity := sql.NullFloat64{}
		if units, ok := snap.Capacity[zone]; ok {
			capacity = sql.NullFloat64{Float64: units, Valid: true}
		}
		if _, err := stmt.Exec(s.runID.String(), year, zone, capacity, acres); err != nil {
			return fmt.Errorf("insert zone %d: %w", zone, err)
		}
	}
	return tx.Commit()
}

// Export saves the current land state of g as year.
func (s *SQLiteStore) Export(year int, g *geo.Data) error {
	return s.Save(year, TakeSnapshot(g))
}

// Load returns the snapshot stored for runID and year.
func (s *SQLiteStore) Load(runID string, year int) (Snapshot, error) {
	var rows []zoneRow
	err := s.conn.Select(&rows,
		"SELECT year, zone, dev_capacity, dev_land_use FROM zone_land WHERE run_id = ? AND year = ? ORDER BY zone",
		runID, year)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load run %s year %d: %w", runID, year, err)
	}
	if len(rows) == 0 {
		return Snapshot{}, fmt.Errorf("load run %s year %d: no rows", runID, year)
	}
	snap := Snapshot{LandUse: make(map[int]float64, len(rows))}
	for _, r := range rows {
		snap.LandUse[r.Zone] = r.DevLandUse
		if r.DevCapacity.Valid {
			if snap.Capacity == nil {
				snap.Capacity = make(map[int]float64)
			}
			snap.Capacity[r.Zone] = r.DevCapacity.Float64
		}
	}
	return snap, nil
}

// LatestYear returns the last year saved for runID.
func (s *SQLiteStore) LatestYear(runID string) (int, error) {
	var year sql.NullInt64
	if err := s.conn.Get(&year, "SELECT MAX(year) FROM zone_land WHERE run_id = ?", runID); err != nil {
		return 0, err
	}
	if !year.Valid {
		return 0, fmt.Errorf("run %s has no saved years", runID)
	}
	return int(year.Int64), nil
}

// Runs lists the stored runs, oldest first.
func (s *SQLiteStore) Runs() ([]Run, error) {
	var runs []Run
	err := s.conn.Select(&runs, "SELECT id, seed, started_at FROM runs ORDER BY rowid")
	return runs, err
}

// Resume returns the last snapshot saved under runID and its year. An empty
// runID picks the newest run that saved at least one year.
func (s *SQLiteStore) Resume(runID string) (Snapshot, int, error) {
	if runID == "" {
		runs, err := s.Runs()
		if err != nil {
			return Snapshot{}, 0, err
		}
		for i := len(runs) - 1; i >= 0; i-- {
			if _, err := s.LatestYear(runs[i].ID); err == nil {
				runID = runs[i].ID
				break
			}
		}
		if runID == "" {
			return Snapshot{}, 0, fmt.Errorf("no run in %s has saved years", s.path)
		}
	}
	year, err := s.LatestYear(runID)
	if err != nil {
		return Snapshot{}, 0, err
	}
	snap, err := s.Load(runID, year)
	if err != nil {
		return Snapshot{}, 0, err
	}
	logrus.Infof("restart store %s: resuming run %s from year %d", s.path, runID, year)
	return snap, year, nil
}

// ResumeSQLite opens the existing store at path, resumes runID from it and
// closes it again.
func ResumeSQLite(path, runID string) (Snapshot, int, error) {
	if _, err := os.Stat(path); err != nil {
		return Snapshot{}, 0, fmt.Errorf("restart store: %w", err)
	}
	s, err := OpenSQLite(path)
	if err != nil {
		return Snapshot{}, 0, err
	}
	defer func() { _ = s.Close() }()
	return s.Resume(runID)
}
