// Package store persists simulated missions in SQLite so registered traffic
// survives between runs.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/picogrid/uav-deconfliction/pkg/deconfliction"
	"github.com/picogrid/uav-deconfliction/pkg/models"

	_ "modernc.org/sqlite"
)

// ErrNotFound indicates no stored mission has the requested id
var ErrNotFound = errors.New("mission not found")

// DefaultBusyTimeout is used when Options.BusyTimeout is zero
const DefaultBusyTimeout = 5 * time.Second

// Options tune the database connection
type Options struct {
	BusyTimeout time.Duration
}

// Store manages mission persistence with WAL mode for concurrent access
type Store struct {
	db *sql.DB
}

// Record is a stored mission with its bookkeeping columns
type Record struct {
	Mission   *models.Mission
	CreatedAt time.Time
}

// storedWaypoint is the msgpack shape of a waypoint
type storedWaypoint struct {
	X float64 `msgpack:"x"`
	Y float64 `msgpack:"y"`
	Z float64 `msgpack:"z"`
	T int64   `msgpack:"t"` // unix nanos
}

// New opens (or creates) the SQLite database and initializes the schema
func New(path string, opts Options) (*Store, error) {
	timeout := opts.BusyTimeout
	if timeout <= 0 {
		timeout = DefaultBusyTimeout
	}
	dsn := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)&_pragma=synchronous(NORMAL)",
		path, timeout.Milliseconds())
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the database connection
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS missions (
		id             TEXT PRIMARY KEY,
		start_ns       INTEGER NOT NULL,
		end_ns         INTEGER NOT NULL,
		waypoint_count INTEGER NOT NULL,
		waypoints      BLOB NOT NULL,
		fingerprint    INTEGER NOT NULL,
		created_at     TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_missions_window ON missions(start_ns, end_ns);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SaveMission stores a mission. A mission with the same id already stored
// yields deconfliction.ErrDuplicateID.
func (s *Store) SaveMission(ctx context.Context, m *models.Mission) error {
	return s.SaveMissions(ctx, []*models.Mission{m})
}

// SaveMissions stores missions in one transaction; either all are saved or
// none are
func (s *Store) SaveMissions(ctx context.Context, missions []*models.Mission) error {
	rows := make([][]interface{}, len(missions))
	now := time.Now().UTC().Format(time.RFC3339Nano)
	for i, m := range missions {
		if m == nil {
			return deconfliction.ErrNilMission
		}
		blob, err := encodeWaypoints(m.Waypoints())
		if err != nil {
			return fmt.Errorf("encode %s: %w", m.ID(), err)
		}
		start, end := m.TimeRange()
		rows[i] = []interface{}{
			m.ID(), start.UnixNano(), end.UnixNano(), m.WaypointCount(), blob, int64(m.Fingerprint()), now,
		}
	}

	return retryOnContention(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer tx.Rollback()

		for _, row := range rows {
			res, err := tx.ExecContext(ctx,
				`INSERT INTO missions (id, start_ns, end_ns, waypoint_count, waypoints, fingerprint, created_at)
				 VALUES (?, ?, ?, ?, ?, ?, ?)
				 ON CONFLICT(id) DO NOTHING`,
				row...,
			)
			if err != nil {
				return err
			}
			n, err := res.RowsAffected()
			if err != nil {
				return err
			}
			if n == 0 {
				return fmt.Errorf("%w: %s", deconfliction.ErrDuplicateID, row[0])
			}
		}
		return tx.Commit()
	})
}

// GetMission retrieves a mission by id
func (s *Store) GetMission(ctx context.Context, id string) (*models.Mission, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, start_ns, end_ns, waypoints, created_at FROM missions WHERE id = ?`, id,
	)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return rec.Mission, nil
}

// List returns every stored mission ordered by id
func (s *Store) List(ctx context.Context) ([]Record, error) {
	return s.query(ctx,
		`SELECT id, start_ns, end_ns, waypoints, created_at FROM missions ORDER BY id`)
}

// LoadMissions returns every stored mission ordered by id
func (s *Store) LoadMissions(ctx context.Context) ([]*models.Mission, error) {
	recs, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return missionsOf(recs), nil
}

// LoadOverlapping returns stored missions whose window intersects
// [start, end], endpoints included, ordered by id
func (s *Store) LoadOverlapping(ctx context.Context, start, end time.Time) ([]*models.Mission, error) {
	recs, err := s.query(ctx,
		`SELECT id, start_ns, end_ns, waypoints, created_at FROM missions
		 WHERE start_ns <= ? AND end_ns >= ? ORDER BY id`,
		end.UnixNano(), start.UnixNano())
	if err != nil {
		return nil, err
	}
	return missionsOf(recs), nil
}

// DeleteMission removes a stored mission
func (s *Store) DeleteMission(ctx context.Context, id string) error {
	var n int64
	err := retryOnContention(ctx, func() error {
		res, err := s.db.ExecContext(ctx, `DELETE FROM missions WHERE id = ?`, id)
		if err != nil {
			return err
		}
		n, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// Count returns the number of stored missions
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM missions`).Scan(&n)
	return n, err
}

func (s *Store) query(ctx context.Context, q string, args ...interface{}) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(sc scanner) (Record, error) {
	var (
		id         string
		start, end int64
		blob       []byte
		created    string
	)
	if err := sc.Scan(&id, &start, &end, &blob, &created); err != nil {
		return Record{}, err
	}

	wps, err := decodeWaypoints(blob)
	if err != nil {
		return Record{}, fmt.Errorf("decode %s: %w", id, err)
	}
	m, err := models.NewMission(id, wps, time.Unix(0, start).UTC(), time.Unix(0, end).UTC())
	if err != nil {
		return Record{}, fmt.Errorf("stored mission %s: %w", id, err)
	}

	createdAt, _ := time.Parse(time.RFC3339Nano, created)
	return Record{Mission: m, CreatedAt: createdAt}, nil
}

func missionsOf(recs []Record) []*models.Mission {
	out := make([]*models.Mission, len(recs))
	for i, r := range recs {
		out[i] = r.Mission
	}
	return out
}

func encodeWaypoints(wps []models.Waypoint) ([]byte, error) {
	stored := make([]storedWaypoint, len(wps))
	for i, w := range wps {
		stored[i] = storedWaypoint{X: w.X, Y: w.Y, Z: w.Z, T: w.Timestamp.UnixNano()}
	}
	return msgpack.Marshal(stored)
}

func decodeWaypoints(blob []byte) ([]models.Waypoint, error) {
	var stored []storedWaypoint
	if err := msgpack.Unmarshal(blob, &stored); err != nil {
		return nil, err
	}
	wps := make([]models.Waypoint, len(stored))
	for i, w := range stored {
		wps[i] = models.NewWaypoint(w.X, w.Y, w.Z, time.Unix(0, w.T).UTC())
	}
	return wps, nil
}
