package recorder

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"StockWindow/internal/model"
)

var log = logrus.WithField("component", "recorder")

// SQLiteRecorder persists windows, predictions and failures to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Infof("sqlite recorder opened: %s", dbPath)
	return r, nil
}

// DB returns the underlying database handle.
func (r *SQLiteRecorder) DB() *sql.DB { return r.db }

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS windows (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp     INTEGER NOT NULL,
			exchange      TEXT NOT NULL,
			instrument    TEXT NOT NULL,
			start_date    TEXT NOT NULL,
			end_date      TEXT NOT NULL,
			window_len    INTEGER NOT NULL,
			mean          REAL,
			stddev        REAL,
			high          REAL,
			low           REAL,
			position      REAL,
			trailing_mean REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_windows_instrument ON windows(exchange, instrument, timestamp)`,

		`CREATE TABLE IF NOT EXISTS window_values (
			window_id INTEGER NOT NULL REFERENCES windows(id),
			day       INTEGER NOT NULL,
			date      TEXT NOT NULL,
			value     REAL NOT NULL,
			predicted INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (window_id, day)
		)`,

		`CREATE TABLE IF NOT EXISTS failures (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp  INTEGER NOT NULL,
			exchange   TEXT,
			instrument TEXT,
			kind       TEXT,
			message    TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_failures_ts ON failures(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordWindow stores a window, its values and the predicted values in one transaction.
func (r *SQLiteRecorder) RecordWindow(rec *WindowRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}

	s := rec.Summary
	res, err := tx.Exec(`INSERT INTO windows
		(timestamp, exchange, instrument, start_date, end_date, window_len,
		 mean, stddev, high, low, position, trailing_mean)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), rec.Exchange, rec.Instrument,
		model.FormatDate(rec.Window.Range.Start), model.FormatDate(rec.Window.Range.End), rec.Window.Len(),
		s.Mean, s.StdDev, s.High, s.Low, s.Position, s.TrailingMean,
	)
	if err != nil {
		tx.Rollback()
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		tx.Rollback()
		return err
	}

	stmt, err := tx.Prepare(`INSERT INTO window_values (window_id, day, date, value, predicted) VALUES (?,?,?,?,?)`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	extended := rec.Window.Extend(rec.Prediction)
	for i, p := range extended.Points() {
		predicted := 0
		if i >= rec.Window.Len() {
			predicted = 1
		}
		if _, err := stmt.Exec(id, i, model.FormatDate(p.Date), p.Value, predicted); err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

func (r *SQLiteRecorder) RecordFailure(evt *FailureEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO failures
		(timestamp, exchange, instrument, kind, message)
		VALUES (?,?,?,?,?)`,
		time.Now().Unix(), evt.Exchange, evt.Instrument, evt.Kind, evt.Message,
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	log.Info("closing sqlite recorder")
	return r.db.Close()
}
