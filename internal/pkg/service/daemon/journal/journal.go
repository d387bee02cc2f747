// Package journal records every transmission attempt in a SQLite database,
// the control "journal" command queries it back.
package journal

import (
	"context"
	"database/sql"
	"os"
	"time"

	"github.com/c2h5oh/datasize"
	"github.com/jonboulle/clockwork"
	_ "github.com/mattn/go-sqlite3"

	"github.com/homewire/x10/internal/pkg/log"
	"github.com/homewire/x10/internal/pkg/utils/errors"
)

// TimeFormat of the persisted timestamps, UTC so the strings sort correctly.
const TimeFormat = "2006-01-02T15:04:05.000Z"

const DefaultQueryLimit = 100

const schema = `
CREATE TABLE IF NOT EXISTS records (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	time       TEXT    NOT NULL,
	unit       TEXT    NOT NULL DEFAULT '',
	house      TEXT    NOT NULL,
	number     INTEGER NOT NULL,
	action     TEXT    NOT NULL,
	multiplier INTEGER NOT NULL,
	origin     TEXT    NOT NULL,
	ok         INTEGER NOT NULL,
	error      TEXT    NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS records_time ON records (time);
CREATE INDEX IF NOT EXISTS records_unit ON records (unit);
`

// Record is one transmission attempt.
// Unit is empty and Number is zero for house wide commands.
type Record struct {
	ID         int64     `json:"id"`
	Time       time.Time `json:"time"`
	Unit       string    `json:"unit,omitempty"`
	House      string    `json:"house"`
	Number     int       `json:"number,omitempty"`
	Action     string    `json:"action"`
	Multiplier int       `json:"multiplier"`
	Origin     string    `json:"origin"`
	OK         bool      `json:"ok"`
	Error      string    `json:"error,omitempty"`
}

// Query bounds, zero values mean no bound.
type Query struct {
	Since time.Time
	Until time.Time
	Unit  string // slug or glob
	Limit int
}

type Journal struct {
	logger log.Logger
	clock  clockwork.Clock
	path   string
	db     *sql.DB
}

func New(logger log.Logger, clock clockwork.Clock, path string) (*Journal, error) {
	dsn := "file:" + path + "?_journal_mode=WAL&_busy_timeout=5000"
	if path == ":memory:" {
		dsn = ":memory:"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errors.PrefixErrorf(err, `cannot open the journal "%s"`, path)
	}

	// SQLite serializes writers anyway, one connection avoids lock errors
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, errors.PrefixErrorf(err, `cannot create the journal schema in "%s"`, path)
	}

	return &Journal{logger: logger, clock: clock, path: path, db: db}, nil
}

func (j *Journal) Close() error {
	return j.db.Close()
}

func (j *Journal) Append(ctx context.Context, record Record) error {
	at := record.Time
	if at.IsZero() {
		at = j.clock.Now()
	}

	_, err := j.db.ExecContext(
		ctx,
		`INSERT INTO records (time, unit, house, number, action, multiplier, origin, ok, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		at.UTC().Format(TimeFormat),
		record.Unit, record.House, record.Number, record.Action,
		record.Multiplier, record.Origin, record.OK, record.Error,
	)
	if err != nil {
		return errors.PrefixError(err, "cannot append to the journal")
	}
	return nil
}

// Records returns the matching records, the newest first.
func (j *Journal) Records(ctx context.Context, q Query) ([]Record, error) {
	where := "1=1"
	args := make([]any, 0)
	if !q.Since.IsZero() {
		where += " AND time >= ?"
		args = append(args, q.Since.UTC().Format(TimeFormat))
	}
	if !q.Until.IsZero() {
		where += " AND time <= ?"
		args = append(args, q.Until.UTC().Format(TimeFormat))
	}
	if q.Unit != "" {
		where += " AND unit GLOB ?"
		args = append(args, q.Unit)
	}

	limit := q.Limit
	if limit <= 0 {
		limit = DefaultQueryLimit
	}
	args = append(args, limit)

	rows, err := j.db.QueryContext(
		ctx,
		`SELECT id, time, unit, house, number, action, multiplier, origin, ok, error
		 FROM records WHERE `+where+` ORDER BY time DESC, id DESC LIMIT ?`,
		args...,
	)
	if err != nil {
		return nil, errors.PrefixError(err, "cannot query the journal")
	}
	defer rows.Close()

	out := make([]Record, 0)
	for rows.Next() {
		record := Record{}
		timeStr := ""
		err := rows.Scan(
			&record.ID, &timeStr, &record.Unit, &record.House, &record.Number,
			&record.Action, &record.Multiplier, &record.Origin, &record.OK, &record.Error,
		)
		if err != nil {
			return nil, errors.PrefixError(err, "cannot read a journal record")
		}
		record.Time, err = time.Parse(TimeFormat, timeStr)
		if err != nil {
			return nil, errors.PrefixErrorf(err, `invalid time "%s" in the journal`, timeStr)
		}
		out = append(out, record)
	}
	return out, rows.Err()
}

// Sweep deletes the records older than the retention and returns their count.
// Zero retention keeps everything.
func (j *Journal) Sweep(ctx context.Context, retention time.Duration) (int64, error) {
	if retention <= 0 {
		return 0, nil
	}

	cutoff := j.clock.Now().Add(-retention).UTC().Format(TimeFormat)
	result, err := j.db.ExecContext(ctx, `DELETE FROM records WHERE time < ?`, cutoff)
	if err != nil {
		return 0, errors.PrefixError(err, "cannot sweep the journal")
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		j.logger.Infof(`Journal sweep removed %d records older than "%s".`, removed, cutoff)
	}
	return removed, nil
}

// Size of the journal database file.
func (j *Journal) Size() (datasize.ByteSize, error) {
	if j.path == ":memory:" {
		return 0, nil
	}
	info, err := os.Stat(j.path)
	if err != nil {
		return 0, err
	}
	return datasize.ByteSize(info.Size()), nil
}
