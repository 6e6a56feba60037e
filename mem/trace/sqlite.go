package trace

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/structs"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"

	"github.com/rs/xid"

	"github.com/joshuapare/memsim/mem/partition"
)

const (
	eventsTable     = "events"
	partitionsTable = "partitions"
)

// partitionRow is one partition of the settled table after an event.
type partitionRow struct {
	Session  string
	Seq      int
	Position int
	ID       uint64
	Size     int
	Free     bool
	Owner    string
}

// SQLiteRecorder writes events to a SQLite database.
type SQLiteRecorder struct {
	db   *sql.DB
	path string

	insertEvent     *sql.Stmt
	insertPartition *sql.Stmt
}

// DefaultPath returns a fresh database file name in the working directory.
func DefaultPath() string {
	return "memsim_trace_" + xid.New().String() + ".sqlite3"
}

// OpenSQLite opens (or creates) the database at path and prepares the
// schema. An empty path uses DefaultPath.
func OpenSQLite(ctx context.Context, path string) (*SQLiteRecorder, error) {
	if path == "" {
		path = DefaultPath()
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("trace: open %s: %w", path, err)
	}
	// A single writer keeps statements and transactions on one connection.
	db.SetMaxOpenConns(1)

	r := &SQLiteRecorder{db: db, path: path}
	if err := r.init(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return r, nil
}

// Path returns the database file path.
func (r *SQLiteRecorder) Path() string { return r.path }

func (r *SQLiteRecorder) init(ctx context.Context) error {
	eventCols := structs.Names(Event{})
	partCols := structs.Names(partitionRow{})

	for _, stmt := range []string{
		createTableSQL(eventsTable, eventCols),
		createTableSQL(partitionsTable, partCols),
	} {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("trace: create schema: %w", err)
		}
	}

	var err error
	r.insertEvent, err = r.db.PrepareContext(ctx, insertSQL(eventsTable, eventCols))
	if err != nil {
		return fmt.Errorf("trace: prepare: %w", err)
	}
	r.insertPartition, err = r.db.PrepareContext(ctx, insertSQL(partitionsTable, partCols))
	if err != nil {
		return fmt.Errorf("trace: prepare: %w", err)
	}
	return nil
}

func createTableSQL(table string, cols []string) string {
	return `CREATE TABLE IF NOT EXISTS ` + table +
		` (` + "\n\t" + strings.Join(cols, ", \n\t") + "\n" + `);`
}

func insertSQL(table string, cols []string) string {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	return `INSERT INTO ` + table + ` (` + strings.Join(cols, ", ") +
		`) VALUES (` + placeholders + `)`
}

// Record writes the event and its settled table in one transaction.
func (r *SQLiteRecorder) Record(ctx context.Context, ev Event) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("trace: begin: %w", err)
	}

	if _, err := tx.StmtContext(ctx, r.insertEvent).ExecContext(ctx, structs.Values(ev)...); err != nil {
		return errors.Join(fmt.Errorf("trace: insert event %d: %w", ev.Seq, err), tx.Rollback())
	}

	insert := tx.StmtContext(ctx, r.insertPartition)
	for i, e := range ev.Table {
		row := partitionRow{
			Session:  ev.Session,
			Seq:      ev.Seq,
			Position: i,
			ID:       uint64(e.ID),
			Size:     e.Size,
			Free:     e.Free,
			Owner:    e.Owner,
		}
		if _, err := insert.ExecContext(ctx, structs.Values(row)...); err != nil {
			return errors.Join(fmt.Errorf("trace: insert partition row: %w", err), tx.Rollback())
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("trace: commit: %w", err)
	}
	return nil
}

// Close releases the prepared statements and the database.
func (r *SQLiteRecorder) Close() error {
	var errs []error
	for _, s := range []*sql.Stmt{r.insertEvent, r.insertPartition} {
		if s != nil {
			errs = append(errs, s.Close())
		}
	}
	errs = append(errs, r.db.Close())
	return errors.Join(errs...)
}

// Load reads back every event stored in the database at path, in session
// and sequence order, with their settled tables.
func Load(ctx context.Context, path string) ([]Event, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("trace: %w", err)
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("trace: open %s: %w", path, err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `SELECT `+strings.Join(structs.Names(Event{}), ", ")+
		` FROM `+eventsTable+` ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("trace: query events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var ev Event
		if err := rows.Scan(
			&ev.Session, &ev.Seq, &ev.Op, &ev.Process, &ev.Size, &ev.PartitionID,
			&ev.Outcome, &ev.Detail, &ev.Compacted, &ev.TotalFree, &ev.Partitions,
		); err != nil {
			return nil, fmt.Errorf("trace: scan event: %w", err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("trace: read events: %w", err)
	}

	for i := range events {
		if err := loadTable(ctx, db, &events[i]); err != nil {
			return nil, err
		}
	}
	return events, nil
}

func loadTable(ctx context.Context, db *sql.DB, ev *Event) error {
	rows, err := db.QueryContext(ctx,
		`SELECT ID, Size, Free, Owner FROM `+partitionsTable+
			` WHERE Session = ? AND Seq = ? ORDER BY Position`, ev.Session, ev.Seq)
	if err != nil {
		return fmt.Errorf("trace: query partitions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e partition.Entry
		if err := rows.Scan(&e.ID, &e.Size, &e.Free, &e.Owner); err != nil {
			return fmt.Errorf("trace: scan partition: %w", err)
		}
		ev.Table = append(ev.Table, e)
	}
	return rows.Err()
}
