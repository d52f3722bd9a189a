// Package journal mirrors call records into a SQLite database so a run can
// be inspected after the fact. The journal is a debugging artifact, not
// control state: it defaults to an in-memory database and only touches disk
// when the caller names a file.
package journal

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/uuidfreeze/uuidfreeze/internal/track"
)

//go:embed schema.sql
var schemaSQL string

// Journal is a SQLite-backed mirror of call records. It implements the
// registry's Recorder interface. Safe for concurrent use; the connection
// pool is capped at one writer.
type Journal struct {
	db     *sql.DB
	logger *slog.Logger
}

// Option configures a Journal.
type Option func(*Journal)

// WithLogger sets the logger used to report write failures. Recording is
// fire-and-forget, so failures surface in the log rather than the call path.
func WithLogger(l *slog.Logger) Option {
	return func(j *Journal) { j.logger = l }
}

// OpenMemory opens a process-private in-memory journal.
func OpenMemory(opts ...Option) (*Journal, error) {
	return Open(":memory:", opts...)
}

// Open creates or opens a journal database at the given path. The schema is
// applied on open; calling Open on an existing journal file appends to it.
func Open(path string, opts ...Option) (*Journal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect journal: %w", err)
	}

	// SQLite supports one writer at a time; a single pooled connection
	// avoids SQLITE_BUSY and keeps :memory: databases from fragmenting
	// into per-connection instances.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply journal schema: %w", err)
	}

	j := &Journal{db: db, logger: slog.Default()}
	for _, opt := range opts {
		opt(j)
	}
	return j, nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %q: %w", pragma, err)
		}
	}
	return nil
}

// Close closes the database connection.
func (j *Journal) Close() error {
	if j.db == nil {
		return nil
	}
	return j.db.Close()
}

// Record appends one call record. Failures are logged, not returned: the
// journal must never break a constructor call.
func (j *Journal) Record(channel string, rec track.Record) {
	ns := ""
	if rec.Namespace != uuid.Nil {
		ns = rec.Namespace.String()
	}
	_, err := j.db.Exec(
		`INSERT INTO calls (seq, channel, value, synthetic, version, module, file, line, function, namespace, name)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Seq, channel, rec.Value.String(), rec.Synthetic, rec.Version,
		rec.Module, rec.File, rec.Line, rec.Function, ns, rec.Name,
	)
	if err != nil {
		j.logger.Warn("journal write failed", "channel", channel, "seq", rec.Seq, "error", err)
	}
}

// Entry is one journaled call.
type Entry struct {
	Seq       int64
	Channel   string
	Value     uuid.UUID
	Synthetic bool
	Version   int
	Module    string
	File      string
	Line      int
	Function  string
	Namespace uuid.UUID
	Name      string
}

// Filter narrows journal queries. Zero values match everything.
type Filter struct {
	// Channel restricts to one channel name ("uuid4").
	Channel string

	// ModulePrefix restricts to calls whose caller package path starts
	// with the prefix.
	ModulePrefix string

	// SyntheticOnly keeps only substituted values.
	SyntheticOnly bool
}

// Calls returns journaled entries matching the filter, in sequence order.
func (j *Journal) Calls(ctx context.Context, f Filter) ([]Entry, error) {
	query, args := buildQuery(f)
	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var value, ns string
		if err := rows.Scan(&e.Seq, &e.Channel, &value, &e.Synthetic, &e.Version,
			&e.Module, &e.File, &e.Line, &e.Function, &ns, &e.Name); err != nil {
			return nil, fmt.Errorf("scan journal row: %w", err)
		}
		if e.Value, err = uuid.Parse(value); err != nil {
			return nil, fmt.Errorf("journal row %d: bad uuid %q: %w", e.Seq, value, err)
		}
		if ns != "" {
			if e.Namespace, err = uuid.Parse(ns); err != nil {
				return nil, fmt.Errorf("journal row %d: bad namespace %q: %w", e.Seq, ns, err)
			}
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Count returns the number of entries matching the filter.
func (j *Journal) Count(ctx context.Context, f Filter) (int, error) {
	query, args := buildQuery(f)
	query = strings.Replace(query, selectColumns, "SELECT COUNT(*)", 1)
	query = strings.TrimSuffix(query, " ORDER BY seq")

	var n int
	if err := j.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count journal: %w", err)
	}
	return n, nil
}

// Summary returns per-channel call counts.
func (j *Journal) Summary(ctx context.Context) (map[string]int, error) {
	rows, err := j.db.QueryContext(ctx, `SELECT channel, COUNT(*) FROM calls GROUP BY channel`)
	if err != nil {
		return nil, fmt.Errorf("summarize journal: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var ch string
		var n int
		if err := rows.Scan(&ch, &n); err != nil {
			return nil, fmt.Errorf("scan summary row: %w", err)
		}
		out[ch] = n
	}
	return out, rows.Err()
}

const selectColumns = `SELECT seq, channel, value, synthetic, version, module, file, line, function, namespace, name`

func buildQuery(f Filter) (string, []any) {
	var where []string
	var args []any
	if f.Channel != "" {
		where = append(where, "channel = ?")
		args = append(args, f.Channel)
	}
	if f.ModulePrefix != "" {
		// ESCAPE guards prefixes containing LIKE metacharacters.
		where = append(where, "module LIKE ? ESCAPE '\\'")
		args = append(args, likePrefix(f.ModulePrefix))
	}
	if f.SyntheticOnly {
		where = append(where, "synthetic = 1")
	}

	query := selectColumns + " FROM calls"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	return query + " ORDER BY seq", args
}

func likePrefix(prefix string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(prefix) + "%"
}
