// ABOUTME: database/sql template store for SQLite (modernc, pure Go) and Postgres (pgx stdlib)
// ABOUTME: Partial updates run read-merge-write inside one transaction

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/mauromedda/contract-editor-go/internal/log"
	"github.com/mauromedda/contract-editor-go/internal/template"
	_ "modernc.org/sqlite"
)

var logger = log.For("store")

// Driver names accepted by Open.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// SQL is a template.Store backed by a relational database.
type SQL struct {
	db      *sql.DB
	dialect string
}

var _ template.Store = (*SQL)(nil)

// Open connects to the database, verifies it, and creates the schema.
// For sqlite the DSN is a file path whose directory is created on demand.
func Open(ctx context.Context, driver, dsn string) (*SQL, error) {
	var sqlDriver string
	switch driver {
	case DriverSQLite:
		sqlDriver = "sqlite"
		if dir := filepath.Dir(dsn); dsn != ":memory:" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create db dir: %w", err)
			}
		}
	case DriverPostgres, "pgx":
		driver, sqlDriver = DriverPostgres, "pgx"
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}

	db, err := sql.Open(sqlDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if driver == DriverSQLite {
		// One writer avoids SQLITE_BUSY between the autosave and CLI paths.
		db.SetMaxOpenConns(1)
	} else {
		db.SetConnMaxIdleTime(5 * time.Minute)
		db.SetConnMaxLifetime(30 * time.Minute)
		db.SetMaxIdleConns(4)
		db.SetMaxOpenConns(8)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	s := &SQL{db: db, dialect: driver}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQL) migrate(ctx context.Context) error {
	idCol := "id INTEGER PRIMARY KEY AUTOINCREMENT"
	if s.dialect == DriverPostgres {
		idCol = "id BIGSERIAL PRIMARY KEY"
	}
	ddl := `CREATE TABLE IF NOT EXISTS templates (
		` + idCol + `,
		name TEXT NOT NULL DEFAULT '',
		content TEXT NOT NULL DEFAULT '',
		client_name TEXT NOT NULL DEFAULT '',
		contract_date TEXT NOT NULL DEFAULT '',
		contract_type TEXT NOT NULL DEFAULT '',
		attachment TEXT NOT NULL DEFAULT 'null',
		tags TEXT NOT NULL DEFAULT '[]',
		is_active BOOLEAN NOT NULL DEFAULT FALSE,
		fields TEXT NOT NULL DEFAULT '{}',
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// rebind rewrites ? placeholders to $n for Postgres.
func (s *SQL) rebind(q string) string {
	if s.dialect != DriverPostgres {
		return q
	}
	var sb strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

const selectCols = `id, name, content, client_name, contract_date, contract_type, attachment, tags, is_active, fields`

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(row scanner) (template.Document, error) {
	var (
		d                    template.Document
		attach, tags, fields string
	)
	if err := row.Scan(&d.ID, &d.Name, &d.Content, &d.ClientName, &d.ContractDate,
		&d.ContractType, &attach, &tags, &d.IsActive, &fields); err != nil {
		return template.Document{}, err
	}
	var err error
	if d.Attachments, err = decodeAttachment(attach); err != nil {
		return template.Document{}, err
	}
	if d.Tags, err = decodeTags(tags); err != nil {
		return template.Document{}, err
	}
	if d.Fields, err = decodeFields(fields); err != nil {
		return template.Document{}, err
	}
	return d, nil
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *SQL) fetch(ctx context.Context, q querier, id int64) (template.Document, error) {
	row := q.QueryRowContext(ctx, s.rebind(`SELECT `+selectCols+` FROM templates WHERE id = ?`), id)
	d, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return template.Document{}, fmt.Errorf("fetch %d: %w", id, template.ErrNotFound)
	}
	if err != nil {
		return template.Document{}, fmt.Errorf("fetch %d: %w", id, err)
	}
	return d, nil
}

// Fetch returns template id.
func (s *SQL) Fetch(ctx context.Context, id int64) (template.Document, error) {
	return s.fetch(ctx, s.db, id)
}

// Persist merges the changed fields of u into template id.
func (s *SQL) Persist(ctx context.Context, id int64, u template.Update) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("persist %d: begin: %w", id, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	cur, err := s.fetch(ctx, tx, id)
	if err != nil {
		return err
	}
	d := u.Apply(cur)
	args, err := columnArgs(d)
	if err != nil {
		return err
	}
	q := s.rebind(`UPDATE templates SET name = ?, content = ?, client_name = ?, contract_date = ?,
		contract_type = ?, attachment = ?, tags = ?, is_active = ?, fields = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`)
	if _, err = tx.ExecContext(ctx, q, append(args, id)...); err != nil {
		return fmt.Errorf("persist %d: %w", id, err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("persist %d: commit: %w", id, err)
	}
	logger.Debug("persisted %d fields=%s", id, u.Changed)
	return nil
}

func columnArgs(d template.Document) ([]any, error) {
	attach, err := encodeAttachment(d.Attachments)
	if err != nil {
		return nil, err
	}
	tags, err := encodeTags(template.NormalizeTags(d.Tags))
	if err != nil {
		return nil, err
	}
	fields, err := encodeFields(d.Fields)
	if err != nil {
		return nil, err
	}
	return []any{d.Name, d.Content, d.ClientName, d.ContractDate, d.ContractType,
		attach, tags, d.IsActive, fields}, nil
}

// List returns every template ordered by id.
func (s *SQL) List(ctx context.Context) ([]template.Document, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+selectCols+` FROM templates ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	defer rows.Close()

	var out []template.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("list: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	return out, nil
}

// Create inserts an empty inactive template called name.
func (s *SQL) Create(ctx context.Context, name string) (template.Document, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return template.Document{}, ErrEmptyName
	}
	return s.insert(ctx, template.Document{Name: name, Tags: []string{}, Fields: map[string]any{}})
}

func (s *SQL) insert(ctx context.Context, d template.Document) (template.Document, error) {
	args, err := columnArgs(d)
	if err != nil {
		return template.Document{}, err
	}
	q := s.rebind(`INSERT INTO templates (name, content, client_name, contract_date, contract_type,
		attachment, tags, is_active, fields) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`)
	if err := s.db.QueryRowContext(ctx, q, args...).Scan(&d.ID); err != nil {
		return template.Document{}, fmt.Errorf("create: %w", err)
	}
	return d, nil
}

// Delete removes template id.
func (s *SQL) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM templates WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("delete %d: %w", id, template.ErrNotFound)
	}
	return nil
}

// SeedIfEmpty inserts docs when the table has no rows. Seeded ids are
// assigned by the database.
func (s *SQL) SeedIfEmpty(ctx context.Context, docs []template.Document) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM templates`).Scan(&n); err != nil {
		return 0, fmt.Errorf("seed: %w", err)
	}
	if n > 0 {
		return 0, nil
	}
	for _, d := range docs {
		if _, err := s.insert(ctx, d); err != nil {
			return 0, fmt.Errorf("seed: %w", err)
		}
	}
	return len(docs), nil
}

// Close releases the connection pool.
func (s *SQL) Close() error {
	return s.db.Close()
}
