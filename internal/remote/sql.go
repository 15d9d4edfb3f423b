package remote

import (
	"context"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/julianstephens/daylog/internal/logger"
	"github.com/julianstephens/daylog/internal/migration"
	"github.com/julianstephens/daylog/migrations"
)

// SQL is a Provider over a relational database. The same queries serve
// SQLite and PostgreSQL; placeholders are rebound per driver.
type SQL struct {
	db     *sqlx.DB
	ids    *idGenerator
	driver string
}

var _ Provider = (*SQL)(nil)

// OpenSQLite opens (or creates) a SQLite database and migrates it.
func OpenSQLite(path string) (*SQL, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One writer keeps SQLite from returning SQLITE_BUSY under concurrent dispatch.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	return newSQL(db, "sqlite")
}

func newSQL(db *sqlx.DB, dir string) (*SQL, error) {
	ids, err := newIDGenerator(1)
	if err != nil {
		db.Close()
		return nil, err
	}
	s := &SQL{db: db, ids: ids, driver: dir}
	if err := s.migrate(dir); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return s, nil
}

func (s *SQL) runner() (*migration.Runner, error) {
	sub, err := fs.Sub(migrations.FS, s.driver)
	if err != nil {
		return nil, fmt.Errorf("failed to access %s migrations: %w", s.driver, err)
	}
	return migration.NewRunner(s.db, sub), nil
}

func (s *SQL) migrate(dir string) error {
	r, err := s.runner()
	if err != nil {
		return err
	}
	_, err = r.ApplyMigrations(func(msg string) {
		logger.Debug(msg, "driver", dir)
	})
	return err
}

// SchemaVersion returns the applied and the latest known migration versions.
func (s *SQL) SchemaVersion() (current, latest int, err error) {
	r, err := s.runner()
	if err != nil {
		return 0, 0, err
	}
	if current, err = r.GetCurrentVersion(); err != nil {
		return 0, 0, err
	}
	if latest, err = r.GetLatestVersion(); err != nil {
		return 0, 0, err
	}
	return current, latest, nil
}

// Driver returns the database flavor, "sqlite" or "postgres".
func (s *SQL) Driver() string {
	return s.driver
}

// Ping checks the connection.
func (s *SQL) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQL) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQL) Select(ctx context.Context, c Collection, f Filter) ([]Row, error) {
	sch, err := schemaFor(c)
	if err != nil {
		return nil, err
	}
	where, args, err := buildWhere(c, sch, f)
	if err != nil {
		return nil, err
	}

	q := fmt.Sprintf("SELECT %s FROM %s%s ORDER BY %s",
		joinIdents(sch.columns), quoteIdent(string(c)), where, quoteIdent(sch.orderBy))
	rows, err := s.db.QueryxContext(ctx, s.db.Rebind(q), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select %s: %w", c, err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		r := Row{}
		if err := rows.MapScan(r); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", c, err)
		}
		out = append(out, normalize(r))
	}
	return out, rows.Err()
}

func (s *SQL) Insert(ctx context.Context, c Collection, row Row) (string, error) {
	sch, err := schemaFor(c)
	if err != nil {
		return "", err
	}
	row = row.Clone()
	var id string
	if sch.hasID {
		id = s.ids.next()
		row["id"] = id
	}
	cols, args, err := rowArgs(c, sch, row)
	if err != nil {
		return "", err
	}

	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(string(c)), joinIdents(cols), placeholders(len(cols)))
	if _, err := s.db.ExecContext(ctx, s.db.Rebind(q), args...); err != nil {
		return "", fmt.Errorf("failed to insert into %s: %w", c, err)
	}
	return id, nil
}

func (s *SQL) Update(ctx context.Context, c Collection, f Filter, patch Row) error {
	if len(f) == 0 {
		return ErrUnscopedWrite
	}
	sch, err := schemaFor(c)
	if err != nil {
		return err
	}
	cols, args, err := rowArgs(c, sch, patch)
	if err != nil {
		return err
	}
	if len(cols) == 0 {
		return nil
	}
	where, whereArgs, err := buildWhere(c, sch, f)
	if err != nil {
		return err
	}

	sets := make([]string, len(cols))
	for i, col := range cols {
		sets[i] = quoteIdent(col) + " = ?"
	}
	q := fmt.Sprintf("UPDATE %s SET %s%s", quoteIdent(string(c)), strings.Join(sets, ", "), where)
	if _, err := s.db.ExecContext(ctx, s.db.Rebind(q), append(args, whereArgs...)...); err != nil {
		return fmt.Errorf("failed to update %s: %w", c, err)
	}
	return nil
}

func (s *SQL) Delete(ctx context.Context, c Collection, f Filter) error {
	if len(f) == 0 {
		return ErrUnscopedWrite
	}
	sch, err := schemaFor(c)
	if err != nil {
		return err
	}
	where, args, err := buildWhere(c, sch, f)
	if err != nil {
		return err
	}

	q := fmt.Sprintf("DELETE FROM %s%s", quoteIdent(string(c)), where)
	if _, err := s.db.ExecContext(ctx, s.db.Rebind(q), args...); err != nil {
		return fmt.Errorf("failed to delete from %s: %w", c, err)
	}
	return nil
}

func (s *SQL) Upsert(ctx context.Context, c Collection, row Row, conflictKey []string) error {
	if len(conflictKey) == 0 {
		return ErrUnscopedWrite
	}
	sch, err := schemaFor(c)
	if err != nil {
		return err
	}
	if err := sch.checkColumns(c, conflictKey...); err != nil {
		return err
	}
	row = row.Clone()
	if sch.hasID && row.String("id") == "" {
		row["id"] = s.ids.next()
	}
	cols, args, err := rowArgs(c, sch, row)
	if err != nil {
		return err
	}

	var sets []string
	for _, col := range cols {
		if col == "id" || slices.Contains(conflictKey, col) {
			continue
		}
		sets = append(sets, fmt.Sprintf("%s = excluded.%s", quoteIdent(col), quoteIdent(col)))
	}
	action := "DO NOTHING"
	if len(sets) > 0 {
		action = "DO UPDATE SET " + strings.Join(sets, ", ")
	}

	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) %s",
		quoteIdent(string(c)), joinIdents(cols), placeholders(len(cols)), joinIdents(conflictKey), action)
	if _, err := s.db.ExecContext(ctx, s.db.Rebind(q), args...); err != nil {
		return fmt.Errorf("failed to upsert into %s: %w", c, err)
	}
	return nil
}

// rowArgs returns the row's columns in a stable order with their values.
func rowArgs(c Collection, sch schema, row Row) ([]string, []any, error) {
	cols := slices.Sorted(maps.Keys(row))
	if err := sch.checkColumns(c, cols...); err != nil {
		return nil, nil, err
	}
	args := make([]any, len(cols))
	for i, col := range cols {
		args[i] = row[col]
	}
	return cols, args, nil
}

func buildWhere(c Collection, sch schema, f Filter) (string, []any, error) {
	if len(f) == 0 {
		return "", nil, nil
	}
	if err := sch.checkColumns(c, f.Columns()...); err != nil {
		return "", nil, err
	}

	clauses := make([]string, 0, len(f))
	args := make([]any, 0, len(f))
	for _, cond := range f {
		col := quoteIdent(cond.Column)
		switch cond.Op {
		case OpEq:
			clauses = append(clauses, col+" = ?")
			args = append(args, cond.Value)
		case OpGte:
			clauses = append(clauses, col+" >= ?")
			args = append(args, cond.Value)
		case OpLte:
			clauses = append(clauses, col+" <= ?")
			args = append(args, cond.Value)
		case OpPrefix:
			clauses = append(clauses, col+` LIKE ? ESCAPE '\'`)
			args = append(args, escapeLike(text(cond.Value))+"%")
		default:
			return "", nil, fmt.Errorf("unsupported filter op %q", cond.Op)
		}
	}
	return " WHERE " + strings.Join(clauses, " AND "), args, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func quoteIdent(s string) string {
	return `"` + s + `"`
}

func joinIdents(cols []string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = quoteIdent(c)
	}
	return strings.Join(quoted, ", ")
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
