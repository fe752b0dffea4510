package reminder

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLStore provides SQLite-backed storage for reminders.
type SQLStore struct {
	db *sql.DB
}

var _ Store = (*SQLStore)(nil)

const reminderColumns = `id, name, type, certifier, handler, period, start_date, end_date,
	advance_days, actual_reminder_date, auto_renew, renew_period`

// NewStore opens (or creates) the SQLite database at dbPath and
// ensures the reminders table exists.
func NewStore(dbPath string) (*SQLStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection keeps ":memory:" databases intact and serializes writers.
	db.SetMaxOpenConns(1)

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLStore{db: db}, nil
}

func migrate(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS reminders (
			id                   INTEGER PRIMARY KEY AUTOINCREMENT,
			name                 TEXT    NOT NULL,
			type                 TEXT    NOT NULL DEFAULT '',
			certifier            TEXT,
			handler              TEXT,
			period               INTEGER,
			start_date           TEXT,
			end_date             TEXT    NOT NULL,
			advance_days         INTEGER NOT NULL DEFAULT 0,
			actual_reminder_date TEXT,
			auto_renew           BOOLEAN NOT NULL DEFAULT 0,
			renew_period         INTEGER
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	// Databases created before auto-renewal existed lack the last two columns.
	cols, err := tableColumns(db, "reminders")
	if err != nil {
		return err
	}
	if !cols["auto_renew"] {
		if _, err := db.Exec(`ALTER TABLE reminders ADD COLUMN auto_renew BOOLEAN NOT NULL DEFAULT 0`); err != nil {
			return fmt.Errorf("failed to add auto_renew column: %w", err)
		}
	}
	if !cols["renew_period"] {
		if _, err := db.Exec(`ALTER TABLE reminders ADD COLUMN renew_period INTEGER`); err != nil {
			return fmt.Errorf("failed to add renew_period column: %w", err)
		}
	}

	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_reminders_actual_date ON reminders (actual_reminder_date)`); err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	return nil
}

func tableColumns(db *sql.DB, table string) (map[string]bool, error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return nil, fmt.Errorf("failed to inspect %s: %w", table, err)
	}
	defer rows.Close()

	cols := make(map[string]bool)
	for rows.Next() {
		var (
			cid       int
			name      string
			ctype     string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notNull, &dfltValue, &pk); err != nil {
			return nil, fmt.Errorf("failed to scan column info: %w", err)
		}
		cols[name] = true
	}
	return cols, rows.Err()
}

// Close closes the underlying database connection.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// Ping checks that the database is reachable.
func (s *SQLStore) Ping(ctx context.Context) error {
	return storeErr("ping", s.db.PingContext(ctx))
}

// Create inserts a new reminder and returns it with the assigned ID.
// Derived fields are recomputed before writing.
func (s *SQLStore) Create(ctx context.Context, d Draft) (*Reminder, error) {
	d.Normalize()
	if err := d.Validate(); err != nil {
		return nil, err
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO reminders (name, type, certifier, handler, period, start_date, end_date,
			advance_days, actual_reminder_date, auto_renew, renew_period)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, draftArgs(d)...)
	if err != nil {
		return nil, storeErr("create", fmt.Errorf("failed to insert reminder: %w", err))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, storeErr("create", fmt.Errorf("failed to get inserted ID: %w", err))
	}
	return &Reminder{ID: id, Draft: d}, nil
}

// List returns all reminders ordered by their reminder date.
func (s *SQLStore) List(ctx context.Context) ([]Reminder, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+reminderColumns+`
		FROM reminders ORDER BY actual_reminder_date ASC, id ASC
	`)
	if err != nil {
		return nil, storeErr("list", fmt.Errorf("failed to list reminders: %w", err))
	}
	defer rows.Close()

	reminders, err := scanReminders(rows)
	if err != nil {
		return nil, storeErr("list", err)
	}
	return reminders, nil
}

// GetByID returns a single reminder by ID.
func (s *SQLStore) GetByID(ctx context.Context, id int64) (*Reminder, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+reminderColumns+` FROM reminders WHERE id = ?`, id)

	r, err := scanReminder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storeErr("get", fmt.Errorf("reminder %d: %w", id, ErrNotFound))
		}
		return nil, storeErr("get", fmt.Errorf("failed to get reminder: %w", err))
	}
	return r, nil
}

// Replace overwrites every field of reminder id with d.
func (s *SQLStore) Replace(ctx context.Context, id int64, d Draft) (*Reminder, error) {
	d.Normalize()
	if err := d.Validate(); err != nil {
		return nil, err
	}

	args := append(draftArgs(d), id)
	result, err := s.db.ExecContext(ctx, `
		UPDATE reminders SET
			name = ?, type = ?, certifier = ?, handler = ?, period = ?, start_date = ?, end_date = ?,
			advance_days = ?, actual_reminder_date = ?, auto_renew = ?, renew_period = ?
		WHERE id = ?
	`, args...)
	if err != nil {
		return nil, storeErr("replace", fmt.Errorf("failed to update reminder: %w", err))
	}

	n, _ := result.RowsAffected()
	if n == 0 {
		return nil, storeErr("replace", fmt.Errorf("reminder %d: %w", id, ErrNotFound))
	}
	return &Reminder{ID: id, Draft: d}, nil
}

// Delete removes a reminder by ID.
func (s *SQLStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM reminders WHERE id = ?`, id)
	if err != nil {
		return storeErr("delete", fmt.Errorf("failed to delete reminder: %w", err))
	}

	n, _ := result.RowsAffected()
	if n == 0 {
		return storeErr("delete", fmt.Errorf("reminder %d: %w", id, ErrNotFound))
	}
	return nil
}

func draftArgs(d Draft) []any {
	return []any{
		d.Name, d.Type, nullString(d.Certifier), nullString(d.Handler), nullInt(d.Period),
		d.StartDate, d.EndDate, d.AdvanceDays, d.ActualReminderDate,
		bool(d.AutoRenew), nullInt(d.RenewPeriod),
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(n int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(n), Valid: n != 0}
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanReminders reads multiple rows into a slice of Reminder.
func scanReminders(rows *sql.Rows) ([]Reminder, error) {
	reminders := []Reminder{}
	for rows.Next() {
		r, err := scanReminder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reminder: %w", err)
		}
		reminders = append(reminders, *r)
	}
	return reminders, rows.Err()
}

// scanReminder reads a single row into a Reminder.
func scanReminder(row rowScanner) (*Reminder, error) {
	var (
		r                  Reminder
		certifier, handler sql.NullString
		period, renew      sql.NullInt64
		autoRenew          sql.NullString
	)
	if err := row.Scan(&r.ID, &r.Name, &r.Type, &certifier, &handler, &period,
		&r.StartDate, &r.EndDate, &r.AdvanceDays, &r.ActualReminderDate,
		&autoRenew, &renew); err != nil {
		return nil, err
	}

	r.Certifier = certifier.String
	r.Handler = handler.String
	r.Period = int(period.Int64)
	r.RenewPeriod = int(renew.Int64)
	flag, err := parseFlag(autoRenew.String)
	if err != nil {
		return nil, err
	}
	r.AutoRenew = flag
	return &r, nil
}
