// Package store provides a SQLite-backed implementation of the storage
// ports for single-host deployments of the reference CLI.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/branchnm/cutplan/core/model"
	"github.com/branchnm/cutplan/core/storage"
)

// SQLiteStore persists jobs and customers to a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database at path and ensures the
// schema. The UNIQUE(customer_id, date) index provides the duplicate-key
// semantics the lifecycle service relies on.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	schema := `CREATE TABLE IF NOT EXISTS jobs (
        id TEXT PRIMARY KEY,
        customer_id TEXT NOT NULL,
        date TEXT NOT NULL,
        status TEXT NOT NULL,
        sort_order INTEGER,
        scheduled_time TEXT,
        start_time INTEGER,
        end_time INTEGER,
        total_time INTEGER NOT NULL DEFAULT 0,
        drive_time INTEGER NOT NULL DEFAULT 0,
        notes TEXT NOT NULL DEFAULT '',
        UNIQUE(customer_id, date)
    );
    CREATE TABLE IF NOT EXISTS customers (
        id TEXT PRIMARY KEY,
        name TEXT NOT NULL DEFAULT '',
        address TEXT NOT NULL,
        price REAL NOT NULL DEFAULT 0,
        square_footage INTEGER NOT NULL DEFAULT 0,
        frequency TEXT NOT NULL,
        next_cut_date TEXT NOT NULL DEFAULT '',
        last_cut_date TEXT NOT NULL DEFAULT '',
        is_hilly INTEGER NOT NULL DEFAULT 0,
        has_fencing INTEGER NOT NULL DEFAULT 0,
        has_obstacles INTEGER NOT NULL DEFAULT 0
    );`
	if _, err := db.Exec(schema); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
		}
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error { return s.db.Close() }

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// FetchJobs returns every stored job.
func (s *SQLiteStore) FetchJobs(ctx context.Context) ([]model.Job, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, customer_id, date, status,
        sort_order, scheduled_time, start_time, end_time, total_time, drive_time, notes
        FROM jobs`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []model.Job
	for rows.Next() {
		var j model.Job
		var order sql.NullInt64
		var schedTime sql.NullString
		var start, end sql.NullInt64
		if err := rows.Scan(&j.ID, &j.CustomerID, &j.Date, &j.Status,
			&order, &schedTime, &start, &end, &j.TotalTime, &j.DriveTime, &j.Notes); err != nil {
			return nil, err
		}
		if order.Valid {
			j.Order = model.IntPtr(int(order.Int64))
		}
		if schedTime.Valid {
			j.ScheduledTime = model.StringPtr(schedTime.String)
		}
		if start.Valid {
			t := time.Unix(start.Int64, 0)
			j.StartTime = &t
		}
		if end.Valid {
			t := time.Unix(end.Int64, 0)
			j.EndTime = &t
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

// AddJob inserts a new job, assigning an ID when absent.
func (s *SQLiteStore) AddJob(ctx context.Context, job model.Job) (model.Job, error) {
	if err := job.Validate(); err != nil {
		return model.Job{}, err
	}
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO jobs
        (id, customer_id, date, status, sort_order, scheduled_time, start_time, end_time, total_time, drive_time, notes)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID, job.CustomerID, job.Date, job.Status,
		nullableInt(job.Order), nullableString(job.ScheduledTime),
		nullableTime(job.StartTime), nullableTime(job.EndTime),
		job.TotalTime, job.DriveTime, job.Notes)
	if isUniqueViolation(err) {
		return model.Job{}, fmt.Errorf("add job for %s on %s: %w", job.CustomerID, job.Date, storage.ErrDuplicateKey)
	}
	if err != nil {
		return model.Job{}, err
	}
	return job, nil
}

// UpdateJob replaces the stored job, last write wins.
func (s *SQLiteStore) UpdateJob(ctx context.Context, job model.Job) (model.Job, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE jobs SET customer_id=?, date=?, status=?,
        sort_order=?, scheduled_time=?, start_time=?, end_time=?, total_time=?, drive_time=?, notes=?
        WHERE id=?`,
		job.CustomerID, job.Date, job.Status,
		nullableInt(job.Order), nullableString(job.ScheduledTime),
		nullableTime(job.StartTime), nullableTime(job.EndTime),
		job.TotalTime, job.DriveTime, job.Notes, job.ID)
	if err != nil {
		return model.Job{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return model.Job{}, fmt.Errorf("update job %s: %w", job.ID, storage.ErrNotFound)
	}
	return job, nil
}

// FetchCustomers returns every stored customer.
func (s *SQLiteStore) FetchCustomers(ctx context.Context) ([]model.Customer, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, address, price, square_footage,
        frequency, next_cut_date, last_cut_date, is_hilly, has_fencing, has_obstacles
        FROM customers`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []model.Customer
	for rows.Next() {
		var c model.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Address, &c.Price, &c.SquareFootage,
			&c.Frequency, &c.NextCutDate, &c.LastCutDate, &c.IsHilly, &c.HasFencing, &c.HasObstacles); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// AddCustomer inserts a new customer, assigning an ID when absent.
func (s *SQLiteStore) AddCustomer(ctx context.Context, c model.Customer) (model.Customer, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if err := c.Validate(); err != nil {
		return model.Customer{}, err
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO customers
        (id, name, address, price, square_footage, frequency, next_cut_date, last_cut_date, is_hilly, has_fencing, has_obstacles)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Address, c.Price, c.SquareFootage,
		c.Frequency, c.NextCutDate, c.LastCutDate, c.IsHilly, c.HasFencing, c.HasObstacles)
	if err != nil {
		return model.Customer{}, err
	}
	return c, nil
}

// UpdateCustomer replaces the stored customer, last write wins.
func (s *SQLiteStore) UpdateCustomer(ctx context.Context, c model.Customer) (model.Customer, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE customers SET name=?, address=?, price=?,
        square_footage=?, frequency=?, next_cut_date=?, last_cut_date=?, is_hilly=?, has_fencing=?, has_obstacles=?
        WHERE id=?`,
		c.Name, c.Address, c.Price, c.SquareFootage,
		c.Frequency, c.NextCutDate, c.LastCutDate, c.IsHilly, c.HasFencing, c.HasObstacles, c.ID)
	if err != nil {
		return model.Customer{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return model.Customer{}, fmt.Errorf("update customer %s: %w", c.ID, storage.ErrNotFound)
	}
	return c, nil
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullableString(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullableTime(v *time.Time) any {
	if v == nil {
		return nil
	}
	return v.Unix()
}
