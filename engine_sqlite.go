package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// Column affinities for the yellow taxi CSV. Unknown columns fall back to
// TEXT; sqlite coerces inserted strings through the declared affinity.
var taxiColumnTypes = map[string]string{
	"VendorID":              "INTEGER",
	"tpep_pickup_datetime":  "TEXT",
	"tpep_dropoff_datetime": "TEXT",
	"passenger_count":       "INTEGER",
	"trip_distance":         "REAL",
	"pickup_longitude":      "REAL",
	"pickup_latitude":       "REAL",
	"RatecodeID":            "INTEGER",
	"store_and_fwd_flag":    "TEXT",
	"dropoff_longitude":     "REAL",
	"dropoff_latitude":      "REAL",
	"payment_type":          "INTEGER",
	"fare_amount":           "REAL",
	"extra":                 "REAL",
	"mta_tax":               "REAL",
	"tip_amount":            "REAL",
	"tolls_amount":          "REAL",
	"improvement_surcharge": "REAL",
	"total_amount":          "REAL",
}

const sqliteInsertBatch = 50000

type EngineSqlite struct{}

type SessionSqlite struct {
	db     *sql.DB
	dbPath string
}

func (e *EngineSqlite) Name() string { return "sqlite3" }

func (e *EngineSqlite) Open(cfg Config, dataset Dataset) (Session, error) {
	if err := os.MkdirAll(cfg.DbDir, 0o755); err != nil {
		return nil, err
	}
	base := strings.TrimSuffix(filepath.Base(dataset.Path()), filepath.Ext(dataset.Path()))
	dbPath := path.Join(cfg.DbDir, fmt.Sprintf("taxi_data_%v.sqlite", base))
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database %v: %w", dbPath, err)
	}
	Logger.Infof("opened sqlite session at %v", dbPath)
	return &SessionSqlite{db: db, dbPath: dbPath}, nil
}

func (s *SessionSqlite) Name() string { return "sqlite3" }

func (s *SessionSqlite) Load(ctx context.Context, dataset Dataset) (LoadResult, error) {
	file, err := os.Open(dataset.Path())
	if err != nil {
		return LoadResult{}, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.ReuseRecord = true
	header, err := reader.Read()
	if err != nil {
		return LoadResult{}, fmt.Errorf("failed to read csv header from %v: %w", dataset.Path(), err)
	}
	columns := make([]string, len(header))
	for i, name := range header {
		columns[i] = strings.TrimSpace(name)
	}

	table := dataset.Table()
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %v", table)); err != nil {
		return LoadResult{}, fmt.Errorf("failed to drop existing table %v: %w", table, err)
	}
	definitions := make([]string, len(columns))
	for i, column := range columns {
		affinity, ok := taxiColumnTypes[column]
		if !ok {
			affinity = "TEXT"
		}
		definitions[i] = fmt.Sprintf("%q %v", column, affinity)
	}
	create := fmt.Sprintf("CREATE TABLE %v (%v)", table, strings.Join(definitions, ", "))
	if _, err := s.db.ExecContext(ctx, create); err != nil {
		return LoadResult{}, fmt.Errorf("failed to create table %v: %w", table, err)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	insert := fmt.Sprintf("INSERT INTO %v VALUES (%v)", table, placeholders)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return LoadResult{}, err
	}
	statement, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		tx.Rollback()
		return LoadResult{}, err
	}

	var rows int64
	values := make([]any, len(columns))
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			statement.Close()
			tx.Rollback()
			return LoadResult{}, fmt.Errorf("failed to read csv record #%v: %w", rows+1, err)
		}
		for i := range columns {
			if i < len(record) && record[i] != "" {
				values[i] = record[i]
			} else {
				values[i] = nil
			}
		}
		if _, err := statement.ExecContext(ctx, values...); err != nil {
			statement.Close()
			tx.Rollback()
			return LoadResult{}, fmt.Errorf("failed to insert csv record #%v: %w", rows+1, err)
		}
		rows++
		if rows%sqliteInsertBatch == 0 {
			statement.Close()
			if err := tx.Commit(); err != nil {
				return LoadResult{}, err
			}
			Logger.Infof("loaded %v rows into sqlite table %v", rows, table)
			tx, err = s.db.BeginTx(ctx, nil)
			if err != nil {
				return LoadResult{}, err
			}
			statement, err = tx.PrepareContext(ctx, insert)
			if err != nil {
				tx.Rollback()
				return LoadResult{}, err
			}
		}
	}
	statement.Close()
	if err := tx.Commit(); err != nil {
		return LoadResult{}, err
	}
	return LoadResult{Rows: rows}, nil
}

func (s *SessionSqlite) Run(ctx context.Context, query string) (int64, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return 0, err
	}
	defer rows.Close()
	var count int64
	for rows.Next() {
		count++
	}
	return count, rows.Err()
}

func (s *SessionSqlite) MemoryInfo(ctx context.Context) (map[string]string, error) {
	info := make(map[string]string)
	var pages, pageSize int64
	if err := s.db.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pages); err != nil {
		return nil, err
	}
	if err := s.db.QueryRowContext(ctx, "PRAGMA page_size").Scan(&pageSize); err != nil {
		return nil, err
	}
	info["database_size"] = fmt.Sprintf("%v", pages*pageSize)
	return info, nil
}

func (s *SessionSqlite) Close() error { return s.db.Close() }
