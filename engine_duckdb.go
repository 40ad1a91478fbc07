package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	_ "github.com/marcboeker/go-duckdb"
)

type EngineDuckdb struct{}

type SessionDuckdb struct {
	db      *sql.DB
	dbPath  string
	tempDir string
}

func (e *EngineDuckdb) Name() string { return "duckdb" }

func (e *EngineDuckdb) Open(cfg Config, dataset Dataset) (Session, error) {
	if err := os.MkdirAll(cfg.DbDir, 0o755); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.TempDir, 0o755); err != nil {
		return nil, err
	}
	base := strings.TrimSuffix(filepath.Base(dataset.Path()), filepath.Ext(dataset.Path()))
	dbPath := path.Join(cfg.DbDir, fmt.Sprintf("taxi_data_%v.duckdb", base))
	if _, err := os.Stat(dbPath); err == nil {
		Logger.Infof("found existing duckdb database at %v", dbPath)
	} else {
		Logger.Infof("creating new duckdb database at %v", dbPath)
	}

	db, err := sql.Open("duckdb", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb database %v: %w", dbPath, err)
	}
	if _, err := db.Exec(fmt.Sprintf("SET temp_directory='%v'", cfg.TempDir)); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set temp_directory: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf("SET memory_limit='%v'", cfg.MemoryLimit)); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set memory_limit '%v': %w", cfg.MemoryLimit, err)
	}
	Logger.Infof("opened duckdb session at %v with memory limit %v", dbPath, cfg.MemoryLimit)
	return &SessionDuckdb{db: db, dbPath: dbPath, tempDir: cfg.TempDir}, nil
}

func (s *SessionDuckdb) Name() string { return "duckdb" }

func (s *SessionDuckdb) Load(ctx context.Context, dataset Dataset) (LoadResult, error) {
	table := dataset.Table()
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %v", table)); err != nil {
		return LoadResult{}, fmt.Errorf("failed to drop existing table %v: %w", table, err)
	}

	source := strings.ReplaceAll(dataset.Path(), "'", "''")
	var load string
	switch filepath.Ext(dataset.Path()) {
	case ".parquet":
		load = fmt.Sprintf("CREATE TABLE %v AS SELECT * FROM read_parquet('%v')", table, source)
	default:
		load = fmt.Sprintf("CREATE TABLE %v AS SELECT * FROM read_csv_auto('%v', SAMPLE_SIZE=100000)", table, source)
	}
	if _, err := s.db.ExecContext(ctx, load); err != nil {
		return LoadResult{}, fmt.Errorf("failed to load %v into %v: %w", dataset.Path(), table, err)
	}

	var rows int64
	err := s.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(1) FROM %v", table)).Scan(&rows)
	if err != nil {
		return LoadResult{}, fmt.Errorf("failed to count loaded rows: %w", err)
	}
	return LoadResult{Rows: rows}, nil
}

func (s *SessionDuckdb) Run(ctx context.Context, query string) (int64, error) {
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

func (s *SessionDuckdb) MemoryInfo(ctx context.Context) (map[string]string, error) {
	info := make(map[string]string)
	var limit string
	err := s.db.QueryRowContext(ctx, "SELECT current_setting('memory_limit')").Scan(&limit)
	if err != nil {
		return nil, err
	}
	info["memory_limit"] = limit

	rows, err := s.db.QueryContext(ctx, "PRAGMA database_size")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		values := make([]any, len(columns))
		for i := range values {
			values[i] = new(sql.NullString)
		}
		if err := rows.Scan(values...); err != nil {
			return nil, err
		}
		for i, column := range columns {
			if value := values[i].(*sql.NullString); value.Valid {
				info[column] = value.String
			}
		}
	}
	return info, rows.Err()
}

func (s *SessionDuckdb) Close() error { return s.db.Close() }
