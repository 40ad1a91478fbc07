package main

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strings"
	"time"
)

// History keeps measurements of every run in a local sqlite database so runs
// stay comparable across time.
type History struct {
	db *sql.DB
}

type Measurement struct {
	Run         string
	Runner      string
	Dataset     string
	Name        string
	Measurement string
	Iterations  float64
	Value       float64
}

func OpenHistory(path string) (*History, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database %v: %w", path, err)
	}
	return &History{db: db}, nil
}

func (h *History) Init(meta map[string]any) error {
	_, err := h.db.Exec("CREATE TABLE IF NOT EXISTS parameters (name TEXT PRIMARY KEY, value)")
	if err != nil {
		return err
	}
	parameters := make([]any, 0)
	parameters = append(parameters, "time", time.Now().Format("2006-01-02 15:04:05"))
	for key, value := range meta {
		parameters = append(parameters, key, fmt.Sprintf("%v", value))
	}
	placeholders := strings.Join(slices.Repeat([]string{"(?, ?)"}, len(parameters)/2), ", ")
	_, err = h.db.Exec(
		fmt.Sprintf("INSERT INTO parameters VALUES %v ON CONFLICT DO NOTHING", placeholders),
		parameters...,
	)
	if err != nil {
		return err
	}
	_, err = h.db.Exec(`CREATE TABLE IF NOT EXISTS measurements (
		run TEXT,
		runner TEXT,
		dataset TEXT,
		name TEXT,
		measurement TEXT,
		iterations REAL,
		value REAL,
		PRIMARY KEY (run, runner, dataset, name, measurement)
	)`)
	if err != nil {
		return err
	}
	Logger.Infof("initialized history database with meta %v", meta)
	return nil
}

func (h *History) Parameters() (map[string]string, error) {
	rows, err := h.db.Query("SELECT name, value FROM parameters")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	results := make(map[string]string)
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, err
		}
		results[name] = value
	}
	return results, rows.Err()
}

// WrittenQueries reports which query names already have measurements for the
// given run and runner, so an interrupted run can be resumed.
func (h *History) WrittenQueries(run string, runner string, dataset string) (map[string]bool, error) {
	rows, err := h.db.Query(
		"SELECT name FROM measurements WHERE run = ? AND runner = ? AND dataset = ?",
		run, runner, dataset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	results := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		results[name] = true
	}
	return results, rows.Err()
}

func (h *History) Append(measurements []Measurement) error {
	tx, err := h.db.BeginTx(context.Background(), nil)
	if err != nil {
		return err
	}
	for _, m := range measurements {
		_, err = tx.Exec(
			"INSERT INTO measurements VALUES (?, ?, ?, ?, ?, ?, ?) ON CONFLICT DO NOTHING",
			m.Run, m.Runner, m.Dataset, m.Name, m.Measurement, m.Iterations, m.Value,
		)
		if err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (h *History) Close() error { return h.db.Close() }
