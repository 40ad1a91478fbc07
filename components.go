package main

import (
	"context"
	"slices"
)

type Query struct {
	Name      string
	SQL       string
	Overrides map[string]string
	Engines   []string
}

// ForEngine resolves the SQL text for the given engine. The second return
// value is false when the query is not offered for that engine at all.
func (q Query) ForEngine(engine string) (string, bool) {
	if len(q.Engines) > 0 && !slices.Contains(q.Engines, engine) {
		return "", false
	}
	if sql, ok := q.Overrides[engine]; ok {
		return sql, true
	}
	return q.SQL, true
}

type Dataset interface {
	Name() string
	Table() string
	Path() string
	Prepare(ctx context.Context) error
	Queries() []Query
}

type LoadResult struct {
	Seconds float64 `json:"seconds"`
	Rows    int64   `json:"rows"`
}

type Engine interface {
	Name() string
	Open(cfg Config, dataset Dataset) (Session, error)
}

type Session interface {
	Name() string
	Load(ctx context.Context, dataset Dataset) (LoadResult, error)
	Run(ctx context.Context, query string) (int64, error)
	MemoryInfo(ctx context.Context) (map[string]string, error)
	Close() error
}
