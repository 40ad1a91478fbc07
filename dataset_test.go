package main

import (
	"context"
	"os"
	"path"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

var knownEngines = []string{"duckdb", "sqlite3"}

func TestTaxiQueriesWellFormed(t *testing.T) {
	dataset := DatasetTaxi{}
	queries := dataset.Queries()
	require.NotEmpty(t, queries)

	seen := make(map[string]bool)
	for _, query := range queries {
		require.NotEmpty(t, query.Name)
		require.False(t, seen[query.Name], "duplicate query name %v", query.Name)
		seen[query.Name] = true

		require.NotEmpty(t, strings.TrimSpace(query.SQL))
		require.Contains(t, query.SQL, dataset.Table())
		for engine, sql := range query.Overrides {
			require.Contains(t, knownEngines, engine)
			require.NotEmpty(t, strings.TrimSpace(sql))
			require.Contains(t, sql, dataset.Table())
		}
		for _, engine := range query.Engines {
			require.Contains(t, knownEngines, engine)
		}
	}
}

func TestQueryForEngine(t *testing.T) {
	query := Query{
		Name:      "q",
		SQL:       "default",
		Overrides: map[string]string{"sqlite3": "override"},
		Engines:   []string{"duckdb", "sqlite3"},
	}
	sql, ok := query.ForEngine("duckdb")
	require.True(t, ok)
	require.Equal(t, "default", sql)

	sql, ok = query.ForEngine("sqlite3")
	require.True(t, ok)
	require.Equal(t, "override", sql)

	_, ok = query.ForEngine("polars")
	require.False(t, ok)
}

func TestTaxiPrepareExisting(t *testing.T) {
	file, err := os.CreateTemp("", "test-taxi-*.csv")
	require.Nil(t, err)
	defer os.Remove(file.Name())
	require.Nil(t, file.Close())

	dataset := DatasetTaxi{File: file.Name()}
	require.Nil(t, dataset.Prepare(context.Background()))
}

func TestTaxiPrepareMissingWithoutUrl(t *testing.T) {
	dataset := DatasetTaxi{File: path.Join(t.TempDir(), "missing.csv")}
	require.Error(t, dataset.Prepare(context.Background()))
}
