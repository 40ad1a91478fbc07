package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStringEnv(t *testing.T) {
	require.Equal(t, "fallback", StringEnv("OLAPBENCH_TEST_MISSING", "fallback"))
	t.Setenv("OLAPBENCH_TEST_STRING", "value")
	require.Equal(t, "value", StringEnv("OLAPBENCH_TEST_STRING", "fallback"))
}

func TestIntEnv(t *testing.T) {
	require.Equal(t, 3, IntEnv("OLAPBENCH_TEST_MISSING", 3))
	t.Setenv("OLAPBENCH_TEST_INT", "17")
	require.Equal(t, 17, IntEnv("OLAPBENCH_TEST_INT", 3))
	t.Setenv("OLAPBENCH_TEST_INT", "garbage")
	require.Equal(t, 3, IntEnv("OLAPBENCH_TEST_INT", 3))
}

func TestListEnv(t *testing.T) {
	def := []string{"duckdb"}
	require.Equal(t, def, ListEnv("OLAPBENCH_TEST_MISSING", def))
	t.Setenv("OLAPBENCH_TEST_LIST", "duckdb, sqlite3 ,")
	require.Equal(t, []string{"duckdb", "sqlite3"}, ListEnv("OLAPBENCH_TEST_LIST", def))
	t.Setenv("OLAPBENCH_TEST_LIST", " , ")
	require.Equal(t, def, ListEnv("OLAPBENCH_TEST_LIST", def))
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()
	require.Equal(t, "files/yellow_tripdata_2016-03.csv", cfg.DatasetFile)
	require.Equal(t, []string{"duckdb", "sqlite3"}, cfg.Engines)
	require.Equal(t, 3, cfg.Attempts)
	require.Equal(t, 1, cfg.Warmup)
	require.Equal(t, "400MB", cfg.MemoryLimit)
}
