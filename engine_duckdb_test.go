package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDuckdbEngineLoadAndQuery(t *testing.T) {
	ctx := context.Background()
	dataset := &DatasetTaxi{File: writeTestTaxiCSV(t)}

	engine := &EngineDuckdb{}
	session, err := engine.Open(testConfig(t), dataset)
	require.Nil(t, err)
	defer session.Close()

	load, err := session.Load(ctx, dataset)
	require.Nil(t, err)
	require.Equal(t, int64(4), load.Rows)

	for _, query := range dataset.Queries() {
		sql, ok := query.ForEngine(engine.Name())
		if !ok {
			continue
		}
		rows, err := session.Run(ctx, sql)
		require.Nil(t, err, "query %v", query.Name)
		require.Greater(t, rows, int64(0), "query %v", query.Name)
	}

	info, err := session.MemoryInfo(ctx)
	require.Nil(t, err)
	require.NotEmpty(t, info["memory_limit"])
}

func TestDuckdbEngineRespectsOverriddenMemoryLimit(t *testing.T) {
	ctx := context.Background()
	dataset := &DatasetTaxi{File: writeTestTaxiCSV(t)}

	defaults := testConfig(t)
	overridden := testConfig(t)
	overridden.MemoryLimit = "200MB"

	limits := make([]string, 0, 2)
	for _, cfg := range []Config{defaults, overridden} {
		engine := &EngineDuckdb{}
		session, err := engine.Open(cfg, dataset)
		require.Nil(t, err)
		info, err := session.MemoryInfo(ctx)
		require.Nil(t, err)
		require.Nil(t, session.Close())
		limits = append(limits, info["memory_limit"])
	}
	require.NotEqual(t, limits[0], limits[1])
}
