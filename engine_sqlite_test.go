package main

import (
	"context"
	"os"
	"path"
	"testing"

	"github.com/stretchr/testify/require"
)

const testTaxiCSV = `VendorID,tpep_pickup_datetime,tpep_dropoff_datetime,passenger_count,trip_distance,pickup_longitude,pickup_latitude,RatecodeID,store_and_fwd_flag,dropoff_longitude,dropoff_latitude,payment_type,fare_amount,extra,mta_tax,tip_amount,tolls_amount,improvement_surcharge,total_amount
1,2016-03-01 08:30:00,2016-03-01 08:45:00,1,2.5,-73.98,40.75,1,N,-73.96,40.78,1,12.0,0.5,0.5,2.0,0.0,0.3,15.3
2,2016-03-01 09:10:00,2016-03-01 09:40:00,2,5.1,-73.95,40.77,1,N,-73.87,40.64,2,22.5,0.0,0.5,0.0,5.54,0.3,28.84
1,2016-03-02 18:05:00,2016-03-02 18:20:00,1,1.2,-73.99,40.73,1,N,-73.98,40.74,1,8.0,1.0,0.5,1.5,0.0,0.3,11.3
2,2016-03-05 23:55:00,2016-03-06 00:15:00,3,4.0,0,0,1,N,0,0,1,16.5,0.5,0.5,3.0,0.0,0.3,20.8
`

func writeTestTaxiCSV(t *testing.T) string {
	t.Helper()
	file := path.Join(t.TempDir(), "yellow_tripdata_test.csv")
	require.Nil(t, os.WriteFile(file, []byte(testTaxiCSV), 0o644))
	return file
}

func testConfig(t *testing.T) Config {
	t.Helper()
	dir := t.TempDir()
	return Config{
		DbDir:       path.Join(dir, "db"),
		TempDir:     path.Join(dir, "db", "temp"),
		ReportsDir:  path.Join(dir, "reports"),
		MemoryLimit: "400MB",
		Attempts:    1,
	}
}

func TestSqliteEngineLoadAndQuery(t *testing.T) {
	ctx := context.Background()
	dataset := &DatasetTaxi{File: writeTestTaxiCSV(t)}

	engine := &EngineSqlite{}
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
	require.Contains(t, info, "database_size")
}

func TestSqliteEngineReloadReplacesTable(t *testing.T) {
	ctx := context.Background()
	dataset := &DatasetTaxi{File: writeTestTaxiCSV(t)}

	engine := &EngineSqlite{}
	session, err := engine.Open(testConfig(t), dataset)
	require.Nil(t, err)
	defer session.Close()

	_, err = session.Load(ctx, dataset)
	require.Nil(t, err)
	load, err := session.Load(ctx, dataset)
	require.Nil(t, err)
	require.Equal(t, int64(4), load.Rows)
}
