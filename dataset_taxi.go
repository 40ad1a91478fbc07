package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
)

// Analytics workload over the yellow taxi trips table. DuckDB dialect is
// the default; sqlite3 gets strftime/julianday overrides where DuckDB uses
// EXTRACT/DAYNAME/epoch arithmetic.
var queriesTaxi = []Query{
	{
		Name: "row_count",
		SQL:  `SELECT COUNT(1) FROM yellow_taxi;`,
	},
	{
		Name: "hourly_stats",
		SQL: `SELECT
        EXTRACT(HOUR FROM tpep_pickup_datetime) AS hour_of_day,
        COUNT(*) AS trip_count,
        AVG(trip_distance) AS avg_distance,
        AVG(fare_amount) AS avg_fare,
        AVG(tip_amount) AS avg_tip,
        AVG(tip_amount / NULLIF(fare_amount, 0)) * 100 AS avg_tip_percentage
FROM yellow_taxi
GROUP BY hour_of_day
ORDER BY hour_of_day;`,
		Overrides: map[string]string{
			"sqlite3": `SELECT
        CAST(strftime('%H', tpep_pickup_datetime) AS INTEGER) AS hour_of_day,
        COUNT(*) AS trip_count,
        AVG(trip_distance) AS avg_distance,
        AVG(fare_amount) AS avg_fare,
        AVG(tip_amount) AS avg_tip,
        AVG(tip_amount / NULLIF(fare_amount, 0)) * 100 AS avg_tip_percentage
FROM yellow_taxi
GROUP BY hour_of_day
ORDER BY hour_of_day;`,
		},
	},
	{
		Name: "popular_routes",
		SQL: `SELECT
        ROUND(pickup_longitude, 2) AS pickup_long,
        ROUND(pickup_latitude, 2) AS pickup_lat,
        ROUND(dropoff_longitude, 2) AS dropoff_long,
        ROUND(dropoff_latitude, 2) AS dropoff_lat,
        COUNT(*) AS trip_count,
        AVG(trip_distance) AS avg_distance,
        AVG(fare_amount) AS avg_fare,
        AVG(total_amount) AS avg_total
FROM yellow_taxi
WHERE pickup_longitude != 0 AND pickup_latitude != 0
  AND dropoff_longitude != 0 AND dropoff_latitude != 0
GROUP BY pickup_long, pickup_lat, dropoff_long, dropoff_lat
ORDER BY trip_count DESC
LIMIT 10;`,
	},
	{
		Name: "payment_methods",
		SQL: `SELECT
        payment_type,
        CASE payment_type
            WHEN 1 THEN 'Credit card'
            WHEN 2 THEN 'Cash'
            WHEN 3 THEN 'No charge'
            WHEN 4 THEN 'Dispute'
            WHEN 5 THEN 'Unknown'
            WHEN 6 THEN 'Voided'
            ELSE 'Other'
        END AS payment_desc,
        COUNT(*) AS trip_count,
        AVG(fare_amount) AS avg_fare,
        AVG(tip_amount) AS avg_tip,
        SUM(tip_amount) AS total_tips,
        AVG(tip_amount / NULLIF(fare_amount, 0)) * 100 AS avg_tip_percentage
FROM yellow_taxi
GROUP BY payment_type, payment_desc
ORDER BY trip_count DESC;`,
	},
	{
		Name: "busy_days",
		SQL: `SELECT
        DAYNAME(tpep_pickup_datetime) AS day_name,
        COUNT(*) AS trip_count,
        AVG(trip_distance) AS avg_distance,
        AVG(fare_amount) AS avg_fare,
        AVG(tip_amount) AS avg_tip,
        AVG(trip_distance /
            (EXTRACT(EPOCH FROM (tpep_dropoff_datetime - tpep_pickup_datetime))/3600))
            AS avg_speed_mph
FROM yellow_taxi
WHERE tpep_dropoff_datetime > tpep_pickup_datetime
  AND trip_distance > 0
  AND EXTRACT(EPOCH FROM (tpep_dropoff_datetime - tpep_pickup_datetime)) > 60
GROUP BY day_name
ORDER BY trip_count DESC;`,
		Overrides: map[string]string{
			"sqlite3": `SELECT
        strftime('%w', tpep_pickup_datetime) AS day_name,
        COUNT(*) AS trip_count,
        AVG(trip_distance) AS avg_distance,
        AVG(fare_amount) AS avg_fare,
        AVG(tip_amount) AS avg_tip,
        AVG(trip_distance /
            ((julianday(tpep_dropoff_datetime) - julianday(tpep_pickup_datetime)) * 24))
            AS avg_speed_mph
FROM yellow_taxi
WHERE tpep_dropoff_datetime > tpep_pickup_datetime
  AND trip_distance > 0
  AND (julianday(tpep_dropoff_datetime) - julianday(tpep_pickup_datetime)) * 86400 > 60
GROUP BY day_name
ORDER BY trip_count DESC;`,
		},
	},
	{
		Name: "hourly_heatmap",
		SQL: `SELECT
        DAYNAME(tpep_pickup_datetime) AS day_name,
        EXTRACT(HOUR FROM tpep_pickup_datetime) AS hour_of_day,
        COUNT(*) AS trip_count
FROM yellow_taxi
GROUP BY day_name, hour_of_day
ORDER BY day_name, hour_of_day;`,
		Overrides: map[string]string{
			"sqlite3": `SELECT
        strftime('%w', tpep_pickup_datetime) AS day_name,
        CAST(strftime('%H', tpep_pickup_datetime) AS INTEGER) AS hour_of_day,
        COUNT(*) AS trip_count
FROM yellow_taxi
GROUP BY day_name, hour_of_day
ORDER BY day_name, hour_of_day;`,
		},
	},
	{
		// Larger-than-memory stress: RANK over every day partition, a wide
		// moving average and an NTILE over the full sort order force the
		// engine to spill once the memory limit is small enough.
		Name: "distance_percentiles",
		SQL: `WITH trip_ranks AS (
    SELECT
        trip_distance,
        fare_amount,
        tip_amount,
        RANK() OVER (
            PARTITION BY EXTRACT(DAY FROM tpep_pickup_datetime)
            ORDER BY fare_amount DESC
        ) AS day_fare_rank,
        AVG(fare_amount) OVER (
            ORDER BY tpep_pickup_datetime
            ROWS BETWEEN 10000 PRECEDING AND 10000 FOLLOWING
        ) AS moving_avg_fare,
        NTILE(100) OVER (ORDER BY trip_distance) AS distance_percentile
    FROM yellow_taxi
)
SELECT
    distance_percentile,
    ROUND(AVG(trip_distance), 2) AS avg_distance,
    ROUND(AVG(fare_amount), 2) AS avg_fare,
    ROUND(AVG(tip_amount), 2) AS avg_tip,
    COUNT(*) AS trip_count
FROM trip_ranks
WHERE day_fare_rank <= 1000
GROUP BY distance_percentile
ORDER BY distance_percentile;`,
		Overrides: map[string]string{
			"sqlite3": `WITH trip_ranks AS (
    SELECT
        trip_distance,
        fare_amount,
        tip_amount,
        RANK() OVER (
            PARTITION BY strftime('%d', tpep_pickup_datetime)
            ORDER BY fare_amount DESC
        ) AS day_fare_rank,
        AVG(fare_amount) OVER (
            ORDER BY tpep_pickup_datetime
            ROWS BETWEEN 10000 PRECEDING AND 10000 FOLLOWING
        ) AS moving_avg_fare,
        NTILE(100) OVER (ORDER BY trip_distance) AS distance_percentile
    FROM yellow_taxi
)
SELECT
    distance_percentile,
    ROUND(AVG(trip_distance), 2) AS avg_distance,
    ROUND(AVG(fare_amount), 2) AS avg_fare,
    ROUND(AVG(tip_amount), 2) AS avg_tip,
    COUNT(*) AS trip_count
FROM trip_ranks
WHERE day_fare_rank <= 1000
GROUP BY distance_percentile
ORDER BY distance_percentile;`,
		},
	},
}

type DatasetTaxi struct {
	File string
	Url  string
}

func (d *DatasetTaxi) Name() string     { return "nyc-taxi" }
func (d *DatasetTaxi) Table() string    { return "yellow_taxi" }
func (d *DatasetTaxi) Path() string     { return d.File }
func (d *DatasetTaxi) Queries() []Query { return queriesTaxi }

func (d *DatasetTaxi) Prepare(ctx context.Context) error {
	if _, err := os.Stat(d.File); err == nil {
		Logger.Infof("dataset %v already exists at %v, skip download", d.Name(), d.File)
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}
	if d.Url == "" {
		return fmt.Errorf("dataset file %v not found and no download url configured", d.File)
	}
	return downloadFile(ctx, d.Url, d.File)
}

func downloadFile(ctx context.Context, url string, filename string) error {
	Logger.Infof("downloading dataset from %v to %v", url, filename)
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	response, err := http.DefaultClient.Do(request)
	if err != nil {
		return err
	}
	defer response.Body.Close()
	if response.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code %v for %v", response.StatusCode, url)
	}
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = io.Copy(file, response.Body)
	if err != nil {
		return err
	}
	return nil
}
