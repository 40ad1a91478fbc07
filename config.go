package main

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

func StringEnv(key string, def string) string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	return value
}

func IntEnv(key string, def int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func ListEnv(key string, def []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	items := make([]string, 0)
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return def
	}
	return items
}

type Config struct {
	DatasetFile string
	DatasetUrl  string
	ReportsDir  string
	DbDir       string
	TempDir     string
	MemoryLimit string
	Engines     []string
	Attempts    int
	Warmup      int
}

func LoadConfig() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		Logger.Warnf("failed to load .env: %v", err)
	}
	return Config{
		DatasetFile: StringEnv("BENCH_DATASET_FILE", "files/yellow_tripdata_2016-03.csv"),
		DatasetUrl:  StringEnv("BENCH_DATASET_URL", ""),
		ReportsDir:  StringEnv("BENCH_REPORTS_DIR", "reports"),
		DbDir:       StringEnv("BENCH_DB_DIR", "db"),
		TempDir:     StringEnv("DUCKDB_TEMP_DIRECTORY", "db/temp"),
		MemoryLimit: StringEnv("DUCKDB_MEMORY_LIMIT", "400MB"),
		Engines:     ListEnv("BENCH_ENGINES", []string{"duckdb", "sqlite3"}),
		Attempts:    IntEnv("BENCH_ATTEMPTS", 3),
		Warmup:      IntEnv("BENCH_WARMUP", 1),
	}
}
