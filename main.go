package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
)

func buildEngines(names []string) ([]Engine, error) {
	available := []Engine{&EngineDuckdb{}, &EngineSqlite{}}
	engines := make([]Engine, 0, len(names))
	for _, name := range names {
		found := false
		for _, engine := range available {
			if engine.Name() == name {
				engines = append(engines, engine)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("unknown engine: %v", name)
		}
	}
	return engines, nil
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg := LoadConfig()
	Logger.Infof("config: %+v", cfg)

	engines, err := buildEngines(cfg.Engines)
	if err != nil {
		Logger.Fatalf("failed to build engines: %v", err)
	}

	dataset := &DatasetTaxi{File: cfg.DatasetFile, Url: cfg.DatasetUrl}
	system := NewSystem(cfg, dataset, engines)
	if err := system.Run(ctx); err != nil {
		Logger.Fatalf("benchmark failed: %v", err)
	}
	Logger.Infof("benchmark finished")
}
