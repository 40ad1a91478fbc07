package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/shirou/gopsutil/v3/process"
)

type Benchmark struct {
	Warmup   int
	Attempts int
}

type Attempt struct {
	Seconds      float64 `json:"seconds"`
	Rows         int64   `json:"rows"`
	PeakRssBytes uint64  `json:"peak_rss_bytes"`
}

// watchPeakRss samples the process RSS until the returned stop function is
// called and reports the largest value seen.
func watchPeakRss() func() uint64 {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		Logger.Warnf("failed to attach rss watcher: %v", err)
		return func() uint64 { return 0 }
	}
	done := make(chan struct{})
	result := make(chan uint64, 1)
	go func() {
		var peak uint64
		ticker := time.NewTicker(50 * time.Millisecond)
		defer ticker.Stop()
		for {
			if info, err := proc.MemoryInfo(); err == nil && info.RSS > peak {
				peak = info.RSS
			}
			select {
			case <-done:
				result <- peak
				return
			case <-ticker.C:
			}
		}
	}()
	return func() uint64 {
		close(done)
		return <-result
	}
}

func (b *Benchmark) WarmupQuery(ctx context.Context, session Session, name string, query string) error {
	for i := 0; i < b.Warmup; i++ {
		Logger.Infof("running warmup #%v/%v for query %v on %v", i+1, b.Warmup, name, session.Name())
		if _, err := session.Run(ctx, query); err != nil {
			return fmt.Errorf("warmup #%v failed: %w", i, err)
		}
	}
	return nil
}

func (b *Benchmark) RunQuery(ctx context.Context, session Session, name string, query string) ([]Attempt, error) {
	attempts := make([]Attempt, 0, b.Attempts)
	for i := 0; i < b.Attempts; i++ {
		Logger.Infof("running attempt #%v/%v for query %v on %v", i+1, b.Attempts, name, session.Name())

		stop := watchPeakRss()
		start := time.Now()
		rows, err := session.Run(ctx, query)
		elapsed := time.Since(start)
		peak := stop()

		attempts = append(attempts, Attempt{
			Seconds:      elapsed.Seconds(),
			Rows:         rows,
			PeakRssBytes: peak,
		})

		if err != nil {
			return attempts, fmt.Errorf("attempt #%v failed: %w", i, err)
		}
	}
	return attempts, nil
}
