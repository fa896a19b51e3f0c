// Package main is the entry point for the FloodAura archiver job.
//
// The archiver exports flood events older than the configured retention
// period to a zstd-compressed NDJSON file, then prunes them from the
// database. It is intended to run on a schedule (cron, systemd timer) and
// exits non-zero when either phase fails, leaving the data untouched for the
// next run.
//
// The export and the database reads are pipelined: a reader goroutine pages
// aged events out of the table while the writer goroutine encodes and
// compresses them.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"
	"golang.org/x/sync/errgroup"

	"floodaura/internal/config"
	"floodaura/internal/db"
	"floodaura/internal/types"
)

const (
	// exportPageSize is how many events the reader fetches per query.
	exportPageSize = 500

	// jobTimeout bounds one full archiver run.
	jobTimeout = 10 * time.Minute
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connecting database: %w", err)
	}
	defer pool.Close()
	repo := db.NewFloodEventRepository(pool)

	now := time.Now().UTC()
	cutoff := now.Add(-cfg.Archive.RetentionPeriod)
	logger.Info("archiver starting",
		"cutoff", cutoff,
		"retention", cfg.Archive.RetentionPeriod.String(),
		"output_dir", cfg.Archive.OutputDir,
	)

	exported, path, err := exportAgedEvents(ctx, repo, cfg.Archive, cutoff, now)
	if err != nil {
		return fmt.Errorf("exporting aged events: %w", err)
	}
	if exported == 0 {
		logger.Info("no aged events to archive")
		return nil
	}

	// Prune only after the export file is fully written and synced.
	pruned, err := repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("pruning aged events: %w", err)
	}

	logger.Info("archiver finished",
		"exported", exported,
		"pruned", pruned,
		"archive", path,
	)
	return nil
}

// exportAgedEvents writes all events older than cutoff to a compressed
// NDJSON archive and reports how many it wrote. The archive file is removed
// when nothing qualified or when the export failed partway.
func exportAgedEvents(ctx context.Context, repo *db.FloodEventRepository, cfg config.ArchiveConfig, cutoff, now time.Time) (int, string, error) {
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return 0, "", err
	}
	path := filepath.Join(cfg.OutputDir, fmt.Sprintf("flood_events_%s.ndjson.zst", now.Format("20060102T150405Z")))

	f, err := os.Create(path)
	if err != nil {
		return 0, "", err
	}

	zw, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(cfg.CompressionLevel)))
	if err != nil {
		f.Close()
		os.Remove(path)
		return 0, "", err
	}

	pages := make(chan []types.FloodEvent, 2)
	var exported int

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(pages)
		for offset := 0; ; offset += exportPageSize {
			events, err := repo.ListOlderThan(gCtx, cutoff, exportPageSize, offset)
			if err != nil {
				return err
			}
			if len(events) == 0 {
				return nil
			}
			select {
			case pages <- events:
			case <-gCtx.Done():
				return gCtx.Err()
			}
			if len(events) < exportPageSize {
				return nil
			}
		}
	})

	g.Go(func() error {
		enc := json.NewEncoder(zw)
		for events := range pages {
			for i := range events {
				if err := enc.Encode(&events[i]); err != nil {
					return err
				}
				exported++
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		zw.Close()
		f.Close()
		os.Remove(path)
		return 0, "", err
	}

	if err := zw.Close(); err != nil {
		f.Close()
		os.Remove(path)
		return 0, "", err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(path)
		return 0, "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return 0, "", err
	}

	if exported == 0 {
		os.Remove(path)
	}
	return exported, path, nil
}
