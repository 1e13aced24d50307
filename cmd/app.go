package cmd

import (
	"context"
	"fmt"

	"github.com/mkovarik/faceattend/internal/config"
	"github.com/mkovarik/faceattend/internal/detect"
	"github.com/mkovarik/faceattend/internal/embedding"
	"github.com/mkovarik/faceattend/internal/ledger"
	"github.com/mkovarik/faceattend/internal/match"
	"github.com/mkovarik/faceattend/internal/pipeline"
	"github.com/mkovarik/faceattend/internal/registry"
)

// app bundles the wired recognition components for a command run.
type app struct {
	cfg      *config.Config
	pipeline *pipeline.Pipeline
	registry *registry.Registry
	engine   match.Engine
	ledger   *ledger.Ledger

	closers []func() error
}

// buildApp constructs the full recognition stack from configuration. The
// HNSW engine is populated from the registry before the app is handed out.
func buildApp(ctx context.Context) (*app, error) {
	cfg := config.Load()

	locator, err := detect.NewLocator(cfg.Detector.CascadePath, detect.Params{
		ScaleFactor:  cfg.Detector.ScaleFactor,
		MinNeighbors: cfg.Detector.MinNeighbors,
		MinSize:      cfg.Detector.MinSize,
		CropSize:     cfg.Detector.CropSize,
	})
	if err != nil {
		return nil, fmt.Errorf("initializing face detector: %w", err)
	}

	embedder, err := embedding.NewEmbedder(cfg.Model.Path)
	if err != nil {
		locator.Close()
		return nil, fmt.Errorf("initializing embedder: %w", err)
	}

	reg, err := registry.New(cfg.Registry.Path)
	if err != nil {
		locator.Close()
		embedder.Close()
		return nil, fmt.Errorf("opening embedding registry: %w", err)
	}

	led, err := ledger.New(cfg.Attendance.CSVPath)
	if err != nil {
		locator.Close()
		embedder.Close()
		return nil, fmt.Errorf("opening attendance ledger: %w", err)
	}

	var engine match.Engine
	switch cfg.Matcher.Index {
	case "hnsw":
		hnswEngine := match.NewHNSWEngine(reg)
		if err := hnswEngine.Rebuild(ctx); err != nil {
			locator.Close()
			embedder.Close()
			return nil, fmt.Errorf("building match index: %w", err)
		}
		fmt.Printf("HNSW match index built with %d identities\n", hnswEngine.Count())
		engine = hnswEngine
	default:
		engine = match.NewLinearEngine(reg)
	}

	return &app{
		cfg:      cfg,
		pipeline: pipeline.New(locator, embedder, reg, engine, led, cfg.Matcher.Threshold),
		registry: reg,
		engine:   engine,
		ledger:   led,
		closers:  []func() error{locator.Close, embedder.Close},
	}, nil
}

func (a *app) close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			fmt.Printf("Warning: cleanup failed: %v\n", err)
		}
	}
}
