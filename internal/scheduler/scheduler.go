// Package scheduler drives the acquire, classify and observe cycle on a fixed cadence.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tlanclos/isthemountainout/internal/imagery"
	"github.com/tlanclos/isthemountainout/internal/modules/mountain/decision"
	"github.com/tlanclos/isthemountainout/internal/modules/mountain/types"
)

type Observer interface {
	Observe(ctx context.Context, obs types.Observation, img *imagery.Image) (decision.Decision, error)
}

type Poller struct {
	provider   imagery.Provider
	classifier imagery.Classifier
	observer   Observer
	interval   time.Duration
	logger     *slog.Logger
}

func NewPoller(provider imagery.Provider, classifier imagery.Classifier, observer Observer, interval time.Duration, logger *slog.Logger) (*Poller, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("poll interval must be positive, got %v", interval)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		provider:   provider,
		classifier: classifier,
		observer:   observer,
		interval:   interval,
		logger:     logger,
	}, nil
}

// Run performs a cycle immediately and then once per interval until ctx is
// done. A failed cycle is logged and does not stop the loop.
func (p *Poller) Run(ctx context.Context) error {
	p.logger.Info("poller started", "interval", p.interval)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		if _, err := p.Cycle(ctx); err != nil && ctx.Err() == nil {
			p.logger.Error("poll cycle failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Cycle acquires one image, classifies it and hands the observation on. The
// observation timestamp is the capture time of the image.
func (p *Poller) Cycle(ctx context.Context) (decision.Decision, error) {
	img, err := p.provider.Get(ctx)
	if err != nil {
		return decision.Decision{}, fmt.Errorf("acquire image: %w", err)
	}
	label, confidence, err := p.classifier.Classify(ctx, img)
	if err != nil {
		return decision.Decision{}, fmt.Errorf("classify image: %w", err)
	}
	obs := types.Observation{Timestamp: img.CapturedAt, Label: label, Confidence: confidence}
	p.logger.Debug("classified", "label", label, "confidence", confidence, "captured_at", img.CapturedAt)

	d, err := p.observer.Observe(ctx, obs, &img)
	if err != nil {
		return d, fmt.Errorf("observe: %w", err)
	}
	p.logger.Info("observation processed",
		"label", d.CorrectedLabel,
		"outcome", d.Outcome,
		"announce", d.Announce,
	)
	return d, nil
}
