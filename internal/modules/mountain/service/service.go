// Package service runs one observation through decision, archive and announcement.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/tlanclos/isthemountainout/internal/announce"
	"github.com/tlanclos/isthemountainout/internal/archive"
	"github.com/tlanclos/isthemountainout/internal/daylight"
	"github.com/tlanclos/isthemountainout/internal/imagery"
	"github.com/tlanclos/isthemountainout/internal/metrics"
	"github.com/tlanclos/isthemountainout/internal/modules/mountain/decision"
	"github.com/tlanclos/isthemountainout/internal/modules/mountain/repository"
	"github.com/tlanclos/isthemountainout/internal/modules/mountain/types"
)

type Deps struct {
	Repository repository.HistoryRepository
	Location   daylight.Location
	Options    decision.Options
	Catalog    announce.Catalog
	Announcer  announce.Announcer
	// Archiver is optional; nil skips snapshot storage.
	Archiver archive.Archiver
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
	Now      func() time.Time
}

// Service is the single writer of the classification history.
type Service struct {
	mu        sync.Mutex
	repo      repository.HistoryRepository
	engine    *decision.Engine
	location  daylight.Location
	opts      decision.Options
	catalog   announce.Catalog
	announcer announce.Announcer
	archiver  archive.Archiver
	metrics   *metrics.Metrics
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(d Deps) (*Service, error) {
	if d.Repository == nil {
		return nil, fmt.Errorf("repository required")
	}
	if d.Announcer == nil {
		return nil, fmt.Errorf("announcer required")
	}
	if d.Catalog == nil {
		d.Catalog = announce.DefaultCatalog()
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Location.Zone != nil {
		d.Options.Zone = d.Location.Zone
	}
	if d.Options.Zone == nil {
		d.Options.Zone = time.UTC
	}
	engine, err := decision.NewEngine(d.Repository, d.Location, d.Options, d.Logger)
	if err != nil {
		return nil, fmt.Errorf("decision engine: %w", err)
	}
	return &Service{
		repo:      d.Repository,
		engine:    engine,
		location:  d.Location,
		opts:      d.Options,
		catalog:   d.Catalog,
		announcer: d.Announcer,
		archiver:  d.Archiver,
		metrics:   d.Metrics,
		logger:    d.Logger,
		now:       d.Now,
	}, nil
}

// Observe decides on obs and announces it when the verdict says so. img may
// be nil when the caller only has the classification.
//
// A store error means nothing was persisted and nothing was announced. An
// announce error still returns the persisted decision.
func (s *Service) Observe(ctx context.Context, obs types.Observation, img *imagery.Image) (decision.Decision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := s.now()
	defer func() { s.metrics.ObserveDuration(s.now().Sub(start)) }()

	imageKey := s.archive(ctx, obs, img)

	d, err := s.engine.Decide(obs)
	if err != nil {
		var se *decision.StoreError
		if errors.As(err, &se) {
			s.metrics.StoreError(se.Op)
			s.logger.Error("history store failed", "op", se.Op, "error", se.Err)
		}
		return d, err
	}
	s.metrics.Decision(string(d.CorrectedLabel), string(d.Outcome))

	if !d.Announce {
		return d, nil
	}

	a, err := s.catalog.Compose(s.location.Name, d.CorrectedLabel, obs.Timestamp.In(s.opts.Zone))
	if err != nil {
		s.metrics.AnnounceFailure()
		return d, &announce.Error{Announcer: s.announcer.Name(), Err: err}
	}
	a.ImageKey = imageKey
	if img != nil {
		a.Image = img.Data
	}

	s.logger.Info("announcing", "label", a.Label, "id", a.ID, "announcer", s.announcer.Name())
	if err := s.announcer.Announce(ctx, a); err != nil {
		s.metrics.AnnounceFailure()
		s.logger.Error("announce failed", "label", a.Label, "id", a.ID, "error", err)
		var ae *announce.Error
		if !errors.As(err, &ae) {
			err = &announce.Error{Announcer: s.announcer.Name(), Err: err}
		}
		return d, err
	}
	return d, nil
}

func (s *Service) archive(ctx context.Context, obs types.Observation, img *imagery.Image) string {
	if s.archiver == nil || img == nil || len(img.Data) == 0 {
		return ""
	}
	key, err := s.archiver.Archive(ctx, s.location.Name, obs.Timestamp.In(s.opts.Zone), img.Data, img.ContentType)
	if err != nil {
		s.logger.Warn("snapshot archive failed", "error", err)
		return ""
	}
	s.logger.Debug("snapshot archived", "key", key)
	return key
}

// History returns up to limit records, newest first.
func (s *Service) History(limit int) ([]types.HistoryRecord, error) {
	return s.repo.GetRecent(limit, 0)
}

// Status summarizes the site as of now.
type Status struct {
	Site        string               `json:"site"`
	Now         time.Time            `json:"now"`
	Records     int                  `json:"records"`
	Latest      *types.HistoryRecord `json:"latest,omitempty"`
	LastPosted  *types.HistoryRecord `json:"lastPosted,omitempty"`
	LastNotable types.Label          `json:"lastNotable"`
	IsNight     bool                 `json:"isNight"`
	Dawn        *time.Time           `json:"dawn,omitempty"`
	Dusk        *time.Time           `json:"dusk,omitempty"`
	AlwaysDark  bool                 `json:"alwaysDark,omitempty"`
	AlwaysLight bool                 `json:"alwaysLight,omitempty"`
}

func (s *Service) Status() (Status, error) {
	now := s.now().In(s.opts.Zone)

	history, err := s.repo.ReadLastN(s.opts.Lookback)
	if err != nil {
		return Status{}, &decision.StoreError{Op: "read", Err: err}
	}
	count, err := s.repo.Count()
	if err != nil {
		return Status{}, &decision.StoreError{Op: "read", Err: err}
	}
	posted, err := s.repo.GetLastPosted()
	if err != nil {
		return Status{}, &decision.StoreError{Op: "read", Err: err}
	}

	st := Status{
		Site:        s.location.Name,
		Now:         now,
		Records:     count,
		LastPosted:  posted,
		LastNotable: decision.ResolveLastNotable(history, s.opts.Lookback, decision.StaleCutoff(now, s.opts.Zone)),
		IsNight:     s.location.IsNight(now),
	}
	if len(history) > 0 {
		latest := history[len(history)-1]
		st.Latest = &latest
	}
	w := s.location.Window(now)
	st.AlwaysDark, st.AlwaysLight = w.AlwaysDark, w.AlwaysLight
	if !w.AlwaysDark && !w.AlwaysLight {
		st.Dawn, st.Dusk = &w.Dawn, &w.Dusk
	}
	return st, nil
}
