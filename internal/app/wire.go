package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/tlanclos/isthemountainout/internal/announce"
	"github.com/tlanclos/isthemountainout/internal/archive"
	"github.com/tlanclos/isthemountainout/internal/config"
	"github.com/tlanclos/isthemountainout/internal/daylight"
	"github.com/tlanclos/isthemountainout/internal/imagery"
	"github.com/tlanclos/isthemountainout/internal/metrics"
	"github.com/tlanclos/isthemountainout/internal/modules/mountain/decision"
	"github.com/tlanclos/isthemountainout/internal/modules/mountain/repository"
	"github.com/tlanclos/isthemountainout/internal/modules/mountain/service"
	"github.com/tlanclos/isthemountainout/internal/mqtt"
)

// Location builds the observation site from configuration.
func Location(cfg config.Config) (daylight.Location, error) {
	return daylight.NewLocation(cfg.SiteName, cfg.SiteLatitude, cfg.SiteLongitude, cfg.SiteTimezone)
}

// DecisionOptions maps configuration onto engine options.
func DecisionOptions(cfg config.Config, loc daylight.Location) decision.Options {
	opts := decision.DefaultOptions()
	opts.Window = cfg.SettleWindow
	opts.Lookback = cfg.HistoryLookback
	opts.Zone = loc.Zone
	return opts
}

// NewService assembles the observation service over dbConn. archiver may be nil.
func NewService(cfg config.Config, dbConn *sql.DB, announcer announce.Announcer, archiver archive.Archiver, m *metrics.Metrics, logger *slog.Logger) (*service.Service, error) {
	loc, err := Location(cfg)
	if err != nil {
		return nil, err
	}
	catalog, err := announce.LoadCatalog(cfg.MessagesFile)
	if err != nil {
		return nil, err
	}
	return service.NewService(service.Deps{
		Repository: repository.NewRepository(dbConn),
		Location:   loc,
		Options:    DecisionOptions(cfg, loc),
		Catalog:    catalog,
		Announcer:  announcer,
		Archiver:   archiver,
		Metrics:    m,
		Logger:     logger,
	})
}

// closer releases an announcer's connection at shutdown.
type closer func()

// NewAnnouncer selects the announcer named by ANNOUNCER and connects it.
func NewAnnouncer(ctx context.Context, cfg config.Config, logger *slog.Logger) (announce.Announcer, closer, error) {
	switch cfg.Announcer {
	case "mqtt":
		pub, err := mqtt.NewPublisher(cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := pub.Connect(connectCtx); err != nil {
			pub.Disconnect()
			return nil, nil, fmt.Errorf("mqtt announcer: %w", err)
		}
		return announce.NewMQTT(pub, cfg.MQTTAnnounceTopic), pub.Disconnect, nil
	case "kafka":
		k, err := announce.NewKafka(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			return nil, nil, err
		}
		return k, func() {
			if err := k.Close(); err != nil {
				logger.Error("kafka writer close", "error", err)
			}
		}, nil
	default:
		return announce.NewLog(logger), func() {}, nil
	}
}

// NewArchiver returns nil when no bucket is configured.
func NewArchiver(ctx context.Context, cfg config.Config) (archive.Archiver, error) {
	if cfg.ArchiveBucket == "" {
		return nil, nil
	}
	return archive.NewS3Archiver(ctx, cfg.ArchiveBucket, cfg.ArchivePrefix)
}

// NewProvider selects the image source named by IMAGE_SOURCE.
func NewProvider(cfg config.Config, loc daylight.Location) imagery.Provider {
	if cfg.ImageSource == "file" {
		return imagery.NewFile(cfg.ImagePath)
	}
	return imagery.NewLive(cfg.ImageURL, loc.Zone, &http.Client{Timeout: 60 * time.Second})
}
