package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/tlanclos/isthemountainout/internal/config"
	"github.com/tlanclos/isthemountainout/internal/db"
	"github.com/tlanclos/isthemountainout/internal/httpapi"
	"github.com/tlanclos/isthemountainout/internal/imagery"
	"github.com/tlanclos/isthemountainout/internal/metrics"
	"github.com/tlanclos/isthemountainout/internal/migrate"
	"github.com/tlanclos/isthemountainout/internal/modules/mountain"
	"github.com/tlanclos/isthemountainout/internal/mqtt"
	"github.com/tlanclos/isthemountainout/internal/scheduler"
)

func Run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	logger.Info("config loaded",
		"appEnv", cfg.AppEnv,
		"logLevel", cfg.LogLevel.String(),
		"httpAddr", cfg.HTTPAddr,
		"sqlitePath", cfg.SQLitePath,
		"site", cfg.SiteName,
		"timezone", cfg.SiteTimezone,
		"settleWindow", cfg.SettleWindow,
		"historyLookback", cfg.HistoryLookback,
		"pollInterval", cfg.PollInterval,
		"imageSource", cfg.ImageSource,
		"announcer", cfg.Announcer,
		"mqttBroker", cfg.MQTTBroker,
		"archiveBucket", cfg.ArchiveBucket,
	)
	dbConn, err := db.Open(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(dbConn); closeErr != nil {
			logger.Error("db close", "error", closeErr)
		}
	}()

	if _, err := migrate.Run(dbConn, logger); err != nil {
		return err
	}
	logger.Info("database ready")

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	announcer, closeAnnouncer, err := NewAnnouncer(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeAnnouncer()

	archiver, err := NewArchiver(ctx, cfg)
	if err != nil {
		return err
	}

	svc, err := NewService(cfg, dbConn, announcer, archiver, m, logger)
	if err != nil {
		return err
	}

	mux := httpapi.NewMux(dbConn, m)
	mountain.RegisterFeature(mux, svc, m)

	// Attach the handler before Connect; the broker may deliver right after CONNACK.
	var subscriber *mqtt.Subscriber
	if cfg.MQTTBroker != "" {
		subscriber, err = mqtt.NewSubscriber(cfg, logger)
		if err != nil {
			return err
		}
		svc.RegisterMQTT(subscriber)
		connectCtx, connectCancel := context.WithTimeout(ctx, 5*time.Second)
		err = subscriber.Connect(connectCtx)
		connectCancel()
		if err != nil {
			logger.Warn("mqtt connection failed (continuing without mqtt)", "error", err)
		}
	}

	srv := httpapi.NewServer(cfg, mux, logger)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("http listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if cfg.PollInterval > 0 {
		loc, err := Location(cfg)
		if err != nil {
			return err
		}
		poller, err := scheduler.NewPoller(NewProvider(cfg, loc), imagery.NewHTTPClassifier(cfg.ClassifierURL, nil), svc, cfg.PollInterval, logger)
		if err != nil {
			return err
		}
		g.Go(func() error {
			if err := poller.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()

		if subscriber != nil {
			logger.Info("mqtt disconnecting")
			subscriber.Disconnect()
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("http shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
