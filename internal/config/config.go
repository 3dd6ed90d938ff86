package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	AppEnv   string
	LogLevel slog.Level
	HTTPAddr string

	SQLiteDriver          string
	SQLiteDSN             string
	SQLitePath            string
	SQLiteMaxOpenConns    int
	SQLiteMaxIdleConns    int
	SQLiteConnMaxLifetime time.Duration

	SiteName      string
	SiteLatitude  float64
	SiteLongitude float64
	SiteTimezone  string

	// SettleWindow is how many trailing records must repeat a label before it
	// can be announced. HistoryLookback bounds the last-notable walk.
	SettleWindow    int
	HistoryLookback int

	// PollInterval of zero disables the built-in poller; observations then
	// arrive over MQTT or HTTP only.
	PollInterval  time.Duration
	ImageSource   string
	ImageURL      string
	ImagePath     string
	ClassifierURL string

	Announcer    string
	MessagesFile string

	MQTTBroker           string
	MQTTPort             int
	MQTTClientID         string
	MQTTObservationTopic string
	MQTTAnnounceTopic    string

	KafkaBrokers []string
	KafkaTopic   string

	ArchiveBucket string
	ArchivePrefix string
}

func LoadFromEnv() (Config, error) {
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	switch appEnv {
	case "dev", "prod":
	default:
		return Config{}, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", appEnv)
	}

	level, err := parseLogLevel(envOr("LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, err
	}

	maxOpenConns, err := envInt("SQLITE_MAX_OPEN_CONNS", 1)
	if err != nil {
		return Config{}, err
	}
	maxIdleConns, err := envInt("SQLITE_MAX_IDLE_CONNS", 1)
	if err != nil {
		return Config{}, err
	}
	connMaxLifetime, err := envDuration("SQLITE_CONN_MAX_LIFETIME", 0)
	if err != nil {
		return Config{}, err
	}

	lat, err := envFloat("SITE_LATITUDE", 47.6209673)
	if err != nil {
		return Config{}, err
	}
	lon, err := envFloat("SITE_LONGITUDE", -122.348993)
	if err != nil {
		return Config{}, err
	}
	siteTimezone := envOr("SITE_TIMEZONE", "America/Los_Angeles")
	if _, err := time.LoadLocation(siteTimezone); err != nil {
		return Config{}, fmt.Errorf("invalid SITE_TIMEZONE %q: %w", siteTimezone, err)
	}

	settleWindow, err := envInt("SETTLE_WINDOW", 2)
	if err != nil {
		return Config{}, err
	}
	if settleWindow < 1 {
		return Config{}, fmt.Errorf("SETTLE_WINDOW must be at least 1, got %d", settleWindow)
	}
	lookback, err := envInt("HISTORY_LOOKBACK", 100)
	if err != nil {
		return Config{}, err
	}
	if lookback < settleWindow {
		return Config{}, fmt.Errorf("HISTORY_LOOKBACK (%d) must be at least SETTLE_WINDOW (%d)", lookback, settleWindow)
	}

	pollInterval, err := envDuration("POLL_INTERVAL", 0)
	if err != nil {
		return Config{}, err
	}
	if pollInterval < 0 {
		return Config{}, fmt.Errorf("POLL_INTERVAL must not be negative, got %v", pollInterval)
	}

	imageSource := strings.ToLower(envOr("IMAGE_SOURCE", "live"))
	switch imageSource {
	case "live", "file":
	default:
		return Config{}, fmt.Errorf("invalid IMAGE_SOURCE %q (allowed: live, file)", imageSource)
	}
	imagePath := envOr("IMAGE_PATH", "")
	if imageSource == "file" && pollInterval > 0 && imagePath == "" {
		return Config{}, fmt.Errorf("IMAGE_PATH is required when IMAGE_SOURCE=file")
	}
	classifierURL := envOr("CLASSIFIER_URL", "")
	if pollInterval > 0 && classifierURL == "" {
		return Config{}, fmt.Errorf("CLASSIFIER_URL is required when POLL_INTERVAL is set")
	}

	mqttPort, err := envInt("MQTT_PORT", 1883)
	if err != nil {
		return Config{}, err
	}
	mqttBroker := envOr("MQTT_BROKER", "")

	var kafkaBrokers []string
	for _, b := range strings.Split(envOr("KAFKA_BROKERS", ""), ",") {
		if b = strings.TrimSpace(b); b != "" {
			kafkaBrokers = append(kafkaBrokers, b)
		}
	}

	announcer := strings.ToLower(envOr("ANNOUNCER", "log"))
	switch announcer {
	case "log":
	case "mqtt":
		if mqttBroker == "" {
			return Config{}, fmt.Errorf("MQTT_BROKER is required when ANNOUNCER=mqtt")
		}
	case "kafka":
		if len(kafkaBrokers) == 0 {
			return Config{}, fmt.Errorf("KAFKA_BROKERS is required when ANNOUNCER=kafka")
		}
	default:
		return Config{}, fmt.Errorf("invalid ANNOUNCER %q (allowed: log, mqtt, kafka)", announcer)
	}

	return Config{
		AppEnv:   appEnv,
		LogLevel: level,
		HTTPAddr: envOr("HTTP_ADDR", ":8080"),

		SQLiteDriver:          envOr("SQLITE_DRIVER", "sqlite3"),
		SQLiteDSN:             envOr("SQLITE_DSN", ""),
		SQLitePath:            envOr("SQLITE_PATH", "../dev/sqlite/app.db"),
		SQLiteMaxOpenConns:    maxOpenConns,
		SQLiteMaxIdleConns:    maxIdleConns,
		SQLiteConnMaxLifetime: connMaxLifetime,

		SiteName:      envOr("SITE_NAME", "MountRainier"),
		SiteLatitude:  lat,
		SiteLongitude: lon,
		SiteTimezone:  siteTimezone,

		SettleWindow:    settleWindow,
		HistoryLookback: lookback,

		PollInterval:  pollInterval,
		ImageSource:   imageSource,
		ImageURL:      envOr("IMAGE_URL", "https://backend.roundshot.com/cams/241/original"),
		ImagePath:     imagePath,
		ClassifierURL: classifierURL,

		Announcer:    announcer,
		MessagesFile: envOr("MESSAGES_FILE", ""),

		MQTTBroker:           mqttBroker,
		MQTTPort:             mqttPort,
		MQTTClientID:         envOr("MQTT_CLIENT_ID", "isthemountainout"),
		MQTTObservationTopic: envOr("MQTT_OBSERVATION_TOPIC", "mountain/observations"),
		MQTTAnnounceTopic:    envOr("MQTT_ANNOUNCE_TOPIC", "mountain/announcements"),

		KafkaBrokers: kafkaBrokers,
		KafkaTopic:   envOr("KAFKA_TOPIC", "mountain-announcements"),

		ArchiveBucket: envOr("ARCHIVE_BUCKET", ""),
		ArchivePrefix: envOr("ARCHIVE_PREFIX", "mountain-history"),
	}, nil
}

func envOr(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func envInt(key string, def int) (int, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return v, nil
}

func envFloat(key string, def float64) (float64, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return v, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return def, nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return v, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
