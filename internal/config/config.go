package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// JWTConfig defines issuer/secret pair for auth verification.
type JWTConfig struct {
	Issuer string
	Secret []byte
}

// Store drivers.
const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

// Config holds runtime configuration shared across the application.
type Config struct {
	Addr               string
	StoreDriver        string
	MongoURI           string
	MongoDatabase      string
	FeedbackCollection string
	AnalysisCollection string
	Timeout            time.Duration
	Timezone           string
	Logger             *zap.Logger
	JWTConfigs         []JWTConfig
	JWTAudience        string
	AllowedOrigins     []string

	LexiconPath  string
	LexiconWatch bool
	AutoAnalyze  bool

	SweepSchedule    string
	SweepBatchSize   int
	SweepConcurrency int

	SlackWebhookURL  string
	SlackTimeout     time.Duration
	DashboardBaseURL string
}

// Load reads environment variables and returns a fully populated Config.
func Load() (Config, error) {
	timeout, err := durationOrDefault("MONGO_CONNECT_TIMEOUT", 10*time.Second)
	if err != nil {
		return Config{}, err
	}
	slackTimeout, err := durationOrDefault("SLACK_TIMEOUT", 5*time.Second)
	if err != nil {
		return Config{}, err
	}

	secret := strings.TrimSpace(os.Getenv("AUTH_JWT_SECRET"))
	if secret == "" {
		return Config{}, errors.New("AUTH_JWT_SECRET must be configured")
	}

	driver := strings.ToLower(envOrDefault("STORE_DRIVER", StoreMongo))
	if driver != StoreMongo && driver != StoreMemory {
		return Config{}, fmt.Errorf("STORE_DRIVER: unsupported value %q", driver)
	}

	batchSize, err := intOrDefault("SWEEP_BATCH_SIZE", 50)
	if err != nil {
		return Config{}, err
	}
	concurrency, err := intOrDefault("SWEEP_CONCURRENCY", 4)
	if err != nil {
		return Config{}, err
	}
	lexiconWatch, err := boolOrDefault("LEXICON_WATCH", true)
	if err != nil {
		return Config{}, err
	}
	autoAnalyze, err := boolOrDefault("TRIAGE_AUTO_ANALYZE", false)
	if err != nil {
		return Config{}, err
	}

	logger, err := NewLogger(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Addr:               envOrDefault("HTTP_ADDR", ":8080"),
		StoreDriver:        driver,
		MongoURI:           envOrDefault("MONGO_URI", "mongodb://mongo:27017"),
		MongoDatabase:      envOrDefault("MONGO_DB", "feedback-triage"),
		FeedbackCollection: envOrDefault("FEEDBACK_COLLECTION", "feedback"),
		AnalysisCollection: envOrDefault("ANALYSIS_COLLECTION", "sentiment_analyses"),
		Timeout:            timeout,
		Timezone:           envOrDefault("TIMEZONE", "UTC"),
		Logger:             logger,
		JWTConfigs: []JWTConfig{{
			Issuer: envOrDefault("AUTH_JWT_ISSUER", "feedback-triage-auth"),
			Secret: []byte(secret),
		}},
		JWTAudience:      strings.TrimSpace(os.Getenv("AUTH_JWT_AUDIENCE")),
		AllowedOrigins:   parseList("API_ALLOWED_ORIGINS", []string{"*"}),
		LexiconPath:      strings.TrimSpace(os.Getenv("LEXICON_PATH")),
		LexiconWatch:     lexiconWatch,
		AutoAnalyze:      autoAnalyze,
		SweepSchedule:    envOrDefault("SWEEP_SCHEDULE", "*/5 * * * *"),
		SweepBatchSize:   batchSize,
		SweepConcurrency: concurrency,
		SlackWebhookURL:  strings.TrimSpace(os.Getenv("SLACK_WEBHOOK_URL")),
		SlackTimeout:     slackTimeout,
		DashboardBaseURL: strings.TrimSpace(os.Getenv("DASHBOARD_BASE_URL")),
	}
	if strings.EqualFold(strings.TrimSpace(os.Getenv("SWEEP_SCHEDULE")), "off") {
		cfg.SweepSchedule = ""
	}

	cfg.Logger.Info("loaded config",
		zap.String("addr", cfg.Addr),
		zap.String("storeDriver", cfg.StoreDriver),
		zap.String("lexiconPath", cfg.LexiconPath),
		zap.String("sweepSchedule", cfg.SweepSchedule),
		zap.Bool("autoAnalyze", cfg.AutoAnalyze),
		zap.Bool("slackEnabled", cfg.SlackWebhookURL != ""),
	)

	return cfg, nil
}

// NewLogger builds the production zap logger. level "debug" lowers the
// threshold and format "console" switches to the development encoder.
func NewLogger(level, format string) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if strings.EqualFold(strings.TrimSpace(format), "console") {
		zcfg = zap.NewDevelopmentConfig()
	}
	if level = strings.TrimSpace(level); level != "" {
		var lvl zapcore.Level
		if err := lvl.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
			return nil, fmt.Errorf("LOG_LEVEL: %w", err)
		}
		zcfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	logger, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger.Named("triage"), nil
}

func envOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func durationOrDefault(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil || parsed <= 0 {
		return 0, fmt.Errorf("%s: invalid duration %q", key, raw)
	}
	return parsed, nil
}

func intOrDefault(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return 0, fmt.Errorf("%s: must be a positive integer, got %q", key, raw)
	}
	return parsed, nil
}

func boolOrDefault(key string, fallback bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s: must be true or false, got %q", key, raw)
	}
	return parsed, nil
}

func parseList(key string, fallback []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			values = append(values, part)
		}
	}

	if len(values) == 0 {
		return fallback
	}
	return values
}
