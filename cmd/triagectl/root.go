package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/sngm3741/makoto-club-services/triage/internal/config"
	mongodoc "github.com/sngm3741/makoto-club-services/triage/internal/infrastructure/mongo"
	"github.com/sngm3741/makoto-club-services/triage/internal/triage/analysis"
	"github.com/sngm3741/makoto-club-services/triage/internal/triage/application"
)

type rootOptions struct {
	envFile  string
	mongoURI string
	mongoDB  string
	logLevel string
	timeout  time.Duration

	logger *zap.Logger
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "triagectl",
		Short:         "Operate the feedback triage store from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if opts.envFile != "" {
				if err := loadEnvFile(opts.envFile); err != nil {
					return err
				}
			}
			logger, err := config.NewLogger(firstNonEmpty(opts.logLevel, os.Getenv("LOG_LEVEL")), "console")
			if err != nil {
				return err
			}
			opts.logger = logger
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if opts.logger != nil {
				_ = opts.logger.Sync()
			}
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.envFile, "env-file", "", "load KEY=VALUE pairs from this file before running")
	flags.StringVar(&opts.mongoURI, "mongo-uri", "", "MongoDB URI (default $MONGO_URI or mongodb://localhost:27017)")
	flags.StringVar(&opts.mongoDB, "mongo-db", "", "MongoDB database (default $MONGO_DB or feedback-triage)")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.DurationVar(&opts.timeout, "timeout", 2*time.Minute, "overall timeout for store operations")

	cmd.AddCommand(
		newClassifyCommand(opts),
		newSeedCommand(opts),
		newExportCommand(opts),
		newSweepCommand(opts),
		newLexiconCommand(),
	)
	return cmd
}

// storeSession bundles a connected mongo repository with its service.
type storeSession struct {
	client  *mongo.Client
	repo    *mongodoc.FeedbackRepository
	service application.TriageService
}

func (o *rootOptions) openStore(ctx context.Context, svcCfg application.ServiceConfig) (*storeSession, error) {
	uri := firstNonEmpty(o.mongoURI, os.Getenv("MONGO_URI"), "mongodb://localhost:27017")
	dbName := firstNonEmpty(o.mongoDB, os.Getenv("MONGO_DB"), "feedback-triage")

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	repo := mongodoc.NewFeedbackRepository(
		client.Database(dbName),
		firstNonEmpty(os.Getenv("FEEDBACK_COLLECTION"), "feedback"),
		firstNonEmpty(os.Getenv("ANALYSIS_COLLECTION"), "sentiment_analyses"),
	)

	if svcCfg.Classifier == nil {
		classifier, err := analysis.NewLexicalClassifier(analysis.DefaultLexicon())
		if err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		svcCfg.Classifier = classifier
	}
	svcCfg.Repository = repo
	svcCfg.Logger = o.logger
	svc, err := application.NewTriageService(svcCfg)
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	o.logger.Debug("connected to mongo", zap.String("db", dbName))
	return &storeSession{client: client, repo: repo, service: svc}, nil
}

func (s *storeSession) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.client.Disconnect(ctx)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
