package main

import (
	"context"
	"fmt"
	"os"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/sngm3741/makoto-club-services/triage/internal/config"
	"github.com/sngm3741/makoto-club-services/triage/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger := cfg.Logger

	var client *mongo.Client
	if cfg.StoreDriver == config.StoreMongo {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
		defer cancel()

		clientOptions := options.Client().ApplyURI(cfg.MongoURI).SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1))
		client, err = mongo.Connect(ctx, clientOptions)
		if err != nil {
			logger.Fatal("failed to connect to MongoDB", zap.Error(err))
		}
	}

	app, err := server.New(cfg, client)
	if err != nil {
		logger.Fatal("failed to build server", zap.Error(err))
	}
	if err := app.Run(cfg.LexiconWatch); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
