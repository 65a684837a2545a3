package db

import (
	"context"
	"errors"
	"strings"

	"github.com/jjudge-oj/accounts/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// OpenMongo connects to MongoDB and returns the configured database.
// Callers disconnect through db.Client().
func OpenMongo(ctx context.Context, cfg config.MongoConfig) (*mongo.Database, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, errors.New("mongodb url is required")
	}
	if strings.TrimSpace(cfg.Database) == "" {
		return nil, errors.New("mongodb database is required")
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URL))
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultPingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	return client.Database(cfg.Database), nil
}
