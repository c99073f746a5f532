package main

import (
	"context"
	"fmt"

	"femflow/internal/domain/cycle"
	"femflow/internal/infra/config"
	idb "femflow/internal/infra/database"
	"femflow/internal/infra/logger"
)

// store is an opened record repository plus its teardown.
type store struct {
	repo   cycle.Repository
	target string
	close  func()
}

func mongoConfig(c *config.AppConfig) idb.MongoConfig {
	return idb.MongoConfig{
		URI:            c.MongoURI,
		Database:       c.MongoDatabase,
		Collection:     c.MongoCollection,
		ConnectTimeout: c.MongoConnectTimeout,
	}
}

func openMongo(ctx context.Context, c *config.AppConfig) (*idb.MongoRecordRepository, *store, error) {
	mc := mongoConfig(c)
	client, err := idb.NewMongoConnection(ctx, mc)
	if err != nil {
		return nil, nil, err
	}
	log := logger.Component("mongo").WithField("database", mc.Database)
	log.Info("MongoDB connection established")

	repo := idb.NewMongoRecordRepository(idb.Collection(client, mc))
	return repo, &store{
		repo:   repo,
		target: mc.Database + "." + mc.Collection,
		close: func() {
			if err := client.Disconnect(context.Background()); err != nil {
				log.WithError(err).Warn("Could not disconnect from MongoDB")
			}
		},
	}, nil
}

func openPostgres(ctx context.Context, c *config.AppConfig) (*store, error) {
	pc := idb.PostgresConfig{DSN: c.DatabaseURL, Table: c.PostgresTable}
	db, err := idb.NewPostgresConnection(ctx, pc)
	if err != nil {
		return nil, err
	}
	log := logger.Component("postgres").WithField("table", pc.Table)
	log.Info("PostgreSQL connection established")

	repo := idb.NewPostgresRecordRepository(db, pc)
	if err := repo.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return &store{
		repo:   repo,
		target: pc.Table,
		close: func() {
			if err := db.Close(); err != nil {
				log.WithError(err).Warn("Could not close PostgreSQL connection")
			}
		},
	}, nil
}

// openStore connects to the backend named by c.SeedBackend.
func openStore(ctx context.Context, c *config.AppConfig) (*store, error) {
	switch c.SeedBackend {
	case config.BackendMongo:
		_, s, err := openMongo(ctx, c)
		return s, err
	case config.BackendPostgres:
		return openPostgres(ctx, c)
	default:
		return nil, fmt.Errorf("unknown backend %q", c.SeedBackend)
	}
}
