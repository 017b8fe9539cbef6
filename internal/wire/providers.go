package wire

import (
	"context"
	"fmt"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"gocatalog/internal/auth"
	"gocatalog/internal/catalog"
	chathandler "gocatalog/internal/chat/handler"
	"gocatalog/internal/common"
	"gocatalog/internal/config"
	"gocatalog/internal/dbmongo"
	"gocatalog/internal/dbpostgres"
	"gocatalog/internal/events"
)

type Application struct {
	Config *config.Config
	Logger *logrus.Logger
	DB     *gorm.DB
	Mongo  *dbmongo.MongoClient
	Events *events.Manager
	Hub    *chathandler.Hub
	Router *mux.Router
}

func ProvideConfig() *config.Config {
	return config.LoadConfig()
}

func ProvideLogger(cfg *config.Config) *logrus.Logger {
	return common.SetupLogger(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
}

// ProvideDatabase connects to Postgres and brings the schema up to date.
// The returned cleanup closes the connection pool.
func ProvideDatabase(cfg *config.Config) (*gorm.DB, func(), error) {
	db, err := dbpostgres.NewPostgres(cfg)
	if err != nil {
		return nil, nil, err
	}
	cleanup := closeDatabase(db)

	version, dirty, err := dbpostgres.RunMigrations(db)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}
	logrus.WithFields(logrus.Fields{"version": version, "dirty": dirty}).Info("schema migrated")
	return db, cleanup, nil
}

func closeDatabase(db *gorm.DB) func() {
	return func() {
		sqlDB, err := db.DB()
		if err != nil {
			return
		}
		if err := sqlDB.Close(); err != nil {
			logrus.WithError(err).Warn("failed to close Postgres pool")
		}
	}
}

func ProvideMongo(cfg *config.Config) (*dbmongo.MongoClient, func(), error) {
	client, err := dbmongo.NewMongoConnection(cfg)
	if err != nil {
		return nil, nil, err
	}
	return client, closeMongo(client), nil
}

func closeMongo(client *dbmongo.MongoClient) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := client.Close(ctx); err != nil {
			logrus.WithError(err).Warn("failed to disconnect MongoDB")
		}
	}
}

func ProvideGate(cfg *config.Config) (*auth.Gate, error) {
	return auth.NewGate(cfg.Auth)
}

func ProvideSession() catalog.Session {
	return auth.ContextSession{}
}

// ProvideHub returns the chat hub; its cleanup disconnects every client.
func ProvideHub() (*chathandler.Hub, func()) {
	hub := chathandler.NewHub()
	return hub, hub.Close
}

// ProvideEventManager starts the event workers and subscribes the audit log
// and the chat hub. The cleanup stops the workers.
func ProvideEventManager(cfg *config.Config, logger *logrus.Logger, hub *chathandler.Hub) (*events.Manager, func()) {
	manager := events.NewManager(cfg.Events.Workers, cfg.Events.ChannelBufferSize)
	manager.Subscribe(events.NewAuditObserver(logger))
	manager.Subscribe(hub)

	logger.WithFields(logrus.Fields{
		"workers": cfg.Events.Workers,
		"buffer":  cfg.Events.ChannelBufferSize,
		"started": time.Now().Format(time.RFC3339),
	}).Info("event manager started")
	return manager, manager.Shutdown
}
