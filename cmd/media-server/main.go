package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"gocatalog/internal/common"
	"gocatalog/internal/config"
	"gocatalog/internal/dbmongo"
	"gocatalog/internal/media"
)

func main() {
	cfg := config.LoadConfig()
	logger := common.SetupLogger(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)

	mongoClient, err := dbmongo.NewMongoConnection(cfg)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to MongoDB")
	}

	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.MediaServicePort),
		Handler: media.NewHTTPServer(dbmongo.NewMediaStorage(mongoClient)),
	}

	go func() {
		logger.WithFields(logrus.Fields{
			"addr":     server.Addr,
			"base_url": cfg.Server.MediaBaseURL,
		}).Info("media server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("media server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Warn("media server forced to shutdown")
	}
	if err := mongoClient.Close(ctx); err != nil {
		logger.WithError(err).Warn("failed to disconnect MongoDB")
	}
	logger.Info("media server stopped")
}
