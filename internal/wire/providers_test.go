package wire

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"gocatalog/internal/config"
	"gocatalog/internal/dbmongo"
	"gocatalog/internal/events"
)

func TestCloseDatabase_ReleasesPool(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	mock.ExpectClose()
	closeDatabase(db)()

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCloseMongo_Disconnects(t *testing.T) {
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI("mongodb://localhost:27017/catalog"))
	require.NoError(t, err)

	closeMongo(&dbmongo.MongoClient{Client: client})()

	// a second disconnect reports the first one already happened
	assert.ErrorIs(t, client.Disconnect(context.Background()), mongo.ErrClientDisconnected)
}

func TestProvideEventManager_CleanupStopsWorkers(t *testing.T) {
	cfg := &config.Config{Events: config.EventsConfig{Workers: 2, ChannelBufferSize: 4}}
	hub, closeHub := ProvideHub()
	manager, shutdown := ProvideEventManager(cfg, logrus.New(), hub)

	done := make(chan struct{})
	go func() {
		shutdown()
		closeHub()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("cleanup did not return")
	}

	assert.NotPanics(t, func() {
		manager.NotifyAsync(events.ItemEvent{Type: events.ItemCreated, ItemID: "late"})
	})
	assert.Equal(t, 0, hub.ClientCount())
}
