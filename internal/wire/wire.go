//go:build wireinject
// +build wireinject

package wire

import (
	"github.com/google/wire"

	"gocatalog/internal/auth"
	"gocatalog/internal/catalog"
	chathandler "gocatalog/internal/chat/handler"
	chatservice "gocatalog/internal/chat/service"
	"gocatalog/internal/dbmongo"
	"gocatalog/internal/dbpostgres"
	"gocatalog/internal/events"
	"gocatalog/internal/media"
)

var storageSet = wire.NewSet(
	ProvideDatabase,
	ProvideMongo,
	dbpostgres.NewItemRepository,
	dbpostgres.NewFolderRepository,
	dbmongo.NewMediaStorage,
	wire.Bind(new(catalog.ItemRepository), new(*dbpostgres.ItemRepository)),
	wire.Bind(new(catalog.FolderRepository), new(*dbpostgres.FolderRepository)),
	wire.Bind(new(media.FileStore), new(*dbmongo.MediaStorage)),
)

var catalogSet = wire.NewSet(
	media.NewResolverFromConfig,
	ProvideSession,
	catalog.NewService,
	catalog.NewHandler,
	wire.Bind(new(catalog.URLResolver), new(*media.Resolver)),
	wire.Bind(new(catalog.Publisher), new(*events.Manager)),
	wire.Bind(new(catalog.ItemService), new(*catalog.Service)),
)

var chatSet = wire.NewSet(
	ProvideHub,
	chatservice.NewChatService,
	chathandler.NewChatHandler,
	wire.Bind(new(chatservice.Catalog), new(*catalog.Service)),
)

func InitializeApplication() (*Application, func(), error) {
	wire.Build(
		ProvideConfig,
		ProvideLogger,
		ProvideEventManager,
		ProvideGate,
		auth.NewHandler,
		media.NewUploadHandler,
		storageSet,
		catalogSet,
		chatSet,
		NewRouter,
		wire.Struct(new(Application), "*"),
	)
	return &Application{}, nil, nil
}
