package catalog

import (
	"context"

	"gocatalog/internal/common"
	"gocatalog/internal/dbpostgres"
	"gocatalog/internal/events"
)

//go:generate mockgen -source=repository.go -destination=mock_repository.go -package=catalog

// ItemRepository is the item storage the service runs against.
type ItemRepository interface {
	QueryItems(ctx context.Context, q dbpostgres.ItemQuery) ([]dbpostgres.Item, int64, error)
	GetItemByID(ctx context.Context, id string) (*dbpostgres.Item, error)
	CreateItem(ctx context.Context, item *dbpostgres.Item) error
	UpdateItem(ctx context.Context, id string, updates map[string]interface{}) (*dbpostgres.Item, error)
	DeleteItem(ctx context.Context, id string) error
	IncrementReaction(ctx context.Context, id string, kind common.ReactionKind) error
}

type FolderRepository interface {
	ListFolders(ctx context.Context) ([]dbpostgres.Folder, error)
	GetFolderByID(ctx context.Context, id string) (*dbpostgres.Folder, error)
	CreateFolder(ctx context.Context, folder *dbpostgres.Folder) error
	UpdateFolder(ctx context.Context, folder *dbpostgres.Folder, oldPath string, levelDelta int) error
	DeleteFolder(ctx context.Context, folder *dbpostgres.Folder) error
}

// URLResolver turns a stored media path into a fetchable URL.
type URLResolver interface {
	PublicURL(path string) string
}

// Session reports whether the current caller is signed in.
type Session interface {
	Authenticated(ctx context.Context) bool
}

// Publisher receives item change events.
type Publisher interface {
	NotifyAsync(event events.ItemEvent)
}
