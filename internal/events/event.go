package events

import (
	"time"

	"gocatalog/internal/common"
	"gocatalog/internal/dbpostgres"
)

type EventType string

const (
	ItemCreated EventType = "item.created"
	ItemUpdated EventType = "item.updated"
	ItemDeleted EventType = "item.deleted"
	ItemReacted EventType = "item.reacted"
)

// ItemEvent describes one change to the catalog. Item is nil for deletes
// and reactions.
type ItemEvent struct {
	Type     EventType
	ItemID   string
	Item     *dbpostgres.Item
	Reaction common.ReactionKind
	At       time.Time
}

type Observer interface {
	Update(event ItemEvent) error
	Name() string
}

type Subject interface {
	Subscribe(observer Observer)
	Unsubscribe(observer Observer)
	Notify(event ItemEvent)
	NotifyAsync(event ItemEvent)
}
