package dbpostgres

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// Reactions is the fixed four-slot counter map stored as JSONB.
type Reactions struct {
	Heart    int `json:"heart"`
	Eyes     int `json:"eyes"`
	Grinning int `json:"grinning"`
	Bird     int `json:"bird"`
}

// item.go
type Item struct {
	ID        string                        `gorm:"primaryKey;type:uuid;column:id" json:"id"`
	Type      string                        `gorm:"column:type;not null" json:"type"`
	Title     *string                       `gorm:"column:title" json:"title"`
	Body      *string                       `gorm:"column:body" json:"body"`
	Preview   *string                       `gorm:"column:preview" json:"preview"`
	ImageURL  *string                       `gorm:"column:image_url" json:"image_url"`
	MediaType *string                       `gorm:"column:media_type" json:"media_type"`
	Tags      pq.StringArray                `gorm:"column:tags;type:text[]" json:"tags"`
	FolderID  *string                       `gorm:"column:folder_id;type:uuid" json:"folder_id"`
	IsPinned  bool                          `gorm:"column:is_pinned" json:"is_pinned"`
	IsDraft   bool                          `gorm:"column:is_draft" json:"is_draft"`
	Hash      *string                       `gorm:"column:hash" json:"hash,omitempty"`
	Reactions datatypes.JSONType[Reactions] `gorm:"column:reactions;type:jsonb" json:"reactions"`
	TakenAt   *time.Time                    `gorm:"column:taken_at" json:"taken_at"`
	CreatedAt time.Time                     `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time                     `gorm:"column:updated_at" json:"updated_at"`

	Folder *Folder `gorm:"foreignKey:FolderID" json:"folder,omitempty"`
}

func (Item) TableName() string {
	return "items"
}

// HasTag reports whether the item carries tag exactly.
func (i *Item) HasTag(tag string) bool {
	for _, t := range i.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
