package dbpostgres

import (
	"time"

	"github.com/lib/pq"
)

type Folder struct {
	ID           string         `gorm:"primaryKey;type:uuid;column:id" json:"id"`
	Name         string         `gorm:"column:name;not null" json:"name"`
	Slug         string         `gorm:"column:slug;not null" json:"slug"`
	ParentID     *string        `gorm:"column:parent_id;type:uuid" json:"parent_id"`
	Path         string         `gorm:"column:path;not null" json:"path"`
	Level        int            `gorm:"column:level;not null" json:"level"`
	ContentTypes pq.StringArray `gorm:"column:content_types;type:text[]" json:"content_types"`
	CreatedAt    time.Time      `gorm:"column:created_at" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"column:updated_at" json:"updated_at"`
}

func (Folder) TableName() string {
	return "folders"
}

// Accepts reports whether the folder's allow-list admits itemType.
// An empty allow-list accepts every type.
func (f *Folder) Accepts(itemType string) bool {
	if len(f.ContentTypes) == 0 {
		return true
	}
	for _, t := range f.ContentTypes {
		if t == itemType {
			return true
		}
	}
	return false
}
