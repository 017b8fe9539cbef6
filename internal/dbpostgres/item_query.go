package dbpostgres

import (
	"fmt"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// OrderBy is one ordering clause with explicit null placement.
type OrderBy struct {
	Column     string
	Desc       bool
	NullsFirst bool
}

// SQL renders the clause against the items table.
func (o OrderBy) SQL() string {
	dir := "ASC"
	if o.Desc {
		dir = "DESC"
	}
	nulls := "NULLS LAST"
	if o.NullsFirst {
		nulls = "NULLS FIRST"
	}
	return fmt.Sprintf("items.%s %s %s", o.Column, dir, nulls)
}

// ItemQuery is the predicate set, ordering and window for an item listing.
// Empty fields mean "no filter".
type ItemQuery struct {
	Type       string
	FolderID   string
	Tags       []string // item tags must contain all of these
	ExcludeTag string   // item tags must not contain this one
	Search     string   // websearch syntax
	OrderBy    []OrderBy
	Limit      int
}

func (q ItemQuery) scopes() []func(*gorm.DB) *gorm.DB {
	var scopes []func(*gorm.DB) *gorm.DB

	if q.Type != "" {
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
			return db.Where("items.type = ?", q.Type)
		})
	}
	if q.FolderID != "" {
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
			return db.Where("items.folder_id = ?", q.FolderID)
		})
	}
	if len(q.Tags) > 0 {
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
			return db.Where("items.tags @> ?", pq.StringArray(q.Tags))
		})
	}
	if q.ExcludeTag != "" {
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
			return db.Where("NOT (COALESCE(items.tags, '{}') @> ?)", pq.StringArray{q.ExcludeTag})
		})
	}
	if q.Search != "" {
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
			return db.Where("items.search_vector @@ websearch_to_tsquery('simple', ?)", q.Search)
		})
	}
	return scopes
}
