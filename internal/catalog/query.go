package catalog

import (
	"encoding/json"
	"fmt"
	"strings"

	"gocatalog/internal/common"
	"gocatalog/internal/dbpostgres"
)

// SortMode selects the listing order. Pinned items always come first.
type SortMode string

const (
	SortCreatedAtDesc SortMode = "created_at_desc"
	SortCreatedAtAsc  SortMode = "created_at_asc"
	SortTitleAsc      SortMode = "title_asc"
)

const DefaultLimit = 20

// Query describes an item listing. Zero-valued fields mean "no filter".
type Query struct {
	Type   FieldInput
	Q      string
	Folder FieldInput
	Tags   TagsInput
	Limit  int
	Cursor string // accepted, not applied
	Sort   SortMode
}

type queryJSON struct {
	Type   json.RawMessage `json:"type"`
	Q      string          `json:"q"`
	Folder json.RawMessage `json:"folder"`
	Tags   json.RawMessage `json:"tags"`
	Limit  int             `json:"limit"`
	Cursor string          `json:"cursor"`
	Sort   SortMode        `json:"sort"`
}

// UnmarshalJSON accepts widget-shaped values for type, folder and tags.
func (q *Query) UnmarshalJSON(data []byte) error {
	var raw queryJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", common.ErrInvalidInput, err)
	}
	*q = Query{
		Type:   decodeField(raw.Type),
		Q:      raw.Q,
		Folder: decodeField(raw.Folder),
		Tags:   decodeTags(raw.Tags),
		Limit:  raw.Limit,
		Cursor: raw.Cursor,
		Sort:   raw.Sort,
	}
	return nil
}

// BuildItemQuery normalizes q into the repository's query plan.
func BuildItemQuery(q Query, defaultLimit int) (dbpostgres.ItemQuery, error) {
	if q.Limit < 0 {
		return dbpostgres.ItemQuery{}, fmt.Errorf("%w: limit must be a positive integer", common.ErrInvalidInput)
	}
	limit := q.Limit
	if limit == 0 {
		limit = defaultLimit
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	tags := NormalizeTags(q.Tags)
	search := strings.TrimSpace(q.Q)

	plan := dbpostgres.ItemQuery{
		Type:     NormalizeItemType(q.Type).String(),
		FolderID: NormalizeID(q.Folder),
		Tags:     tags,
		Search:   search,
		OrderBy:  orderFor(q.Sort),
		Limit:    limit,
	}

	// chat messages stay out of catalog views unless asked for
	if !containsTag(tags, common.ChatTag) && search == "" {
		plan.ExcludeTag = common.ChatTag
	}
	return plan, nil
}

func orderFor(mode SortMode) []dbpostgres.OrderBy {
	order := []dbpostgres.OrderBy{{Column: "is_pinned", Desc: true}}
	switch mode {
	case SortTitleAsc:
		return append(order, dbpostgres.OrderBy{Column: "title", NullsFirst: true})
	case SortCreatedAtAsc:
		return append(order, dbpostgres.OrderBy{Column: "created_at"})
	default:
		return append(order,
			dbpostgres.OrderBy{Column: "taken_at", Desc: true},
			dbpostgres.OrderBy{Column: "created_at", Desc: true},
		)
	}
}

func containsTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}
