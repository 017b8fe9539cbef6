package catalog

import (
	"encoding/json"
	"fmt"
	"time"

	"gocatalog/internal/common"
)

// ItemInput is the payload for a new item.
type ItemInput struct {
	Type      common.ItemType   `json:"type" validate:"required,oneof=text image quote"`
	Title     *string           `json:"title" validate:"omitempty,max=500"`
	Body      *string           `json:"body"`
	ImageURL  *string           `json:"image_url"`
	MediaType *common.MediaType `json:"media_type" validate:"omitempty,oneof=image gif video"`
	Tags      TagsInput         `json:"-"`
	FolderID  *string           `json:"folder_id" validate:"omitempty,uuid"`
	IsPinned  bool              `json:"is_pinned"`
	IsDraft   bool              `json:"is_draft"`
	TakenAt   *time.Time        `json:"taken_at"`
}

func (in *ItemInput) UnmarshalJSON(data []byte) error {
	type plain ItemInput
	aux := struct {
		*plain
		Tags json.RawMessage `json:"tags"`
	}{plain: (*plain)(in)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return fmt.Errorf("%w: %v", common.ErrInvalidInput, err)
	}
	in.Tags = decodeTags(aux.Tags)
	return nil
}

// ItemPatch is a partial update. Nil fields are left untouched; the item
// type cannot be changed.
type ItemPatch struct {
	Title     *string           `json:"title" validate:"omitempty,max=500"`
	Body      *string           `json:"body"`
	ImageURL  *string           `json:"image_url"`
	MediaType *common.MediaType `json:"media_type" validate:"omitempty,oneof=image gif video"`
	Tags      TagsInput         `json:"-"`
	FolderID  *string           `json:"folder_id" validate:"omitempty,uuid"`
	IsPinned  *bool             `json:"is_pinned"`
	IsDraft   *bool             `json:"is_draft"`
	TakenAt   *time.Time        `json:"taken_at"`
}

func (p *ItemPatch) UnmarshalJSON(data []byte) error {
	type plain ItemPatch
	aux := struct {
		*plain
		Tags json.RawMessage `json:"tags"`
	}{plain: (*plain)(p)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return fmt.Errorf("%w: %v", common.ErrInvalidInput, err)
	}
	p.Tags = decodeTags(aux.Tags)
	return nil
}

func (p ItemPatch) empty() bool {
	return p.Title == nil && p.Body == nil && p.ImageURL == nil && p.MediaType == nil &&
		p.Tags == nil && p.FolderID == nil && p.IsPinned == nil && p.IsDraft == nil && p.TakenAt == nil
}

type FolderInput struct {
	Name         string   `json:"name" validate:"required,max=120"`
	ParentID     *string  `json:"parent_id" validate:"omitempty,uuid"`
	ContentTypes []string `json:"content_types" validate:"omitempty,dive,oneof=text image quote"`
}

// FolderPatch renames, moves or retypes a folder. An empty ParentID moves the
// folder to the root.
type FolderPatch struct {
	Name         *string   `json:"name" validate:"omitempty,max=120"`
	ParentID     *string   `json:"parent_id" validate:"omitempty,uuid"`
	ContentTypes *[]string `json:"content_types" validate:"omitempty,dive,oneof=text image quote"`
}
