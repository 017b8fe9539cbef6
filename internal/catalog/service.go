package catalog

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"gocatalog/internal/common"
	"gocatalog/internal/config"
	"gocatalog/internal/dbpostgres"
	"gocatalog/internal/events"
)

const (
	previewRunes     = 200
	previewEllipsis  = "…"
	defaultQueryWait = 30 * time.Second
)

// ItemsResult is one page of a listing plus the total number of matches.
type ItemsResult struct {
	Items []dbpostgres.Item `json:"items"`
	Count int64             `json:"count"`
}

type Service struct {
	items        ItemRepository
	folders      FolderRepository
	resolver     URLResolver
	session      Session
	publisher    Publisher
	timeout      time.Duration
	defaultLimit int
}

func NewService(
	items ItemRepository,
	folders FolderRepository,
	resolver URLResolver,
	session Session,
	publisher Publisher,
	cfg *config.Config,
) *Service {
	s := &Service{
		items:        items,
		folders:      folders,
		resolver:     resolver,
		session:      session,
		publisher:    publisher,
		timeout:      defaultQueryWait,
		defaultLimit: DefaultLimit,
	}
	if cfg != nil {
		if cfg.Catalog.QueryTimeout > 0 {
			s.timeout = cfg.Catalog.QueryTimeout
		}
		if cfg.Catalog.DefaultLimit > 0 {
			s.defaultLimit = cfg.Catalog.DefaultLimit
		}
	}
	return s
}

// --------- ITEMS ---------

// GetItems runs a listing query. The returned count ignores the limit.
func (s *Service) GetItems(ctx context.Context, q Query) (*ItemsResult, error) {
	plan, err := BuildItemQuery(q, s.defaultLimit)
	if err != nil {
		return nil, err
	}
	if q.Cursor != "" {
		logrus.WithField("cursor", q.Cursor).Debug("cursor pagination is not supported, ignoring cursor")
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	items, count, err := s.items.QueryItems(ctx, plan)
	if err != nil {
		return nil, fmt.Errorf("get items: %w", err)
	}
	if items == nil {
		items = []dbpostgres.Item{}
	}
	for i := range items {
		s.resolveMedia(&items[i])
	}
	return &ItemsResult{Items: items, Count: count}, nil
}

func (s *Service) GetItem(ctx context.Context, id string) (*dbpostgres.Item, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: id is required", common.ErrInvalidInput)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	item, err := s.items.GetItemByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.resolveMedia(item)
	return item, nil
}

func (s *Service) CreateItem(ctx context.Context, in ItemInput) (*dbpostgres.Item, error) {
	if err := s.requireSession(ctx); err != nil {
		return nil, err
	}
	if err := common.ValidateStruct(in); err != nil {
		return nil, err
	}
	if in.Type.HasBody() && (in.Body == nil || strings.TrimSpace(*in.Body) == "") {
		return nil, fmt.Errorf("%w: body is required for %s items", common.ErrInvalidInput, in.Type)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var folderID *string
	if in.FolderID != nil && *in.FolderID != "" {
		if err := s.checkFolderAccepts(ctx, *in.FolderID, in.Type); err != nil {
			return nil, err
		}
		folderID = in.FolderID
	}

	now := time.Now()
	tags := NormalizeTags(in.Tags)
	item := &dbpostgres.Item{
		ID:        uuid.NewString(),
		Type:      in.Type.String(),
		Title:     in.Title,
		Body:      in.Body,
		ImageURL:  in.ImageURL,
		Tags:      tagArray(tags),
		FolderID:  folderID,
		IsPinned:  in.IsPinned,
		IsDraft:   in.IsDraft,
		Reactions: datatypes.NewJSONType(dbpostgres.Reactions{}),
		TakenAt:   in.TakenAt,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if in.Type == common.ItemTypeImage {
		mt := common.MediaTypeImage
		if in.MediaType != nil {
			mt = *in.MediaType
		}
		item.MediaType = stringPtr(mt.String())
	}
	if in.Body != nil {
		item.Preview = previewPtr(*in.Body)
		if in.Type.HasBody() && !containsTag(tags, common.ChatTag) {
			item.Hash = stringPtr(ContentHash(*in.Body))
		}
	}

	if err := s.items.CreateItem(ctx, item); err != nil {
		return nil, err
	}

	s.resolveMedia(item)
	s.publish(events.ItemCreated, item.ID, item, "")
	return item, nil
}

// UpdateItem writes only the fields set in patch.
func (s *Service) UpdateItem(ctx context.Context, id string, patch ItemPatch) (*dbpostgres.Item, error) {
	if err := s.requireSession(ctx); err != nil {
		return nil, err
	}
	if err := common.ValidateStruct(patch); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	current, err := s.items.GetItemByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.empty() {
		s.resolveMedia(current)
		return current, nil
	}

	itemType := common.ItemType(current.Type)
	updates := make(map[string]interface{})

	if patch.Title != nil {
		updates["title"] = *patch.Title
	}
	if patch.ImageURL != nil {
		updates["image_url"] = *patch.ImageURL
	}
	if patch.MediaType != nil && itemType == common.ItemTypeImage {
		updates["media_type"] = patch.MediaType.String()
	}
	if patch.IsPinned != nil {
		updates["is_pinned"] = *patch.IsPinned
	}
	if patch.IsDraft != nil {
		updates["is_draft"] = *patch.IsDraft
	}
	if patch.TakenAt != nil {
		updates["taken_at"] = *patch.TakenAt
	}

	tags := []string(current.Tags)
	if patch.Tags != nil {
		tags = NormalizeTags(patch.Tags)
		updates["tags"] = tagArray(tags)
	}

	if patch.FolderID != nil {
		if *patch.FolderID == "" {
			updates["folder_id"] = nil
		} else {
			if err := s.checkFolderAccepts(ctx, *patch.FolderID, itemType); err != nil {
				return nil, err
			}
			updates["folder_id"] = *patch.FolderID
		}
	}

	if patch.Body != nil {
		if itemType.HasBody() && strings.TrimSpace(*patch.Body) == "" {
			return nil, fmt.Errorf("%w: body is required for %s items", common.ErrInvalidInput, itemType)
		}
		updates["body"] = *patch.Body
		updates["preview"] = previewPtr(*patch.Body)
	}

	// the hash follows both the body and the chat tag
	if itemType.HasBody() && (patch.Body != nil || patch.Tags != nil) {
		body := current.Body
		if patch.Body != nil {
			body = patch.Body
		}
		switch {
		case containsTag(tags, common.ChatTag) || body == nil:
			updates["hash"] = nil
		default:
			updates["hash"] = ContentHash(*body)
		}
	}

	updates["updated_at"] = time.Now()

	item, err := s.items.UpdateItem(ctx, id, updates)
	if err != nil {
		return nil, err
	}

	s.resolveMedia(item)
	s.publish(events.ItemUpdated, item.ID, item, "")
	return item, nil
}

// DeleteItem is idempotent.
func (s *Service) DeleteItem(ctx context.Context, id string) error {
	if err := s.requireSession(ctx); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.items.DeleteItem(ctx, id); err != nil {
		return err
	}
	s.publish(events.ItemDeleted, id, nil, "")
	return nil
}

// --------- REACTIONS ---------

func (s *Service) AddReaction(ctx context.Context, id string, kind common.ReactionKind) error {
	if !kind.IsValid() {
		return fmt.Errorf("%w: unknown reaction %q", common.ErrInvalidInput, kind)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.items.IncrementReaction(ctx, id, kind); err != nil {
		return err
	}
	s.publish(events.ItemReacted, id, nil, kind)
	return nil
}

// --------- helpers ---------

func (s *Service) requireSession(ctx context.Context) error {
	if s.session == nil || !s.session.Authenticated(ctx) {
		return common.ErrUnauthenticated
	}
	return nil
}

func (s *Service) checkFolderAccepts(ctx context.Context, folderID string, itemType common.ItemType) error {
	folder, err := s.folders.GetFolderByID(ctx, folderID)
	if errors.Is(err, common.ErrNotFound) {
		return fmt.Errorf("%w: folder %s does not exist", common.ErrInvalidInput, folderID)
	}
	if err != nil {
		return err
	}
	if !folder.Accepts(itemType.String()) {
		return fmt.Errorf("%w: folder %q does not accept %s items", common.ErrInvalidInput, folder.Name, itemType)
	}
	return nil
}

func (s *Service) resolveMedia(item *dbpostgres.Item) {
	if item == nil || item.ImageURL == nil || *item.ImageURL == "" || s.resolver == nil {
		return
	}
	resolved := s.resolver.PublicURL(*item.ImageURL)
	item.ImageURL = &resolved
}

func (s *Service) publish(eventType events.EventType, id string, item *dbpostgres.Item, kind common.ReactionKind) {
	if s.publisher == nil {
		return
	}
	event := events.ItemEvent{
		Type:     eventType,
		ItemID:   id,
		Reaction: kind,
		At:       time.Now(),
	}
	if item != nil {
		cp := *item
		event.Item = &cp
	}
	s.publisher.NotifyAsync(event)
}

// Preview is the first 200 runes of body, trimmed, with an ellipsis when cut.
func Preview(body string) string {
	trimmed := strings.TrimSpace(body)
	if utf8.RuneCountInString(trimmed) <= previewRunes {
		return trimmed
	}
	runes := []rune(trimmed)
	return strings.TrimSpace(string(runes[:previewRunes])) + previewEllipsis
}

// ContentHash is the hex SHA-256 of body.
func ContentHash(body string) string {
	sum := sha256.Sum256([]byte(body))
	return hex.EncodeToString(sum[:])
}

func previewPtr(body string) *string {
	p := Preview(body)
	if p == "" {
		return nil
	}
	return &p
}

func stringPtr(s string) *string {
	return &s
}

func tagArray(tags []string) pq.StringArray {
	if tags == nil {
		return pq.StringArray{}
	}
	return pq.StringArray(tags)
}
