package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gocatalog/internal/catalog"
	"gocatalog/internal/common"
	"gocatalog/internal/dbpostgres"
)

const defaultHistoryLimit = 50

// Message is the chat view of a chat-tagged text item.
type Message struct {
	ID     string    `json:"id"`
	Author string    `json:"author"`
	Body   string    `json:"body"`
	SentAt time.Time `json:"sent_at"`
}

// Catalog is the slice of the catalog service chat is built on.
type Catalog interface {
	GetItems(ctx context.Context, q catalog.Query) (*catalog.ItemsResult, error)
	CreateItem(ctx context.Context, in catalog.ItemInput) (*dbpostgres.Item, error)
}

type ChatService interface {
	PostMessage(ctx context.Context, author, body string) (*Message, error)
	History(ctx context.Context, limit int) ([]*Message, int64, error)
}

type chatService struct {
	catalog Catalog
}

func NewChatService(c Catalog) ChatService {
	return &chatService{catalog: c}
}

// PostMessage stores body as a text item tagged chat, with the author kept in
// the title.
func (s *chatService) PostMessage(ctx context.Context, author, body string) (*Message, error) {
	author = strings.TrimSpace(author)
	if author == "" {
		return nil, fmt.Errorf("%w: author cannot be empty", common.ErrInvalidInput)
	}
	if strings.TrimSpace(body) == "" {
		return nil, fmt.Errorf("%w: message cannot be empty", common.ErrInvalidInput)
	}

	item, err := s.catalog.CreateItem(ctx, catalog.ItemInput{
		Type:  common.ItemTypeText,
		Title: &author,
		Body:  &body,
		Tags:  catalog.Tags{common.ChatTag},
	})
	if err != nil {
		return nil, err
	}
	return MessageFromItem(item), nil
}

// History returns the newest messages first along with the total number of
// chat messages.
func (s *chatService) History(ctx context.Context, limit int) ([]*Message, int64, error) {
	if limit == 0 {
		limit = defaultHistoryLimit
	}
	result, err := s.catalog.GetItems(ctx, catalog.Query{
		Tags:  catalog.Tags{common.ChatTag},
		Sort:  catalog.SortCreatedAtDesc,
		Limit: limit,
	})
	if err != nil {
		return nil, 0, err
	}

	messages := make([]*Message, 0, len(result.Items))
	for i := range result.Items {
		messages = append(messages, MessageFromItem(&result.Items[i]))
	}
	return messages, result.Count, nil
}

func MessageFromItem(item *dbpostgres.Item) *Message {
	msg := &Message{ID: item.ID, SentAt: item.CreatedAt}
	if item.Title != nil {
		msg.Author = *item.Title
	}
	if item.Body != nil {
		msg.Body = *item.Body
	}
	return msg
}
