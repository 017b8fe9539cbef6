package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gocatalog/internal/auth"
	"gocatalog/internal/chat/service"
	"gocatalog/internal/common"
	"gocatalog/internal/dbpostgres"
	"gocatalog/internal/events"
)

type MockChatService struct {
	mock.Mock
}

func (m *MockChatService) PostMessage(ctx context.Context, author, body string) (*service.Message, error) {
	args := m.Called(ctx, author, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Message), args.Error(1)
}

func (m *MockChatService) History(ctx context.Context, limit int) ([]*service.Message, int64, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*service.Message), args.Get(1).(int64), args.Error(2)
}

func newTestRouter(svc service.ChatService, hub *Hub) *mux.Router {
	r := mux.NewRouter()
	NewChatHandler(svc, hub).RegisterRoutes(r)
	return r
}

func TestChatHandler_History(t *testing.T) {
	svc := new(MockChatService)
	svc.On("History", mock.Anything, 10).Return([]*service.Message{
		{ID: "m2", Author: "bo", Body: "hey"},
	}, int64(4), nil).Once()

	rec := httptest.NewRecorder()
	newTestRouter(svc, NewHub()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/chat/messages?limit=10", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data  historyData `json:"data"`
		Meta  historyMeta `json:"meta"`
		Error string      `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data.Messages, 1)
	assert.Equal(t, "hey", body.Data.Messages[0].Body)
	assert.Equal(t, int64(4), body.Meta.Count)
	assert.Empty(t, body.Error)
	svc.AssertExpectations(t)
}

func TestChatHandler_History_FailSoft(t *testing.T) {
	tests := []struct {
		name  string
		url   string
		setup func(svc *MockChatService)
	}{
		{
			name: "backend error",
			url:  "/chat/messages",
			setup: func(svc *MockChatService) {
				svc.On("History", mock.Anything, 0).Return(nil, int64(0), errors.New("connection refused")).Once()
			},
		},
		{
			name:  "bad limit",
			url:   "/chat/messages?limit=many",
			setup: func(*MockChatService) {},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockChatService)
			tt.setup(svc)

			rec := httptest.NewRecorder()
			newTestRouter(svc, NewHub()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.url, nil))

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Body.String(), `"messages":[]`)
			assert.Contains(t, rec.Body.String(), `"error":`)
			svc.AssertExpectations(t)
		})
	}
}

func TestChatHandler_PostMessage(t *testing.T) {
	t.Run("author defaults to principal", func(t *testing.T) {
		svc := new(MockChatService)
		svc.On("PostMessage", mock.Anything, auth.Owner, "hello").
			Return(&service.Message{ID: "m1", Author: auth.Owner, Body: "hello"}, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/chat/messages", strings.NewReader(`{"body":"hello"}`))
		req = req.WithContext(auth.WithPrincipal(req.Context(), auth.Owner))
		rec := httptest.NewRecorder()
		newTestRouter(svc, NewHub()).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		svc.AssertExpectations(t)
	})

	t.Run("explicit author", func(t *testing.T) {
		svc := new(MockChatService)
		svc.On("PostMessage", mock.Anything, "ana", "hi").
			Return(&service.Message{ID: "m2", Author: "ana", Body: "hi"}, nil).Once()

		rec := httptest.NewRecorder()
		newTestRouter(svc, NewHub()).ServeHTTP(rec,
			httptest.NewRequest(http.MethodPost, "/chat/messages", strings.NewReader(`{"author":"ana","body":"hi"}`)))

		assert.Equal(t, http.StatusCreated, rec.Code)
		svc.AssertExpectations(t)
	})

	t.Run("validation error", func(t *testing.T) {
		svc := new(MockChatService)
		svc.On("PostMessage", mock.Anything, "ana", "").Return(nil, common.ErrInvalidInput).Once()

		rec := httptest.NewRecorder()
		newTestRouter(svc, NewHub()).ServeHTTP(rec,
			httptest.NewRequest(http.MethodPost, "/chat/messages", strings.NewReader(`{"author":"ana"}`)))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		rec := httptest.NewRecorder()
		newTestRouter(new(MockChatService), NewHub()).ServeHTTP(rec,
			httptest.NewRequest(http.MethodPost, "/chat/messages", strings.NewReader(`nope`)))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func dialHub(t *testing.T, hub *Hub) (*websocket.Conn, func()) {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	return conn, func() {
		conn.Close()
		server.Close()
	}
}

func chatItem(id, author, body string, tags ...string) *dbpostgres.Item {
	return &dbpostgres.Item{
		ID:        id,
		Type:      "text",
		Title:     &author,
		Body:      &body,
		Tags:      pq.StringArray(tags),
		CreatedAt: time.Now(),
	}
}

func TestHub_PushesChatItems(t *testing.T) {
	hub := NewHub()
	conn, cleanup := dialHub(t, hub)
	defer cleanup()

	assert.Equal(t, "chat_hub", hub.Name())

	// ignored: not chat, not created
	require.NoError(t, hub.Update(events.ItemEvent{Type: events.ItemCreated, Item: chatItem("n1", "ana", "note", "misc")}))
	require.NoError(t, hub.Update(events.ItemEvent{Type: events.ItemUpdated, Item: chatItem("c0", "ana", "edit", "chat")}))
	require.NoError(t, hub.Update(events.ItemEvent{Type: events.ItemDeleted, ItemID: "c0"}))

	require.NoError(t, hub.Update(events.ItemEvent{Type: events.ItemCreated, Item: chatItem("c1", "ana", "hello", "chat")}))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg service.Message
	require.NoError(t, json.Unmarshal(payload, &msg))
	assert.Equal(t, "c1", msg.ID)
	assert.Equal(t, "ana", msg.Author)
	assert.Equal(t, "hello", msg.Body)
}

func TestHub_SubscribedToManager(t *testing.T) {
	hub := NewHub()
	conn, cleanup := dialHub(t, hub)
	defer cleanup()

	manager := events.NewManager(1, 4)
	defer manager.Shutdown()
	manager.Subscribe(hub)

	manager.NotifyAsync(events.ItemEvent{Type: events.ItemCreated, Item: chatItem("c2", "bo", "via manager", "chat")})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(payload), "via manager")
}

func TestHub_ClientDisconnect(t *testing.T) {
	hub := NewHub()
	conn, cleanup := dialHub(t, hub)
	defer cleanup()

	conn.Close()
	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)

	assert.NoError(t, hub.Broadcast(&service.Message{ID: "late"}))
}

func TestHub_Close(t *testing.T) {
	hub := NewHub()
	conn, cleanup := dialHub(t, hub)
	defer cleanup()

	hub.Close()
	assert.Equal(t, 0, hub.ClientCount())

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
}
