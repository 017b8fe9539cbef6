package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"gocatalog/internal/auth"
	"gocatalog/internal/chat/service"
	"gocatalog/internal/common"
)

type ChatHandler struct {
	chatService service.ChatService
	hub         *Hub
}

func NewChatHandler(chatService service.ChatService, hub *Hub) *ChatHandler {
	return &ChatHandler{chatService: chatService, hub: hub}
}

func (h *ChatHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/chat/messages", h.History).Methods(http.MethodGet)
	r.HandleFunc("/chat/messages", h.PostMessage).Methods(http.MethodPost)
	r.HandleFunc("/chat/ws", h.hub.ServeWS).Methods(http.MethodGet)
}

type historyData struct {
	Messages []*service.Message `json:"messages"`
}

type historyMeta struct {
	Count int64 `json:"count"`
}

// History fails soft like the item listings: errors come back with an empty
// message list and status 200.
func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			h.writeHistory(w, r, nil, 0, fmt.Errorf("%w: limit must be a positive integer", common.ErrInvalidInput))
			return
		}
		limit = n
	}

	messages, count, err := h.chatService.History(r.Context(), limit)
	h.writeHistory(w, r, messages, count, err)
}

func (h *ChatHandler) writeHistory(w http.ResponseWriter, r *http.Request, messages []*service.Message, count int64, err error) {
	if err != nil {
		logrus.WithField("path", r.URL.Path).WithError(err).Warn("chat history failed")
		common.WriteJSON(w, http.StatusOK, common.Envelope{
			Data:  historyData{Messages: []*service.Message{}},
			Meta:  historyMeta{},
			Error: err.Error(),
		})
		return
	}
	common.WriteJSON(w, http.StatusOK, common.Envelope{
		Data: historyData{Messages: messages},
		Meta: historyMeta{Count: count},
	})
}

type postRequest struct {
	Author string `json:"author"`
	Body   string `json:"body"`
}

// PostMessage stores a message. The author defaults to the session principal.
// Connected clients hear about it through the hub's event subscription.
func (h *ChatHandler) PostMessage(w http.ResponseWriter, r *http.Request) {
	var req postRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.WriteError(w, r, fmt.Errorf("%w: malformed message", common.ErrInvalidInput))
		return
	}
	if req.Author == "" {
		req.Author, _ = auth.PrincipalFrom(r.Context())
	}

	msg, err := h.chatService.PostMessage(r.Context(), req.Author, req.Body)
	if err != nil {
		common.WriteError(w, r, err)
		return
	}
	common.WriteJSON(w, http.StatusCreated, common.Envelope{Data: msg})
}
