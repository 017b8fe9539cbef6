package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"gocatalog/internal/common"
	"gocatalog/internal/dbpostgres"
)

// ItemService is what the HTTP layer needs from the catalog.
type ItemService interface {
	GetItems(ctx context.Context, q Query) (*ItemsResult, error)
	GetItem(ctx context.Context, id string) (*dbpostgres.Item, error)
	CreateItem(ctx context.Context, in ItemInput) (*dbpostgres.Item, error)
	UpdateItem(ctx context.Context, id string, patch ItemPatch) (*dbpostgres.Item, error)
	DeleteItem(ctx context.Context, id string) error
	AddReaction(ctx context.Context, id string, kind common.ReactionKind) error

	ListFolders(ctx context.Context) ([]dbpostgres.Folder, error)
	CreateFolder(ctx context.Context, in FolderInput) (*dbpostgres.Folder, error)
	UpdateFolder(ctx context.Context, id string, patch FolderPatch) (*dbpostgres.Folder, error)
	DeleteFolder(ctx context.Context, id string) error
}

type Handler struct {
	svc ItemService
}

func NewHandler(svc ItemService) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the item and folder endpoints on r. Callers put r
// behind the auth middleware.
func (h *Handler) RegisterRoutes(r *mux.Router) {
	items := r.PathPrefix("/items").Subrouter()
	items.HandleFunc("", h.ListItems).Methods(http.MethodGet)
	items.HandleFunc("/query", h.QueryItems).Methods(http.MethodPost)
	items.HandleFunc("", h.CreateItem).Methods(http.MethodPost)
	items.HandleFunc("/{id}", h.GetItem).Methods(http.MethodGet)
	items.HandleFunc("/{id}", h.UpdateItem).Methods(http.MethodPatch)
	items.HandleFunc("/{id}", h.DeleteItem).Methods(http.MethodDelete)
	items.HandleFunc("/{id}/reactions", h.AddReaction).Methods(http.MethodPost)

	folders := r.PathPrefix("/folders").Subrouter()
	folders.HandleFunc("", h.ListFolders).Methods(http.MethodGet)
	folders.HandleFunc("", h.CreateFolder).Methods(http.MethodPost)
	folders.HandleFunc("/{id}", h.UpdateFolder).Methods(http.MethodPatch)
	folders.HandleFunc("/{id}", h.DeleteFolder).Methods(http.MethodDelete)
}

type itemsData struct {
	Items []dbpostgres.Item `json:"items"`
}

type countMeta struct {
	Count int64 `json:"count"`
}

// ListItems answers GET /items from the query string.
func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	q, err := queryFromValues(r)
	if err != nil {
		h.writeItems(w, r, nil, err)
		return
	}
	result, err := h.svc.GetItems(r.Context(), q)
	h.writeItems(w, r, result, err)
}

// QueryItems answers POST /items/query, whose body may carry picker-shaped
// fields.
func (h *Handler) QueryItems(w http.ResponseWriter, r *http.Request) {
	var q Query
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		h.writeItems(w, r, nil, fmt.Errorf("%w: malformed query", common.ErrInvalidInput))
		return
	}
	result, err := h.svc.GetItems(r.Context(), q)
	h.writeItems(w, r, result, err)
}

// writeItems never fails the request: errors come back as an empty page
// with the message in the error field.
func (h *Handler) writeItems(w http.ResponseWriter, r *http.Request, result *ItemsResult, err error) {
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"path":  r.URL.Path,
			"query": r.URL.RawQuery,
		}).WithError(err).Warn("item listing failed")
		common.WriteJSON(w, http.StatusOK, common.Envelope{
			Data:  itemsData{Items: []dbpostgres.Item{}},
			Meta:  countMeta{Count: 0},
			Error: err.Error(),
		})
		return
	}
	common.WriteJSON(w, http.StatusOK, common.Envelope{
		Data: itemsData{Items: result.Items},
		Meta: countMeta{Count: result.Count},
	})
}

func queryFromValues(r *http.Request) (Query, error) {
	values := r.URL.Query()
	q := Query{
		Q:      values.Get("q"),
		Cursor: values.Get("cursor"),
		Sort:   SortMode(values.Get("sort")),
	}
	if v := values.Get("type"); v != "" {
		q.Type = Raw(v)
	}
	if v := values.Get("folder"); v != "" {
		q.Folder = Raw(v)
	}
	if tags := values["tags"]; len(tags) > 0 {
		q.Tags = TagText(strings.Join(tags, " "))
	}
	if v := values.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			return q, fmt.Errorf("%w: limit must be a positive integer", common.ErrInvalidInput)
		}
		q.Limit = limit
	}
	return q, nil
}

func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.svc.GetItem(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		common.WriteError(w, r, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, common.Envelope{Data: item})
}

func (h *Handler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var in ItemInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		common.WriteError(w, r, fmt.Errorf("%w: malformed item", common.ErrInvalidInput))
		return
	}
	item, err := h.svc.CreateItem(r.Context(), in)
	if err != nil {
		common.WriteError(w, r, err)
		return
	}
	common.WriteJSON(w, http.StatusCreated, common.Envelope{Data: item})
}

func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var patch ItemPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		common.WriteError(w, r, fmt.Errorf("%w: malformed item", common.ErrInvalidInput))
		return
	}
	item, err := h.svc.UpdateItem(r.Context(), mux.Vars(r)["id"], patch)
	if err != nil {
		common.WriteError(w, r, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, common.Envelope{Data: item})
}

func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteItem(r.Context(), mux.Vars(r)["id"]); err != nil {
		common.WriteError(w, r, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, common.Envelope{Data: map[string]bool{"deleted": true}})
}

type reactionRequest struct {
	Kind common.ReactionKind `json:"kind"`
}

func (h *Handler) AddReaction(w http.ResponseWriter, r *http.Request) {
	var req reactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.WriteError(w, r, fmt.Errorf("%w: malformed reaction", common.ErrInvalidInput))
		return
	}
	if err := h.svc.AddReaction(r.Context(), mux.Vars(r)["id"], req.Kind); err != nil {
		common.WriteError(w, r, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, common.Envelope{Data: map[string]bool{"reacted": true}})
}

func (h *Handler) ListFolders(w http.ResponseWriter, r *http.Request) {
	folders, err := h.svc.ListFolders(r.Context())
	if err != nil {
		common.WriteError(w, r, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, common.Envelope{
		Data: map[string]interface{}{"folders": folders},
		Meta: countMeta{Count: int64(len(folders))},
	})
}

func (h *Handler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	var in FolderInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		common.WriteError(w, r, fmt.Errorf("%w: malformed folder", common.ErrInvalidInput))
		return
	}
	folder, err := h.svc.CreateFolder(r.Context(), in)
	if err != nil {
		common.WriteError(w, r, err)
		return
	}
	common.WriteJSON(w, http.StatusCreated, common.Envelope{Data: folder})
}

func (h *Handler) UpdateFolder(w http.ResponseWriter, r *http.Request) {
	var patch FolderPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		common.WriteError(w, r, fmt.Errorf("%w: malformed folder", common.ErrInvalidInput))
		return
	}
	folder, err := h.svc.UpdateFolder(r.Context(), mux.Vars(r)["id"], patch)
	if err != nil {
		common.WriteError(w, r, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, common.Envelope{Data: folder})
}

func (h *Handler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteFolder(r.Context(), mux.Vars(r)["id"]); err != nil {
		common.WriteError(w, r, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, common.Envelope{Data: map[string]bool{"deleted": true}})
}
