package auth

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"gocatalog/internal/common"
)

type Handler struct {
	gate *Gate
}

func NewHandler(gate *Gate) *Handler {
	return &Handler{gate: gate}
}

// RegisterRoutes mounts login (public) and session introspection (behind
// the middleware).
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/auth/login", h.Login).Methods(http.MethodPost)
	r.Handle("/auth/session", h.gate.Middleware(http.HandlerFunc(h.Session))).Methods(http.MethodGet)
}

type loginRequest struct {
	Password string `json:"password"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.WriteError(w, r, fmt.Errorf("%w: malformed login", common.ErrInvalidInput))
		return
	}
	result, err := h.gate.Login(r.Context(), req.Password)
	if err != nil {
		common.WriteError(w, r, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, common.Envelope{Data: result})
}

func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFrom(r.Context())
	common.WriteJSON(w, http.StatusOK, common.Envelope{Data: map[string]interface{}{
		"authenticated": true,
		"principal":     principal,
	}})
}
