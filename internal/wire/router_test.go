package wire

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gocatalog/internal/auth"
	"gocatalog/internal/catalog"
	chathandler "gocatalog/internal/chat/handler"
	chatservice "gocatalog/internal/chat/service"
	"gocatalog/internal/config"
	"gocatalog/internal/media"
)

// newTestRouter wires real handlers around a catalog service with no
// backends; only routes that stop before the service are exercised.
func newTestRouter(t *testing.T) (http.Handler, *auth.Gate) {
	t.Helper()
	gate, err := auth.NewGate(config.AuthConfig{
		Password:  "open-sesame",
		JWTSecret: "router-secret",
		TokenTTL:  time.Hour,
		Issuer:    "gocatalog",
	})
	require.NoError(t, err)

	svc := catalog.NewService(nil, nil, nil, auth.ContextSession{}, nil, &config.Config{})
	hub := chathandler.NewHub()
	router := NewRouter(
		gate,
		auth.NewHandler(gate),
		catalog.NewHandler(svc),
		chathandler.NewChatHandler(chatservice.NewChatService(svc), hub),
		media.NewUploadHandler(nil, media.NewResolver("http://localhost/media")),
	)
	return router, gate
}

func TestRouter_Health(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_ProtectedRoutesNeedToken(t *testing.T) {
	router, _ := newTestRouter(t)

	routes := []struct{ method, path string }{
		{http.MethodGet, "/api/v1/items"},
		{http.MethodPost, "/api/v1/items/query"},
		{http.MethodPost, "/api/v1/items"},
		{http.MethodGet, "/api/v1/items/abc"},
		{http.MethodPatch, "/api/v1/items/abc"},
		{http.MethodDelete, "/api/v1/items/abc"},
		{http.MethodPost, "/api/v1/items/abc/reactions"},
		{http.MethodGet, "/api/v1/folders"},
		{http.MethodPost, "/api/v1/folders"},
		{http.MethodPatch, "/api/v1/folders/f"},
		{http.MethodDelete, "/api/v1/folders/f"},
		{http.MethodPost, "/api/v1/media"},
		{http.MethodDelete, "/api/v1/media/65f0"},
		{http.MethodGet, "/api/v1/chat/messages"},
		{http.MethodPost, "/api/v1/chat/messages"},
		{http.MethodGet, "/api/v1/chat/ws"},
		{http.MethodGet, "/api/v1/auth/session"},
	}

	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(rt.method, rt.path, nil))
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestRouter_LoginIsPublic(t *testing.T) {
	router, gate := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
		strings.NewReader(`{"password":"open-sesame"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"token"`)

	token, _, err := gate.Tokens().Issue(auth.Owner)
	require.NoError(t, err)

	// a malformed query fails soft once past the middleware
	req := httptest.NewRequest(http.MethodGet, "/api/v1/items?limit=abc", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"items":[]`)
}

func TestRouter_Preflight(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/v1/items", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "PATCH")
}
