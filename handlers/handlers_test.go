package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/tertulia-im/tertulia/internal/board"
	"github.com/tertulia-im/tertulia/internal/directory"
	"github.com/tertulia-im/tertulia/pkg/middleware"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	dir := directory.NewService(directory.NewMemoryRepository())
	brd := board.NewService(board.NewMemoryRepository(), dir)

	g := gin.New()
	g.Use(middleware.CallerIdentity())
	api := g.Group("/api/v1")
	NewParticipantsHandler(dir, brd).Register(api)
	NewMessagesHandler(brd).Register(api)
	NewStatsHandler(dir, brd, time.Now()).Register(api)
	return g
}

func do(g *gin.Engine, method, path, caller, body string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if caller != "" {
		req.Header.Set(middleware.CallerHeader, caller)
	}
	w := httptest.NewRecorder()
	g.ServeHTTP(w, req)
	return w
}

func join(t *testing.T, g *gin.Engine, name string) {
	t.Helper()
	w := do(g, http.MethodPost, "/api/v1/participants", "", fmt.Sprintf(`{"name":%q}`, name))
	require.Equal(t, http.StatusCreated, w.Code)
}

type errorBody struct {
	Error  string       `json:"error"`
	Fields []FieldError `json:"fields"`
}

func rejectedFields(t *testing.T, w *httptest.ResponseRecorder) []string {
	t.Helper()
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var resp errorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "validation failed", resp.Error)
	names := make([]string, 0, len(resp.Fields))
	for _, f := range resp.Fields {
		names = append(names, f.Field)
	}
	return names
}
