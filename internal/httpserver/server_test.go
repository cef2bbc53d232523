package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/fiveletters/internal/solver"
	"github.com/robalobadob/fiveletters/internal/store"
	"github.com/robalobadob/fiveletters/internal/tree"
	"github.com/robalobadob/fiveletters/internal/words"
)

// newTestServer serves a tree over crane, slate and trace; crane is the root
// and separates the other two.
func newTestServer(t *testing.T) *Server {
	t.Helper()
	d, err := words.Build([][]string{{"crane", "slate", "trace"}})
	require.NoError(t, err)
	root, err := tree.NewBuilder(solver.New(d.Alphabet.Size()), d.Attack).Build(context.Background(), d.Global)
	require.NoError(t, err)
	tr := &tree.Tree{Alphabet: d.Alphabet, Length: d.Length, Root: root}
	return New(tr, store.NewMemoryStore(), nil, Config{TreeName: "test", JWTSecret: "secret", TokenTTL: time.Hour})
}

func do(t *testing.T, s *Server, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	var out map[string]any
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		_ = json.Unmarshal(rec.Body.Bytes(), &out)
	}
	return rec, out
}

func TestHealthAndIndex(t *testing.T) {
	s := newTestServer(t)
	rec, body := do(t, s, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["ok"])

	rec, body = do(t, s, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "fiveletters", body["service"])

	rec, body = do(t, s, http.MethodGet, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", body["error"])
}

func TestSession_Walkthrough(t *testing.T) {
	s := newTestServer(t)

	rec, body := do(t, s, http.MethodPost, "/session/new", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	id := body["id"].(string)
	assert.Equal(t, "crane", body["guess"])
	assert.Equal(t, "ggggg", body["pending"])
	assert.Equal(t, statusInProgress, body["status"])
	assert.EqualValues(t, 1, body["attempt"])

	// slate against crane: a and e are correct
	for _, pos := range []int{2, 2, 4, 4} {
		rec, body = do(t, s, http.MethodPost, "/session/"+id+"/toggle", toggleReq{Position: pos})
		require.Equal(t, http.StatusOK, rec.Code)
	}
	assert.Equal(t, "ggygy", body["pending"])

	rec, body = do(t, s, http.MethodPost, "/session/"+id+"/forward", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "slate", body["guess"])
	assert.Equal(t, true, body["final"])
	assert.EqualValues(t, 2, body["attempt"])
	assert.Equal(t, "ggggg", body["pending"])

	rec, body = do(t, s, http.MethodPost, "/session/"+id+"/forward", forwardReq{Mask: "yyyyy"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, statusCompleted, body["status"])
	assert.EqualValues(t, 2, body["attempt"])

	rec, _ = do(t, s, http.MethodPost, "/session/"+id+"/toggle", toggleReq{Position: 0})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, body = do(t, s, http.MethodPost, "/session/"+id+"/back", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, statusInProgress, body["status"])
	assert.Equal(t, "slate", body["guess"])
	assert.Equal(t, "yyyyy", body["pending"])

	rec, body = do(t, s, http.MethodGet, "/session/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["chain"], 1)
}

func TestSession_WrongFeedback(t *testing.T) {
	s := newTestServer(t)
	_, body := do(t, s, http.MethodPost, "/session/new", nil)
	id := body["id"].(string)

	// no word of the tree shares nothing with crane
	rec, body := do(t, s, http.MethodPost, "/session/"+id+"/forward", forwardReq{Mask: "ggggg"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, statusError, body["status"])

	rec, _ = do(t, s, http.MethodPost, "/session/"+id+"/forward", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, body = do(t, s, http.MethodPost, "/session/"+id+"/back", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, statusInProgress, body["status"])
	assert.Equal(t, "crane", body["guess"])

	rec, _ = do(t, s, http.MethodPost, "/session/"+id+"/back", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestSession_ConcurrentToggles(t *testing.T) {
	s := newTestServer(t)
	_, body := do(t, s, http.MethodPost, "/session/new", nil)
	id := body["id"].(string)

	// seven toggles of one position end on present (7 mod 3) only when none is lost
	var wg sync.WaitGroup
	for range 7 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodPost, "/session/"+id+"/toggle", strings.NewReader(`{"position":0}`))
			s.Router().ServeHTTP(httptest.NewRecorder(), req)
		}()
	}
	wg.Wait()

	_, body = do(t, s, http.MethodGet, "/session/"+id, nil)
	assert.Equal(t, "wgggg", body["pending"])
}

func TestSession_BadInput(t *testing.T) {
	s := newTestServer(t)
	_, body := do(t, s, http.MethodPost, "/session/new", nil)
	id := body["id"].(string)

	rec, body := do(t, s, http.MethodPost, "/session/"+id+"/forward", forwardReq{Mask: "gg"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_mask", body["error"])

	rec, _ = do(t, s, http.MethodPost, "/session/"+id+"/toggle", toggleReq{Position: 9})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/session/"+id+"/toggle", strings.NewReader("{"))
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	rec, _ = do(t, s, http.MethodGet, "/session/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSession_TokenResume(t *testing.T) {
	s := newTestServer(t)
	_, body := do(t, s, http.MethodPost, "/session/new", nil)
	id := body["id"].(string)
	_, _ = do(t, s, http.MethodPost, "/session/"+id+"/forward", forwardReq{Mask: "ggygy"})

	rec, body := do(t, s, http.MethodGet, "/session/"+id+"/token", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	token := body["token"].(string)
	require.NotEmpty(t, token)

	rec, body = do(t, s, http.MethodPost, "/session/resume", resumeReq{Token: token})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotEqual(t, id, body["id"])
	assert.Equal(t, "slate", body["guess"])
	assert.Len(t, body["chain"], 1)

	rec, body = do(t, s, http.MethodPost, "/session/resume", resumeReq{Token: token + "x"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid_token", body["error"])

	other := New(s.tree, store.NewMemoryStore(), nil, Config{JWTSecret: "another"})
	rec, _ = do(t, other, http.MethodPost, "/session/resume", resumeReq{Token: token})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	otherTree := New(s.tree, store.NewMemoryStore(), nil, Config{TreeName: "other", JWTSecret: "secret"})
	rec, body = do(t, otherTree, http.MethodPost, "/session/resume", resumeReq{Token: token})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid_token", body["error"])
}

func TestStatsAndMetrics(t *testing.T) {
	s := newTestServer(t)
	_, _ = do(t, s, http.MethodPost, "/session/new", nil)

	rec, body := do(t, s, http.MethodGet, "/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "crane", body["rootWord"])
	report := body["report"].(map[string]any)
	assert.EqualValues(t, 3, report["words"])

	rec, _ = do(t, s, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `fiveletters_sessions_total{event="created"} 1`)
	assert.Contains(t, rec.Body.String(), `fiveletters_http_requests_total{route="/session/new",status="201"} 1`)
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)
	rec, _ := do(t, s, http.MethodOptions, "/session/new", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}
