// internal/httpserver/routes_session.go
//
// HTTP routes for walking the decision tree.
// Exposes, under /session:
//   - POST /session/new            → start at the root
//   - GET  /session/{id}           → current guess, pending marks, status
//   - POST /session/{id}/toggle    → cycle the mark of one position
//   - POST /session/{id}/forward   → commit the pending marks (or a typed mask)
//   - POST /session/{id}/back      → undo the last commit
//   - GET  /session/{id}/token     → signed, shareable token of the chain
//   - POST /session/resume         → start a new session from a token
//
// A session is in progress while its chain leads to a tree node, completed
// once the all-correct code was entered, and in error when the chain leaves
// the tree (some feedback was entered wrong; going back fixes it).
//
// Handlers that change a session hold its lock from load to save, so
// concurrent moves on one session apply one after the other.

package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/fiveletters/internal/game"
	"github.com/robalobadob/fiveletters/internal/store"
	"github.com/robalobadob/fiveletters/internal/tree"
)

const (
	statusInProgress = "in_progress"
	statusCompleted  = "completed"
	statusError      = "no_words_left"
)

type sessionView struct {
	ID      string          `json:"id"`
	Status  string          `json:"status"`
	Attempt int             `json:"attempt"`
	Guess   string          `json:"guess,omitempty"`
	Final   bool            `json:"final"` // the guess is the only word left
	Pending string          `json:"pending"`
	Marks   game.Evaluation `json:"marks"`
	Chain   []int32         `json:"chain"`
}

type toggleReq struct {
	Position int `json:"position"`
}

type forwardReq struct {
	Mask string `json:"mask"` // optional g/w/y mask replacing the pending marks
}

type tokenRes struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type resumeReq struct {
	Token string `json:"token"`
}

// mountSessions registers all /session routes.
func (s *Server) mountSessions(r chi.Router) {
	r.Route("/session", func(r chi.Router) {
		r.Post("/new", s.handleNewSession)
		r.Post("/resume", s.handleResume)
		r.Get("/{id}", s.handleGetSession)
		r.Post("/{id}/toggle", s.handleToggle)
		r.Post("/{id}/forward", s.handleForward)
		r.Post("/{id}/back", s.handleBack)
		r.Get("/{id}/token", s.handleToken)
	})
}

// locate walks chain and returns the node whose word is the current guess.
func (s *Server) locate(chain []int32) (*tree.Node, string) {
	solved := game.SolvedCode(s.tree.Length)
	n := s.tree.Root
	for i, code := range chain {
		if code == solved {
			if i == len(chain)-1 {
				return n, statusCompleted
			}
			return nil, statusError
		}
		next, ok := n.Next(code)
		if !ok {
			return nil, statusError
		}
		n = next
	}
	return n, statusInProgress
}

func (s *Server) view(sess *game.Session) sessionView {
	v := sessionView{
		ID:      sess.ID,
		Attempt: sess.Attempt(),
		Pending: sess.Pending.Mask(),
		Marks:   sess.Pending,
		Chain:   sess.Chain,
	}
	n, status := s.locate(sess.Chain)
	v.Status = status
	if n != nil {
		v.Guess = s.tree.Decode(n.Word)
		v.Final = n.IsLeaf() || status == statusCompleted
	}
	if status == statusCompleted {
		v.Attempt = len(sess.Chain)
	}
	return v
}

// lockSession serializes load-modify-save cycles on one session ID.
func (s *Server) lockSession(id string) func() {
	v, _ := s.locks.LoadOrStore(id, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// loadSession fetches the session named in the URL, writing the error
// response itself when it fails.
func (s *Server) loadSession(w http.ResponseWriter, r *http.Request) (*game.Session, bool) {
	sess, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found")
		return nil, false
	}
	if err != nil {
		log.Error().Err(err).Msg("load session")
		writeError(w, http.StatusInternalServerError, "load_failed")
		return nil, false
	}
	return sess, true
}

func (s *Server) saveSession(w http.ResponseWriter, r *http.Request, sess *game.Session) bool {
	if err := s.store.Save(r.Context(), sess); err != nil {
		log.Error().Err(err).Str("sessionId", sess.ID).Msg("save session")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return false
	}
	return true
}

func (s *Server) handleNewSession(w http.ResponseWriter, r *http.Request) {
	sess := game.NewSession(s.tree.Length)
	if !s.saveSession(w, r, sess) {
		return
	}
	s.metrics.sessions.WithLabelValues("created").Inc()
	writeJSON(w, http.StatusCreated, s.view(sess))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.loadSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.view(sess))
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	var req toggleReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	defer s.lockSession(chi.URLParam(r, "id"))()
	sess, ok := s.loadSession(w, r)
	if !ok {
		return
	}
	if _, status := s.locate(sess.Chain); status != statusInProgress {
		writeError(w, http.StatusConflict, status)
		return
	}
	if err := sess.Toggle(req.Position); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_position")
		return
	}
	if !s.saveSession(w, r, sess) {
		return
	}
	writeJSON(w, http.StatusOK, s.view(sess))
}

func (s *Server) handleForward(w http.ResponseWriter, r *http.Request) {
	var req forwardReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	defer s.lockSession(chi.URLParam(r, "id"))()
	sess, ok := s.loadSession(w, r)
	if !ok {
		return
	}
	node, status := s.locate(sess.Chain)
	if status != statusInProgress {
		writeError(w, http.StatusConflict, status)
		return
	}
	if req.Mask != "" {
		marks, err := game.ParseMask(req.Mask, node.Word)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_mask")
			return
		}
		if err := sess.SetPending(marks); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_mask")
			return
		}
	}
	if _, err := sess.Forward(node.Word); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_mask")
		return
	}
	if !s.saveSession(w, r, sess) {
		return
	}
	s.metrics.moves.WithLabelValues("forward").Inc()

	v := s.view(sess)
	switch v.Status {
	case statusCompleted:
		s.metrics.sessions.WithLabelValues("completed").Inc()
		s.metrics.attempts.Observe(float64(len(sess.Chain)))
	case statusError:
		s.metrics.sessions.WithLabelValues("no_words_left").Inc()
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleBack(w http.ResponseWriter, r *http.Request) {
	defer s.lockSession(chi.URLParam(r, "id"))()
	sess, ok := s.loadSession(w, r)
	if !ok {
		return
	}
	if len(sess.Chain) == 0 {
		writeError(w, http.StatusConflict, "nothing_to_undo")
		return
	}
	prev, status := s.locate(sess.Chain[:len(sess.Chain)-1])
	if status != statusInProgress {
		writeError(w, http.StatusConflict, status)
		return
	}
	if err := sess.Back(prev.Word); err != nil {
		writeError(w, http.StatusConflict, "nothing_to_undo")
		return
	}
	if !s.saveSession(w, r, sess) {
		return
	}
	s.metrics.moves.WithLabelValues("back").Inc()
	writeJSON(w, http.StatusOK, s.view(sess))
}

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.loadSession(w, r)
	if !ok {
		return
	}
	token, exp, err := s.signSession(sess.ID, sess.Chain)
	if err != nil {
		log.Error().Err(err).Msg("sign session token")
		writeError(w, http.StatusInternalServerError, "sign_failed")
		return
	}
	writeJSON(w, http.StatusOK, tokenRes{Token: token, ExpiresAt: exp.UTC()})
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	var req resumeReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	claims, err := s.parseSession(req.Token)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid_token")
		return
	}
	sess := game.ResumeSession(s.tree.Length, claims.Chain)
	if !s.saveSession(w, r, sess) {
		return
	}
	s.metrics.sessions.WithLabelValues("resumed").Inc()
	writeJSON(w, http.StatusCreated, s.view(sess))
}
