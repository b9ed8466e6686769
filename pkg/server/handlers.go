package server

import (
	"encoding/json"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/commitgraph/pkg/buildinfo"
	"github.com/matzehuels/commitgraph/pkg/cache"
	"github.com/matzehuels/commitgraph/pkg/errors"
	"github.com/matzehuels/commitgraph/pkg/graph"
	"github.com/matzehuels/commitgraph/pkg/observability"
	"github.com/matzehuels/commitgraph/pkg/render/nodelink"
	"github.com/matzehuels/commitgraph/pkg/session"
	"github.com/matzehuels/commitgraph/pkg/visible"
)

// ViewRequest selects how a session's log is shown.
type ViewRequest struct {
	Sort string `json:"sort,omitempty"`
	// Heads restricts the view to commits reachable from these commits.
	Heads []string `json:"heads,omitempty"`
	// Filter shows only commits whose id, author or subject match this
	// regular expression. The view is read-only.
	Filter string `json:"filter,omitempty"`
}

// CreateSessionRequest uploads a log.
type CreateSessionRequest struct {
	Log  graph.Log   `json:"log"`
	View ViewRequest `json:"view"`
}

// SessionResponse summarizes a session.
type SessionResponse struct {
	ID             string    `json:"id"`
	Sort           string    `json:"sort"`
	ReadOnly       bool      `json:"read_only"`
	RowCount       int       `json:"row_count"`
	Commits        int       `json:"commits"`
	Heads          []string  `json:"heads"`
	MissingParents int       `json:"missing_parents"`
	CreatedAt      time.Time `json:"created_at"`
	ExpiresAt      time.Time `json:"expires_at"`
}

// CommitResponse describes one commit of a session.
type CommitResponse struct {
	Commit *graph.Commit `json:"commit"`
	// Row is the row showing the commit, absent when it is hidden.
	Row      *int     `json:"row,omitempty"`
	Children []string `json:"children"`
	Branches []string `json:"branches"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Code      errors.Code `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"request_id,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Get())
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)).Decode(&req); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request"))
		return
	}
	if err := req.Log.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}

	ctx := r.Context()
	p, err := s.buildPermanent(r, &req.Log)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	view, err := s.newView(r, &req.Log, p, req.View)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	sess := session.New(&req.Log, p, view, s.cfg.SessionTTL)
	if err := s.cfg.Sessions.Set(ctx, sess); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.cfg.Logger.Info("session created", "id", sess.ID, "commits", len(req.Log.Commits), "rows", view.RowCount())
	writeJSON(w, http.StatusCreated, summary(sess))
}

func (s *Server) buildPermanent(r *http.Request, l *graph.Log) (*visible.Permanent[string], error) {
	commits := l.PermanentCommits()
	opts := visible.BuildOptions{
		MissingTimestamp: s.cfg.MissingTimestamp,
		Logger:           s.cfg.Logger,
	}
	if s.orders != nil {
		opts.Store = s.orders
		opts.StoreKey = s.cfg.Keyer.OrderKey(cache.Fingerprint(commits, s.cfg.MissingTimestamp))
	}
	return visible.BuildPermanent(r.Context(), commits, l.Heads, opts)
}

func (s *Server) newView(r *http.Request, l *graph.Log, p *visible.Permanent[string], req ViewRequest) (*visible.Graph[string], error) {
	opts := visible.Options[string]{
		Sort:   req.Sort,
		Heads:  req.Heads,
		Logger: s.cfg.Logger,
	}
	if opts.Sort == "" {
		opts.Sort = s.cfg.DefaultSort
	}
	if req.Filter != "" {
		re, err := regexp.Compile(req.Filter)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid filter")
		}
		opts.Matched = l.Match(re)
	}
	return visible.New(r.Context(), p, opts)
}

func summary(sess *session.Session) SessionResponse {
	view := sess.View()
	return SessionResponse{
		ID:             sess.ID,
		Sort:           view.Sort(),
		ReadOnly:       view.ReadOnly(),
		RowCount:       view.RowCount(),
		Commits:        len(sess.Log.Commits),
		Heads:          sess.Log.Heads,
		MissingParents: len(sess.Permanent.Commits.MissingParents()),
		CreatedAt:      sess.CreatedAt,
		ExpiresAt:      sess.ExpiresAt(),
	}
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, summary(sessionFrom(r.Context())))
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.cfg.Sessions.Delete(r.Context(), sessionFrom(r.Context()).ID); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetView(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	var req ViewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request"))
		return
	}
	view, err := s.newView(r, sess.Log, sess.Permanent, req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sess.SetView(view)
	writeJSON(w, http.StatusOK, summary(sess))
}

func (s *Server) handleRows(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	offset, err := queryInt(r, "offset")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := errors.ValidatePage(offset, limit, s.cfg.MaxPageSize); err != nil {
		s.writeError(w, r, err)
		return
	}
	if limit == 0 {
		limit = s.cfg.PageSize
	}

	view := sess.View()
	page := graph.Page{Offset: offset, Total: view.RowCount(), Rows: []graph.Row{}}
	switch {
	case offset > page.Total:
		s.writeError(w, r, errors.New(errors.ErrCodeOutOfRange, "offset %d beyond %d rows", offset, page.Total))
		return
	case offset < page.Total:
		rows, err := view.Rows(offset, limit)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		page.Rows = graph.FromRows(rows, sess.Commits())
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	var req graph.ActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request"))
		return
	}
	a, err := graph.ToAction(req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	view := sess.View()
	ans, err := view.PerformAction(r.Context(), a)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, graph.FromAnswer(ans, sess.Permanent.Commits.CommitIDs, view.RowCount()))
}

func (s *Server) handleCommit(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	id := chi.URLParam(r, "commit")
	view := sess.View()

	children, err := view.Children(id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	branches, err := view.ContainingBranches(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp := CommitResponse{
		Commit:   sess.Commits()[id],
		Children: children,
		Branches: branches,
	}
	if row, ok := view.RowOf(id); ok {
		resp.Row = &row
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDOT(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	dot := nodelink.FromVisible(sess.View(), sess.Commits(), nodelink.Options{Palette: s.cfg.Palette})
	w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
	w.Write([]byte(dot))
}

func (s *Server) handleSVG(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	dot := nodelink.FromVisible(sess.View(), sess.Commits(), nodelink.Options{Palette: s.cfg.Palette})
	svg, err := nodelink.RenderSVG(r.Context(), dot)
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInternal, err, "render svg"))
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Write(svg)
}

func queryInt(r *http.Request, name string) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.New(errors.ErrCodeInvalidInput, "%s must be an integer", name)
	}
	return n, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes err with the status its code maps to.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	status := statusFor(code)
	if status >= http.StatusInternalServerError {
		observability.HTTP().OnError(r.Context(), r.Method, routePattern(r), err)
		s.cfg.Logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, ErrorResponse{
		Code:      code,
		Message:   errors.UserMessage(err),
		RequestID: requestIDFrom(r.Context()),
	})
}

func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidConfig, errors.ErrCodeOutOfRange:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeUnknownCommit:
		return http.StatusNotFound
	case errors.ErrCodeDuplicateCommit, errors.ErrCodeMalformedParent:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeUnsupported:
		return http.StatusRequestEntityTooLarge
	case errors.ErrCodeCanceled:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
