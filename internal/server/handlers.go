package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	errs "github.com/matzehuels/critpath/pkg/errors"
	"github.com/matzehuels/critpath/pkg/network"
	"github.com/matzehuels/critpath/pkg/pipeline"
	"github.com/matzehuels/critpath/pkg/project"
	"github.com/matzehuels/critpath/pkg/session"
)

// maxBodyBytes bounds request bodies, project imports included.
const maxBodyBytes = 1 << 20

// sessionResponse describes a session and its network.
type sessionResponse struct {
	ID        string              `json:"id"`
	Name      string              `json:"name,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
	ExpiresAt *time.Time          `json:"expires_at,omitempty"`
	Network   project.NetworkView `json:"network"`
}

type activityRequest struct {
	Label    string  `json:"label"`
	Duration float64 `json:"duration"`
}

type activityResponse struct {
	ID       int     `json:"id"`
	Label    string  `json:"label"`
	Duration float64 `json:"duration"`
}

type edgeRequest struct {
	From int `json:"from"`
	To   int `json:"to"`
}

type calculateResponse struct {
	ProjectDuration float64             `json:"project_duration"`
	CriticalPaths   [][]int             `json:"critical_paths"`
	Network         project.NetworkView `json:"network"`
}

func newSessionResponse(sess *session.Session) sessionResponse {
	resp := sessionResponse{
		ID:        sess.ID,
		Name:      sess.Name,
		CreatedAt: sess.CreatedAt,
		Network:   sess.View(),
	}
	if t := sess.ExpiresAt(); !t.IsZero() {
		resp.ExpiresAt = &t
	}
	return resp
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleCreateSession creates an empty session, or one built from a
// project file in JSON form when the body has activities or edges.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var file project.File
	if err := decodeBody(r, &file, true); err != nil {
		s.writeError(w, err)
		return
	}

	var sess *session.Session
	if len(file.Activities) > 0 || len(file.Edges) > 0 {
		p, err := file.Build()
		if err != nil {
			s.writeError(w, err)
			return
		}
		sess = session.FromProject(p, s.cfg.SessionTTL)
	} else {
		sess = session.New(file.Name, s.cfg.SessionTTL)
	}

	if err := s.store.Set(r.Context(), sess); err != nil {
		s.writeError(w, err)
		return
	}
	s.logger.Debug("session created", "session", sess.ID, "activities", len(file.Activities))
	writeJSON(w, http.StatusCreated, newSessionResponse(sess))
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	out := make([]sessionResponse, 0, len(list))
	for _, sess := range list {
		out = append(out, newSessionResponse(sess))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse(sess))
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	if err := s.store.Delete(r.Context(), sess.ID); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddActivity(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req activityRequest
	if err := decodeBody(r, &req, false); err != nil {
		s.writeError(w, err)
		return
	}
	a, err := sess.AddActivity(r.Context(), req.Label, req.Duration)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, activityResponse{ID: int(a.ID), Label: a.Label, Duration: a.Duration})
}

func (s *Server) handleDeleteActivity(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := sess.DeleteActivity(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req edgeRequest
	if err := decodeBody(r, &req, false); err != nil {
		s.writeError(w, err)
		return
	}
	if err := sess.Connect(r.Context(), network.ID(req.From), network.ID(req.To)); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleDisconnect removes an edge. Removing an absent edge succeeds.
func (s *Server) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	from, err := pathID(r, "from")
	if err != nil {
		s.writeError(w, err)
		return
	}
	to, err := pathID(r, "to")
	if err != nil {
		s.writeError(w, err)
		return
	}
	sess.Disconnect(r.Context(), from, to)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	res, err := sess.Calculate(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}

	paths := make([][]int, len(res.CriticalPaths))
	for i, p := range res.CriticalPaths {
		paths[i] = make([]int, len(p))
		for j, id := range p {
			paths[i][j] = int(id)
		}
	}
	writeJSON(w, http.StatusOK, calculateResponse{
		ProjectDuration: res.ProjectDuration,
		CriticalPaths:   paths,
		Network:         sess.View(),
	})
}

var contentTypes = map[string]string{
	pipeline.FormatDOT: "text/vnd.graphviz; charset=utf-8",
	pipeline.FormatSVG: "image/svg+xml",
	pipeline.FormatPNG: "image/png",
}

// handleDiagram draws the session's network as last calculated. It never
// recalculates; a stale network is drawn with a "(stale)" caption.
func (s *Server) handleDiagram(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	format := chi.URLParam(r, "format")
	if err := pipeline.ValidateFormat(format); err != nil {
		s.writeError(w, err)
		return
	}
	if format == pipeline.FormatJSON {
		// The runner's view only carries paths it calculated itself; the
		// session keeps those of its last calculation.
		writeJSON(w, http.StatusOK, sess.View())
		return
	}
	detailed, _ := strconv.ParseBool(r.URL.Query().Get("detailed"))

	var res *pipeline.Result
	err := sess.With(func(n *network.Network) error {
		var err error
		res, err = s.runner.Execute(r.Context(), n, pipeline.Options{
			Title:    sess.Name,
			Formats:  []string{format},
			Detailed: detailed,
			Logger:   s.logger,
		})
		return err
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", contentTypes[format])
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Artifacts[format])
}

// =============================================================================
// Helpers
// =============================================================================

// session loads the session named in the URL, writing the error response
// if it does not exist.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.store.Get(r.Context(), chi.URLParam(r, "sid"))
	if err != nil {
		s.writeError(w, err)
		return nil, false
	}
	return sess, true
}

func pathID(r *http.Request, name string) (network.ID, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errs.New(errs.ErrCodeInvalidInput, "%s %q is not an activity id", name, raw)
	}
	return network.ID(id), nil
}

// decodeBody decodes a JSON request body into v. Unknown fields are
// rejected. An empty body is accepted when optional is set.
func decodeBody(r *http.Request, v any, optional bool) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if optional && errors.Is(err, io.EOF) {
			return nil
		}
		return errs.Wrap(errs.ErrCodeInvalidInput, err, "invalid request body: %v", err)
	}
	return nil
}
