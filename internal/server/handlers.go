package server

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/ziptree/pkg/buildinfo"
	zterrors "github.com/matzehuels/ziptree/pkg/errors"
	ztio "github.com/matzehuels/ziptree/pkg/io"
	"github.com/matzehuels/ziptree/pkg/pipeline"
	"github.com/matzehuels/ziptree/pkg/render/nodelink"
	"github.com/matzehuels/ziptree/pkg/ziptree"
)

type treeResponse struct {
	ID       string    `json:"id"`
	Name     string    `json:"name,omitempty"`
	Workload string    `json:"workload"`
	Created  time.Time `json:"created"`
	Seeds    int       `json:"seeds"`
	Items    int       `json:"items"`
	Notation string    `json:"notation"`
	CacheHit bool      `json:"cache_hit"`
	Stats    treeStats `json:"stats"`
}

type treeStats struct {
	Chains      int `json:"chains"`
	Snarls      int `json:"snarls"`
	Edges       int `json:"edges"`
	Unreachable int `json:"unreachable"`
	MaxNesting  int `json:"max_nesting"`
}

type hitResponse struct {
	Seed     int    `json:"seed"`
	Distance uint64 `json:"distance"`
}

type lookbackResponse struct {
	Seed  int           `json:"seed"`
	Limit uint64        `json:"limit"`
	Hits  []hitResponse `json:"hits"`
}

type clustersResponse struct {
	Limit    uint64     `json:"limit"`
	Clusters [][]uint32 `json:"clusters"`
}

type errorBody struct {
	Error struct {
		Code    zterrors.Code `json:"code"`
		Message string        `json:"message"`
	} `json:"error"`
}

func newTreeResponse(res *pipeline.Result) treeResponse {
	st := res.Stats.Stats
	return treeResponse{
		ID:       res.Meta.ID.String(),
		Name:     res.Name,
		Workload: res.WorkloadHash,
		Created:  res.Meta.Created,
		Seeds:    res.Tree.SeedCount(),
		Items:    res.Tree.Len(),
		Notation: res.Tree.String(),
		CacheHit: res.CacheHit,
		Stats: treeStats{
			Chains:      st.Chains,
			Snarls:      st.Snarls,
			Edges:       st.Edges,
			Unreachable: st.Unreachable,
			MaxNesting:  st.MaxNesting,
		},
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": buildinfo.Version,
		"trees":   s.trees.len(),
	})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	format, err := requestFormat(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	body := http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes)
	m, err := ztio.Read(body, format)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, zterrors.New(zterrors.ErrCodeInvalidInput, "body exceeds %d bytes", tooLarge.Limit))
			return
		}
		s.writeError(w, zterrors.Wrap(zterrors.ErrCodeInvalidWorkload, err, "read workload"))
		return
	}
	if name := r.URL.Query().Get("name"); name != "" {
		m.Name = name
	}

	res, err := s.runner.Build(r.Context(), m)
	if err != nil {
		s.writeError(w, err)
		return
	}
	for _, id := range s.trees.put(res) {
		s.logger.Debug("evicted tree", "id", id)
	}
	w.Header().Set("Location", "/v1/trees/"+res.Meta.ID.String())
	s.writeJSON(w, http.StatusCreated, newTreeResponse(res))
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	if res, ok := s.lookup(w, r); ok {
		s.writeJSON(w, http.StatusOK, newTreeResponse(res))
	}
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := zterrors.ValidateTreeID(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !s.trees.remove(id) {
		s.writeError(w, zterrors.New(zterrors.ErrCodeTreeNotFound, "tree %s not found", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLookback(w http.ResponseWriter, r *http.Request) {
	res, ok := s.lookup(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	if !q.Has("seed") {
		s.writeError(w, zterrors.New(zterrors.ErrCodeInvalidInput, "query parameter seed is required"))
		return
	}
	seed, err := zterrors.ValidateSeed(q.Get("seed"), res.Tree.SeedCount())
	if err != nil {
		s.writeError(w, err)
		return
	}
	limit, err := zterrors.ValidateLimit(q.Get("limit"), s.opts.DefaultLimit)
	if err != nil {
		s.writeError(w, err)
		return
	}

	hits, err := s.runner.Lookback(r.Context(), res, seed, ziptree.Distance(limit))
	if err != nil {
		s.writeError(w, err)
		return
	}
	out := lookbackResponse{Seed: seed, Limit: limit, Hits: make([]hitResponse, len(hits))}
	for i, h := range hits {
		out.Hits[i] = hitResponse{Seed: h.Seed, Distance: uint64(h.Distance)}
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleClusters(w http.ResponseWriter, r *http.Request) {
	res, ok := s.lookup(w, r)
	if !ok {
		return
	}
	limit, err := zterrors.ValidateLimit(r.URL.Query().Get("limit"), s.opts.DefaultLimit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	clusters, err := s.runner.Clusters(r.Context(), res, ziptree.Distance(limit))
	if err != nil {
		s.writeError(w, err)
		return
	}
	out := clustersResponse{Limit: limit, Clusters: make([][]uint32, len(clusters))}
	for i, c := range clusters {
		out.Clusters[i] = c.ToArray()
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleStore(w http.ResponseWriter, r *http.Request) {
	res, ok := s.lookup(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/cbor")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Store)
}

func (s *Server) handleDOT(w http.ResponseWriter, r *http.Request) {
	res, ok := s.lookup(w, r)
	if !ok {
		return
	}
	dot := nodelink.ToDOT(res.Tree, nodelink.Options{Detailed: r.URL.Query().Has("detailed")})
	w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(dot))
}

// lookup resolves the {id} URL parameter, writing the error response when
// it does not name a registered tree.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*pipeline.Result, bool) {
	id, err := zterrors.ValidateTreeID(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return nil, false
	}
	res, ok := s.trees.get(id)
	if !ok {
		s.writeError(w, zterrors.New(zterrors.ErrCodeTreeNotFound, "tree %s not found", id))
		return nil, false
	}
	return res, true
}

// requestFormat picks the workload decoder from the Content-Type header.
// A missing header means JSON.
func requestFormat(r *http.Request) (ztio.Format, error) {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return ztio.FormatJSON, nil
	}
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return "", zterrors.New(zterrors.ErrCodeInvalidFormat, "invalid content type %q", ct)
	}
	switch mt {
	case "application/json":
		return ztio.FormatJSON, nil
	case "application/toml", "text/toml":
		return ztio.FormatTOML, nil
	}
	return "", zterrors.New(zterrors.ErrCodeUnsupported, "unsupported content type %q", mt)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("write response", "error", err)
	}
}

// writeError maps err to a status code and writes the JSON error body.
// Uncoded errors are reported as internal errors.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := zterrors.GetCode(err)
	if code == "" {
		code = zterrors.ErrCodeInternal
	}
	status := zterrors.HTTPStatus(code)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "code", code, "error", err)
	}

	var body errorBody
	body.Error.Code = code
	body.Error.Message = zterrors.UserMessage(err)
	s.writeJSON(w, status, body)
}
