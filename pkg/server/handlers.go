package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	errs "github.com/matzehuels/pairtree/pkg/errors"
	"github.com/matzehuels/pairtree/pkg/pairs"
	"github.com/matzehuels/pairtree/pkg/pipeline"
	"github.com/matzehuels/pairtree/pkg/store"
	"github.com/matzehuels/pairtree/pkg/tree"
	"github.com/matzehuels/pairtree/pkg/treeio"
)

type element = treeio.Element[string, string]

type buildRequest struct {
	Pairs json.RawMessage `json:"pairs"`
	IDs   string          `json:"ids,omitempty"`
}

type elementsRequest struct {
	Elements []element `json:"elements"`
	IDs      string    `json:"ids,omitempty"`
}

type treeResponse struct {
	Name     string    `json:"name,omitempty"`
	Elements []element `json:"elements"`
	Leaves   []string  `json:"leaves"`
	IDs      string    `json:"ids,omitempty"`
	Nodes    int       `json:"nodes"`
	Tree     string    `json:"tree,omitempty"`
	Cached   bool      `json:"cached,omitempty"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) handleBuild(strategy string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req buildRequest
		if err := decodeBody(w, r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
		if len(req.Pairs) == 0 {
			s.writeError(w, r, errs.New(errs.ErrCodeInvalidInput, "missing pairs"))
			return
		}
		ps, err := pairs.ReadJSON(bytes.NewReader(req.Pairs))
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		res, err := s.runner.Build(r.Context(), ps, pipeline.Options{
			Strategy: strategy,
			IDs:      req.IDs,
			Logger:   s.logger,
		})
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, treeResponse{
			Elements: res.Elements,
			Leaves:   res.Leaves,
			IDs:      res.IDs,
			Nodes:    res.Stats.NodeCount,
			Cached:   res.CacheHit,
		})
	}
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	res, err := s.importBody(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, treeResponse{
		Elements: res.Elements,
		Leaves:   res.Leaves,
		IDs:      res.IDs,
		Nodes:    res.Stats.NodeCount,
		Tree:     tree.Sprint(res.Tree),
	})
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	opts := pipeline.RenderOptions{Format: r.URL.Query().Get("format")}
	if v := r.URL.Query().Get("detailed"); v != "" {
		detailed, err := strconv.ParseBool(v)
		if err != nil {
			s.writeError(w, r, errs.Wrap(errs.ErrCodeInvalidInput, err, "detailed"))
			return
		}
		opts.Detailed = detailed
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.importBody(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data, _, err := s.runner.Render(r.Context(), res.Tree, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if opts.Format == pipeline.FormatDOT {
		w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
	} else {
		w.Header().Set("Content-Type", "image/svg+xml")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	names, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"names": names})
}

// handleSave stores records only after they import into a valid tree.
func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := errs.ValidateTreeName(name); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.importBody(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.store.Save(r.Context(), name, store.FromElements(res.Elements, res.IDs)); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, treeResponse{
		Name:     name,
		Elements: res.Elements,
		Leaves:   res.Leaves,
		IDs:      res.IDs,
		Nodes:    res.Stats.NodeCount,
	})
}

func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	records, err := s.store.Load(r.Context(), name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.runner.Import(r.Context(), store.ToElements(records), pipeline.Options{
		IDs:    store.IDs(records),
		Logger: s.logger,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, treeResponse{
		Name:     name,
		Elements: res.Elements,
		Leaves:   res.Leaves,
		IDs:      res.IDs,
		Nodes:    res.Stats.NodeCount,
		Tree:     tree.Sprint(res.Tree),
	})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "name")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// importBody decodes {"elements": [...], "ids": "..."} and imports it with
// the named id function.
func (s *Server) importBody(w http.ResponseWriter, r *http.Request) (*pipeline.Result, error) {
	var req elementsRequest
	if err := decodeBody(w, r, &req); err != nil {
		return nil, err
	}
	for i, e := range req.Elements {
		if err := errs.ValidateValue(e.Element); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "element %d", i+1)
		}
	}
	return s.runner.Import(r.Context(), req.Elements, pipeline.Options{
		IDs:    req.IDs,
		Logger: s.logger,
	})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		return errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode request body")
	}
	return nil
}

// writeError maps err to a status code and writes it as JSON. Unexpected
// errors are logged and reported without detail.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var tooLarge *http.MaxBytesError
	resp := errorResponse{Code: string(errs.GetCode(err)), Message: errs.UserMessage(err)}
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
		resp = errorResponse{Code: string(errs.ErrCodeNotFound), Message: err.Error()}
	case errors.As(err, &tooLarge):
		status = http.StatusRequestEntityTooLarge
		resp = errorResponse{Code: string(errs.ErrCodeInvalidInput), Message: "request body too large"}
	case errs.IsStructural(err):
		status = http.StatusUnprocessableEntity
	case errs.Is(err, errs.ErrCodeInvalidInput),
		errs.Is(err, errs.ErrCodeInvalidFormat),
		errs.Is(err, errs.ErrCodeUnsupported):
		status = http.StatusBadRequest
		// Input errors often wrap a decoder error worth showing.
		resp.Message = err.Error()
	default:
		s.logger.Error("request failed", "uri", r.URL.RequestURI(), "error", err)
		resp = errorResponse{Code: string(errs.ErrCodeInternal), Message: "internal error"}
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
