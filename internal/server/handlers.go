package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ppiankov/medfactors/internal/catalog"
	"github.com/ppiankov/medfactors/internal/model"
	"github.com/ppiankov/medfactors/internal/personalize"
	"github.com/ppiankov/medfactors/internal/resolve"
	"github.com/ppiankov/medfactors/internal/worker"
)

var (
	errRateLimited = errors.New("rate limit exceeded, retry later")
	errInternal    = errors.New("internal server error")
	errEmptyRoster = errors.New("roster has no employees")
)

// ErrorResponse is the body of every non-2xx reply
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

// decode reads a JSON body capped at maxBody bytes. Oversized bodies get
// 413, anything else undecodable 400.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	body := http.MaxBytesReader(w, r.Body, s.maxBody)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Errorf("request body exceeds %d bytes", tooLarge.Limit))
			return false
		}
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return false
	}
	return true
}

// ResolveRequest is the body of POST /v1/resolve
type ResolveRequest struct {
	Text    string `json:"text"`
	Explain bool   `json:"explain,omitempty"`
}

// ResolveResponse lists the matched rules
type ResolveResponse struct {
	Method      resolve.Method       `json:"method"`
	Rules       []catalog.Rule       `json:"rules"`
	Explanation *resolve.Explanation `json:"explanation,omitempty"`
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	var req ResolveRequest
	if !s.decode(w, r, &req) {
		return
	}
	exp := s.engine.ExplainFactors(req.Text)
	s.observeResolution(string(exp.Method))

	resp := ResolveResponse{Method: exp.Method, Rules: exp.Rules}
	if req.Explain {
		resp.Explanation = &exp
	}
	writeJSON(w, http.StatusOK, resp)
}

// PersonalizeRequest is the body of POST /v1/personalize
type PersonalizeRequest struct {
	Research string         `json:"research"`
	Employee model.Employee `json:"employee"`
	Explain  bool           `json:"explain,omitempty"`
}

// PersonalizeResponse carries the rewritten research text
type PersonalizeResponse struct {
	Research string             `json:"research"`
	Trace    *personalize.Trace `json:"trace,omitempty"`
}

func (s *Server) handlePersonalize(w http.ResponseWriter, r *http.Request) {
	var req PersonalizeRequest
	if !s.decode(w, r, &req) {
		return
	}
	tr := s.engine.ExplainResearch(req.Research, req.Employee)
	resp := PersonalizeResponse{Research: tr.Output}
	if req.Explain {
		resp.Trace = &tr
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	var emp model.Employee
	if !s.decode(w, r, &emp) {
		return
	}
	writeJSON(w, http.StatusOK, s.engine.Profile(emp))
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var emp model.Employee
	if !s.decode(w, r, &emp) {
		return
	}
	res := s.engine.Evaluate(emp)
	s.observeResolution(res.Method)
	writeJSON(w, http.StatusOK, res)
}

// RosterRequest is the body of POST /v1/roster
type RosterRequest struct {
	Name      string           `json:"name,omitempty"`
	Employees []model.Employee `json:"employees"`
}

func (s *Server) handleRoster(w http.ResponseWriter, r *http.Request) {
	var req RosterRequest
	if !s.decode(w, r, &req) {
		return
	}
	if len(req.Employees) == 0 {
		writeError(w, http.StatusBadRequest, errEmptyRoster)
		return
	}

	processor := worker.NewBatchProcessor(s.engine, s.workers, s.logger)
	results := processor.ProcessRoster(r.Context(), req.Employees)
	for _, res := range results {
		if res.Result != nil {
			s.observeResolution(res.Result.Method)
		}
	}
	writeJSON(w, http.StatusOK, worker.NewReport(req.Name, s.info, results, time.Now()))
}

func (s *Server) handleRules(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid clause id %q", raw))
		return
	}
	rules := s.engine.Catalog().ByID(id)
	if len(rules) == 0 {
		writeError(w, http.StatusNotFound, fmt.Errorf("no rule with id %d", id))
		return
	}
	writeJSON(w, http.StatusOK, rules)
}

// HealthResponse is the body of GET /healthz
type HealthResponse struct {
	Status  string            `json:"status"`
	Catalog model.CatalogInfo `json:"catalog"`
	Uptime  string            `json:"uptime"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Catalog: s.info,
		Uptime:  time.Since(s.started).Round(time.Second).String(),
	})
}

func (s *Server) observeResolution(method string) {
	if s.metrics != nil {
		s.metrics.ObserveResolution(method)
	}
}
