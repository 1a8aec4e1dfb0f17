// CLAUDE:SUMMARY HTTP surface: POST /api/evaluate, GET /api/runs, GET /api/runs/{id}.
package grade

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hazyhaar/domgrade/kit"
	"github.com/hazyhaar/domgrade/layout"
)

type evaluateRequest struct {
	Source    string `json:"source"`
	Viewports []struct {
		Capture   *layout.PageCapture `json:"capture"`
		Reference *layout.Snapshot    `json:"reference,omitempty"`
	} `json:"viewports"`
}

// Router builds the HTTP API. Screenshot diffing is not exposed over HTTP;
// images travel through the CLI and MCP paths.
func (s *Service) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := kit.WithTransport(req.Context(), "http")
			ctx = kit.WithRequestID(ctx, s.Engine.cfg.IDs())
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})

	r.Post("/api/evaluate", func(w http.ResponseWriter, req *http.Request) {
		var body evaluateRequest
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		in := Input{Source: body.Source}
		for _, v := range body.Viewports {
			in.Viewports = append(in.Viewports, ViewportInput{
				Capture:   v.Capture,
				Reference: v.Reference,
			})
		}
		report, err := s.Evaluate(req.Context(), in)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeJSON(w, http.StatusOK, report)
	})

	r.Get("/api/runs", func(w http.ResponseWriter, req *http.Request) {
		limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
		runs, err := s.Runs(req.Context(), limit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		if runs == nil {
			runs = []RunSummary{}
		}
		writeJSON(w, http.StatusOK, runs)
	})

	r.Get("/api/runs/{id}", func(w http.ResponseWriter, req *http.Request) {
		report, err := s.GetReport(req.Context(), chi.URLParam(req, "id"))
		if errors.Is(err, ErrRunNotFound) {
			writeError(w, http.StatusNotFound, err)
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, report)
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
