package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/seenimoa/finchart/internal/analysis/fundamental"
	"github.com/seenimoa/finchart/pkg/models"
	"github.com/seenimoa/finchart/pkg/utils"
)

// fetchTimeout bounds one GET /metrics/{ticker} round trip to both sources.
const fetchTimeout = 60 * time.Second

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"status":  "ok",
			"version": Version,
			"time":    time.Now().UTC().Format(time.RFC3339),
		},
	})
}

func (s *Server) handleListMetrics(w http.ResponseWriter, r *http.Request) {
	all := models.AllMetrics()
	out := make([]MetricInfo, len(all))
	for i, m := range all {
		out[i] = MetricInfo{Name: string(m), Percent: m.IsPercent()}
	}
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    out,
	})
}

func (s *Server) handleGetMetrics(w http.ResponseWriter, r *http.Request) {
	ticker := utils.NormalizeTicker(chi.URLParam(r, "ticker"))
	if ticker == "" {
		writeError(w, http.StatusBadRequest, "ticker is required")
		return
	}
	if !utils.IsValidTicker(ticker) {
		writeError(w, http.StatusBadRequest, "invalid ticker: "+ticker)
		return
	}

	names, err := models.ParseMetricNames(r.URL.Query()["metric"]...)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), fetchTimeout)
	defer cancel()

	batch, err := fundamental.Run(s.collector.Collect(ctx, ticker))
	if err != nil {
		writeJSON(w, http.StatusBadGateway, APIResponse{
			Success: false,
			Data:    batch,
			Error:   err.Error(),
		})
		return
	}

	if len(names) > 0 {
		batch = batch.Select(names...)
	}
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    batch,
	})
}

func (s *Server) handleDeriveMetrics(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Sources.MaxBodyBytes > 0 {
		// Two payloads plus the envelope.
		r.Body = http.MaxBytesReader(w, r.Body, 2*s.cfg.Sources.MaxBodyBytes+1024)
	}

	var req DeriveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	symbol := utils.NormalizeTicker(req.Symbol)
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "symbol is required")
		return
	}

	batch, err := fundamental.Run(s.collector.Decode(symbol, req.Income, req.Prices))
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, APIResponse{
			Success: false,
			Data:    batch,
			Error:   err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    batch,
	})
}

func (s *Server) handleSearchTickers(w http.ResponseWriter, r *http.Request) {
	q := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("q")))

	matches := []string{}
	for _, t := range utils.KnownTickers() {
		if q == "" || strings.HasPrefix(t, q) {
			matches = append(matches, t)
		}
	}
	if q != "" {
		// An alias or an unlisted symbol is offered as typed.
		if n := utils.NormalizeTicker(q); utils.IsValidTicker(n) && !contains(matches, n) {
			matches = append(matches, n)
		}
	}
	sort.Strings(matches)

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    matches,
	})
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
