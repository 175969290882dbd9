package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"trading-dashboard/internal/logsource"
)

// defaultTailLines bounds a log tail when the caller gives no count.
const defaultTailLines = 100

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The dashboard frontend is served from a different origin than
	// this API.
	CheckOrigin: func(r *http.Request) bool { return true },
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Printf("encode response: %v", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps source sentinels onto HTTP statuses: absent data is
// 404, an unreachable backend is 502, everything else 500.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, logsource.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, logsource.ErrUnavailable):
		status = http.StatusBadGateway
	}
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	s.writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
}

func (s *Server) handleConfigTypes(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{"config_types": s.service.ConfigTypes()})
}

func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.service.CacheStats())
}

func (s *Server) handleCacheClear(w http.ResponseWriter, r *http.Request) {
	s.service.ClearCache()
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	configType := mux.Vars(r)["config_type"]
	runs, err := s.service.Runs(r.Context(), configType)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

func (s *Server) handleRunSummary(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sum, err := s.service.RunSummary(r.Context(), vars["config_type"], vars["run_id"])
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, sum)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	events, err := s.service.Events(r.Context(), vars["config_type"], vars["run_id"])
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"events": events})
}

func (s *Server) handleTrades(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	trades, err := s.service.ClosedTrades(r.Context(), vars["config_type"], vars["run_id"])
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"trades": trades})
}

func (s *Server) handleTradeDetails(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	details, err := s.service.TradeDetails(r.Context(), vars["config_type"], vars["run_id"], vars["trade_id"])
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, details)
}

func (s *Server) handleTailLog(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	n := defaultTailLines
	if raw := r.URL.Query().Get("n"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "n must be a positive integer"})
			return
		}
		n = parsed
	}
	lines, err := s.service.TailLog(r.Context(), vars["config_type"], vars["run_id"], vars["name"], n)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"lines": lines})
}

func (s *Server) handleAggregate(w http.ResponseWriter, r *http.Request) {
	configType := mux.Vars(r)["config_type"]
	q := r.URL.Query()
	agg, err := s.service.Aggregate(r.Context(), configType, q.Get("from"), q.Get("to"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, agg)
}

func (s *Server) handlePositions(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	positions, err := s.service.OpenPositions(r.Context(), vars["config_type"], vars["run_id"])
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"positions": positions})
}

func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	live, err := s.service.LiveSummary(r.Context(), vars["config_type"], vars["run_id"])
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, live)
}

func (s *Server) handleInstances(w http.ResponseWriter, r *http.Request) {
	if s.relay == nil {
		s.writeJSON(w, http.StatusOK, map[string]any{"instances": []string{}})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"instances": s.relay.Instances()})
}

func (s *Server) handleInstanceProbe(w http.ResponseWriter, r *http.Request) {
	if s.relay == nil {
		s.writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "no instances configured"})
		return
	}
	vars := mux.Vars(r)
	res, err := s.relay.Probe(r.Context(), vars["instance"], vars["endpoint"])
	if err != nil {
		s.writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error()})
		return
	}
	w.WriteHeader(res.StatusCode)
	_, _ = w.Write(res.Body)
}

func (s *Server) handleAdmin(w http.ResponseWriter, r *http.Request) {
	if s.relay == nil {
		s.writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "no instances configured"})
		return
	}
	if s.config.AdminToken != "" && r.Header.Get("X-Admin-Token") != s.config.AdminToken {
		s.writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid admin token"})
		return
	}

	vars := mux.Vars(r)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "read request body"})
		return
	}
	res, err := s.relay.Forward(r.Context(), vars["instance"], vars["action"], body)
	if err != nil {
		s.writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error()})
		return
	}
	w.WriteHeader(res.StatusCode)
	_, _ = w.Write(res.Body)
}

// handleLiveSocket upgrades to a websocket and streams live summaries
// until the client disconnects.
func (s *Server) handleLiveSocket(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		s.writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "push not enabled"})
		return
	}
	vars := mux.Vars(r)
	configType, runID := vars["config_type"], vars["run_id"]

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Printf("websocket upgrade: %v", err)
		return
	}

	// The request context dies when this handler returns, so the
	// subscription gets its own, cancelled by the read loop on
	// disconnect.
	ctx, cancel := context.WithCancel(context.Background())
	s.hub.Subscribe(ctx, conn, func(ctx context.Context) (any, error) {
		return s.service.LiveSummary(ctx, configType, runID)
	})
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
